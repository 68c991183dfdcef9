package schedule

// RuleSet carries the four rule sources that can apply to one staff member on
// one date. Any source may be nil when no matching row exists.
type RuleSet struct {
	StaffException *ExceptionSource
	ShopException  *ExceptionSource
	StaffWeekly    *WeeklySource
	ShopWeekly     *WeeklySource
}

// DayProfile is the resolved outcome: closed, or an open window with an
// optional break. ClosedReason carries the exception description when a
// closing exception won.
type DayProfile struct {
	Open         bool    `json:"open"`
	OpenMinute   int     `json:"open_minute"`
	CloseMinute  int     `json:"close_minute"`
	Break        *Window `json:"break,omitempty"`
	ClosedReason string  `json:"closed_reason,omitempty"`
}

func Closed(reason string) DayProfile {
	return DayProfile{ClosedReason: reason}
}

// Resolve applies the precedence order, highest first, each level
// short-circuiting the rest:
//
//  1. staff-level date exception
//  2. shop-level date exception
//  3. staff-level weekly rule, when present and open
//  4. shop-level weekly rule
//
// A staff member can therefore close unilaterally for personal reasons
// without touching shop-wide hours, while shop-wide closures still bind
// staff who set no personal override for that date. No rule at any level
// resolves to closed, never open.
func Resolve(rs RuleSet) DayProfile {
	if rs.StaffException != nil {
		return fromException(rs.StaffException)
	}
	if rs.ShopException != nil {
		return fromException(rs.ShopException)
	}

	// A staff weekly rule marked closed does not shadow the shop rule; only
	// an exception can do that for a single date.
	if rs.StaffWeekly != nil && rs.StaffWeekly.Open {
		return fromWeekly(rs.StaffWeekly)
	}
	if rs.ShopWeekly != nil {
		if !rs.ShopWeekly.Open {
			return Closed("")
		}
		return fromWeekly(rs.ShopWeekly)
	}

	return Closed("")
}

func fromException(ex *ExceptionSource) DayProfile {
	if ex.Kind == ExceptionClosed {
		return Closed(ex.Description)
	}

	// Extended or special hours replace the weekly hours entirely; the
	// replaced rule's break does not carry over.
	return DayProfile{
		Open:        true,
		OpenMinute:  ex.OpenMinute,
		CloseMinute: ex.CloseMinute,
	}
}

func fromWeekly(w *WeeklySource) DayProfile {
	p := DayProfile{
		Open:        true,
		OpenMinute:  w.OpenMinute,
		CloseMinute: w.CloseMinute,
	}
	if w.Break != nil {
		b := *w.Break
		p.Break = &b
	}
	return p
}
