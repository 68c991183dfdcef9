package models

import "time"

// WeeklyRule is the recurring working-hours rule for one weekday. StaffID nil
// means the shop-level default; a non-nil StaffID is that staff member's own
// override. All times are shop-local minute-of-day integers.
type WeeklyRule struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	BarbershopID uint  `gorm:"index:idx_weekly_owner,priority:1" json:"barbershop_id"`
	StaffID      *uint `gorm:"index:idx_weekly_owner,priority:2" json:"staff_id"`

	Weekday int  `gorm:"index:idx_weekly_owner,priority:3" json:"weekday"`
	Open    bool `json:"open"`

	OpenMinute  int `json:"open_minute"`
	CloseMinute int `json:"close_minute"`

	BreakStartMinute *int `json:"break_start_minute"`
	BreakEndMinute   *int `json:"break_end_minute"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
