package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/domain/schedule"
	"github.com/barbergrid/api/internal/models"
)

// RuleSetFor assembles the four rule sources for one staff member and date.
// Absent rows become nil sources; the resolver treats missing everything as
// closed.
func (r *GormRepository) RuleSetFor(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
	date string,
	weekday int,
) (schedule.RuleSet, error) {

	var rs schedule.RuleSet

	staffEx, err := r.findException(ctx, barbershopID, &staffID, date)
	if err != nil {
		return rs, err
	}
	rs.StaffException = staffEx

	shopEx, err := r.findException(ctx, barbershopID, nil, date)
	if err != nil {
		return rs, err
	}
	rs.ShopException = shopEx

	staffWk, err := r.findWeekly(ctx, barbershopID, &staffID, weekday)
	if err != nil {
		return rs, err
	}
	rs.StaffWeekly = staffWk

	shopWk, err := r.findWeekly(ctx, barbershopID, nil, weekday)
	if err != nil {
		return rs, err
	}
	rs.ShopWeekly = shopWk

	return rs, nil
}

func (r *GormRepository) findException(
	ctx context.Context,
	barbershopID uint,
	staffID *uint,
	date string,
) (*schedule.ExceptionSource, error) {

	var ex models.DateException
	q := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND date = ?", barbershopID, date)
	q = scopeStaff(q, staffID)

	if err := q.First(&ex).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	src := &schedule.ExceptionSource{
		Kind:        schedule.ExceptionKind(ex.Kind),
		Description: ex.Description,
	}
	if ex.OpenMinute != nil && ex.CloseMinute != nil {
		src.OpenMinute = *ex.OpenMinute
		src.CloseMinute = *ex.CloseMinute
	} else if src.Kind != schedule.ExceptionClosed {
		// Hour-bearing exception without hours is a data fault; fail safe.
		return nil, fmt.Errorf("date exception %d has kind %s but no hours", ex.ID, ex.Kind)
	}

	return src, nil
}

func (r *GormRepository) findWeekly(
	ctx context.Context,
	barbershopID uint,
	staffID *uint,
	weekday int,
) (*schedule.WeeklySource, error) {

	var rule models.WeeklyRule
	q := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND weekday = ?", barbershopID, weekday)
	q = scopeStaff(q, staffID)

	if err := q.First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	src := &schedule.WeeklySource{
		Open:        rule.Open,
		OpenMinute:  rule.OpenMinute,
		CloseMinute: rule.CloseMinute,
	}
	if rule.BreakStartMinute != nil && rule.BreakEndMinute != nil {
		src.Break = &schedule.Window{
			Start: *rule.BreakStartMinute,
			End:   *rule.BreakEndMinute,
		}
	}

	return src, nil
}

func scopeStaff(q *gorm.DB, staffID *uint) *gorm.DB {
	if staffID == nil {
		return q.Where("staff_id IS NULL")
	}
	return q.Where("staff_id = ?", *staffID)
}

func monthStart(year, month int) string {
	return fmt.Sprintf("%04d-%02d-01", year, month)
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
