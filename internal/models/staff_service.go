package models

import "time"

// StaffService assigns a catalog service to a staff member, optionally with a
// custom price. Assignments are soft-disabled via Active, never deleted;
// inactive rows exclude the pair from bookability but stay for reporting.
type StaffService struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StaffID   uint    `gorm:"index:idx_staff_service,unique,priority:1" json:"staff_id"`
	Staff     User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	ServiceID uint    `gorm:"index:idx_staff_service,unique,priority:2" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	CustomPrice *float64 `json:"custom_price"`
	Active      bool     `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectivePrice resolves the price charged for this assignment.
func (ss *StaffService) EffectivePrice(basePrice float64) float64 {
	if ss.Active && ss.CustomPrice != nil {
		return *ss.CustomPrice
	}
	return basePrice
}
