package models

import "time"

// DateException is a one-off override for a single calendar date. StaffID nil
// means the shop-level exception (binds every staff member without their own
// exception for that date). Kind "closed" carries no hours; the other kinds
// fully replace the weekly hours and never carry a break window.
type DateException struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	BarbershopID uint  `gorm:"index:idx_exception_owner,priority:1" json:"barbershop_id"`
	StaffID      *uint `gorm:"index:idx_exception_owner,priority:2" json:"staff_id"`

	Date string `gorm:"size:10;index:idx_exception_owner,priority:3" json:"date"`
	Kind string `gorm:"size:20;not null" json:"kind"`

	Description string `gorm:"size:255" json:"description"`

	OpenMinute  *int `json:"open_minute"`
	CloseMinute *int `json:"close_minute"`

	CreatedAt time.Time `json:"created_at"`
}
