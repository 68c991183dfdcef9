package repository

import (
	"context"

	"github.com/barbergrid/api/internal/models"
)

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (r *GormRepository) GetStaff(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
) (*models.User, error) {

	var staff models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", staffID, barbershopID).
		First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *GormRepository) GetService(
	ctx context.Context,
	barbershopID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", serviceID, barbershopID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *GormRepository) GetAssignment(
	ctx context.Context,
	staffID uint,
	serviceID uint,
) (*models.StaffService, error) {

	var assignment models.StaffService
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND service_id = ?", staffID, serviceID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}
