package repository

import (
	"context"

	"gorm.io/gorm"

	"HRCore/internal/model"
)

// OrganizationRepository 工作地点与排班目录
type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	var l model.Location
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *OrganizationRepository) ListLocations(ctx context.Context, activeOnly bool) ([]model.Location, error) {
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var items []model.Location
	err := q.Find(&items).Error
	return items, err
}

func (r *OrganizationRepository) SaveLocation(ctx context.Context, l *model.Location) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *OrganizationRepository) GetSchedule(ctx context.Context, id int64) (*model.WorkSchedule, error) {
	var s model.WorkSchedule
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *OrganizationRepository) ListSchedules(ctx context.Context) ([]model.WorkSchedule, error) {
	var items []model.WorkSchedule
	err := r.db.WithContext(ctx).Order("name").Find(&items).Error
	return items, err
}

func (r *OrganizationRepository) SaveSchedule(ctx context.Context, s *model.WorkSchedule) error {
	return r.db.WithContext(ctx).Save(s).Error
}
