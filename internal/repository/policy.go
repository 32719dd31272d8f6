package repository

import (
	"context"

	"gorm.io/gorm"

	"HRCore/internal/model"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Get(ctx context.Context, id int64) (*model.VacationPolicyTier, error) {
	var t model.VacationPolicyTier
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List 按 years_from 升序
func (r *PolicyRepository) List(ctx context.Context, activeOnly bool) ([]model.VacationPolicyTier, error) {
	q := r.db.WithContext(ctx).Order("years_from, id")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var items []model.VacationPolicyTier
	err := q.Find(&items).Error
	return items, err
}

func (r *PolicyRepository) Save(ctx context.Context, t *model.VacationPolicyTier) error {
	return r.db.WithContext(ctx).Save(t).Error
}
