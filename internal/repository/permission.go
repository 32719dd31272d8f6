package repository

import (
	"context"

	"gorm.io/gorm"

	"HRCore/internal/leave"
	"HRCore/internal/model"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetType(ctx context.Context, id int64) (*model.PermissionType, error) {
	var t model.PermissionType
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PermissionRepository) ListTypes(ctx context.Context, activeOnly bool) ([]model.PermissionType, error) {
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var items []model.PermissionType
	err := q.Find(&items).Error
	return items, err
}

func (r *PermissionRepository) SaveType(ctx context.Context, t *model.PermissionType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *PermissionRepository) Create(ctx context.Context, p *model.Permission) error {
	return r.db.WithContext(ctx).Omit("Type").Create(p).Error
}

func (r *PermissionRepository) Get(ctx context.Context, id int64) (*model.Permission, error) {
	var p model.Permission
	if err := r.db.WithContext(ctx).Preload("Type").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, &model.Permission{}, id)
}

func (r *PermissionRepository) List(ctx context.Context, f RequestFilter) ([]model.Permission, int64, error) {
	q := f.apply(r.db.WithContext(ctx).Model(&model.Permission{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Permission
	err := q.Preload("Type").Order("start_date DESC, id DESC").Scopes(paginate(f.Page)).Find(&items).Error
	return items, total, err
}

func (r *PermissionRepository) ListOverlapping(ctx context.Context, f RequestFilter) ([]model.Permission, error) {
	var items []model.Permission
	err := f.apply(readReplica(r.db.WithContext(ctx))).
		Preload("Type").
		Order("employee_id, start_date").
		Find(&items).Error
	return items, err
}

func (r *PermissionRepository) Transition(ctx context.Context, id int64, from []leave.State, to leave.State, res model.Resolution) (int64, error) {
	return transition(ctx, r.db, &model.Permission{}, id, from, to, res)
}
