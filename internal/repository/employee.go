package repository

import (
	"context"

	"gorm.io/gorm"

	"HRCore/internal/model"
)

// EmployeeFilter 员工列表过滤
type EmployeeFilter struct {
	Status     model.EmployeeStatus
	Search     string
	LocationID *int64
	Page       Page
}

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Get 同时加载排班与默认地点
func (r *EmployeeRepository) Get(ctx context.Context, id int64) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).
		Preload("WorkSchedule").
		Preload("Location").
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, f EmployeeFilter) ([]model.Employee, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Employee{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("number ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR curp ILIKE ?", like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Employee
	err := q.Order("number").Scopes(paginate(f.Page)).Find(&items).Error
	return items, total, err
}

func (r *EmployeeRepository) Create(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Omit("WorkSchedule", "Location").Create(e).Error
}

func (r *EmployeeRepository) Update(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Omit("WorkSchedule", "Location").Save(e).Error
}

// ListForRecompute 余额重算的员工集合，按 ID 排序保证结果稳定
func (r *EmployeeRepository) ListForRecompute(ctx context.Context, employeeID *int64, activeOnly bool) ([]model.Employee, error) {
	q := r.db.WithContext(ctx).Model(&model.Employee{})
	if employeeID != nil {
		q = q.Where("id = ?", *employeeID)
	}
	if activeOnly {
		q = q.Where("status = ?", model.EmployeeActive)
	}

	var items []model.Employee
	err := q.Order("id").Find(&items).Error
	return items, err
}
