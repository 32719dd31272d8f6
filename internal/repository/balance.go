package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"HRCore/internal/model"
)

type BalanceFilter struct {
	EmployeeID *int64
	Year       *int
	Page       Page
}

type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Get(ctx context.Context, employeeID int64, year int) (*model.AnnualBalance, error) {
	var b model.AnnualBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Upsert (employee_id, year) 冲突时整行覆盖计算字段
func (r *BalanceRepository) Upsert(ctx context.Context, b *model.AnnualBalance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"days_assigned", "days_carried", "days_taken", "days_available", "expires_on", "updated_at",
			}),
		}).Create(b).Error
	})
}

func (r *BalanceRepository) List(ctx context.Context, f BalanceFilter) ([]model.AnnualBalance, int64, error) {
	q := readReplica(r.db.WithContext(ctx)).Model(&model.AnnualBalance{})
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.AnnualBalance
	err := q.Order("year DESC, employee_id").Scopes(paginate(f.Page)).Find(&items).Error
	return items, total, err
}

// ListYear 导出用，附带员工信息
func (r *BalanceRepository) ListYear(ctx context.Context, year int) ([]model.AnnualBalance, []model.Employee, error) {
	db := readReplica(r.db.WithContext(ctx))

	var items []model.AnnualBalance
	if err := db.Where("year = ?", year).Order("employee_id").Find(&items).Error; err != nil {
		return nil, nil, err
	}

	ids := make([]int64, len(items))
	for i, b := range items {
		ids[i] = b.EmployeeID
	}

	var employees []model.Employee
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&employees).Error; err != nil {
			return nil, nil, err
		}
	}
	return items, employees, nil
}
