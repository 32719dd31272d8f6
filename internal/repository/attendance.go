package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"HRCore/internal/leave"
	"HRCore/internal/model"
)

// CheckInFilter 时间区间为 [From, To)
type CheckInFilter struct {
	EmployeeID *int64
	From       *time.Time
	To         *time.Time
	Type       model.CheckInType
	Inside     *bool
	Page       Page
}

// JustificationFilter 日期区间为闭区间
type JustificationFilter struct {
	EmployeeID *int64
	Status     leave.State
	From       *time.Time
	To         *time.Time
	Page       Page
}

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) CreateCheckIn(ctx context.Context, c *model.CheckIn) error {
	return r.db.WithContext(ctx).Omit("Location").Create(c).Error
}

func (r *AttendanceRepository) GetCheckIn(ctx context.Context, id int64) (*model.CheckIn, error) {
	var c model.CheckIn
	if err := r.db.WithContext(ctx).Preload("Location").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateGeofence 只写距离与围栏结果
func (r *AttendanceRepository) UpdateGeofence(ctx context.Context, id int64, distance *int, inside bool) error {
	return r.db.WithContext(ctx).Model(&model.CheckIn{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"distance_m":      distance,
			"inside_geofence": inside,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *AttendanceRepository) ListCheckIns(ctx context.Context, f CheckInFilter) ([]model.CheckIn, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CheckIn{})
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.From != nil {
		q = q.Where("ts >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("ts < ?", *f.To)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Inside != nil {
		q = q.Where("inside_geofence = ?", *f.Inside)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.CheckIn
	err := q.Order("ts DESC, id DESC").Scopes(paginate(f.Page)).Find(&items).Error
	return items, total, err
}

// CheckInsBetween [from, to) 内的全部打卡，按员工、时间升序；employeeID 为空时不限员工
func (r *AttendanceRepository) CheckInsBetween(ctx context.Context, employeeID *int64, from, to time.Time) ([]model.CheckIn, error) {
	q := r.db.WithContext(ctx).Where("ts >= ? AND ts < ?", from, to)
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	var items []model.CheckIn
	err := q.Order("employee_id ASC, ts ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *AttendanceRepository) CreateJustification(ctx context.Context, j *model.Justification) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *AttendanceRepository) GetJustification(ctx context.Context, id int64) (*model.Justification, error) {
	var j model.Justification
	if err := r.db.WithContext(ctx).First(&j, id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *AttendanceRepository) ListJustifications(ctx context.Context, f JustificationFilter) ([]model.Justification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Justification{})
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Justification
	err := q.Order("date DESC, id DESC").Scopes(paginate(f.Page)).Find(&items).Error
	return items, total, err
}

// ResolveJustification 条件更新，仅当仍处于 PEND 时生效
func (r *AttendanceRepository) ResolveJustification(ctx context.Context, id int64, to leave.State, res model.Resolution) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Justification{}).
		Where("id = ? AND status = ?", id, leave.Pending).
		Updates(map[string]interface{}{
			"status":      to,
			"resolved_by": res.By,
			"resolved_at": res.At,
			"updated_at":  res.At,
		})
	return result.RowsAffected, result.Error
}
