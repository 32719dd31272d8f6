package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"HRCore/internal/leave"
	"HRCore/internal/model"
)

// RequestFilter 年假与许可共用的列表过滤
type RequestFilter struct {
	EmployeeID *int64
	States     []leave.State
	From       *time.Time
	To         *time.Time
	Page       Page
}

func (f RequestFilter) apply(q *gorm.DB) *gorm.DB {
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if len(f.States) > 0 {
		q = q.Where("status IN ?", statesToStrings(f.States))
	}
	if f.From != nil {
		q = q.Where("end_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_date <= ?", *f.To)
	}
	return q
}

// transition 单条条件 UPDATE，返回受影响行数；0 行由调用方区分不存在与状态不符
func transition(ctx context.Context, db *gorm.DB, m interface{}, id int64, from []leave.State, to leave.State, res model.Resolution) (int64, error) {
	result := db.WithContext(ctx).Model(m).
		Where("id = ? AND status IN ?", id, statesToStrings(from)).
		Updates(map[string]interface{}{
			"status":           to,
			"resolved_by":      res.By,
			"resolved_at":      res.At,
			"resolver_comment": res.Comment,
			"updated_at":       res.At,
		})
	return result.RowsAffected, result.Error
}

func exists(ctx context.Context, db *gorm.DB, m interface{}, id int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(m).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, lr *model.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(lr).Error
}

func (r *LeaveRepository) Get(ctx context.Context, id int64) (*model.LeaveRequest, error) {
	var lr model.LeaveRequest
	if err := r.db.WithContext(ctx).First(&lr, id).Error; err != nil {
		return nil, err
	}
	return &lr, nil
}

func (r *LeaveRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, &model.LeaveRequest{}, id)
}

func (r *LeaveRepository) List(ctx context.Context, f RequestFilter) ([]model.LeaveRequest, int64, error) {
	q := f.apply(r.db.WithContext(ctx).Model(&model.LeaveRequest{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.LeaveRequest
	err := q.Order("start_date DESC, id DESC").Scopes(paginate(f.Page)).Find(&items).Error
	return items, total, err
}

// ListOverlapping 日历用，不分页
func (r *LeaveRepository) ListOverlapping(ctx context.Context, f RequestFilter) ([]model.LeaveRequest, error) {
	var items []model.LeaveRequest
	err := f.apply(readReplica(r.db.WithContext(ctx))).
		Order("employee_id, start_date").
		Find(&items).Error
	return items, err
}

func (r *LeaveRepository) Transition(ctx context.Context, id int64, from []leave.State, to leave.State, res model.Resolution) (int64, error) {
	return transition(ctx, r.db, &model.LeaveRequest{}, id, from, to, res)
}

// UpdatePending 仅 PEND 状态可改日期
func (r *LeaveRepository) UpdatePending(ctx context.Context, lr *model.LeaveRequest) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.LeaveRequest{}).
		Where("id = ? AND status = ?", lr.ID, leave.Pending).
		Updates(map[string]interface{}{
			"start_date":    lr.StartDate,
			"end_date":      lr.EndDate,
			"business_days": lr.BusinessDays,
			"comment":       lr.Comment,
			"updated_at":    time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// SumApproved 与 [from, to] 有交集的已批准申请天数之和
func (r *LeaveRepository) SumApproved(ctx context.Context, employeeID int64, from, to time.Time) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.LeaveRequest{}).
		Select("COALESCE(SUM(business_days), 0) AS total").
		Where("employee_id = ? AND status = ?", employeeID, leave.Approved).
		Scopes(overlapping(from, to)).
		Scan(&out).Error
	return out.Total, err
}
