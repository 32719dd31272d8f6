package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"HRCore/internal/leave"
	"HRCore/internal/model"
	"HRCore/internal/queue"
	"HRCore/internal/repository"
)

// 服务层依赖的存储接口，gorm 实现位于 internal/repository

type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	Create(ctx context.Context, a *model.Account) error
	TouchLogin(ctx context.Context, id int64, at time.Time) error
}

type EmployeeStore interface {
	Get(ctx context.Context, id int64) (*model.Employee, error)
	List(ctx context.Context, f repository.EmployeeFilter) ([]model.Employee, int64, error)
	Create(ctx context.Context, e *model.Employee) error
	Update(ctx context.Context, e *model.Employee) error
	ListForRecompute(ctx context.Context, employeeID *int64, activeOnly bool) ([]model.Employee, error)
}

type OrganizationStore interface {
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
	ListLocations(ctx context.Context, activeOnly bool) ([]model.Location, error)
	SaveLocation(ctx context.Context, l *model.Location) error
	GetSchedule(ctx context.Context, id int64) (*model.WorkSchedule, error)
	ListSchedules(ctx context.Context) ([]model.WorkSchedule, error)
	SaveSchedule(ctx context.Context, s *model.WorkSchedule) error
}

type AttendanceStore interface {
	CreateCheckIn(ctx context.Context, c *model.CheckIn) error
	GetCheckIn(ctx context.Context, id int64) (*model.CheckIn, error)
	UpdateGeofence(ctx context.Context, id int64, distance *int, inside bool) error
	ListCheckIns(ctx context.Context, f repository.CheckInFilter) ([]model.CheckIn, int64, error)
	CheckInsBetween(ctx context.Context, employeeID *int64, from, to time.Time) ([]model.CheckIn, error)
	CreateJustification(ctx context.Context, j *model.Justification) error
	GetJustification(ctx context.Context, id int64) (*model.Justification, error)
	ListJustifications(ctx context.Context, f repository.JustificationFilter) ([]model.Justification, int64, error)
	ResolveJustification(ctx context.Context, id int64, to leave.State, res model.Resolution) (int64, error)
}

// transitioner 年假与许可共用的条件更新
type transitioner interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Transition(ctx context.Context, id int64, from []leave.State, to leave.State, res model.Resolution) (int64, error)
}

type LeaveStore interface {
	transitioner
	Create(ctx context.Context, lr *model.LeaveRequest) error
	Get(ctx context.Context, id int64) (*model.LeaveRequest, error)
	List(ctx context.Context, f repository.RequestFilter) ([]model.LeaveRequest, int64, error)
	ListOverlapping(ctx context.Context, f repository.RequestFilter) ([]model.LeaveRequest, error)
	UpdatePending(ctx context.Context, lr *model.LeaveRequest) (int64, error)
	SumApproved(ctx context.Context, employeeID int64, from, to time.Time) (decimal.Decimal, error)
}

type PermissionStore interface {
	transitioner
	GetType(ctx context.Context, id int64) (*model.PermissionType, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]model.PermissionType, error)
	SaveType(ctx context.Context, t *model.PermissionType) error
	Create(ctx context.Context, p *model.Permission) error
	Get(ctx context.Context, id int64) (*model.Permission, error)
	List(ctx context.Context, f repository.RequestFilter) ([]model.Permission, int64, error)
	ListOverlapping(ctx context.Context, f repository.RequestFilter) ([]model.Permission, error)
}

type HolidayStore interface {
	Get(ctx context.Context, id int64) (*model.Holiday, error)
	Between(ctx context.Context, from, to time.Time) ([]model.Holiday, error)
	Recurring(ctx context.Context) ([]model.Holiday, error)
	DateTaken(ctx context.Context, date time.Time, exceptID int64) (bool, error)
	Save(ctx context.Context, h *model.Holiday) error
	Delete(ctx context.Context, id int64) (int64, error)
	UpsertByDate(ctx context.Context, items []model.Holiday) (int64, error)
}

type PolicyStore interface {
	Get(ctx context.Context, id int64) (*model.VacationPolicyTier, error)
	List(ctx context.Context, activeOnly bool) ([]model.VacationPolicyTier, error)
	Save(ctx context.Context, t *model.VacationPolicyTier) error
}

type BalanceStore interface {
	Get(ctx context.Context, employeeID int64, year int) (*model.AnnualBalance, error)
	Upsert(ctx context.Context, b *model.AnnualBalance) error
	List(ctx context.Context, f repository.BalanceFilter) ([]model.AnnualBalance, int64, error)
	ListYear(ctx context.Context, year int) ([]model.AnnualBalance, []model.Employee, error)
}

// ReportStore 统计查询
type ReportStore interface {
	EmployeesByStatus(ctx context.Context) ([]repository.StatusCount, error)
	LeavesByStatus(ctx context.Context, year int) ([]repository.LeaveStatusCount, error)
	PendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.LeaveRequest, error)
	OutsideGeofenceByDay(ctx context.Context, employeeID *int64, from, to time.Time) ([]repository.DayCount, error)
	BalanceTotals(ctx context.Context, year int) (*repository.BalanceTotals, error)
}

// EventPublisher 状态变化事件
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, eventKey string, payload interface{}) error
}

// RecomputeQueue 异步余额重算
type RecomputeQueue interface {
	RequestRecompute(ctx context.Context, msg queue.BalanceRecomputeMessage) (string, error)
}
