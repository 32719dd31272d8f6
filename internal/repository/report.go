package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"HRCore/internal/leave"
	"HRCore/internal/model"
)

// StatusCount 按状态分组计数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// LeaveStatusCount Days 为该状态下申请的工作日合计
type LeaveStatusCount struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Days   decimal.Decimal `json:"days"`
}

// DayCount 按天分组计数，Day 为 YYYY-MM-DD
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type BalanceTotals struct {
	Year      int             `json:"year"`
	Employees int64           `json:"employees"`
	Assigned  decimal.Decimal `json:"assigned"`
	Taken     decimal.Decimal `json:"taken"`
	Available decimal.Decimal `json:"available"`
}

// ReportRepository 统计查询，全部走只读副本
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) EmployeesByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := readReplica(r.db.WithContext(ctx)).Model(&model.Employee{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

// LeavesByStatus 某年各状态的申请数量与工作日合计，按 start_date 年份归属
func (r *ReportRepository) LeavesByStatus(ctx context.Context, year int) ([]LeaveStatusCount, error) {
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	var rows []LeaveStatusCount
	err := readReplica(r.db.WithContext(ctx)).Model(&model.LeaveRequest{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(business_days), 0) AS days").
		Where("start_date >= ? AND start_date < ?", from, from.AddDate(1, 0, 0)).
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

// PendingCreatedBefore 创建时间早于 cutoff 仍待审批的申请，最早的在前
func (r *ReportRepository) PendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.LeaveRequest, error) {
	var items []model.LeaveRequest
	err := readReplica(r.db.WithContext(ctx)).
		Where("status = ? AND created_at < ?", string(leave.Pending), cutoff).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// OutsideGeofenceByDay [from, to) 内围栏外打卡按 UTC 日期计数
func (r *ReportRepository) OutsideGeofenceByDay(ctx context.Context, employeeID *int64, from, to time.Time) ([]DayCount, error) {
	q := readReplica(r.db.WithContext(ctx)).Model(&model.CheckIn{}).
		Select("to_char(ts AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Where("inside_geofence = ? AND ts >= ? AND ts < ?", false, from, to)
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	var rows []DayCount
	err := q.Group("day").Order("day").Scan(&rows).Error
	return rows, err
}

func (r *ReportRepository) BalanceTotals(ctx context.Context, year int) (*BalanceTotals, error) {
	out := BalanceTotals{Year: year}
	err := readReplica(r.db.WithContext(ctx)).Model(&model.AnnualBalance{}).
		Select(`COUNT(*) AS employees,
			COALESCE(SUM(days_assigned), 0) AS assigned,
			COALESCE(SUM(days_taken), 0) AS taken,
			COALESCE(SUM(days_available), 0) AS available`).
		Where("year = ?", year).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	out.Year = year
	return &out, nil
}
