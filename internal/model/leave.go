package model

import (
	"time"

	"github.com/shopspring/decimal"

	"HRCore/internal/leave"
)

// LeaveRequest 年假申请
type LeaveRequest struct {
	AuditModel
	EmployeeID      int64           `gorm:"not null;index:idx_leave_requests_lookup,priority:1" json:"employee_id"`
	Status          leave.State     `gorm:"type:varchar(5);not null;default:'PEND';index:idx_leave_requests_lookup,priority:2" json:"status"`
	StartDate       time.Time       `gorm:"type:date;not null;index:idx_leave_requests_lookup,priority:3" json:"start_date"`
	EndDate         time.Time       `gorm:"type:date;not null;index:idx_leave_requests_lookup,priority:4" json:"end_date"`
	BusinessDays    decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"business_days"`
	Comment         string          `gorm:"type:varchar(255);not null;default:''" json:"comment"`
	CreatedBy       *int64          `json:"created_by,omitempty"`
	ResolvedBy      *int64          `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time      `gorm:"type:timestamptz" json:"resolved_at,omitempty"`
	ResolverComment string          `gorm:"type:varchar(255);not null;default:''" json:"resolver_comment"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Resolution 状态流转时写入的审批信息
type Resolution struct {
	By      int64
	At      time.Time
	Comment string
}
