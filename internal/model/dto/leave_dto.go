package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"HRCore/internal/model"
	"HRCore/utils"
)

// ========== 年假 / 许可 DTO ==========

type CreateLeaveRequest struct {
	EmployeeID *int64 `json:"employee_id"`
	StartDate  string `json:"start_date" validate:"required,isodate"`
	EndDate    string `json:"end_date" validate:"required,isodate"`
	Comment    string `json:"comment" validate:"max=255"`
}

// UpdateLeaveRequest 仅 PEND 状态可修改
type UpdateLeaveRequest struct {
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
	Comment   string `json:"comment" validate:"max=255"`
}

// TransitionRequest 审批 / 驳回 / 取消时的备注
type TransitionRequest struct {
	Comment string `json:"comment" validate:"max=255"`
}

type RequestQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	State      string `query:"state" validate:"omitempty,leavestate"`
	From       string `query:"from" validate:"omitempty,isodate"`
	To         string `query:"to" validate:"omitempty,isodate"`
	PageQuery
}

type SimulateQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	Start      string `query:"start" validate:"required,isodate"`
	End        string `query:"end" validate:"required,isodate"`
}

type SimulateResponse struct {
	Start        string          `json:"start"`
	End          string          `json:"end"`
	BusinessDays decimal.Decimal `json:"business_days"`
}

type LeaveItem struct {
	ResolvedBy      *int64          `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	CreatedBy       *int64          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	BusinessDays    decimal.Decimal `json:"business_days"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Status          string          `json:"status"`
	Comment         string          `json:"comment"`
	ResolverComment string          `json:"resolver_comment"`
	ID              int64           `json:"id"`
	EmployeeID      int64           `json:"employee_id"`
}

func NewLeaveItem(lr *model.LeaveRequest) LeaveItem {
	return LeaveItem{
		ID:              lr.ID,
		EmployeeID:      lr.EmployeeID,
		StartDate:       utils.FormatDate(lr.StartDate),
		EndDate:         utils.FormatDate(lr.EndDate),
		BusinessDays:    lr.BusinessDays,
		Status:          string(lr.Status),
		Comment:         lr.Comment,
		CreatedBy:       lr.CreatedBy,
		CreatedAt:       lr.CreatedAt,
		ResolvedBy:      lr.ResolvedBy,
		ResolvedAt:      lr.ResolvedAt,
		ResolverComment: lr.ResolverComment,
	}
}

type PermissionTypeRequest struct {
	Active           *bool  `json:"active"`
	Name             string `json:"name" validate:"required,max=120"`
	Paid             bool   `json:"paid"`
	RequiresEvidence bool   `json:"requires_evidence"`
}

// CreatePermissionRequest Hours 非空时起止必须同一天
type CreatePermissionRequest struct {
	EmployeeID *int64           `json:"employee_id"`
	Hours      *decimal.Decimal `json:"hours"`
	StartDate  string           `json:"start_date" validate:"required,isodate"`
	EndDate    string           `json:"end_date" validate:"required,isodate"`
	Reason     string           `json:"reason" validate:"max=255"`
	TypeID     int64            `json:"type_id" validate:"required,gt=0"`
}

type PermissionItem struct {
	ResolvedBy      *int64           `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	Hours           *decimal.Decimal `json:"hours,omitempty"`
	StartDate       string           `json:"start_date"`
	EndDate         string           `json:"end_date"`
	TypeName        string           `json:"type_name,omitempty"`
	Status          string           `json:"status"`
	Reason          string           `json:"reason"`
	ResolverComment string           `json:"resolver_comment"`
	ID              int64            `json:"id"`
	EmployeeID      int64            `json:"employee_id"`
	TypeID          int64            `json:"type_id"`
}

func NewPermissionItem(p *model.Permission) PermissionItem {
	item := PermissionItem{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		TypeID:          p.TypeID,
		StartDate:       utils.FormatDate(p.StartDate),
		EndDate:         utils.FormatDate(p.EndDate),
		Hours:           p.Hours,
		Status:          string(p.Status),
		Reason:          p.Reason,
		ResolvedBy:      p.ResolvedBy,
		ResolvedAt:      p.ResolvedAt,
		ResolverComment: p.ResolverComment,
	}
	if p.Type != nil {
		item.TypeName = p.Type.Name
	}
	return item
}

// CalendarQuery 默认返回 PEND + APROB
type CalendarQuery struct {
	EmployeeID       *int64 `query:"employee_id"`
	From             string `query:"from" validate:"required,isodate"`
	To               string `query:"to" validate:"required,isodate"`
	State            string `query:"state" validate:"omitempty,leavestate"`
	IncludePending   *bool  `query:"include_pending"`
	IncludeRejected  bool   `query:"include_rejected"`
	IncludeCancelled bool   `query:"include_cancelled"`
}

// CalendarEntry 员工某一天的缺勤
type CalendarEntry struct {
	Date       string `json:"date"`
	Kind       string `json:"kind"` // VACATION / PERMISSION
	State      string `json:"state"`
	TypeName   string `json:"type_name,omitempty"`
	EmployeeID int64  `json:"employee_id"`
	RequestID  int64  `json:"request_id"`
}

type CalendarResponse struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	States  []string        `json:"states"`
	Entries []CalendarEntry `json:"entries"`
}

// ========== 报表 DTO ==========

// BacklogQuery 缺省 3 天
type BacklogQuery struct {
	OlderThanDays *int `query:"older_than_days" validate:"omitempty,gte=0,lte=365"`
}

type GeofenceReportQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	From       string `query:"from" validate:"required,isodate"`
	To         string `query:"to" validate:"required,isodate"`
}
