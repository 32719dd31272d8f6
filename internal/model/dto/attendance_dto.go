package dto

import (
	"time"

	"HRCore/internal/model"
	"HRCore/utils"
)

// ========== 考勤 DTO ==========

// CreateCheckInRequest 坐标必须同时提供或同时省略
type CreateCheckInRequest struct {
	EmployeeID *int64     `json:"employee_id"`
	Ts         *time.Time `json:"ts"`
	Latitude   *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude  *float64   `json:"longitude" validate:"omitempty,longitude"`
	LocationID *int64     `json:"location_id"`
	Type       string     `json:"type" validate:"required,checkintype"`
	Source     string     `json:"source" validate:"omitempty,oneof=MOBILE WEB KIOSK OTHER"`
	Note       string     `json:"note" validate:"max=255"`
}

type CheckInQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	Inside     *bool  `query:"inside"`
	From       string `query:"from" validate:"omitempty,isodate"`
	To         string `query:"to" validate:"omitempty,isodate"`
	Type       string `query:"type" validate:"omitempty,checkintype"`
	PageQuery
}

type SummaryQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	Date       string `query:"date" validate:"required,isodate"`
}

// RangeSummaryQuery 不指定 employee_id 时 HR 可查看全部员工
type RangeSummaryQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	From       string `query:"from" validate:"required,isodate"`
	To         string `query:"to" validate:"required,isodate"`
}

// DailySummary 某员工某日的打卡汇总
type DailySummary struct {
	FirstIn    *time.Time `json:"first_in"`
	LastOut    *time.Time `json:"last_out"`
	Date       string     `json:"date"`
	EmployeeID int64      `json:"employee_id"`
	Events     int        `json:"events"`
	AllInside  bool       `json:"all_inside"`
}

type CheckInItem struct {
	Ts             time.Time `json:"ts"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	LocationID     *int64    `json:"location_id"`
	DistanceM      *int      `json:"distance_m"`
	Type           string    `json:"type"`
	Source         string    `json:"source"`
	Note           string    `json:"note"`
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employee_id"`
	InsideGeofence bool      `json:"inside_geofence"`
}

func NewCheckInItem(c *model.CheckIn) CheckInItem {
	return CheckInItem{
		ID:             c.ID,
		EmployeeID:     c.EmployeeID,
		Type:           string(c.Type),
		Ts:             c.Ts,
		Source:         string(c.Source),
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		LocationID:     c.LocationID,
		DistanceM:      c.DistanceM,
		InsideGeofence: c.InsideGeofence,
		Note:           c.Note,
	}
}

type CreateJustificationRequest struct {
	EmployeeID *int64 `json:"employee_id"`
	Date       string `json:"date" validate:"required,isodate"`
	Reason     string `json:"reason" validate:"required,max=255"`
	Detail     string `json:"detail" validate:"max=2000"`
}

// ResolveJustificationRequest 只能批准或驳回
type ResolveJustificationRequest struct {
	Status  string `json:"status" validate:"required,oneof=APROB RECH"`
	Comment string `json:"comment" validate:"max=255"`
}

type JustificationQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	Status     string `query:"status" validate:"omitempty,leavestate"`
	From       string `query:"from" validate:"omitempty,isodate"`
	To         string `query:"to" validate:"omitempty,isodate"`
	PageQuery
}

type JustificationItem struct {
	ResolvedBy *int64     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Date       string     `json:"date"`
	Reason     string     `json:"reason"`
	Detail     string     `json:"detail"`
	Status     string     `json:"status"`
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
}

func NewJustificationItem(j *model.Justification) JustificationItem {
	return JustificationItem{
		ID:         j.ID,
		EmployeeID: j.EmployeeID,
		Date:       utils.FormatDate(j.Date),
		Reason:     j.Reason,
		Detail:     j.Detail,
		Status:     string(j.Status),
		ResolvedBy: j.ResolvedBy,
		ResolvedAt: j.ResolvedAt,
	}
}
