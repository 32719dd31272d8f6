package dto

import (
	"time"

	"HRCore/internal/model"
	"HRCore/pkg/workday"
	"HRCore/utils"
)

// ========== Employee / 组织 DTO ==========

type EmployeeRequest struct {
	WorkScheduleID *int64 `json:"work_schedule_id"`
	LocationID     *int64 `json:"location_id"`
	SupervisorID   *int64 `json:"supervisor_id"`
	Number         string `json:"number" validate:"required,max=30"`
	FirstName      string `json:"first_name" validate:"required,max=60"`
	LastName       string `json:"last_name" validate:"required,max=60"`
	SecondLastName string `json:"second_last_name" validate:"max=60"`
	CURP           string `json:"curp" validate:"required,curp"`
	RFC            string `json:"rfc" validate:"required,rfc"`
	NSS            string `json:"nss" validate:"required,nss"`
	Email          string `json:"email" validate:"omitempty,email,max=254"`
	Status         string `json:"status" validate:"omitempty,oneof=A B"`
	HireDate       string `json:"hire_date" validate:"omitempty,isodate"`
	SeniorityDate  string `json:"seniority_date" validate:"omitempty,isodate"`
}

type EmployeeQuery struct {
	LocationID *int64 `query:"location_id"`
	Status     string `query:"status" validate:"omitempty,oneof=A B"`
	Search     string `query:"q" validate:"max=60"`
	PageQuery
}

type EmployeeItem struct {
	WorkScheduleID *int64 `json:"work_schedule_id,omitempty"`
	LocationID     *int64 `json:"location_id,omitempty"`
	SupervisorID   *int64 `json:"supervisor_id,omitempty"`
	Number         string `json:"number"`
	FullName       string `json:"full_name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	SecondLastName string `json:"second_last_name"`
	CURP           string `json:"curp"`
	RFC            string `json:"rfc"`
	NSS            string `json:"nss"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	HireDate       string `json:"hire_date,omitempty"`
	SeniorityDate  string `json:"seniority_date,omitempty"`
	WorkDays       string `json:"work_days,omitempty"`
	ID             int64  `json:"id"`
}

func NewEmployeeItem(e *model.Employee) EmployeeItem {
	item := EmployeeItem{
		ID:             e.ID,
		Number:         e.Number,
		FullName:       e.FullName(),
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		SecondLastName: e.SecondLastName,
		CURP:           e.CURP,
		RFC:            e.RFC,
		NSS:            e.NSS,
		Email:          e.Email,
		Status:         string(e.Status),
		HireDate:       utils.FormatDatePtr(e.HireDate),
		SeniorityDate:  utils.FormatDatePtr(e.SeniorityDate),
		WorkScheduleID: e.WorkScheduleID,
		LocationID:     e.LocationID,
		SupervisorID:   e.SupervisorID,
	}
	if e.WorkSchedule != nil {
		item.WorkDays = workDays(e.WorkSchedule.WorkMask)
	}
	return item
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Active    *bool    `json:"active"`
	Name      string   `json:"name" validate:"required,max=120"`
	RadiusM   int      `json:"radius_m" validate:"gte=0,lte=100000"`
}

type WorkScheduleRequest struct {
	WorkMask *int   `json:"work_mask" validate:"required,workmask"`
	Name     string `json:"name" validate:"required,max=80"`
}

type WorkScheduleItem struct {
	Name     string `json:"name"`
	WorkDays string `json:"work_days"`
	ID       int64  `json:"id"`
	WorkMask int16  `json:"work_mask"`
}

func NewWorkScheduleItem(s model.WorkSchedule) WorkScheduleItem {
	return WorkScheduleItem{ID: s.ID, Name: s.Name, WorkMask: s.WorkMask, WorkDays: workDays(s.WorkMask)}
}

// ParseOptionalDate 空串返回 nil
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func workDays(mask int16) string {
	return workday.Mask(mask).Days()
}
