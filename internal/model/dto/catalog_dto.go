package dto

import (
	"github.com/shopspring/decimal"

	"HRCore/internal/model"
	"HRCore/utils"
)

// ========== 节假日 / 政策 / 余额 DTO ==========

type HolidayRequest struct {
	Date       string `json:"date" validate:"required,isodate"`
	Name       string `json:"name" validate:"required,max=120"`
	Recurrence string `json:"recurrence" validate:"max=255"`
}

type HolidayQuery struct {
	From string `query:"from" validate:"omitempty,isodate"`
	To   string `query:"to" validate:"omitempty,isodate"`
	Year int    `query:"year" validate:"omitempty,gte=1900,lte=9999"`
}

type HolidayItem struct {
	Date       string `json:"date"`
	Name       string `json:"name"`
	Recurrence string `json:"recurrence,omitempty"`
	ID         int64  `json:"id"`
}

func NewHolidayItem(h model.Holiday) HolidayItem {
	return HolidayItem{ID: h.ID, Date: utils.FormatDate(h.Date), Name: h.Name, Recurrence: h.Recurrence}
}

type YearQuery struct {
	Year int `query:"year" validate:"required,gte=1900,lte=9999"`
}

type ExpandResult struct {
	Dates    []string `json:"dates"`
	Year     int      `json:"year"`
	Upserted int64    `json:"upserted"`
}

// ImportRowError 导入时被跳过的行，Row 从 1 开始
type ImportRowError struct {
	Error string `json:"error"`
	Row   int    `json:"row"`
}

type ImportResult struct {
	Skipped  []ImportRowError `json:"skipped"`
	Rows     int              `json:"rows"`
	Upserted int64            `json:"upserted"`
}

type PolicyRequest struct {
	Active       *bool `json:"active"`
	YearsFrom    int   `json:"years_from" validate:"gte=0,lte=80"`
	YearsTo      int   `json:"years_to" validate:"gte=0,lte=80"`
	Days         int   `json:"days" validate:"gte=0,lte=365"`
	MaxCarryover int   `json:"max_carryover" validate:"gte=0,lte=365"`
}

type BalanceQuery struct {
	EmployeeID *int64 `query:"employee_id"`
	Year       *int   `query:"year" validate:"omitempty,gte=1900,lte=9999"`
	PageQuery
}

type BalanceItem struct {
	DaysAssigned  decimal.Decimal `json:"days_assigned"`
	DaysCarried   decimal.Decimal `json:"days_carried"`
	DaysTaken     decimal.Decimal `json:"days_taken"`
	DaysAvailable decimal.Decimal `json:"days_available"`
	ExpiresOn     string          `json:"expires_on"`
	EmployeeID    int64           `json:"employee_id"`
	Year          int             `json:"year"`
}

func NewBalanceItem(b model.AnnualBalance) BalanceItem {
	return BalanceItem{
		EmployeeID:    b.EmployeeID,
		Year:          b.Year,
		DaysAssigned:  b.DaysAssigned,
		DaysCarried:   b.DaysCarried,
		DaysTaken:     b.DaysTaken,
		DaysAvailable: b.DaysAvailable,
		ExpiresOn:     utils.FormatDate(b.ExpiresOn),
	}
}

// RebuildRequest async 为 true 时投递到队列，返回 202
type RebuildRequest struct {
	Year       *int   `json:"year" validate:"omitempty,gte=1900,lte=9999"`
	EmployeeID *int64 `json:"employee_id"`
	ActiveOnly bool   `json:"active_only"`
	DryRun     bool   `json:"dry_run"`
	Async      bool   `json:"async"`
}
