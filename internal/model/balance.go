package model

import (
	"time"

	"github.com/shopspring/decimal"

	"HRCore/internal/leave"
)

// VacationPolicyTier 工龄区间 [YearsFrom, YearsTo] 对应的年假天数与结转上限
type VacationPolicyTier struct {
	BaseModel
	YearsFrom    int  `gorm:"not null;index" json:"years_from"`
	YearsTo      int  `gorm:"not null;check:years_to >= years_from" json:"years_to"`
	Days         int  `gorm:"not null" json:"days"`
	MaxCarryover int  `gorm:"not null;default:0" json:"max_carryover"`
	Active       bool `gorm:"not null;default:true" json:"active"`
}

func (VacationPolicyTier) TableName() string {
	return "vacation_policy_tiers"
}

func (t VacationPolicyTier) Tier() leave.Tier {
	return leave.Tier{
		ID:           t.ID,
		YearsFrom:    t.YearsFrom,
		YearsTo:      t.YearsTo,
		Days:         t.Days,
		MaxCarryover: t.MaxCarryover,
		Active:       t.Active,
	}
}

// AnnualBalance 年假余额，只由重算任务整行覆盖写入
type AnnualBalance struct {
	AuditModel
	EmployeeID    int64           `gorm:"not null;uniqueIndex:idx_annual_balances_employee_year,priority:1" json:"employee_id"`
	Year          int             `gorm:"not null;uniqueIndex:idx_annual_balances_employee_year,priority:2" json:"year"`
	DaysAssigned  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"days_assigned"`
	DaysCarried   decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"days_carried"`
	DaysTaken     decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"days_taken"`
	DaysAvailable decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"days_available"`
	ExpiresOn     time.Time       `gorm:"type:date;not null" json:"expires_on"`
}

func (AnnualBalance) TableName() string {
	return "annual_balances"
}

// BalanceFromResult 计算结果转为持久化行
func BalanceFromResult(r leave.Result) AnnualBalance {
	return AnnualBalance{
		EmployeeID:    r.EmployeeID,
		Year:          r.Year,
		DaysAssigned:  r.Assigned,
		DaysCarried:   r.Carried,
		DaysTaken:     r.Taken,
		DaysAvailable: r.Available,
		ExpiresOn:     r.ExpiresOn,
	}
}

// SameValues 比较计算字段
func (b AnnualBalance) SameValues(o AnnualBalance) bool {
	return b.EmployeeID == o.EmployeeID &&
		b.Year == o.Year &&
		b.DaysAssigned.Equal(o.DaysAssigned) &&
		b.DaysCarried.Equal(o.DaysCarried) &&
		b.DaysTaken.Equal(o.DaysTaken) &&
		b.DaysAvailable.Equal(o.DaysAvailable) &&
		b.ExpiresOn.Equal(o.ExpiresOn)
}
