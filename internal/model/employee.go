package model

import (
	"strings"
	"time"

	"HRCore/pkg/workday"
)

// EmployeeStatus 员工状态
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "A" // 在职
	EmployeeInactive EmployeeStatus = "B" // 离职
)

type Employee struct {
	BaseModel
	Number         string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"`
	FirstName      string         `gorm:"type:varchar(60);not null" json:"first_name"`
	LastName       string         `gorm:"type:varchar(60);not null" json:"last_name"`
	SecondLastName string         `gorm:"type:varchar(60);not null;default:''" json:"second_last_name"`
	CURP           string         `gorm:"type:varchar(18);uniqueIndex;not null" json:"curp"`
	RFC            string         `gorm:"type:varchar(13);uniqueIndex;not null" json:"rfc"`
	NSS            string         `gorm:"type:varchar(11);uniqueIndex;not null" json:"nss"`
	Email          string         `gorm:"type:varchar(254);not null;default:''" json:"email"`
	Status         EmployeeStatus `gorm:"type:varchar(1);not null;default:'A';index:idx_employees_status" json:"status"`
	HireDate       *time.Time     `gorm:"type:date" json:"hire_date,omitempty"`
	SeniorityDate  *time.Time     `gorm:"type:date" json:"seniority_date,omitempty"`

	WorkScheduleID *int64        `gorm:"index" json:"work_schedule_id,omitempty"`
	WorkSchedule   *WorkSchedule `gorm:"foreignKey:WorkScheduleID" json:"-"`
	LocationID     *int64        `gorm:"index" json:"location_id,omitempty"`
	Location       *Location     `gorm:"foreignKey:LocationID" json:"-"`
	SupervisorID   *int64        `gorm:"index" json:"supervisor_id,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e Employee) FullName() string {
	parts := []string{e.FirstName, e.LastName, e.SecondLastName}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// WorkMask 未分配排班时使用 fallback
func (e Employee) WorkMask(fallback workday.Mask) workday.Mask {
	if e.WorkSchedule != nil {
		return workday.Mask(e.WorkSchedule.WorkMask)
	}
	return fallback
}
