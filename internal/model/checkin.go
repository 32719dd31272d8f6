package model

import (
	"time"

	"HRCore/internal/leave"
)

// CheckInType 打卡类型
type CheckInType string

const (
	CheckInTypeIn  CheckInType = "IN"
	CheckInTypeOut CheckInType = "OUT"
)

// CheckInSource 打卡来源
type CheckInSource string

const (
	SourceMobile CheckInSource = "MOBILE"
	SourceWeb    CheckInSource = "WEB"
	SourceKiosk  CheckInSource = "KIOSK"
	SourceOther  CheckInSource = "OTHER"
)

// CheckIn 考勤打卡。DistanceM/InsideGeofence 由坐标与地点计算，可重算
type CheckIn struct {
	AuditModel
	EmployeeID     int64         `gorm:"not null;index:idx_check_ins_employee_ts" json:"employee_id"`
	Type           CheckInType   `gorm:"type:varchar(4);not null" json:"type"`
	Ts             time.Time     `gorm:"type:timestamptz;not null;index:idx_check_ins_employee_ts" json:"ts"`
	Source         CheckInSource `gorm:"type:varchar(10);not null;default:'MOBILE'" json:"source"`
	Latitude       *float64      `gorm:"type:numeric(9,6)" json:"latitude,omitempty"`
	Longitude      *float64      `gorm:"type:numeric(9,6)" json:"longitude,omitempty"`
	LocationID     *int64        `gorm:"index" json:"location_id,omitempty"`
	Location       *Location     `gorm:"foreignKey:LocationID" json:"-"`
	DistanceM      *int          `json:"distance_m"`
	InsideGeofence bool          `gorm:"not null;default:false;index:idx_check_ins_inside" json:"inside_geofence"`
	Note           string        `gorm:"type:varchar(255);not null;default:''" json:"note"`
	CreatedBy      *int64        `json:"created_by,omitempty"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}

// Justification 缺勤 / 迟到说明，只能批准或驳回
type Justification struct {
	AuditModel
	EmployeeID int64       `gorm:"not null;index:idx_justifications_employee_date" json:"employee_id"`
	Date       time.Time   `gorm:"type:date;not null;index:idx_justifications_employee_date" json:"date"`
	Reason     string      `gorm:"type:varchar(255);not null" json:"reason"`
	Detail     string      `gorm:"type:text;not null;default:''" json:"detail"`
	Status     leave.State `gorm:"type:varchar(5);not null;default:'PEND';index" json:"status"`
	CreatedBy  *int64      `json:"created_by,omitempty"`
	ResolvedBy *int64      `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time  `gorm:"type:timestamptz" json:"resolved_at,omitempty"`
}

func (Justification) TableName() string {
	return "justifications"
}
