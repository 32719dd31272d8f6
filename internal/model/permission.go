package model

import (
	"time"

	"github.com/shopspring/decimal"

	"HRCore/internal/leave"
)

// PermissionType 许可类型目录
type PermissionType struct {
	BaseModel
	Name             string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Paid             bool   `gorm:"not null;default:false" json:"paid"`
	RequiresEvidence bool   `gorm:"not null;default:false" json:"requires_evidence"`
	Active           bool   `gorm:"not null;default:true" json:"active"`
}

func (PermissionType) TableName() string {
	return "permission_types"
}

// Permission 许可申请，与年假共用状态机。Hours 非空时起止必须为同一天
type Permission struct {
	AuditModel
	EmployeeID      int64            `gorm:"not null;index:idx_permissions_lookup,priority:1" json:"employee_id"`
	TypeID          int64            `gorm:"not null;index" json:"type_id"`
	Type            *PermissionType  `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	Status          leave.State      `gorm:"type:varchar(5);not null;default:'PEND';index:idx_permissions_lookup,priority:2" json:"status"`
	StartDate       time.Time        `gorm:"type:date;not null;index:idx_permissions_lookup,priority:3" json:"start_date"`
	EndDate         time.Time        `gorm:"type:date;not null;index:idx_permissions_lookup,priority:4" json:"end_date"`
	Hours           *decimal.Decimal `gorm:"type:numeric(5,2)" json:"hours,omitempty"`
	Reason          string           `gorm:"type:varchar(255);not null;default:''" json:"reason"`
	CreatedBy       *int64           `json:"created_by,omitempty"`
	ResolvedBy      *int64           `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time       `gorm:"type:timestamptz" json:"resolved_at,omitempty"`
	ResolverComment string           `gorm:"type:varchar(255);not null;default:''" json:"resolver_comment"`
}

func (Permission) TableName() string {
	return "permissions"
}
