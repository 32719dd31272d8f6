package model

import (
	"time"

	"HRCore/internal/authz"
)

// Account 登录账号，可关联一名员工
type Account struct {
	BaseModel
	Username     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(100);not null" json:"-"`
	Roles        string     `gorm:"type:varchar(128);not null;default:'EMPLEADO'" json:"roles"` // 逗号分隔
	EmployeeID   *int64     `gorm:"uniqueIndex" json:"employee_id,omitempty"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	LastLoginAt  *time.Time `gorm:"type:timestamptz" json:"last_login_at,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

// Actor 转换为授权主体
func (a Account) Actor() authz.Actor {
	return authz.Actor{
		AccountID:  a.ID,
		EmployeeID: a.EmployeeID,
		Roles:      authz.ParseRoles(a.Roles),
	}
}
