// Package authz 基于角色的授权策略：Authorize(actor, action, resource)
package authz

import (
	"strings"

	"HRCore/pkg/errors"
)

type Role string

const (
	RoleEmployee   Role = "EMPLEADO"
	RoleSupervisor Role = "SUPERVISOR"
	RoleManager    Role = "GERENTE"
	RoleHR         Role = "RRHH"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

type Action string

const (
	RecordRead         Action = "record.read"
	CatalogWrite       Action = "catalog.write"
	EmployeeWrite      Action = "employee.write"
	CheckInCreate      Action = "checkin.create"
	CheckInRecalculate Action = "checkin.recalculate"
	JustificationWrite Action = "justification.create"
	JustificationRes   Action = "justification.resolve"
	LeaveCreate        Action = "leave.create"
	LeaveUpdate        Action = "leave.update"
	LeaveApprove       Action = "leave.approve"
	LeaveReject        Action = "leave.reject"
	LeaveCancel        Action = "leave.cancel"
	BalanceRecompute   Action = "balance.recompute"
	BalanceExport      Action = "balance.export"
	ReportRead         Action = "report.read"
)

// 写操作角色：RRHH 及以上可维护目录数据
var hrRoles = []Role{RoleHR, RoleAdmin, RoleSuperAdmin}

// 审批角色：额外包含直属上级与经理
var approverRoles = []Role{RoleHR, RoleAdmin, RoleSuperAdmin, RoleSupervisor, RoleManager}

// rolePolicy 满足任一角色即可；ownerPolicy 为 true 时资源所有者本人亦可
var rolePolicy = map[Action][]Role{
	RecordRead:         approverRoles,
	CatalogWrite:       hrRoles,
	EmployeeWrite:      hrRoles,
	CheckInCreate:      approverRoles,
	CheckInRecalculate: approverRoles,
	JustificationWrite: approverRoles,
	JustificationRes:   approverRoles,
	LeaveCreate:        approverRoles,
	LeaveUpdate:        approverRoles,
	LeaveApprove:       approverRoles,
	LeaveReject:        approverRoles,
	LeaveCancel:        approverRoles,
	BalanceRecompute:   hrRoles,
	BalanceExport:      hrRoles,
	ReportRead:         hrRoles,
}

var ownerPolicy = map[Action]bool{
	RecordRead:         true,
	CheckInCreate:      true,
	JustificationWrite: true,
	LeaveCreate:        true,
	LeaveUpdate:        true,
	LeaveCancel:        true,
}

// Actor 当前请求的账号
type Actor struct {
	AccountID  int64
	EmployeeID *int64
	Roles      []Role
}

// Resource 被操作对象，OwnerEmployeeID 为 nil 表示不属于任何员工
type Resource struct {
	Kind            string
	OwnerEmployeeID *int64
}

func Owned(kind string, employeeID int64) Resource {
	return Resource{Kind: kind, OwnerEmployeeID: &employeeID}
}

func ParseRoles(raw string) []Role {
	var roles []Role
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			roles = append(roles, Role(part))
		}
	}
	return roles
}

func JoinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func (a Actor) HasRole(roles ...Role) bool {
	for _, have := range a.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Privileged 可代他人操作、可审批
func (a Actor) Privileged() bool {
	return a.HasRole(approverRoles...)
}

func (a Actor) Owns(res Resource) bool {
	return a.EmployeeID != nil && res.OwnerEmployeeID != nil && *a.EmployeeID == *res.OwnerEmployeeID
}

// Authorize 允许返回 nil，拒绝返回 errors.Forbidden
func Authorize(actor Actor, action Action, res Resource) error {
	if actor.HasRole(RoleSuperAdmin) {
		return nil
	}
	if roles, ok := rolePolicy[action]; ok && actor.HasRole(roles...) {
		return nil
	}
	if ownerPolicy[action] && actor.Owns(res) {
		return nil
	}
	return errors.Forbidden.WithMessage("%s on %s is not allowed", action, res.Kind)
}

// Can Authorize 的布尔形式
func Can(actor Actor, action Action, res Resource) bool {
	return Authorize(actor, action, res) == nil
}
