package authz

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"HRCore/pkg/errors"
)

func employee(id int64, roles ...Role) Actor {
	return Actor{AccountID: id * 10, EmployeeID: &id, Roles: roles}
}

func TestAuthorizeMatrix(t *testing.T) {
	own := Owned("leave_request", 1)
	other := Owned("leave_request", 2)

	cases := []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		allow  bool
	}{
		{"employee creates own request", employee(1, RoleEmployee), LeaveCreate, own, true},
		{"employee creates for someone else", employee(1, RoleEmployee), LeaveCreate, other, false},
		{"employee cancels own request", employee(1, RoleEmployee), LeaveCancel, own, true},
		{"employee cancels other request", employee(1, RoleEmployee), LeaveCancel, other, false},
		{"employee cannot approve own request", employee(1, RoleEmployee), LeaveApprove, own, false},
		{"supervisor approves", employee(3, RoleSupervisor), LeaveApprove, other, true},
		{"manager rejects", employee(3, RoleManager), LeaveReject, other, true},
		{"hr cancels other request", employee(3, RoleHR), LeaveCancel, other, true},
		{"supervisor cannot recompute", employee(3, RoleSupervisor), BalanceRecompute, Resource{Kind: "balance"}, false},
		{"hr recomputes", employee(3, RoleHR), BalanceRecompute, Resource{Kind: "balance"}, true},
		{"manager cannot read reports", employee(3, RoleManager), ReportRead, Resource{Kind: "report"}, false},
		{"admin reads reports", Actor{Roles: []Role{RoleAdmin}}, ReportRead, Resource{Kind: "report"}, true},
		{"superadmin always", Actor{Roles: []Role{RoleSuperAdmin}}, Action("anything"), Resource{}, true},
		{"account without employee", Actor{AccountID: 5}, RecordRead, own, false},
		{"admin writes catalog", employee(4, RoleAdmin), CatalogWrite, Resource{Kind: "holiday"}, true},
		{"employee writes catalog", employee(1, RoleEmployee), CatalogWrite, Resource{Kind: "holiday"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.action, tc.res)
			if tc.allow {
				assert.NoError(t, err)
				return
			}
			assert.True(t, stderrors.Is(err, errors.Forbidden))
		})
	}
}

func TestParseRoles(t *testing.T) {
	roles := ParseRoles(" rrhh, Supervisor ,,")
	assert.Equal(t, []Role{RoleHR, RoleSupervisor}, roles)
	assert.Equal(t, "RRHH,SUPERVISOR", JoinRoles(roles))
	assert.Nil(t, ParseRoles(""))
}

func TestPrivileged(t *testing.T) {
	assert.True(t, employee(1, RoleManager).Privileged())
	assert.False(t, employee(1, RoleEmployee).Privileged())
}
