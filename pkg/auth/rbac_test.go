package auth_test

import (
	"testing"

	"github.com/savetree-1/docflow/pkg/auth"
)

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		role   auth.Role
		action auth.Action
		allow  bool
	}{
		{"viewer view", auth.RoleViewer, auth.ActionView, true},
		{"viewer confirm", auth.RoleViewer, auth.ActionConfirm, false},
		{"officer confirm", auth.RoleOfficer, auth.ActionConfirm, true},
		{"officer reopen", auth.RoleOfficer, auth.ActionReopen, false},
		{"officer delete", auth.RoleOfficer, auth.ActionDelete, false},
		{"department admin reopen", auth.RoleDepartmentAdmin, auth.ActionReopen, true},
		{"department admin rules", auth.RoleDepartmentAdmin, auth.ActionManageRules, false},
		{"admin rules", auth.RoleAdmin, auth.ActionManageRules, true},
		{"no role", "", auth.ActionView, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := auth.Can(tc.role, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.allow)
			}
		})
	}
}

func TestHighest(t *testing.T) {
	if got := auth.Highest("viewer", "Department-Admin", "unknown"); got != auth.RoleDepartmentAdmin {
		t.Errorf("Highest() = %q, want department_admin", got)
	}
	if got := auth.Highest(); got != auth.RoleViewer {
		t.Errorf("Highest() = %q, want viewer", got)
	}
}

func TestSystemActorCannotActAsHuman(t *testing.T) {
	if !auth.System.IsSystem() {
		t.Fatal("System should report IsSystem")
	}
	if auth.System.Can(auth.ActionConfirm) {
		t.Error("system actor must not confirm")
	}
}
