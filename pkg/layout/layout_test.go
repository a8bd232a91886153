package layout

import (
	"testing"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

func TestSelectShell(t *testing.T) {
	tests := []struct {
		role domain.Role
		want Shell
	}{
		{domain.RoleAdmin, AdminShell},
		{domain.RoleTrainer, TrainerShell},
		{domain.RoleMember, MemberShell},
		// Unknown roles get the most restricted shell
		{domain.Role("superuser"), MemberShell},
		{domain.Role(""), MemberShell},
	}

	for _, tt := range tests {
		if got := SelectShell(tt.role); got != tt.want {
			t.Errorf("SelectShell(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestNav(t *testing.T) {
	adminNav := Nav(AdminShell, domain.RoleAdmin)
	if len(adminNav) != 5 {
		t.Errorf("admin nav has %d items, want 5", len(adminNav))
	}

	trainerNav := Nav(TrainerShell, domain.RoleTrainer)
	if len(trainerNav) != 4 {
		t.Errorf("trainer nav has %d items, want 4", len(trainerNav))
	}

	memberNav := Nav(MemberShell, domain.RoleMember)
	if len(memberNav) != 3 {
		t.Errorf("member nav has %d items, want 3", len(memberNav))
	}

	// Members never see settings or trainer management
	for _, item := range memberNav {
		if item.Path == "/settings" || item.Path == "/trainers" {
			t.Errorf("member nav contains staff path %q", item.Path)
		}
	}
	for _, item := range trainerNav {
		if item.Path == "/settings" || item.Path == "/trainers" {
			t.Errorf("trainer nav contains admin path %q", item.Path)
		}
	}
}

// The multi-role shell derives its effective view from the concrete
// role instead of assuming one fixed variant.
func TestNavMultiRole(t *testing.T) {
	tests := []struct {
		role domain.Role
		want int
	}{
		{domain.RoleAdmin, 5},
		{domain.RoleTrainer, 4},
		{domain.RoleMember, 3},
	}

	for _, tt := range tests {
		got := Nav(MultiRoleShell, tt.role)
		if len(got) != tt.want {
			t.Errorf("Nav(MultiRoleShell, %q) has %d items, want %d", tt.role, len(got), tt.want)
		}
	}
}

func TestNavUnknownShell(t *testing.T) {
	if got := Nav(Shell("bogus"), domain.RoleAdmin); got != nil {
		t.Errorf("Nav(unknown shell) = %v, want nil", got)
	}
}
