// Package layout maps an identity's role to the navigation shell that
// wraps page content. It decides chrome only; the access gate has
// already run by the time a shell is selected.
package layout

import "github.com/fitdesk/fitdesk/pkg/domain"

// Shell is a navigation shell variant.
type Shell string

const (
	AdminShell     Shell = "admin"
	TrainerShell   Shell = "trainer"
	MemberShell    Shell = "member"
	MultiRoleShell Shell = "multi-role"
)

// NavItem is one entry in a shell's navigation chrome.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// SelectShell returns the shell variant for a role. Unknown roles get
// the most restricted shell.
func SelectShell(role domain.Role) Shell {
	switch role {
	case domain.RoleAdmin:
		return AdminShell
	case domain.RoleTrainer:
		return TrainerShell
	case domain.RoleMember:
		return MemberShell
	default:
		return MemberShell
	}
}

// Nav returns the navigation items visible inside a shell. For
// MultiRoleShell the effective view is re-derived from the concrete
// role rather than assuming one fixed variant.
func Nav(shell Shell, role domain.Role) []NavItem {
	switch shell {
	case AdminShell:
		return []NavItem{
			{Label: "Dashboard", Path: "/dashboard"},
			{Label: "Members", Path: "/members"},
			{Label: "Classes", Path: "/classes"},
			{Label: "Trainers", Path: "/trainers"},
			{Label: "Settings", Path: "/settings"},
		}
	case TrainerShell:
		return []NavItem{
			{Label: "Dashboard", Path: "/dashboard"},
			{Label: "My Classes", Path: "/classes"},
			{Label: "Members", Path: "/members"},
			{Label: "Profile", Path: "/profile"},
		}
	case MemberShell:
		return []NavItem{
			{Label: "Dashboard", Path: "/dashboard"},
			{Label: "Class Schedule", Path: "/classes"},
			{Label: "Profile", Path: "/profile"},
		}
	case MultiRoleShell:
		return Nav(SelectShell(role), role)
	default:
		return nil
	}
}
