package auth

import "strings"

// Role is a human actor's authorization level.
type Role string

// Action is an operation subject to authorization.
type Action string

const (
	RoleViewer          Role = "viewer"
	RoleOfficer         Role = "officer"
	RoleDepartmentAdmin Role = "department_admin"
	RoleAdmin           Role = "admin"
)

const (
	ActionView        Action = "view"
	ActionIntake      Action = "intake"
	ActionClassify    Action = "classify"
	ActionComment     Action = "comment"
	ActionConfirm     Action = "confirm"
	ActionReopen      Action = "reopen"
	ActionDelete      Action = "delete"
	ActionManageRules Action = "manage-rules"
)

var rank = map[Role]int{
	RoleViewer:          1,
	RoleOfficer:         2,
	RoleDepartmentAdmin: 3,
	RoleAdmin:           4,
}

// Can reports whether role may perform action.
func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleDepartmentAdmin:
		return action != ActionManageRules
	case RoleOfficer:
		switch action {
		case ActionView, ActionIntake, ActionClassify, ActionComment, ActionConfirm:
			return true
		}
		return false
	case RoleViewer:
		return action == ActionView
	default:
		return false
	}
}

// ParseRole returns the role named by s, ignoring case and treating "-" as "_".
// The second result is false for unknown names.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	_, ok := rank[r]
	return r, ok
}

// Highest returns the most privileged known role in names, or RoleViewer.
func Highest(names ...string) Role {
	best := RoleViewer
	for _, n := range names {
		if r, ok := ParseRole(n); ok && rank[r] > rank[best] {
			best = r
		}
	}
	return best
}
