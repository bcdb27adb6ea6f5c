package dossier

// roleRanks orders roles by seniority: manager > officer > secretary.
// Unknown roles rank 0, below every valid role.
var roleRanks = map[Role]int{
	RoleSecretary: 1,
	RoleOfficer:   2,
	RoleManager:   3,
}

// rolePermissions is the flat capability table. Membership is independent of
// rank: a role not listed for an action cannot perform it even if it outranks
// a role that can.
var rolePermissions = map[Role][]Action{
	RoleSecretary: {
		ActionViewDashboard,
		ActionCreateApplication,
		ActionViewApplications,
		ActionAssignOfficer,
		ActionViewProfile,
	},
	RoleOfficer: {
		ActionViewDashboard,
		ActionViewApplications,
		ActionUpdateApplication,
		ActionProcessApplication,
		ActionViewProfile,
	},
	RoleManager: {
		ActionViewDashboard,
		ActionViewApplications,
		ActionCreateApplication,
		ActionUpdateApplication,
		ActionModifyClientInfo,
		ActionDeleteApplication,
		ActionAssignOfficer,
		ActionManageUsers,
		ActionViewReports,
		ActionViewProfile,
	},
}

// RankOf returns the seniority rank of a role. Unknown roles yield 0.
func RankOf(role Role) int {
	return roleRanks[role]
}

// HasPermission reports whether the user's role ranks at or above the
// required role. This is the hierarchical check: a manager satisfies any
// officer or secretary requirement.
func HasPermission(user *User, required Role) bool {
	if user == nil {
		return false
	}
	return RankOf(user.Role) >= RankOf(required) && RankOf(user.Role) > 0
}

// Can reports whether the user's role is whitelisted for the action.
// Unlike HasPermission this is not hierarchical: an officer cannot
// create_application although officer outranks secretary.
func Can(user *User, action Action) bool {
	if user == nil {
		return false
	}
	for _, a := range rolePermissions[user.Role] {
		if a == action {
			return true
		}
	}
	return false
}

// Permissions returns the action whitelist for a role. Unknown roles yield nil.
func Permissions(role Role) []Action {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	out := make([]Action, len(perms))
	copy(out, perms)
	return out
}
