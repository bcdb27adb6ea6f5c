package dossier_test

import (
	"testing"

	dossier "github.com/sogedesk/dossier-go"
)

func userWithRole(role dossier.Role) *dossier.User {
	return &dossier.User{ID: 1, Username: "test", Role: role}
}

func TestRankOf_Ordering(t *testing.T) {
	if !(dossier.RankOf(dossier.RoleManager) > dossier.RankOf(dossier.RoleOfficer)) {
		t.Error("manager should outrank officer")
	}
	if !(dossier.RankOf(dossier.RoleOfficer) > dossier.RankOf(dossier.RoleSecretary)) {
		t.Error("officer should outrank secretary")
	}
}

func TestRankOf_UnknownRoleFailsClosed(t *testing.T) {
	if got := dossier.RankOf(dossier.Role("intern")); got >= dossier.RankOf(dossier.RoleSecretary) {
		t.Errorf("unknown role rank = %d, want below every valid role", got)
	}
}

func TestHasPermission_Hierarchy(t *testing.T) {
	roles := []dossier.Role{dossier.RoleSecretary, dossier.RoleOfficer, dossier.RoleManager}

	for _, holder := range roles {
		for _, required := range roles {
			want := dossier.RankOf(holder) >= dossier.RankOf(required)
			got := dossier.HasPermission(userWithRole(holder), required)
			if got != want {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", holder, required, got, want)
			}
		}
	}
}

func TestHasPermission_NilUser(t *testing.T) {
	if dossier.HasPermission(nil, dossier.RoleSecretary) {
		t.Error("nil user should never pass HasPermission")
	}
}

func TestHasPermission_UnknownUserRole(t *testing.T) {
	if dossier.HasPermission(userWithRole("intern"), dossier.RoleSecretary) {
		t.Error("unknown role should fail closed")
	}
}

func TestCan_CapabilityIndependentOfRank(t *testing.T) {
	// Officer outranks secretary but holds neither create_application nor
	// assign_officer; whitelist membership is what counts.
	officer := userWithRole(dossier.RoleOfficer)

	if dossier.Can(officer, dossier.ActionCreateApplication) {
		t.Error("officer should not be able to create_application")
	}
	if dossier.Can(officer, dossier.ActionManageUsers) {
		t.Error("officer should not be able to manage_users")
	}
	if dossier.Can(officer, dossier.ActionViewReports) {
		t.Error("officer should not be able to view_reports")
	}
	if !dossier.Can(officer, dossier.ActionProcessApplication) {
		t.Error("officer should be able to process_application")
	}
}

func TestCan_SecretaryWhitelist(t *testing.T) {
	secretary := userWithRole(dossier.RoleSecretary)

	if dossier.Can(secretary, dossier.ActionManageUsers) {
		t.Error("secretary should not be able to manage_users")
	}
	if !dossier.Can(secretary, dossier.ActionCreateApplication) {
		t.Error("secretary should be able to create_application")
	}
	if !dossier.Can(secretary, dossier.ActionAssignOfficer) {
		t.Error("secretary should be able to assign_officer")
	}
}

func TestCan_ManagerWhitelist(t *testing.T) {
	manager := userWithRole(dossier.RoleManager)

	for _, action := range []dossier.Action{
		dossier.ActionManageUsers,
		dossier.ActionViewReports,
		dossier.ActionDeleteApplication,
		dossier.ActionModifyClientInfo,
	} {
		if !dossier.Can(manager, action) {
			t.Errorf("manager should be able to %s", action)
		}
	}
}

func TestCan_NilUserAndUnknownRole(t *testing.T) {
	if dossier.Can(nil, dossier.ActionViewDashboard) {
		t.Error("nil user should never pass Can")
	}
	if dossier.Can(userWithRole("intern"), dossier.ActionViewDashboard) {
		t.Error("unknown role should hold no capabilities")
	}
}

func TestPermissions_ReturnsCopy(t *testing.T) {
	perms := dossier.Permissions(dossier.RoleSecretary)
	if len(perms) == 0 {
		t.Fatal("secretary whitelist should not be empty")
	}
	perms[0] = dossier.Action("tampered")

	if dossier.Permissions(dossier.RoleSecretary)[0] == "tampered" {
		t.Error("mutating the returned slice must not affect the table")
	}
}
