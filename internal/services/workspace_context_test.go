package services

import (
	"errors"
	"testing"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/response"
)

// requireAppError asserts err is an *AppError with the given HTTP status.
func requireAppError(t *testing.T, err error, status int) *response.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != status {
		t.Fatalf("expected HTTP status %d, got %d (%s)", status, appErr.HTTPStatus, appErr.Message)
	}
	return appErr
}

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{"owner in manage set", models.RoleOwner, RolesManageWorkspace, true},
		{"admin not in manage set", models.RoleAdmin, RolesManageWorkspace, false},
		{"admin in invite set", models.RoleAdmin, RolesInvite, true},
		{"member not in invite set", models.RoleMember, RolesInvite, false},
		{"member in write set", models.RoleMember, RolesWriteTasks, true},
		{"viewer not in write set", models.RoleViewer, RolesWriteTasks, false},
		{"viewer in read set", models.RoleViewer, RolesRead, true},
		{"member not in delete set", models.RoleMember, RolesDeleteTasks, false},
		{"admin in delete set", models.RoleAdmin, RolesDeleteTasks, true},
		{"unknown role denied everywhere", "superuser", RolesRead, false},
		{"empty role denied", "", RolesRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleAllowed(tt.role, tt.allowed); got != tt.want {
				t.Errorf("RoleAllowed(%q) = %v, expected %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestAllowListsAreExplicit(t *testing.T) {
	// Each operation enumerates its own set; owner appears in every one but
	// there is no implied hierarchy beyond that.
	if len(RolesManageWorkspace) != 1 || RolesManageWorkspace[0] != models.RoleOwner {
		t.Errorf("RolesManageWorkspace = %v, expected owner only", RolesManageWorkspace)
	}
	if len(RolesInvite) != 2 {
		t.Errorf("RolesInvite = %v, expected owner and admin", RolesInvite)
	}
	if len(RolesWriteTasks) != 3 {
		t.Errorf("RolesWriteTasks = %v, expected owner, admin, member", RolesWriteTasks)
	}
	if len(RolesRead) != 4 {
		t.Errorf("RolesRead = %v, expected all four roles", RolesRead)
	}
	for _, set := range [][]string{RolesManageWorkspace, RolesInvite, RolesWriteTasks, RolesDeleteTasks, RolesManageTags, RolesRead} {
		if !RoleAllowed(models.RoleOwner, set) {
			t.Errorf("owner missing from allow list %v", set)
		}
	}
}

func TestWorkspaceContext_Structure(t *testing.T) {
	wctx := WorkspaceContext{
		Workspace: models.Workspace{ID: 3, Name: "Acme"},
		Role:      models.RoleAdmin,
	}

	if wctx.Workspace.ID != 3 {
		t.Errorf("Workspace.ID = %d, expected 3", wctx.Workspace.ID)
	}
	if wctx.Role != models.RoleAdmin {
		t.Errorf("Role = %q, expected %q", wctx.Role, models.RoleAdmin)
	}
}
