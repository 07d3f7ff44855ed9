package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/gorm"
)

// Per-operation allow-lists. There is no role hierarchy; every operation
// names its permitted roles explicitly so a new role never widens an
// existing permission by accident.
var (
	// update/delete workspace, manage members, change roles
	RolesManageWorkspace = []string{models.RoleOwner}
	// create/list/revoke invites
	RolesInvite = []string{models.RoleOwner, models.RoleAdmin}
	// create/update tasks, subtasks, comments, attachments
	// (member carries extra per-task restrictions checked in the services)
	RolesWriteTasks = []string{models.RoleOwner, models.RoleAdmin, models.RoleMember}
	// delete tasks
	RolesDeleteTasks = []string{models.RoleOwner, models.RoleAdmin}
	// manage tags, seed demo data
	RolesManageTags = []string{models.RoleOwner, models.RoleAdmin}
	// read tasks, members, tags, activity
	RolesRead = []string{models.RoleOwner, models.RoleAdmin, models.RoleMember, models.RoleViewer}
)

// RoleAllowed reports whether role is in the allowed set.
func RoleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// WorkspaceContext is the caller's resolved workspace plus their role in it.
type WorkspaceContext struct {
	Workspace models.Workspace `json:"workspace"`
	Role      string           `json:"role"`
}

type WorkspaceContextService struct {
	db *gorm.DB
}

func NewWorkspaceContextService(db *gorm.DB) *WorkspaceContextService {
	return &WorkspaceContextService{db: db}
}

// Resolve loads the workspace and the caller's membership for the persisted
// selection. Returns (nil, nil) when the selection is unset, the workspace no
// longer exists, or the caller has no membership: a stale or forged selector
// must look exactly like no selection at all.
func (s *WorkspaceContextService) Resolve(userID, workspaceID uint) (*WorkspaceContext, error) {
	if userID == 0 || workspaceID == 0 {
		return nil, nil
	}

	var workspace models.Workspace
	if err := s.db.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var membership models.WorkspaceMember
	err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &WorkspaceContext{Workspace: workspace, Role: membership.Role}, nil
}
