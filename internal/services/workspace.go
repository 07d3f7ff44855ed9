package services

import (
	"errors"
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type WorkspaceService struct {
	db         *gorm.DB
	activity   *ActivityService
	revalidate *RevalidationService
}

func NewWorkspaceService(db *gorm.DB, activity *ActivityService, revalidate *RevalidationService) *WorkspaceService {
	return &WorkspaceService{db: db, activity: activity, revalidate: revalidate}
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=1000"`
}

type UpdateWorkspaceRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// Create makes a workspace with the caller as its owner. Any authenticated
// user may create one. Workspace row, owner membership, and the audit entry
// commit together.
func (s *WorkspaceService) Create(userID uint, req *CreateWorkspaceRequest) (*models.Workspace, error) {
	workspace := models.Workspace{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}
		member := models.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      userID,
			Role:        models.RoleOwner,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return s.activity.Record(tx, workspace.ID, nil, userID, models.ActionWorkspaceCreated,
			map[string]interface{}{"name": workspace.Name})
	}); err != nil {
		return nil, err
	}

	s.revalidate.Invalidate(ViewRoot)

	return &workspace, nil
}

// Update renames or re-describes a workspace. Owner only.
func (s *WorkspaceService) Update(workspaceID uint, role string, req *UpdateWorkspaceRequest) (*models.Workspace, error) {
	if !RoleAllowed(role, RolesManageWorkspace) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	var workspace models.Workspace
	if err := s.db.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("workspace not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&workspace).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.revalidate.Invalidate(ViewSettings)

	return &workspace, nil
}

// Delete removes a workspace. Owner only. Scoped rows (tasks, invites, ...)
// are cascade-deleted by the store.
func (s *WorkspaceService) Delete(workspaceID uint, role string) error {
	if !RoleAllowed(role, RolesManageWorkspace) {
		return response.NewForbidden("insufficient permissions")
	}

	result := s.db.Delete(&models.Workspace{}, workspaceID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("workspace not found")
	}

	s.revalidate.Invalidate(ViewRoot)

	return nil
}

// GetByID returns a workspace only when the caller is a member of it.
func (s *WorkspaceService) GetByID(workspaceID, userID uint) (*models.Workspace, error) {
	var membership models.WorkspaceMember
	err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("workspace not found")
		}
		return nil, err
	}

	var workspace models.Workspace
	if err := s.db.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("workspace not found")
		}
		return nil, err
	}
	return &workspace, nil
}

// WorkspaceWithRole pairs a workspace with the caller's role and join date.
type WorkspaceWithRole struct {
	models.Workspace
	Role        string    `json:"role"`
	MemberSince time.Time `json:"member_since"`
}

// ListForUser returns every workspace the user belongs to.
func (s *WorkspaceService) ListForUser(userID uint) ([]WorkspaceWithRole, error) {
	var memberships []models.WorkspaceMember
	err := s.db.Where("user_id = ?", userID).
		Preload("Workspace").
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	out := make([]WorkspaceWithRole, 0, len(memberships))
	for _, m := range memberships {
		if m.Workspace == nil {
			continue
		}
		out = append(out, WorkspaceWithRole{
			Workspace:   *m.Workspace,
			Role:        m.Role,
			MemberSince: m.CreatedAt,
		})
	}
	return out, nil
}

// MemberInfo is one row of the member list.
type MemberInfo struct {
	UserID      uint            `json:"user_id"`
	Role        string          `json:"role"`
	MemberSince time.Time       `json:"member_since"`
	Email       string          `json:"email"`
	Profile     *models.Profile `json:"profile,omitempty"`
}

// Members lists workspace members with their profiles. All roles may read.
func (s *WorkspaceService) Members(workspaceID uint, role string) ([]MemberInfo, error) {
	if !RoleAllowed(role, RolesRead) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	var memberships []models.WorkspaceMember
	err := s.db.Where("workspace_id = ?", workspaceID).
		Preload("User.Profile").
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	out := make([]MemberInfo, 0, len(memberships))
	for _, m := range memberships {
		info := MemberInfo{
			UserID:      m.UserID,
			Role:        m.Role,
			MemberSince: m.CreatedAt,
		}
		if m.User != nil {
			info.Email = m.User.Email
			info.Profile = m.User.Profile
		}
		out = append(out, info)
	}
	return out, nil
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member viewer"`
}

// UpdateMemberRole changes a member's role. Owner only. Owner itself is not
// an assignable role.
func (s *WorkspaceService) UpdateMemberRole(workspaceID uint, role string, targetUserID uint, req *UpdateMemberRoleRequest, actorID uint) error {
	if !RoleAllowed(role, RolesManageWorkspace) {
		return response.NewForbidden("insufficient permissions")
	}

	var membership models.WorkspaceMember
	err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("member not found")
		}
		return err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&membership).Update("role", req.Role).Error; err != nil {
			return err
		}
		return s.activity.Record(tx, workspaceID, nil, actorID, models.ActionRoleChanged,
			map[string]interface{}{"user_id": targetUserID, "role": req.Role})
	}); err != nil {
		return err
	}

	s.revalidate.Invalidate(ViewMembers)

	return nil
}

// SeedDemoData fills a fresh workspace with example tags and tasks so the
// board is not empty on first visit. Owner or admin.
func (s *WorkspaceService) SeedDemoData(workspaceID uint, role string, actorID uint) error {
	if !RoleAllowed(role, RolesManageTags) {
		return response.NewForbidden("insufficient permissions")
	}

	var existing int64
	if err := s.db.Model(&models.Task{}).
		Where("workspace_id = ?", workspaceID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return response.NewConflict("workspace already has tasks")
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		tags := []models.Tag{
			{WorkspaceID: workspaceID, Name: "design", Color: "#8b5cf6"},
			{WorkspaceID: workspaceID, Name: "engineering", Color: "#3b82f6"},
			{WorkspaceID: workspaceID, Name: "urgent", Color: "#ef4444"},
		}
		for i := range tags {
			if err := tx.Create(&tags[i]).Error; err != nil {
				return err
			}
		}

		tasks := []struct {
			title    string
			status   string
			priority string
			tag      *models.Tag
			subtasks []string
		}{
			{"Set up the project board", models.StatusDone, models.PriorityMedium, &tags[1],
				[]string{"Invite the team", "Pick a workflow"}},
			{"Draft the first milestone", models.StatusInProgress, models.PriorityHigh, &tags[0],
				[]string{"Collect requirements", "Review with stakeholders"}},
			{"Plan the kickoff meeting", models.StatusBacklog, models.PriorityLow, nil, nil},
		}
		for _, seed := range tasks {
			task := models.Task{
				WorkspaceID: workspaceID,
				Title:       seed.title,
				Status:      seed.status,
				Priority:    seed.priority,
				CreatedBy:   actorID,
			}
			if err := tx.Omit("Tags").Create(&task).Error; err != nil {
				return err
			}
			if seed.tag != nil {
				if err := tx.Create(&models.TaskTag{TaskID: task.ID, TagID: seed.tag.ID}).Error; err != nil {
					return err
				}
			}
			for i, title := range seed.subtasks {
				sub := models.Subtask{TaskID: task.ID, Title: title, Position: i}
				if err := tx.Create(&sub).Error; err != nil {
					return err
				}
			}
			if err := s.activity.Record(tx, workspaceID, &task.ID, actorID, models.ActionTaskCreated,
				map[string]interface{}{"title": task.Title, "seeded": true}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard, ViewCalendar)

	return nil
}

// RemoveMember deletes a membership. Owner only. The removed user's stale
// workspace selector resolves to nothing on their next request.
func (s *WorkspaceService) RemoveMember(workspaceID uint, role string, targetUserID, actorID uint) error {
	if !RoleAllowed(role, RolesManageWorkspace) {
		return response.NewForbidden("insufficient permissions")
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).
			Delete(&models.WorkspaceMember{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewNotFound("member not found")
		}
		return s.activity.Record(tx, workspaceID, nil, actorID, models.ActionMemberRemoved,
			map[string]interface{}{"user_id": targetUserID})
	}); err != nil {
		return err
	}

	s.revalidate.Invalidate(ViewMembers)

	return nil
}
