package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type TagService struct {
	db         *gorm.DB
	revalidate *RevalidationService
}

func NewTagService(db *gorm.DB, revalidate *RevalidationService) *TagService {
	return &TagService{db: db, revalidate: revalidate}
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Color string `json:"color" binding:"omitempty,max=20"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color *string `json:"color" binding:"omitempty,max=20"`
}

// List returns the workspace's tags. All roles may read.
func (s *TagService) List(workspaceID uint, role string) ([]models.Tag, error) {
	if !RoleAllowed(role, RolesRead) {
		return nil, response.NewForbidden("insufficient permissions")
	}
	var tags []models.Tag
	err := s.db.Where("workspace_id = ?", workspaceID).
		Order("name ASC").
		Find(&tags).Error
	return tags, err
}

// Create adds a tag. Owner or admin only.
func (s *TagService) Create(workspaceID uint, role string, req *CreateTagRequest) (*models.Tag, error) {
	if !RoleAllowed(role, RolesManageTags) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	var count int64
	if err := s.db.Model(&models.Tag{}).
		Where("workspace_id = ? AND name = ?", workspaceID, req.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("a tag with this name already exists")
	}

	tag := models.Tag{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Color:       req.Color,
	}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard)

	return &tag, nil
}

// Update renames or recolors a tag. Owner or admin only.
func (s *TagService) Update(workspaceID uint, role string, tagID uint, req *UpdateTagRequest) (*models.Tag, error) {
	if !RoleAllowed(role, RolesManageTags) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	var tag models.Tag
	err := s.db.Where("workspace_id = ?", workspaceID).First(&tag, tagID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("tag not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if len(updates) > 0 {
		if err := s.db.Model(&tag).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard)

	return &tag, nil
}

// Delete removes a tag and its task links. Owner or admin only.
func (s *TagService) Delete(workspaceID uint, role string, tagID uint) error {
	if !RoleAllowed(role, RolesManageTags) {
		return response.NewForbidden("insufficient permissions")
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Tag{}, tagID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewNotFound("tag not found")
		}
		return tx.Where("tag_id = ?", tagID).Delete(&models.TaskTag{}).Error
	}); err != nil {
		return err
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard)

	return nil
}
