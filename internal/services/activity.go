package services

import (
	"encoding/json"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// ActivityService appends to and reads the workspace audit trail. Rows are
// write-once; there is no update or delete path.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record appends one activity row on the given connection. Pass a
// transaction handle to make the record part of a larger atomic write.
func (s *ActivityService) Record(tx *gorm.DB, workspaceID uint, taskID *uint, actorID uint, action string, meta interface{}) error {
	if tx == nil {
		tx = s.db
	}

	var metaStr string
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			metaStr = string(b)
		}
	}

	entry := models.ActivityLog{
		WorkspaceID: workspaceID,
		TaskID:      taskID,
		ActorID:     actorID,
		Action:      action,
		Meta:        metaStr,
	}
	return tx.Create(&entry).Error
}

type ActivityListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	TaskID   *uint  `form:"task_id"`
	Action   string `form:"action"`
}

type ActivityListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ActivityLog `json:"items"`
}

// List returns recent activity in a workspace, newest first. All roles may read.
func (s *ActivityService) List(workspaceID uint, role string, req *ActivityListRequest) (*ActivityListResponse, error) {
	if !RoleAllowed(role, RolesRead) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.ActivityLog{}).Where("workspace_id = ?", workspaceID)
	if req.TaskID != nil {
		query = query.Where("task_id = ?", *req.TaskID)
	}
	if req.Action != "" {
		query = query.Where("action = ?", req.Action)
	}

	var total int64
	query.Count(&total)

	var items []models.ActivityLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Actor").
		Order("created_at DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &ActivityListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}
