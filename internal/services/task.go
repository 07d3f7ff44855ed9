package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type TaskService struct {
	db         *gorm.DB
	activity   *ActivityService
	revalidate *RevalidationService
}

func NewTaskService(db *gorm.DB, activity *ActivityService, revalidate *RevalidationService) *TaskService {
	return &TaskService{db: db, activity: activity, revalidate: revalidate}
}

type ListTasksRequest struct {
	Status     string `form:"status" binding:"omitempty,oneof=backlog in_progress done"`
	Priority   string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID uint   `form:"assignee_id"`
	TagID      uint   `form:"tag_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=created_at due_date priority title"`
	Order      string `form:"order" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=backlog in_progress done"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uint      `json:"assignee_id"`
	TagIDs      []uint     `json:"tag_ids"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=backlog in_progress done"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due_date"`
	AssigneeID  *uint      `json:"assignee_id"`
	Unassign    bool       `json:"unassign"`
	TagIDs      *[]uint    `json:"tag_ids"`
}

// List returns the workspace's tasks, filtered and paginated. All roles may
// read.
func (s *TaskService) List(workspaceID uint, role string, req *ListTasksRequest) ([]models.Task, int64, error) {
	if !RoleAllowed(role, RolesRead) {
		return nil, 0, response.NewForbidden("insufficient permissions")
	}

	query := s.db.Model(&models.Task{}).Where("tasks.workspace_id = ?", workspaceID)

	if req.Status != "" {
		query = query.Where("tasks.status = ?", req.Status)
	}
	if req.Priority != "" {
		query = query.Where("tasks.priority = ?", req.Priority)
	}
	if req.AssigneeID != 0 {
		query = query.Where("tasks.assignee_id = ?", req.AssigneeID)
	}
	if req.TagID != 0 {
		query = query.Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
			Where("task_tags.tag_id = ?", req.TagID)
	}
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("tasks.title LIKE ? OR tasks.description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := req.Order
	if order == "" {
		order = "desc"
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	var tasks []models.Task
	err := query.
		Preload("Assignee").
		Preload("Tags").
		Order(fmt.Sprintf("tasks.%s %s", sortBy, order)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Get loads one task with all of its owned rows. Lookups are workspace
// scoped, so a task from another tenant reads as not found.
func (s *TaskService) Get(workspaceID uint, role string, taskID uint) (*models.Task, error) {
	if !RoleAllowed(role, RolesRead) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	var task models.Task
	err := s.db.Where("workspace_id = ?", workspaceID).
		Preload("Assignee").
		Preload("Creator").
		Preload("Tags").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("subtasks.position ASC, subtasks.id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		Preload("Attachments").
		First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

// Create makes a task. Owner, admin, or member; a member may only create
// tasks assigned to themselves (an empty assignee defaults to the creator).
// Task row, tag links, and the audit entry commit together.
func (s *TaskService) Create(workspaceID uint, role string, actorID uint, req *CreateTaskRequest) (*models.Task, error) {
	if !RoleAllowed(role, RolesWriteTasks) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	assigneeID := req.AssigneeID
	if role == models.RoleMember {
		if assigneeID == nil {
			assigneeID = &actorID
		} else if *assigneeID != actorID {
			return nil, response.NewBadRequest("members may only assign tasks to themselves")
		}
	}
	if assigneeID != nil {
		if err := s.requireMember(workspaceID, *assigneeID); err != nil {
			return nil, err
		}
	}

	tags, err := s.resolveTags(workspaceID, req.TagIDs)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		WorkspaceID: workspaceID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  assigneeID,
		CreatedBy:   actorID,
	}
	if task.Status == "" {
		task.Status = models.StatusBacklog
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(&task).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&models.TaskTag{TaskID: task.ID, TagID: tag.ID}).Error; err != nil {
				return err
			}
		}
		return s.activity.Record(tx, workspaceID, &task.ID, actorID, models.ActionTaskCreated,
			map[string]interface{}{"title": task.Title})
	}); err != nil {
		return nil, err
	}
	task.Tags = tags

	s.revalidate.Invalidate(ViewTasks, ViewBoard, ViewCalendar)

	return &task, nil
}

// Update applies a partial update. Owner, admin, or member; a member may only
// touch tasks they created or are assigned to, and may only reassign to
// themselves. Field updates, tag replacement, and the audit entry commit
// together.
func (s *TaskService) Update(workspaceID uint, role string, actorID uint, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	if !RoleAllowed(role, RolesWriteTasks) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	var task models.Task
	err := s.db.Where("workspace_id = ?", workspaceID).First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}

	if role == models.RoleMember {
		assigned := task.AssigneeID != nil && *task.AssigneeID == actorID
		if task.CreatedBy != actorID && !assigned {
			return nil, response.NewForbidden("members may only update tasks they created or are assigned to")
		}
		if req.AssigneeID != nil && *req.AssigneeID != actorID {
			return nil, response.NewBadRequest("members may only assign tasks to themselves")
		}
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	statusChanged := false
	if req.Status != nil && *req.Status != task.Status {
		updates["status"] = *req.Status
		statusChanged = true
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.ClearDue {
		updates["due_date"] = nil
	} else if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.Unassign {
		updates["assignee_id"] = nil
	} else if req.AssigneeID != nil {
		if err := s.requireMember(workspaceID, *req.AssigneeID); err != nil {
			return nil, err
		}
		updates["assignee_id"] = *req.AssigneeID
	}

	var tags []models.Tag
	if req.TagIDs != nil {
		tags, err = s.resolveTags(workspaceID, *req.TagIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&task).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.TagIDs != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskTag{}).Error; err != nil {
				return err
			}
			for _, tag := range tags {
				if err := tx.Create(&models.TaskTag{TaskID: task.ID, TagID: tag.ID}).Error; err != nil {
					return err
				}
			}
		}
		action := models.ActionTaskUpdated
		meta := map[string]interface{}{"title": task.Title}
		if statusChanged {
			action = models.ActionStatusChanged
			meta["status"] = *req.Status
		}
		return s.activity.Record(tx, workspaceID, &task.ID, actorID, action, meta)
	}); err != nil {
		return nil, err
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard, ViewCalendar)

	return s.Get(workspaceID, role, task.ID)
}

// Delete soft-deletes a task. Owner or admin only; owned rows cascade at the
// store level.
func (s *TaskService) Delete(workspaceID uint, role string, actorID uint, taskID uint) error {
	if !RoleAllowed(role, RolesDeleteTasks) {
		return response.NewForbidden("insufficient permissions")
	}

	var task models.Task
	err := s.db.Where("workspace_id = ?", workspaceID).First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("task not found")
		}
		return err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&task).Error; err != nil {
			return err
		}
		return s.activity.Record(tx, workspaceID, &task.ID, actorID, models.ActionTaskDeleted,
			map[string]interface{}{"title": task.Title})
	}); err != nil {
		return err
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard, ViewCalendar)

	return nil
}

func (s *TaskService) requireMember(workspaceID, userID uint) error {
	var count int64
	if err := s.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return response.NewBadRequest("assignee is not a workspace member")
	}
	return nil
}

func (s *TaskService) resolveTags(workspaceID uint, tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := s.db.Where("workspace_id = ? AND id IN ?", workspaceID, tagIDs).
		Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, response.NewBadRequest("one or more tags do not exist in this workspace")
	}
	return tags, nil
}
