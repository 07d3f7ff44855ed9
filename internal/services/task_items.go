package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// TaskItemService covers the rows owned by a task: subtasks, comments, and
// attachment records. Every lookup goes through the parent task so tenant
// scoping holds without trusting client-supplied IDs.
type TaskItemService struct {
	db         *gorm.DB
	activity   *ActivityService
	revalidate *RevalidationService
}

func NewTaskItemService(db *gorm.DB, activity *ActivityService, revalidate *RevalidationService) *TaskItemService {
	return &TaskItemService{db: db, activity: activity, revalidate: revalidate}
}

func (s *TaskItemService) loadTask(workspaceID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.Where("workspace_id = ?", workspaceID).First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

type CreateSubtaskRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	Position *int   `json:"position"`
}

type UpdateSubtaskRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=255"`
	IsDone   *bool   `json:"is_done"`
	Position *int    `json:"position"`
}

// AddSubtask appends a checklist item. Owner, admin, or member.
func (s *TaskItemService) AddSubtask(workspaceID uint, role string, actorID, taskID uint, req *CreateSubtaskRequest) (*models.Subtask, error) {
	if !RoleAllowed(role, RolesWriteTasks) {
		return nil, response.NewForbidden("insufficient permissions")
	}
	task, err := s.loadTask(workspaceID, taskID)
	if err != nil {
		return nil, err
	}

	subtask := models.Subtask{TaskID: task.ID, Title: req.Title}
	if req.Position != nil {
		subtask.Position = *req.Position
	} else {
		var max int
		s.db.Model(&models.Subtask{}).
			Where("task_id = ?", task.ID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&max)
		subtask.Position = max + 1
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subtask).Error; err != nil {
			return err
		}
		return s.activity.Record(tx, workspaceID, &task.ID, actorID, models.ActionSubtaskAdded,
			map[string]interface{}{"title": subtask.Title})
	}); err != nil {
		return nil, err
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard)

	return &subtask, nil
}

// UpdateSubtask edits a checklist item. Owner, admin, or member.
func (s *TaskItemService) UpdateSubtask(workspaceID uint, role string, taskID, subtaskID uint, req *UpdateSubtaskRequest) (*models.Subtask, error) {
	if !RoleAllowed(role, RolesWriteTasks) {
		return nil, response.NewForbidden("insufficient permissions")
	}
	task, err := s.loadTask(workspaceID, taskID)
	if err != nil {
		return nil, err
	}

	var subtask models.Subtask
	err = s.db.Where("task_id = ?", task.ID).First(&subtask, subtaskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("subtask not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.IsDone != nil {
		updates["is_done"] = *req.IsDone
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if len(updates) > 0 {
		if err := s.db.Model(&subtask).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard)

	return &subtask, nil
}

// DeleteSubtask removes a checklist item. Owner, admin, or member.
func (s *TaskItemService) DeleteSubtask(workspaceID uint, role string, taskID, subtaskID uint) error {
	if !RoleAllowed(role, RolesWriteTasks) {
		return response.NewForbidden("insufficient permissions")
	}
	task, err := s.loadTask(workspaceID, taskID)
	if err != nil {
		return err
	}

	result := s.db.Where("task_id = ?", task.ID).Delete(&models.Subtask{}, subtaskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("subtask not found")
	}

	s.revalidate.Invalidate(ViewTasks, ViewBoard)

	return nil
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// AddComment posts a comment. Owner, admin, or member.
func (s *TaskItemService) AddComment(workspaceID uint, role string, actorID, taskID uint, req *CreateCommentRequest) (*models.Comment, error) {
	if !RoleAllowed(role, RolesWriteTasks) {
		return nil, response.NewForbidden("insufficient permissions")
	}
	task, err := s.loadTask(workspaceID, taskID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		TaskID:  task.ID,
		UserID:  actorID,
		Content: req.Content,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return s.activity.Record(tx, workspaceID, &task.ID, actorID, models.ActionCommentAdded, nil)
	}); err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := s.db.Where("user_id = ?", actorID).First(&profile).Error; err == nil {
		comment.User = &profile
	}

	s.revalidate.Invalidate(ViewTasks)

	return &comment, nil
}

// DeleteComment removes a comment. The author may delete their own; owners
// and admins may delete any.
func (s *TaskItemService) DeleteComment(workspaceID uint, role string, actorID, taskID, commentID uint) error {
	if !RoleAllowed(role, RolesWriteTasks) {
		return response.NewForbidden("insufficient permissions")
	}
	task, err := s.loadTask(workspaceID, taskID)
	if err != nil {
		return err
	}

	var comment models.Comment
	err = s.db.Where("task_id = ?", task.ID).First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("comment not found")
		}
		return err
	}
	if comment.UserID != actorID && !RoleAllowed(role, RolesDeleteTasks) {
		return response.NewForbidden("insufficient permissions")
	}

	if err := s.db.Delete(&comment).Error; err != nil {
		return err
	}

	s.revalidate.Invalidate(ViewTasks)

	return nil
}

type CreateAttachmentRequest struct {
	FilePath string `json:"file_path" binding:"required,max=500"`
	FileName string `json:"file_name" binding:"required,max=255"`
	FileType string `json:"file_type" binding:"omitempty,max=100"`
	FileSize int64  `json:"file_size" binding:"omitempty,min=0"`
}

// AddAttachment records file metadata against a task. Owner, admin, or
// member. The file bytes live in external storage.
func (s *TaskItemService) AddAttachment(workspaceID uint, role string, actorID, taskID uint, req *CreateAttachmentRequest) (*models.Attachment, error) {
	if !RoleAllowed(role, RolesWriteTasks) {
		return nil, response.NewForbidden("insufficient permissions")
	}
	task, err := s.loadTask(workspaceID, taskID)
	if err != nil {
		return nil, err
	}

	attachment := models.Attachment{
		TaskID:   task.ID,
		UserID:   actorID,
		FilePath: req.FilePath,
		FileName: req.FileName,
		FileType: req.FileType,
		FileSize: req.FileSize,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attachment).Error; err != nil {
			return err
		}
		return s.activity.Record(tx, workspaceID, &task.ID, actorID, models.ActionAttachmentAdded,
			map[string]interface{}{"file_name": attachment.FileName})
	}); err != nil {
		return nil, err
	}

	s.revalidate.Invalidate(ViewTasks)

	return &attachment, nil
}

// DeleteAttachment removes an attachment record. Same rule as comments: the
// uploader, or an owner/admin.
func (s *TaskItemService) DeleteAttachment(workspaceID uint, role string, actorID, taskID, attachmentID uint) error {
	if !RoleAllowed(role, RolesWriteTasks) {
		return response.NewForbidden("insufficient permissions")
	}
	task, err := s.loadTask(workspaceID, taskID)
	if err != nil {
		return err
	}

	var attachment models.Attachment
	err = s.db.Where("task_id = ?", task.ID).First(&attachment, attachmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("attachment not found")
		}
		return err
	}
	if attachment.UserID != actorID && !RoleAllowed(role, RolesDeleteTasks) {
		return response.NewForbidden("insufficient permissions")
	}

	if err := s.db.Delete(&attachment).Error; err != nil {
		return err
	}

	s.revalidate.Invalidate(ViewTasks)

	return nil
}
