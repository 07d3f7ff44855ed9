package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
)

// TaskItemHandler serves the rows owned by a task: subtasks, comments, and
// attachment records.
type TaskItemHandler struct {
	itemService *services.TaskItemService
}

func NewTaskItemHandler(itemService *services.TaskItemService) *TaskItemHandler {
	return &TaskItemHandler{itemService: itemService}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// AddSubtask appends a checklist item to a task
// POST /api/tasks/:id/subtasks
func (h *TaskItemHandler) AddSubtask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subtask, err := h.itemService.AddSubtask(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subtask)
}

// UpdateSubtask edits a checklist item
// PUT /api/tasks/:id/subtasks/:subtaskID
func (h *TaskItemHandler) UpdateSubtask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtaskID")
	if !ok {
		return
	}

	var req services.UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subtask, err := h.itemService.UpdateSubtask(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		id, subtaskID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, subtask)
}

// DeleteSubtask removes a checklist item
// DELETE /api/tasks/:id/subtasks/:subtaskID
func (h *TaskItemHandler) DeleteSubtask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtaskID")
	if !ok {
		return
	}

	err := h.itemService.DeleteSubtask(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		id, subtaskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "subtask deleted"})
}

// AddComment posts a comment on a task
// POST /api/tasks/:id/comments
func (h *TaskItemHandler) AddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.itemService.AddComment(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// DeleteComment removes a comment
// DELETE /api/tasks/:id/comments/:commentID
func (h *TaskItemHandler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentID")
	if !ok {
		return
	}

	err := h.itemService.DeleteComment(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		middleware.GetUserID(c), id, commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "comment deleted"})
}

// AddAttachment records file metadata against a task
// POST /api/tasks/:id/attachments
func (h *TaskItemHandler) AddAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	attachment, err := h.itemService.AddAttachment(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}

// DeleteAttachment removes an attachment record
// DELETE /api/tasks/:id/attachments/:attachmentID
func (h *TaskItemHandler) DeleteAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentID")
	if !ok {
		return
	}

	err := h.itemService.DeleteAttachment(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		middleware.GetUserID(c), id, attachmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "attachment deleted"})
}
