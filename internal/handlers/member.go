package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
)

type MemberHandler struct {
	workspaceService *services.WorkspaceService
}

func NewMemberHandler(workspaceService *services.WorkspaceService) *MemberHandler {
	return &MemberHandler{workspaceService: workspaceService}
}

// List returns the current workspace's members
// GET /api/workspace/members
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.workspaceService.Members(middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

// UpdateRole changes a member's role. Owner only.
// PUT /api/workspace/members/:userID
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req services.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err = h.workspaceService.UpdateMemberRole(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		uint(targetID), &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "role updated"})
}

// Remove deletes a membership. Owner only.
// DELETE /api/workspace/members/:userID
func (h *MemberHandler) Remove(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	err = h.workspaceService.RemoveMember(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		uint(targetID), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "member removed"})
}
