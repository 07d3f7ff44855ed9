package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
)

type InviteHandler struct {
	inviteService *services.InviteService
}

func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Create issues an invite for the current workspace. Owner or admin.
// POST /api/workspace/invites
func (h *InviteHandler) Create(c *gin.Context) {
	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invite, err := h.inviteService.Create(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c),
		middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invite)
}

// List returns the current workspace's pending invites. Owner or admin.
// GET /api/workspace/invites
func (h *InviteHandler) List(c *gin.Context) {
	invites, err := h.inviteService.List(middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invites)
}

// Revoke deletes a pending invite. Owner or admin.
// DELETE /api/workspace/invites/:id
func (h *InviteHandler) Revoke(c *gin.Context) {
	inviteID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid invite id")
		return
	}

	err = h.inviteService.Revoke(middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c), uint(inviteID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invite revoked"})
}

// Get resolves an invite token for the landing page. Public, rate limited.
// GET /api/invites/:token
func (h *InviteHandler) Get(c *gin.Context) {
	invite, err := h.inviteService.Get(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invite)
}

// Accept redeems an invite token for the logged-in caller and selects the
// joined workspace.
// POST /api/invites/:token/accept
func (h *InviteHandler) Accept(c *gin.Context) {
	workspace, err := h.inviteService.Accept(
		c.Param("token"), middleware.GetUserID(c), middleware.GetUserEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	setSelectionCookie(c, workspace.ID)
	response.Success(c, gin.H{"workspace": workspace})
}
