package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	contextService   *services.WorkspaceContextService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService, contextService *services.WorkspaceContextService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		contextService:   contextService,
	}
}

// setSelectionCookie persists the workspace selection. Lax keeps the cookie
// on top-level navigations (invite links); Secure is skipped in debug mode so
// local plain-HTTP development works.
func setSelectionCookie(c *gin.Context, workspaceID uint) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.WorkspaceCookie, strconv.FormatUint(uint64(workspaceID), 10),
		365*24*3600, "/", "", gin.Mode() == gin.ReleaseMode, true)
}

func clearSelectionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.WorkspaceCookie, "", -1, "/", "", gin.Mode() == gin.ReleaseMode, true)
}

// List returns every workspace the caller belongs to
// GET /api/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaceService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, workspaces)
}

// Create makes a workspace with the caller as owner and selects it
// POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req services.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	workspace, err := h.workspaceService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	setSelectionCookie(c, workspace.ID)
	response.Created(c, workspace)
}

type switchWorkspaceRequest struct {
	WorkspaceID uint `json:"workspace_id" binding:"required"`
}

// Switch changes the caller's current workspace selection. Membership is
// verified before the cookie is set.
// POST /api/workspaces/switch
func (h *WorkspaceHandler) Switch(c *gin.Context) {
	var req switchWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	wctx, err := h.contextService.Resolve(middleware.GetUserID(c), req.WorkspaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if wctx == nil {
		response.NotFound(c, "workspace not found")
		return
	}

	setSelectionCookie(c, wctx.Workspace.ID)
	response.Success(c, gin.H{
		"workspace": wctx.Workspace,
		"role":      wctx.Role,
	})
}

// Current returns the resolved workspace context
// GET /api/workspace
func (h *WorkspaceHandler) Current(c *gin.Context) {
	workspace, err := h.workspaceService.GetByID(middleware.GetWorkspaceID(c), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"workspace": workspace,
		"role":      middleware.GetWorkspaceRole(c),
	})
}

// Update renames or re-describes the current workspace. Owner only.
// PUT /api/workspace
func (h *WorkspaceHandler) Update(c *gin.Context) {
	var req services.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	workspace, err := h.workspaceService.Update(middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, workspace)
}

// SeedDemo fills the current workspace with example data. Owner or admin.
// POST /api/workspace/seed-demo
func (h *WorkspaceHandler) SeedDemo(c *gin.Context) {
	err := h.workspaceService.SeedDemoData(
		middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "demo data created"})
}

// Delete removes the current workspace and clears the selection. Owner only.
// DELETE /api/workspace
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	err := h.workspaceService.Delete(middleware.GetWorkspaceID(c), middleware.GetWorkspaceRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	clearSelectionCookie(c)
	response.Success(c, gin.H{"message": "workspace deleted"})
}
