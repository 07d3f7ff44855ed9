package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
)

// WorkspaceCookie persists the caller's current workspace selection.
const WorkspaceCookie = "current_workspace_id"

// WorkspaceRequired resolves the caller's current workspace from the
// selection cookie and verifies membership. A missing cookie, a deleted
// workspace, or a revoked membership all count as "no context" and send the
// caller to onboarding. Runs after AuthRequired.
func WorkspaceRequired(ctxSvc *services.WorkspaceContextService) gin.HandlerFunc {
	return func(c *gin.Context) {
		wctx, err := resolveWorkspace(c, ctxSvc)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if wctx == nil {
			response.NoWorkspace(c)
			c.Abort()
			return
		}

		c.Set(ContextWorkspaceID, wctx.Workspace.ID)
		c.Set(ContextWorkspaceRole, wctx.Role)

		c.Next()
	}
}

func resolveWorkspace(c *gin.Context, ctxSvc *services.WorkspaceContextService) (*services.WorkspaceContext, error) {
	cookie, err := c.Cookie(WorkspaceCookie)
	if err != nil || cookie == "" {
		return nil, nil
	}

	workspaceID, err := strconv.ParseUint(cookie, 10, 32)
	if err != nil {
		// Malformed selector, treat as unset
		return nil, nil
	}

	return ctxSvc.Resolve(GetUserID(c), uint(workspaceID))
}
