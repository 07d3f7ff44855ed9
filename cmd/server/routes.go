package main

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public invite-token routes
	inviteLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Public invite-token routes (rate limited; accept requires auth)
		invites := api.Group("/invites", inviteLimiter.Middleware())
		{
			invites.GET("/:token", svc.inviteHandler.Get)
			invites.POST("/:token/accept", middleware.AuthRequired(), svc.inviteHandler.Accept)
		}

		// Authenticated routes without a workspace context
		authed := api.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.GET("/auth/me", svc.authHandler.Me)
			authed.POST("/auth/logout", svc.authHandler.Logout)
			authed.POST("/auth/password", svc.authHandler.ChangePassword)

			authed.GET("/workspaces", svc.workspaceHandler.List)
			authed.POST("/workspaces", svc.workspaceHandler.Create)
			authed.POST("/workspaces/switch", svc.workspaceHandler.Switch)
		}

		// Workspace-scoped routes: selection cookie resolved to a membership
		ws := api.Group("")
		ws.Use(middleware.AuthRequired(), middleware.WorkspaceRequired(svc.contextService))
		{
			ws.GET("/workspace", svc.workspaceHandler.Current)
			ws.PUT("/workspace", svc.workspaceHandler.Update)
			ws.DELETE("/workspace", svc.workspaceHandler.Delete)
			ws.POST("/workspace/seed-demo", svc.workspaceHandler.SeedDemo)

			ws.GET("/workspace/members", svc.memberHandler.List)
			ws.PUT("/workspace/members/:userID", svc.memberHandler.UpdateRole)
			ws.DELETE("/workspace/members/:userID", svc.memberHandler.Remove)

			ws.GET("/workspace/invites", svc.inviteHandler.List)
			ws.POST("/workspace/invites", svc.inviteHandler.Create)
			ws.DELETE("/workspace/invites/:id", svc.inviteHandler.Revoke)

			ws.GET("/tasks", svc.taskHandler.List)
			ws.POST("/tasks", svc.taskHandler.Create)
			ws.GET("/tasks/:id", svc.taskHandler.Get)
			ws.PUT("/tasks/:id", svc.taskHandler.Update)
			ws.DELETE("/tasks/:id", svc.taskHandler.Delete)

			ws.POST("/tasks/:id/subtasks", svc.taskItemHandler.AddSubtask)
			ws.PUT("/tasks/:id/subtasks/:subtaskID", svc.taskItemHandler.UpdateSubtask)
			ws.DELETE("/tasks/:id/subtasks/:subtaskID", svc.taskItemHandler.DeleteSubtask)

			ws.POST("/tasks/:id/comments", svc.taskItemHandler.AddComment)
			ws.DELETE("/tasks/:id/comments/:commentID", svc.taskItemHandler.DeleteComment)

			ws.POST("/tasks/:id/attachments", svc.taskItemHandler.AddAttachment)
			ws.DELETE("/tasks/:id/attachments/:attachmentID", svc.taskItemHandler.DeleteAttachment)

			ws.GET("/tags", svc.tagHandler.List)
			ws.POST("/tags", svc.tagHandler.Create)
			ws.PUT("/tags/:id", svc.tagHandler.Update)
			ws.DELETE("/tags/:id", svc.tagHandler.Delete)

			ws.GET("/activity", svc.activityHandler.List)

			ws.GET("/system/revalidations", svc.systemHandler.Revalidations)
		}
	}
}
