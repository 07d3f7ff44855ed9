package main

import (
	"context"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/handlers"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/internal/utils"
	"github.com/taskhive/taskhive/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	contextService   *services.WorkspaceContextService
	cleanupService   *services.CleanupService
	notifyQueue      services.NotifyQueue
	worker           *services.Worker
	authHandler      *handlers.AuthHandler
	workspaceHandler *handlers.WorkspaceHandler
	memberHandler    *handlers.MemberHandler
	inviteHandler    *handlers.InviteHandler
	taskHandler      *handlers.TaskHandler
	taskItemHandler  *handlers.TaskItemHandler
	tagHandler       *handlers.TagHandler
	activityHandler  *handlers.ActivityHandler
	systemHandler    *handlers.SystemHandler
	healthHandler    *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	// Notification queue (uses Redis if enabled, otherwise sync mode)
	emailService := services.NewEmailService(&cfg.SMTP)
	deliver := func(ctx context.Context, t *services.InviteEmailTask) error {
		return emailService.SendInvite(t.Email, t.WorkspaceName, t.Role, t.InviteURL)
	}

	notifyQueue := services.InitNotifyQueue(cfg)
	if syncQueue, ok := notifyQueue.(*services.SyncNotifyQueue); ok {
		syncQueue.SetProcessor(deliver)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(deliver)
			worker.Start()
		}
	}

	// Refresh-token purge scheduler
	cleanupService := services.NewCleanupService(db)
	cleanupService.StartScheduler()

	// Core services
	activityService := services.NewActivityService(db)
	revalidationService := services.NewRevalidationService()
	contextService := services.NewWorkspaceContextService(db)
	workspaceService := services.NewWorkspaceService(db, activityService, revalidationService)
	inviteService := services.NewInviteService(db, activityService, revalidationService,
		services.NewQueueNotifier(notifyQueue), cfg.App.BaseURL, cfg.App.InviteExpireDays)
	taskService := services.NewTaskService(db, activityService, revalidationService)
	taskItemService := services.NewTaskItemService(db, activityService, revalidationService)
	tagService := services.NewTagService(db, revalidationService)

	return &appServices{
		contextService:   contextService,
		cleanupService:   cleanupService,
		notifyQueue:      notifyQueue,
		worker:           worker,
		authHandler:      handlers.NewAuthHandler(db, cfg),
		workspaceHandler: handlers.NewWorkspaceHandler(workspaceService, contextService),
		memberHandler:    handlers.NewMemberHandler(workspaceService),
		inviteHandler:    handlers.NewInviteHandler(inviteService),
		taskHandler:      handlers.NewTaskHandler(taskService),
		taskItemHandler:  handlers.NewTaskItemHandler(taskItemService),
		tagHandler:       handlers.NewTagHandler(tagService),
		activityHandler:  handlers.NewActivityHandler(activityService),
		systemHandler:    handlers.NewSystemHandler(revalidationService),
		healthHandler:    handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.cleanupService.StopScheduler()

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.notifyQueue != nil {
		s.notifyQueue.Close()
	}
	logger.Info().Msg("All services stopped")
}
