package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
)

const (
	TaskTypeInviteEmail = "invite:email"
)

// InviteEmailTask is the payload for one invite notification.
type InviteEmailTask struct {
	InviteID      uint   `json:"invite_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	WorkspaceName string `json:"workspace_name"`
	InviteURL     string `json:"invite_url"`
}

// NotifyQueue defines the interface for invite notification delivery.
type NotifyQueue interface {
	// Enqueue adds a notification to the queue
	Enqueue(task *InviteEmailTask) error
	// IsAsync returns true if the queue delivers asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global notify queue instance
var (
	globalNotifyQueue NotifyQueue
	notifyQueueOnce   sync.Once
)

// InitNotifyQueue initializes the global notification queue based on config
func InitNotifyQueue(cfg *config.Config) NotifyQueue {
	notifyQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncNotifyQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[NotifyQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalNotifyQueue = NewSyncNotifyQueue()
			} else {
				logger.Infof("[NotifyQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalNotifyQueue = queue
			}
		} else {
			logger.Infof("[NotifyQueue] Sync queue initialized (Redis disabled)")
			globalNotifyQueue = NewSyncNotifyQueue()
		}
	})
	return globalNotifyQueue
}

// GetNotifyQueue returns the global notification queue instance
func GetNotifyQueue() NotifyQueue {
	return globalNotifyQueue
}

// AsyncNotifyQueue implements NotifyQueue using asynq (Redis-based)
type AsyncNotifyQueue struct {
	client *asynq.Client
}

// NewAsyncNotifyQueue creates a new Redis-based async queue
func NewAsyncNotifyQueue(cfg *config.RedisConfig) (*AsyncNotifyQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncNotifyQueue{client: client}, nil
}

// Enqueue adds an invite notification to the async queue
func (q *AsyncNotifyQueue) Enqueue(task *InviteEmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeInviteEmail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[NotifyQueue] Notification enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncNotifyQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncNotifyQueue) Close() error {
	return q.client.Close()
}

// SyncNotifyQueue implements NotifyQueue with in-process delivery (no Redis)
type SyncNotifyQueue struct {
	processor func(context.Context, *InviteEmailTask) error
}

// NewSyncNotifyQueue creates a new synchronous queue
func NewSyncNotifyQueue() *SyncNotifyQueue {
	return &SyncNotifyQueue{}
}

// SetProcessor sets the function to deliver notifications synchronously
func (q *SyncNotifyQueue) SetProcessor(processor func(context.Context, *InviteEmailTask) error) {
	q.processor = processor
}

// Enqueue delivers the notification in a goroutine so the invite response
// does not wait on SMTP
func (q *SyncNotifyQueue) Enqueue(task *InviteEmailTask) error {
	if q.processor == nil {
		logger.Infof("[SyncNotifyQueue] Warning: no processor set, notification will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Infof("[SyncNotifyQueue] Delivery failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncNotifyQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncNotifyQueue) Close() error {
	return nil
}

// QueueNotifier adapts a NotifyQueue to the InviteNotifier interface used by
// the invite workflow.
type QueueNotifier struct {
	queue NotifyQueue
}

func NewQueueNotifier(queue NotifyQueue) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) EnqueueInviteEmail(invite *models.WorkspaceInvite, workspaceName, inviteURL string) error {
	return n.queue.Enqueue(&InviteEmailTask{
		InviteID:      invite.ID,
		Email:         invite.Email,
		Role:          invite.Role,
		WorkspaceName: workspaceName,
		InviteURL:     inviteURL,
	})
}
