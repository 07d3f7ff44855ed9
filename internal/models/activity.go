package models

import "time"

// Activity actions
const (
	ActionWorkspaceCreated = "workspace_created"
	ActionTaskCreated      = "task_created"
	ActionTaskUpdated      = "task_updated"
	ActionTaskDeleted      = "task_deleted"
	ActionStatusChanged    = "status_changed"
	ActionCommentAdded     = "comment_added"
	ActionSubtaskAdded     = "subtask_added"
	ActionAttachmentAdded  = "attachment_added"
	ActionMemberAdded      = "member_added"
	ActionMemberRemoved    = "member_removed"
	ActionRoleChanged      = "role_changed"
)

// ActivityLog is an append-only audit record of workspace actions.
// Nothing in this layer ever updates or deletes a row.
type ActivityLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID uint      `gorm:"index;not null" json:"workspace_id"`
	TaskID      *uint     `gorm:"index" json:"task_id"`
	ActorID     uint      `gorm:"not null" json:"actor_id"`
	Actor       *Profile  `gorm:"foreignKey:ActorID;references:UserID" json:"actor,omitempty"`
	Action      string    `gorm:"size:100;index;not null" json:"action"`
	Meta        string    `gorm:"type:text" json:"meta"` // JSON payload
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_log" }
