package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	StatusBacklog    = "backlog"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task is a workspace-scoped unit of work.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID uint           `gorm:"index;not null" json:"workspace_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:50;not null;default:backlog" json:"status"`  // backlog, in_progress, done
	Priority    string         `gorm:"size:50;not null;default:medium" json:"priority"` // low, medium, high, urgent
	DueDate     *time.Time     `json:"due_date"`
	AssigneeID  *uint          `gorm:"index" json:"assignee_id"`
	Assignee    *Profile       `gorm:"foreignKey:AssigneeID;references:UserID" json:"assignee,omitempty"`
	CreatedBy   uint           `gorm:"not null" json:"created_by"`
	Creator     *Profile       `gorm:"foreignKey:CreatedBy;references:UserID" json:"creator,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Tags        []Tag        `gorm:"many2many:task_tags" json:"tags,omitempty"`
	Subtasks    []Subtask    `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
}

// Tag is a workspace-scoped label, attached to tasks many-to-many.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID uint      `gorm:"index;not null" json:"workspace_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Color       string    `gorm:"size:20" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskTag is the task<->tag join row.
type TaskTag struct {
	TaskID uint `gorm:"primaryKey" json:"task_id"`
	TagID  uint `gorm:"primaryKey" json:"tag_id"`
}

// Subtask is an ordered checklist item owned by a task.
type Subtask struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index;not null" json:"task_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	IsDone    bool      `gorm:"default:false" json:"is_done"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a user remark on a task.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index;not null" json:"task_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      *Profile  `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachment records file metadata for a task. The bytes themselves live in
// external storage; this layer only tracks the reference.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index;not null" json:"task_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      *Profile  `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	FilePath  string    `gorm:"size:500;not null" json:"file_path"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	FileType  string    `gorm:"size:100" json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func (Task) TableName() string       { return "tasks" }
func (Tag) TableName() string        { return "tags" }
func (TaskTag) TableName() string    { return "task_tags" }
func (Subtask) TableName() string    { return "subtasks" }
func (Comment) TableName() string    { return "comments" }
func (Attachment) TableName() string { return "attachments" }
