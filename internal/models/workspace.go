package models

import (
	"time"

	"gorm.io/gorm"
)

// Workspace roles. Each operation enumerates its own allowed set; there is
// deliberately no ordering between these values.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// WorkspaceRoles lists every valid role.
var WorkspaceRoles = []string{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

// IsValidRole reports whether role is one of the known workspace roles.
func IsValidRole(role string) bool {
	for _, r := range WorkspaceRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Workspace is the tenant boundary. Every other row except users/profiles
// belongs to exactly one workspace.
type Workspace struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	CreatedBy   uint           `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// WorkspaceMember is one user's membership and role within a workspace.
// One row per (workspace, user) pair.
type WorkspaceMember struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"uniqueIndex:idx_workspace_user;not null" json:"workspace_id"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	UserID      uint       `gorm:"uniqueIndex:idx_workspace_user;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        string     `gorm:"size:50;not null;default:viewer" json:"role"` // owner, admin, member, viewer
	CreatedAt   time.Time  `json:"created_at"`
}

// WorkspaceInvite is a token-bearing offer for an email to join a workspace.
// Lifecycle: pending -> accepted (accepted_at set) or expired (past expires_at).
// Accepted and expired invites are never mutated again.
//
// A partial unique index on (workspace_id, email) WHERE accepted_at IS NULL
// is created in Migrate; it closes the check-then-insert race on concurrent
// invite creation.
type WorkspaceInvite struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"index;not null" json:"workspace_id"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Email       string     `gorm:"size:255;not null" json:"email"`
	Role        string     `gorm:"size:50;not null" json:"role"`
	Token       string     `gorm:"uniqueIndex;size:64;not null" json:"token"`
	InvitedBy   uint       `gorm:"not null" json:"invited_by"`
	Inviter     *Profile   `gorm:"foreignKey:InvitedBy;references:UserID" json:"inviter,omitempty"`
	ExpiresAt   time.Time  `gorm:"index;not null" json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Workspace) TableName() string       { return "workspaces" }
func (WorkspaceMember) TableName() string { return "workspace_members" }
func (WorkspaceInvite) TableName() string { return "workspace_invites" }
