package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// InviteNotifier delivers the invite email out of band. Enqueue failures are
// logged, never surfaced to the inviter.
type InviteNotifier interface {
	EnqueueInviteEmail(invite *models.WorkspaceInvite, workspaceName, inviteURL string) error
}

type InviteService struct {
	db         *gorm.DB
	activity   *ActivityService
	revalidate *RevalidationService
	notifier   InviteNotifier
	baseURL    string
	expireDays int
}

func NewInviteService(db *gorm.DB, activity *ActivityService, revalidate *RevalidationService, notifier InviteNotifier, baseURL string, expireDays int) *InviteService {
	if expireDays <= 0 {
		expireDays = 7
	}
	return &InviteService{
		db:         db,
		activity:   activity,
		revalidate: revalidate,
		notifier:   notifier,
		baseURL:    strings.TrimRight(baseURL, "/"),
		expireDays: expireDays,
	}
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin member viewer"`
}

// InviteInfo is the invite as shown to the inviting side.
type InviteInfo struct {
	ID        uint            `json:"id"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	URL       string          `json:"url,omitempty"`
	ExpiresAt time.Time       `json:"expires_at"`
	Expired   bool            `json:"expired"`
	CreatedAt time.Time       `json:"created_at"`
	Inviter   *models.Profile `json:"inviter,omitempty"`
}

// PublicInvite is what the token landing page sees. No inviter identifiers
// beyond the display name, no workspace ID.
type PublicInvite struct {
	WorkspaceName string    `json:"workspace_name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	InviterName   string    `json:"inviter_name,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
	Expired       bool      `json:"expired"`
	Accepted      bool      `json:"accepted"`
}

func (s *InviteService) inviteURL(token string) string {
	return fmt.Sprintf("%s/invite/%s", s.baseURL, token)
}

// Create issues an invite. Owner or admin only. The email must not belong to
// an existing member of this workspace, and at most one pending invite per
// (workspace, email) may exist.
func (s *InviteService) Create(workspaceID uint, role string, actorID uint, req *CreateInviteRequest) (*InviteInfo, error) {
	if !RoleAllowed(role, RolesInvite) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Membership is keyed by user, not by email: resolve the address first.
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		var count int64
		if err := s.db.Model(&models.WorkspaceMember{}).
			Where("workspace_id = ? AND user_id = ?", workspaceID, user.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("user is already a member of this workspace")
		}
	}

	var pending int64
	if err := s.db.Model(&models.WorkspaceInvite{}).
		Where("workspace_id = ? AND email = ? AND accepted_at IS NULL", workspaceID, email).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, response.NewConflict("an invite for this email is already pending")
	}

	invite := models.WorkspaceInvite{
		WorkspaceID: workspaceID,
		Email:       email,
		Role:        req.Role,
		Token:       uuid.New().String(),
		InvitedBy:   actorID,
		ExpiresAt:   time.Now().Add(time.Duration(s.expireDays) * 24 * time.Hour),
	}
	if err := s.db.Create(&invite).Error; err != nil {
		// The partial unique index catches the race the pre-check missed.
		if isDuplicateKeyError(err) {
			return nil, response.NewConflict("an invite for this email is already pending")
		}
		return nil, err
	}

	var workspace models.Workspace
	if err := s.db.First(&workspace, workspaceID).Error; err == nil && s.notifier != nil {
		if err := s.notifier.EnqueueInviteEmail(&invite, workspace.Name, s.inviteURL(invite.Token)); err != nil {
			logger.Warn().Err(err).Str("email", email).Msg("failed to enqueue invite email")
		}
	}

	s.revalidate.Invalidate(ViewInvites)

	return &InviteInfo{
		ID:        invite.ID,
		Email:     invite.Email,
		Role:      invite.Role,
		URL:       s.inviteURL(invite.Token),
		ExpiresAt: invite.ExpiresAt,
		CreatedAt: invite.CreatedAt,
	}, nil
}

// Get resolves a token for the landing page. Expiry is derived at read time;
// nothing is mutated here.
func (s *InviteService) Get(token string) (*PublicInvite, error) {
	var invite models.WorkspaceInvite
	err := s.db.Where("token = ?", token).
		Preload("Workspace").
		Preload("Inviter").
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("invite not found")
		}
		return nil, err
	}

	out := &PublicInvite{
		Email:     invite.Email,
		Role:      invite.Role,
		ExpiresAt: invite.ExpiresAt,
		Expired:   time.Now().After(invite.ExpiresAt),
		Accepted:  invite.AcceptedAt != nil,
	}
	if invite.Workspace != nil {
		out.WorkspaceName = invite.Workspace.Name
	}
	if invite.Inviter != nil {
		out.InviterName = invite.Inviter.DisplayName
	}
	return out, nil
}

// Accept redeems a token for the logged-in user. The membership row and the
// accepted-at stamp commit together; the conditional update makes a second
// accept of the same token a conflict, not a duplicate membership.
func (s *InviteService) Accept(token string, userID uint, userEmail string) (*models.Workspace, error) {
	var invite models.WorkspaceInvite
	err := s.db.Where("token = ?", token).Preload("Workspace").First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("invite not found")
		}
		return nil, err
	}

	if invite.AcceptedAt != nil {
		return nil, response.NewConflict("invite has already been accepted")
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, response.NewGone("invite has expired")
	}
	if !strings.EqualFold(invite.Email, userEmail) {
		return nil, response.NewForbidden("invite was issued for a different email")
	}

	var existing int64
	if err := s.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", invite.WorkspaceID, userID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, response.NewConflict("user is already a member of this workspace")
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.WorkspaceInvite{}).
			Where("id = ? AND accepted_at IS NULL", invite.ID).
			Update("accepted_at", time.Now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewConflict("invite has already been accepted")
		}
		member := models.WorkspaceMember{
			WorkspaceID: invite.WorkspaceID,
			UserID:      userID,
			Role:        invite.Role,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return s.activity.Record(tx, invite.WorkspaceID, nil, userID, models.ActionMemberAdded,
			map[string]interface{}{"user_id": userID, "role": invite.Role})
	}); err != nil {
		return nil, err
	}

	s.revalidate.Invalidate(ViewMembers, ViewInvites)

	if invite.Workspace != nil {
		return invite.Workspace, nil
	}
	var workspace models.Workspace
	if err := s.db.First(&workspace, invite.WorkspaceID).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// List returns the workspace's pending invites, tokens omitted. Owner or
// admin only.
func (s *InviteService) List(workspaceID uint, role string) ([]InviteInfo, error) {
	if !RoleAllowed(role, RolesInvite) {
		return nil, response.NewForbidden("insufficient permissions")
	}

	var invites []models.WorkspaceInvite
	err := s.db.Where("workspace_id = ? AND accepted_at IS NULL", workspaceID).
		Preload("Inviter").
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]InviteInfo, 0, len(invites))
	for _, inv := range invites {
		out = append(out, InviteInfo{
			ID:        inv.ID,
			Email:     inv.Email,
			Role:      inv.Role,
			ExpiresAt: inv.ExpiresAt,
			Expired:   now.After(inv.ExpiresAt),
			CreatedAt: inv.CreatedAt,
			Inviter:   inv.Inviter,
		})
	}
	return out, nil
}

// Revoke deletes a pending invite. Owner or admin only. Accepted invites
// stay on record.
func (s *InviteService) Revoke(workspaceID uint, role string, inviteID uint) error {
	if !RoleAllowed(role, RolesInvite) {
		return response.NewForbidden("insufficient permissions")
	}

	result := s.db.Where("id = ? AND workspace_id = ? AND accepted_at IS NULL", inviteID, workspaceID).
		Delete(&models.WorkspaceInvite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("invite not found")
	}

	s.revalidate.Invalidate(ViewInvites)

	return nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
