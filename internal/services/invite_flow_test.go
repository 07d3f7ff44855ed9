package services

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory sqlite database and runs the full
// migration, partial pending-invite index included. The shared-cache DSN keeps
// every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	profile := models.Profile{UserID: user.ID, DisplayName: strings.Split(email, "@")[0]}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile for %s: %v", email, err)
	}
	return &user
}

func newFlowServices(db *gorm.DB) (*WorkspaceService, *InviteService, *TaskService) {
	activity := NewActivityService(db)
	revalidate := NewRevalidationService()
	workspaces := NewWorkspaceService(db, activity, revalidate)
	invites := NewInviteService(db, activity, revalidate, nil, "http://localhost:3000", 7)
	tasks := NewTaskService(db, activity, revalidate)
	return workspaces, invites, tasks
}

func memberCount(t *testing.T, db *gorm.DB, workspaceID, userID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&n).Error; err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	return n
}

func TestInviteAccept_SecondAcceptLeavesOneMembership(t *testing.T) {
	db := newTestDB(t)
	workspaces, invites, _ := newFlowServices(db)

	owner := createTestUser(t, db, "owner@example.com")
	joiner := createTestUser(t, db, "joiner@example.com")
	ws, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	if _, err := invites.Create(ws.ID, models.RoleOwner, owner.ID, &CreateInviteRequest{
		Email: joiner.Email, Role: models.RoleMember,
	}); err != nil {
		t.Fatalf("create invite: %v", err)
	}
	var invite models.WorkspaceInvite
	if err := db.Where("workspace_id = ? AND email = ?", ws.ID, joiner.Email).First(&invite).Error; err != nil {
		t.Fatalf("load invite: %v", err)
	}

	if _, err := invites.Accept(invite.Token, joiner.ID, joiner.Email); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if n := memberCount(t, db, ws.ID, joiner.ID); n != 1 {
		t.Fatalf("membership count after accept = %d, expected 1", n)
	}

	_, err = invites.Accept(invite.Token, joiner.ID, joiner.Email)
	requireAppError(t, err, http.StatusConflict)
	if n := memberCount(t, db, ws.ID, joiner.ID); n != 1 {
		t.Errorf("membership count after second accept = %d, expected 1", n)
	}

	// The conditional stamp is what holds under concurrency: once accepted_at
	// is set, a racing accept matches zero rows.
	result := db.Model(&models.WorkspaceInvite{}).
		Where("id = ? AND accepted_at IS NULL", invite.ID).
		Update("accepted_at", time.Now())
	if result.Error != nil {
		t.Fatalf("conditional update: %v", result.Error)
	}
	if result.RowsAffected != 0 {
		t.Errorf("conditional update affected %d rows, expected 0", result.RowsAffected)
	}
}

type failingNotifier struct{}

func (failingNotifier) EnqueueInviteEmail(*models.WorkspaceInvite, string, string) error {
	return fmt.Errorf("queue unavailable")
}

func TestInviteCreate_NotifierFailureIsLoggedNotFatal(t *testing.T) {
	db := newTestDB(t)
	activity := NewActivityService(db)
	revalidate := NewRevalidationService()
	workspaces := NewWorkspaceService(db, activity, revalidate)
	invites := NewInviteService(db, activity, revalidate, failingNotifier{}, "http://localhost:3000", 7)

	owner := createTestUser(t, db, "owner@example.com")
	ws, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	info, err := invites.Create(ws.ID, models.RoleOwner, owner.ID, &CreateInviteRequest{
		Email: "new@example.com", Role: models.RoleMember,
	})
	if err != nil {
		t.Fatalf("invite creation must survive a failed enqueue: %v", err)
	}
	if info.URL == "" {
		t.Error("invite URL missing")
	}
}

func TestInviteCreate_DuplicatePendingScopedToWorkspace(t *testing.T) {
	db := newTestDB(t)
	workspaces, invites, _ := newFlowServices(db)

	owner := createTestUser(t, db, "owner@example.com")
	ws1, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "First"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	ws2, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "Second"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	req := &CreateInviteRequest{Email: "new@example.com", Role: models.RoleMember}
	if _, err := invites.Create(ws1.ID, models.RoleOwner, owner.ID, req); err != nil {
		t.Fatalf("first invite: %v", err)
	}

	_, err = invites.Create(ws1.ID, models.RoleOwner, owner.ID, req)
	requireAppError(t, err, http.StatusConflict)

	// Same email in a different workspace is a fresh invite.
	if _, err := invites.Create(ws2.ID, models.RoleOwner, owner.ID, req); err != nil {
		t.Fatalf("invite in second workspace: %v", err)
	}
}

func TestInviteCreate_PartialIndexBackstopsRace(t *testing.T) {
	db := newTestDB(t)
	workspaces, invites, _ := newFlowServices(db)

	owner := createTestUser(t, db, "owner@example.com")
	ws, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	if _, err := invites.Create(ws.ID, models.RoleOwner, owner.ID, &CreateInviteRequest{
		Email: "raced@example.com", Role: models.RoleMember,
	}); err != nil {
		t.Fatalf("create invite: %v", err)
	}

	// A second pending row for the same (workspace, email) slipping past the
	// application check must fail on the index itself.
	dup := models.WorkspaceInvite{
		WorkspaceID: ws.ID,
		Email:       "raced@example.com",
		Role:        models.RoleMember,
		Token:       "raced-token",
		InvitedBy:   owner.ID,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}
	err = db.Create(&dup).Error
	if err == nil {
		t.Fatal("duplicate pending invite insert succeeded, expected unique violation")
	}
	if !isDuplicateKeyError(err) {
		t.Errorf("isDuplicateKeyError(%v) = false, expected true", err)
	}
}

func TestInviteGet_ExpiredIsFlaggedWithoutMutation(t *testing.T) {
	db := newTestDB(t)
	workspaces, invites, _ := newFlowServices(db)

	owner := createTestUser(t, db, "owner@example.com")
	ws, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	expiresAt := time.Now().Add(-time.Hour)
	invite := models.WorkspaceInvite{
		WorkspaceID: ws.ID,
		Email:       "late@example.com",
		Role:        models.RoleViewer,
		Token:       "expired-token",
		InvitedBy:   owner.ID,
		ExpiresAt:   expiresAt,
	}
	if err := db.Create(&invite).Error; err != nil {
		t.Fatalf("create invite: %v", err)
	}

	pub, err := invites.Get(invite.Token)
	if err != nil {
		t.Fatalf("get invite: %v", err)
	}
	if !pub.Expired {
		t.Error("Expired = false, expected true")
	}
	if pub.Accepted {
		t.Error("Accepted = true, expected false")
	}
	if pub.WorkspaceName != "Acme" {
		t.Errorf("WorkspaceName = %q, expected Acme", pub.WorkspaceName)
	}

	// Accepting an expired token fails Gone and also leaves the row alone.
	late := createTestUser(t, db, "late@example.com")
	_, err = invites.Accept(invite.Token, late.ID, late.Email)
	requireAppError(t, err, http.StatusGone)

	var after models.WorkspaceInvite
	if err := db.First(&after, invite.ID).Error; err != nil {
		t.Fatalf("reload invite: %v", err)
	}
	if after.AcceptedAt != nil {
		t.Error("AcceptedAt set on expired invite")
	}
	if !after.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt changed from %v to %v", expiresAt, after.ExpiresAt)
	}
	if n := memberCount(t, db, ws.ID, late.ID); n != 0 {
		t.Errorf("membership count = %d, expected 0", n)
	}
}

func TestWorkspaceDelete_OwnerOnlyThenNotFound(t *testing.T) {
	db := newTestDB(t)
	workspaces, _, _ := newFlowServices(db)

	owner := createTestUser(t, db, "owner@example.com")
	ws, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	err = workspaces.Delete(ws.ID, models.RoleAdmin)
	requireAppError(t, err, http.StatusForbidden)
	if _, err := workspaces.GetByID(ws.ID, owner.ID); err != nil {
		t.Fatalf("workspace gone after denied delete: %v", err)
	}

	if err := workspaces.Delete(ws.ID, models.RoleOwner); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	_, err = workspaces.GetByID(ws.ID, owner.ID)
	requireAppError(t, err, http.StatusNotFound)
	err = workspaces.Delete(ws.ID, models.RoleOwner)
	requireAppError(t, err, http.StatusNotFound)
}

func TestWorkspaceInviteTaskFlow(t *testing.T) {
	db := newTestDB(t)
	workspaces, invites, tasks := newFlowServices(db)

	owner := createTestUser(t, db, "owner@example.com")
	colleague := createTestUser(t, db, "colleague@example.com")

	ws, err := workspaces.Create(owner.ID, &CreateWorkspaceRequest{Name: "Acme", Description: "team space"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	if n := memberCount(t, db, ws.ID, owner.ID); n != 1 {
		t.Fatalf("owner membership count = %d, expected 1", n)
	}

	if _, err := invites.Create(ws.ID, models.RoleOwner, owner.ID, &CreateInviteRequest{
		Email: colleague.Email, Role: models.RoleMember,
	}); err != nil {
		t.Fatalf("create invite: %v", err)
	}
	var invite models.WorkspaceInvite
	if err := db.Where("workspace_id = ? AND email = ?", ws.ID, colleague.Email).First(&invite).Error; err != nil {
		t.Fatalf("load invite: %v", err)
	}

	joined, err := invites.Accept(invite.Token, colleague.ID, colleague.Email)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if joined.ID != ws.ID {
		t.Fatalf("accept returned workspace %d, expected %d", joined.ID, ws.ID)
	}
	var membership models.WorkspaceMember
	if err := db.Where("workspace_id = ? AND user_id = ?", ws.ID, colleague.ID).First(&membership).Error; err != nil {
		t.Fatalf("load membership: %v", err)
	}
	if membership.Role != models.RoleMember {
		t.Fatalf("joined role = %q, expected member", membership.Role)
	}

	// A member with no explicit assignee gets the task themselves.
	task, err := tasks.Create(ws.ID, membership.Role, colleague.ID, &CreateTaskRequest{Title: "Write onboarding doc"})
	if err != nil {
		t.Fatalf("member create task: %v", err)
	}
	if task.AssigneeID == nil || *task.AssigneeID != colleague.ID {
		t.Errorf("AssigneeID = %v, expected self (%d)", task.AssigneeID, colleague.ID)
	}
	if task.Status != models.StatusBacklog || task.Priority != models.PriorityMedium {
		t.Errorf("defaults = %q/%q, expected backlog/medium", task.Status, task.Priority)
	}

	// Assigning to anyone else is rejected as a business-rule violation.
	_, err = tasks.Create(ws.ID, membership.Role, colleague.ID, &CreateTaskRequest{
		Title: "Review roadmap", AssigneeID: &owner.ID,
	})
	requireAppError(t, err, http.StatusBadRequest)

	// The owner can assign the member directly.
	assigned, err := tasks.Create(ws.ID, models.RoleOwner, owner.ID, &CreateTaskRequest{
		Title: "Review roadmap", AssigneeID: &colleague.ID,
	})
	if err != nil {
		t.Fatalf("owner create task: %v", err)
	}
	if assigned.AssigneeID == nil || *assigned.AssigneeID != colleague.ID {
		t.Errorf("AssigneeID = %v, expected %d", assigned.AssigneeID, colleague.ID)
	}

	listed, total, err := tasks.List(ws.ID, models.RoleViewer, &ListTasksRequest{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if total != 2 || len(listed) != 2 {
		t.Errorf("list returned %d/%d tasks, expected 2", len(listed), total)
	}
}
