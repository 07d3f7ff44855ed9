package services

import (
	"net/http"
	"testing"

	"github.com/taskhive/taskhive/internal/models"
)

func TestTaskCreate_ViewerDenied(t *testing.T) {
	svc := NewTaskService(nil, nil, nil)

	_, err := svc.Create(1, models.RoleViewer, 10, &CreateTaskRequest{Title: "nope"})
	requireAppError(t, err, http.StatusForbidden)
}

func TestTaskCreate_MemberMustSelfAssign(t *testing.T) {
	svc := NewTaskService(nil, nil, nil)

	other := uint(99)
	_, err := svc.Create(1, models.RoleMember, 10, &CreateTaskRequest{
		Title:      "for someone else",
		AssigneeID: &other,
	})
	// Business-rule violation, not a permission error: the request shape is
	// valid, the member just may not target another assignee.
	requireAppError(t, err, http.StatusBadRequest)
}

func TestTaskUpdate_ViewerDenied(t *testing.T) {
	svc := NewTaskService(nil, nil, nil)

	_, err := svc.Update(1, models.RoleViewer, 10, 5, &UpdateTaskRequest{})
	requireAppError(t, err, http.StatusForbidden)
}

func TestTaskDelete_DeniedBelowAdmin(t *testing.T) {
	svc := NewTaskService(nil, nil, nil)

	for _, role := range []string{models.RoleMember, models.RoleViewer} {
		err := svc.Delete(1, role, 10, 5)
		requireAppError(t, err, http.StatusForbidden)
	}
}

func TestTaskList_UnknownRoleDenied(t *testing.T) {
	svc := NewTaskService(nil, nil, nil)

	_, _, err := svc.List(1, "guest", &ListTasksRequest{})
	requireAppError(t, err, http.StatusForbidden)
}

func TestListTasksRequest_Defaults(t *testing.T) {
	req := &ListTasksRequest{}

	if req.Status != "" || req.Priority != "" {
		t.Error("unfiltered request should carry empty status and priority")
	}
	if req.Page != 0 || req.PageSize != 0 {
		t.Errorf("default Page/PageSize should be 0, got %d/%d", req.Page, req.PageSize)
	}
}

func TestUpdateTaskRequest_PartialFields(t *testing.T) {
	title := "New title"
	status := models.StatusDone
	req := &UpdateTaskRequest{
		Title:  &title,
		Status: &status,
	}

	if req.Title == nil || *req.Title != "New title" {
		t.Error("Title should be set")
	}
	if req.Status == nil || *req.Status != models.StatusDone {
		t.Error("Status should be set")
	}
	if req.Description != nil || req.Priority != nil || req.DueDate != nil {
		t.Error("untouched fields should stay nil")
	}
	if req.TagIDs != nil {
		t.Error("TagIDs should stay nil when tags are untouched")
	}
}
