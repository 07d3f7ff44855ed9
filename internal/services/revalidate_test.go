package services

import (
	"testing"
)

func TestRevalidation_InvalidateAndSnapshot(t *testing.T) {
	svc := NewRevalidationService()

	svc.Invalidate(ViewTasks, ViewBoard)
	svc.Invalidate(ViewTasks)

	snap := svc.Snapshot()
	if snap.Generation != 2 {
		t.Errorf("Generation = %d, expected 2", snap.Generation)
	}
	if len(snap.Stale) != 2 {
		t.Errorf("len(Stale) = %d, expected 2", len(snap.Stale))
	}
	if _, ok := snap.Stale[ViewTasks]; !ok {
		t.Errorf("%s should be stale", ViewTasks)
	}
	if _, ok := snap.Stale[ViewBoard]; !ok {
		t.Errorf("%s should be stale", ViewBoard)
	}
}

func TestRevalidation_SnapshotDoesNotClear(t *testing.T) {
	svc := NewRevalidationService()
	svc.Invalidate(ViewMembers)

	_ = svc.Snapshot()
	snap := svc.Snapshot()
	if len(snap.Stale) != 1 {
		t.Errorf("Snapshot should not clear the stale set, got %d entries", len(snap.Stale))
	}
}

func TestRevalidation_ConsumeClears(t *testing.T) {
	svc := NewRevalidationService()
	svc.Invalidate(ViewInvites, ViewMembers)

	first := svc.Consume()
	if len(first.Stale) != 2 {
		t.Errorf("first Consume should return 2 entries, got %d", len(first.Stale))
	}

	second := svc.Consume()
	if len(second.Stale) != 0 {
		t.Errorf("second Consume should return nothing, got %d entries", len(second.Stale))
	}
	if second.Generation != first.Generation {
		t.Errorf("Generation should be unchanged by Consume, got %d vs %d", second.Generation, first.Generation)
	}
}

func TestRevalidation_InvalidateNothing(t *testing.T) {
	svc := NewRevalidationService()
	svc.Invalidate()

	snap := svc.Snapshot()
	if snap.Generation != 0 {
		t.Errorf("empty Invalidate should not bump generation, got %d", snap.Generation)
	}
}

func TestViewPaths(t *testing.T) {
	if ViewTasks != "/tasks" {
		t.Errorf("ViewTasks = %q, expected %q", ViewTasks, "/tasks")
	}
	if ViewMembers != "/settings/members" {
		t.Errorf("ViewMembers = %q, expected %q", ViewMembers, "/settings/members")
	}
	if ViewInvites != "/settings/invites" {
		t.Errorf("ViewInvites = %q, expected %q", ViewInvites, "/settings/invites")
	}
	if ViewRoot != "/" {
		t.Errorf("ViewRoot = %q, expected %q", ViewRoot, "/")
	}
}
