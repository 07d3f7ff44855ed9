package services

import (
	"sync"
	"time"

	"github.com/taskhive/taskhive/pkg/logger"
)

// Known view paths whose cached renders must be discarded after mutations.
const (
	ViewTasks    = "/tasks"
	ViewBoard    = "/board"
	ViewCalendar = "/calendar"
	ViewSettings = "/settings"
	ViewMembers  = "/settings/members"
	ViewInvites  = "/settings/invites"
	ViewRoot     = "/"
)

// RevalidationService is the outbound cache-invalidation signal. Mutation
// workflows mark logical view paths stale; the rendering layer polls the
// snapshot and re-renders what changed. State is in-memory only: a restart
// just means one extra render of everything.
type RevalidationService struct {
	mu         sync.Mutex
	generation uint64
	stale      map[string]time.Time
}

func NewRevalidationService() *RevalidationService {
	return &RevalidationService{
		stale: make(map[string]time.Time),
	}
}

// Invalidate marks the given view paths stale.
func (s *RevalidationService) Invalidate(paths ...string) {
	if len(paths) == 0 {
		return
	}

	s.mu.Lock()
	now := time.Now()
	s.generation++
	for _, p := range paths {
		s.stale[p] = now
	}
	gen := s.generation
	s.mu.Unlock()

	logger.Debug().Strs("paths", paths).Uint64("generation", gen).Msg("views invalidated")
}

// RevalidationSnapshot is a point-in-time view of stale paths.
type RevalidationSnapshot struct {
	Generation uint64               `json:"generation"`
	Stale      map[string]time.Time `json:"stale"`
}

// Snapshot returns the current stale set without clearing it.
func (s *RevalidationService) Snapshot() RevalidationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.stale))
	for p, t := range s.stale {
		out[p] = t
	}
	return RevalidationSnapshot{Generation: s.generation, Stale: out}
}

// Consume returns the stale set and clears it, for pollers that re-render
// everything they are handed.
func (s *RevalidationService) Consume() RevalidationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := RevalidationSnapshot{Generation: s.generation, Stale: s.stale}
	s.stale = make(map[string]time.Time)
	return out
}
