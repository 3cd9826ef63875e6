package services

import (
	"sync"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

// ViewState is the in-memory state behind the views. It is safe for
// concurrent use.
//
// Every session start and end bumps the generation. A refresh captures the
// generation before fetching and applies its result only if the generation
// is unchanged, so a refresh that raced with a logout cannot repopulate the
// state.
type ViewState struct {
	mu         sync.RWMutex
	generation uint64
	active     bool
	snapshot   *models.Snapshot
	center     models.Coordinates
	offline    bool
	loading    bool
}

func NewViewState() *ViewState {
	return &ViewState{center: models.DefaultCenter}
}

// Activate marks a session as started and returns its generation.
func (s *ViewState) Activate() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.active = true
	return s.generation
}

// Reset drops all state and ends the current generation.
func (s *ViewState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// ResetIf resets only when gen is still the current active generation.
func (s *ViewState) ResetIf(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.generation != gen {
		return false
	}
	s.resetLocked()
	return true
}

func (s *ViewState) resetLocked() {
	s.generation++
	s.active = false
	s.snapshot = nil
	s.center = models.DefaultCenter
	s.offline = false
	s.loading = false
}

// Generation returns the current generation and whether a session is active.
func (s *ViewState) Generation() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation, s.active
}

// Apply replaces the state with snap when gen is still current. offline marks
// a snapshot loaded from the local cache rather than fetched.
func (s *ViewState) Apply(gen uint64, snap models.Snapshot, offline bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.generation != gen {
		return false
	}
	c := snap.Clone()
	s.snapshot = &c
	s.center = snap.Center
	s.offline = offline
	return true
}

// Snapshot returns a copy of the current snapshot. ok is false before the
// first successful refresh.
func (s *ViewState) Snapshot() (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return models.Snapshot{}, false
	}
	return s.snapshot.Clone(), true
}

func (s *ViewState) Center() models.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.center
}

func (s *ViewState) SetCenter(c models.Coordinates) {
	s.mu.Lock()
	s.center = c
	s.mu.Unlock()
}

func (s *ViewState) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offline
}

func (s *ViewState) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *ViewState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
