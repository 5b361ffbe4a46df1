package ui

import (
	"context"
	"sync"

	"tanishgpt/backendclient"
	"tanishgpt/internal/logger"
	"tanishgpt/services"
	"tanishgpt/store"
)

// SidebarState tracks which session-list operation is in flight.
type SidebarState int

const (
	SidebarIdle SidebarState = iota
	SidebarLoadingList
	SidebarCreating
	SidebarDeleting
)

// Sidebar is the session-list view model: it lists, creates, opens and
// deletes sessions. Confirmation for deletes is the renderer's job;
// Delete assumes the user already confirmed.
type Sidebar struct {
	svc      *services.SessionService
	sessions *store.SessionStore
	panel    *store.PanelStore

	mu    sync.Mutex
	state SidebarState
	items []backendclient.Session
}

func NewSidebar(svc *services.SessionService, sessions *store.SessionStore, panel *store.PanelStore) *Sidebar {
	return &Sidebar{svc: svc, sessions: sessions, panel: panel}
}

func (s *Sidebar) State() SidebarState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Items returns the listed sessions in backend order; the sidebar never
// re-sorts.
func (s *Sidebar) Items() []backendclient.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backendclient.Session, len(s.items))
	copy(out, s.items)
	return out
}

// Refresh reloads the session list from the backend.
func (s *Sidebar) Refresh(ctx context.Context) error {
	s.setState(SidebarLoadingList)
	defer s.setState(SidebarIdle)

	items, err := s.svc.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Create makes a new backend session, activates it, refreshes the list
// and collapses the mobile panel.
func (s *Sidebar) Create(ctx context.Context) (backendclient.Session, error) {
	s.setState(SidebarCreating)
	defer s.setState(SidebarIdle)

	sess, err := s.svc.Create(ctx)
	if err != nil {
		return backendclient.Session{}, err
	}

	if err := s.Refresh(ctx); err != nil {
		// The session exists and is active; a stale list is tolerable.
		logger.WarnWithFields("session list refresh after create failed", logger.Fields{
			"error": err.Error(),
		})
	}
	s.panel.Set(false)
	return sess, nil
}

// Open activates a session. Local state only; no network call. History
// loading happens downstream via the session store subscription.
func (s *Sidebar) Open(sessionID string) {
	s.svc.Open(sessionID)
	s.panel.Set(false)
}

// Delete removes a confirmed session. On success the entry leaves the
// local list and the active id is cleared if it pointed there. On
// failure everything stays as it was; the user can retry.
func (s *Sidebar) Delete(ctx context.Context, sessionID string) error {
	s.setState(SidebarDeleting)
	defer s.setState(SidebarIdle)

	if err := s.svc.Delete(ctx, sessionID); err != nil {
		logger.ErrorWithFields("session delete failed", logger.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}

	s.mu.Lock()
	for i, item := range s.items {
		if item.ID == sessionID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Sidebar) setState(state SidebarState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
