package services

import (
	"context"

	"tanishgpt/backendclient"
	"tanishgpt/store"
)

// SessionService wraps the backend session endpoints and keeps the
// active-session store consistent with create/open/delete actions.
type SessionService struct {
	client   *backendclient.Client
	sessions *store.SessionStore
}

func NewSessionService(client *backendclient.Client, sessions *store.SessionStore) *SessionService {
	return &SessionService{client: client, sessions: sessions}
}

// List fetches session metadata in backend order.
func (s *SessionService) List(ctx context.Context) ([]backendclient.Session, error) {
	return s.client.ListSessions(ctx)
}

// Create asks the backend for a fresh session and makes it active.
func (s *SessionService) Create(ctx context.Context) (backendclient.Session, error) {
	sess, err := s.client.CreateSession(ctx)
	if err != nil {
		return backendclient.Session{}, err
	}
	s.sessions.Set(sess.ID)
	return sess, nil
}

// Open switches the active session. Pure local state change; history
// loading is triggered by whoever subscribes to the session store.
func (s *SessionService) Open(sessionID string) {
	s.sessions.Set(sessionID)
}

// Delete removes a session backend-side. On success the active id is
// cleared only when it pointed at the deleted session. On failure both
// the backend state and the active id are left as they were.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if s.sessions.Active() == sessionID {
		s.sessions.Clear()
	}
	return nil
}

// Messages fetches the stored history of a session.
func (s *SessionService) Messages(ctx context.Context, sessionID string) ([]backendclient.HistoryRecord, error) {
	return s.client.SessionMessages(ctx, sessionID)
}
