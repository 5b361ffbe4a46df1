// Package store holds the client's two pieces of durable in-memory
// state: the active session id and the side panel visibility. Views
// receive stores explicitly instead of reaching for ambient globals,
// and react to changes through subscription callbacks.
package store

import "sync"

// SessionStore is the single cell holding the active session id.
// The empty string means "no session selected; the next chat turn will
// create one backend-side". There is exactly one writer at a time: the
// view or service reacting to a completed user action.
type SessionStore struct {
	mu     sync.Mutex
	active string

	nextSubID int
	subs      map[int]func(id string)
}

func NewSessionStore() *SessionStore {
	return &SessionStore{subs: make(map[int]func(id string))}
}

// Active returns the current session id, empty when none is selected.
func (s *SessionStore) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Set records a new active session id and notifies subscribers.
// Setting the already-active id is a no-op so redundant writes do not
// re-trigger downstream history loads.
func (s *SessionStore) Set(id string) {
	s.mu.Lock()
	if s.active == id {
		s.mu.Unlock()
		return
	}
	s.active = id
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}

// Clear resets the store to "no session selected".
func (s *SessionStore) Clear() {
	s.Set("")
}

// Subscribe registers a callback invoked after every change. The
// returned function removes the subscription. Callbacks run on the
// goroutine that performed the Set, after the store is updated.
func (s *SessionStore) Subscribe(fn func(id string)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) snapshotSubs() []func(id string) {
	out := make([]func(id string), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

// PanelStore holds whether the session side panel is expanded.
// Mutated by open/close interactions only.
type PanelStore struct {
	mu   sync.Mutex
	open bool

	nextSubID int
	subs      map[int]func(open bool)
}

func NewPanelStore() *PanelStore {
	return &PanelStore{subs: make(map[int]func(open bool))}
}

func (p *PanelStore) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *PanelStore) Set(open bool) {
	p.mu.Lock()
	if p.open == open {
		p.mu.Unlock()
		return
	}
	p.open = open
	subs := make([]func(open bool), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(open)
	}
}

func (p *PanelStore) Toggle() {
	p.mu.Lock()
	p.open = !p.open
	open := p.open
	subs := make([]func(open bool), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(open)
	}
}

func (p *PanelStore) Subscribe(fn func(open bool)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}
