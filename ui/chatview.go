package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tanishgpt/internal/logger"
	"tanishgpt/internal/trace"
	"tanishgpt/services"
	"tanishgpt/store"
)

// State is the chat view's history-loading state machine.
type State int

const (
	StateIdle State = iota
	StateLoadingHistory
	StateReady
)

// ErrHistoryLoading is returned when input arrives while a session
// switch is still replacing the message list.
var ErrHistoryLoading = errors.New("history load in progress")

const (
	thinkingText     = "Thinking..."
	thinkingDeepText = "Running deep search..."
)

// uploadStatusClearDelay is how long the transient upload status line
// stays visible. A var so tests can shorten it.
var uploadStatusClearDelay = 4 * time.Second

// ChatView owns the rendered conversation for the active session.
// It subscribes to the session store and reloads history whenever the
// active id changes, fetching at most once per id-change event.
type ChatView struct {
	chat     *services.ChatService
	docs     *services.DocumentService
	history  *services.SessionService
	sessions *store.SessionStore

	mu           sync.Mutex
	started      bool
	state        State
	messages     []Message
	deepSearch   bool
	uploading    bool
	uploadStatus string

	// prevLoadedID is the last session id whose history was loaded.
	// loadedOnce distinguishes "never loaded" from the empty id.
	prevLoadedID string
	loadedOnce   bool

	onUpdate    func()
	unsubscribe func()

	ctx    context.Context
	cancel context.CancelFunc
}

func NewChatView(chat *services.ChatService, docs *services.DocumentService, history *services.SessionService, sessions *store.SessionStore) *ChatView {
	ctx, cancel := context.WithCancel(context.Background())
	v := &ChatView{
		chat:     chat,
		docs:     docs,
		history:  history,
		sessions: sessions,
		state:    StateIdle,
		ctx:      ctx,
		cancel:   cancel,
	}
	v.unsubscribe = sessions.Subscribe(v.handleSessionChange)
	return v
}

// Close detaches the view from the session store and cancels any
// in-flight requests issued on its behalf.
func (v *ChatView) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
	v.cancel()
}

// SetOnUpdate registers a callback fired after every message-list or
// status change, for renderers that repaint reactively.
func (v *ChatView) SetOnUpdate(fn func()) {
	v.mu.Lock()
	v.onUpdate = fn
	v.mu.Unlock()
}

func (v *ChatView) notify() {
	v.mu.Lock()
	fn := v.onUpdate
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Messages returns a copy of the rendered conversation.
func (v *ChatView) Messages() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Message, len(v.messages))
	copy(out, v.messages)
	return out
}

func (v *ChatView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *ChatView) Started() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started
}

func (v *ChatView) SetDeepSearch(on bool) {
	v.mu.Lock()
	v.deepSearch = on
	v.mu.Unlock()
}

func (v *ChatView) DeepSearch() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deepSearch
}

func (v *ChatView) UploadStatus() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.uploadStatus
}

// handleSessionChange reloads history when the active session id
// actually changed. The previous-id cell makes redundant notifications
// (same id twice) cost nothing: one fetch per id-change event, not one
// per render.
func (v *ChatView) handleSessionChange(id string) {
	v.mu.Lock()
	if v.loadedOnce && v.prevLoadedID == id {
		v.mu.Unlock()
		return
	}
	v.prevLoadedID = id
	v.loadedOnce = true
	v.started = true
	v.messages = nil

	if id == "" {
		// No session selected: empty list, ready for input.
		v.state = StateReady
		v.mu.Unlock()
		v.notify()
		return
	}
	v.state = StateLoadingHistory
	v.mu.Unlock()
	v.notify()

	records, err := v.history.Messages(trace.NewRequest(v.ctx), id)
	if err != nil {
		logger.ErrorWithFields("history load failed", logger.Fields{
			"session_id": id,
			"error":      err.Error(),
		})
	}

	loaded := make([]Message, 0, len(records))
	for _, rec := range records {
		loaded = append(loaded, messageFromRecord(rec))
	}

	v.mu.Lock()
	// Apply only if this is still the session we started loading for.
	if v.prevLoadedID == id {
		v.messages = loaded
		v.state = StateReady
	}
	v.mu.Unlock()
	v.notify()
}

// Send runs one chat turn: optimistic user message, transient thinking
// placeholder, backend call, reply (or error line) in its place.
// Stale replies, arriving after a session switch, are dropped.
func (v *ChatView) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.ErrEmptyMessage
	}

	v.mu.Lock()
	if v.state == StateLoadingHistory {
		v.mu.Unlock()
		return ErrHistoryLoading
	}
	v.started = true
	deep := v.deepSearch

	userMsg := newMessage(SenderUser, text)
	placeholderText := thinkingText
	if deep {
		placeholderText = thinkingDeepText
	}
	placeholder := newMessage(SenderAI, placeholderText)
	placeholder.placeholder = true
	v.messages = append(v.messages, userMsg, placeholder)
	v.mu.Unlock()
	v.notify()

	issuedAgainst := v.sessions.Active()
	reply, err := v.chat.SendMessage(ctx, text, issuedAgainst, services.SendOptions{DeepSearch: deep})

	v.removeMessage(placeholder.ID)

	switch {
	case err == nil:
		v.appendFor(issuedAgainst, newMessage(SenderAI, reply))
		return nil
	case errors.Is(err, services.ErrStaleReply):
		logger.DebugWithFields("dropped stale chat reply", logger.Fields{
			"issued_against": issuedAgainst,
			"active":         v.sessions.Active(),
		})
		return nil
	default:
		// The view must never stay stuck in "thinking"; surface the
		// failure as a system line and let the user retry manually.
		v.appendFor(issuedAgainst, newMessage(SenderSystem, fmt.Sprintf("Message failed: %v", err)))
		return err
	}
}

// appendFor appends a message only when the session it belongs to is
// still the one being rendered.
func (v *ChatView) appendFor(issuedAgainst string, msg Message) {
	v.mu.Lock()
	if v.prevLoadedID != issuedAgainst && v.loadedOnce {
		v.mu.Unlock()
		return
	}
	v.messages = append(v.messages, msg)
	v.mu.Unlock()
	v.notify()
}

func (v *ChatView) removeMessage(id string) {
	v.mu.Lock()
	for i, m := range v.messages {
		if m.ID == id {
			v.messages = append(v.messages[:i], v.messages[i+1:]...)
			break
		}
	}
	v.mu.Unlock()
	v.notify()
}

// Upload sends a local document to the backend. On success, a chat
// view that has not started yet starts fresh: messages cleared and the
// active session reset so the next turn opens a new backend session.
// One system message acknowledges the file. The uploading flag is
// always reset, success or failure.
func (v *ChatView) Upload(ctx context.Context, path string) error {
	v.mu.Lock()
	if v.uploading {
		v.mu.Unlock()
		return errors.New("upload already in progress")
	}
	v.uploading = true
	wasStarted := v.started
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.uploading = false
		v.mu.Unlock()
		v.notify()
	}()

	ack, err := v.docs.UploadFile(ctx, path)
	if err != nil {
		v.setUploadStatus(fmt.Sprintf("Upload failed: %v", err), false)
		return err
	}

	if !wasStarted {
		v.mu.Lock()
		v.started = true
		v.messages = nil
		v.state = StateReady
		v.prevLoadedID = ""
		v.loadedOnce = true
		v.mu.Unlock()
		// Next chat turn starts a fresh session seeded by the upload.
		v.sessions.Clear()
	}

	ackText := fmt.Sprintf("Uploaded %s", filepath.Base(path))
	if ack.Message != "" {
		ackText = fmt.Sprintf("Uploaded %s: %s", filepath.Base(path), ack.Message)
	}
	v.mu.Lock()
	v.messages = append(v.messages, newMessage(SenderSystem, ackText))
	v.mu.Unlock()

	v.setUploadStatus(fmt.Sprintf("Uploaded %s", filepath.Base(path)), true)
	return nil
}

// setUploadStatus records the transient status line. Successful
// statuses clear themselves after a fixed delay; failures stay until
// the next upload attempt.
func (v *ChatView) setUploadStatus(status string, autoClear bool) {
	v.mu.Lock()
	v.uploadStatus = status
	v.mu.Unlock()
	v.notify()

	if !autoClear {
		return
	}
	time.AfterFunc(uploadStatusClearDelay, func() {
		v.mu.Lock()
		if v.uploadStatus == status {
			v.uploadStatus = ""
		}
		v.mu.Unlock()
		v.notify()
	})
}
