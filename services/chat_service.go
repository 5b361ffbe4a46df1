package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tanishgpt/backendclient"
	"tanishgpt/config"
	"tanishgpt/store"
)

// ErrEmptyMessage is returned when the trimmed input is empty.
var ErrEmptyMessage = errors.New("message is empty")

// ErrStaleReply marks a reply that arrived after the user switched to a
// different session. The caller must drop it instead of rendering it
// into the wrong message list.
var ErrStaleReply = errors.New("reply arrived for a no longer active session")

// SendOptions are the per-message options of one chat turn.
// TopN <= 0 picks the configured default for the chosen search mode.
type SendOptions struct {
	DeepSearch bool
	TopN       int
}

type ChatService struct {
	client   *backendclient.Client
	sessions *store.SessionStore
	defaults config.ChatConfig
}

// ChatError carries a normalized status and stable error code so
// callers (the webui gateway in particular) can map backend failures
// without inspecting raw bodies.
type ChatError struct {
	StatusCode int
	ErrorCode  string
	Cause      error
}

func (e *ChatError) Error() string {
	if e == nil {
		return "chat_failed"
	}
	return e.ErrorCode
}

func (e *ChatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewChatService(client *backendclient.Client, sessions *store.SessionStore, defaults config.ChatConfig) *ChatService {
	return &ChatService{client: client, sessions: sessions, defaults: defaults}
}

// SendMessage posts one user turn to the backend and returns the reply
// text. The request carries the session id it was issued against; when
// the active session changes while the request is in flight, the reply
// is rejected as stale and the session store is left untouched.
// On success the store records the backend's session id, which covers
// the "empty id, backend allocates" case.
func (s *ChatService) SendMessage(ctx context.Context, text, sessionID string, opts SendOptions) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	topN := opts.TopN
	if topN <= 0 {
		if opts.DeepSearch {
			topN = s.defaults.DeepTopN
		} else {
			topN = s.defaults.TopN
		}
	}

	resp, err := s.client.Chat(ctx, backendclient.ChatParams{
		Message:    text,
		SessionID:  sessionID,
		TopN:       topN,
		DeepSearch: opts.DeepSearch,
	})
	if err != nil {
		var httpErr *backendclient.HTTPError
		if errors.As(err, &httpErr) {
			status, code := normalizeChatStatus(httpErr.StatusCode)
			return "", &ChatError{StatusCode: status, ErrorCode: code, Cause: err}
		}
		return "", &ChatError{StatusCode: http.StatusInternalServerError, ErrorCode: "chat_failed", Cause: err}
	}

	if s.sessions.Active() != sessionID {
		return "", ErrStaleReply
	}
	s.sessions.Set(resp.SessionID)

	return resp.Reply, nil
}

func normalizeChatStatus(statusCode int) (normalizedStatus int, errorCode string) {
	switch statusCode {
	case http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "rate_limited"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return http.StatusBadRequest, "invalid_request"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return http.StatusServiceUnavailable, "backend_unavailable"
	default:
		return http.StatusInternalServerError, "chat_failed"
	}
}
