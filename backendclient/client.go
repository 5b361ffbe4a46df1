package backendclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tanishgpt/config"
	"tanishgpt/httpclient"
)

// Client is a thin typed client for the TanishGPT backend HTTP API.
//
// It knows nothing about view state; it only moves DTOs over the wire.
// All inference, retrieval and session persistence happen backend-side.
type Client struct {
	base *httpclient.BaseClient

	// chatBase uses a longer timeout since a chat completion can run
	// for minutes while session CRUD calls finish in milliseconds.
	chatBase *httpclient.BaseClient
}

// Session is the backend's session metadata record.
type Session struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"created_at"`
	LastActive int64  `json:"last_active"`
}

// HistoryRecord is one stored message in a session's history.
// TurnIndex is the backend ordering key; TS is an ISO timestamp.
type HistoryRecord struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	TurnIndex int    `json:"turn_index"`
	TS        string `json:"ts"`
}

// ChatParams carries everything one chat turn sends to the backend.
// An empty SessionID asks the backend to allocate a fresh session.
type ChatParams struct {
	Message    string
	SessionID  string
	TopN       int
	DeepSearch bool
	History    []HistoryRecord
}

type chatRequest struct {
	SessionID  string          `json:"session_id,omitempty"`
	Message    string          `json:"message"`
	TopN       int             `json:"top_n,omitempty"`
	DeepSearch bool            `json:"deep_search,omitempty"`
	History    []HistoryRecord `json:"history,omitempty"`
}

// ChatResponse is the backend's reply to one chat turn. SessionID is
// always populated, covering the case where the backend created one.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

// HTTPError is returned for non-2xx backend responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("tanishgpt-backend request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// New builds a Client from the application config.
func New() *Client {
	cfg := config.GetConfig().Backend
	return NewWithConfig(cfg.BaseURL, cfg.Timeout(), cfg.ChatTimeout())
}

// NewWithConfig builds a Client against an explicit base URL, mainly
// for tests running against httptest servers.
func NewWithConfig(baseURL string, timeout, chatTimeout time.Duration) *Client {
	return &Client{
		base:     httpclient.NewBaseClientWithClient(httpclient.New(httpclient.Config{Timeout: timeout}), baseURL),
		chatBase: httpclient.NewBaseClientWithClient(httpclient.New(httpclient.Config{Timeout: chatTimeout}), baseURL),
	}
}

const maxBodySize = 5 * 1024 * 1024

// decodeResponse drains the response body, enforces a 2xx status and
// unmarshals into out when out is non-nil.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("tanishgpt-backend response read failed: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tanishgpt-backend response decode failed: %w", err)
	}
	return nil
}

// Chat posts one user turn and returns the assistant reply. The backend
// allocates and returns a session id when params.SessionID is empty.
func (c *Client) Chat(ctx context.Context, params ChatParams) (ChatResponse, error) {
	payload := chatRequest{
		SessionID:  params.SessionID,
		Message:    params.Message,
		TopN:       params.TopN,
		DeepSearch: params.DeepSearch,
		History:    params.History,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return ChatResponse{}, err
	}

	req, err := c.chatBase.NewRequest(ctx, http.MethodPost, "/chat", nil, bytes.NewReader(buf))
	if err != nil {
		return ChatResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.chatBase.Do(req)
	if err != nil {
		return ChatResponse{}, err
	}

	var out ChatResponse
	if err := decodeResponse(resp, &out); err != nil {
		return ChatResponse{}, err
	}
	return out, nil
}

// ListSessions returns session metadata in backend order. The client
// never re-sorts; display order is the backend's call.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/sessions", nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}

	var out []Session
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSession asks the backend for a fresh empty session.
func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	req, err := c.base.NewRequest(ctx, http.MethodPost, "/sessions/new", nil, nil)
	if err != nil {
		return Session{}, err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return Session{}, err
	}

	var out Session
	if err := decodeResponse(resp, &out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// GetSession fetches metadata for a single session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/sessions/"+sessionID, nil, nil)
	if err != nil {
		return Session{}, err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return Session{}, err
	}

	var out Session
	if err := decodeResponse(resp, &out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// SessionMessages fetches the stored history of a session, ordered by
// turn index on the backend side.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/sessions/"+sessionID+"/messages", nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}

	var out []HistoryRecord
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSession removes a session and its stored messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := c.base.NewRequest(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil)
	if err != nil {
		return err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}
