package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tanishgpt/backendclient"
	"tanishgpt/config"
	"tanishgpt/store"
)

var testChatDefaults = config.ChatConfig{TopN: 3, DeepTopN: 5}

func newChatFixture(t *testing.T, handler http.Handler) (*ChatService, *store.SessionStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := store.NewSessionStore()
	client := backendclient.NewWithConfig(server.URL, 2*time.Second, 2*time.Second)
	return NewChatService(client, sessions, testChatDefaults), sessions
}

func chatReplyHandler(reply, sessionID string, capture *map[string]any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, capture)
		}
		json.NewEncoder(w).Encode(backendclient.ChatResponse{Reply: reply, SessionID: sessionID})
	})
}

func TestSendMessageRejectsEmptyInput(t *testing.T) {
	svc, _ := newChatFixture(t, chatReplyHandler("unused", "s", nil))

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := svc.SendMessage(context.Background(), input, "", SendOptions{}); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("input %q: expected ErrEmptyMessage, got %v", input, err)
		}
	}
}

func TestSendMessageRecordsBackendSessionID(t *testing.T) {
	svc, sessions := newChatFixture(t, chatReplyHandler("welcome", "session_new", nil))

	reply, err := svc.SendMessage(context.Background(), "Hello", "", SendOptions{})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply != "welcome" {
		t.Errorf("reply = %q", reply)
	}
	// The store only ever takes the id the backend returned.
	if sessions.Active() != "session_new" {
		t.Errorf("active session = %q, want session_new", sessions.Active())
	}
}

func TestSendMessageTopNDefaults(t *testing.T) {
	testCases := []struct {
		name     string
		opts     SendOptions
		wantTopN float64
		wantDeep bool
	}{
		{name: "plain default", opts: SendOptions{}, wantTopN: 3},
		{name: "deep default", opts: SendOptions{DeepSearch: true}, wantTopN: 5, wantDeep: true},
		{name: "explicit top n wins", opts: SendOptions{DeepSearch: true, TopN: 9}, wantTopN: 9, wantDeep: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var got map[string]any
			svc, _ := newChatFixture(t, chatReplyHandler("ok", "s", &got))

			if _, err := svc.SendMessage(context.Background(), "Hello", "", testCase.opts); err != nil {
				t.Fatalf("SendMessage failed: %v", err)
			}
			if got["top_n"] != testCase.wantTopN {
				t.Errorf("top_n = %v, want %v", got["top_n"], testCase.wantTopN)
			}
			deep, _ := got["deep_search"].(bool)
			if deep != testCase.wantDeep {
				t.Errorf("deep_search = %v, want %v", deep, testCase.wantDeep)
			}
		})
	}
}

func TestSendMessageDropsStaleReply(t *testing.T) {
	var sessions *store.SessionStore
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The user switches sessions while the request is in flight.
		sessions.Set("session_other")
		json.NewEncoder(w).Encode(backendclient.ChatResponse{Reply: "late", SessionID: "session_a"})
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions = store.NewSessionStore()
	sessions.Set("session_a")
	client := backendclient.NewWithConfig(server.URL, 2*time.Second, 2*time.Second)
	svc := NewChatService(client, sessions, testChatDefaults)

	_, err := svc.SendMessage(context.Background(), "Hello", "session_a", SendOptions{})
	if !errors.Is(err, ErrStaleReply) {
		t.Fatalf("expected ErrStaleReply, got %v", err)
	}
	if sessions.Active() != "session_other" {
		t.Errorf("stale reply must not touch the store, active = %q", sessions.Active())
	}
}

func TestSendMessageNormalizesBackendFailures(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		wantStatus int
		wantCode   string
	}{
		{name: "unavailable", status: http.StatusServiceUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: "backend_unavailable"},
		{name: "bad gateway", status: http.StatusBadGateway, wantStatus: http.StatusServiceUnavailable, wantCode: "backend_unavailable"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantStatus: http.StatusTooManyRequests, wantCode: "rate_limited"},
		{name: "invalid", status: http.StatusUnprocessableEntity, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "crash", status: http.StatusInternalServerError, wantStatus: http.StatusInternalServerError, wantCode: "chat_failed"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc, sessions := newChatFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", testCase.status)
			}))

			_, err := svc.SendMessage(context.Background(), "Hello", "", SendOptions{})
			var chatErr *ChatError
			if !errors.As(err, &chatErr) {
				t.Fatalf("expected ChatError, got %v", err)
			}
			if chatErr.StatusCode != testCase.wantStatus || chatErr.ErrorCode != testCase.wantCode {
				t.Errorf("got (%d, %s), want (%d, %s)", chatErr.StatusCode, chatErr.ErrorCode, testCase.wantStatus, testCase.wantCode)
			}
			if sessions.Active() != "" {
				t.Errorf("failed send must not touch the store, active = %q", sessions.Active())
			}
		})
	}
}
