package backendclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWithConfig(server.URL, 2*time.Second, 2*time.Second)
}

func TestChatSendsExpectedPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		json.NewEncoder(w).Encode(ChatResponse{Reply: "hi there", SessionID: "session_1"})
	}))

	resp, err := client.Chat(context.Background(), ChatParams{
		Message:    "Hello",
		SessionID:  "session_1",
		TopN:       5,
		DeepSearch: true,
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Reply != "hi there" || resp.SessionID != "session_1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if got["message"] != "Hello" {
		t.Errorf("message = %v", got["message"])
	}
	if got["session_id"] != "session_1" {
		t.Errorf("session_id = %v", got["session_id"])
	}
	if got["top_n"] != float64(5) {
		t.Errorf("top_n = %v", got["top_n"])
	}
	if got["deep_search"] != true {
		t.Errorf("deep_search = %v", got["deep_search"])
	}
}

func TestChatOmitsEmptySessionID(t *testing.T) {
	var raw string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		raw = string(body)
		json.NewEncoder(w).Encode(ChatResponse{Reply: "ok", SessionID: "session_new"})
	}))

	resp, err := client.Chat(context.Background(), ChatParams{Message: "Hello", TopN: 3})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.SessionID != "session_new" {
		t.Fatalf("expected backend-allocated session id, got %q", resp.SessionID)
	}
	if strings.Contains(raw, "session_id") {
		t.Errorf("empty session_id should be omitted, body: %s", raw)
	}
}

func TestChatNon2xxReturnsHTTPError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))

	_, err := client.Chat(context.Background(), ChatParams{Message: "Hello"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if !strings.Contains(httpErr.Body, "model crashed") {
		t.Errorf("Body = %q", httpErr.Body)
	}
}

func TestListSessionsKeepsBackendOrder(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Session{
			{ID: "b", Title: "Chat B", LastActive: 200},
			{ID: "a", Title: "Chat A", LastActive: 100},
		})
	}))

	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "b" || sessions[1].ID != "a" {
		t.Fatalf("order not preserved: %+v", sessions)
	}
}

func TestCreateAndDeleteSession(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/sessions/new":
			json.NewEncoder(w).Encode(Session{ID: "session_abc", Title: "New Chat"})
		case r.Method == http.MethodDelete && r.URL.Path == "/sessions/session_abc":
			json.NewEncoder(w).Encode(map[string]string{"status": "deleted", "session_id": "session_abc"})
		default:
			http.NotFound(w, r)
		}
	}))

	sess, err := client.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.ID != "session_abc" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := client.DeleteSession(context.Background(), "session_abc"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	err = client.DeleteSession(context.Background(), "missing")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestSessionMessages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/session_a/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]HistoryRecord{
			{Role: "user", Content: "hi", TurnIndex: 0, TS: "2025-01-01T00:00:00Z"},
			{Role: "assistant", Content: "hello", TurnIndex: 1, TS: "2025-01-01T00:00:05Z"},
		})
	}))

	records, err := client.SessionMessages(context.Background(), "session_a")
	if err != nil {
		t.Fatalf("SessionMessages failed: %v", err)
	}
	if len(records) != 2 || records[1].Role != "assistant" || records[1].TurnIndex != 1 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestUploadDocument(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		defer file.Close()
		if header.Filename != "notes.txt" {
			t.Errorf("filename = %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "some notes" {
			t.Errorf("content = %q", content)
		}
		json.NewEncoder(w).Encode(UploadAck{DocID: "doc_1", Message: "indexed 3 chunks"})
	}))

	ack, err := client.UploadDocument(context.Background(), "notes.txt", strings.NewReader("some notes"))
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if ack.DocID != "doc_1" || ack.Message != "indexed 3 chunks" {
		t.Fatalf("unexpected ack: %+v", ack)
	}
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}
