package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// streamHandler replays the given event payloads as an SSE response.
func streamHandler(payloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, p := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", p)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// recordingCallbacks captures the callback sequence of one query.
type recordingCallbacks struct {
	events   []string
	tokens   []string
	metadata []MetadataEvent
	errors   []string
	done     int
}

func (r *recordingCallbacks) callbacks() Callbacks {
	return Callbacks{
		OnToken: func(token string) {
			r.events = append(r.events, "token")
			r.tokens = append(r.tokens, token)
		},
		OnMetadata: func(meta MetadataEvent) {
			r.events = append(r.events, "metadata")
			r.metadata = append(r.metadata, meta)
		},
		OnError: func(message string) {
			r.events = append(r.events, "error")
			r.errors = append(r.errors, message)
		},
		OnDone: func() {
			r.events = append(r.events, "done")
			r.done++
		},
	}
}

func TestClient_QueryStream_AssemblesTokensInOrder(t *testing.T) {
	server := httptest.NewServer(streamHandler(
		`{"type":"token","content":"Hel"}`,
		`{"type":"token","content":"lo"}`,
		`{"type":"metadata","confidence":0.9,"sources":[],"lazy_loaded":false,"suggested_urls":null}`,
		`{"type":"done"}`,
	))
	defer server.Close()

	client := NewClient(server.URL, 0)
	rec := &recordingCallbacks{}

	if err := client.QueryStream(context.Background(), "cid-1", "hello?", nil, rec.callbacks()); err != nil {
		t.Fatalf("QueryStream() error = %v", err)
	}

	if got := strings.Join(rec.tokens, ""); got != "Hello" {
		t.Errorf("assembled text = %q, want %q", got, "Hello")
	}
	wantSeq := []string{"token", "token", "metadata", "done"}
	if strings.Join(rec.events, ",") != strings.Join(wantSeq, ",") {
		t.Errorf("event sequence = %v, want %v", rec.events, wantSeq)
	}
	if len(rec.metadata) != 1 {
		t.Fatalf("metadata callbacks = %d, want 1", len(rec.metadata))
	}
	if rec.metadata[0].Confidence != 0.9 {
		t.Errorf("metadata confidence = %v, want 0.9", rec.metadata[0].Confidence)
	}
	if rec.done != 1 {
		t.Errorf("done callbacks = %d, want 1", rec.done)
	}
}

func TestClient_QueryStream_SkipsMalformedLines(t *testing.T) {
	server := httptest.NewServer(streamHandler(
		`{"type":"token","content":"a"}`,
		`{not json at all`,
		`{"type":"wobble"}`,
		`{"type":"token","content":"b"}`,
		`{"type":"metadata","confidence":1,"sources":[],"lazy_loaded":false,"suggested_urls":null}`,
		`{"type":"done"}`,
	))
	defer server.Close()

	client := NewClient(server.URL, 0)
	rec := &recordingCallbacks{}

	if err := client.QueryStream(context.Background(), "cid-1", "q", nil, rec.callbacks()); err != nil {
		t.Fatalf("QueryStream() error = %v", err)
	}
	if got := strings.Join(rec.tokens, ""); got != "ab" {
		t.Errorf("assembled text = %q, want %q (malformed lines must be skipped, not fatal)", got, "ab")
	}
}

func TestClient_QueryStream_ErrorEventDoesNotEndStream(t *testing.T) {
	server := httptest.NewServer(streamHandler(
		`{"type":"token","content":"x"}`,
		`{"type":"error","message":"partial retrieval failure"}`,
		`{"type":"token","content":"y"}`,
		`{"type":"metadata","confidence":0.4,"sources":[],"lazy_loaded":false,"suggested_urls":null}`,
		`{"type":"done"}`,
	))
	defer server.Close()

	client := NewClient(server.URL, 0)
	rec := &recordingCallbacks{}

	if err := client.QueryStream(context.Background(), "cid-1", "q", nil, rec.callbacks()); err != nil {
		t.Fatalf("QueryStream() error = %v", err)
	}
	if len(rec.errors) != 1 || rec.errors[0] != "partial retrieval failure" {
		t.Errorf("errors = %v, want the mid-stream error message", rec.errors)
	}
	if got := strings.Join(rec.tokens, ""); got != "xy" {
		t.Errorf("assembled text = %q, want %q (stream continues past error events)", got, "xy")
	}
	if rec.done != 1 {
		t.Errorf("done callbacks = %d, want 1", rec.done)
	}
}

func TestClient_QueryStream_ProtocolMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","answer":"not a stream"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	rec := &recordingCallbacks{}

	err := client.QueryStream(context.Background(), "cid-1", "q", nil, rec.callbacks())
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("QueryStream() error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindProtocolMismatch {
		t.Errorf("Kind = %v, want protocol-mismatch", apiErr.Kind)
	}
	if len(rec.events) != 0 {
		t.Errorf("callbacks fired before protocol check: %v", rec.events)
	}
}

func TestClient_QueryStream_RateLimitedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"detail":"10 per 1 hour"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	err := client.QueryStream(context.Background(), "cid-1", "q", nil, Callbacks{})

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("QueryStream() error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindRateLimited {
		t.Errorf("Kind = %v, want rate-limited", apiErr.Kind)
	}
	if apiErr.Status != 429 {
		t.Errorf("Status = %d, want 429 (needed for upstream interception)", apiErr.Status)
	}
}

func TestClient_QueryStream_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"type\":\"token\",\"content\":\"slow\"}\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, 100*time.Millisecond)
	rec := &recordingCallbacks{}

	err := client.QueryStream(context.Background(), "cid-1", "q", nil, rec.callbacks())
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("QueryStream() error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindTimeout {
		t.Errorf("Kind = %v, want timeout (distinct from generic network failure)", apiErr.Kind)
	}
	if rec.done != 0 {
		t.Error("done fired despite timeout")
	}
}

func TestClient_QueryStream_SendsRequestShape(t *testing.T) {
	var got queryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"done\"}\n\n")
	}))
	defer server.Close()

	history := []ConversationMessage{
		{Role: RoleUser, Content: "earlier question"},
		{Role: RoleAssistant, Content: "earlier answer"},
	}
	client := NewClient(server.URL, 0)
	if err := client.QueryStream(context.Background(), "cid-7", "next?", history, Callbacks{}); err != nil {
		t.Fatalf("QueryStream() error = %v", err)
	}

	if got.CollectionID != "cid-7" {
		t.Errorf("collection_id = %q, want cid-7", got.CollectionID)
	}
	if !got.Stream {
		t.Error("stream = false, want true")
	}
	if len(got.ConversationHistory) != 2 || got.ConversationHistory[0].Content != "earlier question" {
		t.Errorf("conversation_history = %v, want the supplied turns", got.ConversationHistory)
	}
}

func TestClient_Health(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if err := NewClient(healthy.URL, 0).Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v for healthy backend", err)
	}

	sick := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer sick.Close()

	if err := NewClient(sick.URL, 0).Health(context.Background()); err == nil {
		t.Error("Health() error = nil for 500 response")
	}

	if err := NewClient("http://127.0.0.1:1", 0).Health(context.Background()); err == nil {
		t.Error("Health() error = nil for unreachable backend")
	}
}

func TestClient_Ingest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ingest" {
			t.Errorf("path = %q, want /api/ingest", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"success","collection_id":"cid-1","collection_name":"Docs","documents_parsed":5,"documents_ingested":5,"pending_urls_count":2}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	resp, err := client.Ingest(context.Background(), IngestRequest{
		URLs:           []string{"https://docs.example.com"},
		CollectionName: "Docs",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if resp.CollectionID != "cid-1" || resp.DocumentsIngested != 5 || resp.PendingURLsCount != 2 {
		t.Errorf("Ingest() = %+v, want parsed response fields", resp)
	}
}

func TestClient_IngestClassifiesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail":"Too many urls: maximum allowed: 20, provided: 35"}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 0).Ingest(context.Background(), IngestRequest{URLs: []string{"x"}})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Ingest() error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindOversizedBatch {
		t.Errorf("Kind = %v, want oversized-batch", apiErr.Kind)
	}
}

func TestClient_AddURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ingest/add-urls" {
			t.Errorf("path = %q, want /api/ingest/add-urls", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"success","collection_id":"cid-1","urls_added":2,"total_documents":9}`)
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, 0).AddURLs(context.Background(), "cid-1", map[string][]string{
		"Guides": {"https://x/1", "https://x/2"},
	})
	if err != nil {
		t.Fatalf("AddURLs() error = %v", err)
	}
	if resp.URLsAdded != 2 || resp.TotalDocuments != 9 {
		t.Errorf("AddURLs() = %+v, want urls_added=2 total_documents=9", resp)
	}
}
