package internal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultQueryTimeout bounds a whole query or ingest request, including
	// the time spent consuming the stream.
	DefaultQueryTimeout = 180 * time.Second

	healthTimeout = 5 * time.Second

	// maxStreamLine bounds one stream line; a single token event is tiny,
	// but metadata can carry a long source list.
	maxStreamLine = 1024 * 1024
)

// ConversationMessage is one prior turn sent back as query context.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IngestRequest starts ingestion of a new documentation collection.
type IngestRequest struct {
	URLs           []string            `json:"urls,omitempty"`
	URLsWithLabel  map[string][]string `json:"urls_with_label,omitempty"`
	CollectionName string              `json:"collection_name,omitempty"`
}

// IngestResponse is the backend's answer to an ingest request.
type IngestResponse struct {
	Status            string `json:"status"`
	CollectionID      string `json:"collection_id"`
	CollectionName    string `json:"collection_name"`
	DocumentsParsed   int    `json:"documents_parsed"`
	DocumentsIngested int    `json:"documents_ingested"`
	PendingURLsCount  int    `json:"pending_urls_count"`
	Message           string `json:"message"`
	Error             string `json:"error"`
}

// AddURLsResponse is the backend's answer to an add-urls request.
type AddURLsResponse struct {
	Status            string `json:"status"`
	CollectionID      string `json:"collection_id"`
	URLsAdded         int    `json:"urls_added"`
	DocumentsParsed   int    `json:"documents_parsed"`
	DocumentsIngested int    `json:"documents_ingested"`
	TotalDocuments    int    `json:"total_documents"`
	Message           string `json:"message"`
	Error             string `json:"error"`
}

// Callbacks receive the events of one streaming query. OnToken fires once
// per fragment in arrival order; OnMetadata fires once, after the final
// token and before OnDone; OnError reports mid-stream backend errors
// without ending the stream.
type Callbacks struct {
	OnToken    func(token string)
	OnMetadata func(meta MetadataEvent)
	OnError    func(message string)
	OnDone     func()
}

// Client talks to the documentation question-answering backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a client for the backend at baseURL. A non-positive
// timeout falls back to DefaultQueryTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes the backend liveness endpoint. Any 2xx counts as healthy.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return timeoutError("Health check")
		}
		return networkError(c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}

// postJSON issues one JSON POST and returns the raw response. Transport
// failures come back as classified typed errors.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, timeoutError("Request")
		}
		return nil, networkError(c.baseURL)
	}
	return resp, nil
}

// Ingest submits documentation URLs for indexing into a new collection.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.postJSON(ctx, "/api/ingest", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, Classify(resp.StatusCode, body)
	}

	var out IngestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse ingest response: %w", err)
	}
	if out.Status != "success" {
		if out.Error != "" {
			return nil, fmt.Errorf("ingestion failed: %s", out.Error)
		}
		return nil, fmt.Errorf("ingestion failed")
	}
	return &out, nil
}

// AddURLs adds documentation URLs to an existing collection.
func (c *Client) AddURLs(ctx context.Context, collectionID string, urlsWithLabel map[string][]string) (*AddURLsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := map[string]interface{}{
		"collection_id":   collectionID,
		"urls_with_label": urlsWithLabel,
	}
	resp, err := c.postJSON(ctx, "/api/ingest/add-urls", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, Classify(resp.StatusCode, respBody)
	}

	var out AddURLsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse add-urls response: %w", err)
	}
	return &out, nil
}

// queryRequest is the wire shape of a streaming query.
type queryRequest struct {
	CollectionID        string                `json:"collection_id"`
	Query               string                `json:"query"`
	EnableLazyLoading   bool                  `json:"enable_lazy_loading"`
	Stream              bool                  `json:"stream"`
	ConversationHistory []ConversationMessage `json:"conversation_history,omitempty"`
}

// QueryStream submits a question and consumes the event-stream answer,
// driving the supplied callbacks in arrival order.
//
// A non-2xx response before streaming begins is returned as a classified
// *APIError (status preserved so callers can intercept 429). Exceeding the
// client timeout yields a timeout-kind error and stops all further
// callbacks. Malformed stream lines are logged and skipped.
func (c *Client) QueryStream(ctx context.Context, collectionID, query string, history []ConversationMessage, cb Callbacks) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := queryRequest{
		CollectionID:        collectionID,
		Query:               query,
		Stream:              true,
		ConversationHistory: history,
	}

	resp, err := c.postJSON(ctx, "/api/query", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return Classify(resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/event-stream") {
		return protocolMismatchError(contentType)
	}

	return c.consumeStream(ctx, resp.Body, cb)
}

// consumeStream reads the line-delimited event stream until a done event or
// the transport closes. The scanner buffers a trailing partial line across
// reads, so events are only ever dispatched on complete lines.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, cb Callbacks) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for scanner.Scan() {
		// The watchdog cancels the request; never dispatch late data after
		// that.
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		event, err := ParseStreamEvent([]byte(payload))
		if err != nil {
			LogWarn("Skipping malformed stream event: %v", err)
			continue
		}

		switch ev := event.(type) {
		case TokenEvent:
			if cb.OnToken != nil {
				cb.OnToken(ev.Content)
			}
		case MetadataEvent:
			if cb.OnMetadata != nil {
				cb.OnMetadata(ev)
			}
		case ErrorEvent:
			if cb.OnError != nil {
				cb.OnError(ev.Message)
			}
		case DoneEvent:
			if cb.OnDone != nil {
				cb.OnDone()
			}
			return nil
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutError("Query")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return nil
}
