package internal

import (
	"encoding/json"
	"fmt"
)

// StreamEvent is one event from the query response stream. It is a closed
// set: TokenEvent, MetadataEvent, ErrorEvent and DoneEvent. Dispatch sites
// switch over the concrete type, so adding an event kind is a compile-time
// visible change.
type StreamEvent interface {
	streamEvent()
}

// TokenEvent carries one incremental fragment of the answer text.
type TokenEvent struct {
	Content string
}

// MetadataEvent finalizes an answer with its confidence, sources and
// suggestions. The backend sends it exactly once per query, after the last
// token and before done.
type MetadataEvent struct {
	Confidence    float64
	Sources       []Source
	LazyLoaded    bool
	SuggestedURLs []string
}

// ErrorEvent reports a mid-stream backend failure. It does not terminate
// the stream.
type ErrorEvent struct {
	Message string
}

// DoneEvent signals the logical end of the turn.
type DoneEvent struct{}

func (TokenEvent) streamEvent()    {}
func (MetadataEvent) streamEvent() {}
func (ErrorEvent) streamEvent()    {}
func (DoneEvent) streamEvent()     {}

// streamEventEnvelope is the raw wire shape; the type field discriminates.
type streamEventEnvelope struct {
	Type          string   `json:"type"`
	Content       string   `json:"content"`
	Confidence    float64  `json:"confidence"`
	Sources       []Source `json:"sources"`
	LazyLoaded    bool     `json:"lazy_loaded"`
	SuggestedURLs []string `json:"suggested_urls"`
	Message       string   `json:"message"`
}

// ParseStreamEvent decodes one data payload into its typed event.
func ParseStreamEvent(data []byte) (StreamEvent, error) {
	var env streamEventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse stream event: %w", err)
	}

	switch env.Type {
	case "token":
		return TokenEvent{Content: env.Content}, nil
	case "metadata":
		return MetadataEvent{
			Confidence:    env.Confidence,
			Sources:       env.Sources,
			LazyLoaded:    env.LazyLoaded,
			SuggestedURLs: env.SuggestedURLs,
		}, nil
	case "error":
		return ErrorEvent{Message: env.Message}, nil
	case "done":
		return DoneEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown stream event type: %q", env.Type)
	}
}
