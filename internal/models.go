package internal

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Source is one document reference attached to an assistant answer.
type Source struct {
	Source  string `json:"source"`
	Section string `json:"section,omitempty"`
}

// Message is one turn in a conversation. Assistant messages carry answer
// metadata once the stream has settled; IsStreaming is true only while the
// answer is still arriving.
type Message struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	IsStreaming   bool      `json:"isStreaming,omitempty"`
	Confidence    *float64  `json:"confidence,omitempty"`
	Sources       []Source  `json:"sources,omitempty"`
	LazyLoaded    bool      `json:"lazyLoaded,omitempty"`
	SuggestedURLs []string  `json:"suggestedUrls,omitempty"`
}

// ChatSession pairs one conversation with one backend document collection.
//
// SessionID and CollectionID are immutable after creation. URL keeps the
// first ingested URL for backward compatibility with records written before
// multi-URL collections existed; URLs is the authoritative ordered set.
type ChatSession struct {
	SessionID     string    `json:"sessionId"`
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	URLs          []string  `json:"urls"`
	CollectionID  string    `json:"collectionId"`
	DocumentCount int       `json:"documentCount"`
	PendingURLs   int       `json:"pendingUrls"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActivity  time.Time `json:"lastActivity"`
	Messages      []Message `json:"messages"`
}
