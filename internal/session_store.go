package internal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// sessionsKey is the single durable key holding the full session list.
const sessionsKey = "chat_sessions"

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapseRe = regexp.MustCompile(`-+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	sessionNumRe   = regexp.MustCompile(`_session_(\d+)$`)
)

// SessionStore provides CRUD over persisted chat sessions.
//
// Every mutation is a whole-value read, pure transform and write-back of the
// session list under one key. There is no concurrency control; the store
// assumes a single writer at a time, and two concurrent writers can lose an
// update. That mirrors the persistence discipline this schema was designed
// around and is an accepted limitation.
type SessionStore struct {
	kv  *KVStore
	now func() time.Time
}

// NewSessionStore creates a session store over the given durable store.
func NewSessionStore(kv *KVStore) *SessionStore {
	return &SessionStore{kv: kv, now: time.Now}
}

// load reads the full session list. An absent key yields an empty list; a
// corrupt value is logged and treated as empty rather than blocking every
// operation behind an unreadable record.
func (s *SessionStore) load() ([]ChatSession, error) {
	raw, ok, err := s.kv.Get(sessionsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	if !ok {
		return []ChatSession{}, nil
	}

	var sessions []ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		LogWarn("Corrupt session list, starting empty: %v", err)
		return []ChatSession{}, nil
	}
	return sessions, nil
}

func (s *SessionStore) save(sessions []ChatSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := s.kv.Set(sessionsKey, string(data)); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

// List returns all sessions in storage order. Callers sort as needed.
func (s *SessionStore) List() ([]ChatSession, error) {
	return s.load()
}

// Get returns the session with the given id, or nil if it does not exist.
func (s *SessionStore) Get(sessionID string) (*ChatSession, error) {
	sessions, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].SessionID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// slugify reduces a display name to a lowercase hyphenated identifier base.
func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = whitespaceRe.ReplaceAllString(slug, "-")
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// generateSessionID derives a unique id of the form {slug}_session_{n},
// where n is one past the highest number already used for that slug.
func generateSessionID(sessions []ChatSession, name string) string {
	base := slugify(name)

	maxNumber := 0
	for _, sess := range sessions {
		if !strings.HasPrefix(sess.SessionID, base+"_session_") {
			continue
		}
		if m := sessionNumRe.FindStringSubmatch(sess.SessionID); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxNumber {
				maxNumber = n
			}
		}
	}

	return fmt.Sprintf("%s_session_%d", base, maxNumber+1)
}

// Create makes a new session for a freshly-ingested collection and persists
// it. The first URL is also stored separately for backward compatibility.
func (s *SessionStore) Create(urls []string, collectionID, name string, documentCount, pendingURLs int) (*ChatSession, error) {
	sessions, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	firstURL := ""
	if len(urls) > 0 {
		firstURL = urls[0]
	}

	session := ChatSession{
		SessionID:     generateSessionID(sessions, name),
		Name:          strings.TrimSpace(name),
		URL:           firstURL,
		URLs:          urls,
		CollectionID:  collectionID,
		DocumentCount: documentCount,
		PendingURLs:   pendingURLs,
		CreatedAt:     now,
		LastActivity:  now,
		Messages:      []Message{},
	}

	sessions = append(sessions, session)
	if err := s.save(sessions); err != nil {
		return nil, err
	}
	return &session, nil
}

// AppendMessage appends a message to the session's history and bumps its
// last-activity time. A missing session is logged and ignored; losing one
// message update is preferable to aborting the conversation flow.
func (s *SessionStore) AppendMessage(sessionID string, msg Message) error {
	sessions, err := s.load()
	if err != nil {
		return err
	}

	for i := range sessions {
		if sessions[i].SessionID != sessionID {
			continue
		}
		sessions[i].Messages = append(sessions[i].Messages, msg)
		sessions[i].LastActivity = s.now()
		return s.save(sessions)
	}

	LogWarn("Session not found, dropping message: %s", sessionID)
	return nil
}

// UpdateURLs merges newURLs into the session's URL set (exact-string dedup,
// first-seen order) and replaces the document count with the
// backend-reported total. Returns the updated session, or nil if the
// session does not exist.
func (s *SessionStore) UpdateURLs(sessionID string, newURLs []string, totalDocuments int) (*ChatSession, error) {
	sessions, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].SessionID != sessionID {
			continue
		}

		seen := make(map[string]bool, len(sessions[i].URLs))
		merged := make([]string, 0, len(sessions[i].URLs)+len(newURLs))
		for _, u := range append(append([]string{}, sessions[i].URLs...), newURLs...) {
			if seen[u] {
				continue
			}
			seen[u] = true
			merged = append(merged, u)
		}

		sessions[i].URLs = merged
		sessions[i].DocumentCount = totalDocuments
		sessions[i].LastActivity = s.now()

		if err := s.save(sessions); err != nil {
			return nil, err
		}
		return &sessions[i], nil
	}

	return nil, nil
}

// Delete removes the session with the given id. Deleting an unknown id is
// not an error.
func (s *SessionStore) Delete(sessionID string) error {
	sessions, err := s.load()
	if err != nil {
		return err
	}

	filtered := sessions[:0]
	for _, sess := range sessions {
		if sess.SessionID != sessionID {
			filtered = append(filtered, sess)
		}
	}
	return s.save(filtered)
}

// ClearAll removes every session.
func (s *SessionStore) ClearAll() error {
	return s.kv.Delete(sessionsKey)
}
