package internal

import (
	"encoding/json"
	"strings"
	"time"
)

// legacyCollectionKey held a single collection record before multi-session
// support existed.
const legacyCollectionKey = "currentCollection"

// legacyCollection is the pre-session storage schema.
type legacyCollection struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	DocumentCount int    `json:"documentCount"`
	PendingURLs   int    `json:"pendingUrls"`
	IngestedAt    string `json:"ingestedAt"`
}

// Migrator performs the one-shot upgrade of a legacy single-collection
// record into the session schema. It runs at every startup and is a no-op
// once the legacy key is gone.
type Migrator struct {
	kv    *KVStore
	store *SessionStore
	now   func() time.Time
}

// NewMigrator creates a migrator over the given store.
func NewMigrator(kv *KVStore, store *SessionStore) *Migrator {
	return &Migrator{kv: kv, store: store, now: time.Now}
}

// Run migrates the legacy record if one exists.
//
// A record that fails to parse is logged and RETAINED: retrying a cheap
// migration on every start is harmless, while deleting would destroy the
// only copy of the user's collection reference. A record whose collection
// is already referenced by an existing session is discarded without
// creating a duplicate.
func (m *Migrator) Run() error {
	raw, ok, err := m.kv.Get(legacyCollectionKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var legacy legacyCollection
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		LogWarn("Failed to parse legacy collection record, keeping it: %v", err)
		return nil
	}

	sessions, err := m.store.List()
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		if sess.CollectionID == legacy.ID {
			LogDebug("Legacy collection %s already migrated", legacy.ID)
			return m.kv.Delete(legacyCollectionKey)
		}
	}

	name := legacy.Name
	if name == "" {
		name = "Migrated Collection"
	}

	now := m.now()
	createdAt := now
	if legacy.IngestedAt != "" {
		if t, err := time.Parse(time.RFC3339, legacy.IngestedAt); err == nil {
			createdAt = t
		}
	}

	session := ChatSession{
		SessionID:     generateSessionID(sessions, name),
		Name:          strings.TrimSpace(name),
		URL:           legacy.URL,
		URLs:          []string{legacy.URL},
		CollectionID:  legacy.ID,
		DocumentCount: legacy.DocumentCount,
		PendingURLs:   legacy.PendingURLs,
		CreatedAt:     createdAt,
		LastActivity:  now,
		Messages:      []Message{},
	}

	sessions = append(sessions, session)
	if err := m.store.save(sessions); err != nil {
		return err
	}

	LogInfo("Migrated legacy collection %s into session %s", legacy.ID, session.SessionID)
	return m.kv.Delete(legacyCollectionKey)
}
