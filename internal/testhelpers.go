package internal

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// newTestKV creates an in-memory durable store for testing
func newTestKV(t *testing.T) *KVStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	kv := NewKVStore(db)
	if err := kv.ensureSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return kv
}

// newTestStore creates a session store over an in-memory database
func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(newTestKV(t))
}

// fakeClock returns a controllable clock starting at a fixed instant
func fakeClock(start time.Time) (*time.Time, func() time.Time) {
	current := start
	return &current, func() time.Time { return current }
}

// createTestSession creates and persists a session with sample data
func createTestSession(t *testing.T, store *SessionStore, name string) *ChatSession {
	t.Helper()
	session, err := store.Create([]string{"https://docs.example.com/api"}, "col-"+name, name, 3, 0)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return session
}
