package internal

import (
	"testing"
	"time"
)

func TestRateLimiter_SetLimitAndPoll(t *testing.T) {
	kv := newTestKV(t)
	limiter := NewRateLimiter(kv)
	_, now := fakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	limiter.now = now

	if err := limiter.SetLimit(time.Hour); err != nil {
		t.Fatalf("SetLimit() error = %v", err)
	}

	active, remaining, err := limiter.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !active {
		t.Fatal("Poll() active = false right after SetLimit")
	}
	if remaining != "1 hour 0 minutes" {
		t.Errorf("Poll() remaining = %q, want %q", remaining, "1 hour 0 minutes")
	}
}

func TestRateLimiter_SelfClearsAfterExpiry(t *testing.T) {
	kv := newTestKV(t)
	limiter := NewRateLimiter(kv)
	current, now := fakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	limiter.now = now

	if err := limiter.SetLimit(3600000 * time.Millisecond); err != nil {
		t.Fatalf("SetLimit() error = %v", err)
	}

	*current = current.Add(3600001 * time.Millisecond)

	active, _, err := limiter.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if active {
		t.Error("Poll() active = true after window expired")
	}

	// The persisted key is removed, not just ignored
	_, ok, err := kv.Get(rateLimitKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("persisted rate limit key still present after expiry")
	}
}

func TestRateLimiter_SurvivesReload(t *testing.T) {
	kv := newTestKV(t)
	current, now := fakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	first := NewRateLimiter(kv)
	first.now = now
	if err := first.SetLimit(10 * time.Minute); err != nil {
		t.Fatalf("SetLimit() error = %v", err)
	}

	// A fresh limiter over the same store sees the window
	second := NewRateLimiter(kv)
	second.now = now
	*current = current.Add(time.Minute)

	active, _, err := second.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !active {
		t.Error("Poll() active = false for a persisted, unexpired window")
	}
}

func TestRateLimiter_Clear(t *testing.T) {
	kv := newTestKV(t)
	limiter := NewRateLimiter(kv)

	if err := limiter.SetLimit(time.Hour); err != nil {
		t.Fatalf("SetLimit() error = %v", err)
	}
	if err := limiter.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	active, err := limiter.Active()
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active {
		t.Error("Active() = true after Clear()")
	}
}

func TestRateLimiter_UnreadableRecordCleared(t *testing.T) {
	kv := newTestKV(t)
	limiter := NewRateLimiter(kv)

	if err := kv.Set(rateLimitKey, "not-a-number"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	active, _, err := limiter.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if active {
		t.Error("Poll() active = true for unreadable record")
	}
	if _, ok, _ := kv.Get(rateLimitKey); ok {
		t.Error("unreadable rate limit record not cleared")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"hours plural", 2*time.Hour + time.Minute, "2 hours 1 minute"},
		{"hour singular", time.Hour + 30*time.Minute, "1 hour 30 minutes"},
		{"minutes", 90 * time.Second, "1 minute 30 seconds"},
		{"minutes plural", 2*time.Minute + time.Second, "2 minutes 1 second"},
		{"seconds", 45 * time.Second, "45 seconds"},
		{"second singular", time.Second, "1 second"},
		{"zero", 0, "0 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRemaining(tt.d); got != tt.want {
				t.Errorf("formatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
