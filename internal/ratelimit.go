package internal

import (
	"fmt"
	"strconv"
	"time"
)

// rateLimitKey holds the cooldown expiry as unix milliseconds. The durable
// store is the source of truth, so an armed window survives restarts.
const rateLimitKey = "chatRateLimitExpiresAt"

// RateLimiter is a persisted, process-wide cooldown gate. While a window is
// active, submissions are refused before any network attempt. The window
// self-clears on the first Poll after expiry.
type RateLimiter struct {
	kv  *KVStore
	now func() time.Time
}

// NewRateLimiter creates a rate limiter over the given durable store.
func NewRateLimiter(kv *KVStore) *RateLimiter {
	return &RateLimiter{kv: kv, now: time.Now}
}

// SetLimit arms the cooldown window for the given duration from now.
func (r *RateLimiter) SetLimit(d time.Duration) error {
	expiresAt := r.now().Add(d).UnixMilli()
	if err := r.kv.Set(rateLimitKey, strconv.FormatInt(expiresAt, 10)); err != nil {
		return fmt.Errorf("failed to persist rate limit: %w", err)
	}
	return nil
}

// expiry reads the persisted expiry, clearing the key if the stored value is
// unreadable or already in the past. Returns zero time when no window is
// armed.
func (r *RateLimiter) expiry() (time.Time, error) {
	raw, ok, err := r.kv.Get(rateLimitKey)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		LogWarn("Unreadable rate limit record, clearing: %q", raw)
		return time.Time{}, r.kv.Delete(rateLimitKey)
	}

	expiresAt := time.UnixMilli(ms)
	if !r.now().Before(expiresAt) {
		return time.Time{}, r.kv.Delete(rateLimitKey)
	}
	return expiresAt, nil
}

// Poll is called on a fixed cadence (one second). It reports whether the
// window is active and, if so, a human-readable remaining time. An expired
// window is cleared from the durable store as a side effect.
func (r *RateLimiter) Poll() (bool, string, error) {
	expiresAt, err := r.expiry()
	if err != nil {
		return false, "", err
	}
	if expiresAt.IsZero() {
		return false, "", nil
	}
	return true, formatRemaining(expiresAt.Sub(r.now())), nil
}

// Active reports whether a cooldown window is currently in force.
func (r *RateLimiter) Active() (bool, error) {
	expiresAt, err := r.expiry()
	if err != nil {
		return false, err
	}
	return !expiresAt.IsZero(), nil
}

// Clear removes the window regardless of its expiry.
func (r *RateLimiter) Clear() error {
	return r.kv.Delete(rateLimitKey)
}

// formatRemaining renders a duration as the largest two relevant units with
// correct singular/plural forms.
func formatRemaining(d time.Duration) string {
	seconds := int64(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		m := minutes % 60
		return fmt.Sprintf("%d hour%s %d minute%s", hours, plural(hours), m, plural(m))
	case minutes > 0:
		s := seconds % 60
		return fmt.Sprintf("%d minute%s %d second%s", minutes, plural(minutes), s, plural(s))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
