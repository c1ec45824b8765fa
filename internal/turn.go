package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxHistoryMessages caps how many prior turns are sent as query context.
	MaxHistoryMessages = 10

	// MaxInputLength caps one question.
	MaxInputLength = 3000

	// rateLimitCooldown is how long submissions stay refused after the
	// backend reports 429.
	rateLimitCooldown = time.Hour
)

// TurnRunner executes one streaming question/answer turn: it persists the
// user message, streams the answer, and settles the assistant message into
// the session. The client itself stays persistence-free; all session and
// rate-limit state flows through here.
type TurnRunner struct {
	client  *Client
	store   *SessionStore
	limiter *RateLimiter
	now     func() time.Time
}

// NewTurnRunner wires a client to the session store and rate limiter.
func NewTurnRunner(client *Client, store *SessionStore, limiter *RateLimiter) *TurnRunner {
	return &TurnRunner{client: client, store: store, limiter: limiter, now: time.Now}
}

// TurnResult reports the outcome of one turn.
type TurnResult struct {
	// Message is the settled assistant message, or nil when the turn was
	// refused or discarded (rate limit).
	Message *Message

	// RateLimited is true when the backend reported 429 and the cooldown
	// window was armed; the partial answer is discarded, not persisted.
	RateLimited bool
}

// Run submits one question against the session's collection. onToken, when
// non-nil, receives each answer fragment as it arrives.
//
// On a 429 the rate limiter is armed for an hour and the pending assistant
// message is dropped. On any other failure the classified human-readable
// message is persisted as the assistant's reply so the transcript records
// what happened.
func (t *TurnRunner) Run(ctx context.Context, sessionID, input string, onToken func(string)) (*TurnResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty question")
	}
	if len(input) > MaxInputLength {
		return nil, fmt.Errorf("question too long: %d characters (maximum %d)", len(input), MaxInputLength)
	}

	if active, remaining, err := t.limiter.Poll(); err != nil {
		return nil, err
	} else if active {
		return nil, &APIError{
			Kind:    KindRateLimited,
			Message: fmt.Sprintf("Rate limited - please wait %s before asking again.", remaining),
		}
	}

	session, err := t.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	// History is built from the turns that existed before this question.
	history := buildHistory(session.Messages, MaxHistoryMessages)

	userMsg := Message{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Text:      input,
		Timestamp: t.now(),
	}
	if err := t.store.AppendMessage(sessionID, userMsg); err != nil {
		return nil, err
	}

	assistantID := uuid.New().String()
	var answer strings.Builder
	var settled *Message
	var streamErrMsg string

	cb := Callbacks{
		OnToken: func(token string) {
			// Tokens after metadata no longer contribute to the answer.
			if settled != nil {
				return
			}
			answer.WriteString(token)
			if onToken != nil {
				onToken(token)
			}
		},
		OnMetadata: func(meta MetadataEvent) {
			if settled != nil {
				LogWarn("Duplicate metadata event ignored")
				return
			}
			confidence := meta.Confidence
			msg := Message{
				ID:            assistantID,
				Role:          RoleAssistant,
				Text:          answer.String(),
				Timestamp:     t.now(),
				Confidence:    &confidence,
				Sources:       meta.Sources,
				LazyLoaded:    meta.LazyLoaded,
				SuggestedURLs: meta.SuggestedURLs,
			}
			if err := t.store.AppendMessage(sessionID, msg); err != nil {
				LogError("Failed to persist assistant message: %v", err)
			}
			settled = &msg
		},
		OnError: func(message string) {
			LogWarn("Stream error event: %s", message)
			streamErrMsg = message
		},
		OnDone: func() {},
	}

	err = t.client.QueryStream(ctx, session.CollectionID, input, history, cb)
	if err != nil {
		if IsRateLimited(err) {
			if limitErr := t.limiter.SetLimit(rateLimitCooldown); limitErr != nil {
				LogError("Failed to arm rate limit: %v", limitErr)
			}
			return &TurnResult{RateLimited: true}, nil
		}
		return t.settleFailure(sessionID, assistantID, err.Error())
	}

	if settled == nil {
		// Stream closed without metadata; surface whatever the backend said.
		reason := streamErrMsg
		if reason == "" {
			reason = "the answer stream ended unexpectedly"
		}
		return t.settleFailure(sessionID, assistantID, reason)
	}

	return &TurnResult{Message: settled}, nil
}

// settleFailure replaces the unfinished assistant answer with the failure
// text and persists it, so the transcript shows the turn's outcome.
func (t *TurnRunner) settleFailure(sessionID, assistantID, reason string) (*TurnResult, error) {
	msg := Message{
		ID:        assistantID,
		Role:      RoleAssistant,
		Text:      fmt.Sprintf("Sorry, I encountered an error: %s. Please try again or check if the backend is running.", reason),
		Timestamp: t.now(),
	}
	if err := t.store.AppendMessage(sessionID, msg); err != nil {
		LogError("Failed to persist failure message: %v", err)
	}
	return &TurnResult{Message: &msg}, nil
}

// buildHistory converts the most recent messages into wire-format context.
func buildHistory(messages []Message, limit int) []ConversationMessage {
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	history := make([]ConversationMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, ConversationMessage{Role: msg.Role, Content: msg.Text})
	}
	return history
}
