// Package chat models the AI support conversation: an append-only transcript
// with at most one outstanding assistant reply at a time.
package chat

import (
	"errors"
	"time"
)

// Author identifies who wrote a message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// DefaultGreeting seeds every new session.
const DefaultGreeting = "Hello! I'm here to provide mental health support and guidance. How are you feeling today? Remember, this is a safe space and you can share whatever is on your mind."

// Message is one transcript entry. Messages are never mutated after append.
type Message struct {
	ID     uint64    `json:"id"`
	Author Author    `json:"author"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

var (
	// ErrEmptyMessage is returned for blank input. The transcript is untouched.
	ErrEmptyMessage = errors.New("chat: message is empty")
	// ErrReplyPending is returned when a reply is still outstanding.
	ErrReplyPending = errors.New("chat: reply pending")
	// ErrSessionClosed is returned once the session has been torn down.
	ErrSessionClosed = errors.New("chat: session closed")
	// ErrSessionNotFound is returned by the manager for unknown ids.
	ErrSessionNotFound = errors.New("chat: session not found")
	// ErrReplyGenerationFailed wraps reply generator failures.
	ErrReplyGenerationFailed = errors.New("chat: reply generation failed")
)

// IsSilentRejection reports errors the UI normally prevents by disabling the
// send affordance.
func IsSilentRejection(err error) bool {
	return errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrReplyPending)
}

// EventType tags session events pushed to subscribers.
type EventType string

const (
	EventMessage EventType = "message"
	EventTyping  EventType = "typing"
	EventError   EventType = "error"
)

// Event is delivered to subscribers after every transcript change.
type Event struct {
	Type      EventType
	SessionID string
	Message   Message
	Err       error
}

// Listener receives session events. Listeners must not call SendMessage
// synchronously.
type Listener func(Event)
