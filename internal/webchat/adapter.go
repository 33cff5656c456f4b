package webchat

import (
	"errors"
	"time"

	"github.com/wolfman30/mindfulu-platform/internal/chat"
)

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "session", "history", "typing", "message", "error", "pong"
	ID        uint64           `json:"id,omitempty"`
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	Code      string           `json:"code,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Pending   bool             `json:"pending,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// HistoryMessage is a transcript entry as the widget renders it.
type HistoryMessage struct {
	ID        uint64 `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

func historyOf(msgs []chat.Message) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, historyMessage(m))
	}
	return out
}

func historyMessage(m chat.Message) HistoryMessage {
	return HistoryMessage{
		ID:        m.ID,
		Role:      string(m.Author),
		Text:      m.Text,
		Timestamp: m.SentAt.Format(time.RFC3339),
	}
}

// frameFor maps a session event onto the frame pushed to the widget.
func frameFor(ev chat.Event) OutboundMessage {
	switch ev.Type {
	case chat.EventTyping:
		return OutboundMessage{Type: "typing", SessionID: ev.SessionID}
	case chat.EventError:
		return OutboundMessage{
			Type:      "error",
			SessionID: ev.SessionID,
			Code:      errorCode(ev.Err),
			Text:      "Sorry, something went wrong. Please try again.",
		}
	default:
		return OutboundMessage{
			Type:      "message",
			SessionID: ev.SessionID,
			ID:        ev.Message.ID,
			Role:      string(ev.Message.Author),
			Text:      ev.Message.Text,
			Timestamp: ev.Message.SentAt.Format(time.RFC3339),
		}
	}
}

// errorFrame describes a rejected send.
func errorFrame(sessionID string, err error) OutboundMessage {
	text := "Sorry, something went wrong. Please try again."
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		text = "Please type a message first."
	case errors.Is(err, chat.ErrReplyPending):
		text = "Please wait for the current reply."
	case errors.Is(err, chat.ErrSessionClosed):
		text = "This conversation has ended."
	}
	return OutboundMessage{Type: "error", SessionID: sessionID, Code: errorCode(err), Text: text}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, chat.ErrReplyPending):
		return "reply_pending"
	case errors.Is(err, chat.ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, chat.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, chat.ErrReplyGenerationFailed):
		return "reply_failed"
	default:
		return "internal"
	}
}
