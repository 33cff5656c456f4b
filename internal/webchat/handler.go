package webchat

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/mindfulu-platform/internal/chat"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
	"golang.org/x/net/websocket"
)

// Handler serves the support chat over WebSocket with an HTTP fallback.
type Handler struct {
	manager *chat.Manager
	logger  *logging.Logger
}

// NewHandler creates a web chat handler.
func NewHandler(manager *chat.Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{manager: manager, logger: logger.Component("webchat")}
}

// Routes mounts the chat endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", h.HandleWebSocket)
	r.Post("/sessions", h.HandleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/messages", h.HandleHistory)
		r.Post("/messages", h.HandleMessage)
		r.Delete("/", h.HandleCloseSession)
	})
	return r
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

// writeTimeout bounds a single frame write so a stalled browser cannot hold
// up the session's event queue.
const writeTimeout = 10 * time.Second

// wsConn serializes writes from the reader loop and session listeners.
type wsConn struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

func (c *wsConn) send(msg OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(c.conn, msg)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	session := h.resolveSession(r.URL.Query().Get("session"))
	wsc := &wsConn{conn: conn, timeout: writeTimeout}

	_ = wsc.send(OutboundMessage{Type: "session", SessionID: session.ID(), Pending: session.Pending()})
	_ = wsc.send(OutboundMessage{Type: "history", SessionID: session.ID(), Messages: historyOf(session.Snapshot())})

	unsubscribe := session.Subscribe(func(ev chat.Event) {
		if err := wsc.send(frameFor(ev)); err != nil {
			h.logger.Debug("webchat: push failed", "session_id", ev.SessionID, "error", err)
			_ = conn.Close()
		}
	})
	defer unsubscribe()

	h.logger.Info("webchat: connection opened", "session_id", session.ID())

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", session.ID(), "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = wsc.send(OutboundMessage{Type: "pong"})
		case "message":
			if _, err := session.SendMessage(msg.Text); err != nil {
				_ = wsc.send(errorFrame(session.ID(), err))
				if errors.Is(err, chat.ErrSessionClosed) {
					return
				}
			}
		}
	}
}

// resolveSession resumes a live session or starts a fresh one.
func (h *Handler) resolveSession(id string) *chat.Session {
	if id != "" {
		if s, err := h.manager.Get(id); err == nil {
			return s
		}
	}
	return h.manager.Create()
}

// HandleCreateSession starts a session and returns its greeting.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": s.ID(),
		"pending":    false,
		"messages":   historyOf(s.Snapshot()),
	})
}

// HandleHistory returns the transcript for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": s.ID(),
		"pending":    s.Pending(),
		"messages":   historyOf(s.Snapshot()),
	})
}

// HandleMessage is the HTTP fallback for sending messages. The reply arrives
// later, so the caller polls HandleHistory.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := s.SendMessage(req.Text)
	if err != nil {
		frame := errorFrame(s.ID(), err)
		writeJSON(w, statusForError(err), map[string]string{"error": frame.Text, "code": frame.Code})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"session_id": s.ID(),
		"pending":    true,
		"message":    historyMessage(msg),
	})
}

// HandleCloseSession tears a session down, cancelling any outstanding reply.
func (h *Handler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.manager.Close(id); err != nil {
		writeError(w, statusForError(err), "session not found")
		return
	}
	h.logger.Info("webchat: session closed", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*chat.Session, bool) {
	s, err := h.manager.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, statusForError(err), "session not found")
		return nil, false
	}
	return s, true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrReplyPending):
		return http.StatusConflict
	case errors.Is(err, chat.ErrSessionNotFound), errors.Is(err, chat.ErrSessionClosed):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
