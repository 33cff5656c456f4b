package community

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/mindfulu-platform/internal/identity"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

const listLimit = 50

// Handler serves the community board.
type Handler struct {
	board  *Board
	logger *logging.Logger
}

func NewHandler(board *Board, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{board: board, logger: logger.Component("community")}
}

// Routes mounts the board. Mentor replies require the admin role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/moods", h.listMoods)
	r.Post("/moods", h.postMood)
	r.Get("/confessions", h.listConfessions)
	r.Post("/confessions", h.postConfession)
	r.Post("/confessions/{confessionID}/support", h.support)
	r.With(identity.RequireRole(identity.RoleAdmin)).Post("/confessions/{confessionID}/reply", h.reply)
	return r
}

type moodView struct {
	MoodPost
	TimeAgo string `json:"time_ago"`
}

type confessionView struct {
	Confession
	TimeAgo string `json:"time_ago"`
}

func (h *Handler) listMoods(w http.ResponseWriter, r *http.Request) {
	posts, err := h.board.Moods(r.Context(), listLimit)
	if err != nil {
		h.fail(w, err)
		return
	}
	now := h.board.now()
	views := make([]moodView, 0, len(posts))
	for _, p := range posts {
		views = append(views, moodView{MoodPost: p, TimeAgo: TimeAgo(now, p.CreatedAt)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": MoodOptions(), "posts": views})
}

func (h *Handler) postMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mood string `json:"mood"`
	}
	if !decode(w, r, &req) {
		return
	}
	post, err := h.board.PostMood(r.Context(), req.Mood)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, moodView{MoodPost: post, TimeAgo: TimeAgo(post.CreatedAt, post.CreatedAt)})
}

func (h *Handler) listConfessions(w http.ResponseWriter, r *http.Request) {
	items, err := h.board.Confessions(r.Context(), listLimit)
	if err != nil {
		h.fail(w, err)
		return
	}
	now := h.board.now()
	views := make([]confessionView, 0, len(items))
	for _, c := range items {
		views = append(views, h.view(c, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"confessions": views})
}

func (h *Handler) postConfession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.board.PostConfession(r.Context(), req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(c, c.CreatedAt))
}

func (h *Handler) support(w http.ResponseWriter, r *http.Request) {
	c, err := h.board.Support(r.Context(), chi.URLParam(r, "confessionID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(c, h.board.now()))
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.board.Reply(r.Context(), chi.URLParam(r, "confessionID"), req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(c, h.board.now()))
}

func (h *Handler) view(c Confession, now time.Time) confessionView {
	return confessionView{Confession: c, TimeAgo: TimeAgo(now, c.CreatedAt)}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownMood), errors.Is(err, ErrEmptyConfession),
		errors.Is(err, ErrEmptyReply), errors.Is(err, ErrTooLong):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("community request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
