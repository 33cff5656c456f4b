package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/mindfulu-platform/internal/bookings"
	"github.com/wolfman30/mindfulu-platform/internal/resources"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// BookingSource reads confirmed bookings.
type BookingSource interface {
	CountByUrgency(ctx context.Context) (map[string]int, error)
	ListRecent(ctx context.Context, limit int) ([]bookings.Record, error)
}

// Counter is anything that can report a live size, such as the chat manager or
// the wizard registry.
type Counter interface {
	Len() int
}

// ChatSource reports live chat load.
type ChatSource interface {
	Counter
	PendingCount() int
}

// MoodSource tallies recent community moods.
type MoodSource interface {
	MoodCounts(ctx context.Context, limit int) (map[string]int, error)
}

// ResourceSource reports resource library usage.
type ResourceSource interface {
	UsageReport(limit int) resources.UsageReport
}

// Sources wires live figures into the dashboard. Nil fields are skipped.
type Sources struct {
	Directory *Directory
	Bookings  BookingSource
	Stats     *StatsRepository
	Chats     ChatSource
	Wizards   Counter
	Moods     MoodSource
	Resources ResourceSource
	Location  *time.Location
}

// Overview is the dashboard landing payload.
type Overview struct {
	CounselorStatus   []StatusCount  `json:"counselor_status"`
	OpenSlotsToday    int            `json:"open_slots_today"`
	ActiveChats       int            `json:"active_chats"`
	PendingReplies    int            `json:"pending_replies"`
	ActiveWizards     int            `json:"active_wizards"`
	BookingsByUrgency map[string]int `json:"bookings_by_urgency"`
	BookingStats      *BookingStats  `json:"booking_stats,omitempty"`
	MoodCounts        map[string]int `json:"mood_counts"`
	ResourceViews     int            `json:"resource_views"`
	Trends            []TrendPoint   `json:"trends"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// Handler serves admin dashboard endpoints.
type Handler struct {
	src    Sources
	logger *logging.Logger
	now    func() time.Time
}

func NewHandler(src Sources, logger *logging.Logger) *Handler {
	if src.Directory == nil {
		src.Directory = NewDirectory()
	}
	if src.Location == nil {
		src.Location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{src: src, logger: logger.Component("dashboard"), now: time.Now}
}

// Routes mounts the dashboard. Callers are expected to restrict it to admins.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/overview", h.overview)
	r.Get("/counselors", h.counselors)
	r.Get("/trends", h.trends)
	r.Get("/bookings", h.recentBookings)
	r.Get("/resources", h.resourceUsage)
	return r
}

// Overview gathers the live figures.
func (h *Handler) Overview(ctx context.Context) (Overview, error) {
	now := h.now()
	out := Overview{
		CounselorStatus:   h.src.Directory.StatusBreakdown(),
		OpenSlotsToday:    h.src.Directory.OpenSlotsToday(),
		BookingsByUrgency: map[string]int{},
		MoodCounts:        map[string]int{},
		Trends:            Trends(),
		GeneratedAt:       now.UTC(),
	}
	if h.src.Chats != nil {
		out.ActiveChats = h.src.Chats.Len()
		out.PendingReplies = h.src.Chats.PendingCount()
	}
	if h.src.Wizards != nil {
		out.ActiveWizards = h.src.Wizards.Len()
	}
	if h.src.Bookings != nil {
		counts, err := h.src.Bookings.CountByUrgency(ctx)
		if err != nil {
			return Overview{}, err
		}
		out.BookingsByUrgency = counts
	}
	if h.src.Stats != nil {
		local := now.In(h.src.Location)
		today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		weekAgo := now.Add(-7 * 24 * time.Hour)
		stats, err := h.src.Stats.BookingStats(ctx, today, &weekAgo, &now)
		if err != nil {
			return Overview{}, err
		}
		out.BookingStats = stats
	}
	if h.src.Moods != nil {
		counts, err := h.src.Moods.MoodCounts(ctx, 500)
		if err != nil {
			return Overview{}, err
		}
		out.MoodCounts = counts
	}
	if h.src.Resources != nil {
		out.ResourceViews = h.src.Resources.UsageReport(0).TotalViews
	}
	return out, nil
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Overview(r.Context())
	if err != nil {
		h.logger.Error("dashboard overview failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load overview"})
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *Handler) counselors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"counselors": h.src.Directory.Search(r.URL.Query().Get("q"))})
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"trends": Trends()})
}

func (h *Handler) recentBookings(w http.ResponseWriter, r *http.Request) {
	if h.src.Bookings == nil {
		writeJSON(w, http.StatusOK, map[string]any{"bookings": []bookings.Record{}})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	recs, err := h.src.Bookings.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("dashboard bookings failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load bookings"})
		return
	}
	if recs == nil {
		recs = []bookings.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": recs})
}

func (h *Handler) resourceUsage(w http.ResponseWriter, r *http.Request) {
	if h.src.Resources == nil {
		writeJSON(w, http.StatusOK, resources.UsageReport{Popular: []resources.ResourceViews{}, ByTopic: []resources.GroupViews{}, ByType: []resources.GroupViews{}})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be positive"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.src.Resources.UsageReport(limit))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
