package resources

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the catalog over HTTP and counts detail views.
type Handler struct {
	catalog *Catalog
	usage   *Usage
}

func NewHandler(catalog *Catalog) *Handler {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Handler{catalog: catalog, usage: NewUsage()}
}

// UsageReport summarises views recorded by this handler.
func (h *Handler) UsageReport(limit int) UsageReport {
	return h.usage.Report(h.catalog, limit)
}

// Routes mounts GET /, /featured, /topics and /{id}.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/featured", h.featured)
	r.Get("/topics", h.topics)
	r.Get("/{resourceID}", h.get)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{Query: q.Get("q"), Type: q.Get("type"), Topic: q.Get("topic")}
	body := map[string]any{"resources": h.catalog.List(f)}
	// Featured items are only highlighted on the unfiltered view.
	if f.IsZero() {
		body["featured"] = h.catalog.Featured()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) featured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"resources": h.catalog.Featured()})
}

func (h *Handler) topics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"topics": h.catalog.Topics(), "types": Types()})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.Get(chi.URLParam(r, "resourceID"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "resource not found"})
		return
	}
	h.usage.RecordView(res.ID)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
