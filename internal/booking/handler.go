package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// Handler exposes the wizard over HTTP.
type Handler struct {
	registry  *Registry
	provider  SlotProvider
	submitter Submitter
	logger    *logging.Logger
}

// NewHandler creates a booking handler. submitter may be nil, in which case
// confirmations are not persisted.
func NewHandler(registry *Registry, provider SlotProvider, submitter Submitter, logger *logging.Logger) *Handler {
	if registry == nil {
		panic("booking: registry required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		registry:  registry,
		provider:  provider,
		submitter: submitter,
		logger:    logger.Component("booking"),
	}
}

// Routes mounts the booking endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/steps", h.GetSteps)
	r.Get("/dates", h.ListDates)
	r.Get("/dates/{date}/slots", h.ListSlots)
	r.Post("/wizards", h.CreateWizard)
	r.Route("/wizards/{wizardID}", func(r chi.Router) {
		r.Get("/", h.GetWizard)
		r.Post("/date", h.SelectDate)
		r.Post("/slot", h.SelectSlot)
		r.Post("/back", h.Back)
		r.Post("/contact", h.SubmitContact)
		r.Post("/restart", h.Restart)
		r.Get("/confirmation", h.GetConfirmation)
	})
	return r
}

type dateView struct {
	Date    Date   `json:"date"`
	Label   string `json:"label"`
	Weekday string `json:"weekday"`
}

// GetSteps returns the progress labels.
// GET /booking/steps
func (h *Handler) GetSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"steps": Steps()})
}

// ListDates returns the offerable dates.
// GET /booking/dates
func (h *Handler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.provider.Dates(r.Context())
	if err != nil {
		h.logger.Error("list dates failed", "error", err)
		writeError(w, http.StatusBadGateway, "dates unavailable")
		return
	}
	views := make([]dateView, 0, len(dates))
	for _, d := range dates {
		views = append(views, dateView{Date: d, Label: d.Short(), Weekday: d.WeekdayShort()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": views})
}

// ListSlots returns the schedule for one date.
// GET /booking/dates/{date}/slots
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	slots, err := h.provider.Slots(r.Context(), date)
	if err != nil {
		h.logger.Error("list slots failed", "error", err, "date", date.String())
		writeError(w, http.StatusBadGateway, "slots unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":           date,
		"formatted_date": date.Long(),
		"slots":          slots,
	})
}

// CreateWizard starts a new booking flow.
// POST /booking/wizards
func (h *Handler) CreateWizard(w http.ResponseWriter, r *http.Request) {
	wiz := h.registry.Create()
	h.logger.Info("wizard created", "wizard_id", wiz.ID())
	writeJSON(w, http.StatusCreated, wiz.Snapshot())
}

// GetWizard returns the current state, plus the slot list while choosing a time.
// GET /booking/wizards/{wizardID}
func (h *Handler) GetWizard(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respondState(w, wiz)
}

// SelectDate handles {"date": "YYYY-MM-DD"}.
// POST /booking/wizards/{wizardID}/date
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if err := wiz.SelectDate(r.Context(), date); err != nil {
		h.fail(w, wiz, "select_date", err)
		return
	}
	h.respondState(w, wiz)
}

// SelectSlot handles {"slot_id": "3"}.
// POST /booking/wizards/{wizardID}/slot
func (h *Handler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		SlotID string `json:"slot_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SlotID == "" {
		writeError(w, http.StatusBadRequest, "slot_id is required")
		return
	}
	if err := wiz.SelectSlot(req.SlotID); err != nil {
		h.fail(w, wiz, "select_slot", err)
		return
	}
	h.respondState(w, wiz)
}

// Back steps backwards.
// POST /booking/wizards/{wizardID}/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := wiz.Back(); err != nil {
		h.fail(w, wiz, "back", err)
		return
	}
	h.respondState(w, wiz)
}

// SubmitContact handles the contact form and confirms the booking.
// POST /booking/wizards/{wizardID}/contact
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var form ContactForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	confirmation, err := wiz.SubmitContactWith(r.Context(), form, h.submitter)
	if err != nil {
		h.fail(w, wiz, "submit_contact", err)
		return
	}
	h.logger.Info("booking confirmed",
		"wizard_id", wiz.ID(),
		"date", confirmation.Date.String(),
		"slot_id", confirmation.SlotID,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"wizard":       wiz.Snapshot(),
		"confirmation": confirmation,
	})
}

// Restart clears the wizard after confirmation.
// POST /booking/wizards/{wizardID}/restart
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := wiz.Restart(); err != nil {
		h.fail(w, wiz, "restart", err)
		return
	}
	h.respondState(w, wiz)
}

// GetConfirmation returns the confirmation view.
// GET /booking/wizards/{wizardID}/confirmation
func (h *Handler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	wiz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	c, ok := wiz.Confirmation()
	if !ok {
		writeError(w, http.StatusConflict, "booking not confirmed")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*Wizard, bool) {
	wiz, err := h.registry.Get(chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "wizard not found")
		return nil, false
	}
	return wiz, true
}

func (h *Handler) respondState(w http.ResponseWriter, wiz *Wizard) {
	snap := wiz.Snapshot()
	resp := map[string]any{"wizard": snap}
	if snap.Step == StepSelectSlot {
		resp["slots"] = wiz.Slots()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) fail(w http.ResponseWriter, wiz *Wizard, op string, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("booking transition failed", "wizard_id", wiz.ID(), "op", op, "error", err)
	} else {
		h.logger.Debug("booking transition rejected", "wizard_id", wiz.ID(), "op", op, "error", err)
	}
	writeError(w, status, err.Error())
}

// StatusForError maps wizard errors onto HTTP statuses.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrWizardNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrDateNotOffered), errors.Is(err, ErrSlotNotFound):
		return http.StatusBadRequest
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrContactIncomplete), errors.Is(err, ErrInvalidContact):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
