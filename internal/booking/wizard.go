package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SlotProvider supplies offerable dates and the slots for a date. The wizard
// treats results as read-only and re-queries slots on every date selection.
type SlotProvider interface {
	Dates(ctx context.Context) ([]Date, error)
	Slots(ctx context.Context, date Date) ([]Slot, error)
}

// Submitter receives the confirmed booking for persistence. The wizard only
// transitions to Confirmed once Submit returns nil.
type Submitter interface {
	Submit(ctx context.Context, c Confirmation) error
}

// TransitionObserver is notified of every attempted transition.
type TransitionObserver interface {
	ObserveTransition(op string, err error)
}

// Confirmation is the read-only view rendered on the final screen. Every field
// is copied from accumulated wizard state.
type Confirmation struct {
	WizardID       string      `json:"wizard_id"`
	Date           Date        `json:"date"`
	FormattedDate  string      `json:"formatted_date"`
	Time           string      `json:"time"`
	SlotID         string      `json:"slot_id"`
	CounselorName  string      `json:"counselor_name"`
	Specialization string      `json:"specialization"`
	Contact        ContactForm `json:"contact"`
	ConfirmedAt    time.Time   `json:"confirmed_at"`
}

// Snapshot is a copy of the wizard state at one instant.
type Snapshot struct {
	ID           string       `json:"id"`
	Step         Step         `json:"step"`
	State        string       `json:"state"`
	SelectedDate *Date        `json:"selected_date,omitempty"`
	SelectedSlot *Slot        `json:"selected_slot,omitempty"`
	Contact      *ContactForm `json:"contact,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Wizard is the booking state machine. It is safe for concurrent use but is
// meant to be owned by a single visitor.
type Wizard struct {
	id       string
	provider SlotProvider
	observer TransitionObserver
	now      func() time.Time

	mu          sync.Mutex
	inFlight    string
	step        Step
	date        Date
	slots       []Slot
	slot        *Slot
	contact     *ContactForm
	confirmedAt time.Time
	updatedAt   time.Time
}

// WizardOption customizes a Wizard.
type WizardOption func(*Wizard)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) WizardOption {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

// WithObserver attaches a transition observer such as metrics.
func WithObserver(o TransitionObserver) WizardOption {
	return func(w *Wizard) { w.observer = o }
}

// WithID fixes the wizard id.
func WithID(id string) WizardOption {
	return func(w *Wizard) {
		if id != "" {
			w.id = id
		}
	}
}

// NewWizard returns a wizard at StepSelectDate.
func NewWizard(provider SlotProvider, opts ...WizardOption) *Wizard {
	if provider == nil {
		panic("booking: slot provider required")
	}
	w := &Wizard{
		id:       uuid.NewString(),
		provider: provider,
		now:      time.Now,
		step:     StepSelectDate,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.updatedAt = w.now().UTC()
	return w
}

// ID returns the wizard id.
func (w *Wizard) ID() string { return w.id }

// Busy reports whether a provider or submitter call is in progress.
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight != ""
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// UpdatedAt returns the time of the last accepted transition.
func (w *Wizard) UpdatedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updatedAt
}

// SelectDate moves SelectingDate → SelectingSlot. The date must be one of the
// provider's offerable dates; the slots for it are fetched fresh. A previously
// chosen slot survives only if the new date still offers it as available.
// The provider is called without holding the wizard lock.
func (w *Wizard) SelectDate(ctx context.Context, date Date) (err error) {
	defer w.observe("select_date", &err)

	w.mu.Lock()
	if err := w.busyLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.step != StepSelectDate {
		w.mu.Unlock()
		return fmt.Errorf("%w: select date from %s", ErrInvalidTransition, w.step)
	}
	if date.IsZero() {
		w.mu.Unlock()
		return ErrDateNotOffered
	}
	w.inFlight = "select date"
	w.mu.Unlock()

	slots, err := w.fetchSlots(ctx, date)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = ""
	if err != nil {
		return err
	}
	if w.step != StepSelectDate {
		return fmt.Errorf("%w: select date from %s", ErrInvalidTransition, w.step)
	}
	if w.slot != nil && date != w.date {
		w.slot = refreshSlot(slots, w.slot.ID)
	}
	w.date = date
	w.slots = slots
	w.advance(StepSelectSlot)
	return nil
}

func (w *Wizard) fetchSlots(ctx context.Context, date Date) ([]Slot, error) {
	dates, err := w.provider.Dates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: dates: %w", ErrProviderUnavailable, err)
	}
	if !containsDate(dates, date) {
		return nil, fmt.Errorf("%w: %s", ErrDateNotOffered, date)
	}
	slots, err := w.provider.Slots(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: slots for %s: %w", ErrProviderUnavailable, date, err)
	}
	return append([]Slot(nil), slots...), nil
}

// SelectSlot moves SelectingSlot → EnteringContact. Unavailable slots are
// rejected without any state change.
func (w *Wizard) SelectSlot(slotID string) (err error) {
	defer w.observe("select_slot", &err)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.busyLocked(); err != nil {
		return err
	}
	if w.step != StepSelectSlot {
		return fmt.Errorf("%w: select slot from %s", ErrInvalidTransition, w.step)
	}
	idx := slotIndex(w.slots, slotID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, slotID)
	}
	chosen := w.slots[idx]
	if !chosen.Available {
		return fmt.Errorf("%w: %q", ErrSlotUnavailable, slotID)
	}
	w.slot = &chosen
	w.advance(StepEnterContact)
	return nil
}

// Back moves one step backwards from SelectingSlot or EnteringContact. Prior
// selections are kept.
func (w *Wizard) Back() (err error) {
	defer w.observe("back", &err)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.busyLocked(); err != nil {
		return err
	}
	switch w.step {
	case StepSelectSlot:
		w.advance(StepSelectDate)
	case StepEnterContact:
		w.advance(StepSelectSlot)
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, w.step)
	}
	return nil
}

// SubmitContact moves EnteringContact → Confirmed without any I/O.
func (w *Wizard) SubmitContact(form ContactForm) (Confirmation, error) {
	return w.SubmitContactWith(context.Background(), form, nil)
}

// SubmitContactWith validates the form, hands the would-be confirmation to
// submitter and only then moves to Confirmed. A submitter error leaves the
// wizard at EnteringContact. Submit runs without the wizard lock held; other
// transitions are rejected until it returns.
func (w *Wizard) SubmitContactWith(ctx context.Context, form ContactForm, submitter Submitter) (c Confirmation, err error) {
	defer w.observe("submit_contact", &err)

	w.mu.Lock()
	if err := w.busyLocked(); err != nil {
		w.mu.Unlock()
		return Confirmation{}, err
	}
	if w.step != StepEnterContact {
		w.mu.Unlock()
		return Confirmation{}, fmt.Errorf("%w: submit contact from %s", ErrInvalidTransition, w.step)
	}
	if w.date.IsZero() || w.slot == nil {
		w.mu.Unlock()
		return Confirmation{}, fmt.Errorf("%w: date and slot must be selected", ErrInvalidTransition)
	}
	if err := form.Validate(); err != nil {
		w.mu.Unlock()
		return Confirmation{}, err
	}
	normalized := form.Normalize()
	confirmedAt := w.now().UTC()
	c = w.confirmationLocked(normalized, confirmedAt)
	w.inFlight = "submit contact"
	w.mu.Unlock()

	var submitErr error
	if submitter != nil {
		submitErr = submitter.Submit(ctx, c)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = ""
	if submitErr != nil {
		return Confirmation{}, submitErr
	}
	if w.step != StepEnterContact {
		return Confirmation{}, fmt.Errorf("%w: submit contact from %s", ErrInvalidTransition, w.step)
	}
	w.contact = &normalized
	w.confirmedAt = confirmedAt
	w.advance(StepConfirmed)
	return c, nil
}

// Restart moves Confirmed → SelectingDate and clears every selection.
func (w *Wizard) Restart() (err error) {
	defer w.observe("restart", &err)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.busyLocked(); err != nil {
		return err
	}
	if w.step != StepConfirmed {
		return fmt.Errorf("%w: restart from %s", ErrInvalidTransition, w.step)
	}
	w.date = Date{}
	w.slots = nil
	w.slot = nil
	w.contact = nil
	w.confirmedAt = time.Time{}
	w.advance(StepSelectDate)
	return nil
}

// Confirmation returns the final view; ok is false before the Confirmed step.
func (w *Wizard) Confirmation() (Confirmation, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepConfirmed || w.contact == nil {
		return Confirmation{}, false
	}
	return w.confirmationLocked(*w.contact, w.confirmedAt), true
}

// Slots returns the slots fetched for the selected date.
func (w *Wizard) Slots() []Slot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Slot(nil), w.slots...)
}

// Snapshot copies the current state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		ID:        w.id,
		Step:      w.step,
		State:     w.step.String(),
		UpdatedAt: w.updatedAt,
	}
	if !w.date.IsZero() {
		d := w.date
		s.SelectedDate = &d
	}
	if w.slot != nil {
		slot := *w.slot
		s.SelectedSlot = &slot
	}
	if w.contact != nil {
		contact := *w.contact
		s.Contact = &contact
	}
	return s
}

func (w *Wizard) confirmationLocked(form ContactForm, at time.Time) Confirmation {
	return Confirmation{
		WizardID:       w.id,
		Date:           w.date,
		FormattedDate:  w.date.Long(),
		Time:           w.slot.Time,
		SlotID:         w.slot.ID,
		CounselorName:  w.slot.CounselorName,
		Specialization: w.slot.Specialization,
		Contact:        form,
		ConfirmedAt:    at,
	}
}

func (w *Wizard) busyLocked() error {
	if w.inFlight != "" {
		return fmt.Errorf("%w: %s in progress", ErrInvalidTransition, w.inFlight)
	}
	return nil
}

func (w *Wizard) advance(step Step) {
	w.step = step
	w.updatedAt = w.now().UTC()
}

func (w *Wizard) observe(op string, errp *error) {
	if w.observer == nil {
		return
	}
	var err error
	if errp != nil {
		err = *errp
	}
	w.observer.ObserveTransition(op, err)
}

func containsDate(dates []Date, d Date) bool {
	for _, candidate := range dates {
		if candidate == d {
			return true
		}
	}
	return false
}

func slotIndex(slots []Slot, id string) int {
	for i := range slots {
		if slots[i].ID == id {
			return i
		}
	}
	return -1
}

func refreshSlot(slots []Slot, id string) *Slot {
	idx := slotIndex(slots, id)
	if idx < 0 || !slots[idx].Available {
		return nil
	}
	s := slots[idx]
	return &s
}

// IsRejection reports whether err is a precondition rejection rather than a
// collaborator failure.
func IsRejection(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrDateNotOffered),
		errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrSlotUnavailable),
		errors.Is(err, ErrContactIncomplete),
		errors.Is(err, ErrInvalidContact):
		return true
	}
	return false
}
