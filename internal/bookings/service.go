package bookings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/mindfulu-platform/internal/booking"
	"github.com/wolfman30/mindfulu-platform/internal/identity"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var bookingsTracer = otel.Tracer("mindfulu.internal.bookings")

const notifyTimeout = 30 * time.Second

// ConfirmationNotifier tells the student their session is booked.
type ConfirmationNotifier interface {
	SendBookingConfirmation(ctx context.Context, c booking.Confirmation) error
}

// Service records wizard confirmations. It implements booking.Submitter.
type Service struct {
	store    Store
	notifier ConfirmationNotifier
	logger   *logging.Logger
	wg       sync.WaitGroup
}

// NewService constructs a bookings service. notifier may be nil.
func NewService(store Store, notifier ConfirmationNotifier, logger *logging.Logger) *Service {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, notifier: notifier, logger: logger.Component("bookings")}
}

// Submit persists the confirmation and returns. The student is emailed in the
// background; email failures are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, c booking.Confirmation) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("mindfulu.wizard_id", c.WizardID),
		attribute.String("mindfulu.slot_id", c.SlotID),
		attribute.String("mindfulu.urgency", string(c.Contact.Urgency)),
	)

	var studentEmail string
	if id, ok := identity.FromContext(ctx); ok {
		studentEmail = id.Email
	}
	rec := RecordFromConfirmation(c, studentEmail)
	if err := s.store.Insert(ctx, rec); err != nil {
		span.RecordError(err)
		s.logger.Error("booking insert failed", "wizard_id", c.WizardID, "error", err)
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	s.logger.Info("booking confirmed", "wizard_id", c.WizardID, "booking_id", rec.ID, "date", c.Date.String(), "slot_id", c.SlotID)

	if s.notifier != nil {
		s.wg.Add(1)
		go s.notify(context.WithoutCancel(ctx), rec.ID, c)
	}
	return nil
}

// Wait blocks until every confirmation email started by Submit has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) notify(ctx context.Context, bookingID string, c booking.Confirmation) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	ctx, span := bookingsTracer.Start(ctx, "bookings.notify")
	defer span.End()

	if err := s.notifier.SendBookingConfirmation(ctx, c); err != nil {
		span.RecordError(err)
		s.logger.Warn("booking confirmation email failed", "booking_id", bookingID, "error", err)
	}
}
