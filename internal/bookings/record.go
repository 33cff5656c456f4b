// Package bookings persists confirmed counseling sessions.
package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
)

// ErrSubmissionFailed wraps any failure to record a confirmation.
var ErrSubmissionFailed = errors.New("bookings: submission failed")

// Record is one confirmed session.
type Record struct {
	ID                 string                    `json:"id"`
	WizardID           string                    `json:"wizard_id"`
	StudentEmail       string                    `json:"student_email,omitempty"`
	SessionDate        booking.Date              `json:"session_date"`
	SlotID             string                    `json:"slot_id"`
	SlotTime           string                    `json:"slot_time"`
	CounselorName      string                    `json:"counselor_name"`
	Specialization     string                    `json:"specialization"`
	ContactName        string                    `json:"contact_name"`
	ContactEmail       string                    `json:"contact_email"`
	ContactPhone       string                    `json:"contact_phone,omitempty"`
	Reason             string                    `json:"reason,omitempty"`
	Urgency            booking.Urgency           `json:"urgency,omitempty"`
	PreviousCounseling booking.CounselingHistory `json:"previous_counseling,omitempty"`
	ConfirmedAt        time.Time                 `json:"confirmed_at"`
}

// RecordFromConfirmation builds a record with a fresh id.
func RecordFromConfirmation(c booking.Confirmation, studentEmail string) Record {
	return Record{
		ID:                 uuid.NewString(),
		WizardID:           c.WizardID,
		StudentEmail:       studentEmail,
		SessionDate:        c.Date,
		SlotID:             c.SlotID,
		SlotTime:           c.Time,
		CounselorName:      c.CounselorName,
		Specialization:     c.Specialization,
		ContactName:        c.Contact.Name,
		ContactEmail:       c.Contact.Email,
		ContactPhone:       c.Contact.Phone,
		Reason:             c.Contact.Reason,
		Urgency:            c.Contact.Urgency,
		PreviousCounseling: c.Contact.PreviousCounseling,
		ConfirmedAt:        c.ConfirmedAt.UTC(),
	}
}

// UnspecifiedUrgency is the CountByUrgency key for forms that skipped urgency.
const UnspecifiedUrgency = "unspecified"

// Store is implemented by Repository and MemoryRepository.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	CountByUrgency(ctx context.Context) (map[string]int, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}
