package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
)

func sampleConfirmation() booking.Confirmation {
	date := booking.Date{Year: 2026, Month: time.October, Day: 20}
	return booking.Confirmation{
		WizardID:       "wiz-1",
		Date:           date,
		FormattedDate:  date.Long(),
		Time:           "10:00 AM",
		SlotID:         "3",
		CounselorName:  "Dr. Emily Rodriguez",
		Specialization: "Depression & Mood",
		Contact:        booking.ContactForm{Name: "Sam <Lee>", Email: "sam@example.edu"},
		ConfirmedAt:    time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC),
	}
}

func TestConfirmationEmail(t *testing.T) {
	msg := ConfirmationEmail(sampleConfirmation())

	assert.Equal(t, "sam@example.edu", msg.To)
	assert.Equal(t, "Your counseling session on Oct 20 at 10:00 AM", msg.Subject)
	assert.Contains(t, msg.Body, "Date: Tuesday, October 20, 2026")
	assert.Contains(t, msg.Body, "Counselor: Dr. Emily Rodriguez (Depression & Mood)")
	assert.Contains(t, msg.HTML, "Sam &lt;Lee&gt;")
	assert.Contains(t, msg.HTML, "Depression &amp; Mood")
}

func TestSendBookingConfirmation(t *testing.T) {
	stub := NewStubEmailSender(nil)
	svc := NewService(stub, nil)

	require.NoError(t, svc.SendBookingConfirmation(context.Background(), sampleConfirmation()))
	require.Len(t, stub.Sent(), 1)
	assert.Equal(t, "sam@example.edu", stub.Sent()[0].To)
}

type failingSender struct{ err error }

func (f failingSender) Send(context.Context, EmailMessage) error { return f.err }

func TestSendBookingConfirmationErrors(t *testing.T) {
	boom := errors.New("smtp down")
	svc := NewService(failingSender{err: boom}, nil)
	require.ErrorIs(t, svc.SendBookingConfirmation(context.Background(), sampleConfirmation()), boom)

	missing := sampleConfirmation()
	missing.Contact.Email = ""
	require.Error(t, svc.SendBookingConfirmation(context.Background(), missing))

	require.NoError(t, NewService(nil, nil).SendBookingConfirmation(context.Background(), sampleConfirmation()))
}
