package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/mindfulu-platform/internal/booking"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// Service sends student-facing notifications.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service. A nil sender disables email.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger.Component("notify")}
}

// SendBookingConfirmation emails the student a summary of a confirmed session.
func (s *Service) SendBookingConfirmation(ctx context.Context, c booking.Confirmation) error {
	if s == nil || s.email == nil {
		return nil
	}
	if strings.TrimSpace(c.Contact.Email) == "" {
		return fmt.Errorf("notify: confirmation for wizard %s has no email", c.WizardID)
	}
	if err := s.email.Send(ctx, ConfirmationEmail(c)); err != nil {
		return fmt.Errorf("notify: send booking confirmation: %w", err)
	}
	s.logger.Info("booking confirmation sent", "wizard_id", c.WizardID, "slot_id", c.SlotID)
	return nil
}

// ConfirmationEmail renders the confirmation message.
func ConfirmationEmail(c booking.Confirmation) EmailMessage {
	subject := fmt.Sprintf("Your counseling session on %s at %s", c.Date.Short(), c.Time)

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", c.Contact.Name)
	fmt.Fprintf(&body, "Your counseling session is confirmed.\n\n")
	fmt.Fprintf(&body, "Date: %s\n", c.FormattedDate)
	fmt.Fprintf(&body, "Time: %s\n", c.Time)
	fmt.Fprintf(&body, "Counselor: %s (%s)\n", c.CounselorName, c.Specialization)
	body.WriteString("\nIf you need to reschedule or are in crisis before your session, contact the counseling center right away.\n")

	var htmlBody strings.Builder
	fmt.Fprintf(&htmlBody, "<p>Hi %s,</p>", html.EscapeString(c.Contact.Name))
	htmlBody.WriteString("<p>Your counseling session is confirmed.</p><ul>")
	fmt.Fprintf(&htmlBody, "<li><strong>Date:</strong> %s</li>", html.EscapeString(c.FormattedDate))
	fmt.Fprintf(&htmlBody, "<li><strong>Time:</strong> %s</li>", html.EscapeString(c.Time))
	fmt.Fprintf(&htmlBody, "<li><strong>Counselor:</strong> %s (%s)</li>", html.EscapeString(c.CounselorName), html.EscapeString(c.Specialization))
	htmlBody.WriteString("</ul><p>If you need to reschedule or are in crisis before your session, contact the counseling center right away.</p>")

	return EmailMessage{
		To:       c.Contact.Email,
		ToName:   c.Contact.Name,
		Subject:  subject,
		Body:     body.String(),
		HTML:     htmlBody.String(),
		Category: "booking-confirmation",
	}
}
