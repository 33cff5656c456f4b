// Package booking implements the counseling appointment wizard: a strictly
// ordered date → slot → contact → confirmation flow over an external slot
// provider.
package booking

import (
	"fmt"
	"strings"
	"time"
)

// Step identifies the wizard position. Values map 1:1 to the four screens.
type Step int

const (
	StepSelectDate Step = iota + 1
	StepSelectSlot
	StepEnterContact
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepSelectDate:
		return "selecting_date"
	case StepSelectSlot:
		return "selecting_slot"
	case StepEnterContact:
		return "entering_contact"
	case StepConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// StepInfo is the progress header shown above each screen.
type StepInfo struct {
	Step        Step   `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Steps returns the fixed progress labels in order.
func Steps() []StepInfo {
	return []StepInfo{
		{Step: StepSelectDate, Title: "Select Date", Description: "Choose your preferred appointment date"},
		{Step: StepSelectSlot, Title: "Choose Time", Description: "Pick an available time slot"},
		{Step: StepEnterContact, Title: "Your Details", Description: "Provide contact information"},
		{Step: StepConfirmed, Title: "Confirmation", Description: "Review and confirm your booking"},
	}
}

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("booking: parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.In(time.UTC).Format(dateLayout)
}

// Long renders e.g. "Monday, January 2, 2006".
func (d Date) Long() string {
	if d.IsZero() {
		return ""
	}
	return d.In(time.UTC).Format("Monday, January 2, 2006")
}

// Short renders e.g. "Jan 2".
func (d Date) Short() string {
	return d.In(time.UTC).Format("Jan 2")
}

// WeekdayShort renders e.g. "Mon".
func (d Date) WeekdayShort() string {
	return d.In(time.UTC).Format("Mon")
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Slot is a bookable appointment time with one counselor.
type Slot struct {
	ID             string `json:"id"`
	Time           string `json:"time"`
	Available      bool   `json:"available"`
	CounselorName  string `json:"counselor_name"`
	Specialization string `json:"specialization"`
}

// Urgency is the self-reported urgency on the contact form.
type Urgency string

const (
	UrgencyUnset  Urgency = ""
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyUnset, UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// CounselingHistory is the student's prior counseling experience.
type CounselingHistory string

const (
	HistoryUnset     CounselingHistory = ""
	HistoryNone      CounselingHistory = "none"
	HistorySome      CounselingHistory = "some"
	HistoryExtensive CounselingHistory = "extensive"
)

func (h CounselingHistory) Valid() bool {
	switch h {
	case HistoryUnset, HistoryNone, HistorySome, HistoryExtensive:
		return true
	}
	return false
}

// ContactForm is collected on the third screen. Only Name and Email are required.
type ContactForm struct {
	Name               string            `json:"name"`
	Email              string            `json:"email"`
	Phone              string            `json:"phone,omitempty"`
	Reason             string            `json:"reason,omitempty"`
	Urgency            Urgency           `json:"urgency,omitempty"`
	PreviousCounseling CounselingHistory `json:"previous_counseling,omitempty"`
}

// Normalize trims free-form fields and lower-cases the enumerations.
func (f ContactForm) Normalize() ContactForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Reason = strings.TrimSpace(f.Reason)
	f.Urgency = Urgency(strings.ToLower(strings.TrimSpace(string(f.Urgency))))
	f.PreviousCounseling = CounselingHistory(strings.ToLower(strings.TrimSpace(string(f.PreviousCounseling))))
	return f
}

// Validate checks presence of name and email and the closed enumerations.
// Email format is not checked here.
func (f ContactForm) Validate() error {
	n := f.Normalize()
	if n.Name == "" || n.Email == "" {
		return ErrContactIncomplete
	}
	if !n.Urgency.Valid() {
		return fmt.Errorf("%w: urgency %q", ErrInvalidContact, f.Urgency)
	}
	if !n.PreviousCounseling.Valid() {
		return fmt.Errorf("%w: previous counseling %q", ErrInvalidContact, f.PreviousCounseling)
	}
	return nil
}
