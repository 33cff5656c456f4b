package booking

import (
	"context"
	"time"
)

// MaxOfferedDates caps how many upcoming days the date picker offers.
const MaxOfferedDates = 12

// referenceSlots is the daily counselor schedule used when no real calendar
// backend is configured.
var referenceSlots = []Slot{
	{ID: "1", Time: "9:00 AM", Available: true, CounselorName: "Dr. Sarah Chen", Specialization: "Anxiety & Depression"},
	{ID: "2", Time: "10:30 AM", Available: false, CounselorName: "Dr. Michael Rodriguez", Specialization: "Academic Stress"},
	{ID: "3", Time: "12:00 PM", Available: true, CounselorName: "Dr. Emily Johnson", Specialization: "Relationship Issues"},
	{ID: "4", Time: "2:00 PM", Available: true, CounselorName: "Dr. Sarah Chen", Specialization: "Anxiety & Depression"},
	{ID: "5", Time: "3:30 PM", Available: true, CounselorName: "Dr. Alex Thompson", Specialization: "Life Transitions"},
	{ID: "6", Time: "5:00 PM", Available: false, CounselorName: "Dr. Emily Johnson", Specialization: "Relationship Issues"},
}

// ReferenceSlots returns a copy of the built-in daily schedule.
func ReferenceSlots() []Slot {
	return append([]Slot(nil), referenceSlots...)
}

// MockProvider offers the days following today and the same schedule on each.
type MockProvider struct {
	loc   *time.Location
	days  int
	now   func() time.Time
	slots []Slot
}

// MockOption customizes a MockProvider.
type MockOption func(*MockProvider)

// WithProviderClock overrides time.Now for the provider.
func WithProviderClock(now func() time.Time) MockOption {
	return func(p *MockProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithSlots replaces the daily schedule.
func WithSlots(slots []Slot) MockOption {
	return func(p *MockProvider) { p.slots = append([]Slot(nil), slots...) }
}

// NewMockProvider builds a provider over a window of days starting tomorrow in loc.
func NewMockProvider(loc *time.Location, days int, opts ...MockOption) *MockProvider {
	if loc == nil {
		loc = time.UTC
	}
	if days <= 0 {
		days = 14
	}
	p := &MockProvider{
		loc:   loc,
		days:  days,
		now:   time.Now,
		slots: ReferenceSlots(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dates returns up to MaxOfferedDates days, starting tomorrow.
func (p *MockProvider) Dates(ctx context.Context) ([]Date, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := p.days
	if n > MaxOfferedDates {
		n = MaxOfferedDates
	}
	today := p.now().In(p.loc)
	out := make([]Date, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, DateOf(today.AddDate(0, 0, i)))
	}
	return out, nil
}

// Slots returns the daily schedule for any date.
func (p *MockProvider) Slots(ctx context.Context, _ Date) ([]Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Slot(nil), p.slots...), nil
}
