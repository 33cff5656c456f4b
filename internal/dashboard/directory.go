// Package dashboard backs the admin console.
package dashboard

import "strings"

// CounselorStatus is a counselor's current availability.
type CounselorStatus string

const (
	StatusAvailable CounselorStatus = "Available"
	StatusInSession CounselorStatus = "In Session"
	StatusOffline   CounselorStatus = "Offline"
)

// SlotLoad is today's booked versus open slot count.
type SlotLoad struct {
	Booked    int `json:"booked"`
	Available int `json:"available"`
}

// Counselor is one directory entry.
type Counselor struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Expertise     []string        `json:"expertise"`
	Status        CounselorStatus `json:"status"`
	Location      string          `json:"location"`
	TodaySlots    SlotLoad        `json:"today_slots"`
	NextAvailable string          `json:"next_available"`
}

var counselors = []Counselor{
	{ID: 1, Name: "Dr. Sarah Johnson", Email: "s.johnson@university.edu", Phone: "(555) 123-4567", Expertise: []string{"Anxiety", "Depression", "Academic Stress"}, Status: StatusAvailable, Location: "Psychology Building, Room 201", TodaySlots: SlotLoad{Booked: 6, Available: 2}, NextAvailable: "2:00 PM"},
	{ID: 2, Name: "Dr. Michael Chen", Email: "m.chen@university.edu", Phone: "(555) 234-5678", Expertise: []string{"Relationships", "Social Anxiety", "Self-Esteem"}, Status: StatusInSession, Location: "Counseling Center, Room 105", TodaySlots: SlotLoad{Booked: 5, Available: 3}, NextAvailable: "3:30 PM"},
	{ID: 3, Name: "Dr. Emily Rodriguez", Email: "e.rodriguez@university.edu", Phone: "(555) 345-6789", Expertise: []string{"Trauma", "PTSD", "Crisis Intervention"}, Status: StatusAvailable, Location: "Health Center, Room 302", TodaySlots: SlotLoad{Booked: 4, Available: 4}, NextAvailable: "1:15 PM"},
	{ID: 4, Name: "Dr. James Wilson", Email: "j.wilson@university.edu", Phone: "(555) 456-7890", Expertise: []string{"ADHD", "Learning Disabilities", "Time Management"}, Status: StatusOffline, Location: "Student Services, Room 150", TodaySlots: SlotLoad{Booked: 3, Available: 5}, NextAvailable: "Tomorrow 9:00 AM"},
}

// Directory is the counselor roster.
type Directory struct {
	counselors []Counselor
}

// NewDirectory uses list, or the built-in roster when empty.
func NewDirectory(list ...Counselor) *Directory {
	if len(list) == 0 {
		list = counselors
	}
	return &Directory{counselors: append([]Counselor(nil), list...)}
}

// Search matches term case-insensitively against name, email and expertise.
// A blank term returns everyone.
func (d *Directory) Search(term string) []Counselor {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Counselor, 0, len(d.counselors))
	for _, c := range d.counselors {
		if term == "" || matches(c, term) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c Counselor, term string) bool {
	if strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(strings.ToLower(c.Email), term) {
		return true
	}
	for _, e := range c.Expertise {
		if strings.Contains(strings.ToLower(e), term) {
			return true
		}
	}
	return false
}

// StatusCount is one slice of the availability breakdown.
type StatusCount struct {
	Status CounselorStatus `json:"status"`
	Count  int             `json:"count"`
}

// StatusBreakdown counts counselors by status in a fixed order.
func (d *Directory) StatusBreakdown() []StatusCount {
	counts := map[CounselorStatus]int{}
	for _, c := range d.counselors {
		counts[c.Status]++
	}
	out := make([]StatusCount, 0, 3)
	for _, s := range []CounselorStatus{StatusAvailable, StatusInSession, StatusOffline} {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

// OpenSlotsToday sums the remaining slots across the roster.
func (d *Directory) OpenSlotsToday() int {
	n := 0
	for _, c := range d.counselors {
		n += c.TodaySlots.Available
	}
	return n
}

// TrendPoint is one month of concern volume.
type TrendPoint struct {
	Month      string `json:"month"`
	Anxiety    int    `json:"anxiety"`
	Depression int    `json:"depression"`
	Stress     int    `json:"stress"`
	Sleep      int    `json:"sleep"`
}

// Trends is the historical concern series shown on the dashboard.
func Trends() []TrendPoint {
	return []TrendPoint{
		{Month: "Jan", Anxiety: 45, Depression: 32, Stress: 67, Sleep: 23},
		{Month: "Feb", Anxiety: 52, Depression: 28, Stress: 71, Sleep: 31},
		{Month: "Mar", Anxiety: 48, Depression: 35, Stress: 69, Sleep: 28},
		{Month: "Apr", Anxiety: 61, Depression: 42, Stress: 78, Sleep: 35},
		{Month: "May", Anxiety: 55, Depression: 38, Stress: 73, Sleep: 32},
		{Month: "Jun", Anxiety: 49, Depression: 33, Stress: 66, Sleep: 29},
	}
}
