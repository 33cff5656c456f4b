// Package resources serves the wellness resource library.
package resources

import (
	"errors"
	"strings"
)

// Type is the media kind of a resource.
type Type string

const (
	TypeVideo    Type = "video"
	TypeArticle  Type = "article"
	TypeAudio    Type = "audio"
	TypeExercise Type = "exercise"
)

// Resource is one library entry.
type Resource struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        Type    `json:"type"`
	Topic       string  `json:"topic"`
	Duration    string  `json:"duration"`
	Rating      float64 `json:"rating"`
	Thumbnail   string  `json:"thumbnail"`
	Featured    bool    `json:"featured"`
}

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("resources: not found")

// All matches any type or topic in a Filter.
const All = "all"

var catalog = []Resource{
	{ID: "1", Title: "Understanding Anxiety in College", Description: "Learn about common anxiety symptoms and practical coping strategies specifically designed for college students.", Type: TypeVideo, Topic: "anxiety", Duration: "12 min", Rating: 4.8, Thumbnail: "blue", Featured: true},
	{ID: "2", Title: "5-Minute Breathing Exercise", Description: "A quick guided breathing exercise to help reduce stress and promote relaxation between classes.", Type: TypeAudio, Topic: "stress", Duration: "5 min", Rating: 4.9, Thumbnail: "green"},
	{ID: "3", Title: "Sleep Hygiene for Students", Description: "Essential tips for improving sleep quality and establishing healthy sleep habits during college.", Type: TypeArticle, Topic: "sleep", Duration: "8 min read", Rating: 4.7, Thumbnail: "purple", Featured: true},
	{ID: "4", Title: "Progressive Muscle Relaxation", Description: "Learn this evidence-based technique for reducing physical tension and promoting deep relaxation.", Type: TypeExercise, Topic: "relaxation", Duration: "15 min", Rating: 4.6, Thumbnail: "orange"},
	{ID: "5", Title: "Managing Academic Pressure", Description: "Strategies for dealing with academic stress, perfectionism, and maintaining work-life balance.", Type: TypeArticle, Topic: "stress", Duration: "10 min read", Rating: 4.8, Thumbnail: "red"},
	{ID: "6", Title: "Mindful Study Breaks", Description: "Short mindfulness exercises you can do between study sessions to refresh your mind and reduce burnout.", Type: TypeVideo, Topic: "mindfulness", Duration: "7 min", Rating: 4.5, Thumbnail: "teal"},
}

// Filter narrows the catalog. Empty fields and All match everything.
type Filter struct {
	Query string
	Type  string
	Topic string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && matchesAll(f.Type) && matchesAll(f.Topic)
}

// Matches applies the filter to one resource. Query is a case-insensitive
// substring match on title or description.
func (f Filter) Matches(r Resource) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(r.Title), q) && !strings.Contains(strings.ToLower(r.Description), q) {
			return false
		}
	}
	if !matchesAll(f.Type) && !strings.EqualFold(string(r.Type), strings.TrimSpace(f.Type)) {
		return false
	}
	if !matchesAll(f.Topic) && !strings.EqualFold(r.Topic, strings.TrimSpace(f.Topic)) {
		return false
	}
	return true
}

func matchesAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Catalog is a read-only resource library.
type Catalog struct {
	items []Resource
}

// NewCatalog uses items, or the built-in library when none are given.
func NewCatalog(items ...Resource) *Catalog {
	if len(items) == 0 {
		items = catalog
	}
	return &Catalog{items: append([]Resource(nil), items...)}
}

// List returns the resources matching f in catalog order.
func (c *Catalog) List(f Filter) []Resource {
	out := make([]Resource, 0, len(c.items))
	for _, r := range c.items {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Featured returns the highlighted resources.
func (c *Catalog) Featured() []Resource {
	var out []Resource
	for _, r := range c.items {
		if r.Featured {
			out = append(out, r)
		}
	}
	return out
}

// Get looks a resource up by id.
func (c *Catalog) Get(id string) (Resource, error) {
	for _, r := range c.items {
		if r.ID == id {
			return r, nil
		}
	}
	return Resource{}, ErrNotFound
}

// Topics returns the distinct topics in first-seen order.
func (c *Catalog) Topics() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.items {
		if !seen[r.Topic] {
			seen[r.Topic] = true
			out = append(out, r.Topic)
		}
	}
	return out
}

// Types returns the media kinds offered by the picker.
func Types() []Type {
	return []Type{TypeVideo, TypeArticle, TypeAudio, TypeExercise}
}
