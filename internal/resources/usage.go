package resources

import (
	"sort"
	"sync"
)

// Usage counts resource detail views since start-up. It is safe for
// concurrent use.
type Usage struct {
	mu    sync.Mutex
	views map[string]int
}

func NewUsage() *Usage {
	return &Usage{views: make(map[string]int)}
}

// RecordView counts one view of the resource with id.
func (u *Usage) RecordView(id string) {
	u.mu.Lock()
	u.views[id]++
	u.mu.Unlock()
}

// ResourceViews is one row of the popular resources table.
type ResourceViews struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  Type   `json:"type"`
	Topic string `json:"topic"`
	Views int    `json:"views"`
}

// GroupViews totals views for one topic or media type.
type GroupViews struct {
	Name       string `json:"name"`
	Views      int    `json:"views"`
	Percentage int    `json:"percentage"`
}

// UsageReport is the admin analytics view of the library.
type UsageReport struct {
	TotalViews int             `json:"total_views"`
	Popular    []ResourceViews `json:"popular"`
	ByTopic    []GroupViews    `json:"by_topic"`
	ByType     []GroupViews    `json:"by_type"`
}

// Report ranks the catalog by views. Unviewed resources are listed last in
// catalog order; limit caps Popular when positive.
func (u *Usage) Report(c *Catalog, limit int) UsageReport {
	u.mu.Lock()
	views := make(map[string]int, len(u.views))
	for id, n := range u.views {
		views[id] = n
	}
	u.mu.Unlock()

	var (
		report  UsageReport
		byTopic = map[string]int{}
		byType  = map[string]int{}
		topics  []string
	)
	for _, r := range c.List(Filter{}) {
		n := views[r.ID]
		report.TotalViews += n
		report.Popular = append(report.Popular, ResourceViews{ID: r.ID, Title: r.Title, Type: r.Type, Topic: r.Topic, Views: n})
		if _, ok := byTopic[r.Topic]; !ok {
			topics = append(topics, r.Topic)
		}
		byTopic[r.Topic] += n
		byType[string(r.Type)] += n
	}
	sort.SliceStable(report.Popular, func(i, j int) bool { return report.Popular[i].Views > report.Popular[j].Views })
	if limit > 0 && len(report.Popular) > limit {
		report.Popular = report.Popular[:limit]
	}

	types := make([]string, 0, len(Types()))
	for _, t := range Types() {
		types = append(types, string(t))
	}
	report.ByTopic = groups(topics, byTopic, report.TotalViews)
	report.ByType = groups(types, byType, report.TotalViews)
	return report
}

// groups orders names by views, keeping the given order on ties.
func groups(names []string, counts map[string]int, total int) []GroupViews {
	out := make([]GroupViews, 0, len(names))
	for _, name := range names {
		g := GroupViews{Name: name, Views: counts[name]}
		if total > 0 {
			g.Percentage = g.Views * 100 / total
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	return out
}
