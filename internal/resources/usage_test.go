package resources

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageReportRanksByViews(t *testing.T) {
	u := NewUsage()
	for _, id := range []string{"3", "3", "3", "2", "5", "5"} {
		u.RecordView(id)
	}

	report := u.Report(NewCatalog(), 3)
	assert.Equal(t, 6, report.TotalViews)
	require.Len(t, report.Popular, 3)
	assert.Equal(t, "3", report.Popular[0].ID)
	assert.Equal(t, "Sleep Hygiene for Students", report.Popular[0].Title)
	assert.Equal(t, 3, report.Popular[0].Views)
	assert.Equal(t, "5", report.Popular[1].ID)
	assert.Equal(t, "2", report.Popular[2].ID)

	require.NotEmpty(t, report.ByTopic)
	assert.Equal(t, GroupViews{Name: "stress", Views: 3, Percentage: 50}, report.ByTopic[0])
	assert.Equal(t, GroupViews{Name: "sleep", Views: 3, Percentage: 50}, report.ByTopic[1])
	assert.Equal(t, GroupViews{Name: "article", Views: 5, Percentage: 83}, report.ByType[0])
	assert.Len(t, report.ByType, len(Types()))
}

func TestUsageReportWithoutViews(t *testing.T) {
	report := NewUsage().Report(NewCatalog(), 0)
	assert.Zero(t, report.TotalViews)
	require.Len(t, report.Popular, 6)
	assert.Equal(t, "1", report.Popular[0].ID, "ties keep catalog order")
	for _, g := range report.ByTopic {
		assert.Zero(t, g.Percentage)
	}
}

func TestHandlerCountsDetailViews(t *testing.T) {
	h := NewHandler(nil)
	routes := h.Routes()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/4", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	missing := httptest.NewRecorder()
	routes.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/99", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
	listing := httptest.NewRecorder()
	routes.ServeHTTP(listing, httptest.NewRequest(http.MethodGet, "/", nil))

	report := h.UsageReport(1)
	assert.Equal(t, 10, report.TotalViews)
	require.Len(t, report.Popular, 1)
	assert.Equal(t, ResourceViews{ID: "4", Title: "Progressive Muscle Relaxation", Type: TypeExercise, Topic: "relaxation", Views: 10}, report.Popular[0])

	out, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"total_views":10`)
}
