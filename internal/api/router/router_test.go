package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
	"github.com/wolfman30/mindfulu-platform/internal/community"
	"github.com/wolfman30/mindfulu-platform/internal/dashboard"
	httpmiddleware "github.com/wolfman30/mindfulu-platform/internal/http/middleware"
	"github.com/wolfman30/mindfulu-platform/internal/identity"
	"github.com/wolfman30/mindfulu-platform/internal/resources"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	logger := logging.New("error")
	provider := booking.NewMockProvider(time.UTC, 7)
	registry := booking.NewRegistry(provider, nil)
	board := community.NewBoard(community.NewMemoryStore())

	cfg := &Config{
		Logger:           logger,
		Issuer:           identity.NewIssuer("router-test-secret", time.Hour),
		BookingHandler:   booking.NewHandler(registry, provider, nil, logger),
		ResourcesHandler: resources.NewHandler(resources.NewCatalog()),
		CommunityHandler: community.NewHandler(board, logger),
		DashboardHandler: dashboard.NewHandler(dashboard.Sources{Wizards: registry}, logger),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, role string) string {
	t.Helper()
	rec := do(h, http.MethodPost, "/auth/login", "", `{"email":"Sam@Campus.edu","password":"pw","role":"`+role+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRouterHealthEndpoint(t *testing.T) {
	rec := do(newTestRouter(t, nil), http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestRouterReadiness(t *testing.T) {
	h := newTestRouter(t, func(c *Config) {
		c.Ready = func(*http.Request) error { return errors.New("redis: connection refused") }
	})
	rec := do(h, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = do(newTestRouter(t, nil), http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterMountsMetrics(t *testing.T) {
	rec := do(newTestRouter(t, nil), http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestRouterMountsFeatureRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/booking/steps", "", "").Code)
	assert.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/booking/wizards", "", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/resources", "", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/community/moods", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/chat/sessions/x/messages", "", "").Code,
		"chat is not mounted without a handler")
}

func TestRouterAdminRequiresAdminRole(t *testing.T) {
	h := newTestRouter(t, nil)

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/admin/overview", "", "").Code)

	student := login(t, h, "student")
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/admin/overview", student, "").Code)

	admin := login(t, h, "admin")
	rec := do(h, http.MethodGet, "/admin/overview", admin, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "counselor_status")
}

func TestRouterNavigationFollowsRole(t *testing.T) {
	h := newTestRouter(t, nil)

	anon := do(h, http.MethodGet, "/navigation", "", "")
	require.Equal(t, http.StatusOK, anon.Code)
	assert.Contains(t, anon.Body.String(), `"role":"student"`)

	admin := do(h, http.MethodGet, "/navigation", login(t, h, "admin"), "")
	assert.Contains(t, admin.Body.String(), `"role":"admin"`)
	assert.Contains(t, admin.Body.String(), "/admin/community")

	me := do(h, http.MethodGet, "/auth/me", login(t, h, "student"), "")
	assert.Contains(t, me.Body.String(), "sam@campus.edu")
}

func TestRouterRejectsInvalidToken(t *testing.T) {
	rec := do(newTestRouter(t, nil), http.MethodGet, "/resources", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterRateLimitSparesProbes(t *testing.T) {
	h := newTestRouter(t, func(c *Config) {
		c.RateLimiter = httpmiddleware.NewRateLimiter(0, 1)
	})

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/resources", "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/resources", "", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "", "").Code)
}
