package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/mindfulu-platform/internal/config"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		LogLevel:              "error",
		AuthJWTSecret:         "main-test-secret",
		AuthTokenTTL:          time.Hour,
		ChatReplyProvider:     "canned",
		ChatReplyMinDelay:     10 * time.Millisecond,
		ChatReplyMaxDelay:     20 * time.Millisecond,
		ChatSessionIdleTTL:    time.Minute,
		BookingDateWindowDays: 7,
		WizardIdleTTL:         time.Minute,
	}
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSetupMetricsExposesRuntimeCollectors(t *testing.T) {
	_, handler := setupMetrics()
	rec := serve(handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestBuildApplicationInMemory(t *testing.T) {
	app, err := buildApplication(context.Background(), testConfig(), logging.New("error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.close() })

	assert.Equal(t, http.StatusOK, serve(app.handler, http.MethodGet, "/ready", "").Code)

	rec := serve(app.handler, http.MethodPost, "/chat/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, app.chats.Len())

	rec = serve(app.handler, http.MethodGet, "/community/moods", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hopeful", "empty board is seeded")

	metricsBody := serve(app.handler, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, metricsBody, "mindfulu_chat_messages_total")
}

func TestBuildApplicationWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	app, err := buildApplication(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.close() })
	require.NotNil(t, app.redis)

	seeded, err := mr.List("community:moods")
	require.NoError(t, err)
	require.NotEmpty(t, seeded, "seed lands in redis")

	// A second build against the same redis does not reseed.
	again, err := buildApplication(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = again.close() })

	after, err := mr.List("community:moods")
	require.NoError(t, err)
	assert.Len(t, after, len(seeded))

	mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, serve(app.handler, http.MethodGet, "/ready", "").Code)
}

func TestBuildApplicationRejectsUnknownReplyProvider(t *testing.T) {
	cfg := testConfig()
	cfg.ChatReplyProvider = "oracle"
	_, err := buildApplication(context.Background(), cfg, logging.New("error"))
	assert.Error(t, err)
}

func TestSweepEvictsIdleState(t *testing.T) {
	cfg := testConfig()
	cfg.WizardIdleTTL = time.Nanosecond
	cfg.ChatSessionIdleTTL = time.Nanosecond
	app, err := buildApplication(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.close() })

	app.wizards.Create()
	app.chats.Create()
	time.Sleep(5 * time.Millisecond)
	app.sweep()

	assert.Equal(t, 0, app.wizards.Len())
	assert.Equal(t, 0, app.chats.Len())
}
