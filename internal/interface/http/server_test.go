package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspring-hub/skillspring-dashboard/internal/dashboard"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/assistant"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/external/backend"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/messaging"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/scheduler"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/logger"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/retry"
)

// stubFeedClient serves canned feed data for handler tests.
type stubFeedClient struct {
	askErr error
}

func (c *stubFeedClient) FetchLearningPaths(ctx context.Context, token string) ([]*learning.Path, error) {
	p, err := learning.NewPath("Backend Development", "Server-side fundamentals", learning.DifficultyIntermediate)
	if err != nil {
		return nil, err
	}
	return []*learning.Path{p}, nil
}

func (c *stubFeedClient) FetchRecommendations(ctx context.Context, token string) ([]*opportunity.JobRecommendation, error) {
	return []*opportunity.JobRecommendation{
		{ID: "job-1", Title: "Go Developer", Company: "Acme"},
	}, nil
}

func (c *stubFeedClient) FetchStats(ctx context.Context, token string) (shared.DashboardStats, error) {
	return shared.DashboardStats{CareerScore: 91, AverageProgress: 64}, nil
}

func (c *stubFeedClient) FetchOpportunities(ctx context.Context, token string) (opportunity.Snapshot, error) {
	return opportunity.Snapshot{
		Jobs:        []opportunity.LiveOpportunity{{ID: "j1", Title: "Junior Go Engineer"}},
		Hackathons:  []opportunity.LiveOpportunity{{ID: "h1"}, {ID: "h2"}},
		LastUpdated: "2026-08-29T10:00:00Z",
	}, nil
}

func (c *stubFeedClient) Ask(ctx context.Context, token, message string, actx assistant.Context) (string, error) {
	if c.askErr != nil {
		return "", c.askErr
	}
	return "Focus on Go and distributed systems.", nil
}

func testServer(t *testing.T, upstream *httptest.Server) (*Server, *stubFeedClient) {
	t.Helper()

	feed := &stubFeedClient{}
	manager := dashboard.NewManager(dashboard.ManagerConfig{
		Client:    feed,
		Events:    messaging.NewInMemoryEventBus(nil),
		Scheduler: scheduler.NewScheduler(scheduler.DefaultSchedulerConfig()),
	})

	deps := Dependencies{
		Manager: manager,
		Logger:  logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError}),
	}

	if upstream != nil {
		cfg := backend.DefaultClientConfig(upstream.URL)
		cfg.RetryConfig = retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond}
		deps.Backend = backend.NewClient(cfg)
	}

	config := DefaultConfig()
	config.RateLimitPerMinute = 0

	return NewServer(config, deps), feed
}

func doRequest(t *testing.T, srv *Server, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func login(t *testing.T, srv *Server, token string) {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", token, map[string]string{
		"user_id": "u-1",
		"email":   "aizere@skillspring.dev",
		"role":    "student",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRequiresBearerCredential(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.c"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginReturnsPopulatedView(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", "tok-1", map[string]string{
		"user_id": "u-1",
		"email":   "aizere@skillspring.dev",
		"role":    "student",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var view dashboard.View
	decodeData(t, rec, &view)

	assert.Equal(t, "aizere", view.User.DisplayName)
	assert.Len(t, view.LearningPaths, 1)
	assert.Len(t, view.JobRecommendations, 1)
	assert.Equal(t, 91, view.CareerScore)
	assert.Equal(t, 64, view.AverageProgress)
}

func TestDashboardUnknownCredentialRejected(t *testing.T) {
	srv, _ := testServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, srv, http.MethodGet, "/api/dashboard", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, srv, http.MethodGet, "/api/dashboard", "stranger", nil).Code)
}

func TestAddPathAndAdvance(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	rec := doRequest(t, srv, http.MethodPost, "/api/learning/paths", "tok-1", map[string]string{
		"title":       "System Design",
		"description": "Scalable architecture",
		"difficulty":  "Advanced",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID       string `json:"id"`
		Progress int    `json:"progress"`
		Status   string `json:"status"`
	}
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 0, created.Progress)
	assert.Equal(t, "not_started", created.Status)

	rec = doRequest(t, srv, http.MethodPost, "/api/learning/paths/"+created.ID+"/advance", "tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var advanced struct {
		Progress int    `json:"progress"`
		Status   string `json:"status"`
	}
	decodeData(t, rec, &advanced)
	assert.Greater(t, advanced.Progress, 0)
}

func TestAddPathValidation(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	rec := doRequest(t, srv, http.MethodPost, "/api/learning/paths", "tok-1", map[string]string{
		"title": "",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdvanceUnknownPathIsNoOp(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	rec := doRequest(t, srv, http.MethodPost, "/api/learning/paths/missing/advance", "tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	decodeData(t, rec, &payload)
	assert.Equal(t, "no_change", payload["status"])
}

func TestApplyJobIdempotent(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodPost, "/api/jobs/job-1/apply", "tok-1", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodPost, "/api/jobs/job-1/apply", "tok-1", nil).Code)
}

func TestGetOpportunitiesIncludesTotal(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	rec := doRequest(t, srv, http.MethodGet, "/api/opportunities/live", "tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Opportunities opportunity.Snapshot `json:"opportunities"`
		Total         int                  `json:"total"`
	}
	decodeData(t, rec, &payload)
	assert.Equal(t, 3, payload.Total)
	assert.Equal(t, "2026-08-29T10:00:00Z", payload.Opportunities.LastUpdated)
}

func TestAssistantChat(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	rec := doRequest(t, srv, http.MethodPost, "/api/ai/chat/student-assistant", "tok-1", map[string]any{
		"message": "What should I learn next?",
		"context": map[string]string{"role": "student", "profession": "software engineer"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Response string `json:"response"`
		Offline  bool   `json:"offline"`
	}
	decodeData(t, rec, &payload)
	assert.Equal(t, "Focus on Go and distributed systems.", payload.Response)
	assert.False(t, payload.Offline)
}

func TestAssistantChatOfflineFallback(t *testing.T) {
	srv, feed := testServer(t, nil)
	login(t, srv, "tok-1")
	feed.askErr = shared.ErrBackendUnavailable

	rec := doRequest(t, srv, http.MethodPost, "/api/ai/chat/student-assistant", "tok-1", map[string]any{
		"message": "Anything?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Response string `json:"response"`
		Offline  bool   `json:"offline"`
	}
	decodeData(t, rec, &payload)
	assert.Equal(t, assistant.OfflineReply, payload.Response)
	assert.True(t, payload.Offline)
}

func TestAssistantChatEmptyMessageRejected(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	rec := doRequest(t, srv, http.MethodPost, "/api/ai/chat/student-assistant", "tok-1", map[string]string{
		"message": "   ",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetActivityNewestFirst(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	doRequest(t, srv, http.MethodPost, "/api/jobs/job-1/apply", "tok-1", nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/activity", "tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Title string `json:"title"`
	}
	decodeData(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "Job Application", entries[0].Title)
	assert.Equal(t, "Login Activity", entries[1].Title)
}

func TestLogoutEndsSession(t *testing.T) {
	srv, _ := testServer(t, nil)
	login(t, srv, "tok-1")

	require.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodPost, "/api/auth/logout", "tok-1", nil).Code)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, srv, http.MethodGet, "/api/dashboard", "tok-1", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, srv, http.MethodPost, "/api/auth/logout", "tok-1", nil).Code)
}

func TestProxyForwardsUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/learning/folders/f-42/items", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"i1"}]}`))
	}))
	defer upstream.Close()

	srv, _ := testServer(t, upstream)

	rec := doRequest(t, srv, http.MethodGet, "/api/learning/folders/f-42/items", "tok-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{"id":"i1"}]}`, rec.Body.String())
}

func TestProxyRequiresAuthorization(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be reached without a credential")
	}))
	defer upstream.Close()

	srv, _ := testServer(t, upstream)

	rec := doRequest(t, srv, http.MethodGet, "/api/learning/free-resources/categories", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProxyUpstreamFailureIsGeneric500(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer upstream.Close()

	srv, _ := testServer(t, upstream)

	rec := doRequest(t, srv, http.MethodGet, "/api/learning/free-resources/categories", "tok-1", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestHealthEndpointOpen(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	decodeData(t, rec, &status)
	assert.Equal(t, "healthy", status["status"])
}

func TestRateLimitPerCredential(t *testing.T) {
	feed := &stubFeedClient{}
	manager := dashboard.NewManager(dashboard.ManagerConfig{
		Client:    feed,
		Events:    messaging.NewInMemoryEventBus(nil),
		Scheduler: scheduler.NewScheduler(scheduler.DefaultSchedulerConfig()),
	})
	config := DefaultConfig()
	config.RateLimitPerMinute = 2
	srv := NewServer(config, Dependencies{
		Manager: manager,
		Logger:  logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError}),
	})
	defer func() { _ = srv.Shutdown(context.Background()) }()

	login(t, srv, "tok-1")

	// The burst of 2 is consumed by login and the first read.
	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodGet, "/api/dashboard", "tok-1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, srv, http.MethodGet, "/api/dashboard", "tok-1", nil).Code)

	// A different credential has its own bucket.
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, srv, http.MethodGet, "/api/dashboard", "tok-2", nil).Code)
}

func TestShutdownStopsRateLimiterCleanup(t *testing.T) {
	feed := &stubFeedClient{}
	manager := dashboard.NewManager(dashboard.ManagerConfig{
		Client:    feed,
		Events:    messaging.NewInMemoryEventBus(nil),
		Scheduler: scheduler.NewScheduler(scheduler.DefaultSchedulerConfig()),
	})
	config := DefaultConfig()
	config.RateLimitPerMinute = 10
	srv := NewServer(config, Dependencies{
		Manager: manager,
		Logger:  logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError}),
	})
	require.NotNil(t, srv.rateLimiter)

	// Shutdown must reach the limiter even when Start was never called.
	require.NoError(t, srv.Shutdown(context.Background()))

	select {
	case <-srv.rateLimiter.stopCh:
	default:
		t.Fatal("cleanup goroutine was not told to stop")
	}

	// Stopping twice must not panic.
	srv.rateLimiter.Stop()
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/nope", "tok-1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
