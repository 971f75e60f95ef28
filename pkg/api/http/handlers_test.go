package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aescanero/tripplanner/internal/application/workers"
	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"
)

type fakePlanner struct {
	mu   sync.Mutex
	reqs []domain.Request
	err  error
}

func (f *fakePlanner) Plan(ctx context.Context, req domain.Request) (*domain.CompositeResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := &domain.CompositeResult{Destination: req.Destination, Dates: req.Dates, Mood: req.Mood}
	res.Normalize()
	return res, nil
}

type fakeHealth struct{ healthy bool }

func (f fakeHealth) GetStatus() *workers.HealthStatus {
	return &workers.HealthStatus{TotalWorkers: 8, IdleWorkers: 8, Healthy: f.healthy, Timestamp: time.Now()}
}

type fakeRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (f *fakeRecorder) RecordHTTPRequest(method, route, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, fmt.Sprintf("%s %s %s", method, route, status))
}

func newTestServer(t *testing.T, planner Planner, missing []string) (*Server, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	s := NewServer(&Config{
		Port:               0,
		Planner:            planner,
		Health:             fakeHealth{healthy: true},
		Metrics:            rec,
		Gatherer:           prometheus.NewRegistry(),
		MissingCredentials: missing,
		Logger:             zaptest.NewLogger(t),
	})
	return s, rec
}

func do(s *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestCreatePlanJSON(t *testing.T) {
	planner := &fakePlanner{}
	s, rec := newTestServer(t, planner, nil)

	w := do(s, http.MethodPost, "/api/v1/plans", "application/json",
		`{"destination":"Jaipur, India","dates":"2025-12-10 to 2025-12-15","budget":"50000","mood":"adventure"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res domain.CompositeResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if res.Destination != "Jaipur, India" {
		t.Errorf("destination = %q", res.Destination)
	}
	if !strings.Contains(w.Body.String(), `"hotels":[]`) {
		t.Errorf("empty sections should be arrays: %s", w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if len(rec.routes) != 1 || rec.routes[0] != "POST /api/v1/plans 200" {
		t.Errorf("recorded routes = %v", rec.routes)
	}
}

func TestCreatePlanForm(t *testing.T) {
	planner := &fakePlanner{}
	s, _ := newTestServer(t, planner, nil)

	form := url.Values{"destination": {"Goa"}, "budget": {"20000"}, "mood": {"relax"}}
	w := do(s, http.MethodPost, "/api/v1/plans", "application/x-www-form-urlencoded", form.Encode())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if planner.reqs[0].Destination != "Goa" || planner.reqs[0].Budget != "20000" {
		t.Errorf("planner got %+v", planner.reqs[0])
	}
}

func TestCreatePlanInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"malformed json", `{"destination":`, nil},
		{"rejected by planner", `{"destination":""}`, fmt.Errorf("%w: destination required", domain.ErrInvalidRequest)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakePlanner{err: tt.err}, nil)

			w := do(s, http.MethodPost, "/api/v1/plans", "application/json", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if resp := decodeError(t, w); resp.Error.Code != CodeInvalidRequest {
				t.Errorf("code = %s", resp.Error.Code)
			}
		})
	}
}

func TestCreatePlanUnexpectedError(t *testing.T) {
	s, _ := newTestServer(t, &fakePlanner{err: fmt.Errorf("boom")}, nil)

	w := do(s, http.MethodPost, "/api/v1/plans", "application/json", `{"destination":"Goa","budget":"1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != CodePlanFailed {
		t.Errorf("code = %s", resp.Error.Code)
	}
}

func TestCreatePlanMissingCredentials(t *testing.T) {
	planner := &fakePlanner{}
	s, _ := newTestServer(t, planner, []string{"LLM_API_KEY"})

	w := do(s, http.MethodPost, "/api/v1/plans", "application/json", `{"destination":"Goa","budget":"1"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != CodeCredentialsMissing {
		t.Errorf("code = %s", resp.Error.Code)
	}
	if !strings.Contains(w.Body.String(), "LLM_API_KEY") {
		t.Errorf("body should list missing keys: %s", w.Body.String())
	}
	if len(planner.reqs) != 0 {
		t.Error("planner must not run without credentials")
	}

	health := do(s, http.MethodGet, "/health", "", "")
	if !strings.Contains(health.Body.String(), `"degraded"`) {
		t.Errorf("health should be degraded: %s", health.Body.String())
	}
}

func TestExample(t *testing.T) {
	s, _ := newTestServer(t, &fakePlanner{}, nil)

	w := do(s, http.MethodGet, "/api/v1/plans/example", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var req domain.Request
	if err := json.Unmarshal(w.Body.Bytes(), &req); err != nil {
		t.Fatal(err)
	}
	if req != domain.ExampleRequest() {
		t.Errorf("example = %+v", req)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t, &fakePlanner{}, nil)

	w := do(s, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}

	w = do(s, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}

	unhealthy := NewServer(&Config{
		Planner:  &fakePlanner{},
		Health:   fakeHealth{healthy: false},
		Gatherer: prometheus.NewRegistry(),
		Logger:   zaptest.NewLogger(t),
	})
	if w := do(unhealthy, http.MethodGet, "/health", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy pool status = %d, want 503", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	s := NewServer(&Config{Planner: &fakePlanner{}, Gatherer: reg, Logger: zaptest.NewLogger(t)})
	w := do(s, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "test_total 1") {
		t.Errorf("metrics = %d %s", w.Code, w.Body.String())
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s, _ := newTestServer(t, &fakePlanner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, &fakePlanner{}, nil)

	w := do(s, http.MethodOptions, "/api/v1/plans", "", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
