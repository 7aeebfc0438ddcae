package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordHTTPRequest("GET", "/health", "200", 5*time.Millisecond, 0, 128)
	m.RecordHTTPRequest("POST", "/terminal/sessions", "500", 10*time.Millisecond, 64, 32)

	snap := m.GetSnapshot()
	if snap.TotalRequests != 2 {
		t.Errorf("expected 2 requests, got %d", snap.TotalRequests)
	}
	if snap.TotalErrors != 1 {
		t.Errorf("expected 1 error, got %d", snap.TotalErrors)
	}
}

func TestAverageDuration(t *testing.T) {
	m := newTestMetrics()

	if m.AverageDuration() != 0 {
		t.Error("average should be 0 with no requests")
	}

	m.RecordHTTPRequest("GET", "/health", "200", 100*time.Millisecond, 0, 0)
	m.RecordHTTPRequest("GET", "/health", "200", 300*time.Millisecond, 0, 0)

	avg := m.AverageDuration()
	if avg < 0.19 || avg > 0.21 {
		t.Errorf("expected average around 0.2s, got %f", avg)
	}
}

func TestSessionGauges(t *testing.T) {
	m := newTestMetrics()

	m.SetSessionsActive(3)
	if snap := m.GetSnapshot(); snap.ActiveSessions != 3 {
		t.Errorf("expected 3 active sessions, got %d", snap.ActiveSessions)
	}

	m.SetSessionsActive(0)
	if snap := m.GetSnapshot(); snap.ActiveSessions != 0 {
		t.Errorf("expected 0 active sessions, got %d", snap.ActiveSessions)
	}
}

func TestWSConnectionTracking(t *testing.T) {
	m := newTestMetrics()

	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()

	if snap := m.GetSnapshot(); snap.ActiveConnections != 1 {
		t.Errorf("expected 1 active connection, got %d", snap.ActiveConnections)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := newTestMetrics()
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if snap := m.GetSnapshot(); snap.TotalRequests != 1 {
		t.Errorf("middleware should record the request, got %d", snap.TotalRequests)
	}
}

func TestTimer(t *testing.T) {
	m := newTestMetrics()

	timer := NewTimer(m, "git", "diff")
	time.Sleep(time.Millisecond)
	timer.Stop("success")

	// Counter is registered on a private registry; just verify no panic
	// and that a second timer on the same labels works.
	timer = NewTimer(m, "git", "diff")
	timer.Stop("error")
}
