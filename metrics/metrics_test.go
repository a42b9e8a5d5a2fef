package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCaptureCounters(t *testing.T) {
	before := testutil.ToFloat64(captureFailures.WithLabelValues("capture"))
	CaptureFailed("capture")
	if got := testutil.ToFloat64(captureFailures.WithLabelValues("capture")); got != before+1 {
		t.Errorf("failures = %v, want %v", got, before+1)
	}

	SessionOpened()
	SessionOpened()
	SessionClosed()
	if got := testutil.ToFloat64(activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
	SessionClosed()
}

func TestHandlerExposesStages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveStage("structure", 20*time.Millisecond)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `sitemodel_stage_duration_seconds_count{stage="structure"}`) {
		t.Error("stage histogram missing from exposition")
	}
}
