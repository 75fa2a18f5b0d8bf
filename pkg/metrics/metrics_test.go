package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkflowCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := NewWorkflow(reg)

	w.Transition("review", "approved")
	w.Transition("review", "approved")
	w.Rejection("review", "already_reviewed")
	w.Conflict()

	if got := testutil.ToFloat64(w.transitions.WithLabelValues("review", "approved")); got != 2 {
		t.Errorf("expected 2 approved transitions, got %v", got)
	}
	if got := testutil.ToFloat64(w.rejections.WithLabelValues("review", "already_reviewed")); got != 1 {
		t.Errorf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(w.conflicts); got != 1 {
		t.Errorf("expected 1 conflict, got %v", got)
	}
}

func TestWorkflow_NilSafe(t *testing.T) {
	var w *Workflow
	w.Transition("submit", "submitted")
	w.Rejection("submit", "no_route")
	w.Conflict()
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	NewWorkflow(reg).Transition("submit", "submitted")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fpms_workflow_transitions_total") {
		t.Error("expected workflow counter in exposition")
	}
}
