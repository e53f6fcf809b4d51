package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreIndependentPerInstance(t *testing.T) {
	a, b := New(), New()

	a.AreasGenerated.Inc()
	a.NodesCompleted.WithLabelValues("BOSS").Inc()
	a.NodesCompleted.WithLabelValues("BOSS").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.AreasGenerated))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.NodesCompleted.WithLabelValues("BOSS")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AreasGenerated))
}

func TestHandlerExposesInstruments(t *testing.T) {
	m := New()
	m.Rejections.WithLabelValues("node", "locked").Inc()
	m.ObserveGeneration("area", time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `taskrealm_rejections_total{reason="locked",target="node"} 1`)
	assert.Contains(t, body, "taskrealm_generation_duration_seconds_count")
}
