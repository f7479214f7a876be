package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordRequest(t *testing.T) {
	c := NewCollector(CollectorConfig{Enabled: true}, nil)

	c.RecordRequest("gpt-4o-mini", "success", 750*time.Millisecond, 120, 80, 0.00076)
	c.RecordRequest("gpt-4o-mini", "success", 500*time.Millisecond, 100, 50, 0.0005)
	c.RecordRequest("gpt-4o", "error", 0, 0, 0, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.requestsTotal.WithLabelValues("gpt-4o-mini", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("gpt-4o", "error")))
	assert.Equal(t, float64(220), testutil.ToFloat64(c.inputTokens.WithLabelValues("gpt-4o-mini")))
	assert.Equal(t, float64(130), testutil.ToFloat64(c.outputTokens.WithLabelValues("gpt-4o-mini")))
	assert.InDelta(t, 0.00126, testutil.ToFloat64(c.costUSD.WithLabelValues("gpt-4o-mini")), 1e-9)
}

func TestCollector_ErrorRequestsDoNotAccumulateUsage(t *testing.T) {
	c := NewCollector(CollectorConfig{Enabled: true}, nil)

	c.RecordRequest("gpt-4o", "error", time.Second, 100, 100, 0.5)

	assert.Equal(t, float64(0), testutil.ToFloat64(c.inputTokens.WithLabelValues("gpt-4o")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.costUSD.WithLabelValues("gpt-4o")))
}

func TestCollector_Disabled(t *testing.T) {
	c := NewCollector(CollectorConfig{Enabled: false}, nil)

	c.RecordRequest("gpt-4o-mini", "success", time.Second, 100, 100, 0.1)

	assert.Equal(t, float64(0), testutil.ToFloat64(c.requestsTotal.WithLabelValues("gpt-4o-mini", "success")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(CollectorConfig{Enabled: true}, nil)
	c.RecordRequest("gpt-4o-mini", "success", 250*time.Millisecond, 10, 5, 0.0001)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "textutility_requests_total"))
	assert.True(t, strings.Contains(body, "textutility_request_duration_seconds_bucket"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("info", "json")
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger("nope", "json")
	assert.Error(t, err)

	_, err = NewLogger("debug", "xml")
	assert.Error(t, err)
}
