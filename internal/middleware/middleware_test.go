package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPrometheusMiddleware_BasicMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	promMw := NewPrometheusMiddleware("test", registry)
	r.Use(promMw.Handler())

	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "test error"})
	})

	assert.Equal(t, http.StatusOK, serve(r, "/test").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, "/error").Code)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	var durationFound, errorsFound bool
	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "test_http_request_duration_seconds":
			durationFound = true
			assert.Equal(t, "Длительность HTTP-запросов.", mf.GetHelp())
			assert.Len(t, mf.Metric, 2)
		case "test_http_request_errors_total":
			errorsFound = true
			require.Len(t, mf.Metric, 1)
			assert.Equal(t, float64(1), mf.Metric[0].GetCounter().GetValue())
		}
	}

	assert.True(t, durationFound, "нет метрики длительности")
	assert.True(t, errorsFound, "нет метрики ошибок")
}

func TestPrometheusMiddleware_InflightRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	promMw := NewPrometheusMiddleware("test", nil)
	r.Use(promMw.Handler())

	entered := make(chan struct{})
	release := make(chan struct{})
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	done := make(chan struct{})
	go func() {
		serve(r, "/slow")
		close(done)
	}()

	<-entered
	assert.Equal(t, float64(1), testutil.ToFloat64(promMw.reqInflight))

	close(release)
	<-done
	assert.Equal(t, float64(0), testutil.ToFloat64(promMw.reqInflight))
}

func TestRequestLogger_TraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.Use(NewRequestLogger(nil).Handler())

	var capturedTraceID string
	r.GET("/test", func(c *gin.Context) {
		capturedTraceID = c.GetString(TraceIDKey)
		c.JSON(http.StatusOK, gin.H{"trace_id": capturedTraceID})
	})

	w := serve(r, "/test")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, capturedTraceID)
	assert.Contains(t, w.Body.String(), capturedTraceID)
	assert.Equal(t, capturedTraceID, w.Header().Get("X-Trace-Id"))
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "sample_value", Help: "sample"})
	registry.MustRegister(gauge)
	gauge.Set(3)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterMetricsEndpoint(r, registry)

	w := serve(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sample_value 3")
}
