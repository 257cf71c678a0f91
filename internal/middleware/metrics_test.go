package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/copperkettle/catering/internal/infrastructure/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	r := chi.NewRouter()
	r.Use(Metrics(metrics))
	r.Get("/api/v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/orders/abc-123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	families, err := reg.Gather()
	require.NoError(t, err)

	var foundTotal, foundDuration bool
	for _, mf := range families {
		switch *mf.Name {
		case "test_http_requests_total":
			foundTotal = true
			require.Len(t, mf.Metric, 1)
			// Labels use the route pattern, not the raw path.
			for _, lp := range mf.Metric[0].Label {
				if *lp.Name == "path" {
					assert.Equal(t, "/api/v1/orders/{id}", *lp.Value)
				}
			}
		case "test_http_request_duration_seconds":
			foundDuration = true
		}
	}
	assert.True(t, foundTotal)
	assert.True(t, foundDuration)
}

func TestMetricsCapturesStatusCode(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusUnauthorized, http.StatusBadGateway} {
		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics("test", reg)

		r := chi.NewRouter()
		r.Use(Metrics(metrics))
		r.Post("/webhooks/square", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		})

		req := httptest.NewRequest("POST", "/webhooks/square", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, code, w.Code)
	}
}

func TestStatusWriterDefaultsTo200(t *testing.T) {
	w := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

	sw.Write([]byte("ok"))

	assert.Equal(t, http.StatusOK, sw.statusCode)
}

func TestStatusWriterWriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

	sw.WriteHeader(http.StatusAccepted)

	assert.Equal(t, http.StatusAccepted, sw.statusCode)
	assert.Equal(t, http.StatusAccepted, w.Code)
}
