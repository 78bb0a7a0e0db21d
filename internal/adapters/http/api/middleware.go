package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/heatsheet/pkg/logger"
	"github.com/okian/heatsheet/pkg/metrics"
)

// slowRequest is logged at warn. Large spreadsheet uploads are the usual
// offender.
const slowRequest = 2 * time.Second

// MetricsMiddleware records request count, latency and error class for
// endpoint, and logs server errors and slow requests.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, metrics.Since(start))

		if class := errorClass(rec.status); class != "" {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, class)
			metrics.RecordErrorByComponent("http", class)
		}

		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Named("http").Error(r.Context(), "request failed",
				logger.String("endpoint", endpoint),
				logger.String("method", r.Method),
				logger.Int("status", rec.status),
				logger.Duration("elapsed", elapsed),
			)
		case elapsed >= slowRequest:
			logger.Named("http").Warn(r.Context(), "slow request",
				logger.String("endpoint", endpoint),
				logger.String("method", r.Method),
				logger.Duration("elapsed", elapsed),
			)
		}
	}
}

// errorClass buckets an error status for metrics labels; it is empty for
// success.
func errorClass(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusRequestEntityTooLarge:
		return "too_large"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "client_error"
	}
}

// statusRecorder remembers the status a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
