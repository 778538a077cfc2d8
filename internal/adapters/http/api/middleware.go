package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/metrics"
)

const (
	// requestIDHeader carries a per-request correlation ID; a client value
	// is echoed back when it is short enough.
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// MetricsMiddleware records request counts, durations, and error classes
// for endpoint and tags the response with a request ID.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	log := logger.Named("http")
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, elapsed.Seconds())

		if rec.status < http.StatusBadRequest {
			return
		}
		kind, severity := classifyStatus(rec.status)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
		metrics.RecordErrorByType(kind, severity)
		log.Debug(r.Context(), "request failed",
			logger.String("request_id", id),
			logger.String("endpoint", endpoint),
			logger.Int("status", rec.status),
			logger.Duration("elapsed", elapsed))
	}
}

// classifyStatus maps an error status onto a metrics error type and severity.
func classifyStatus(status int) (kind, severity string) {
	switch {
	case status == http.StatusServiceUnavailable:
		return "unavailable", "high"
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusTooManyRequests:
		return "backpressure", "medium"
	case status == http.StatusUnprocessableEntity:
		return "filter_error", "low"
	case status == http.StatusNotFound:
		return "not_found", "low"
	case status == http.StatusBadRequest, status == http.StatusRequestEntityTooLarge:
		return "invalid_request", "low"
	default:
		return "client_error", "low"
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
