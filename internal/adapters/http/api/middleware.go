package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/jobscout/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for one
// route. endpoint is the route pattern, not the raw path, so session IDs do
// not explode label cardinality.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Microseconds())/1000)

		if kind, severity, failed := classifyStatus(rec.statusCode); failed {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByType(kind, severity)
		}
	}
}

// classifyStatus maps an error status to its metric labels. failed is false
// for anything below 400.
func classifyStatus(code int) (kind, severity string, failed bool) {
	switch {
	case code == http.StatusServiceUnavailable:
		return "unavailable", "high", true
	case code >= http.StatusInternalServerError:
		return "server_error", "high", true
	case code == http.StatusRequestEntityTooLarge:
		return "payload_too_large", "low", true
	case code == http.StatusTooManyRequests:
		return "rate_limit", "medium", true
	case code == http.StatusNotFound:
		return "not_found", "low", true
	case code >= http.StatusBadRequest:
		return "client_error", "medium", true
	}
	return "", "", false
}

// responseWriter remembers the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
