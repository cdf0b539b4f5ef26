// Package middleware provides HTTP middleware for metrics collection.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Indirection so tests can capture recorded requests.
var recordHTTPRequest = metrics.RecordHTTPRequest

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := normalizeEndpoint(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		recordHTTPRequest(r.Method, endpoint, status, duration)
	})
}

var knownEndpoints = map[string]bool{
	"/api/wip/summary":            true,
	"/api/wip/summary/categories": true,
	"/api/wip/detail":             true,
	"/api/wip/unregistered":       true,
	"/api/wip/refresh":            true,
	"/metrics":                    true,
}

// normalizeEndpoint bounds label cardinality: anything outside the known
// route set is collapsed into a single bucket.
func normalizeEndpoint(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}
	if knownEndpoints[path] || path == "/" {
		return path
	}
	return "other"
}
