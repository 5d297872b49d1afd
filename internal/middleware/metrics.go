package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/HammerMeetNail/reelcanon/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts and latency by route pattern. It must wrap
// the ServeMux directly: the mux sets r.Pattern on the request it is handed.
type Metrics struct{}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := newResponseRecorder(w)

		next.ServeHTTP(recorder, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
