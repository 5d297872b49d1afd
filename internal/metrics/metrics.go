package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests.
	// Labels: method, route (the matched mux pattern), status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelcanon",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration measures request latency.
	// Labels: method, route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reelcanon",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	// FriendshipTransitions counts workflow transitions.
	// Labels: transition (requested, accepted, cancelled, rejected, unfriended, admin_removed)
	FriendshipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelcanon",
		Subsystem: "friendships",
		Name:      "transitions_total",
		Help:      "Friendship workflow transitions",
	}, []string{"transition"})

	// LeaderboardCache counts leaderboard cache lookups.
	// Labels: result (hit, miss, error)
	LeaderboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelcanon",
		Subsystem: "leaderboard",
		Name:      "cache_lookups_total",
		Help:      "Leaderboard cache lookups by result",
	}, []string{"result"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
