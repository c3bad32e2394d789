// Package metrics exposes Prometheus counters for the application's core
// operations. The standard process and Go runtime collectors come with the
// default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Signups counts account registrations.
	Signups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Total number of successful account registrations.",
	})

	// Logins counts login attempts by result.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_logins_total",
		Help: "Total number of login attempts.",
	}, []string{"result"})

	// WarblesPosted counts posted warbles.
	WarblesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_warbles_posted_total",
		Help: "Total number of warbles posted.",
	})

	// GraphChanges counts follow graph mutations by action.
	GraphChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_graph_changes_total",
		Help: "Total number of follow and unfollow operations.",
	}, []string{"action"})

	// FeedRequests counts home feed reads by cache outcome.
	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_feed_requests_total",
		Help: "Total number of home feed requests.",
	}, []string{"cache"})
)

// Label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	ActionFollow   = "follow"
	ActionUnfollow = "unfollow"

	CacheHit  = "hit"
	CacheMiss = "miss"
)
