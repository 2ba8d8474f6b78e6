package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citypulse_snapshots_received_total",
		Help: "Full event snapshots applied to the store.",
	})

	ViewRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citypulse_view_requests_total",
		Help: "View derivations served, by view.",
	}, []string{"view"})

	ViewCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citypulse_view_cache_hits_total",
		Help: "View responses served from the Valkey cache, by view.",
	}, []string{"view"})

	NotificationsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citypulse_notifications_emitted_total",
		Help: "Proximity notification intents emitted.",
	})

	Reservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citypulse_reservations_total",
		Help: "Reservation attempts, by outcome.",
	}, []string{"outcome"})
)
