package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PackagesDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swifttrack_packages_delivered_total",
		Help: "Total number of packages marked delivered.",
	})

	PackagesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swifttrack_packages_failed_total",
		Help: "Total number of packages marked failed, by catalog reason.",
	},
		[]string{"reason"},
	)

	TransitionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swifttrack_transition_errors_total",
		Help: "Total number of rejected state machine transitions.",
	},
		[]string{"event"},
	)

	ProofCapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swifttrack_proof_captures_total",
		Help: "Total number of proof artifacts captured, by kind.",
	},
		[]string{"kind"},
	)

	NotificationsUnread = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swifttrack_notifications_unread",
		Help: "Current number of unread notifications in the feed.",
	})

	RouteOptimizeRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swifttrack_route_optimize_requests_total",
		Help: "Total number of Optimize Route actions triggered by the driver.",
	})
)
