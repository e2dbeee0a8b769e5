package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollIterations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceitwatch_poll_iterations_total",
		Help: "Total number of completed poll iterations",
	})

	detectFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceitwatch_detect_failures_total",
		Help: "Total number of failed match history lookups",
	})

	aggregateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceitwatch_aggregate_failures_total",
		Help: "Total number of matches that could not be aggregated",
	})

	notificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceitwatch_notifications_sent_total",
		Help: "Total number of match notifications delivered",
	})

	deliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceitwatch_delivery_failures_total",
		Help: "Total number of match notifications that failed to deliver",
	})

	trackedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "faceitwatch_tracked_players",
		Help: "Number of resolved players in the running poll loop",
	})
)
