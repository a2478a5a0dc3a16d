package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpvremote",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mpvremote",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})

	PlaybackResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpvremote",
		Name:      "playback_results_total",
		Help:      "Playback route outcomes by action and envelope status.",
	}, []string{"action", "status"})

	PlayerConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mpvremote",
		Name:      "player_connected",
		Help:      "1 while a control channel to the player is held open.",
	})

	PlayerConnectAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpvremote",
		Name:      "player_connect_attempts_total",
		Help:      "Control socket connection attempts by result.",
	}, []string{"result"})

	PlayerSpawnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mpvremote",
		Name:      "player_spawns_total",
		Help:      "Player spawn requests by result (started, skipped, failed).",
	}, []string{"result"})

	PlayerAcquireDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mpvremote",
		Name:      "player_acquire_duration_seconds",
		Help:      "Time spent obtaining a control channel, including spawn and grace delay.",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	PlayerInvalidationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mpvremote",
		Name:      "player_channel_invalidations_total",
		Help:      "Total number of control channels dropped after a transport failure.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PlaybackResultsTotal,
		PlayerConnected,
		PlayerConnectAttemptsTotal,
		PlayerSpawnsTotal,
		PlayerAcquireDuration,
		PlayerInvalidationsTotal,
	)
}
