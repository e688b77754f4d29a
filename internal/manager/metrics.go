package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	storePhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "authd",
			Subsystem: "store",
			Name:      "phase",
			Help:      "Current connection phase (1 for the active phase, 0 otherwise)",
		},
		[]string{"phase"},
	)

	connectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authd",
			Subsystem: "store",
			Name:      "connect_attempts_total",
			Help:      "Total connect attempts by result",
		},
		[]string{"result"},
	)

	retriesScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "authd",
			Subsystem: "store",
			Name:      "retries_scheduled_total",
			Help:      "Total background retries scheduled after a failed connect",
		},
	)

	gateRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authd",
			Subsystem: "gate",
			Name:      "rejections_total",
			Help:      "Requests refused by the store gate (503)",
		},
		[]string{"reason"},
	)
)

var allPhases = []Phase{PhaseDisconnected, PhaseConnecting, PhaseConnected, PhaseFailed}

func init() {
	prometheus.MustRegister(storePhase, connectAttempts, retriesScheduled, gateRejections)
}

func observePhase(p Phase) {
	for _, ph := range allPhases {
		v := 0.0
		if ph == p {
			v = 1
		}
		storePhase.WithLabelValues(string(ph)).Set(v)
	}
}
