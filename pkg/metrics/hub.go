package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HubMetrics contains Prometheus metrics for the WebSocket broadcast hub.
type HubMetrics struct {
	ConnectedClients prometheus.Gauge
	MessagesSent     *prometheus.CounterVec
	MessagesDropped  *prometheus.CounterVec
	BroadcastsTotal  *prometheus.CounterVec
}

// NewHubMetrics creates and registers hub metrics.
func NewHubMetrics(namespace string) *HubMetrics {
	m := &HubMetrics{
		ConnectedClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "hub",
				Name:      "connected_clients",
				Help:      "Number of currently connected WebSocket clients",
			},
		),
		MessagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hub",
				Name:      "messages_sent_total",
				Help:      "Total number of messages delivered to client send buffers",
			},
			[]string{"event"},
		),
		MessagesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hub",
				Name:      "messages_dropped_total",
				Help:      "Total number of messages dropped due to full client send buffers",
			},
			[]string{"event"},
		),
		BroadcastsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hub",
				Name:      "broadcasts_total",
				Help:      "Total number of broadcast operations",
			},
			[]string{"event"},
		),
	}

	MustRegister(
		m.ConnectedClients,
		m.MessagesSent,
		m.MessagesDropped,
		m.BroadcastsTotal,
	)

	return m
}
