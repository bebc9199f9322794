// Package hub fans snapshot and table-view messages out to all connected
// WebSocket subscribers. Delivery is push-only and unacknowledged; every
// message carries full state and supersedes the previous one, so slow or
// disconnected clients simply catch up on the next broadcast.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"farmsight.dev/farmsight/internal/stats"
	"farmsight.dev/farmsight/pkg/metrics"
)

// Push event names.
const (
	EventStatsUpdate   = "stats_update"
	EventDevicesUpdate = "devices_update"
	EventPigsUpdate    = "pigs_update"
)

// envelope is the wire frame for every push message.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// message is a serialized envelope ready for fan-out.
type message struct {
	event string
	data  []byte
}

// Hub owns the set of connected clients. All membership changes and
// broadcasts flow through its run loop, so no locking is needed elsewhere.
type Hub struct {
	logger     *slog.Logger
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	metrics    *metrics.HubMetrics
}

// New creates a Hub. Run must be called before clients connect.
func New(l *slog.Logger) *Hub {
	return &Hub{
		logger:     l,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 16),
	}
}

// SetMetrics sets the metrics collector for this hub.
func (h *Hub) SetMetrics(m *metrics.HubMetrics) {
	h.metrics = m
}

// Run services registrations and broadcasts until the context is canceled,
// then closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.logger.Info("hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = true
			if h.metrics != nil {
				h.metrics.ConnectedClients.Set(float64(len(h.clients)))
			}
			h.logger.Debug("client connected", "clients", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			if h.metrics != nil {
				h.metrics.ConnectedClients.Set(float64(len(h.clients)))
			}
			h.logger.Debug("client disconnected", "clients", len(h.clients))
		case msg := <-h.broadcast:
			if h.metrics != nil {
				h.metrics.BroadcastsTotal.WithLabelValues(msg.event).Inc()
			}
			for client := range h.clients {
				select {
				case client.send <- msg.data:
					if h.metrics != nil {
						h.metrics.MessagesSent.WithLabelValues(msg.event).Inc()
					}
				default:
					// Client buffer full. The message is superseded by the
					// next broadcast anyway, so drop it rather than block.
					if h.metrics != nil {
						h.metrics.MessagesDropped.WithLabelValues(msg.event).Inc()
					}
				}
			}
		}
	}
}

// Broadcast serializes data under the given event name and queues it for
// fan-out to all connected clients.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "event", event, "error", err)
		return
	}
	h.broadcast <- message{event: event, data: payload}
}

// BroadcastStats implements stats.Broadcaster.
func (h *Hub) BroadcastStats(snapshot stats.Snapshot) {
	h.Broadcast(EventStatsUpdate, snapshot)
}

// BroadcastDevices implements stats.Broadcaster.
func (h *Hub) BroadcastDevices(devices []stats.DeviceRow) {
	h.Broadcast(EventDevicesUpdate, devices)
}

// BroadcastPigs implements stats.Broadcaster.
func (h *Hub) BroadcastPigs(pigs []stats.PigRow) {
	h.Broadcast(EventPigsUpdate, pigs)
}

var _ stats.Broadcaster = (*Hub)(nil)
