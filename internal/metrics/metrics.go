package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Bus metrics
	MessagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_messages_stored_total",
			Help: "Total messages appended to the bus store",
		},
		[]string{"origin"}, // "local" or "synthetic"
	)

	SessionsConnected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mockchat_sessions_connected_total",
			Help: "Total local sessions established",
		},
	)

	SessionsDisconnected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mockchat_sessions_disconnected_total",
			Help: "Total local sessions torn down",
		},
	)

	RoomChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_room_changes_total",
			Help: "Total room switches",
		},
		[]string{"room"},
	)

	EventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_events_dispatched_total",
			Help: "Total handler invocations per event kind",
		},
		[]string{"kind"},
	)

	// View layer metrics
	ViewClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mockchat_view_clients",
			Help: "Websocket view clients currently attached",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_http_requests_total",
			Help: "Total HTTP requests served by the view server",
		},
		[]string{"method", "path", "status"},
	)
)

// Origin labels for MessagesStored.
const (
	OriginLocal     = "local"
	OriginSynthetic = "synthetic"
)
