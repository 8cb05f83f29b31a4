package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records statement latency by SQL verb. Observed
	// from the GORM logger, so every query is covered.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plume_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "plume_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts inbound websocket frames by message type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// SearchRequestsTotal counts search requests by retrieval path.
	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_search_requests_total",
		Help: "Total search requests by retrieval path",
	}, []string{"path"})

	// SearchLatency records end-to-end search latency.
	SearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "plume_search_latency_seconds",
		Help:    "Search request latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// NotificationsCreatedTotal counts persisted notifications by type.
	NotificationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_notifications_created_total",
		Help: "Total notifications persisted by type",
	}, []string{"type"})

	// NotificationsFanoutTotal counts real-time events published to user rooms.
	NotificationsFanoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_notifications_fanout_total",
		Help: "Total real-time events published by event type",
	}, []string{"event_type"})
)
