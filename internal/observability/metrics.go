package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FollowOperations counts relation mutations by action and whether they
	// changed anything.
	FollowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photogram_follow_operations_total",
		Help: "Follow graph mutations by action and outcome",
	}, []string{"action", "outcome"})

	// AccountsProvisioned counts accounts created or reused per user type.
	AccountsProvisioned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photogram_accounts_provisioned_total",
		Help: "Accounts resolved by user type and whether a row was inserted",
	}, []string{"user_type", "created"})

	// CommentMutations counts comment writes by action.
	CommentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photogram_comment_mutations_total",
		Help: "Comment create, modify and delete operations",
	}, []string{"action", "outcome"})

	// ImageUploadLatency records image processing and storage time by kind.
	ImageUploadLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photogram_image_upload_seconds",
		Help:    "Time spent processing and storing uploaded images",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// WebSocketConnectionsTotal is the gauge of open notification sockets.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "photogram_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photogram_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// Outcome labels a mutation that did or did not change state.
func Outcome(changed bool) string {
	if changed {
		return "changed"
	}
	return "noop"
}

// ObserveSince records the seconds elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
