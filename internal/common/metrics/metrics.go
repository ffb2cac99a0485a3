// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_processed_total",
			Help: "Total number of chat messages processed",
		},
		[]string{"intent", "response_format"},
	)

	ChatMessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_failed_total",
			Help: "Total number of chat messages that failed processing",
		},
		[]string{"error_code"},
	)

	ChatMessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_message_duration_seconds",
			Help: "End-to-end duration of chat message processing in seconds",
		},
		[]string{"intent"},
	)

	AIProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_calls_total",
			Help: "Total number of AI provider calls",
		},
		[]string{"provider", "outcome"},
	)

	AIProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ai_provider_duration_seconds",
			Help: "Latency of AI provider completion calls in seconds",
		},
		[]string{"provider"},
	)

	// ActiveSessions counts sessions the store considers active. Created
	// sessions increment it; ending or deactivating decrements. Sessions
	// that silently expire in Redis are reconciled by the cleanup pass.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_sessions",
			Help: "Number of currently active chat sessions",
		},
	)
)
