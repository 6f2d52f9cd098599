package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat holds the counters of the chat pipeline. They are observability only.
type Chat struct {
	AICalls        prometheus.Counter
	AIErrors       prometheus.Counter
	LocalResponses prometheus.Counter
	CacheHits      prometheus.Counter
	Routes         *prometheus.CounterVec
	TurnDuration   *prometheus.HistogramVec
	ActiveSessions prometheus.Gauge
}

// NewChat registers the chat counters on reg. A nil reg creates a private registry.
func NewChat(reg prometheus.Registerer) *Chat {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Chat{
		AICalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_ai_calls_total",
			Help: "Total number of chat completion requests sent to the AI provider",
		}),
		AIErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_ai_errors_total",
			Help: "Total number of AI responses that fell back because of an error",
		}),
		LocalResponses: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_local_responses_total",
			Help: "Total number of turns answered without a network call",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_cache_hits_total",
			Help: "Total number of turns answered from the response cache",
		}),
		Routes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_route_total",
				Help: "Total number of turns per answering route",
			},
			[]string{"route"},
		),
		TurnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_turn_duration_seconds",
				Help:    "Duration of a chat turn in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_active_sessions",
			Help: "Number of chat sessions currently held in memory",
		}),
	}
}
