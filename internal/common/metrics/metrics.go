package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntentsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intents_handled_total",
			Help: "Total number of intents handled",
		},
		[]string{"intent"},
	)

	IntentsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intents_failed_total",
			Help: "Total number of intents that produced an error reply",
		},
		[]string{"intent", "error_code"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_turn_duration_seconds",
			Help: "Duration of one conversational turn in seconds",
		},
		[]string{"intent"},
	)

	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_provider_calls_total",
			Help: "Total number of calls to external providers",
		},
		[]string{"provider", "operation"},
	)

	PageCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_page_cache_total",
			Help: "Search page navigations served from cache vs the provider",
		},
		[]string{"source"}, // "cache" or "provider"
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_active_search_sessions",
			Help: "Number of live per-conversation search sessions",
		},
	)
)
