package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdapterCallsTotal tracks public adapter operations per chain
	AdapterCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainadapter_calls_total",
			Help: "Total number of adapter operations",
		},
		[]string{"chain", "op"},
	)

	// AdapterErrorsTotal tracks normalized adapter failures by kind
	AdapterErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainadapter_errors_total",
			Help: "Total number of failed adapter operations",
		},
		[]string{"chain", "op", "kind"},
	)

	// AdapterLatency tracks adapter operation latency
	AdapterLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainadapter_latency_seconds",
			Help:    "Adapter operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "op"},
	)

	// ProviderCallsTotal tracks HTTP calls per provider
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainadapter_provider_calls_total",
			Help: "Total number of provider HTTP calls",
		},
		[]string{"provider", "op"},
	)

	// ProviderErrorsTotal tracks provider HTTP errors
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainadapter_provider_errors_total",
			Help: "Total number of provider HTTP errors",
		},
		[]string{"provider", "error_type"},
	)

	// ProviderLatency tracks provider HTTP latency
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainadapter_provider_latency_seconds",
			Help:    "Provider HTTP latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "op"},
	)

	// SubscriptionMessagesTotal tracks normalized push events
	SubscriptionMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainadapter_subscription_messages_total",
			Help: "Total number of transaction events delivered to subscribers",
		},
		[]string{"chain"},
	)

	// SubscriptionErrorsTotal tracks errors delivered to subscribers
	SubscriptionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainadapter_subscription_errors_total",
			Help: "Total number of subscription errors",
		},
		[]string{"chain"},
	)

	// ActiveSubscriptions tracks live subscriptions
	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainadapter_active_subscriptions",
			Help: "Number of active transaction subscriptions",
		},
		[]string{"chain"},
	)
)

// EventsPublishedTotal tracks events forwarded to Redis
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chainadapter_events_published_total",
		Help: "Total number of transaction events published to Redis",
	},
	[]string{"chain"},
)
