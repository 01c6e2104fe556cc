// Package metrics exposes reconciliation activity as Prometheus
// metrics. The Observer type satisfies vdom.Observer so it can be
// installed directly on a Reconciler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "vireo").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for apply duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vireo",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer records reconciliation actions as Prometheus metrics.
type Observer struct {
	elementActions *prometheus.CounterVec
	textActions    *prometheus.CounterVec
	nodesRemoved   prometheus.Counter
	removesMissed  prometheus.Counter
	applyDuration  prometheus.Histogram
	opsFlushed     prometheus.Counter
	eventsTotal    *prometheus.CounterVec
}

// NewObserver registers the reconciliation metrics and returns an
// observer. Registering twice on the same registry panics, so create
// one observer per process (or per test registry).
func NewObserver(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Observer{
		elementActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "element_actions_total",
			Help:        "Element reconciliation actions by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"action", "tag"}),

		textActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "text_actions_total",
			Help:        "Text node reconciliation actions by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"action"}),

		nodesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_removed_total",
			Help:        "Live nodes removed during reconciliation",
			ConstLabels: config.ConstLabels,
		}),

		removesMissed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "removes_missed_total",
			Help:        "Removals whose target was already gone from the live parent",
			ConstLabels: config.ConstLabels,
		}),

		applyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "apply_duration_seconds",
			Help:        "Reconciliation pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		opsFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ops_flushed_total",
			Help:        "Mutation ops flushed to clients",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Client events processed by dispatch status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),
	}
}

// ElementCreated implements vdom.Observer.
func (o *Observer) ElementCreated(tag string) {
	o.elementActions.WithLabelValues("created", tag).Inc()
}

// ElementReused implements vdom.Observer.
func (o *Observer) ElementReused(tag string) {
	o.elementActions.WithLabelValues("reused", tag).Inc()
}

// ElementReplaced implements vdom.Observer.
func (o *Observer) ElementReplaced(tag string) {
	o.elementActions.WithLabelValues("replaced", tag).Inc()
}

// TextCreated implements vdom.Observer.
func (o *Observer) TextCreated() {
	o.textActions.WithLabelValues("created").Inc()
}

// TextReplaced implements vdom.Observer.
func (o *Observer) TextReplaced() {
	o.textActions.WithLabelValues("replaced").Inc()
}

// TextUpdated implements vdom.Observer.
func (o *Observer) TextUpdated() {
	o.textActions.WithLabelValues("updated").Inc()
}

// NodeRemoved implements vdom.Observer.
func (o *Observer) NodeRemoved() {
	o.nodesRemoved.Inc()
}

// RemoveMissed implements vdom.Observer.
func (o *Observer) RemoveMissed() {
	o.removesMissed.Inc()
}

// ObserveApply records the duration of one reconciliation pass.
func (o *Observer) ObserveApply(d time.Duration) {
	o.applyDuration.Observe(d.Seconds())
}

// AddOpsFlushed records ops sent to a client in one frame.
func (o *Observer) AddOpsFlushed(n int) {
	o.opsFlushed.Add(float64(n))
}

// EventDispatched records a client event and whether a listener
// handled it.
func (o *Observer) EventDispatched(handled bool) {
	status := "handled"
	if !handled {
		status = "dropped"
	}
	o.eventsTotal.WithLabelValues(status).Inc()
}
