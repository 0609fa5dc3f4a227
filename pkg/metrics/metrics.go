// Package metrics exports visibility session activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/inview/pkg/observe"
	"github.com/go-drift/inview/pkg/visibility"
)

// Collector holds the counters fed by observe.Hooks and tracker results.
type Collector struct {
	sessionsCreated  prometheus.Counter
	sessionsClosed   *prometheus.CounterVec
	registered       prometheus.Counter
	notifications    prometheus.Counter
	entries          prometheus.Counter
	disposersInvoked prometheus.Counter
	emissions        *prometheus.CounterVec
}

// NewCollector creates the counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inview_sessions_created_total",
			Help: "Total number of watcher sessions started",
		}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inview_sessions_closed_total",
			Help: "Total number of watcher sessions ended, by reason",
		}, []string{"reason"}),
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inview_targets_registered_total",
			Help: "Total number of targets registered with a watcher",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inview_notifications_total",
			Help: "Total number of notification batches delivered to live sessions",
		}),
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inview_entries_total",
			Help: "Total number of entries across delivered batches",
		}),
		disposersInvoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inview_disposers_invoked_total",
			Help: "Total number of notification disposers invoked",
		}),
		emissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inview_visibility_emissions_total",
			Help: "Visibility batches by outcome",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(
			c.sessionsCreated,
			c.sessionsClosed,
			c.registered,
			c.notifications,
			c.entries,
			c.disposersInvoked,
			c.emissions,
		)
	}
	return c
}

// Hooks returns manager hooks feeding the collector.
func (c *Collector) Hooks() observe.Hooks {
	return observe.Hooks{
		OnSessionStart: func(_, registered int) {
			c.sessionsCreated.Inc()
			c.registered.Add(float64(registered))
		},
		OnSessionEnd: func(reason observe.Reason) {
			c.sessionsClosed.WithLabelValues(reason.String()).Inc()
		},
		OnNotify: func(batchSize int) {
			c.notifications.Inc()
			c.entries.Add(float64(batchSize))
		},
		OnDispose: func() {
			c.disposersInvoked.Inc()
		},
	}
}

// RecordEmission counts a tracker batch outcome. Pass it to
// visibility.WithRecorder.
func (c *Collector) RecordEmission(r visibility.Result) {
	c.emissions.WithLabelValues(r.String()).Inc()
}
