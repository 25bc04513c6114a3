package changefeed

import "github.com/prometheus/client_golang/prometheus"

// Metrics - счетчики рассылки изменений.
type Metrics struct {
	Published   prometheus.Counter
	Delivered   prometheus.Counter
	Dropped     prometheus.Counter
	Malformed   prometheus.Counter
	Subscribers prometheus.Gauge
}

// NewMetrics creates the change feed metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jobtag",
			Subsystem: "changefeed",
			Name:      "published_total",
			Help:      "Total number of change notifications published to the hub",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jobtag",
			Subsystem: "changefeed",
			Name:      "delivered_total",
			Help:      "Total number of envelopes handed to subscribers",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jobtag",
			Subsystem: "changefeed",
			Name:      "dropped_subscribers_total",
			Help:      "Total number of subscribers dropped for falling behind",
		}),
		Malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jobtag",
			Subsystem: "changefeed",
			Name:      "malformed_total",
			Help:      "Total number of notifications skipped as malformed",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jobtag",
			Subsystem: "changefeed",
			Name:      "subscribers",
			Help:      "Number of connected subscribers",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Published, m.Delivered, m.Dropped, m.Malformed, m.Subscribers)
	}
	return m
}
