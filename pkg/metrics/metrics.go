// Package metrics provides Prometheus counters for the rendering
// pipeline.
package metrics

import (
	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lumen"

// Collector counts rendered records, message fallbacks and
// reconfigurations. It satisfies format.Observer.
type Collector struct {
	rendered     *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	reconfigured *prometheus.CounterVec
	rebinds      prometheus.Counter
}

// New registers the collector's metrics with reg. A nil reg leaves them
// unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		rendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "format",
			Name:      "records_total",
			Help:      "Records rendered, by formatter and level",
		}, []string{"formatter", "level"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "format",
			Name:      "fallbacks_total",
			Help:      "Messages emitted raw because their arguments did not fit",
		}, []string{"formatter", "code"}),
		reconfigured: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "reconfigurations_total",
			Help:      "Successful configuration changes, by option",
		}, []string{"option"}),
		rebinds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "destination_changes_total",
			Help:      "Times the output destination was replaced",
		}),
	}
}

// Rendered counts one formatted record.
func (c *Collector) Rendered(formatter, levelName string) {
	if c == nil {
		return
	}
	c.rendered.WithLabelValues(formatter, levelName).Inc()
}

// Fallback counts one message that fell back to raw output.
func (c *Collector) Fallback(formatter string, err error) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(formatter, string(errors.GetErrorCode(err))).Inc()
}

// Reconfigured counts one applied option.
func (c *Collector) Reconfigured(option string) {
	if c == nil {
		return
	}
	c.reconfigured.WithLabelValues(option).Inc()
}

// DestinationChanged counts one destination rebind.
func (c *Collector) DestinationChanged() {
	if c == nil {
		return
	}
	c.rebinds.Inc()
}
