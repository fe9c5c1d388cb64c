// Package metrics holds the Prometheus collectors shared by the console, the
// store and the web front end.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hbnb/pkg/domain"
)

// Command outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeUserError = "user_error"
	OutcomeError     = "error"
)

// Metrics bundles the collectors registered on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	commands   *prometheus.CounterVec
	storeOps   *prometheus.HistogramVec
	storeFails *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hbnb",
			Subsystem: "console",
			Name:      "commands_total",
			Help:      "Console commands executed, by verb and outcome.",
		}, []string{"verb", "outcome"}),
		storeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hbnb",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of store save and reload operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"driver", "op"}),
		storeFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hbnb",
			Subsystem: "store",
			Name:      "operation_failures_total",
			Help:      "Failed store save and reload operations.",
		}, []string{"driver", "op"}),
	}
	reg.MustRegister(
		m.commands,
		m.storeOps,
		m.storeFails,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCommand counts one executed verb. Nil receivers are ignored.
func (m *Metrics) ObserveCommand(verb, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(verb, outcome).Inc()
}

// ObserveStore records the duration and outcome of a store operation.
func (m *Metrics) ObserveStore(driver, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(driver, op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.storeFails.WithLabelValues(driver, op).Inc()
	}
}

// Snapshotter exposes the current object table.
type Snapshotter interface {
	All() map[string]domain.Model
}

// RegisterObjects adds a collector reporting hbnb_objects{class} gauges read
// from store at scrape time.
func (m *Metrics) RegisterObjects(store Snapshotter, classes []domain.Class) error {
	return m.Registry.Register(&objectCollector{store: store, classes: classes})
}

var objectsDesc = prometheus.NewDesc(
	"hbnb_objects",
	"Objects currently held in the store, by class.",
	[]string{"class"}, nil,
)

type objectCollector struct {
	store   Snapshotter
	classes []domain.Class
}

func (c *objectCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- objectsDesc
}

func (c *objectCollector) Collect(ch chan<- prometheus.Metric) {
	counts := make(map[domain.Class]int, len(c.classes))
	for _, class := range c.classes {
		counts[class] = 0
	}
	for _, m := range c.store.All() {
		counts[m.Class()]++
	}
	for class, n := range counts {
		ch <- prometheus.MustNewConstMetric(objectsDesc, prometheus.GaugeValue, float64(n), string(class))
	}
}
