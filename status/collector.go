package status

import (
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a Registry to prometheus
// Metrics register lazily, so the collector is unchecked and describes nothing
type Collector struct {
	reg       *Registry
	namespace string
}

// NewCollector wraps reg; dotted keys become namespace_key_with_underscores
func NewCollector(reg *Registry, namespace string) *Collector {
	return &Collector{reg: reg, namespace: namespace}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.reg.Bools.Range(func(k string, v *atomic.Bool) {
		val := 0.0
		if v.Load() {
			val = 1
		}
		ch <- prometheus.MustNewConstMetric(c.desc(k, nil), prometheus.GaugeValue, val)
	})
	c.reg.Ints.Range(func(k string, v *atomic.Int64) {
		ch <- prometheus.MustNewConstMetric(c.desc(k, nil), prometheus.GaugeValue, float64(v.Load()))
	})
	c.reg.Floats.Range(func(k string, v *AtomicFloat) {
		ch <- prometheus.MustNewConstMetric(c.desc(k, nil), prometheus.GaugeValue, v.Get())
	})
	c.reg.Strings.Range(func(k string, v *AtomicString) {
		ch <- prometheus.MustNewConstMetric(c.desc(k, []string{"value"}), prometheus.GaugeValue, 1, v.Load())
	})
}

func (c *Collector) desc(key string, labels []string) *prometheus.Desc {
	name := prometheus.BuildFQName(c.namespace, "", MetricName(key))
	return prometheus.NewDesc(name, "engine metric "+key, labels, nil)
}

// MetricName maps a dotted registry key onto the prometheus charset
func MetricName(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
