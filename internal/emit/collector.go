package emit

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

// batchCollector exposes one run's usage metrics as const gauges. Metrics
// sharing a name are grouped under one descriptor with the union of their
// label keys, so mixed-provider label sets stay exposition-consistent.
// Samples carry no timestamps: the Pushgateway rejects them, and the push
// time is the observation time for all practical purposes.
type batchCollector struct {
	groups []metricGroup
}

type metricGroup struct {
	desc      *prometheus.Desc
	labelKeys []string
	samples   []provider.UsageMetric
}

func newBatchCollector(batch *provider.RunBatch) *batchCollector {
	byName := make(map[string][]provider.UsageMetric)
	var names []string
	for _, m := range batch.Metrics() {
		if _, seen := byName[m.Name]; !seen {
			names = append(names, m.Name)
		}
		byName[m.Name] = append(byName[m.Name], m)
	}
	sort.Strings(names)

	c := &batchCollector{}
	for _, name := range names {
		samples := byName[name]

		keySet := make(map[string]struct{})
		for _, m := range samples {
			for k := range m.Labels {
				keySet[k] = struct{}{}
			}
		}
		keys := make([]string, 0, len(keySet))
		for k := range keySet {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		c.groups = append(c.groups, metricGroup{
			desc: prometheus.NewDesc(name,
				"API key usage metric gathered by the usage inspector.",
				keys, nil),
			labelKeys: keys,
			samples:   samples,
		})
	}
	return c
}

func (c *batchCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, g := range c.groups {
		ch <- g.desc
	}
}

func (c *batchCollector) Collect(ch chan<- prometheus.Metric) {
	for _, g := range c.groups {
		for _, m := range g.samples {
			values := make([]string, len(g.labelKeys))
			for i, k := range g.labelKeys {
				values[i] = m.Labels[k]
			}
			ch <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, m.Value, values...)
		}
	}
}
