package testutil

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// PromCounterHasValue reports whether the gathered metrics contain a counter
// with the given name, label values, and value. Label values must be passed
// in the label-name sort order the registry gathers them in.
func PromCounterHasValue(t testing.TB, metrics []*dto.MetricFamily, value float64, name string, labels ...string) bool {
	t.Helper()
	metric := findPromMetric(t, metrics, name, labels)
	if metric == nil {
		return false
	}
	return value == metric.GetCounter().GetValue()
}

func findPromMetric(t testing.TB, metrics []*dto.MetricFamily, name string, labels []string) *dto.Metric {
	t.Helper()
	for _, family := range metrics {
		if family.GetName() != name {
			continue
		}
	metricsLoop:
		for _, metric := range family.GetMetric() {
			require.Equal(t, len(labels), len(metric.GetLabel()))
			for i, label := range labels {
				if label != metric.GetLabel()[i].GetValue() {
					continue metricsLoop
				}
			}
			return metric
		}
	}
	return nil
}
