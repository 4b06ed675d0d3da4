package provider

import "time"

// Stable metric names shared by all adapters so dashboards can compare
// providers across runs.
const (
	MetricUsed      = "usage_used"
	MetricLimit     = "usage_limit"
	MetricRemaining = "usage_remaining"
	MetricRatio     = "usage_ratio"
)

// Well-known label keys.
const (
	LabelProvider    = "provider"
	LabelKey         = "key"
	LabelKeyType     = "key_type"
	LabelCalculation = "usage_calculation"
)

// QuotaMetrics builds the standard used/limit/remaining/ratio metric set for
// one provider (or one key of a multi-key provider). Extra labels are merged
// into every produced metric.
func QuotaMetrics(providerName string, used, limit float64, labels map[string]string) []UsageMetric {
	now := time.Now()

	base := map[string]string{LabelProvider: providerName}
	for k, v := range labels {
		base[k] = v
	}

	mk := func(name string, value float64) UsageMetric {
		l := make(map[string]string, len(base))
		for k, v := range base {
			l[k] = v
		}
		return UsageMetric{
			Provider:   providerName,
			Name:       name,
			Value:      value,
			Labels:     l,
			ObservedAt: now,
		}
	}

	metrics := []UsageMetric{
		mk(MetricUsed, used),
		mk(MetricLimit, limit),
		mk(MetricRemaining, limit-used),
	}
	if limit > 0 {
		metrics = append(metrics, mk(MetricRatio, used/limit))
	}
	return metrics
}

// MaskKey shortens an API key for safe use in logs and metric labels.
func MaskKey(key string) string {
	if len(key) > 14 {
		return key[:10] + "..." + key[len(key)-4:]
	}
	if len(key) > 8 {
		return key[:8] + "..."
	}
	return "***"
}
