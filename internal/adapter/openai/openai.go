package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

// usageWindow is the lookback for the usage and cost queries. The inspector
// runs at least daily, so one day of buckets covers the gap between runs.
const usageWindow = 24 * time.Hour

type Adapter struct {
	httpc *httpx.Client
}

func New(httpc *httpx.Client) *Adapter {
	return &Adapter{httpc: httpc}
}

func (a *Adapter) ID() string {
	return "openai"
}

func (a *Adapter) DisplayName() string {
	return "OpenAI"
}

func (a *Adapter) Modes() []provider.AuthMode {
	return []provider.AuthMode{provider.AuthStaticKey}
}

// Inspect reports organization token/request usage and spend over the last
// day. The usage endpoint is the primary signal; a costs failure degrades the
// result to partial metrics instead of dropping it.
func (a *Adapter) Inspect(ctx context.Context, sess *provider.Session) *provider.Result {
	if sess.Key == "" {
		return provider.Failed(a.ID(), provider.StatusAuthFailed, errors.New("openai requires an admin API key"))
	}

	client := NewClient(a.httpc, sess.Key)
	end := time.Now().UTC()
	start := end.Add(-usageWindow)

	usage, err := client.GetUsage(ctx, "completions", start, end)
	if err != nil {
		return provider.Failed(a.ID(), provider.Classify(err), err)
	}

	var inputTokens, outputTokens, requests int64
	for _, bucket := range usage.Data {
		for _, r := range bucket.Results {
			inputTokens += r.InputTokens
			outputTokens += r.OutputTokens
			requests += r.NumModelRequests
		}
	}

	now := time.Now()
	// Each metric owns its label map so the batch stays immutable.
	labels := func() map[string]string {
		return map[string]string{
			provider.LabelProvider:    a.ID(),
			provider.LabelKey:         provider.MaskKey(sess.Key),
			provider.LabelKeyType:     "admin",
			provider.LabelCalculation: "daily_tokens",
		}
	}
	result := &provider.Result{
		Provider: a.ID(),
		Status:   provider.StatusOK,
		Metrics: []provider.UsageMetric{
			{Provider: a.ID(), Name: provider.MetricUsed, Value: float64(inputTokens + outputTokens), Labels: labels(), ObservedAt: now},
			{Provider: a.ID(), Name: "usage_requests", Value: float64(requests), Labels: labels(), ObservedAt: now},
		},
	}

	costs, err := client.GetCosts(ctx, start, end)
	if err != nil {
		result.ErrorDetail = fmt.Sprintf("partial data: get_costs: %v", err)
		return result
	}

	total := 0.0
	for _, bucket := range costs.Data {
		for _, r := range bucket.Results {
			total += r.Amount.Value
		}
	}
	result.Metrics = append(result.Metrics, provider.UsageMetric{
		Provider:   a.ID(),
		Name:       "cost_usd",
		Value:      total,
		Labels:     labels(),
		ObservedAt: now,
	})

	return result
}
