package coingecko

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

type Adapter struct {
	httpc *httpx.Client
}

func New(httpc *httpx.Client) *Adapter {
	return &Adapter{httpc: httpc}
}

func (a *Adapter) ID() string {
	return "coingecko"
}

func (a *Adapter) DisplayName() string {
	return "CoinGecko"
}

func (a *Adapter) Modes() []provider.AuthMode {
	return []provider.AuthMode{provider.AuthStaticKey}
}

// Inspect polls every configured key. Each key is an independent identity:
// one key failing does not fail the others, and the result is partial rather
// than lost.
func (a *Adapter) Inspect(ctx context.Context, sess *provider.Session) *provider.Result {
	if len(sess.Keys) == 0 {
		return provider.Failed(a.ID(), provider.StatusAuthFailed, errors.New("coingecko requires at least one pro API key"))
	}

	result := &provider.Result{
		Provider: a.ID(),
		Status:   provider.StatusOK,
	}

	var failures []string
	worst := provider.StatusOK
	for _, key := range sess.Keys {
		keyResp, err := NewClient(a.httpc, key).GetKey(ctx)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", provider.MaskKey(key), err))
			worst = provider.Classify(err)
			continue
		}

		used := float64(keyResp.MonthlyCallCredit - keyResp.CurrentRemainingMonthlyCalls)
		result.Metrics = append(result.Metrics, provider.QuotaMetrics(a.ID(),
			used,
			float64(keyResp.MonthlyCallCredit),
			map[string]string{
				provider.LabelKey:         provider.MaskKey(key),
				provider.LabelKeyType:     "pro",
				provider.LabelCalculation: "monthly_credits",
				"plan":                    keyResp.Plan,
			})...)
	}

	if len(failures) > 0 {
		result.ErrorDetail = strings.Join(failures, "; ")
		if len(result.Metrics) == 0 {
			result.Status = worst
		}
	}
	return result
}
