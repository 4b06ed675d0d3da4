package twitterapi

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
	return "twitterapi"
}

func (a *Adapter) DisplayName() string {
	return "TwitterAPI.io"
}

func (a *Adapter) Modes() []provider.AuthMode {
	return []provider.AuthMode{provider.AuthStaticKey}
}

func (a *Adapter) Inspect(ctx context.Context, sess *provider.Session) *provider.Result {
	if len(sess.Keys) == 0 {
		return provider.Failed(a.ID(), provider.StatusAuthFailed, errors.New("twitterapi requires at least one API key"))
	}

	result := &provider.Result{
		Provider: a.ID(),
		Status:   provider.StatusOK,
	}

	var failures []string
	worst := provider.StatusOK
	for _, key := range sess.Keys {
		info, err := NewClient(a.httpc, key).GetInfo(ctx)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", provider.MaskKey(key), err))
			worst = provider.Classify(err)
			continue
		}

		// Only the remaining balance is exposed, so report a zero-usage
		// quota sized at the balance. The remaining gauge is the signal
		// dashboards alert on.
		result.Metrics = append(result.Metrics, provider.QuotaMetrics(a.ID(),
			0,
			float64(info.RechargeCredits),
			map[string]string{
				provider.LabelKey:         provider.MaskKey(key),
				provider.LabelKeyType:     "api",
				provider.LabelCalculation: "recharge_credits",
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
