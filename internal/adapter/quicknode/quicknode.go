package quicknode

import (
	"context"
	"errors"

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
	return "quicknode"
}

func (a *Adapter) DisplayName() string {
	return "QuickNode"
}

func (a *Adapter) Modes() []provider.AuthMode {
	return []provider.AuthMode{provider.AuthStaticKey}
}

func (a *Adapter) Inspect(ctx context.Context, sess *provider.Session) *provider.Result {
	if sess.Key == "" {
		return provider.Failed(a.ID(), provider.StatusAuthFailed, errors.New("quicknode requires a console API key"))
	}

	client := NewClient(a.httpc, sess.Key)
	usage, err := client.GetUsage(ctx)
	if err != nil {
		return provider.Failed(a.ID(), provider.Classify(err), err)
	}

	return &provider.Result{
		Provider: a.ID(),
		Status:   provider.StatusOK,
		Metrics: provider.QuotaMetrics(a.ID(),
			float64(usage.Data.CreditsUsed),
			float64(usage.Data.Limit),
			map[string]string{
				provider.LabelKeyType:     "console",
				provider.LabelCalculation: "monthly_credits",
			}),
	}
}
