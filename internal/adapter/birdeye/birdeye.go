package birdeye

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	return "birdeye"
}

func (a *Adapter) DisplayName() string {
	return "Birdeye"
}

func (a *Adapter) Modes() []provider.AuthMode {
	return []provider.AuthMode{provider.AuthEmailPassword}
}

// Authenticator performs the email/password login and is registered with the
// session manager so the login token is established once per run.
type Authenticator struct {
	client *Client
}

func NewAuthenticator(httpc *httpx.Client) *Authenticator {
	return &Authenticator{client: NewClient(httpc)}
}

func (au *Authenticator) Login(ctx context.Context, creds provider.Credentials) (*provider.Session, error) {
	token, err := au.client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("birdeye login: %w", err)
	}
	return &provider.Session{
		Provider:      "birdeye",
		Token:         token,
		EstablishedAt: time.Now(),
	}, nil
}

func (a *Adapter) Inspect(ctx context.Context, sess *provider.Session) *provider.Result {
	if sess.Token == "" {
		return provider.Failed(a.ID(), provider.StatusAuthFailed, errors.New("birdeye requires a login session token"))
	}

	client := NewClient(a.httpc)

	account, err := client.GetAccount(ctx, sess.Token)
	if err != nil {
		return provider.Failed(a.ID(), provider.Classify(err), err)
	}
	if !account.Success || account.Data.Subscription.ID == "" {
		return provider.Failed(a.ID(), provider.StatusParseFailed, errors.New("account response missing subscription"))
	}

	usage, err := client.GetUsage(ctx, account.Data.Subscription.ID, sess.Token)
	if err != nil {
		return provider.Failed(a.ID(), provider.Classify(err), err)
	}

	return &provider.Result{
		Provider: a.ID(),
		Status:   provider.StatusOK,
		Metrics: provider.QuotaMetrics(a.ID(),
			float64(usage.Data.Usage),
			float64(account.Data.Subscription.Plan.MonthlyUnits),
			map[string]string{
				provider.LabelKeyType:     "account",
				provider.LabelCalculation: "monthly_credits",
				"plan":                    account.Data.Subscription.Plan.Name,
			}),
	}
}
