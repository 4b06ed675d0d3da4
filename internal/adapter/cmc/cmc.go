package cmc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
	"github.com/jinbangyi/apikey-usage-inspector/internal/session"
)

type Adapter struct {
	httpc *httpx.Client
}

func New(httpc *httpx.Client) *Adapter {
	return &Adapter{httpc: httpc}
}

func (a *Adapter) ID() string {
	return "coinmarketcap"
}

func (a *Adapter) DisplayName() string {
	return "CoinMarketCap"
}

func (a *Adapter) Modes() []provider.AuthMode {
	return []provider.AuthMode{provider.AuthCookieSession, provider.AuthCaptchaLogin}
}

// Authenticator runs the captcha-gated login flow: seed login to obtain the
// captcha security context, hand the challenge to the external solver, then
// exchange the solved token plus credentials for a portal session cookie.
// Cookie-replay configurations bypass this entirely.
type Authenticator struct {
	client *Client
	solver session.CaptchaSolver
}

func NewAuthenticator(httpc *httpx.Client, solver session.CaptchaSolver) *Authenticator {
	return &Authenticator{client: NewClient(httpc), solver: solver}
}

func (au *Authenticator) Login(ctx context.Context, creds provider.Credentials) (*provider.Session, error) {
	if au.solver == nil {
		return nil, errors.New("cmc captcha login requires a solver collaborator")
	}

	init, err := au.client.SeedLogin(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("cmc seed login: %w", err)
	}

	challenge, err := au.client.GetCaptchaChallenge(ctx, init.CaptchaSecurityID)
	if err != nil {
		return nil, fmt.Errorf("cmc captcha challenge: %w", err)
	}

	solution, err := au.solver.Solve(ctx, session.Challenge{
		Provider:   "coinmarketcap",
		SecurityID: init.CaptchaSecurityID,
		ImageURL:   captchaImageBase + challenge.Data.Path2,
		Tag:        challenge.Data.Tag,
		Kind:       challenge.Data.CaptchaType,
	})
	if err != nil {
		return nil, fmt.Errorf("cmc captcha solve: %w", err)
	}

	captchaToken, err := au.client.ValidateCaptcha(ctx, init.CaptchaSecurityID, challenge.Data.Sig, solution)
	if err != nil {
		return nil, fmt.Errorf("cmc captcha validate: %w", err)
	}

	cookie, err := au.client.Login(ctx, creds.Email, creds.Password, captchaToken, init.CaptchaSecurityID)
	if err != nil {
		return nil, fmt.Errorf("cmc login: %w", err)
	}

	return &provider.Session{
		Provider:      "coinmarketcap",
		Cookies:       map[string]string{"s": cookie},
		EstablishedAt: time.Now(),
	}, nil
}

func (a *Adapter) Inspect(ctx context.Context, sess *provider.Session) *provider.Result {
	token := sess.Cookies["s"]
	if token == "" {
		return provider.Failed(a.ID(), provider.StatusAuthFailed, errors.New("cmc requires the portal session cookie 's'"))
	}

	client := NewClient(a.httpc)

	stats, err := client.GetPlanStats(ctx, token)
	if err != nil {
		return provider.Failed(a.ID(), provider.Classify(err), err)
	}

	// Plan info supplies the monthly limit. Usage alone is still worth
	// emitting when the plan lookup fails, so that path degrades to a
	// partial parse failure instead of dropping the provider.
	info, infoErr := client.GetPlanInfo(ctx, token)

	used := float64(stats.Month.CreditsUsed)
	labels := map[string]string{
		provider.LabelKeyType:     "portal",
		provider.LabelCalculation: "monthly_credits",
	}

	if infoErr != nil || info.KeyPlan == nil || info.KeyPlan.Plan.LimitMonthly <= 0 {
		detail := "plan info missing monthly limit"
		if infoErr != nil {
			detail = infoErr.Error()
		}
		return &provider.Result{
			Provider: a.ID(),
			Status:   provider.StatusParseFailed,
			Metrics: []provider.UsageMetric{{
				Provider:   a.ID(),
				Name:       provider.MetricUsed,
				Value:      used,
				Labels:     map[string]string{provider.LabelProvider: a.ID(), provider.LabelKeyType: "portal", provider.LabelCalculation: "monthly_credits"},
				ObservedAt: time.Now(),
			}},
			ErrorDetail: detail,
		}
	}

	labels["plan"] = info.KeyPlan.Plan.Label
	return &provider.Result{
		Provider: a.ID(),
		Status:   provider.StatusOK,
		Metrics:  provider.QuotaMetrics(a.ID(), used, float64(info.KeyPlan.Plan.LimitMonthly), labels),
	}
}
