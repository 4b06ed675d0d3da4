package provider

import (
	"errors"
	"fmt"
	"time"
)

type AuthMode string

const (
	AuthStaticKey     AuthMode = "static_key"
	AuthEmailPassword AuthMode = "email_password"
	AuthCookieSession AuthMode = "cookie_session"
	AuthCaptchaLogin  AuthMode = "captcha_login"
)

// Credentials holds the auth-mode-specific secrets for one provider.
// Which fields are meaningful depends on Config.AuthMode.
type Credentials struct {
	Key      string            `yaml:"key" mapstructure:"key" json:"-"`
	Keys     []string          `yaml:"keys" mapstructure:"keys" json:"-"`
	Email    string            `yaml:"email" mapstructure:"email" json:"-"`
	Password string            `yaml:"password" mapstructure:"password" json:"-"`
	Cookies  map[string]string `yaml:"cookies" mapstructure:"cookies" json:"-"`
}

// AllKeys returns the configured static keys as a list. Each key is treated
// as an independent sub-provider identity by multi-key adapters.
func (c Credentials) AllKeys() []string {
	if len(c.Keys) > 0 {
		return c.Keys
	}
	if c.Key != "" {
		return []string{c.Key}
	}
	return nil
}

// Config is one provider's entry in the configuration file. Immutable after load.
type Config struct {
	Name        string      `yaml:"name" mapstructure:"name" json:"name"`
	Enabled     bool        `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	AuthMode    AuthMode    `yaml:"auth_mode" mapstructure:"auth_mode" json:"auth_mode"`
	Credentials Credentials `yaml:"credentials" mapstructure:"credentials" json:"-"`
}

var (
	ErrConfigMissing = errors.New("provider configuration missing")
	ErrConfigInvalid = errors.New("provider configuration invalid")
)

// Validate checks that the credentials match the declared auth mode. Runs at
// load time so malformed configuration is rejected before any network call.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: provider name is empty", ErrConfigInvalid)
	}
	switch c.AuthMode {
	case AuthStaticKey:
		if len(c.Credentials.AllKeys()) == 0 {
			return fmt.Errorf("%w: %s: static_key mode requires at least one key", ErrConfigInvalid, c.Name)
		}
	case AuthEmailPassword, AuthCaptchaLogin:
		if c.Credentials.Email == "" || c.Credentials.Password == "" {
			return fmt.Errorf("%w: %s: %s mode requires email and password", ErrConfigInvalid, c.Name, c.AuthMode)
		}
	case AuthCookieSession:
		valid := false
		for _, v := range c.Credentials.Cookies {
			if v != "" {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%w: %s: cookie_session mode requires at least one non-empty cookie", ErrConfigInvalid, c.Name)
		}
	default:
		return fmt.Errorf("%w: %s: unknown auth_mode %q", ErrConfigInvalid, c.Name, c.AuthMode)
	}
	return nil
}

// Session is an authenticated context usable for one provider's requests.
// Owned by the session manager; discarded at process exit.
type Session struct {
	Provider      string            `json:"provider"`
	Key           string            `json:"-"`
	Keys          []string          `json:"-"`
	Token         string            `json:"-"`
	Cookies       map[string]string `json:"-"`
	EstablishedAt time.Time         `json:"established_at"`
	ExpiresAt     time.Time         `json:"expires_at,omitempty"`
}

// Expired reports whether the session is known-expired. A zero ExpiresAt
// means no expiry hint was supplied and the session is assumed live for
// the remainder of the run.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type Status string

const (
	StatusOK            Status = "ok"
	StatusAuthFailed    Status = "auth_failed"
	StatusNetworkFailed Status = "network_failed"
	StatusParseFailed   Status = "parse_failed"
	StatusDisabled      Status = "disabled"
)

// UsageMetric is the normalized unit of output. Immutable once produced.
type UsageMetric struct {
	Provider   string            `json:"provider"`
	Name       string            `json:"metric_name"`
	Value      float64           `json:"value"`
	Labels     map[string]string `json:"labels,omitempty"`
	ObservedAt time.Time         `json:"observed_at"`
}

// Result is one provider's outcome for one run.
type Result struct {
	Provider    string        `json:"provider"`
	Status      Status        `json:"status"`
	Metrics     []UsageMetric `json:"metrics"`
	ErrorDetail string        `json:"error_detail,omitempty"`
}

// RunBatch is the output of one scheduled invocation.
type RunBatch struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// Metrics returns all usage metrics gathered across the batch, in result order.
func (b *RunBatch) Metrics() []UsageMetric {
	var out []UsageMetric
	for _, r := range b.Results {
		out = append(out, r.Metrics...)
	}
	return out
}

// AuthError reports a session acquisition failure scoped to one provider.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
