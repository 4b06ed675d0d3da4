// Package session establishes and caches authenticated contexts for
// providers whose usage endpoints need more than a static key.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

// Authenticator performs a provider-specific login sequence. Adapter packages
// for email_password and captcha_login providers register one with the
// manager; static_key and cookie_session providers need none.
type Authenticator interface {
	Login(ctx context.Context, creds provider.Credentials) (*provider.Session, error)
}

// Manager caches one session per provider for the duration of a run.
// Safe for concurrent use by parallel provider inspections. The manager
// mutex only guards the maps; each provider carries its own lock so a slow
// login never blocks acquisition for unrelated providers.
type Manager struct {
	mu     sync.Mutex
	auths  map[string]Authenticator
	states map[string]*sessionState
	log    *slog.Logger
	now    func() time.Time
}

type sessionState struct {
	mu      sync.Mutex
	session *provider.Session
}

func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		auths:  make(map[string]Authenticator),
		states: make(map[string]*sessionState),
		log:    log,
		now:    time.Now,
	}
}

// RegisterAuthenticator binds a login implementation to a provider name.
func (m *Manager) RegisterAuthenticator(providerName string, a Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auths[providerName] = a
}

// Acquire returns a usable session for the provider, establishing one if
// needed. Idempotent within a run: repeated calls return the cached session
// unless it is known-expired, in which case it re-authenticates once.
// All failures come back as *provider.AuthError.
func (m *Manager) Acquire(ctx context.Context, cfg provider.Config) (*provider.Session, error) {
	m.mu.Lock()
	st, ok := m.states[cfg.Name]
	if !ok {
		st = &sessionState{}
		m.states[cfg.Name] = st
	}
	auth := m.auths[cfg.Name]
	m.mu.Unlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.session != nil && !st.session.Expired(m.now()) {
		return st.session, nil
	}

	s, err := m.establish(ctx, cfg, auth)
	if err != nil {
		return nil, &provider.AuthError{Provider: cfg.Name, Err: err}
	}
	st.session = s
	return s, nil
}

func (m *Manager) establish(ctx context.Context, cfg provider.Config, auth Authenticator) (*provider.Session, error) {
	switch cfg.AuthMode {
	case provider.AuthStaticKey:
		keys := cfg.Credentials.AllKeys()
		if len(keys) == 0 {
			return nil, errors.New("no static key configured")
		}
		return &provider.Session{
			Provider:      cfg.Name,
			Key:           keys[0],
			Keys:          keys,
			EstablishedAt: m.now(),
		}, nil

	case provider.AuthCookieSession:
		// Cookie validity is asserted by configuration, not probed; an
		// expired cookie shows up later as auth_failed for the provider.
		cookies := make(map[string]string, len(cfg.Credentials.Cookies))
		for k, v := range cfg.Credentials.Cookies {
			if k == "" || v == "" {
				return nil, fmt.Errorf("malformed cookie entry %q", k)
			}
			cookies[k] = v
		}
		if len(cookies) == 0 {
			return nil, errors.New("no cookies configured")
		}
		return &provider.Session{
			Provider:      cfg.Name,
			Cookies:       cookies,
			EstablishedAt: m.now(),
		}, nil

	case provider.AuthEmailPassword, provider.AuthCaptchaLogin:
		if auth == nil {
			return nil, fmt.Errorf("no authenticator registered for %s", cfg.Name)
		}
		return m.login(ctx, cfg, auth)

	default:
		return nil, fmt.Errorf("unsupported auth_mode %q", cfg.AuthMode)
	}
}

// login runs the provider's login sequence, retrying exactly once when the
// failure is a transient transport error. Bad credentials or an unsolved
// captcha are terminal for this run.
func (m *Manager) login(ctx context.Context, cfg provider.Config, auth Authenticator) (*provider.Session, error) {
	s, err := auth.Login(ctx, cfg.Credentials)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, httpx.ErrTransport) {
		return nil, err
	}

	m.log.Warn("login failed on transport error, retrying once",
		"provider", cfg.Name, "err", err)

	s, retryErr := auth.Login(ctx, cfg.Credentials)
	if retryErr != nil {
		return nil, retryErr
	}
	return s, nil
}
