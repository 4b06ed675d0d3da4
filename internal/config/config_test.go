package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
providers:
  - name: quicknode
    enabled: true
    auth_mode: static_key
    credentials:
      key: qn-test-key
  - name: birdeye
    enabled: true
    auth_mode: email_password
    credentials:
      email: ops@example.com
      password: hunter2
settings:
  timeout: 45s
  concurrency: 2
  push:
    enabled: true
    url: http://pushgw:9091
    job: cron-apikey-usage
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(cfg.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(cfg.Providers))
	}
	if cfg.Providers[0].Name != "quicknode" || cfg.Providers[1].Name != "birdeye" {
		t.Errorf("declared order not preserved: %v", []string{cfg.Providers[0].Name, cfg.Providers[1].Name})
	}
	if cfg.Providers[0].Credentials.Key != "qn-test-key" {
		t.Errorf("unexpected key: %q", cfg.Providers[0].Credentials.Key)
	}
	if cfg.Providers[1].AuthMode != provider.AuthEmailPassword {
		t.Errorf("unexpected auth mode: %s", cfg.Providers[1].AuthMode)
	}

	if cfg.Settings.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.Settings.Timeout)
	}
	if cfg.Settings.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Settings.Concurrency)
	}
	if cfg.Settings.Push.URL != "http://pushgw:9091" {
		t.Errorf("unexpected push URL: %s", cfg.Settings.Push.URL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
providers: []
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Settings.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Settings.Timeout)
	}
	if cfg.Settings.Concurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", cfg.Settings.Concurrency)
	}
	if cfg.Settings.Push.Job != "cron-apikey-usage" {
		t.Errorf("expected default push job, got %q", cfg.Settings.Push.Job)
	}
	if cfg.Settings.DNSOverride["multichain-api.birdeye.so"] == "" {
		t.Error("expected default DNS override for the birdeye host")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("INSPECTOR_TEST_KEY", "expanded-secret")
	t.Setenv("INSPECTOR_TEST_PW", "expanded-pw")

	path := writeConfig(t, `
providers:
  - name: quicknode
    enabled: true
    auth_mode: static_key
    credentials:
      key: ${INSPECTOR_TEST_KEY}
  - name: birdeye
    enabled: true
    auth_mode: email_password
    credentials:
      email: ops@example.com
      password: ${INSPECTOR_TEST_PW}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Providers[0].Credentials.Key != "expanded-secret" {
		t.Errorf("key not expanded: %q", cfg.Providers[0].Credentials.Key)
	}
	if cfg.Providers[1].Credentials.Password != "expanded-pw" {
		t.Errorf("password not expanded: %q", cfg.Providers[1].Credentials.Password)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Providers = []provider.Config{
		{
			Name:        "coingecko",
			Enabled:     true,
			AuthMode:    provider.AuthStaticKey,
			Credentials: provider.Credentials{Keys: []string{"cg-1", "cg-2"}},
		},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Providers) != 1 {
		t.Fatalf("expected 1 provider, got %d", len(loaded.Providers))
	}
	if !reflect.DeepEqual(loaded.Providers[0].Credentials.Keys, []string{"cg-1", "cg-2"}) {
		t.Errorf("keys did not round-trip: %v", loaded.Providers[0].Credentials.Keys)
	}
}

func TestNewStore_InvalidEntryScopedToProvider(t *testing.T) {
	cfg := &Config{
		Providers: []provider.Config{
			{Name: "quicknode", Enabled: true, AuthMode: provider.AuthStaticKey, Credentials: provider.Credentials{Key: "ok"}},
			{Name: "birdeye", Enabled: true, AuthMode: provider.AuthEmailPassword}, // no credentials
		},
	}

	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("one invalid entry must not fail store construction: %v", err)
	}

	if _, err := store.Resolve("quicknode"); err != nil {
		t.Errorf("valid sibling must resolve, got %v", err)
	}

	_, err = store.Resolve("birdeye")
	if !errors.Is(err, provider.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid for the broken entry, got %v", err)
	}
}

func TestNewStore_DisabledSkipsValidation(t *testing.T) {
	cfg := &Config{
		Providers: []provider.Config{
			{Name: "coinmarketcap", Enabled: false, AuthMode: provider.AuthCaptchaLogin},
		},
	}

	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := store.Resolve("coinmarketcap"); err != nil {
		t.Errorf("disabled entry must resolve without validation, got %v", err)
	}
}

func TestNewStore_DuplicateName(t *testing.T) {
	cfg := &Config{
		Providers: []provider.Config{
			{Name: "quicknode", Enabled: true, AuthMode: provider.AuthStaticKey, Credentials: provider.Credentials{Key: "a"}},
			{Name: "quicknode", Enabled: true, AuthMode: provider.AuthStaticKey, Credentials: provider.Credentials{Key: "b"}},
		},
	}

	if _, err := NewStore(cfg); err == nil {
		t.Fatal("expected error for duplicate provider name, got nil")
	}
}

func TestStore_Resolve_Missing(t *testing.T) {
	store, err := NewStore(&Config{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = store.Resolve("no-such-provider")
	if !errors.Is(err, provider.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}

func TestStore_ProvidersOrder(t *testing.T) {
	cfg := &Config{
		Providers: []provider.Config{
			{Name: "twitterapi", Enabled: true, AuthMode: provider.AuthStaticKey, Credentials: provider.Credentials{Key: "t"}},
			{Name: "coingecko", Enabled: true, AuthMode: provider.AuthStaticKey, Credentials: provider.Credentials{Key: "c"}},
			{Name: "openai", Enabled: true, AuthMode: provider.AuthStaticKey, Credentials: provider.Credentials{Key: "o"}},
		},
	}

	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"twitterapi", "coingecko", "openai"}
	if got := store.Providers(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected declared order %v, got %v", want, got)
	}
}
