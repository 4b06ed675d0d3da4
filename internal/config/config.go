package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

type Config struct {
	Providers []provider.Config `yaml:"providers" mapstructure:"providers"`
	Settings  Settings          `yaml:"settings" mapstructure:"settings"`
}

type Settings struct {
	Timeout     time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	Concurrency int               `yaml:"concurrency" mapstructure:"concurrency"`
	DNSOverride map[string]string `yaml:"dns_override" mapstructure:"dns_override"`
	Relay       httpx.RelayConfig `yaml:"relay" mapstructure:"relay"`
	Captcha     CaptchaSettings   `yaml:"captcha" mapstructure:"captcha"`
	Push        PushSettings      `yaml:"push" mapstructure:"push"`
}

type CaptchaSettings struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type PushSettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	URL     string `yaml:"url" mapstructure:"url"`
	Job     string `yaml:"job" mapstructure:"job"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "usage-inspector"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := DefaultConfig()

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)

	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, err
	}

	for i := range cfg.Providers {
		expandCredentials(&cfg.Providers[i].Credentials)
	}

	return cfg, nil
}

func Save(cfg *Config, configFile string) error {
	path := configFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "usage-inspector", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Timeout:     30 * time.Second,
			Concurrency: 4,
			// The Birdeye API sits behind a Cloudflare path that fails from
			// datacenter resolvers; dialing the origin directly avoids it.
			DNSOverride: map[string]string{
				"multichain-api.birdeye.so": "37.59.30.17",
			},
			Relay: httpx.RelayConfig{
				Endpoint: "http://localhost:8191/v1",
			},
			Captcha: CaptchaSettings{
				Timeout: 60 * time.Second,
			},
			Push: PushSettings{
				Enabled: true,
				URL:     "http://localhost:9091",
				Job:     "cron-apikey-usage",
			},
		},
	}
}

// expandCredentials resolves ${VAR} references so secrets can live in the
// environment instead of the config file.
func expandCredentials(c *provider.Credentials) {
	c.Key = os.ExpandEnv(c.Key)
	for i := range c.Keys {
		c.Keys[i] = os.ExpandEnv(c.Keys[i])
	}
	c.Email = os.ExpandEnv(c.Email)
	c.Password = os.ExpandEnv(c.Password)
	for k, v := range c.Cookies {
		c.Cookies[k] = os.ExpandEnv(v)
	}
}

// Store is the credential store: a pure lookup over the loaded provider
// configurations, preserving declared order. Validation happens once at
// construction so malformed entries are caught before any network call;
// an invalid entry poisons only its own provider, never its siblings.
type Store struct {
	order   []string
	entries map[string]provider.Config
	invalid map[string]error
}

func NewStore(cfg *Config) (*Store, error) {
	s := &Store{
		entries: make(map[string]provider.Config, len(cfg.Providers)),
		invalid: make(map[string]error),
	}

	for _, pc := range cfg.Providers {
		if _, dup := s.entries[pc.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate provider %q", provider.ErrConfigInvalid, pc.Name)
		}
		s.order = append(s.order, pc.Name)
		s.entries[pc.Name] = pc

		// Disabled entries skip shape validation: they never run, and
		// operators routinely blank out credentials when disabling.
		if pc.Enabled {
			if err := pc.Validate(); err != nil {
				s.invalid[pc.Name] = err
			}
		}
	}

	return s, nil
}

// Resolve returns the configuration for one provider. It fails with
// ErrConfigMissing for unknown names and with the recorded ErrConfigInvalid
// for entries that failed shape validation at load.
func (s *Store) Resolve(name string) (provider.Config, error) {
	pc, ok := s.entries[name]
	if !ok {
		return provider.Config{}, fmt.Errorf("%w: %s", provider.ErrConfigMissing, name)
	}
	if err := s.invalid[name]; err != nil {
		return provider.Config{}, err
	}
	return pc, nil
}

// Providers returns all configured provider names in declared order.
func (s *Store) Providers() []string {
	return s.order
}
