// config holds the configuration for dcod, which may come from a
// YAML file as well as from flags, and the per-repository settings
// read from `.github/dco.yml`.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	ConfigPath = "/etc/dcod/conf"
	ConfigName = "dcod.yaml"
	ConfigType = "yaml"

	DefaultStatusContext = "DCO"

	LogFormatFmt  = "fmt"
	LogFormatJSON = "json"
)

// Config is the daemon's configuration. Field names are bound to
// flags in cmd/dcod; the mapstructure tags are the keys used in a
// config file.
type Config struct {
	LogFormat     string `mapstructure:"logFormat"`
	Listen        string `mapstructure:"listen"`
	ListenMetrics string `mapstructure:"listenMetrics"`

	GitHubURL         string  `mapstructure:"githubUrl"`
	GitHubTokenFile   string  `mapstructure:"githubTokenFile"`
	GitHubRPS         float64 `mapstructure:"githubRps"`
	GitHubBurst       int     `mapstructure:"githubBurst"`
	WebhookSecretFile string  `mapstructure:"webhookSecretFile"`

	StatusContext      string        `mapstructure:"statusContext"`
	LookupTimeout      time.Duration `mapstructure:"lookupTimeout"`
	MembershipCacheTTL time.Duration `mapstructure:"membershipCacheTtl"`

	MemcachedHostname string        `mapstructure:"memcachedHostname"`
	MemcachedPort     int           `mapstructure:"memcachedPort"`
	MemcachedService  string        `mapstructure:"memcachedService"`
	MemcachedTimeout  time.Duration `mapstructure:"memcachedTimeout"`

	CheckForUpdates bool `mapstructure:"checkForUpdates"`
}

func Defaults() Config {
	return Config{
		LogFormat:          LogFormatFmt,
		Listen:             ":3030",
		GitHubRPS:          10,
		GitHubBurst:        20,
		StatusContext:      DefaultStatusContext,
		LookupTimeout:      10 * time.Second,
		MembershipCacheTTL: 5 * time.Minute,
		MemcachedPort:      11211,
		MemcachedService:   "memcached",
		MemcachedTimeout:   time.Second,
		CheckForUpdates:    true,
	}
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case LogFormatFmt, LogFormatJSON:
	default:
		return fmt.Errorf("log format %q is not one of %q, %q", c.LogFormat, LogFormatFmt, LogFormatJSON)
	}
	if c.Listen == "" {
		return errors.New("listen address must not be empty")
	}
	if c.StatusContext == "" {
		return errors.New("status context must not be empty")
	}
	if c.GitHubRPS <= 0 {
		return fmt.Errorf("GitHub requests per second must be positive, got %v", c.GitHubRPS)
	}
	if c.GitHubBurst <= 0 {
		return fmt.Errorf("GitHub burst must be positive, got %d", c.GitHubBurst)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup timeout must be positive, got %s", c.LookupTimeout)
	}
	if c.MembershipCacheTTL <= 0 {
		return fmt.Errorf("membership cache TTL must be positive, got %s", c.MembershipCacheTTL)
	}
	return nil
}
