package main

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fluxcd/dco/pkg/config"
)

const configFlag = "config"

// defineConfigFlags defines the flags that can also be set in a
// config file. These are bound to the config.Config field of the same
// name in v, so that viper can match them with the config file keys.
func defineConfigFlags(fs *pflag.FlagSet, v *viper.Viper, bail func(error)) {
	bind := func(fieldName, flagName string) error {
		configStruct := reflect.TypeOf(config.Config{})
		field, ok := configStruct.FieldByName(fieldName)
		if !ok {
			return fmt.Errorf("attempt to bind a flag to a field not present in config.Config, %q", fieldName)
		}
		mappedName := field.Name
		if namePart := strings.Split(field.Tag.Get("mapstructure"), ",")[0]; namePart != "" {
			if namePart == "-" {
				return fmt.Errorf(`attempt to bind a flag to a config field tagged as ignored, %q`, field.Name)
			}
			mappedName = namePart
		}
		return v.BindPFlag(mappedName, fs.Lookup(flagName))
	}

	bindOrBail := func(fieldName, flagName string) {
		if err := bind(fieldName, flagName); err != nil {
			bail(err)
		}
	}

	defineString := func(fieldName, flagName, def, desc string) {
		fs.String(flagName, def, desc)
		bindOrBail(fieldName, flagName)
	}

	defineStringP := func(fieldName, flagName, short, def, desc string) {
		fs.StringP(flagName, short, def, desc)
		bindOrBail(fieldName, flagName)
	}

	defineBool := func(fieldName, flagName string, def bool, desc string) {
		fs.Bool(flagName, def, desc)
		bindOrBail(fieldName, flagName)
	}

	defineDuration := func(fieldName, flagName string, def time.Duration, desc string) {
		fs.Duration(flagName, def, desc)
		bindOrBail(fieldName, flagName)
	}

	defineInt := func(fieldName, flagName string, def int, desc string) {
		fs.Int(flagName, def, desc)
		bindOrBail(fieldName, flagName)
	}

	defineFloat64 := func(fieldName, flagName string, def float64, desc string) {
		fs.Float64(flagName, def, desc)
		bindOrBail(fieldName, flagName)
	}

	defaults := config.Defaults()

	defineString("LogFormat", "log-format", defaults.LogFormat, `change the log format; one of "fmt", "json"`)
	defineStringP("Listen", "listen", "l", defaults.Listen, "listen address for GitHub webhook deliveries and health checks")
	defineString("ListenMetrics", "listen-metrics", defaults.ListenMetrics, "listen address for Prometheus metrics; empty serves them on --listen at /metrics")

	// GitHub
	defineString("GitHubURL", "github-url", defaults.GitHubURL, "API URL of a GitHub Enterprise installation, e.g., https://github.example.com/api/v3/; empty means github.com")
	defineString("GitHubTokenFile", "github-token-file", defaults.GitHubTokenFile, "path to a file containing the GitHub token; if empty, the environment variable "+envGitHubToken+" is used")
	defineFloat64("GitHubRPS", "github-rps", defaults.GitHubRPS, "maximum GitHub API requests per second")
	defineInt("GitHubBurst", "github-burst", defaults.GitHubBurst, "maximum number of GitHub API requests in a burst")
	defineString("WebhookSecretFile", "webhook-secret-file", defaults.WebhookSecretFile, "path to a file containing the webhook secret shared with GitHub")

	// checking
	defineString("StatusContext", "status-context", defaults.StatusContext, "name of the commit status posted to GitHub")
	defineDuration("LookupTimeout", "lookup-timeout", defaults.LookupTimeout, "timeout for each organisation membership lookup")
	defineDuration("MembershipCacheTTL", "membership-cache-ttl", defaults.MembershipCacheTTL, "how long organisation membership is remembered")

	defineString("MemcachedHostname", "memcached-hostname", defaults.MemcachedHostname, "hostname for memcached service to share membership between replicas; empty keeps it in memory")
	defineInt("MemcachedPort", "memcached-port", defaults.MemcachedPort, "memcached port, used when --memcached-service is empty")
	defineString("MemcachedService", "memcached-service", defaults.MemcachedService, "SRV service used to discover memcache servers; empty uses --memcached-hostname:--memcached-port")
	defineDuration("MemcachedTimeout", "memcached-timeout", defaults.MemcachedTimeout, "maximum time to wait before giving up on memcached requests")

	defineBool("CheckForUpdates", "check-for-updates", defaults.CheckForUpdates, "periodically check for new releases")
}

// loadConfig works out the daemon configuration from args. Flags
// given explicitly override values from the --config file, which
// override the flag defaults.
func loadConfig(fs *pflag.FlagSet, args []string) (config.Config, error) {
	var conf config.Config

	v := viper.New()
	fs.String(configFlag, "", fmt.Sprintf("path to a YAML config file, e.g., %s/%s; flags given as well take precedence", config.ConfigPath, config.ConfigName))
	var bindErr error
	defineConfigFlags(fs, v, func(err error) {
		if bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return conf, bindErr
	}
	if err := fs.Parse(args); err != nil {
		return conf, err
	}

	if path, _ := fs.GetString(configFlag); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(config.ConfigType)
		if err := v.ReadInConfig(); err != nil {
			return conf, errors.Wrapf(err, "reading config file %s", path)
		}
	}
	if err := v.UnmarshalExact(&conf); err != nil {
		return conf, errors.Wrap(err, "decoding configuration")
	}
	return conf, conf.Validate()
}
