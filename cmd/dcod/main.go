package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/fluxcd/dco/pkg/checker"
	"github.com/fluxcd/dco/pkg/config"
	"github.com/fluxcd/dco/pkg/github"
	transport "github.com/fluxcd/dco/pkg/http"
	"github.com/fluxcd/dco/pkg/http/webhook"
	"github.com/fluxcd/dco/pkg/membership"
	"github.com/fluxcd/dco/pkg/membership/memcached"
	"github.com/fluxcd/dco/pkg/middleware"
)

var version = "unversioned"

const (
	envGitHubToken = "GITHUB_TOKEN"

	shutdownTimeout          = 10 * time.Second
	memcachedUpdateInterval  = time.Minute
	memcachedMaxIdleConns    = 4
	defaultWebhookSecretFile = "/etc/dcod/webhook-secret"
)

func usage(fs *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "DESCRIPTION\n")
		fmt.Fprintf(os.Stderr, "  dcod checks that the commits of GitHub pull requests are signed off\n")
		fmt.Fprintf(os.Stderr, "  by their authors, and posts the result as a commit status.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		fs.PrintDefaults()
	}
}

func readSecretFile(path string) (string, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytes)), nil
}

func main() {
	// Flag domain.
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	fs.Usage = usage(fs)
	versionFlag := fs.Bool("version", false, "get version number")

	conf, err := loadConfig(fs, os.Args[1:])
	if *versionFlag {
		fmt.Println(version)
		os.Exit(0)
	}

	// Logger domain.
	var logger log.Logger
	{
		switch conf.LogFormat {
		case config.LogFormatJSON:
			logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		default:
			logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		}
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	if err != nil {
		logger.Log("err", err)
		os.Exit(1)
	}
	logger.Log("version", version)

	// Secrets.
	var token string
	var secret []byte
	{
		token = os.Getenv(envGitHubToken)
		if conf.GitHubTokenFile != "" {
			if token, err = readSecretFile(conf.GitHubTokenFile); err != nil {
				logger.Log("err", err)
				os.Exit(1)
			}
		}
		if token == "" {
			logger.Log("warning", "no GitHub token supplied; statuses cannot be posted without one")
		}

		path := conf.WebhookSecretFile
		if path == "" {
			path = defaultWebhookSecretFile
		}
		s, err := readSecretFile(path)
		if err != nil {
			logger.Log("err", err, "help", "a webhook secret is required, use --webhook-secret-file")
			os.Exit(1)
		}
		if s == "" {
			logger.Log("err", "webhook secret is empty", "path", path)
			os.Exit(1)
		}
		secret = []byte(s)
	}

	// GitHub component.
	var ghClient *github.Client
	{
		logger := log.With(logger, "component", "github")
		ghClient, err = github.NewClient(context.Background(), github.Options{
			Token:   token,
			BaseURL: conf.GitHubURL,
			Limiters: &middleware.RateLimiters{
				RPS:    conf.GitHubRPS,
				Burst:  conf.GitHubBurst,
				Logger: logger,
			},
		})
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
		url := conf.GitHubURL
		if url == "" {
			url = github.DefaultBaseURL
		}
		logger.Log("url", url, "rps", conf.GitHubRPS, "burst", conf.GitHubBurst)
	}

	// Membership cache component.
	var cache membership.Cache
	{
		logger := log.With(logger, "component", "memcached")
		switch {
		case conf.MemcachedHostname == "":
			logger.Log("info", "no memcached hostname given; keeping membership in memory")
			cache = membership.NewMemoryCache()
		case conf.MemcachedService == "":
			addr := fmt.Sprintf("%s:%d", conf.MemcachedHostname, conf.MemcachedPort)
			mc := memcached.NewFixedServerMemcacheClient(memcached.MemcacheConfig{
				Timeout:        conf.MemcachedTimeout,
				UpdateInterval: memcachedUpdateInterval,
				Logger:         logger,
				MaxIdleConns:   memcachedMaxIdleConns,
			}, addr)
			defer mc.Stop()
			logger.Log("addr", addr)
			cache = mc
		default:
			mc := memcached.NewMemcacheClient(memcached.MemcacheConfig{
				Host:           conf.MemcachedHostname,
				Service:        conf.MemcachedService,
				Timeout:        conf.MemcachedTimeout,
				UpdateInterval: memcachedUpdateInterval,
				Logger:         logger,
				MaxIdleConns:   memcachedMaxIdleConns,
			})
			defer mc.Stop()
			logger.Log("host", conf.MemcachedHostname, "service", conf.MemcachedService)
			cache = mc
		}
	}

	// Checker (business logic) domain.
	var service checker.Service
	{
		logger := log.With(logger, "component", "checker")
		lookup := membership.Cached(ghClient.IsMember, cache, conf.MembershipCacheTTL, log.With(logger, "component", "membership"))
		service = checker.New(ghClient, lookup, checker.Options{
			StatusContext: conf.StatusContext,
			LookupTimeout: conf.LookupTimeout,
			Post:          true,
		})
		service = checker.LoggingMiddleware(logger)(service)
		service = checker.Instrument(service)
	}

	if conf.CheckForUpdates {
		updateChecker := checkForUpdates(conf, log.With(logger, "component", "checkpoint"))
		defer updateChecker.Stop()
	}

	// Mechanical stuff.
	errc := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()

	// Transport domain.
	var servers []*http.Server
	{
		router := transport.NewAPIRouter()
		if conf.ListenMetrics == "" {
			router.Get(transport.Metrics).Handler(promhttp.Handler())
		} else {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			servers = append(servers, &http.Server{Addr: conf.ListenMetrics, Handler: mux})
		}
		handler := webhook.NewHandler(service, secret, log.With(logger, "component", "webhook"), router)
		servers = append(servers, &http.Server{Addr: conf.Listen, Handler: handler})

		for _, srv := range servers {
			srv := srv
			go func() {
				logger := log.With(logger, "transport", "HTTP")
				logger.Log("addr", srv.Addr)
				errc <- srv.ListenAndServe()
			}()
		}
	}

	// Go!
	logger.Log("exiting", <-errc)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Log("err", err, "addr", srv.Addr)
		}
	}
}
