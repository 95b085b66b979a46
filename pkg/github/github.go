// Package github is the DCO checker's view of the GitHub API: the
// commits of a pull request, organisation membership, the
// repository's DCO settings, and commit statuses.
package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v28/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/fluxcd/dco/pkg/middleware"
)

const (
	DefaultBaseURL = "https://api.github.com/"

	perPage = 100
)

type Options struct {
	// Token is an OAuth or installation token. May be empty, in which
	// case requests are unauthenticated.
	Token string
	// BaseURL is the API URL of a GitHub Enterprise installation;
	// empty means github.com.
	BaseURL string
	// Transport underlies the authenticated, rate limited client. nil
	// means http.DefaultTransport.
	Transport http.RoundTripper
	// Limiters, if not nil, rate limits requests per API host.
	Limiters *middleware.RateLimiters
}

type Client struct {
	client *gh.Client
}

// NewClient makes a client for the API at opts.BaseURL.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing GitHub URL %s", baseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Limiters != nil {
		transport = opts.Limiters.RoundTripper(transport, u.Host)
	}
	httpClient := &http.Client{Transport: transport}
	if opts.Token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	if opts.BaseURL == "" {
		return &Client{client: gh.NewClient(httpClient)}, nil
	}
	client, err := gh.NewEnterpriseClient(baseURL, baseURL, httpClient)
	if err != nil {
		return nil, errors.Wrapf(err, "making GitHub Enterprise client for %s", baseURL)
	}
	return &Client{client: client}, nil
}

// NewFromClient wraps an existing go-github client.
func NewFromClient(c *gh.Client) *Client {
	return &Client{client: c}
}
