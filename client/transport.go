package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"issue-blog-cms/config"
	"issue-blog-cms/models"
)

// Transport decides where a request goes and which credentials it carries.
type Transport interface {
	Context() config.ExecutionContext
	// URL resolves an endpoint path (with query) to an absolute URL.
	URL(endpoint string) string
	HTTPClient() *http.Client
}

// DirectTransport talks to the upstream tracker at {base}/{repo} and attaches
// the bearer token through an oauth2 static token source.
type DirectTransport struct {
	base string
	http *http.Client
}

// NewDirectTransport requires a server-side config; the token never leaves
// this transport.
func NewDirectTransport(cfg config.APIConfig, base http.RoundTripper) (*DirectTransport, error) {
	if !cfg.IsServerSide() {
		return nil, fmt.Errorf("%w: direct transport needs %s in the server context", models.ErrConfiguration, config.EnvAPIToken)
	}
	if base == nil {
		base = http.DefaultTransport
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: base})
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})

	return &DirectTransport{
		base: strings.TrimRight(cfg.APIBaseURL, "/") + "/" + strings.Trim(cfg.RepoName, "/"),
		http: oauth2.NewClient(ctx, ts),
	}, nil
}

func (t *DirectTransport) Context() config.ExecutionContext { return config.ServerContext }
func (t *DirectTransport) URL(endpoint string) string       { return t.base + endpoint }
func (t *DirectTransport) HTTPClient() *http.Client         { return t.http }

// ProxyTransport calls this application's own /api routes and carries no secret.
type ProxyTransport struct {
	origin string
	http   *http.Client
}

// NewProxyTransport targets origin (e.g. http://localhost:8080). httpClient may
// carry a cookie jar for the admin session.
func NewProxyTransport(origin string, httpClient *http.Client) *ProxyTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ProxyTransport{
		origin: strings.TrimRight(origin, "/"),
		http:   httpClient,
	}
}

func (t *ProxyTransport) Context() config.ExecutionContext { return config.ProxyContext }
func (t *ProxyTransport) URL(endpoint string) string       { return t.origin + endpoint }
func (t *ProxyTransport) HTTPClient() *http.Client         { return t.http }

// NewTransport picks the strategy for ctx once, at construction.
func NewTransport(cfg config.APIConfig, origin string, httpClient *http.Client) (Transport, error) {
	switch cfg.Context {
	case config.ServerContext:
		var rt http.RoundTripper
		if httpClient != nil {
			rt = httpClient.Transport
		}
		return NewDirectTransport(cfg, rt)
	case config.ProxyContext:
		return NewProxyTransport(origin, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown execution context %d", cfg.Context)
	}
}

// UnavailableTransport stands in when the upstream is not configured. Every
// request fails with the configuration error, so reads degrade and writes
// report it instead of the process refusing to start.
type UnavailableTransport struct {
	ctx  config.ExecutionContext
	err  error
	http *http.Client
}

func NewUnavailableTransport(ctx config.ExecutionContext, err error) *UnavailableTransport {
	if err == nil {
		err = models.ErrConfiguration
	}
	return &UnavailableTransport{
		ctx:  ctx,
		err:  err,
		http: &http.Client{Transport: failingRoundTripper{err: err}},
	}
}

func (t *UnavailableTransport) Context() config.ExecutionContext { return t.ctx }
func (t *UnavailableTransport) URL(endpoint string) string       { return "http://unconfigured.invalid" + endpoint }
func (t *UnavailableTransport) HTTPClient() *http.Client         { return t.http }

type failingRoundTripper struct{ err error }

func (f failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }
