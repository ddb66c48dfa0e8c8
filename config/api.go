package config

import (
	"fmt"
	"sync"

	"issue-blog-cms/models"
)

// ExecutionContext selects how the API client reaches the upstream tracker.
type ExecutionContext int

const (
	// ServerContext holds the secret token and calls the upstream directly.
	ServerContext ExecutionContext = iota
	// ProxyContext never sees the token and goes through the local /api routes.
	ProxyContext
)

func (c ExecutionContext) String() string {
	switch c {
	case ServerContext:
		return "server"
	case ProxyContext:
		return "proxy"
	default:
		return "unknown"
	}
}

const (
	EnvAPIBaseURL = "NEXT_PUBLIC_API_BASE_URL"
	EnvAPIToken   = "API_TOKEN"
	EnvRepoName   = "NEXT_PUBLIC_REPO_NAME"

	DefaultRepoName = "blog"
)

// APIConfig is the resolved upstream connection view.
type APIConfig struct {
	APIBaseURL string
	APIToken   string
	RepoName   string
	Context    ExecutionContext
}

// IsServerSide is true only in the server context with a token present.
func (c APIConfig) IsServerSide() bool {
	return c.Context == ServerContext && c.APIToken != ""
}

func (c APIConfig) IsConfigured() bool {
	if c.APIBaseURL == "" {
		return false
	}
	if c.IsServerSide() {
		return c.APIToken != ""
	}
	return true
}

// Resolver computes the APIConfig once and hands out the same value afterwards.
type Resolver struct {
	ctx    ExecutionContext
	lookup func(string) string

	once sync.Once
	cfg  APIConfig
	err  error
}

// NewResolver builds a resolver reading from lookup (os.Getenv in production).
func NewResolver(ctx ExecutionContext, lookup func(string) string) *Resolver {
	return &Resolver{ctx: ctx, lookup: lookup}
}

// Get returns the memoized config or a wrapped models.ErrConfiguration when
// the base URL is missing. On error the config still carries what was found,
// so the health check can report each variable.
func (r *Resolver) Get() (APIConfig, error) {
	r.once.Do(func() {
		r.cfg, r.err = resolve(r.ctx, r.lookup)
	})
	return r.cfg, r.err
}

func resolve(ctx ExecutionContext, lookup func(string) string) (APIConfig, error) {
	cfg := APIConfig{
		APIBaseURL: lookup(EnvAPIBaseURL),
		RepoName:   lookup(EnvRepoName),
		Context:    ctx,
	}
	if cfg.RepoName == "" {
		cfg.RepoName = DefaultRepoName
	}
	// The token is a server secret; a proxied process must never pick it up
	// even when it happens to be present in its environment.
	if ctx == ServerContext {
		cfg.APIToken = lookup(EnvAPIToken)
	}
	if cfg.APIBaseURL == "" {
		return cfg, fmt.Errorf("%w: %s environment variable is required", models.ErrConfiguration, EnvAPIBaseURL)
	}
	return cfg, nil
}
