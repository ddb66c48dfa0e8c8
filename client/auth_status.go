package client

import (
	"context"
	"sync"
	"time"

	"issue-blog-cms/models"
)

const (
	authStatusTTL      = 5 * time.Minute
	authStatusErrorTTL = 30 * time.Second
	authStatusEndpoint = "/api/auth/status"
)

// AuthStatusChecker asks the local status route whether the current session is
// an admin. Results are cached; starting a check aborts any check still in flight.
type AuthStatusChecker struct {
	client *Client
	now    func() time.Time

	mu       sync.Mutex
	cached   *models.AuthStatusResponse
	cachedAt time.Time
	ttl      time.Duration
	cancel   context.CancelFunc
	seq      uint64
}

func NewAuthStatusChecker(c *Client) *AuthStatusChecker {
	return &AuthStatusChecker{client: c, now: time.Now}
}

// Check returns the cached status unless it has expired or force is set.
func (a *AuthStatusChecker) Check(ctx context.Context, force bool) (models.AuthStatusResponse, error) {
	a.mu.Lock()
	if !force && a.cached != nil && a.now().Sub(a.cachedAt) < a.ttl {
		status := *a.cached
		a.mu.Unlock()
		return status, nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.seq++
	seq := a.seq
	a.mu.Unlock()
	defer cancel()

	status, err := Get[models.AuthStatusResponse](ctx, a.client, authStatusEndpoint, NoCache)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.seq {
		// Superseded by a newer check; leave the cache to it.
		return models.AuthStatusResponse{}, context.Canceled
	}
	a.cancel = nil
	if err != nil {
		// Remember the failure briefly so a broken server is not hammered.
		a.store(models.AuthStatusResponse{}, authStatusErrorTTL)
		return models.AuthStatusResponse{}, err
	}
	a.store(status, authStatusTTL)
	return status, nil
}

// Invalidate forgets the cached status, e.g. after login or logout.
func (a *AuthStatusChecker) Invalidate() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}

func (a *AuthStatusChecker) store(status models.AuthStatusResponse, ttl time.Duration) {
	a.cached = &status
	a.cachedAt = a.now()
	a.ttl = ttl
}
