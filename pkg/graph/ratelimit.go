package graph

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/agentstation/authorgraph/pkg/errors"
)

// Operation kinds used to pick a limiter.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// RateLimited wraps a Client with per-operation-kind rate limits.
type RateLimited struct {
	next         Client
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewRateLimited creates a rate-limited client. A non-positive rate disables limiting.
func NewRateLimited(next Client, requestsPerSecond float64, burst int) *RateLimited {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimited{
		next:         next,
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// SetRate overrides the limit for one operation kind.
func (r *RateLimited) SetRate(op string, requestsPerSecond float64, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if burst <= 0 {
		burst = r.defaultBurst
	}
	r.limiters[op] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (r *RateLimited) getLimiter(op string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[op]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, exists := r.limiters[op]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(r.defaultRate, r.defaultBurst)
	r.limiters[op] = limiter
	return limiter
}

// wait blocks for a token. A cancelled context maps to ErrCanceled, an
// expired one to ErrTimeout, and a wait the deadline cannot cover to
// ErrRateLimited. The limiter's own error stays in the chain.
func (r *RateLimited) wait(ctx context.Context, op string) error {
	err := r.getLimiter(op).Wait(ctx)
	if err == nil {
		return nil
	}
	kind := errors.ErrRateLimited
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		kind = errors.ErrCanceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = errors.ErrTimeout
	}
	return fmt.Errorf("%s limiter: %w: %w", op, kind, err)
}

// LoadEntities implements Client.
func (r *RateLimited) LoadEntities(ctx context.Context, ids []string) (map[string]*Entity, error) {
	if err := r.wait(ctx, OpRead); err != nil {
		return nil, err
	}
	return r.next.LoadEntities(ctx, ids)
}

// Search implements Client.
func (r *RateLimited) Search(ctx context.Context, query string) ([]string, error) {
	if err := r.wait(ctx, OpRead); err != nil {
		return nil, err
	}
	return r.next.Search(ctx, query)
}

// CreateItem implements Client.
func (r *RateLimited) CreateItem(ctx context.Context, item *Entity) (string, error) {
	if err := r.wait(ctx, OpWrite); err != nil {
		return "", err
	}
	return r.next.CreateItem(ctx, item)
}

// ApplyDiff implements Client. Empty diffs skip the limiter.
func (r *RateLimited) ApplyDiff(ctx context.Context, original, modified *Entity) (string, error) {
	if ComputeDiff(original, modified).IsEmpty() {
		return modified.ID, nil
	}
	if err := r.wait(ctx, OpWrite); err != nil {
		return "", err
	}
	return r.next.ApplyDiff(ctx, original, modified)
}
