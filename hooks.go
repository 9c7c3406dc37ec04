package authorgraph

import (
	"sync"

	"github.com/agentstation/authorgraph/pkg/reconcile"
)

// OutcomeHook is called for every outcome the engine produces, including
// author creations that happen while reconciling a publication. Hooks may
// run concurrently.
type OutcomeHook func(reconcile.Outcome)

// Hooks registers outcome callbacks.
type Hooks interface {
	OnOutcome(OutcomeHook)
}

// hooks manages event callbacks
type hooks struct {
	mu        sync.RWMutex
	onOutcome []OutcomeHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnOutcome registers a callback for outcomes
func (h *hooks) OnOutcome(fn OutcomeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onOutcome = append(h.onOutcome, fn)
}

func (h *hooks) trigger(o reconcile.Outcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onOutcome {
		fn(o)
	}
}

// OnOutcome implements Hooks.
func (e *engine) OnOutcome(fn OutcomeHook) {
	e.hooks.OnOutcome(fn)
}

// emit reports o to every hook and returns it.
func (e *engine) emit(o reconcile.Outcome) reconcile.Outcome {
	e.hooks.trigger(o)
	return o
}
