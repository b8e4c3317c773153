// Package dangerzone implements the confirm-debounced manual deactivation
// flow for a reservation. The first press arms a short confirmation window;
// a second press inside the window commits, anything else lets it lapse.
package dangerzone

import (
	"context"
	"sync"
	"time"

	"github.com/casaguide/concierge/pkg/clock"
)

type Status string

const (
	// StatusArmed means the press opened (or re-opened) a confirmation window.
	StatusArmed Status = "awaiting_confirm"
	// StatusCommitted means the press confirmed the transition and the new
	// value was handed to the persistence commit.
	StatusCommitted Status = "committed"
	// StatusNoop means the press asked for the value already in effect.
	StatusNoop Status = "noop"
)

// CommitFunc persists the override. The target value is passed explicitly:
// committing must never read back mutable state that another tick could
// have overwritten in the meantime.
type CommitFunc func(ctx context.Context, target bool) error

// Scheduler owns the cancellable expiry callbacks for confirmation windows.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func() bool)
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}

type pendingConfirm struct {
	target    bool
	expiresAt time.Time
	gen       uint64
	cancel    func() bool
}

// Controller tracks the danger-zone state for a single reservation being
// edited. It is not shared across viewers; two admins racing on the same
// record resolve last-write-wins at the persistence layer.
type Controller struct {
	mu     sync.Mutex
	clk    clock.Clock
	sched  Scheduler
	window time.Duration
	commit CommitFunc

	deactivated bool
	pending     *pendingConfirm
	gen         uint64
}

func New(clk clock.Clock, sched Scheduler, window time.Duration, deactivated bool, commit CommitFunc) *Controller {
	return &Controller{
		clk:         clk,
		sched:       sched,
		window:      window,
		commit:      commit,
		deactivated: deactivated,
	}
}

// RequestDeactivate handles a press of the deactivate action.
func (c *Controller) RequestDeactivate(ctx context.Context) (Status, error) {
	return c.request(ctx, true)
}

// RequestReactivate handles a press of the reactivate action.
func (c *Controller) RequestReactivate(ctx context.Context) (Status, error) {
	return c.request(ctx, false)
}

func (c *Controller) request(ctx context.Context, target bool) (Status, error) {
	c.mu.Lock()

	if c.deactivated == target && c.pending == nil {
		c.mu.Unlock()
		return StatusNoop, nil
	}

	now := c.clk.Now()

	if p := c.pending; p != nil && p.target == target && now.Before(p.expiresAt) {
		// Second press inside the window: commit.
		p.cancel()
		c.pending = nil
		c.deactivated = target
		c.mu.Unlock()

		// Local state is already settled; a failed write is surfaced to the
		// caller and deliberately not rolled back here.
		return StatusCommitted, c.commit(ctx, target)
	}

	// First press, expired window, or a different action: replace the timer.
	if c.pending != nil {
		c.pending.cancel()
	}
	c.gen++
	gen := c.gen
	p := &pendingConfirm{
		target:    target,
		expiresAt: now.Add(c.window),
		gen:       gen,
		cancel:    c.sched.AfterFunc(c.window, func() { c.expire(gen) }),
	}
	c.pending = p
	c.mu.Unlock()

	return StatusArmed, nil
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil && c.pending.gen == gen {
		c.pending = nil
	}
}

// Deactivated reports the settled override value.
func (c *Controller) Deactivated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deactivated
}

// Awaiting reports whether a confirmation window is open and for which
// target value.
func (c *Controller) Awaiting() (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil || !c.clk.Now().Before(c.pending.expiresAt) {
		return false, false
	}
	return true, c.pending.target
}

// Close cancels any open confirmation window. Called on unmount of the
// editing session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.cancel()
		c.pending = nil
	}
}
