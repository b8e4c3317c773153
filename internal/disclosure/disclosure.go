// Package disclosure tracks the one-way reveal of access credentials.
// The reveal is a presentation ritual, not a security boundary: once a guest
// has chosen to see a code it stays visible for that exact code value, and
// rotating the code re-locks it.
package disclosure

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/pkg/events"
	"github.com/casaguide/concierge/pkg/logger"
)

// Store is the durable key-value capability backing revealed flags.
// Any store with these two operations suffices.
type Store interface {
	Get(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value bool) error
}

type Policy struct {
	store Store
	bus   events.Publisher
}

func New(store Store, bus events.Publisher) *Policy {
	return &Policy{store: store, bus: bus}
}

// Keys carry a hash of the code rather than the code itself so the backing
// store never holds raw credentials.
func key(property domain.PropertyID, code string) string {
	sum := sha256.Sum256([]byte(code))
	return fmt.Sprintf("disclosure:%s:%x", property, sum)
}

// IsRevealed reports whether the credential is visible to the guest.
// Integração unit numbers are not secrets, so they are always visible.
// alwaysVisible forces disclosure for stages where the ritual no longer
// serves a purpose (mid-stay and later).
func (p *Policy) IsRevealed(ctx context.Context, property domain.PropertyID, code string, alwaysVisible bool) (bool, error) {
	if property == domain.PropertyIntegracao || alwaysVisible {
		return true, nil
	}
	if code == "" {
		return false, nil
	}
	return p.store.Get(ctx, key(property, code))
}

// Reveal flips the flag for this exact code value and reports whether this
// call performed the false-to-true transition. It is idempotent: the
// celebratory event fires exactly once, on that transition only.
func (p *Policy) Reveal(ctx context.Context, property domain.PropertyID, code string) (bool, error) {
	if property == domain.PropertyIntegracao || code == "" {
		return false, nil
	}

	already, err := p.store.Get(ctx, key(property, code))
	if err != nil {
		return false, fmt.Errorf("disclosure lookup: %w", err)
	}
	if already {
		return false, nil
	}

	if err := p.store.Set(ctx, key(property, code), true); err != nil {
		return false, fmt.Errorf("disclosure save: %w", err)
	}

	if p.bus != nil {
		ev := events.AccessRevealedEvent{
			PropertyID: string(property),
			RevealedAt: time.Now(),
		}
		if err := p.bus.Publish(ctx, events.AccessRevealed, ev); err != nil {
			logger.WarnContext(ctx, "Failed to publish reveal event", "error", err)
		}
	}

	return true, nil
}

// MemoryStore is an in-process Store for tests and single-node dev runs.
type MemoryStore struct {
	flags map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[string]bool)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (bool, error) {
	return m.flags[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value bool) error {
	m.flags[key] = value
	return nil
}
