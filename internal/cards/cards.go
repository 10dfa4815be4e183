// Package cards builds shuffled decks of face-down pairs from a pool of
// card identities supplied by a Provider.
package cards

import (
	"context"
	"fmt"
)

// Placeholder is the guaranteed-available image that terminates every
// source chain.
const Placeholder = "placeholder.png"

// Identity is one distinct card face offered by a provider. Sources are
// ordered best to worst.
type Identity struct {
	Key     string
	Label   string
	Sources []string
}

// Card is one physical card on the board. The two cards of a pair share
// PairKey and have distinct IDs.
type Card struct {
	ID      string
	PairKey string
	Label   string
	Sources []string
}

// Source returns the image candidate at position i of the fallback chain,
// clamped to the last entry.
func (c Card) Source(i int) string {
	if len(c.Sources) == 0 {
		return Placeholder
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.Sources) {
		i = len(c.Sources) - 1
	}
	return c.Sources[i]
}

// Provider supplies card identities.
type Provider interface {
	Name() string
	// GetCardPool returns at least minCount identities when the pool is
	// large enough. A short pool is not an error here; the builder reports it.
	GetCardPool(ctx context.Context, minCount int) ([]Identity, error)
}

// InsufficientCardPoolError reports a pool with fewer distinct identities
// than the board needs.
type InsufficientCardPoolError struct {
	Requested int
	Available int
}

func (e *InsufficientCardPoolError) Error() string {
	return fmt.Sprintf("card pool too small: need %d distinct cards, have %d", e.Requested, e.Available)
}

// ProviderUnavailableError reports that the card pool could not be fetched
// at all. Broken individual image sources are not this error.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("card provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}
