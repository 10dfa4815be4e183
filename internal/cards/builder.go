package cards

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Builder turns a provider's pool into a shuffled deck. Builds may run off
// the game loop, so the PRNG is guarded.
type Builder struct {
	provider    Provider
	placeholder string
	newID       func() string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewBuilder(provider Provider, seed int64) *Builder {
	return &Builder{
		provider:    provider,
		placeholder: Placeholder,
		newID:       uuid.NewString,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Build returns 2*pairCount cards: pairCount distinct identities, each
// duplicated, in uniformly random order.
func (b *Builder) Build(ctx context.Context, pairCount int) ([]Card, error) {
	if pairCount <= 0 {
		return nil, fmt.Errorf("pair count must be positive, got %d", pairCount)
	}

	pool, err := b.provider.GetCardPool(ctx, pairCount)
	if err != nil {
		var unavailable *ProviderUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &ProviderUnavailableError{Provider: b.provider.Name(), Err: err}
	}

	distinct := distinctIdentities(pool)
	if len(distinct) < pairCount {
		return nil, &InsufficientCardPoolError{Requested: pairCount, Available: len(distinct)}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	shuffle(b.rng, distinct)
	deck := make([]Card, 0, 2*pairCount)
	for _, id := range distinct[:pairCount] {
		sources := normalizeSources(id.Sources, b.placeholder)
		for i := 0; i < 2; i++ {
			deck = append(deck, Card{
				ID:      b.newID(),
				PairKey: id.Key,
				Label:   id.Label,
				Sources: slices.Clone(sources),
			})
		}
	}
	shuffle(b.rng, deck)

	return deck, nil
}

// shuffle is a Fisher-Yates permutation.
func shuffle[T any](rng *rand.Rand, s []T) {
	rng.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// distinctIdentities drops identities without a key and repeats of a key,
// keeping the first occurrence.
func distinctIdentities(pool []Identity) []Identity {
	seen := make(map[string]bool, len(pool))
	out := make([]Identity, 0, len(pool))
	for _, id := range pool {
		key := strings.TrimSpace(id.Key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		id.Key = key
		if id.Label == "" {
			id.Label = key
		}
		out = append(out, id)
	}
	return out
}

// normalizeSources trims the chain, removes blanks and repeats, and makes
// sure it ends with the placeholder.
func normalizeSources(sources []string, placeholder string) []string {
	out := make([]string, 0, len(sources)+1)
	for _, s := range sources {
		s = strings.TrimSpace(s)
		if s == "" || s == placeholder || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return append(out, placeholder)
}
