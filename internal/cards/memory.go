package cards

import (
	"context"
	"slices"
)

// MemoryProvider serves a fixed pool held in memory.
type MemoryProvider struct {
	name string
	pool []Identity
}

func NewMemoryProvider(name string, pool []Identity) *MemoryProvider {
	return &MemoryProvider{name: name, pool: pool}
}

func (m *MemoryProvider) Name() string {
	return m.name
}

func (m *MemoryProvider) GetCardPool(ctx context.Context, minCount int) ([]Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(m.pool), nil
}

// BuiltinPrefix marks images drawn by the client itself rather than loaded.
const BuiltinPrefix = "builtin/"

var builtinNames = []string{
	"ant", "bat", "bear", "bee", "boar", "cat", "cow", "crab",
	"crow", "deer", "dog", "dove", "duck", "eel", "elk", "emu",
	"fox", "frog", "goat", "hare", "hawk", "ibex", "koi", "lion",
	"lynx", "mole", "moth", "mule", "newt", "owl", "ox", "panda",
	"pig", "puma", "rat", "seal", "swan", "toad", "wolf", "yak",
}

// Builtin is the offline pool. It is large enough for an 8x8 board.
func Builtin() *MemoryProvider {
	pool := make([]Identity, 0, len(builtinNames))
	for _, name := range builtinNames {
		pool = append(pool, Identity{
			Key:     name,
			Label:   name,
			Sources: []string{BuiltinPrefix + name + ".png"},
		})
	}
	return NewMemoryProvider("builtin", pool)
}
