// Package difficulty holds the static table of round profiles.
package difficulty

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownDifficulty is returned for keys that are not in the table.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Key string

const (
	Easy   Key = "easy"
	Medium Key = "medium"
	Hard   Key = "hard"
)

// Profile describes the board and budgets for one difficulty.
type Profile struct {
	Key               Key
	Rows              int
	Cols              int
	TimeBudgetSeconds int
	HintAllowance     int
}

// PairsRequired is the number of pairs on a Rows x Cols board.
func (p Profile) PairsRequired() int {
	return p.Rows * p.Cols / 2
}

// Validate checks that the board has a positive, even number of cells and
// the budgets are not negative.
func (p Profile) Validate() error {
	cells := p.Rows * p.Cols
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%s: board must have rows and columns, got %dx%d", p.Key, p.Rows, p.Cols)
	}
	if cells%2 != 0 {
		return fmt.Errorf("%s: board %dx%d has an odd number of cells", p.Key, p.Rows, p.Cols)
	}
	if p.TimeBudgetSeconds < 0 || p.HintAllowance < 0 {
		return fmt.Errorf("%s: budgets must not be negative", p.Key)
	}
	return nil
}

// Table maps keys to profiles.
type Table map[Key]Profile

// Default returns the standard easy/medium/hard table.
func Default() Table {
	return Table{
		Easy:   {Key: Easy, Rows: 4, Cols: 4, TimeBudgetSeconds: 20, HintAllowance: 1},
		Medium: {Key: Medium, Rows: 6, Cols: 6, TimeBudgetSeconds: 60, HintAllowance: 2},
		Hard:   {Key: Hard, Rows: 8, Cols: 8, TimeBudgetSeconds: 90, HintAllowance: 3},
	}
}

// Lookup returns the profile for key.
func (t Table) Lookup(key Key) (Profile, error) {
	p, ok := t[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, key)
	}
	return p, nil
}

// Validate checks every profile in the table.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("difficulty table is empty")
	}
	for key, p := range t {
		if p.Key != key {
			return fmt.Errorf("profile stored under %q is keyed %q", key, p.Key)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the table keys ordered by board size.
func (t Table) Keys() []Key {
	keys := make([]Key, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := t[keys[i]], t[keys[j]]
		if a.Rows*a.Cols != b.Rows*b.Cols {
			return a.Rows*a.Cols < b.Rows*b.Cols
		}
		return keys[i] < keys[j]
	})
	return keys
}

// ParseKey normalises user input into a Key. It does not check the table.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return "", fmt.Errorf("%w: empty key", ErrUnknownDifficulty)
	}
	return k, nil
}
