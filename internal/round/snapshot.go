package round

import (
	"fmt"

	"go-pairs/internal/difficulty"
	"go-pairs/internal/state"
)

type CardView struct {
	ID     string
	Label  string
	Source string
	Visual state.Visual
}

// Snapshot is a read-only copy of the round for rendering.
type Snapshot struct {
	Difficulty     difficulty.Key
	Phase          state.Phase
	Loading        bool
	Rows           int
	Cols           int
	Cards          []CardView
	Clicks         int
	PairsMatched   int
	PairsRequired  int
	PairsLeft      int
	TimeRemaining  int
	TimeBudget     int
	HintsRemaining int
	CanUseHint     bool
	Locked         bool
	Score          int
	Combo          int
}

func (c *Controller) Snapshot() Snapshot {
	s := c.state
	snap := Snapshot{
		Difficulty:     c.selected,
		Phase:          s.Phase(),
		Loading:        c.loading,
		Rows:           s.Profile.Rows,
		Cols:           s.Profile.Cols,
		Cards:          make([]CardView, len(s.Deck)),
		Clicks:         s.Clicks,
		PairsMatched:   s.PairsMatched,
		PairsRequired:  s.PairsRequired,
		PairsLeft:      s.PairsLeft(),
		TimeRemaining:  s.TimeRemaining,
		TimeBudget:     s.Profile.TimeBudgetSeconds,
		HintsRemaining: s.HintsRemaining(),
		CanUseHint:     s.CanUseHint(),
		Locked:         s.Locked,
		Score:          c.score.Display(),
		Combo:          s.Combo.Len(),
	}
	for i, card := range s.Deck {
		snap.Cards[i] = CardView{
			ID:     card.ID,
			Label:  card.Label,
			Source: s.Source(i),
			Visual: s.Visual[i],
		}
	}
	return snap
}

// CardAt returns the card at row r, column col of the board.
func (s Snapshot) CardAt(r, col int) (CardView, bool) {
	i := r*s.Cols + col
	if r < 0 || col < 0 || col >= s.Cols || i >= len(s.Cards) {
		return CardView{}, false
	}
	return s.Cards[i], true
}

// FormatTime renders seconds as MM:SS.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
