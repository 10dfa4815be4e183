package game

import (
	"errors"

	"go-pairs/internal/cards"
	"go-pairs/internal/round"
	"go-pairs/internal/state"

	"github.com/rs/zerolog"
)

// Cursor is the keyboard position on the board.
type Cursor struct {
	Row int
	Col int
}

// Game wraps a round controller with the keyboard cursor, the session
// tally and the banner shown above the board. It is independent of the UI.
type Game struct {
	Round   *round.Controller
	Session *Session
	Cursor  Cursor
	Banner  string

	log zerolog.Logger
}

// NewGame takes over ctrl's listener.
func NewGame(ctrl *round.Controller, log zerolog.Logger) *Game {
	g := &Game{
		Round:   ctrl,
		Session: NewSession(),
		log:     log,
	}
	ctrl.SetListener(g.observe)
	return g
}

func (g *Game) observe(e state.Event) {
	switch e := e.(type) {
	case state.ComboBonusFired:
		g.Banner = e.Text
	case state.PhaseChanged:
		switch e.Phase {
		case state.PhaseActive:
			g.Banner = ""
		case state.PhaseWon:
			g.Banner = "You won!"
			g.Session.Record(g.Round.Snapshot())
		case state.PhaseLost:
			g.Banner = "Time's up!"
			g.Session.Record(g.Round.Snapshot())
		case state.PhaseIdle:
			g.Banner = ""
		}
	}
}

// Move shifts the cursor, clamped to the board.
func (g *Game) Move(dRow, dCol int) {
	snap := g.Round.Snapshot()
	if snap.Rows == 0 || snap.Cols == 0 {
		return
	}
	g.Cursor.Row = clamp(g.Cursor.Row+dRow, 0, snap.Rows-1)
	g.Cursor.Col = clamp(g.Cursor.Col+dCol, 0, snap.Cols-1)
}

// FlipAtCursor flips the card under the cursor.
func (g *Game) FlipAtCursor() {
	card, ok := g.Round.Snapshot().CardAt(g.Cursor.Row, g.Cursor.Col)
	if !ok {
		return
	}
	g.Round.Flip(card.ID)
}

func (g *Game) Hint() {
	g.Round.UseHint()
}

// RequestStart opens a start for the selected difficulty. When ok is true
// the caller must build the deck for req and hand it to FinishStart.
func (g *Game) RequestStart() (req round.Request, ok bool) {
	req, ok, err := g.Round.BeginStart(g.Round.Selected())
	if err != nil {
		g.Banner = err.Error()
		return round.Request{}, false
	}
	if ok {
		g.Banner = "Dealing..."
	}
	return req, ok
}

// FinishStart commits a built deck and reports whether it was installed.
// Stale decks are dropped silently.
func (g *Game) FinishStart(req round.Request, deck []cards.Card, buildErr error) bool {
	err := g.Round.CommitStart(req, deck, buildErr)
	switch {
	case err == nil:
		g.Cursor = Cursor{}
		return true
	case errors.Is(err, round.ErrStaleStart):
	default:
		g.log.Error().Err(err).Msg("could not start round")
		g.Banner = "Could not deal cards: " + err.Error()
	}
	return false
}

// Reset abandons the round and clears the board.
func (g *Game) Reset() {
	g.Round.Reset()
	g.Cursor = Cursor{}
}

// SelectIndex chooses the i-th difficulty, smallest board first.
func (g *Game) SelectIndex(i int) {
	keys := g.Round.Difficulties()
	if i < 0 || i >= len(keys) {
		return
	}
	if err := g.Round.Select(keys[i]); err != nil {
		g.Banner = err.Error()
		return
	}
	if g.Round.Phase() != state.PhaseActive {
		g.Cursor = Cursor{}
	}
}

// BrokenImage reports that src failed for a card and returns the image to
// try next.
func (g *Game) BrokenImage(cardID, src string) (string, bool) {
	next, ok := g.Round.ReportBrokenImage(cardID, src)
	if ok && next != src {
		g.log.Debug().Str("card", cardID).Str("failed", src).Str("source", next).Msg("image fallback")
	}
	return next, ok
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
