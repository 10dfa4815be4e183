package state

import (
	"fmt"
	"time"
)

// Flip turns a face-down card face up. It does nothing unless the round is
// active, the board is unlocked and the card is face down. The second card
// of a selection is resolved immediately.
func (s *State) Flip(id string, now time.Time) Effects {
	var fx Effects
	if s.Phase() != PhaseActive || s.Locked {
		return fx
	}
	i, ok := s.index[id]
	if !ok || s.Visual[i] != FaceDown {
		return fx
	}

	s.Clicks++
	s.Visual[i] = FaceUp
	s.Flipped = append(s.Flipped, i)
	fx.emit(CardFlipped{ID: id, Visual: FaceUp})

	if len(s.Flipped) == 2 {
		s.resolve(now, &fx)
	}
	return fx
}

func (s *State) resolve(now time.Time, fx *Effects) {
	a, b := s.Flipped[0], s.Flipped[1]
	key := s.Deck[a].PairKey

	if key != s.Deck[b].PairKey {
		s.Locked = true
		fx.emit(PairResolved{PairKey: key, Matched: false})
		fx.after(TaskSettle, SettleDelay)
		return
	}

	s.Visual[a], s.Visual[b] = Matched, Matched
	s.PairsMatched++
	s.Flipped = s.Flipped[:0]
	fx.emit(CardFlipped{ID: s.Deck[a].ID, Visual: Matched})
	fx.emit(CardFlipped{ID: s.Deck[b].ID, Visual: Matched})
	fx.emit(PairResolved{PairKey: key, Matched: true})

	if s.Combo.Record(now) {
		s.TimeRemaining += ComboBonusSeconds
		fx.emit(ComboBonusFired{Text: fmt.Sprintf("Combo! +%ds", ComboBonusSeconds), Seconds: ComboBonusSeconds})
		fx.emit(TimeUpdated{Seconds: s.TimeRemaining})
	}

	if s.PairsMatched == s.PairsRequired {
		s.transition("win", fx)
	}
}

// Settle hides a failed pair once the settle delay has passed and unlocks
// the board.
func (s *State) Settle() Effects {
	var fx Effects
	if s.Phase() != PhaseActive || !s.Locked || s.Revealing || len(s.Flipped) != 2 {
		return fx
	}
	for _, i := range s.Flipped {
		s.Visual[i] = FaceDown
		fx.emit(CardFlipped{ID: s.Deck[i].ID, Visual: FaceDown})
	}
	s.Flipped = s.Flipped[:0]
	s.Locked = false
	return fx
}
