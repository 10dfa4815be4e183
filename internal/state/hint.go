package state

func (s *State) HintsRemaining() int {
	return s.Profile.HintAllowance - s.HintsUsed
}

// CanUseHint reports whether UseHint would do anything.
func (s *State) CanUseHint() bool {
	return s.Phase() == PhaseActive && !s.Locked && s.HintsRemaining() > 0
}

// UseHint spends a hint: any half-made selection is dropped, every
// unmatched card is shown and the board locks until EndReveal.
func (s *State) UseHint() Effects {
	var fx Effects
	if !s.CanUseHint() {
		return fx
	}

	s.HintsUsed++
	s.Flipped = s.Flipped[:0]
	for i, v := range s.Visual {
		if v == FaceDown {
			s.Visual[i] = FaceUp
			fx.emit(CardFlipped{ID: s.Deck[i].ID, Visual: FaceUp})
		}
	}
	s.Locked = true
	s.Revealing = true

	fx.emit(HintCountChanged{Remaining: s.HintsRemaining()})
	fx.after(TaskEndReveal, RevealDuration)
	return fx
}

// EndReveal hides every unmatched card again and unlocks the board.
func (s *State) EndReveal() Effects {
	var fx Effects
	if !s.Revealing || s.Phase() != PhaseActive {
		return fx
	}
	for i, v := range s.Visual {
		if v == FaceUp {
			s.Visual[i] = FaceDown
			fx.emit(CardFlipped{ID: s.Deck[i].ID, Visual: FaceDown})
		}
	}
	s.Revealing = false
	s.Locked = false
	return fx
}
