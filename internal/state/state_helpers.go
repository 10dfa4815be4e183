package state

import "go-pairs/internal/cards"

// Lookup returns the deck index of the card with id.
func (s *State) Lookup(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// VisualOf returns the visual state of the card with id.
func (s *State) VisualOf(id string) (Visual, bool) {
	i, ok := s.index[id]
	if !ok {
		return FaceDown, false
	}
	return s.Visual[i], true
}

// Source is the image currently chosen for the card at index i.
func (s *State) Source(i int) string {
	return s.Deck[i].Source(s.SourceIndex[i])
}

// AdvanceSource moves card id past the broken image failed and returns the
// image to try next. A report for an image the card no longer shows changes
// nothing. At the placeholder it stays put.
func (s *State) AdvanceSource(id, failed string) (string, bool) {
	i, ok := s.index[id]
	if !ok {
		return cards.Placeholder, false
	}
	if failed != s.Source(i) {
		return s.Source(i), true
	}
	if s.SourceIndex[i] < len(s.Deck[i].Sources)-1 {
		s.SourceIndex[i]++
	}
	return s.Source(i), true
}

// PairsLeft is the number of pairs still needed to win.
func (s *State) PairsLeft() int {
	return s.PairsRequired - s.PairsMatched
}

func (s *State) Unmatched() int {
	n := 0
	for _, v := range s.Visual {
		if v != Matched {
			n++
		}
	}
	return n
}
