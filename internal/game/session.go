package game

import (
	"go-pairs/internal/difficulty"
	"go-pairs/internal/round"
	"go-pairs/internal/state"
)

// Session tallies finished rounds for as long as the program runs. Nothing
// is persisted.
type Session struct {
	Played     int
	Won        int
	Lost       int
	TotalScore int
	BestScore  int

	// fewest clicks in a won round, per difficulty
	BestClicks map[difficulty.Key]int
}

func NewSession() *Session {
	return &Session{BestClicks: map[difficulty.Key]int{}}
}

// Record adds a finished round. Rounds that have not ended are ignored.
func (s *Session) Record(snap round.Snapshot) {
	if !snap.Phase.Terminal() {
		return
	}
	s.Played++
	s.TotalScore += snap.Score
	if snap.Score > s.BestScore {
		s.BestScore = snap.Score
	}
	if snap.Phase == state.PhaseLost {
		s.Lost++
		return
	}

	s.Won++
	if best, ok := s.BestClicks[snap.Difficulty]; !ok || snap.Clicks < best {
		s.BestClicks[snap.Difficulty] = snap.Clicks
	}
}

// WinRate is the share of played rounds that were won, in percent.
func (s *Session) WinRate() int {
	if s.Played == 0 {
		return 0
	}
	return s.Won * 100 / s.Played
}
