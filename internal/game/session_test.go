package game

import (
	"testing"

	"go-pairs/internal/difficulty"
	"go-pairs/internal/round"
	"go-pairs/internal/state"
)

func TestSession_Record(t *testing.T) {
	s := NewSession()

	s.Record(round.Snapshot{Phase: state.PhaseActive, Score: 500})
	if s.Played != 0 {
		t.Fatalf("Active rounds should not be recorded")
	}

	s.Record(round.Snapshot{Phase: state.PhaseWon, Difficulty: difficulty.Easy, Clicks: 30, Score: 900})
	s.Record(round.Snapshot{Phase: state.PhaseWon, Difficulty: difficulty.Easy, Clicks: 22, Score: 1200})
	s.Record(round.Snapshot{Phase: state.PhaseWon, Difficulty: difficulty.Easy, Clicks: 26, Score: 1000})
	s.Record(round.Snapshot{Phase: state.PhaseLost, Difficulty: difficulty.Hard, Clicks: 4, Score: 100})

	if s.Played != 4 || s.Won != 3 || s.Lost != 1 {
		t.Errorf("Expected 4 played, 3 won, 1 lost; got %d/%d/%d", s.Played, s.Won, s.Lost)
	}
	if s.TotalScore != 3200 || s.BestScore != 1200 {
		t.Errorf("Expected total 3200 and best 1200, got %d and %d", s.TotalScore, s.BestScore)
	}
	if got := s.BestClicks[difficulty.Easy]; got != 22 {
		t.Errorf("Expected best easy clicks 22, got %d", got)
	}
	if _, ok := s.BestClicks[difficulty.Hard]; ok {
		t.Error("Lost rounds should not set best clicks")
	}
	if s.WinRate() != 75 {
		t.Errorf("Expected 75%% win rate, got %d", s.WinRate())
	}
}

func TestSession_WinRateEmpty(t *testing.T) {
	if NewSession().WinRate() != 0 {
		t.Error("Empty session should have a 0% win rate")
	}
}
