package state

import (
	"context"
	"time"

	"go-pairs/internal/cards"
	"go-pairs/internal/difficulty"

	"github.com/looplab/fsm"
)

type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
	PhaseWon    Phase = "won"
	PhaseLost   Phase = "lost"
)

// Terminal reports whether the phase ends the round.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// Visual is what the player sees of a card.
type Visual int

const (
	FaceDown Visual = iota
	FaceUp
	Matched
)

func (v Visual) String() string {
	switch v {
	case FaceDown:
		return "faceDown"
	case FaceUp:
		return "faceUp"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

const (
	SettleDelay       = time.Second
	RevealDuration    = time.Second
	ComboWindow       = 10 * time.Second
	ComboThreshold    = 3
	ComboBonusSeconds = 10
)

// State is the mutable state of one round. Visual states change only
// through Flip, Settle, UseHint and EndReveal.
type State struct {
	Profile       difficulty.Profile
	Deck          []cards.Card
	Visual        []Visual
	SourceIndex   []int // position in each card's image fallback chain
	Flipped       []int // deck indices of face-up unmatched cards, at most 2
	PairsMatched  int
	PairsRequired int
	Clicks        int
	TimeRemaining int
	HintsUsed     int
	Locked        bool
	Revealing     bool
	Combo         Combo
	FSM           *fsm.FSM

	index map[string]int
}

// NewState creates an idle round for profile over deck. A nil deck gives
// the empty board shown before a round starts.
func NewState(profile difficulty.Profile, deck []cards.Card) *State {
	s := &State{
		Profile:       profile,
		Deck:          deck,
		Visual:        make([]Visual, len(deck)),
		SourceIndex:   make([]int, len(deck)),
		Flipped:       make([]int, 0, 2),
		PairsRequired: profile.PairsRequired(),
		TimeRemaining: profile.TimeBudgetSeconds,
		Combo:         NewCombo(ComboWindow, ComboThreshold),
		index:         make(map[string]int, len(deck)),
	}
	for i, c := range deck {
		s.index[c.ID] = i
	}

	s.FSM = fsm.NewFSM(
		string(PhaseIdle),
		getStateTransitions(),
		getStateCallbacks(s),
	)
	return s
}

func (s *State) Phase() Phase {
	return Phase(s.FSM.Current())
}

// Activate moves an idle round to active.
func (s *State) Activate() Effects {
	var fx Effects
	if !s.transition("activate", &fx) {
		return fx
	}
	fx.emit(TimeUpdated{Seconds: s.TimeRemaining})
	fx.emit(HintCountChanged{Remaining: s.HintsRemaining()})
	return fx
}

// Tick consumes one second. At zero the round is lost.
func (s *State) Tick() Effects {
	var fx Effects
	if s.Phase() != PhaseActive {
		return fx
	}
	if s.TimeRemaining <= 0 {
		s.TimeRemaining = 0
		s.transition("expire", &fx)
		return fx
	}
	s.TimeRemaining--
	fx.emit(TimeUpdated{Seconds: s.TimeRemaining})
	return fx
}

// Abort loses an active round, e.g. when a timer could not be scheduled.
func (s *State) Abort() Effects {
	var fx Effects
	s.transition("abort", &fx)
	return fx
}

// Run performs a deferred task that has come due.
func (s *State) Run(task Task) Effects {
	switch task {
	case TaskSettle:
		return s.Settle()
	case TaskEndReveal:
		return s.EndReveal()
	}
	return Effects{}
}

func (s *State) transition(event string, fx *Effects) bool {
	if err := s.FSM.Event(context.Background(), event); err != nil {
		return false
	}
	fx.emit(PhaseChanged{Phase: s.Phase()})
	return true
}

func getStateTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "activate", Src: []string{string(PhaseIdle)}, Dst: string(PhaseActive)},
		{Name: "win", Src: []string{string(PhaseActive)}, Dst: string(PhaseWon)},
		{Name: "expire", Src: []string{string(PhaseActive)}, Dst: string(PhaseLost)},
		{Name: "abort", Src: []string{string(PhaseActive)}, Dst: string(PhaseLost)},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_" + string(PhaseActive): func(ctx context.Context, e *fsm.Event) {
			s.Locked = false
		},
		"enter_" + string(PhaseWon): func(ctx context.Context, e *fsm.Event) {
			s.Locked = true
			s.Flipped = s.Flipped[:0]
		},
		"enter_" + string(PhaseLost): func(ctx context.Context, e *fsm.Event) {
			s.Locked = true
			s.Revealing = false
		},
	}
}
