// Package round runs the lifecycle of a pairs round: start, reset, win and
// loss. It owns the round state, the countdown and every scheduled
// callback, and is the only package that knows the difficulty table.
//
// A Controller is not safe for concurrent use. All calls, and all clock
// callbacks, must happen on one event loop; only BuildDeck may run
// elsewhere.
package round

import (
	"context"
	"errors"
	"fmt"

	"go-pairs/internal/cards"
	"go-pairs/internal/clock"
	"go-pairs/internal/difficulty"
	"go-pairs/internal/scoring"
	"go-pairs/internal/state"

	"github.com/rs/zerolog"
)

// ErrStaleStart is returned by CommitStart when a newer start or a reset
// has superseded the request. The deck is discarded.
var ErrStaleStart = errors.New("start superseded")

// DeckBuilder produces a shuffled deck of 2*pairCount cards.
type DeckBuilder interface {
	Build(ctx context.Context, pairCount int) ([]cards.Card, error)
}

// Listener receives every outbound event, in order.
type Listener func(state.Event)

type Options struct {
	Profiles difficulty.Table
	Initial  difficulty.Key
	Builder  DeckBuilder
	Clock    clock.Clock
	Listener Listener
	Logger   zerolog.Logger
}

// Request is a start in progress. It is handed to BuildDeck off the loop
// and back to CommitStart on it.
type Request struct {
	Generation uint64
	Profile    difficulty.Profile
}

func (r Request) Pairs() int {
	return r.Profile.PairsRequired()
}

type Controller struct {
	profiles difficulty.Table
	selected difficulty.Key
	builder  DeckBuilder
	clock    clock.Clock
	listener Listener
	log      zerolog.Logger

	state     *state.State
	score     *scoring.Scoring
	countdown *clock.Countdown

	generation uint64
	loading    bool
	epoch      uint64
	timers     map[clock.Timer]struct{}
}

func New(opts Options) (*Controller, error) {
	if err := opts.Profiles.Validate(); err != nil {
		return nil, fmt.Errorf("invalid difficulty table: %w", err)
	}
	profile, err := opts.Profiles.Lookup(opts.Initial)
	if err != nil {
		return nil, err
	}
	if opts.Builder == nil || opts.Clock == nil {
		return nil, errors.New("round controller needs a deck builder and a clock")
	}

	c := &Controller{
		profiles: opts.Profiles,
		selected: opts.Initial,
		builder:  opts.Builder,
		clock:    opts.Clock,
		listener: opts.Listener,
		log:      opts.Logger,
		state:    state.NewState(profile, nil),
		score:    scoring.InitScoring(),
		timers:   map[clock.Timer]struct{}{},
	}
	c.countdown = clock.NewCountdown(opts.Clock, c.tick, c.scheduleFailed)
	return c, nil
}

// SetListener replaces the event listener.
func (c *Controller) SetListener(l Listener) {
	c.listener = l
}

// Start runs a whole start on the calling goroutine: BeginStart, BuildDeck
// and CommitStart. Starting while a round is active does nothing.
func (c *Controller) Start(ctx context.Context, key difficulty.Key) error {
	req, ok, err := c.BeginStart(key)
	if err != nil || !ok {
		return err
	}
	deck, err := c.BuildDeck(ctx, req)
	return c.CommitStart(req, deck, err)
}

// BeginStart validates key and opens a new start generation. ok is false
// when a round is active, in which case nothing changes.
func (c *Controller) BeginStart(key difficulty.Key) (req Request, ok bool, err error) {
	if c.state.Phase() == state.PhaseActive {
		return Request{}, false, nil
	}
	profile, err := c.profiles.Lookup(key)
	if err != nil {
		return Request{}, false, err
	}

	c.selected = key
	c.generation++
	c.loading = true
	c.log.Debug().Str("difficulty", string(key)).Uint64("generation", c.generation).Msg("building deck")

	return Request{Generation: c.generation, Profile: profile}, true, nil
}

// BuildDeck asks the deck builder for req's cards. It does not touch round
// state and may run off the event loop.
func (c *Controller) BuildDeck(ctx context.Context, req Request) ([]cards.Card, error) {
	return c.builder.Build(ctx, req.Pairs())
}

// CommitStart installs the deck built for req and activates the round.
// A failed build leaves the current state untouched.
func (c *Controller) CommitStart(req Request, deck []cards.Card, buildErr error) error {
	if req.Generation != c.generation {
		c.log.Debug().Uint64("generation", req.Generation).Uint64("current", c.generation).Msg("discarding stale deck")
		return ErrStaleStart
	}
	c.loading = false

	key := req.Profile.Key
	if buildErr != nil {
		c.log.Warn().Err(buildErr).Str("difficulty", string(key)).Msg("start failed")
		return fmt.Errorf("start %s: %w", key, buildErr)
	}
	if len(deck) != 2*req.Pairs() {
		err := &cards.InsufficientCardPoolError{Requested: req.Pairs(), Available: len(deck) / 2}
		c.log.Warn().Err(err).Str("difficulty", string(key)).Msg("start failed")
		return fmt.Errorf("start %s: %w", key, err)
	}

	c.cancelTimers()
	c.countdown.Stop()
	c.state = state.NewState(req.Profile, deck)
	c.score = scoring.InitScoring()

	c.apply(c.state.Activate())
	if err := c.countdown.Start(); err != nil {
		c.scheduleFailed(err)
		return nil
	}

	c.log.Info().
		Str("difficulty", string(key)).
		Int("pairs", req.Pairs()).
		Int("time", req.Profile.TimeBudgetSeconds).
		Msg("round started")
	return nil
}

// Reset stops the round, abandons any start in progress and shows an empty
// board for the selected difficulty.
func (c *Controller) Reset() {
	c.generation++
	c.loading = false
	c.cancelTimers()
	c.countdown.Stop()

	c.state = state.NewState(c.profiles[c.selected], nil)
	c.score = scoring.InitScoring()

	c.emit(state.PhaseChanged{Phase: state.PhaseIdle})
	c.emit(state.TimeUpdated{Seconds: c.state.TimeRemaining})
	c.emit(state.HintCountChanged{Remaining: c.state.HintsRemaining()})
	c.log.Debug().Str("difficulty", string(c.selected)).Msg("round reset")
}

// Select changes the difficulty used by the next reset. It is ignored while
// a round is active. An idle board is redrawn for the new profile.
func (c *Controller) Select(key difficulty.Key) error {
	if c.state.Phase() == state.PhaseActive {
		return nil
	}
	profile, err := c.profiles.Lookup(key)
	if err != nil {
		return err
	}
	c.selected = key
	if c.state.Phase() == state.PhaseIdle {
		c.state = state.NewState(profile, nil)
		c.emit(state.TimeUpdated{Seconds: c.state.TimeRemaining})
		c.emit(state.HintCountChanged{Remaining: c.state.HintsRemaining()})
	}
	return nil
}

func (c *Controller) Flip(cardID string) {
	c.apply(c.state.Flip(cardID, c.clock.Now()))
}

func (c *Controller) UseHint() {
	fx := c.state.UseHint()
	if fx.Empty() {
		return
	}
	c.score.ScoreEvent("hint")
	c.apply(fx)
}

// ReportBrokenImage reports that src failed to load for the card and
// returns the source to try next. Only a failure of the card's current
// source advances its fallback chain.
func (c *Controller) ReportBrokenImage(cardID, src string) (string, bool) {
	return c.state.AdvanceSource(cardID, src)
}

func (c *Controller) Phase() state.Phase {
	return c.state.Phase()
}

func (c *Controller) Selected() difficulty.Key {
	return c.selected
}

// Difficulties lists the selectable keys, smallest board first.
func (c *Controller) Difficulties() []difficulty.Key {
	return c.profiles.Keys()
}

// Loading reports whether a start is waiting for its deck.
func (c *Controller) Loading() bool {
	return c.loading
}

func (c *Controller) tick() {
	c.apply(c.state.Tick())
}

func (c *Controller) apply(fx state.Effects) {
	terminal := false
	for _, e := range fx.Events {
		c.record(e)
		c.emit(e)
		if pc, ok := e.(state.PhaseChanged); ok && pc.Phase.Terminal() {
			terminal = true
		}
	}
	if terminal {
		c.finish()
		return
	}
	for _, d := range fx.Deferred {
		c.schedule(d)
	}
}

func (c *Controller) record(e state.Event) {
	switch e := e.(type) {
	case state.PairResolved:
		if e.Matched {
			c.score.ScoreEvent("match")
		} else {
			c.score.ScoreEvent("mismatch")
		}
	case state.ComboBonusFired:
		c.score.ScoreEvent("comboBonus")
	case state.PhaseChanged:
		if e.Phase == state.PhaseWon {
			c.score.AddTimeBonus(c.state.TimeRemaining)
		}
	}
}

func (c *Controller) emit(e state.Event) {
	if c.listener != nil {
		c.listener(e)
	}
}

// finish stops everything that could still mutate a round that has ended.
func (c *Controller) finish() {
	c.countdown.Stop()
	c.cancelTimers()
	c.log.Info().
		Str("phase", string(c.state.Phase())).
		Int("pairs", c.state.PairsMatched).
		Int("clicks", c.state.Clicks).
		Int("time_left", c.state.TimeRemaining).
		Int("score", c.score.CurrentScore).
		Msg("round over")
}

func (c *Controller) schedule(d state.Deferred) {
	epoch := c.epoch
	var t clock.Timer
	t, err := c.clock.AfterFunc(d.Delay, func() {
		if epoch != c.epoch {
			c.log.Debug().Stringer("task", d.Task).Msg("dropping stale timer")
			return
		}
		delete(c.timers, t)
		c.apply(c.state.Run(d.Task))
	})
	if err != nil {
		c.scheduleFailed(fmt.Errorf("schedule %s: %w", d.Task, err))
		return
	}
	c.timers[t] = struct{}{}
}

// cancelTimers invalidates every pending callback of the current round.
func (c *Controller) cancelTimers() {
	c.epoch++
	for t := range c.timers {
		t.Stop()
	}
	clear(c.timers)
}

// PendingTasks is the number of scheduled settle and reveal callbacks that
// have not fired yet.
func (c *Controller) PendingTasks() int {
	return len(c.timers)
}

func (c *Controller) scheduleFailed(err error) {
	c.log.Error().Err(err).Msg("timer scheduling failed, ending round")
	c.apply(c.state.Abort())
}
