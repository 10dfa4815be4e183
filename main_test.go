package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-pairs/internal/cards"
	"go-pairs/internal/clock"
	"go-pairs/internal/difficulty"
	"go-pairs/internal/game"
	"go-pairs/internal/round"
	"go-pairs/internal/state"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

func newTestModel(t *testing.T, provider cards.Provider) (*LocalState, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctrl, err := round.New(round.Options{
		Profiles: difficulty.Default(),
		Initial:  difficulty.Easy,
		Builder:  cards.NewBuilder(provider, 11),
		Clock:    clk,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("round.New failed: %v", err)
	}
	g := game.NewGame(ctrl, zerolog.Nop())
	return initialModel(g, cards.NewProber(nil), time.Second), clk
}

func press(s *LocalState, k string) tea.Cmd {
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	return cmd
}

func TestModel_StartDealsCards(t *testing.T) {
	s, _ := newTestModel(t, cards.Builtin())

	cmd := press(s, "s")
	if cmd == nil {
		t.Fatal("Start should return a build command")
	}
	if !s.Game.Round.Loading() || !strings.Contains(s.View(), "Dealing cards") {
		t.Error("Expected the loading view while dealing")
	}

	msg, ok := cmd().(deckMsg)
	if !ok {
		t.Fatalf("Expected deckMsg, got %T", msg)
	}
	_, probes := s.Update(msg)
	if s.Game.Round.Phase() != state.PhaseActive {
		t.Fatalf("Expected active round, got %s", s.Game.Round.Phase())
	}
	if probes == nil {
		t.Error("Expected image probes after dealing")
	}
	if !strings.Contains(s.View(), "TIME: ") || !strings.Contains(s.View(), "00:20") {
		t.Errorf("Status line missing time:\n%s", s.View())
	}
}

func TestModel_BrokenImageAdvances(t *testing.T) {
	pool := make([]cards.Identity, 8)
	for i := range pool {
		name := string(rune('a' + i))
		pool[i] = cards.Identity{Key: name, Label: name, Sources: []string{"/nonexistent/" + name + ".png"}}
	}
	s, _ := newTestModel(t, cards.NewMemoryProvider("test", pool))

	cmd := press(s, "s")
	s.Update(cmd())
	card := s.Game.Round.Snapshot().Cards[0]

	msg := s.probeCmd(card.ID, card.Source)()
	img, ok := msg.(imageMsg)
	if !ok || img.err == nil {
		t.Fatalf("Expected a failed probe, got %+v", msg)
	}
	_, follow := s.Update(img)
	if follow == nil {
		t.Fatal("Expected a probe of the next source")
	}
	if got := s.Game.Round.Snapshot().Cards[0].Source; got != cards.Placeholder {
		t.Errorf("Expected placeholder, got %s", got)
	}

	// The placeholder always loads, so the chain stops here.
	if _, again := s.Update(follow().(imageMsg)); again != nil {
		t.Error("Placeholder probe should end the chain")
	}
}

func TestModel_StaleDeckAndRepeatedFailures(t *testing.T) {
	dir := t.TempDir()
	pool := make([]cards.Identity, 8)
	for i := range pool {
		name := string(rune('a' + i))
		good1 := filepath.Join(dir, name+"-1.png")
		good2 := filepath.Join(dir, name+"-2.png")
		for _, f := range []string{good1, good2} {
			if err := os.WriteFile(f, []byte("png"), 0o644); err != nil {
				t.Fatalf("write image: %v", err)
			}
		}
		pool[i] = cards.Identity{Key: name, Label: name, Sources: []string{"/nonexistent/" + name + ".png", good1, good2}}
	}
	s, _ := newTestModel(t, cards.NewMemoryProvider("test", pool))

	first := press(s, "s")
	press(s, "r")
	second := press(s, "s")
	if _, probes := s.Update(second()); probes == nil {
		t.Fatal("Expected image checks for the committed deck")
	}

	if _, probes := s.Update(first()); probes != nil {
		t.Error("A stale deck should not start image checks")
	}
	if s.Game.Round.Phase() != state.PhaseActive {
		t.Fatalf("Expected the second round to stay active, got %s", s.Game.Round.Phase())
	}

	card := s.Game.Round.Snapshot().Cards[0]
	failed := imageMsg{id: card.ID, src: card.Source, err: errors.New("404")}
	if _, follow := s.Update(failed); follow == nil {
		t.Fatal("Expected a check of the next source")
	}
	want := s.Game.Round.Snapshot().Cards[0].Source
	if !strings.HasSuffix(want, "-1.png") {
		t.Fatalf("Expected the first fallback, got %s", want)
	}

	if _, follow := s.Update(failed); follow != nil {
		t.Error("A repeated failure of the same source should not start another check")
	}
	if got := s.Game.Round.Snapshot().Cards[0].Source; got != want {
		t.Errorf("Repeated failure skipped %s, card now on %s", want, got)
	}
}

func TestModel_ClockCallbacks(t *testing.T) {
	s, _ := newTestModel(t, cards.Builtin())
	ran := false
	s.Update(callbackMsg{fn: func() { ran = true }})
	if !ran {
		t.Error("callbackMsg should run its function")
	}
}

func TestModel_KeysDriveGame(t *testing.T) {
	s, clk := newTestModel(t, cards.Builtin())
	press(s, "3")
	if s.Game.Round.Selected() != difficulty.Hard {
		t.Fatalf("Expected hard, got %s", s.Game.Round.Selected())
	}
	press(s, "1")

	s.Update(press(s, "s")())
	press(s, "l")
	press(s, "j")
	if s.Game.Cursor != (game.Cursor{Row: 1, Col: 1}) {
		t.Errorf("Unexpected cursor %+v", s.Game.Cursor)
	}
	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if s.Game.Round.Snapshot().Clicks != 1 {
		t.Error("Enter should flip the card under the cursor")
	}

	press(s, "?")
	if !s.Game.Round.Snapshot().Locked {
		t.Error("? should use a hint")
	}
	clk.Advance(state.RevealDuration)

	press(s, "r")
	if s.Game.Round.Phase() != state.PhaseIdle {
		t.Error("r should reset the round")
	}

	if _, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestDifficultyFlag(t *testing.T) {
	var d difficultyFlag
	if err := d.Set(" Medium "); err != nil || d != difficultyFlag(difficulty.Medium) {
		t.Errorf("Set(Medium) = %v, %s", err, d)
	}
	if err := d.Set("insane"); err == nil {
		t.Error("Expected an error for an unknown difficulty")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("cat", 8); got != "cat" {
		t.Errorf("Short labels should be kept, got %q", got)
	}
	if got := truncate("hippopotamus", 8); got != "hippopo…" {
		t.Errorf("Expected hippopo…, got %q", got)
	}
}
