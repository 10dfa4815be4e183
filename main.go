package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"go-pairs/internal/cards"
	"go-pairs/internal/clock"
	"go-pairs/internal/config"
	"go-pairs/internal/difficulty"
	"go-pairs/internal/game"
	"go-pairs/internal/round"
	"go-pairs/internal/state"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

var (
	redStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red for low time and losses
	greenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green for matched cards
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Color for the status line
	boldStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	cellStyle     = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	faceDownStyle = cellStyle.Foreground(lipgloss.Color("12"))
)

const cellWidth = 10

// callbackMsg carries a clock callback onto the bubbletea loop.
type callbackMsg struct {
	fn func()
}

type deckMsg struct {
	req  round.Request
	deck []cards.Card
	err  error
}

type imageMsg struct {
	id  string
	src string
	err error
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Flip   key.Binding
	Hint   key.Binding
	Start  key.Binding
	Reset  key.Binding
	Easy   key.Binding
	Medium key.Binding
	Hard   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Flip, k.Hint, k.Start, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Flip, k.Hint},
		{k.Start, k.Reset},
		{k.Easy, k.Medium, k.Hard},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Flip:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "flip")),
	Hint:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "hint")),
	Start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Easy:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "easy")),
	Medium: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "medium")),
	Hard:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "hard")),
	Help:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "more keys")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

type LocalState struct {
	Game *game.Game

	prober  *cards.Prober
	timeout time.Duration
	spinner spinner.Model
	help    help.Model
}

func initialModel(g *game.Game, prober *cards.Prober, timeout time.Duration) *LocalState {
	return &LocalState{
		Game:    g,
		prober:  prober,
		timeout: timeout,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
	}
}

func (s *LocalState) Init() tea.Cmd {
	return s.spinner.Tick
}

// buildCmd builds the deck off the event loop; the result comes back as a
// deckMsg.
func (s *LocalState) buildCmd(req round.Request) tea.Cmd {
	ctrl, timeout := s.Game.Round, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		deck, err := ctrl.BuildDeck(ctx, req)
		return deckMsg{req: req, deck: deck, err: err}
	}
}

func (s *LocalState) probeCmd(id, src string) tea.Cmd {
	prober, timeout := s.prober, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return imageMsg{id: id, src: src, err: prober.Check(ctx, src)}
	}
}

func (s *LocalState) probeAll() tea.Cmd {
	snap := s.Game.Round.Snapshot()
	cmds := make([]tea.Cmd, 0, len(snap.Cards))
	for _, c := range snap.Cards {
		cmds = append(cmds, s.probeCmd(c.ID, c.Source))
	}
	return tea.Batch(cmds...)
}

func (s *LocalState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	g := s.Game

	switch msg := msg.(type) {
	case callbackMsg:
		msg.fn()
	case deckMsg:
		if g.FinishStart(msg.req, msg.deck, msg.err) {
			return s, s.probeAll()
		}
	case imageMsg:
		if msg.err == nil {
			return s, nil
		}
		next, ok := g.BrokenImage(msg.id, msg.src)
		if !ok || next == msg.src {
			return s, nil
		}
		return s, s.probeCmd(msg.id, next)
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.WindowSizeMsg:
		s.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return s, tea.Quit
		case key.Matches(msg, keys.Help):
			s.help.ShowAll = !s.help.ShowAll
		case key.Matches(msg, keys.Up):
			g.Move(-1, 0)
		case key.Matches(msg, keys.Down):
			g.Move(1, 0)
		case key.Matches(msg, keys.Left):
			g.Move(0, -1)
		case key.Matches(msg, keys.Right):
			g.Move(0, 1)
		case key.Matches(msg, keys.Flip):
			g.FlipAtCursor()
		case key.Matches(msg, keys.Hint):
			g.Hint()
		case key.Matches(msg, keys.Start):
			if req, ok := g.RequestStart(); ok {
				return s, s.buildCmd(req)
			}
		case key.Matches(msg, keys.Reset):
			g.Reset()
		case key.Matches(msg, keys.Easy):
			g.SelectIndex(0)
		case key.Matches(msg, keys.Medium):
			g.SelectIndex(1)
		case key.Matches(msg, keys.Hard):
			g.SelectIndex(2)
		}
	}

	return s, nil
}

func (s *LocalState) RenderBoard(snap round.Snapshot) string {
	showCursor := snap.Phase == state.PhaseActive
	rows := make([]string, snap.Rows)
	for r := 0; r < snap.Rows; r++ {
		cells := make([]string, snap.Cols)
		for c := 0; c < snap.Cols; c++ {
			text, style := "·", cellStyle
			if card, ok := snap.CardAt(r, c); ok {
				switch card.Visual {
				case state.FaceDown:
					text, style = "??", faceDownStyle
				case state.FaceUp:
					text, style = card.Label, cellStyle.Bold(true)
				case state.Matched:
					text, style = card.Label, cellStyle.Foreground(lipgloss.Color("10"))
				}
			}
			if showCursor && r == s.Game.Cursor.Row && c == s.Game.Cursor.Col {
				style = style.Reverse(true)
			}
			cells[c] = style.Render(truncate(text, cellWidth-2))
		}
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (s *LocalState) View() string {
	g := s.Game
	snap := g.Round.Snapshot()

	// 1. Difficulty selector
	var sel []string
	for i, k := range g.Round.Difficulties() {
		label := fmt.Sprintf("%d %s", i+1, k)
		if k == snap.Difficulty {
			label = boldStyle.Render("[" + label + "]")
		}
		sel = append(sel, label)
	}
	display := boldStyle.Render("┃ PAIRS") + "  " + strings.Join(sel, "  ") + "\n"

	// 2. Board
	borderStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.ThickBorder())
	display += borderStyle.Render(s.RenderBoard(snap)) + "\n"

	// 3. Status line
	timeStyle := scoreStyle
	if snap.TimeRemaining*3 <= snap.TimeBudget {
		timeStyle = redStyle
	}
	statusLine := "SCORE: " + fmt.Sprint(snap.Score) + " | " +
		"CLICKS: " + fmt.Sprint(snap.Clicks) + " | " +
		"PAIRS LEFT: " + fmt.Sprint(snap.PairsLeft) + " | " +
		"HINTS: " + fmt.Sprint(snap.HintsRemaining)
	display += scoreStyle.Render(statusLine) + scoreStyle.Render(" | TIME: ") + timeStyle.Render(round.FormatTime(snap.TimeRemaining)) + "\n"

	// 4. Card under the cursor
	if card, ok := snap.CardAt(g.Cursor.Row, g.Cursor.Col); ok && card.Visual != state.FaceDown {
		display += dimStyle.Render("image: "+path.Base(card.Source)) + "\n"
	}

	// 5. Messages
	switch {
	case snap.Loading:
		display += s.spinner.View() + " Dealing cards...\n"
	case snap.Phase == state.PhaseWon:
		display += greenStyle.Render(fmt.Sprintf("%s Final score: %d", g.Banner, snap.Score)) + "\n"
	case snap.Phase == state.PhaseLost:
		display += redStyle.Render(fmt.Sprintf("%s Final score: %d", g.Banner, snap.Score)) + "\n"
	case g.Banner != "":
		display += boldStyle.Render(g.Banner) + "\n"
	case snap.Phase == state.PhaseIdle:
		display += "Press s to deal.\n"
	}

	if sess := g.Session; sess.Played > 0 {
		display += dimStyle.Render(fmt.Sprintf("Rounds: %d | Won: %d (%d%%) | Best score: %d",
			sess.Played, sess.Won, sess.WinRate(), sess.BestScore)) + "\n"
	}

	return display + "\n" + s.help.View(keys)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type difficultyFlag difficulty.Key

func (d *difficultyFlag) String() string {
	return string(*d)
}

func (d *difficultyFlag) Set(s string) error {
	k, err := difficulty.ParseKey(s)
	if err != nil {
		return err
	}
	if _, err := difficulty.Default().Lookup(k); err != nil {
		return fmt.Errorf("%w (use easy, medium or hard)", err)
	}
	*d = difficultyFlag(k)
	return nil
}

func newProvider(cfg config.Config, seed int64, log zerolog.Logger) cards.Provider {
	switch cfg.Source {
	case config.SourceFiles:
		return cards.NewFileProvider(cfg.CardPaths...)
	case config.SourcePokeAPI:
		client := &http.Client{Timeout: cfg.FetchTimeout}
		return cards.NewPokeAPIProvider(cfg.PokeAPIURL, cfg.PokeAPILimit, client, seed, log.With().Str("provider", "pokeapi").Logger())
	default:
		return cards.Builtin()
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	diff := difficultyFlag(cfg.Difficulty)
	flag.Var(&diff, "difficulty", "Board size: easy, medium or hard")
	flag.Var(&diff, "d", "Board size (shorthand)")

	flag.StringVar(&cfg.Source, "source", cfg.Source, "Card source: builtin, files or pokeapi")
	flag.StringVar(&cfg.Source, "s", cfg.Source, "Card source (shorthand)")

	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Shuffle seed; 0 picks a random one")
	flag.DurationVar(&cfg.FetchTimeout, "timeout", cfg.FetchTimeout, "Timeout for dealing and image checks")
	flag.IntVar(&cfg.PokeAPILimit, "pokeapi-limit", cfg.PokeAPILimit, "Number of Pokémon to draw from")

	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [card files or directories...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "   -d, --difficulty=KEY     Board size: easy (4x4), medium (6x6), hard (8x8)\n")
		fmt.Fprintf(os.Stderr, "   -s, --source=NAME        Card source: builtin, files or pokeapi\n")
		fmt.Fprintf(os.Stderr, "       --seed=N             Shuffle seed; 0 picks a random one\n")
		fmt.Fprintf(os.Stderr, "       --timeout=DUR        Timeout for dealing and image checks (default 10s)\n")
		fmt.Fprintf(os.Stderr, "       --pokeapi-limit=N    Number of Pokémon to draw from\n")
		fmt.Fprintf(os.Stderr, "       --log-file=PATH      Write logs to this file\n")
		fmt.Fprintf(os.Stderr, "       --log-level=LEVEL    Log level (default info)\n")
		fmt.Fprintf(os.Stderr, "   -h, --help               Show this help message\n")
		fmt.Fprintf(os.Stderr, "\nCard files given as arguments imply --source=files.\n")
	}

	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		cfg.CardPaths = args
		cfg.Source = config.SourceFiles
	}
	cfg.Difficulty = string(diff)
	if err := cfg.Validate(); err != nil {
		return err
	}
	initial, err := difficulty.ParseKey(cfg.Difficulty)
	if err != nil {
		return err
	}

	log, closer, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	seed, err := cfg.ResolveSeed()
	if err != nil {
		return err
	}

	var p *tea.Program
	loop := clock.NewLoop(func(fn func()) {
		p.Send(callbackMsg{fn: fn})
	})
	defer loop.Close()

	ctrl, err := round.New(round.Options{
		Profiles: difficulty.Default(),
		Initial:  initial,
		Builder:  cards.NewBuilder(newProvider(cfg, seed, log), seed),
		Clock:    loop,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	g := game.NewGame(ctrl, log)
	model := initialModel(g, cards.NewProber(&http.Client{Timeout: cfg.FetchTimeout}), cfg.FetchTimeout)

	log.Info().Str("source", cfg.Source).Str("difficulty", cfg.Difficulty).Int64("seed", seed).Msg("starting go-pairs")

	p = tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}

	if sess := g.Session; sess.Played > 0 {
		fmt.Printf("Rounds: %d | Won: %d | Lost: %d | Total score: %d\n", sess.Played, sess.Won, sess.Lost, sess.TotalScore)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
