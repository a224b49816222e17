// Package tui renders a live view of a pool room in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pandapool/internal/game"
	"github.com/lox/pandapool/internal/protocol"
)

const (
	DefaultPollInterval = time.Second
	DefaultFetchTimeout = 5 * time.Second
)

// Source is the read side of the client the viewer polls.
type Source interface {
	GetRoom(ctx context.Context, code string) (protocol.RoomResponse, error)
	GetGameState(ctx context.Context, code string) (protocol.GameState, error)
	CheckWinState(ctx context.Context, code string) (protocol.WinStateResponse, error)
}

// Snapshot is one poll of a room. State and Win are nil until the game starts.
type Snapshot struct {
	Room  protocol.RoomResponse
	State *protocol.GameState
	Win   *protocol.WinStateResponse
	Err   error
}

type snapshotMsg Snapshot

type tickMsg time.Time

// WatchModel is the Bubble Tea model for watching a room.
type WatchModel struct {
	ctx      context.Context
	source   Source
	code     string
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger

	spinner  spinner.Model
	snapshot Snapshot
	loaded   bool
	quitting bool
}

// NewWatchModel creates a viewer for the room with the given code. A
// non-positive interval uses DefaultPollInterval.
func NewWatchModel(ctx context.Context, source Source, code string, interval time.Duration, logger *log.Logger) *WatchModel {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = InfoStyle

	return &WatchModel{
		ctx:      ctx,
		source:   source,
		code:     strings.ToUpper(strings.TrimSpace(code)),
		interval: interval,
		timeout:  DefaultFetchTimeout,
		logger:   logger.WithPrefix("tui"),
		spinner:  sp,
	}
}

// Init starts the spinner and the first poll.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// fetch polls the room, and the table once the game is under way.
func (m *WatchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		return snapshotMsg(Poll(ctx, m.source, m.code))
	}
}

// Poll reads everything the viewer shows for one room.
func Poll(ctx context.Context, source Source, code string) Snapshot {
	room, err := source.GetRoom(ctx, code)
	if err != nil {
		return Snapshot{Err: err}
	}
	snap := Snapshot{Room: room}
	if !room.GameStarted {
		return snap
	}

	state, err := source.GetGameState(ctx, code)
	if err != nil {
		snap.Err = err
		return snap
	}
	snap.State = &state

	win, err := source.CheckWinState(ctx, code)
	if err != nil {
		snap.Err = err
		return snap
	}
	snap.Win = &win
	return snap
}

func (m *WatchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages in the TUI
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}

	case tickMsg:
		return m, m.fetch()

	case snapshotMsg:
		if msg.Err != nil {
			m.logger.Debug("Poll failed", "room", m.code, "error", msg.Err)
		}
		m.snapshot = Snapshot(msg)
		m.loaded = true
		if m.snapshot.Win != nil && m.snapshot.Win.Winner != nil {
			// Nothing changes after a decided match.
			return m, nil
		}
		return m, m.scheduleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the TUI
func (m *WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Panda Pool " + m.code))
	if m.snapshot.Room.RoomName != "" {
		b.WriteString(" " + InfoStyle.Render(m.snapshot.Room.RoomName))
	}
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString(m.spinner.View() + " Connecting...\n")
		return b.String()
	}

	snap := m.snapshot
	if snap.Room.RoomCode != "" {
		b.WriteString(renderSeats(snap.Room.Players, snap.State))
		b.WriteString("\n")
	}

	switch {
	case snap.State != nil:
		b.WriteString(TableStyle.Render(RenderRack(snap.State.Balls)))
		b.WriteString("\n")
		b.WriteString(renderStatus(snap))
	case snap.Room.RoomCode != "":
		b.WriteString(m.spinner.View() + " Waiting for the game to start\n")
	}

	if snap.Err != nil {
		b.WriteString(ErrorStyle.Render("Error: "+snap.Err.Error()) + "\n")
	}
	b.WriteString("\n" + InfoStyle.Render("q quit • r refresh"))
	return b.String()
}

func renderSeats(players []protocol.Player, state *protocol.GameState) string {
	var b strings.Builder
	for seat := range 2 {
		name := "(empty)"
		for _, p := range players {
			if p.Seat == seat {
				name = p.Name
			}
		}

		marker := "  "
		style := PlayerInfoStyle
		if state != nil && state.TurnOwner == seat {
			marker = "▶ "
			style = ActiveSeatStyle
		}
		line := fmt.Sprintf("%sSeat %d  %-16s", marker, seat, name)
		if state != nil {
			line += fmt.Sprintf("  %-12s  %d", state.Groups[seat], state.Scores[seat])
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

// RenderRack draws solids, then the cue and eight-ball, then stripes, one
// row each. Pocketed balls are shown as dots.
func RenderRack(balls []protocol.Ball) string {
	inPlay := make(map[int]bool, len(balls))
	for _, ball := range balls {
		inPlay[ball.ID] = ball.InPlay
	}
	cell := func(id int) string {
		if !inPlay[id] {
			return PocketedStyle.Render("  ·")
		}
		return ballStyle(id).Render(fmt.Sprintf("%3d", id))
	}

	rows := [][]int{
		game.GroupBalls(game.Solids),
		{game.CueBall, game.EightBall},
		game.GroupBalls(game.Stripes),
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, id := range row {
			cells[j] = cell(id)
		}
		lines[i] = strings.Join(cells, " ")
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func renderStatus(snap Snapshot) string {
	if snap.Win != nil && snap.Win.Winner != nil {
		winner := fmt.Sprintf("Seat %d", *snap.Win.Winner)
		for _, p := range snap.Room.Players {
			if p.Seat == *snap.Win.Winner {
				winner = p.Name
			}
		}
		return SuccessStyle.Render(winner+" wins!") + "\n"
	}
	return WarningStyle.Render(fmt.Sprintf("Turn %d", snap.State.TurnNumber+1)) + "\n"
}

func ballStyle(id int) lipgloss.Style {
	switch game.GroupOfBall(id) {
	case game.Solids:
		return SolidBallStyle
	case game.Stripes:
		return StripeBallStyle
	}
	if id == game.EightBall {
		return EightBallStyle
	}
	return CueBallStyle
}

// Run shows the viewer until the user quits.
func Run(ctx context.Context, source Source, code string, interval time.Duration, logger *log.Logger) error {
	p := tea.NewProgram(NewWatchModel(ctx, source, code, interval, logger), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}
