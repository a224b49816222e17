package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pandapool/cmd/pandapool/shared"
	"github.com/lox/pandapool/internal/client"
	"github.com/lox/pandapool/internal/tui"
)

// ClientOptions locate the server. Flags override the config file.
type ClientOptions struct {
	ClientConfig string `name:"client-config" default:"pandapool-client.hcl" help:"Path to client HCL configuration file"`
	URL          string `short:"u" env:"PANDAPOOL_URL" help:"Server URL (overrides config)"`
}

// RoomOptions name the room a command is about.
type RoomOptions struct {
	Room string `short:"r" env:"PANDAPOOL_ROOM" help:"Room code (overrides config)"`
}

// SeatOptions identify the caller for authorized commands.
type SeatOptions struct {
	RoomOptions `embed:""`

	Seat  int    `short:"s" env:"PANDAPOOL_SEAT" default:"-1" help:"Seat, 0 or 1 (overrides config)"`
	Token string `short:"t" env:"PANDAPOOL_TOKEN" help:"Player token (overrides config)"`
}

// session is one connected client command.
type session struct {
	client *client.Client
	cfg    *client.ClientConfig
	out    io.Writer
	logger *log.Logger
}

func (o ClientOptions) connect(globals *Globals) (*session, error) {
	cfg, err := client.LoadClientConfig(o.ClientConfig)
	if err != nil {
		return nil, err
	}
	if o.URL != "" {
		cfg.Server.URL = o.URL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := globals.LogLevel
	if level == "" {
		level = "warn"
	}
	logger := shared.SetupLogger(globals.Stderr, level)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout())
	defer cancel()
	c, err := client.Dial(ctx, cfg.Server.URL, logger)
	if err != nil {
		return nil, err
	}
	return &session{client: c, cfg: cfg, out: globals.Stdout, logger: logger}, nil
}

// request bounds a single call by the configured request timeout.
func (s *session) request() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.RequestTimeout())
}

func (s *session) close() {
	_ = s.client.Close()
}

func (s *session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (o RoomOptions) resolve(cfg *client.ClientConfig) (string, error) {
	code := o.Room
	if code == "" {
		code = cfg.Player.Room
	}
	if code == "" {
		return "", errors.New("room code required: pass --room, set PANDAPOOL_ROOM or player.room")
	}
	return code, nil
}

func (o SeatOptions) resolve(cfg *client.ClientConfig) (code string, seat int, token string, err error) {
	code, err = o.RoomOptions.resolve(cfg)
	if err != nil {
		return "", 0, "", err
	}
	seat = o.Seat
	if seat < 0 {
		seat = cfg.Player.Seat
	}
	token = o.Token
	if token == "" {
		token = cfg.Player.Token
	}
	if token == "" {
		return "", 0, "", errors.New("player token required: pass --token, set PANDAPOOL_TOKEN or player.token")
	}
	return code, seat, token, nil
}

// printSeat writes shell exports for the seat just taken, so that
// `eval $(pandapool create)` configures later commands.
func (s *session) printSeat(code string, seat int, token string) {
	s.printf("export PANDAPOOL_ROOM=%s\n", code)
	s.printf("export PANDAPOOL_SEAT=%d\n", seat)
	s.printf("export PANDAPOOL_TOKEN=%s\n", token)
}

func (s *session) nameSeat(code string, seat int, token, name string) error {
	if name == "" {
		name = s.cfg.Player.Name
	}
	if name == "" {
		return nil
	}
	ctx, cancel := s.request()
	defer cancel()
	return s.client.SetPlayerInfo(ctx, code, seat, token, name)
}

// CreateCmd opens a room.
type CreateCmd struct {
	ClientOptions `embed:""`

	Name string `short:"n" help:"Display name for seat 0 (overrides config)"`
}

func (c *CreateCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := s.request()
	defer cancel()
	created, err := s.client.CreateRoom(ctx)
	if err != nil {
		return err
	}
	if err := s.nameSeat(created.RoomCode, 0, created.PlayerToken, c.Name); err != nil {
		return err
	}
	s.logger.Info("Created room", "room", created.RoomCode)
	s.printSeat(created.RoomCode, 0, created.PlayerToken)
	return nil
}

// JoinCmd takes the second seat of a room.
type JoinCmd struct {
	ClientOptions `embed:""`

	Code string `arg:"" help:"Room code to join"`
	Name string `short:"n" help:"Display name for seat 1 (overrides config)"`
}

func (c *JoinCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code := strings.ToUpper(strings.TrimSpace(c.Code))
	ctx, cancel := s.request()
	defer cancel()
	token, err := s.client.JoinRoom(ctx, code)
	if err != nil {
		return err
	}
	if err := s.nameSeat(code, 1, token, c.Name); err != nil {
		return err
	}
	s.logger.Info("Joined room", "room", code)
	s.printSeat(code, 1, token)
	return nil
}

// RoomCmd prints the public view of a room.
type RoomCmd struct {
	ClientOptions `embed:""`
	RoomOptions   `embed:""`
}

func (c *RoomCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, err := c.RoomOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, cancel := s.request()
	defer cancel()
	view, err := s.client.GetRoom(ctx, code)
	if err != nil {
		return err
	}

	s.printf("Room:    %s (%s)\n", view.RoomCode, view.RoomName)
	s.printf("Created: %s\n", view.CreatedAt.Format(time.RFC3339))
	s.printf("Started: %t\n", view.GameStarted)
	for _, p := range view.Players {
		s.printf("Seat %d:  %s\n", p.Seat, p.Name)
	}
	return nil
}

// NameCmd sets the caller's display name.
type NameCmd struct {
	ClientOptions `embed:""`
	SeatOptions   `embed:""`

	Name string `arg:"" help:"Display name"`
}

func (c *NameCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, seat, token, err := c.SeatOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, cancel := s.request()
	defer cancel()
	return s.client.SetPlayerInfo(ctx, code, seat, token, c.Name)
}

// StartCmd racks the balls.
type StartCmd struct {
	ClientOptions `embed:""`
	SeatOptions   `embed:""`
}

func (c *StartCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, seat, token, err := c.SeatOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, cancel := s.request()
	defer cancel()
	if err := s.client.StartGame(ctx, code, seat, token); err != nil {
		return err
	}
	s.printf("Game started in room %s\n", code)
	return nil
}

// StateCmd prints the table.
type StateCmd struct {
	ClientOptions `embed:""`
	RoomOptions   `embed:""`
}

func (c *StateCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, err := c.RoomOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, cancel := s.request()
	defer cancel()
	state, err := s.client.GetGameState(ctx, code)
	if err != nil {
		return err
	}

	s.printf("%s\n\n", tui.RenderRack(state.Balls))
	for seat := range 2 {
		s.printf("Seat %d: %-12s %d\n", seat, state.Groups[seat], state.Scores[seat])
	}
	s.printf("Turns played: %d, seat %d to shoot\n", state.TurnNumber, state.TurnOwner)
	return nil
}

// TurnCmd posts a shot built from the current table.
type TurnCmd struct {
	ClientOptions `embed:""`
	SeatOptions   `embed:""`

	Pocket []int `short:"p" sep:"," help:"Balls pocketed by the shot, e.g. 3,5. Include 0 for a scratch"`
}

func (c *TurnCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, seat, token, err := c.SeatOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, cancel := s.request()
	defer cancel()
	res, err := s.client.Shoot(ctx, code, seat, token, c.Pocket...)
	if err != nil {
		return err
	}

	s.printf("Turn %d: %s, seat %d to shoot\n", res.Turn, res.Outcome, res.TurnOwner)
	if res.WinState != "none" {
		s.printf("Match decided: %s\n", res.WinState)
	}
	return nil
}

// WinCmd prints the match verdict.
type WinCmd struct {
	ClientOptions `embed:""`
	RoomOptions   `embed:""`
}

func (c *WinCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, err := c.RoomOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, cancel := s.request()
	defer cancel()
	win, err := s.client.CheckWinState(ctx, code)
	if err != nil {
		return err
	}
	s.printf("%s\n", win.Outcome)
	return nil
}

// LastCmd prints the most recent turn.
type LastCmd struct {
	ClientOptions `embed:""`
	RoomOptions   `embed:""`
}

func (c *LastCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, err := c.RoomOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, cancel := s.request()
	defer cancel()
	turn, err := s.client.GetPreviousTurn(ctx, code)
	if err != nil {
		return err
	}

	pocketed := make([]string, len(turn.Pocketed))
	for i, id := range turn.Pocketed {
		pocketed[i] = fmt.Sprint(id)
	}
	s.printf("Turn %d by seat %d: %s\n", turn.Number, turn.Seat, turn.Outcome)
	s.printf("Pocketed: %s\n", strings.Join(pocketed, ","))
	s.printf("%s\n", tui.RenderRack(turn.Balls))
	return nil
}

// WatchCmd shows a room live in the terminal.
type WatchCmd struct {
	ClientOptions `embed:""`
	RoomOptions   `embed:""`

	Interval time.Duration `short:"i" default:"1s" help:"Poll interval"`
}

func (c *WatchCmd) Run(globals *Globals) error {
	s, err := c.connect(globals)
	if err != nil {
		return err
	}
	defer s.close()

	code, err := c.RoomOptions.resolve(s.cfg)
	if err != nil {
		return err
	}
	ctx, stop := shared.ShutdownContext(context.Background(), s.logger)
	defer stop()
	return tui.Run(ctx, s.client, code, c.Interval, s.logger)
}
