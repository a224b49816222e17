package room

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pandapool/internal/game"
	"github.com/lox/pandapool/internal/rpcerr"
)

// Room is one match between two seats. Every method takes the room lock for
// its whole duration and returns copies, never internal pointers.
type Room struct {
	mu           sync.Mutex
	code         string
	name         string
	seats        [2]*Seat
	state        *game.GameState
	previous     *game.Turn
	createdAt    time.Time
	lastActivity time.Time
	clock        quartz.Clock
	logger       *log.Logger

	// closed is set once the sweeper has claimed the room. A closed room
	// accepts no more mutations.
	closed bool
}

// View is the public description of a room.
type View struct {
	Code      string
	Name      string
	Started   bool
	Seats     []PublicSeat
	CreatedAt time.Time
}

// TurnResult is returned by PostTurn.
type TurnResult struct {
	Turn      game.Turn
	TurnOwner game.Seat
	Win       game.WinState
}

func newRoom(code, name string, host *Seat, clock quartz.Clock, logger *log.Logger) *Room {
	now := clock.Now()
	return &Room{
		code:         code,
		name:         name,
		seats:        [2]*Seat{host, nil},
		createdAt:    now,
		lastActivity: now,
		clock:        clock,
		logger:       logger.With("room", code),
	}
}

// Code returns the room code.
func (r *Room) Code() string {
	return r.code
}

func (r *Room) touch() {
	r.lastActivity = r.clock.Now()
}

// open fails with NotFound once the room has been swept.
func (r *Room) open() error {
	if r.closed {
		return rpcerr.NotFound("room %q not found", r.code)
	}
	return nil
}

// View returns the public room description.
func (r *Room) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := View{Code: r.code, Name: r.name, Started: r.state != nil, CreatedAt: r.createdAt}
	for _, s := range r.seats {
		if s != nil {
			v.Seats = append(v.Seats, s.public())
		}
	}
	return v
}

// Started reports whether StartGame has succeeded.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != nil
}

func (r *Room) join(seat *Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.open(); err != nil {
		return err
	}
	if r.seats[game.Seat1] != nil {
		return rpcerr.Conflict("room full")
	}
	r.seats[game.Seat1] = seat
	r.touch()
	r.logger.Info("Player joined", "seat", game.Seat1)
	return nil
}

// SetPlayerInfo sets the display name of an authorized seat.
func (r *Room) SetPlayerInfo(seat game.Seat, token, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.open(); err != nil {
		return err
	}
	if err := authorize(r.seats, seat, token); err != nil {
		return err
	}
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	r.seats[seat].Name = name
	r.touch()
	r.logger.Debug("Player renamed", "seat", seat, "name", name)
	return nil
}

// StartGame racks the balls and gives the break to seat 0.
func (r *Room) StartGame(seat game.Seat, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.open(); err != nil {
		return err
	}
	if err := authorize(r.seats, seat, token); err != nil {
		return err
	}
	if r.state != nil {
		return rpcerr.Conflict("game already started")
	}
	if r.seats[game.Seat1] == nil {
		return rpcerr.Unavailable("waiting for opponent")
	}

	r.state = game.NewGameState()
	r.touch()
	r.logger.Info("Game started", "by", seat)
	return nil
}

// PostTurn validates and applies a turn submitted by seat. The caller is
// authorized before anything else is checked. Rejected turns leave the room
// unchanged.
func (r *Room) PostTurn(seat game.Seat, token string, balls []game.Ball) (TurnResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.open(); err != nil {
		return TurnResult{}, err
	}
	if err := authorize(r.seats, seat, token); err != nil {
		r.logger.Warn("Turn rejected", "seat", seat, "error", err)
		return TurnResult{}, err
	}
	if r.state == nil {
		return TurnResult{}, rpcerr.Unavailable("game not started")
	}
	if r.state.Decided() {
		return TurnResult{}, rpcerr.Unavailable("game is over")
	}

	turn, err := r.state.ApplyTurn(seat, balls)
	if err != nil {
		r.logger.Warn("Turn rejected", "seat", seat, "error", err)
		return TurnResult{}, err
	}

	stored := turn.Clone()
	r.previous = &stored
	r.touch()

	win := game.Evaluate(*r.state)
	r.logger.Debug("Turn applied",
		"turn", turn.Number,
		"seat", seat,
		"outcome", turn.Outcome,
		"pocketed", turn.Pocketed,
		"owner", r.state.TurnOwner)
	if win.Outcome != game.NoWinner {
		r.logger.Info("Game decided", "outcome", win.Outcome)
	}

	return TurnResult{Turn: turn, TurnOwner: r.state.TurnOwner, Win: win}, nil
}

// GameState returns a copy of the current game state.
func (r *Room) GameState() (game.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return game.GameState{}, rpcerr.Unavailable("game not started")
	}
	return *r.state, nil
}

// WinState evaluates the current game state.
func (r *Room) WinState() (game.WinState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return game.WinState{}, rpcerr.Unavailable("game not started")
	}
	return game.Evaluate(*r.state), nil
}

// PreviousTurn returns the most recently applied turn.
func (r *Room) PreviousTurn() (game.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.previous == nil {
		return game.Turn{}, rpcerr.Unavailable("no turn played yet")
	}
	return r.previous.Clone(), nil
}

// expire closes the room if it has been idle for at least ttl and reports
// whether it did. A room touched after the check stays open.
func (r *Room) expire(now time.Time, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastActivity) < ttl {
		return false
	}
	r.closed = true
	return true
}
