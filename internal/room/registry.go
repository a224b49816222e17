package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pandapool/internal/game"
	"github.com/lox/pandapool/internal/ident"
	"github.com/lox/pandapool/internal/rpcerr"
)

const (
	DefaultMaxCodeAttempts = 8
	DefaultRoomName        = "Game Panda Pool"
	DefaultPlayerName      = "Guest"
)

// IDSource produces room codes and seat tokens.
type IDSource interface {
	RoomCode() (string, error)
	SeatToken() (string, error)
}

// Stats summarises the registry for the /stats endpoint.
type Stats struct {
	Rooms   int
	Started int
}

// Registry owns every live room, keyed by code. Its lock guards only the map
// and is always released before a room lock is taken.
type Registry struct {
	mu              sync.RWMutex
	rooms           map[string]*Room
	ids             IDSource
	clock           quartz.Clock
	logger          *log.Logger
	maxCodeAttempts int
	roomName        string
	playerName      string
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDSource replaces the crypto/rand backed generator.
func WithIDSource(ids IDSource) Option {
	return func(r *Registry) {
		r.ids = ids
	}
}

// WithClock sets the clock used for room activity timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithMaxCodeAttempts bounds room code collision retries.
func WithMaxCodeAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxCodeAttempts = n
		}
	}
}

// WithDefaults sets the names given to new rooms and seats.
func WithDefaults(roomName, playerName string) Option {
	return func(r *Registry) {
		if roomName != "" {
			r.roomName = roomName
		}
		if playerName != "" {
			r.playerName = playerName
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger, opts ...Option) *Registry {
	r := &Registry{
		rooms:           make(map[string]*Room),
		ids:             ident.NewGenerator(ident.DefaultCodeLength, ident.DefaultTokenLength),
		clock:           quartz.NewReal(),
		logger:          logger.WithPrefix("registry"),
		maxCodeAttempts: DefaultMaxCodeAttempts,
		roomName:        DefaultRoomName,
		playerName:      DefaultPlayerName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom allocates a room with the caller in seat 0.
func (r *Registry) CreateRoom() (code, token string, err error) {
	token, err = r.ids.SeatToken()
	if err != nil {
		return "", "", rpcerr.Internal("generate token: %v", err)
	}
	host := newSeat(game.Seat0, token, r.playerName)

	for attempt := 1; attempt <= r.maxCodeAttempts; attempt++ {
		code, err = r.ids.RoomCode()
		if err != nil {
			return "", "", rpcerr.Internal("generate room code: %v", err)
		}
		if r.insert(code, host) {
			r.logger.Info("Room created", "room", code, "attempt", attempt)
			return code, token, nil
		}
		r.logger.Debug("Room code collision", "room", code, "attempt", attempt)
	}

	r.logger.Warn("Room code space exhausted", "attempts", r.maxCodeAttempts)
	return "", "", rpcerr.Conflict("could not allocate room code")
}

func (r *Registry) insert(code string, host *Seat) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[code]; exists {
		return false
	}
	r.rooms[code] = newRoom(code, r.roomName, host, r.clock, r.logger)
	return true
}

// JoinRoom seats the caller in seat 1 of room code.
func (r *Registry) JoinRoom(code string) (string, error) {
	room, err := r.Lookup(code)
	if err != nil {
		return "", err
	}

	token, err := r.ids.SeatToken()
	if err != nil {
		return "", rpcerr.Internal("generate token: %v", err)
	}
	if err := room.join(newSeat(game.Seat1, token, r.playerName)); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup returns the room for code.
func (r *Registry) Lookup(code string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, rpcerr.NotFound("room %q not found", code)
	}
	return room, nil
}

// GetRoom returns the public view of room code.
func (r *Registry) GetRoom(code string) (View, error) {
	room, err := r.Lookup(code)
	if err != nil {
		return View{}, err
	}
	return room.View(), nil
}

// SetPlayerInfo renames an authorized seat.
func (r *Registry) SetPlayerInfo(code string, seat game.Seat, token, name string) error {
	room, err := r.Lookup(code)
	if err != nil {
		return err
	}
	return room.SetPlayerInfo(seat, token, name)
}

// StartGame starts the match in room code.
func (r *Registry) StartGame(code string, seat game.Seat, token string) error {
	room, err := r.Lookup(code)
	if err != nil {
		return err
	}
	return room.StartGame(seat, token)
}

// PostTurn applies a turn in room code.
func (r *Registry) PostTurn(code string, seat game.Seat, token string, balls []game.Ball) (TurnResult, error) {
	room, err := r.Lookup(code)
	if err != nil {
		return TurnResult{}, err
	}
	return room.PostTurn(seat, token, balls)
}

// GameState returns a copy of the game state in room code.
func (r *Registry) GameState(code string) (game.GameState, error) {
	room, err := r.Lookup(code)
	if err != nil {
		return game.GameState{}, err
	}
	return room.GameState()
}

// WinState evaluates the game in room code.
func (r *Registry) WinState(code string) (game.WinState, error) {
	room, err := r.Lookup(code)
	if err != nil {
		return game.WinState{}, err
	}
	return room.WinState()
}

// PreviousTurn returns the last applied turn in room code.
func (r *Registry) PreviousTurn(code string) (game.Turn, error) {
	room, err := r.Lookup(code)
	if err != nil {
		return game.Turn{}, err
	}
	return room.PreviousTurn()
}

// snapshot copies the room list so callers can visit rooms without holding
// the registry lock.
func (r *Registry) snapshot() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Stats counts live rooms and started games.
func (r *Registry) Stats() Stats {
	rooms := r.snapshot()
	stats := Stats{Rooms: len(rooms)}
	for _, room := range rooms {
		if room.Started() {
			stats.Started++
		}
	}
	return stats
}

// String is used in log lines.
func (s Stats) String() string {
	return fmt.Sprintf("rooms=%d started=%d", s.Rooms, s.Started)
}

// Sweep removes rooms idle for at least ttl and returns how many went.
//
// Each room is closed under its own lock before the map delete, so a caller
// still holding the pointer gets NotFound instead of mutating a room nobody
// can reach.
func (r *Registry) Sweep(ttl time.Duration) int {
	now := r.clock.Now()

	var expired []*Room
	for _, room := range r.snapshot() {
		if room.expire(now, ttl) {
			expired = append(expired, room)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, room := range expired {
		if r.rooms[room.code] == room {
			delete(r.rooms, room.code)
			removed++
			r.logger.Info("Room expired", "room", room.code)
		}
	}
	return removed
}
