package room

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pandapool/internal/game"
	"github.com/lox/pandapool/internal/rpcerr"
)

func TestSweepRemovesIdleRooms(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	reg := newTestRegistry(t, WithClock(clock))
	sweeper := NewSweeper(reg, 30*time.Minute, time.Minute, testLogger())

	idle, _, err := reg.CreateRoom()
	require.NoError(t, err)
	busy, host, err := reg.CreateRoom()
	require.NoError(t, err)

	clock.Advance(20 * time.Minute).MustWait(ctx)
	assert.Equal(t, 0, sweeper.SweepOnce())

	// Reads do not count as activity; renaming does.
	_, err = reg.GetRoom(idle)
	require.NoError(t, err)
	require.NoError(t, reg.SetPlayerInfo(busy, game.Seat0, host, "Alice"))

	clock.Advance(10 * time.Minute).MustWait(ctx)
	assert.Equal(t, 1, sweeper.SweepOnce())

	_, err = reg.GetRoom(idle)
	assertKind(t, rpcerr.ErrNotFound, err)
	_, err = reg.GetRoom(busy)
	require.NoError(t, err)

	clock.Advance(20 * time.Minute).MustWait(ctx)
	assert.Equal(t, 1, sweeper.SweepOnce())
	assert.Equal(t, 0, reg.Len())
}

func TestSweepKeepsActiveGames(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	reg := newTestRegistry(t, WithClock(clock))
	m := newMatch(t, reg)
	m.start(t)

	for range 5 {
		clock.Advance(10 * time.Minute).MustWait(ctx)
		_, err := m.shoot(m.owner(t))
		require.NoError(t, err)
		assert.Equal(t, 0, reg.Sweep(15*time.Minute))
	}
	assert.Equal(t, 1, reg.Len())
}

func TestSweptRoomRejectsLateCallers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	reg := newTestRegistry(t, WithClock(clock))
	code, host, err := reg.CreateRoom()
	require.NoError(t, err)

	// A joiner that looked the room up just before the sweep.
	room, err := reg.Lookup(code)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute).MustWait(ctx)
	require.Equal(t, 1, reg.Sweep(30*time.Minute))

	err = room.join(newSeat(game.Seat1, "guest-token-123", DefaultPlayerName))
	assertKind(t, rpcerr.ErrNotFound, err)
	assert.Nil(t, room.seats[game.Seat1])

	assertKind(t, rpcerr.ErrNotFound, room.SetPlayerInfo(game.Seat0, host, "Alice"))
	assertKind(t, rpcerr.ErrNotFound, room.StartGame(game.Seat0, host))
	_, err = room.PostTurn(game.Seat0, host, game.NewRack().Slice())
	assertKind(t, rpcerr.ErrNotFound, err)

	_, err = reg.JoinRoom(code)
	assertKind(t, rpcerr.ErrNotFound, err)
}

func TestSweepSparesRoomJoinedAfterIdle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	reg := newTestRegistry(t, WithClock(clock))
	code, _, err := reg.CreateRoom()
	require.NoError(t, err)

	clock.Advance(30 * time.Minute).MustWait(ctx)
	_, err = reg.JoinRoom(code)
	require.NoError(t, err)

	assert.Equal(t, 0, reg.Sweep(30*time.Minute))
	view, err := reg.GetRoom(code)
	require.NoError(t, err)
	assert.Len(t, view.Seats, 2)
}

func (m *match) owner(t *testing.T) game.Seat {
	t.Helper()
	state, err := m.reg.GameState(m.code)
	require.NoError(t, err)
	return state.TurnOwner
}

func TestSweeperRun(t *testing.T) {
	reg := newTestRegistry(t)
	_, _, err := reg.CreateRoom()
	require.NoError(t, err)

	sweeper := NewSweeper(reg, time.Nanosecond, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	require.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewSweeperDefaults(t *testing.T) {
	s := NewSweeper(newTestRegistry(t), 0, -1, testLogger())
	assert.Equal(t, DefaultRoomTTL, s.ttl)
	assert.Equal(t, DefaultSweepInterval, s.interval)
}
