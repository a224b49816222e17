package game

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pandapool/internal/rpcerr"
)

// pocket returns the current table with ids taken off it.
func pocket(s *GameState, ids ...int) []Ball {
	rack := s.Balls
	for _, id := range ids {
		rack[id].InPlay = false
	}
	return rack.Slice()
}

func TestNewGameState(t *testing.T) {
	s := NewGameState()

	assert.Equal(t, Seat0, s.TurnOwner)
	assert.Equal(t, Undetermined, s.GroupOf(Seat0))
	assert.Equal(t, Undetermined, s.GroupOf(Seat1))
	assert.Equal(t, [2]int{0, 0}, s.Scores)
	for id, b := range s.Balls {
		assert.Equal(t, id, b.ID)
		assert.True(t, b.InPlay, "ball %d should be racked", id)
	}
}

func TestApplyTurnAssignsGroupAndKeepsTable(t *testing.T) {
	s := NewGameState()

	turn, err := s.ApplyTurn(Seat0, pocket(s, 3))
	require.NoError(t, err)

	assert.Equal(t, Continue, turn.Outcome)
	assert.Equal(t, []int{3}, turn.Pocketed)
	assert.Equal(t, 1, turn.Number)
	assert.Equal(t, Solids, s.GroupOf(Seat0))
	assert.Equal(t, Stripes, s.GroupOf(Seat1))
	assert.Equal(t, Seat0, s.TurnOwner)
	assert.Equal(t, [2]int{1, 0}, s.Scores)
	assert.False(t, s.Balls[3].InPlay)
}

func TestApplyTurnSeat1ClaimsGroup(t *testing.T) {
	s := NewGameState()

	_, err := s.ApplyTurn(Seat0, pocket(s))
	require.NoError(t, err)
	require.Equal(t, Seat1, s.TurnOwner)

	turn, err := s.ApplyTurn(Seat1, pocket(s, 10))
	require.NoError(t, err)

	assert.Equal(t, Continue, turn.Outcome)
	assert.Equal(t, Stripes, s.GroupOf(Seat1))
	assert.Equal(t, Solids, s.GroupOf(Seat0))
	assert.Equal(t, Seat1, s.TurnOwner)
	assert.Equal(t, [2]int{0, 1}, s.Scores)
}

func TestChooseGroup(t *testing.T) {
	tests := []struct {
		name     string
		pocketed []int
		want     Group
	}{
		{"single solid", []int{3}, Solids},
		{"single stripe", []int{14}, Stripes},
		{"stripes majority", []int{2, 9, 10}, Stripes},
		{"solids majority", []int{1, 2, 15}, Solids},
		{"tie goes to lowest ball", []int{3, 12}, Solids},
		{"tie with stripes listed first", []int{9, 11, 5, 6}, Solids},
		{"nothing", nil, Undetermined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := slices.Clone(tt.pocketed)
			slices.Sort(sorted)
			assert.Equal(t, tt.want, chooseGroup(sorted))
		})
	}
}

func TestApplyTurnPassesWhenNothingOwnPocketed(t *testing.T) {
	s := NewGameState()
	s.Seat0Group = Solids

	turn, err := s.ApplyTurn(Seat0, pocket(s, 12))
	require.NoError(t, err)

	assert.Equal(t, Pass, turn.Outcome)
	assert.Equal(t, Seat1, s.TurnOwner)
	// The stripe still counts for the seat that owns stripes.
	assert.Equal(t, [2]int{0, 1}, s.Scores)
}

func TestApplyTurnEmptyShotFlipsOwner(t *testing.T) {
	s := NewGameState()

	turn, err := s.ApplyTurn(Seat0, pocket(s))
	require.NoError(t, err)

	assert.Equal(t, Pass, turn.Outcome)
	assert.Nil(t, turn.Pocketed)
	assert.Equal(t, Seat1, s.TurnOwner)
}

func TestApplyTurnScratch(t *testing.T) {
	s := NewGameState()

	turn, err := s.ApplyTurn(Seat0, pocket(s, CueBall, 2, 4))
	require.NoError(t, err)

	assert.Equal(t, Foul, turn.Outcome)
	assert.Equal(t, Seat1, s.TurnOwner)
	assert.Equal(t, Undetermined, s.GroupOf(Seat0), "a foul never assigns groups")
	assert.Equal(t, [2]int{0, 0}, s.Scores, "balls pocketed on a foul are not credited")
	assert.False(t, s.Balls[2].InPlay)
	assert.False(t, s.Balls[4].InPlay)
	assert.True(t, s.Balls[CueBall].InPlay, "cue ball is re-spotted")
	assert.False(t, turn.Balls[CueBall].InPlay, "turn keeps the submitted table")
}

func TestApplyTurnScratchWithOwnGroupStillPasses(t *testing.T) {
	s := NewGameState()
	s.Seat0Group = Solids

	turn, err := s.ApplyTurn(Seat0, pocket(s, CueBall, 1))
	require.NoError(t, err)

	assert.Equal(t, Foul, turn.Outcome)
	assert.Equal(t, Seat1, s.TurnOwner)
	assert.Equal(t, [2]int{0, 0}, s.Scores)
}

func TestApplyTurnWrongSeat(t *testing.T) {
	s := NewGameState()
	before := *s

	_, err := s.ApplyTurn(Seat1, pocket(s, 9))
	require.Error(t, err)

	assert.True(t, errors.Is(err, rpcerr.ErrPermissionDenied))
	assert.Equal(t, before, *s)
}

func TestApplyTurnRejectsMalformedTables(t *testing.T) {
	base := NewGameState()
	base.Balls[5].InPlay = false

	full := base.Balls.Slice()
	dup := base.Balls.Slice()
	dup[15] = Ball{ID: 14, InPlay: true}
	outOfRange := base.Balls.Slice()
	outOfRange[15] = Ball{ID: 16, InPlay: true}
	negative := base.Balls.Slice()
	negative[0] = Ball{ID: -1, InPlay: true}
	returning := base.Balls.Slice()
	returning[5].InPlay = true

	tests := []struct {
		name  string
		balls []Ball
	}{
		{"empty", nil},
		{"too few", full[:15]},
		{"too many", append(full, Ball{ID: 3, InPlay: true})},
		{"duplicate id", dup},
		{"id out of range", outOfRange},
		{"negative id", negative},
		{"pocketed ball returns", returning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *base
			_, err := s.ApplyTurn(Seat0, tt.balls)
			require.Error(t, err)
			assert.True(t, errors.Is(err, rpcerr.ErrInvalidArgument), "got %v", err)
			assert.Equal(t, *base, s)
		})
	}
}

func TestApplyTurnAcceptsAnyOrder(t *testing.T) {
	s := NewGameState()
	balls := pocket(s, 7)
	slices.Reverse(balls)

	turn, err := s.ApplyTurn(Seat0, balls)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, turn.Pocketed)
	assert.Equal(t, 7, turn.Balls[7].ID)
}

// cleared returns a state where seat 0 holds solids and has pocketed all
// of them.
func cleared() *GameState {
	s := NewGameState()
	s.Seat0Group = Solids
	for _, id := range GroupBalls(Solids) {
		s.Balls[id].InPlay = false
	}
	s.Scores = [2]int{GroupSize, 0}
	return s
}

func TestApplyTurnEightBallWin(t *testing.T) {
	s := cleared()

	turn, err := s.ApplyTurn(Seat0, pocket(s, EightBall))
	require.NoError(t, err)

	assert.Equal(t, Won, turn.Outcome)
	assert.Equal(t, WinState{Outcome: Seat0Wins}, Evaluate(*s))
	assert.True(t, s.Decided())

	_, err = s.ApplyTurn(Seat0, pocket(s))
	assert.True(t, errors.Is(err, rpcerr.ErrUnavailable), "no turns after the game is decided")
}

func TestApplyTurnFoulPocketsDoNotClearGroup(t *testing.T) {
	s := NewGameState()

	turn, err := s.ApplyTurn(Seat0, pocket(s, 1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	require.Equal(t, Continue, turn.Outcome)
	require.Equal(t, Solids, s.GroupOf(Seat0))
	assert.Equal(t, 1, s.Outstanding(Seat0))

	turn, err = s.ApplyTurn(Seat0, pocket(s, CueBall, 7))
	require.NoError(t, err)
	assert.Equal(t, Foul, turn.Outcome)
	assert.Equal(t, [2]int{6, 0}, s.Scores)
	assert.False(t, s.Balls[7].InPlay, "balls sunk on a foul stay down")
	assert.Equal(t, 1, s.Outstanding(Seat0), "a ball sunk on a foul is not cleared")

	turn, err = s.ApplyTurn(Seat1, pocket(s))
	require.NoError(t, err)
	require.Equal(t, Pass, turn.Outcome)

	turn, err = s.ApplyTurn(Seat0, pocket(s, EightBall))
	require.NoError(t, err)
	assert.Equal(t, Lost, turn.Outcome)
	assert.Equal(t, 1, s.EightBall.GroupRemaining)
	assert.Equal(t, WinState{Outcome: Seat1Wins}, Evaluate(*s))
}

func TestApplyTurnEightBallLosses(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *GameState
		balls func(*GameState) []Ball
	}{
		{
			name:  "group still on the table",
			setup: func() *GameState { s := NewGameState(); s.Seat0Group = Solids; return s },
			balls: func(s *GameState) []Ball { return pocket(s, EightBall) },
		},
		{
			name:  "groups undetermined",
			setup: NewGameState,
			balls: func(s *GameState) []Ball { return pocket(s, EightBall) },
		},
		{
			name:  "undetermined with a solid on the same shot",
			setup: NewGameState,
			balls: func(s *GameState) []Ball { return pocket(s, 2, EightBall) },
		},
		{
			name:  "scratch on the eight",
			setup: cleared,
			balls: func(s *GameState) []Ball { return pocket(s, CueBall, EightBall) },
		},
		{
			name: "last group ball and eight together",
			setup: func() *GameState {
				s := cleared()
				s.Balls[7].InPlay = true
				s.Scores[Seat0]--
				return s
			},
			balls: func(s *GameState) []Ball { return pocket(s, 7, EightBall) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setup()
			turn, err := s.ApplyTurn(Seat0, tt.balls(s))
			require.NoError(t, err)

			assert.Equal(t, Lost, turn.Outcome)
			winner, ok := Evaluate(*s).Winner()
			require.True(t, ok)
			assert.Equal(t, Seat1, winner)
		})
	}
}
