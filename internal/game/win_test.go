package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupOfBall(t *testing.T) {
	want := map[int]Group{0: Undetermined, 8: Undetermined}
	for id := 1; id <= 7; id++ {
		want[id] = Solids
	}
	for id := 9; id <= 15; id++ {
		want[id] = Stripes
	}

	for id := 0; id < NumBalls; id++ {
		assert.Equal(t, want[id], GroupOfBall(id), "ball %d", id)
	}
	assert.Equal(t, Undetermined, GroupOfBall(-1))
	assert.Equal(t, Undetermined, GroupOfBall(16))
}

func TestGroupBalls(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, GroupBalls(Solids))
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15}, GroupBalls(Stripes))
	assert.Nil(t, GroupBalls(Undetermined))
}

func TestParseGroup(t *testing.T) {
	for _, g := range []Group{Undetermined, Solids, Stripes} {
		parsed, err := ParseGroup(g.String())
		assert.NoError(t, err)
		assert.Equal(t, g, parsed)
	}
	_, err := ParseGroup("spots")
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	eightDown := func(s GameState) GameState {
		s.Balls[EightBall].InPlay = false
		return s
	}
	clearedSeat1 := func() GameState {
		s := *NewGameState()
		s.Seat0Group = Solids
		for _, id := range GroupBalls(Stripes) {
			s.Balls[id].InPlay = false
		}
		s.Scores = [2]int{0, GroupSize}
		return s
	}

	tests := []struct {
		name  string
		state GameState
		want  Outcome
	}{
		{
			name:  "fresh rack",
			state: *NewGameState(),
			want:  NoWinner,
		},
		{
			name: "groups cleared but eight on the table",
			state: func() GameState {
				s := clearedSeat1()
				return s
			}(),
			want: NoWinner,
		},
		{
			name: "legal eight by seat 1",
			state: func() GameState {
				s := eightDown(clearedSeat1())
				s.EightBall = EightBallShot{Pocketed: true, By: Seat1}
				return s
			}(),
			want: Seat1Wins,
		},
		{
			name: "seat 1 scratches on the eight",
			state: func() GameState {
				s := eightDown(clearedSeat1())
				s.EightBall = EightBallShot{Pocketed: true, By: Seat1, Scratch: true}
				return s
			}(),
			want: Seat0Wins,
		},
		{
			name: "seat 0 pockets eight early",
			state: func() GameState {
				s := eightDown(clearedSeat1())
				s.EightBall = EightBallShot{Pocketed: true, By: Seat0, GroupRemaining: GroupSize}
				return s
			}(),
			want: Seat1Wins,
		},
		{
			name: "group off the table but partly sunk on fouls",
			state: func() GameState {
				s := eightDown(clearedSeat1())
				s.Scores = [2]int{0, GroupSize - 2}
				s.EightBall = EightBallShot{Pocketed: true, By: Seat1}
				return s
			}(),
			want: Seat0Wins,
		},
		{
			name: "undetermined groups never win",
			state: func() GameState {
				s := eightDown(*NewGameState())
				s.EightBall = EightBallShot{Pocketed: true, By: Seat0}
				return s
			}(),
			want: Seat1Wins,
		},
		{
			name: "record without the ball off the table is ignored",
			state: func() GameState {
				s := clearedSeat1()
				s.EightBall = EightBallShot{Pocketed: true, By: Seat1}
				return s
			}(),
			want: NoWinner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state
			assert.Equal(t, tt.want, Evaluate(tt.state).Outcome)
			assert.Equal(t, before, tt.state)
		})
	}
}

func TestWinStateWinner(t *testing.T) {
	_, ok := WinState{}.Winner()
	assert.False(t, ok)

	seat, ok := WinState{Outcome: Seat1Wins}.Winner()
	assert.True(t, ok)
	assert.Equal(t, Seat1, seat)
}
