package game

// Outcome is the result of a match.
type Outcome int

const (
	NoWinner Outcome = iota
	Seat0Wins
	Seat1Wins
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case Seat0Wins:
		return "seat0_wins"
	case Seat1Wins:
		return "seat1_wins"
	default:
		return "none"
	}
}

// WinState is derived from a GameState by Evaluate and never stored.
type WinState struct {
	Outcome Outcome
}

// Winner returns the winning seat, if any.
func (w WinState) Winner() (Seat, bool) {
	switch w.Outcome {
	case Seat0Wins:
		return Seat0, true
	case Seat1Wins:
		return Seat1, true
	default:
		return Seat0, false
	}
}

func winFor(seat Seat) WinState {
	if seat == Seat0 {
		return WinState{Outcome: Seat0Wins}
	}
	return WinState{Outcome: Seat1Wins}
}

// Evaluate decides the match from s alone.
//
// The game is ongoing while the eight-ball is on the table. Once it is down
// the shooter wins only if it already held a group that was cleared by legal
// pockets before the shot, and the cue ball stayed on the table. Anything else
// hands the match to the opponent.
func Evaluate(s GameState) WinState {
	shot := s.EightBall
	if !shot.Pocketed || s.Balls[EightBall].InPlay || !shot.By.Valid() {
		return WinState{Outcome: NoWinner}
	}

	shooter := shot.By
	group := s.GroupOf(shooter)
	switch {
	case group == Undetermined:
		return winFor(shooter.Other())
	case shot.Scratch:
		return winFor(shooter.Other())
	case shot.GroupRemaining > 0 || s.Outstanding(shooter) > 0:
		return winFor(shooter.Other())
	}
	return winFor(shooter)
}
