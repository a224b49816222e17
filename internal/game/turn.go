package game

import (
	"slices"

	"github.com/lox/pandapool/internal/rpcerr"
)

// TurnOutcome describes how a turn was scored.
type TurnOutcome int

const (
	// Continue: the shooter pocketed one of its own group and keeps the table.
	Continue TurnOutcome = iota
	// Pass: nothing of the shooter's group went down.
	Pass
	// Foul: the cue ball was pocketed.
	Foul
	// Won: the shooter legally pocketed the eight-ball.
	Won
	// Lost: the shooter pocketed the eight-ball illegally.
	Lost
)

// String returns the string representation of a turn outcome
func (o TurnOutcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Pass:
		return "pass"
	case Foul:
		return "foul"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Turn is an applied move. It is never modified after ApplyTurn returns it.
type Turn struct {
	Number   int
	Seat     Seat
	Balls    Rack
	Pocketed []int
	Outcome  TurnOutcome
}

// Clone returns a deep copy of t.
func (t Turn) Clone() Turn {
	t.Pocketed = slices.Clone(t.Pocketed)
	return t
}

// ApplyTurn applies the ball table submitted by seat. On error the state is
// left untouched.
func (s *GameState) ApplyTurn(seat Seat, balls []Ball) (Turn, error) {
	if s.Decided() {
		return Turn{}, rpcerr.Unavailable("game is over")
	}
	if !seat.Valid() {
		return Turn{}, rpcerr.InvalidArgument("seat %d out of range", int(seat))
	}
	if seat != s.TurnOwner {
		return Turn{}, rpcerr.PermissionDenied("not your turn")
	}

	result, err := RackFromBalls(balls)
	if err != nil {
		return Turn{}, rpcerr.InvalidArgument("%v", err)
	}
	if err := s.Balls.checkTransition(result); err != nil {
		return Turn{}, rpcerr.InvalidArgument("%v", err)
	}

	next := *s
	next.Balls = result
	next.TurnNumber++

	pocketed := s.Balls.newlyPocketed(result)
	scratch := !result[CueBall].InPlay
	eight := slices.Contains(pocketed, EightBall)

	if !scratch && next.Seat0Group == Undetermined {
		if g := chooseGroup(pocketed); g != Undetermined {
			if seat == Seat0 {
				next.Seat0Group = g
			} else {
				next.Seat0Group = g.Complement()
			}
		}
	}

	if !scratch {
		for _, id := range pocketed {
			if owner, ok := next.SeatOf(GroupOfBall(id)); ok {
				next.Scores[owner]++
			}
		}
	}

	var outcome TurnOutcome
	switch {
	case eight:
		next.EightBall = EightBallShot{
			Pocketed:       true,
			By:             seat,
			Scratch:        scratch,
			GroupRemaining: s.Outstanding(seat),
		}
		outcome = Lost
		if winner, ok := Evaluate(next).Winner(); ok && winner == seat {
			outcome = Won
		}
	case scratch:
		outcome = Foul
		next.TurnOwner = seat.Other()
		next.Balls[CueBall].InPlay = true
	case pocketedOwn(pocketed, next.GroupOf(seat)):
		outcome = Continue
	default:
		outcome = Pass
		next.TurnOwner = seat.Other()
	}

	*s = next
	return Turn{
		Number:   next.TurnNumber,
		Seat:     seat,
		Balls:    result,
		Pocketed: pocketed,
		Outcome:  outcome,
	}, nil
}

// chooseGroup picks the group a seat claims from its first legal pocket: the
// group with more balls down, ties going to the lowest-numbered ball.
func chooseGroup(pocketed []int) Group {
	var solids, stripes int
	first := Undetermined
	for _, id := range pocketed {
		g := GroupOfBall(id)
		switch g {
		case Solids:
			solids++
		case Stripes:
			stripes++
		default:
			continue
		}
		if first == Undetermined {
			first = g
		}
	}
	switch {
	case solids > stripes:
		return Solids
	case stripes > solids:
		return Stripes
	default:
		return first
	}
}

func pocketedOwn(pocketed []int, g Group) bool {
	if g == Undetermined {
		return false
	}
	for _, id := range pocketed {
		if GroupOfBall(id) == g {
			return true
		}
	}
	return false
}
