package game

import "fmt"

// Seat identifies one of the two players in a match.
type Seat int

const (
	Seat0 Seat = 0
	Seat1 Seat = 1
)

// Valid reports whether s is 0 or 1.
func (s Seat) Valid() bool {
	return s == Seat0 || s == Seat1
}

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	if s == Seat0 {
		return Seat1
	}
	return Seat0
}

func (s Seat) String() string {
	return fmt.Sprintf("seat %d", int(s))
}

// EightBallShot records the shot that pocketed the eight-ball.
type EightBallShot struct {
	Pocketed bool
	By       Seat
	Scratch  bool
	// GroupRemaining is the number of the shooter's group balls not yet
	// legally cleared when the shot began. GroupSize when the shooter had
	// no group.
	GroupRemaining int
}

// GameState is the mutable state of a started match.
type GameState struct {
	Balls      Rack
	Scores     [2]int
	Seat0Group Group
	TurnOwner  Seat
	TurnNumber int
	EightBall  EightBallShot
}

// NewGameState returns a freshly racked table with seat 0 to break.
func NewGameState() *GameState {
	return &GameState{
		Balls:      NewRack(),
		Seat0Group: Undetermined,
		TurnOwner:  Seat0,
	}
}

// GroupOf returns the group assigned to seat.
func (s *GameState) GroupOf(seat Seat) Group {
	if seat == Seat0 {
		return s.Seat0Group
	}
	return s.Seat0Group.Complement()
}

// Outstanding counts the balls of seat's group that have not been pocketed on
// a legal shot. Balls sunk on a foul stay off the table but still count here.
// Scores are credited on exactly those legal pockets.
func (s *GameState) Outstanding(seat Seat) int {
	if s.GroupOf(seat) == Undetermined {
		return GroupSize
	}
	return GroupSize - s.Scores[seat]
}

// SeatOf returns the seat holding g. ok is false while groups are
// undetermined.
func (s *GameState) SeatOf(g Group) (seat Seat, ok bool) {
	switch {
	case g == Undetermined || s.Seat0Group == Undetermined:
		return Seat0, false
	case s.Seat0Group == g:
		return Seat0, true
	default:
		return Seat1, true
	}
}

// Decided reports whether the match has a winner.
func (s *GameState) Decided() bool {
	return Evaluate(*s).Outcome != NoWinner
}
