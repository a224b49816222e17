package game

import (
	"fmt"
	"strings"
)

const (
	NumBalls  = 16
	CueBall   = 0
	EightBall = 8
	GroupSize = 7
)

// Group is a set of seven object balls a seat must clear.
type Group int

const (
	Undetermined Group = iota
	Solids
	Stripes
)

// String returns the string representation of a group
func (g Group) String() string {
	switch g {
	case Solids:
		return "solids"
	case Stripes:
		return "stripes"
	default:
		return "undetermined"
	}
}

// Complement returns the group held by the other seat.
func (g Group) Complement() Group {
	switch g {
	case Solids:
		return Stripes
	case Stripes:
		return Solids
	default:
		return Undetermined
	}
}

// ParseGroup parses the output of Group.String.
func ParseGroup(s string) (Group, error) {
	switch strings.ToLower(s) {
	case "solids":
		return Solids, nil
	case "stripes":
		return Stripes, nil
	case "undetermined", "":
		return Undetermined, nil
	}
	return Undetermined, fmt.Errorf("unknown group %q", s)
}

// GroupOfBall maps a ball id to its group. The cue ball and the eight-ball
// belong to neither group.
func GroupOfBall(id int) Group {
	switch {
	case id >= 1 && id <= 7:
		return Solids
	case id >= 9 && id <= 15:
		return Stripes
	default:
		return Undetermined
	}
}

// GroupBalls returns the ids belonging to g in ascending order.
func GroupBalls(g Group) []int {
	var first int
	switch g {
	case Solids:
		first = 1
	case Stripes:
		first = 9
	default:
		return nil
	}
	ids := make([]int, GroupSize)
	for i := range ids {
		ids[i] = first + i
	}
	return ids
}

// Ball is one of the sixteen balls. InPlay is false once pocketed.
type Ball struct {
	ID     int
	InPlay bool
}

// Rack is the ball table indexed by ball id.
type Rack [NumBalls]Ball

// NewRack returns a full rack with every ball on the table.
func NewRack() Rack {
	var r Rack
	for i := range r {
		r[i] = Ball{ID: i, InPlay: true}
	}
	return r
}

// Slice returns the rack as a fresh slice.
func (r Rack) Slice() []Ball {
	out := make([]Ball, NumBalls)
	copy(out, r[:])
	return out
}

// RackFromBalls builds a rack from a submitted ball list. The list must name
// every id from 0 to 15 exactly once, in any order.
func RackFromBalls(balls []Ball) (Rack, error) {
	var r Rack
	if len(balls) != NumBalls {
		return r, fmt.Errorf("expected %d balls, got %d", NumBalls, len(balls))
	}

	var seen [NumBalls]bool
	for _, b := range balls {
		if b.ID < 0 || b.ID >= NumBalls {
			return r, fmt.Errorf("ball id %d out of range", b.ID)
		}
		if seen[b.ID] {
			return r, fmt.Errorf("ball %d listed twice", b.ID)
		}
		seen[b.ID] = true
		r[b.ID] = b
	}
	return r, nil
}

// newlyPocketed lists object balls on the table in r and off it in next.
func (r Rack) newlyPocketed(next Rack) []int {
	var ids []int
	for id := 1; id < NumBalls; id++ {
		if r[id].InPlay && !next[id].InPlay {
			ids = append(ids, id)
		}
	}
	return ids
}

// checkTransition rejects object balls returning to the table. The cue ball
// is exempt.
func (r Rack) checkTransition(next Rack) error {
	for id := 1; id < NumBalls; id++ {
		if !r[id].InPlay && next[id].InPlay {
			return fmt.Errorf("ball %d cannot return to the table", id)
		}
	}
	return nil
}
