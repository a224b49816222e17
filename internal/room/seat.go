package room

import (
	"crypto/subtle"
	"strings"
	"unicode/utf8"

	"github.com/lox/pandapool/internal/game"
	"github.com/lox/pandapool/internal/rpcerr"
)

// MaxNameLength caps display names, counted in runes.
const MaxNameLength = 32

// Seat is an occupied position in a room. The token is fixed at creation.
type Seat struct {
	Index game.Seat
	Name  string
	token string
}

// PublicSeat is the part of a seat both players may see.
type PublicSeat struct {
	Index game.Seat
	Name  string
}

func newSeat(index game.Seat, token, name string) *Seat {
	return &Seat{Index: index, Name: name, token: token}
}

func (s *Seat) public() PublicSeat {
	return PublicSeat{Index: s.Index, Name: s.Name}
}

// authorize checks (seat, token) against the occupied seats.
func authorize(seats [2]*Seat, seat game.Seat, token string) error {
	if !seat.Valid() {
		return rpcerr.InvalidArgument("seat %d out of range", int(seat))
	}
	if token == "" {
		return rpcerr.InvalidArgument("token required")
	}
	occupant := seats[seat]
	if occupant == nil {
		return rpcerr.PermissionDenied("%s is not occupied", seat)
	}
	if subtle.ConstantTimeCompare([]byte(occupant.token), []byte(token)) != 1 {
		return rpcerr.PermissionDenied("invalid token for %s", seat)
	}
	return nil
}

// normalizeName trims name and truncates it to MaxNameLength runes.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", rpcerr.InvalidArgument("name must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
	}
	return name, nil
}
