package protocol

import (
	"github.com/lox/pandapool/internal/game"
)

// BallsFromRack converts a rack to its wire form, ordered by id.
func BallsFromRack(r game.Rack) []Ball {
	balls := make([]Ball, len(r))
	for i, b := range r {
		balls[i] = Ball{ID: b.ID, InPlay: b.InPlay}
	}
	return balls
}

// ToGameBalls converts wire balls to the game model. Order is preserved;
// validation happens when the turn is applied.
func ToGameBalls(balls []Ball) []game.Ball {
	out := make([]game.Ball, len(balls))
	for i, b := range balls {
		out[i] = game.Ball{ID: b.ID, InPlay: b.InPlay}
	}
	return out
}

func GameStateFrom(s game.GameState) GameState {
	return GameState{
		Balls:      BallsFromRack(s.Balls),
		Scores:     s.Scores,
		Groups:     [2]string{s.GroupOf(game.Seat0).String(), s.GroupOf(game.Seat1).String()},
		TurnOwner:  int(s.TurnOwner),
		TurnNumber: s.TurnNumber,
	}
}

func TurnFrom(t game.Turn) Turn {
	pocketed := t.Pocketed
	if pocketed == nil {
		pocketed = []int{}
	}
	return Turn{
		Number:   t.Number,
		Seat:     int(t.Seat),
		Balls:    BallsFromRack(t.Balls),
		Pocketed: pocketed,
		Outcome:  t.Outcome.String(),
	}
}

func WinStateFrom(w game.WinState) WinStateResponse {
	resp := WinStateResponse{Outcome: w.Outcome.String()}
	if seat, ok := w.Winner(); ok {
		winner := int(seat)
		resp.Winner = &winner
	}
	return resp
}

// Remaining reports which balls are still on the table.
func (s GameState) Remaining() []int {
	var ids []int
	for _, b := range s.Balls {
		if b.InPlay {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Shot builds the ball table after a shot that pocketed ids. Balls already
// off the table stay off.
func (s GameState) Shot(ids ...int) []Ball {
	balls := make([]Ball, len(s.Balls))
	copy(balls, s.Balls)
	for i := range balls {
		for _, id := range ids {
			if balls[i].ID == id {
				balls[i].InPlay = false
			}
		}
	}
	return balls
}
