// Package game implements the rules of a two-seat 8-ball pool match.
//
// The main type is GameState, which holds the ball table, per-seat scores,
// the group assignment and the seat whose turn it is. Ball physics happen
// elsewhere: a turn is submitted as the resulting ball table and the state
// machine decides what it means.
//
// # Basic Usage
//
//	s := game.NewGameState()
//	rack := s.Balls
//	rack[3].InPlay = false // seat 0 pocketed the 3
//	turn, err := s.ApplyTurn(game.Seat0, rack[:])
//	// turn.Outcome == game.Continue, s.GroupOf(game.Seat0) == game.Solids
//
// # Rules
//
// ApplyTurn validates the submitted table, then applies, in order:
//   - scratch (cue ball off the table): foul, the turn passes
//   - group assignment on the first legal pocket
//   - eight-ball pocketed: terminal, resolved by Evaluate
//   - otherwise the shooter keeps the table only if it pocketed one of its
//     own group
//
// Evaluate is a pure function of GameState and never mutates it.
//
// GameState is not safe for concurrent use; callers serialize access (the
// room package holds a per-room mutex around every call).
package game
