// internal/game/engine.go
//
// Simulation engine for one bingo game.
// Responsibilities:
//   - Hold the initial boards and draw sequence, never mutating them.
//   - Replay the draws against a fresh copy of the boards per query.
//   - Answer "first board to complete" and "last board to complete".
//
// Notes:
//   - Both queries share one replay loop; they differ only in when they stop.
//   - Boards are visited in input order on every draw. That order is the
//     tie-break: the earliest board wins FirstWinner, and on the final
//     draw of LastWinner the latest board to complete is reported.
//   - A board that has already won is skipped entirely by later draws.

package game

import "errors"

// ErrNoWinner means the draws ran out before the query was satisfied.
var ErrNoWinner = errors.New("no winner")

// Game owns the initial state of a simulation.
type Game struct {
	boards []Board
	draws  Draws
}

// New constructs a game. Boards are cloned so the caller may keep using its
// own copies.
func New(boards []Board, draws Draws) *Game {
	g := &Game{boards: make([]Board, len(boards)), draws: draws}
	for i, b := range boards {
		g.boards[i] = b.Clone()
	}
	return g
}

// Boards reports how many boards take part.
func (g *Game) Boards() int { return len(g.boards) }

// Draws returns the draw sequence.
func (g *Game) Draws() Draws { return g.draws }

// FirstWinner returns the first board to complete.
func (g *Game) FirstWinner() (Win, error) {
	wins := g.play(true)
	if len(wins) == 0 {
		return Win{}, ErrNoWinner
	}
	return wins[0], nil
}

// LastWinner returns the board that completes last. If several boards
// finish on that final draw, the one latest in board order is reported.
func (g *Game) LastWinner() (Win, error) {
	wins := g.play(false)
	if len(g.boards) == 0 || len(wins) < len(g.boards) {
		return Win{}, ErrNoWinner
	}
	return wins[len(wins)-1], nil
}

// Replay returns every completion in the order it happened.
func (g *Game) Replay() []Win {
	return g.play(false)
}

// play runs the draw loop on a private copy of the boards. With stopAtFirst
// it returns as soon as one board completes; otherwise it runs until every
// board has won or the draws are exhausted.
func (g *Game) play(stopAtFirst bool) []Win {
	boards := make([]Board, len(g.boards))
	for i, b := range g.boards {
		boards[i] = b.Clone()
	}
	won := make([]bool, len(boards))
	remaining := len(boards)

	var wins []Win
	g.draws.All(func(i, v int) bool {
		for bi := range boards {
			if won[bi] {
				continue
			}
			if !step(boards[bi], v) {
				continue
			}
			won[bi] = true
			remaining--
			wins = append(wins, Win{
				Board:     bi,
				DrawIndex: i,
				Draw:      v,
				Score:     v * boards[bi].UnmarkedSum(),
			})
			if stopAtFirst {
				return false
			}
		}
		return remaining > 0
	})
	return wins
}

// step applies one draw to one board and reports whether it is now complete.
func step(b Board, v int) bool {
	b.Mark(v)
	return b.IsComplete()
}
