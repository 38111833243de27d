// internal/game/board.go
//
// Board construction and the three primitives the engine relies on:
// Mark, IsComplete and UnmarkedSum. Draws lives here too since it is
// just as small.

package game

import (
	"errors"
	"fmt"
)

// ErrRaggedBoard is returned by NewBoard when rows differ in length.
var ErrRaggedBoard = errors.New("ragged board")

// RaggedRowError names the first row whose length differs from row 0.
// It matches ErrRaggedBoard under errors.Is.
type RaggedRowError struct {
	Row       int // 0-based index into the rows passed to NewBoard
	Got, Want int
}

func (e *RaggedRowError) Error() string {
	return fmt.Sprintf("%v: row %d has %d values, want %d", ErrRaggedBoard, e.Row+1, e.Got, e.Want)
}

func (e *RaggedRowError) Unwrap() error { return ErrRaggedBoard }

// NewBoard builds an unmarked board from row-major values.
func NewBoard(rows [][]int) (Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Board{}, errors.New("empty board")
	}
	width := len(rows[0])
	cells := make([][]Cell, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return Board{}, &RaggedRowError{Row: y, Got: len(row), Want: width}
		}
		cells[y] = make([]Cell, width)
		for x, v := range row {
			cells[y][x] = Cell{Value: v}
		}
	}
	return Board{Cells: cells}, nil
}

// Rows and Cols report the board dimensions.
func (b Board) Rows() int { return len(b.Cells) }
func (b Board) Cols() int {
	if len(b.Cells) == 0 {
		return 0
	}
	return len(b.Cells[0])
}

// Clone returns a deep copy; marking the copy leaves b untouched.
func (b Board) Clone() Board {
	cells := make([][]Cell, len(b.Cells))
	for y, row := range b.Cells {
		cells[y] = append([]Cell(nil), row...)
	}
	return Board{Cells: cells}
}

// Mark flags every cell holding v. Unknown values are a no-op.
func (b Board) Mark(v int) {
	for y := range b.Cells {
		for x := range b.Cells[y] {
			if b.Cells[y][x].Value == v {
				b.Cells[y][x].Marked = true
			}
		}
	}
}

// IsComplete reports whether any full row or any full column is marked.
// Diagonals do not count.
func (b Board) IsComplete() bool {
	for _, row := range b.Cells {
		if allMarked(row) {
			return true
		}
	}
	for x := 0; x < b.Cols(); x++ {
		col := true
		for y := 0; y < b.Rows(); y++ {
			if !b.Cells[y][x].Marked {
				col = false
				break
			}
		}
		if col {
			return true
		}
	}
	return false
}

// UnmarkedSum adds up the values of all cells not yet called.
func (b Board) UnmarkedSum() int {
	sum := 0
	for _, row := range b.Cells {
		for _, c := range row {
			if !c.Marked {
				sum += c.Value
			}
		}
	}
	return sum
}

func allMarked(row []Cell) bool {
	for _, c := range row {
		if !c.Marked {
			return false
		}
	}
	return true
}

// NewDraws copies values so later edits by the caller cannot reorder play.
func NewDraws(values []int) Draws {
	return Draws{values: append([]int(nil), values...)}
}

// Len is the number of draws.
func (d Draws) Len() int { return len(d.values) }

// All calls fn for each draw in play order until fn returns false.
func (d Draws) All(fn func(i, v int) bool) {
	for i, v := range d.values {
		if !fn(i, v) {
			return
		}
	}
}
