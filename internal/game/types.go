// internal/game/types.go
//
// Core type definitions for the bingo simulator.
// Defines:
//   - Cell: one numbered square with its marked flag.
//   - Board: a rectangular grid of cells.
//   - Draws: the ordered sequence of called numbers.
//   - Win: a board completion captured at the draw that caused it.

package game

// Cell holds a single board value and whether it has been called.
type Cell struct {
	Value  int  `json:"value"`
	Marked bool `json:"marked"`
}

// Board is one bingo grid. Rows all have the same length.
// Boards are values: use Clone before mutating a shared copy.
type Board struct {
	Cells [][]Cell `json:"cells"`
}

// Draws is the immutable play order of called numbers.
type Draws struct {
	values []int
}

// Win records a board completing.
type Win struct {
	Board     int `json:"board"`     // index of the board in input order
	DrawIndex int `json:"drawIndex"` // position of the completing draw
	Draw      int `json:"draw"`      // the value that was just called
	Score     int `json:"score"`     // Draw × unmarked sum at that moment
}
