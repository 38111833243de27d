// internal/puzzle/puzzle.go
//
// Reads bingo puzzle text into the in-memory model used by the game engine.
//
// Input format:
//   line 1      comma-separated draws, e.g. "7,4,9,5,11"
//   blank line
//   board rows  whitespace-separated integers, one board row per line
//   blank line  separates boards; end of input closes the last board
//
// Leading padding in board rows and repeated blank lines are accepted.
// Anything else that does not parse is reported as a *ParseError carrying
// the 1-based line number.

package puzzle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/robalobadob/bingo/internal/game"
)

// maxLine is the longest input line Parse accepts.
const maxLine = 1 << 20

// Puzzle is the parsed input: the draws and the boards in input order.
type Puzzle struct {
	Draws  game.Draws
	Boards []game.Board
}

// Game builds a simulation from the parsed input.
func (p *Puzzle) Game() *game.Game {
	return game.New(p.Boards, p.Draws)
}

// ParseError describes malformed input.
type ParseError struct {
	Line int    // 1-based line number
	Msg  string // what was wrong
	Err  error  // underlying conversion error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load opens path and parses it.
func Load(path string) (*Puzzle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ParseString is Parse for in-memory text.
func ParseString(s string) (*Puzzle, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads a whole puzzle from r.
func Parse(r io.Reader) (*Puzzle, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	p := &Puzzle{}
	line := 0

	var (
		rows     [][]int
		rowLines []int // input line of each entry in rows
	)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		b, err := game.NewBoard(rows)
		if err != nil {
			pe := &ParseError{Line: rowLines[0], Msg: "bad board", Err: err}
			var ragged *game.RaggedRowError
			if errors.As(err, &ragged) {
				pe.Line = rowLines[ragged.Row]
				pe.Msg = "ragged board row"
			}
			return pe
		}
		p.Boards = append(p.Boards, b)
		rows, rowLines = nil, nil
		return nil
	}

	haveDraws := false
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())

		if !haveDraws {
			if text == "" {
				return nil, &ParseError{Line: line, Msg: "missing draw sequence"}
			}
			draws, err := parseDraws(text, line)
			if err != nil {
				return nil, err
			}
			p.Draws = draws
			haveDraws = true
			continue
		}

		if text == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		row, err := parseRow(text, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		rowLines = append(rowLines, line)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: line + 1, Msg: "line too long", Err: err}
		}
		return nil, fmt.Errorf("read puzzle: %w", err)
	}
	if !haveDraws {
		return nil, &ParseError{Line: line + 1, Msg: "missing draw sequence"}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(p.Boards) == 0 {
		return nil, &ParseError{Line: line + 1, Msg: "no boards"}
	}
	return p, nil
}

func parseDraws(text string, line int) (game.Draws, error) {
	parts := strings.Split(text, ",")
	values := make([]int, 0, len(parts))
	for _, s := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return game.Draws{}, &ParseError{Line: line, Msg: fmt.Sprintf("bad draw %q", s), Err: err}
		}
		values = append(values, n)
	}
	return game.NewDraws(values), nil
}

func parseRow(text string, line int) ([]int, error) {
	fields := strings.Fields(text)
	row := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("bad cell %q", f), Err: err}
		}
		row[i] = n
	}
	return row, nil
}
