// Command bingo replays a bingo draw sequence against a set of boards and
// reports the score of the first and the last board to complete.
//
// Usage:
//
//	bingo          solve BINGO_INPUT (default input.txt), print two lines
//	bingo sample   solve the embedded sample puzzle
//	bingo serve    start the HTTP API on PORT (default 5175)
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/httpserver"
	"github.com/robalobadob/bingo/internal/puzzle"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cmd := "solve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	log.Logger = newLogger(cmd, os.Stderr)

	switch cmd {
	case "solve":
		path := getEnv("BINGO_INPUT", "input.txt")
		p, err := puzzle.Load(path)
		if err != nil {
			log.Fatal().Err(err).Str("input", path).Msg("failed to load puzzle")
		}
		report(p)
	case "sample":
		p, err := puzzle.ParseString(assets.Sample())
		if err != nil {
			log.Fatal().Err(err).Msg("embedded sample is malformed")
		}
		report(p)
	case "serve":
		st, closeStore, err := openStore()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open run store")
		}
		defer closeStore()
		srv := httpserver.New(st)
		port := getEnv("PORT", "5175")
		log.Info().Str("port", port).Msg("starting bingo server")
		if err := srv.Start(":" + port); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	default:
		log.Fatal().Str("command", cmd).Msg("unknown command (want solve, sample or serve)")
	}
}

// newLogger keeps zerolog's JSON lines for the server and switches the
// one-shot commands to a console writer; stdout carries their answers.
func newLogger(cmd string, w io.Writer) zerolog.Logger {
	if cmd == "serve" {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}

func report(p *puzzle.Puzzle) {
	log.Debug().Int("boards", len(p.Boards)).Int("draws", p.Draws.Len()).Msg("puzzle loaded")
	if err := writeScores(os.Stdout, p.Game()); err != nil {
		log.Fatal().Err(err).Msg("write scores")
	}
}

// writeScores prints the first-winner and last-winner scores, one per line.
// A query without a winner prints "none".
func writeScores(w io.Writer, g *game.Game) error {
	first, err := g.FirstWinner()
	if err := printScore(w, "first", first, err); err != nil {
		return err
	}
	last, err := g.LastWinner()
	return printScore(w, "last", last, err)
}

func printScore(w io.Writer, query string, win game.Win, err error) error {
	line := "none"
	switch {
	case errors.Is(err, game.ErrNoWinner):
		log.Warn().Str("query", query).Msg("draws exhausted without a winner")
	case err != nil:
		return err
	default:
		line = strconv.Itoa(win.Score)
		log.Debug().Str("query", query).Int("board", win.Board).Int("draw", win.Draw).Int("score", win.Score).Msg("winner")
	}
	_, werr := fmt.Fprintln(w, line)
	return werr
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
