package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/puzzle"
)

func TestWriteScoresSample(t *testing.T) {
	p, err := puzzle.ParseString(assets.Sample())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeScores(&out, p.Game()))
	assert.Equal(t, "4512\n1924\n", out.String())
}

func TestWriteScoresNoWinner(t *testing.T) {
	p, err := puzzle.ParseString("1,2\n\n1 2\n3 4\n\n5 6\n7 8\n")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeScores(&out, p.Game()))
	assert.Equal(t, "14\nnone\n", out.String())
}

func TestOpenStore(t *testing.T) {
	t.Setenv("BINGO_STORE", "memory")
	st, closeStore, err := openStore()
	require.NoError(t, err)
	require.NotNil(t, st)
	closeStore()

	t.Setenv("BINGO_STORE", "sqlite")
	t.Setenv("BINGO_DB", ":memory:")
	st, closeStore, err = openStore()
	require.NoError(t, err)
	require.NotNil(t, st)
	closeStore()

	t.Setenv("BINGO_STORE", "redis")
	_, _, err = openStore()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("serve", &buf)
	l.Info().Str("port", "5175").Msg("starting bingo server")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), "serve logs JSON")
	assert.Equal(t, "5175", line["port"])

	for _, cmd := range []string{"solve", "sample"} {
		buf.Reset()
		l := newLogger(cmd, &buf)
		l.Info().Msg("puzzle loaded")
		assert.Contains(t, buf.String(), "puzzle loaded")
		assert.False(t, json.Valid(buf.Bytes()), "%s logs for a console", cmd)
	}
}

// TestRunMain is re-executed by the CLI tests as the bingo binary.
func TestRunMain(t *testing.T) {
	if os.Getenv("BINGO_TEST_MAIN") != "1" {
		t.Skip("only runs as a subprocess")
	}
	os.Args = []string{"bingo"}
	main()
}

func runCLI(t *testing.T, input string) (stdout, stderr string, err error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	cmd := exec.Command(os.Args[0], "-test.run=^TestRunMain$")
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "BINGO_TEST_MAIN=1", "BINGO_INPUT="+path, "LOG_LEVEL=info")
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err = cmd.Run()
	return out.String(), errOut.String(), err
}

func TestCLISolvesInputFile(t *testing.T) {
	stdout, _, err := runCLI(t, assets.Sample())
	require.NoError(t, err)
	assert.Contains(t, stdout, "4512\n1924\n")
}

func TestCLIParseFailureExitsNonZero(t *testing.T) {
	stdout, stderr, err := runCLI(t, "1,2\n\n1 2\n3 x\n")

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "want non-zero exit, got %v", err)
	assert.NotEqual(t, 0, exitErr.ExitCode())
	assert.Contains(t, stderr, "line 4")
	assert.NotContains(t, stdout, "none")
}
