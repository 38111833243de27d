package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(store.NewMemoryStore())
	s.now = func() time.Time { return time.Date(2021, 12, 4, 6, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func solveBody(t *testing.T, input string) string {
	t.Helper()
	b, err := json.Marshal(solveReq{Input: input})
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestSolveAndFetchRun(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/solve", solveBody(t, assets.Sample()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Boards)
	assert.Equal(t, 27, run.Draws)
	require.NotNil(t, run.First)
	require.NotNil(t, run.Last)
	assert.Equal(t, 4512, run.First.Score)
	assert.Equal(t, 1924, run.Last.Score)
	require.Len(t, run.Wins, 3)
	assert.Equal(t, *run.First, run.Wins[0])
	assert.Equal(t, *run.Last, run.Wins[2])
	assert.Equal(t, []int{11, 13, 14}, []int{run.Wins[0].DrawIndex, run.Wins[1].DrawIndex, run.Wins[2].DrawIndex})

	rec = do(t, s, http.MethodGet, "/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var again store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, run.ID, again.ID)
	assert.Equal(t, run.Last, again.Last)
	assert.Equal(t, run.Wins, again.Wins)

	rec = do(t, s, http.MethodGet, "/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
}

func TestSolveNoWinnerIsNull(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/solve", solveBody(t, "1,4\n\n1 2\n3 4\n"))
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["first"]))
	assert.Equal(t, "null", string(raw["last"]))
	assert.Equal(t, "[]", string(raw["wins"]))
}

func TestSolveParseError(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/solve", solveBody(t, "1,2\n\n1 2\n3 4 5\n"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res parseErrRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "parse_error", res.Error)
	assert.Equal(t, 4, res.Line)
}

func TestSolveBadJSON(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/solve", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSample(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/sample", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var run store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.NotNil(t, run.First)
	assert.Equal(t, 4512, run.First.Score)
}

func TestRunsErrors(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/runs/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/runs?limit=abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nowhere", "").Code)
}
