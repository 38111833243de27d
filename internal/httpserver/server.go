// internal/httpserver/server.go
//
// HTTP server wiring for the bingo simulator.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Solve endpoints: POST /solve (puzzle text in the body), GET /sample.
//   - Run history: GET /runs, GET /runs/{id}.
//
// Notes:
//   - Every solve builds its own Game, so requests never share board state.
//   - A query with no winner is encoded as JSON null, never as a zero score.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/puzzle"
	"github.com/robalobadob/bingo/internal/store"
)

// maxBody bounds the size of a POST /solve payload.
const maxBody = 1 << 20

// Server bundles the router and the run store.
type Server struct {
	r     *chi.Mux
	store store.Store
	now   func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store) *Server {
	s := &Server{r: chi.NewRouter(), store: st, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"bingo","endpoints":["/health","POST /solve","/sample","/runs","/runs/{id}"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/solve", s.handleSolve)
	s.r.Get("/sample", s.handleSample)
	s.r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleRecent)
		r.Get("/{id}", s.handleGetRun)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables CORS for a single origin taken from CLIENT_ORIGIN.
func corsFromEnv(next http.Handler) http.Handler {
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- SOLVE -------------------------------------

// solveReq is the payload for POST /solve.
type solveReq struct {
	Input string `json:"input"` // puzzle text: draws line, blank line, boards
}

// parseErrRes is returned with 400 when the puzzle text is malformed.
type parseErrRes struct {
	Error   string `json:"error"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	s.solve(w, r, req.Input)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	s.solve(w, r, assets.Sample())
}

// solve parses text, runs both queries, records the run and writes it out.
func (s *Server) solve(w http.ResponseWriter, r *http.Request, text string) {
	p, err := puzzle.ParseString(text)
	if err != nil {
		res := parseErrRes{Error: "parse_error", Message: err.Error()}
		var pe *puzzle.ParseError
		if errors.As(err, &pe) {
			res.Line = pe.Line
		}
		writeJSON(w, http.StatusBadRequest, res)
		return
	}

	run := newRun(uuid.NewString(), s.now(), p.Game())
	if err := s.store.Save(r.Context(), run); err != nil {
		log.Error().Err(err).Str("runId", run.ID).Msg("save run")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save_failed"})
		return
	}
	log.Info().
		Str("runId", run.ID).
		Int("boards", run.Boards).
		Int("draws", run.Draws).
		Bool("firstWinner", run.First != nil).
		Bool("lastWinner", run.Last != nil).
		Msg("solved")
	writeJSON(w, http.StatusOK, run)
}

// newRun answers both queries for g. Each query replays its own copy of the
// boards, so the order of the two calls does not matter.
func newRun(id string, at time.Time, g *game.Game) *store.Run {
	run := &store.Run{
		ID:        id,
		CreatedAt: at.UTC(),
		Boards:    g.Boards(),
		Draws:     g.Draws().Len(),
		Wins:      append([]game.Win{}, g.Replay()...),
	}
	if w, err := g.FirstWinner(); err == nil {
		run.First = &w
	}
	if w, err := g.LastWinner(); err == nil {
		run.Last = &w
	}
	return run
}

// ------------------------------- RUNS --------------------------------------

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_limit"})
			return
		}
		limit = n
	}
	runs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list runs")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db_error"})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("runId", id).Msg("get run")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db_error"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
