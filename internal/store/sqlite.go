// internal/store/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening SQLite with safe defaults (busy timeout, foreign keys, WAL for files).
//   - Applying embedded migrations from sql/*.sql, recorded in _migrations.
//   - Saving and querying runs.
//
// The default DSN is ":memory:", so history still ends with the process.
// A memory database exists per connection, hence the single-connection pool.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/game"
)

//go:embed sql/*.sql
var migrations embed.FS

// OpenSQLite opens (and creates if missing) a SQLite database.
func OpenSQLite(dsn string) (*sql.DB, error) {
	inMemory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
	params := "_busy_timeout=5000&_foreign_keys=on"
	if !inMemory {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		params += "&_journal_mode=WAL"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite3", dsn+sep+params)
	if err != nil {
		return nil, err
	}
	if inMemory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dsn, err)
	}
	return db, nil
}

// Migrate applies every embedded migration not yet recorded, in lexical order,
// each inside its own transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

type sqlStore struct{ db *sql.DB }

// NewSQLStore wraps a migrated database.
func NewSQLStore(db *sql.DB) Store { return &sqlStore{db: db} }

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, created_at, boards, draws,
	first_board, first_draw_index, first_draw, first_score,
	last_board, last_draw_index, last_draw, last_score, wins`

func (s *sqlStore) Save(ctx context.Context, r *Run) error {
	args := []any{r.ID, r.CreatedAt.UTC().Format(timeLayout), r.Boards, r.Draws}
	args = append(args, winArgs(r.First)...)
	args = append(args, winArgs(r.Last)...)
	wins, err := json.Marshal(append([]game.Win{}, r.Wins...))
	if err != nil {
		return fmt.Errorf("encode wins %s: %w", r.ID, err)
	}
	args = append(args, string(wins))
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (`+runColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *sqlStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Run, 0, limit)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r       Run
		created string
		first   [4]sql.NullInt64
		last    [4]sql.NullInt64
		wins    string
	)
	err := sc.Scan(&r.ID, &created, &r.Boards, &r.Draws,
		&first[0], &first[1], &first[2], &first[3],
		&last[0], &last[1], &last[2], &last[3], &wins)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(wins), &r.Wins); err != nil {
		return nil, fmt.Errorf("decode wins %s: %w", r.ID, err)
	}
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	r.First = toWin(first)
	r.Last = toWin(last)
	return &r, nil
}

func winArgs(w *game.Win) []any {
	if w == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{w.Board, w.DrawIndex, w.Draw, w.Score}
}

func toWin(v [4]sql.NullInt64) *game.Win {
	if !v[0].Valid {
		return nil
	}
	return &game.Win{
		Board:     int(v[0].Int64),
		DrawIndex: int(v[1].Int64),
		Draw:      int(v[2].Int64),
		Score:     int(v[3].Int64),
	}
}
