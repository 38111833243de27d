// db.go
//
// Run store selection for "bingo serve".
//   BINGO_STORE=sqlite (default)  SQLite at BINGO_DB, default ":memory:"
//   BINGO_STORE=memory            plain in-process map

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/store"
)

// openStore returns the configured Store and a func releasing its resources.
func openStore() (store.Store, func(), error) {
	kind := getEnv("BINGO_STORE", "sqlite")
	switch kind {
	case "memory":
		log.Info().Msg("using in-memory run store")
		return store.NewMemoryStore(), func() {}, nil
	case "sqlite":
		dsn := getEnv("BINGO_DB", ":memory:")
		db, err := store.OpenSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info().Str("dsn", dsn).Msg("using sqlite run store")
		return store.NewSQLStore(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown BINGO_STORE %q", kind)
	}
}
