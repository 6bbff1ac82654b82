package eventlog

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/store"
)

// Backend names accepted in configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the backend selected by cfg.Backend.
func Open(cfg model.Config) (Backend, error) {
	switch cfg.Backend {
	case "", BackendFile:
		log.Debug().Str("path", cfg.Paths.Log).Msg("using file event log")
		return NewFileBackend(cfg.Paths.Log), nil
	case BackendSQLite:
		log.Debug().Str("path", cfg.Paths.DB).Msg("using sqlite event log")
		st, err := store.Open(cfg.Paths.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %q or %q)", cfg.Backend, BackendFile, BackendSQLite)
	}
}
