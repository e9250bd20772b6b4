package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/store"
	"github.com/folio-dev/folio/internal/store/mongostore"
	"github.com/folio-dev/folio/internal/store/sqlstore"
)

// OpenStore connects the credential store selected by cfg.Database.Driver.
// Unreachable backends surface as store.ErrDatabaseUnavailable.
func OpenStore(ctx context.Context, cfg *config.Config, zlog zerolog.Logger) (store.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		st, err := mongostore.Connect(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase)
		if err != nil {
			return nil, err
		}
		zlog.Info().Str("database", cfg.Database.MongoDatabase).Msg("MongoDB connected")
		return st, nil
	case config.DriverSQLite:
		st, err := sqlstore.Open(cfg.Database.SQLitePath, zlog)
		if err != nil {
			return nil, err
		}
		zlog.Info().Str("path", cfg.Database.SQLitePath).Msg("SQLite opened")
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Database.Driver)
	}
}
