// Package store picks the backing stores named by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/store/memory"
	"github.com/dkeye/Chat/internal/store/sqlstore"
	"github.com/rs/zerolog/log"
)

func Open(ctx context.Context, cfg config.StoreConfig) (core.Stores, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn().Str("module", "store").Msg("using in-memory stores, nothing survives a restart")
		return core.Stores{
			Messages:  memory.NewMessageStore(),
			Accounts:  memory.NewAccountStore(),
			Favorites: memory.NewFavoriteStore(),
		}, nil
	case sqlstore.DriverSQLite, sqlstore.DriverPostgres:
		return sqlstore.Open(ctx, cfg.Driver, cfg.DSN, cfg.Debug)
	default:
		return core.Stores{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
