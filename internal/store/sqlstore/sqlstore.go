// Package sqlstore implements the chat stores on top of GORM. Both the
// sqlite and the postgres dialect are supported.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects with the given driver, migrates the schema and returns
// the three stores sharing one pool.
func Open(ctx context.Context, driver, dsn string, debug bool) (core.Stores, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return core.Stores{}, fmt.Errorf("unknown sql driver %q", driver)
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return core.Stores{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		sqlDB, err := db.DB()
		if err != nil {
			return core.Stores{}, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := Migrate(db.WithContext(ctx)); err != nil {
		return core.Stores{}, err
	}
	log.Info().Str("module", "sqlstore").Str("driver", driver).Msg("database ready")

	return core.Stores{
		Messages:  NewMessageStore(db),
		Accounts:  NewAccountStore(db),
		Favorites: NewFavoriteStore(db),
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get sql.DB: %w", err)
			}
			return sqlDB.Close()
		},
	}, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&messageRow{}, &accountRow{}, &favoriteRow{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching query anywhere.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}
