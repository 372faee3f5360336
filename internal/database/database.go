package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle together with the statement builder used by the repositories
type DB struct {
	handler  *sql.DB
	log      zerolog.Logger
	lock     sync.RWMutex
	squirrel sq.StatementBuilderType
}

// NewDB opens (or creates) the sqlite database at path and brings the schema up to date
func NewDB(path string, log zerolog.Logger) (*DB, error) {
	db := &DB{
		log:      log.With().Str("module", "database").Logger(),
		squirrel: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "unable to create database directory %s", dir)
		}
	}

	var (
		err error
		DSN = path + "?_pragma=busy_timeout%3d1000"
	)

	db.handler, err = sql.Open("sqlite", DSN)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}

	// sqlite serialises writers anyway, a single connection avoids SQLITE_BUSY under the sync loop
	db.handler.SetMaxOpenConns(1)

	if _, err = db.handler.Exec(`PRAGMA journal_mode = wal;`); err != nil {
		db.handler.Close()
		return nil, errors.Wrap(err, "unable to enable WAL mode")
	}

	if err := db.Migrate(); err != nil {
		db.handler.Close()
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	return db, nil
}

// Migrate handles database schema creation and migrations using PRAGMA user_version
func (db *DB) Migrate() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	var version int
	if err := db.handler.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(err, "failed to query schema version")
	}

	if version == len(migrations) {
		return nil
	} else if version > len(migrations) {
		return errors.Errorf("database schema version (%d) is newer than supported (%d)", version, len(migrations))
	}

	db.log.Info().Msgf("Beginning database schema upgrade from version %v to version: %v", version, len(migrations))

	tx, err := db.handler.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if version == 0 {
		if _, err := tx.Exec(schema); err != nil {
			return errors.Wrap(err, "failed to initialize schema")
		}
		db.log.Info().Msg("Created initial database schema")
	} else {
		for i := version; i < len(migrations); i++ {
			if migrations[i] == "" {
				continue
			}
			db.log.Info().Msgf("Upgrading database schema to version: %v", i+1)
			if _, err := tx.Exec(migrations[i]); err != nil {
				return errors.Wrapf(err, "failed to execute migration #%v", i)
			}
		}
	}

	_, err = tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", len(migrations)))
	if err != nil {
		return errors.Wrap(err, "failed to bump schema version")
	}

	db.log.Info().Msgf("Database schema upgraded to version: %v", len(migrations))
	return tx.Commit()
}

// Close closes the database connection
func (db *DB) Close() error {
	if _, err := db.handler.Exec(`PRAGMA optimize;`); err != nil {
		return errors.Wrap(err, "query planner optimization")
	}

	return db.handler.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	return db.handler.PingContext(ctx)
}
