package database

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/scholarhelp/core"
)

// SQL engines
const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite3"
	EnginePostgres = "postgres"
)

var ErrNotSQL = errors.New("database engine is not an SQL engine")

// Open connects to the SQL database configured in conf.Database and waits for it to be ready.
func Open(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch conf.Database.Engine {
	case EngineSQLite:
		db, err = sqlx.Open(EngineSQLite, conf.Database.Path+"?_foreign_keys=on&_busy_timeout=5000")
		if err == nil {
			db.SetMaxOpenConns(1) // sqlite allows a single writer
		}
	case EnginePostgres:
		db, err = sqlx.Open(EnginePostgres, conf.Database.URL)
	case EngineMemory:
		return nil, ErrNotSQL
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

//go:embed migrations
var migrations embed.FS

// MigrationsFS holds one goose migrations directory per SQL engine.
var MigrationsFS fs.FS = migrations

// MigrationsDir returns the migrations directory of driver within MigrationsFS.
func MigrationsDir(driver string) string {
	return path.Join("migrations", driver)
}

// SetDialect points goose at the SQL dialect of db.
func SetDialect(db *sqlx.DB) error {
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrapf(err, "setting migrations dialect %q", db.DriverName())
	}
	return nil
}

// Migrate applies the pending migrations.
func Migrate(db *sqlx.DB) error {
	if err := SetDialect(db); err != nil {
		return err
	}
	if err := goose.RunFS("up", db.DB, migrations, MigrationsDir(db.DriverName())); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
