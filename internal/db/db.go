package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/logging"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens the database described by cfg and applies migrations.
// For sqlite an empty DSN or ":memory:" yields a private in-memory database.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		db, err = sqlx.ConnectContext(ctx, DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	case DriverSQLite:
		db, err = connectSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func connectSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	var dsn string
	if path == "" || path == ":memory:" {
		dsn = ":memory:?_time_format=sqlite"
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		dsn = path + "?_time_format=sqlite&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.ConnectContext(ctx, DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	// One connection: sqlite serialises writers, and an in-memory database
	// only exists on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate creates the schema for the connected dialect.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	ts := "TIMESTAMPTZ"
	boolTrue, boolFalse := "TRUE", "FALSE"
	if db.DriverName() == DriverSQLite {
		ts = "DATETIME"
		boolTrue, boolFalse = "1", "0"
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            description TEXT,
            is_active BOOLEAN NOT NULL DEFAULT ` + boolTrue + `,
            created_at ` + ts + ` NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id TEXT PRIMARY KEY,
            content TEXT NOT NULL,
            username TEXT NOT NULL,
            user_email TEXT,
            is_admin BOOLEAN NOT NULL DEFAULT ` + boolFalse + `,
            room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            created_at ` + ts + ` NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages (room_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS admins (
            id TEXT PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT ` + boolTrue + `,
            created_at ` + ts + ` NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS contacts (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            subject TEXT NOT NULL,
            message TEXT NOT NULL,
            created_at ` + ts + ` NOT NULL
        );`,
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %q: %w", firstLine(m), err)
		}
	}
	logging.Ctx(ctx).Debug().Str("driver", db.DriverName()).Msg("database migrations applied")
	return nil
}

// DefaultRoom is a room created by Seed.
type DefaultRoom struct {
	Name        string
	Description string
}

// DefaultRooms are the rooms every fresh installation starts with.
var DefaultRooms = []DefaultRoom{
	{Name: "General", Description: "General discussion and introductions"},
	{Name: "Portfolio Discussion", Description: "Discuss projects and portfolio feedback"},
	{Name: "Tech Talk", Description: "Technology discussions and programming help"},
	{Name: "Job Opportunities", Description: "Share job opportunities and career advice"},
}

// Seed inserts the default rooms that do not exist yet and reports how many
// were created.
func Seed(ctx context.Context, db *sqlx.DB) (int, error) {
	created := 0
	for _, room := range DefaultRooms {
		id, err := uuid.NewV7()
		if err != nil {
			return created, err
		}
		res, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO rooms (id, name, description, is_active, created_at) VALUES (?, ?, ?, ?, ?) ON CONFLICT (name) DO NOTHING`),
			id.String(), room.Name, room.Description, true, Now())
		if err != nil {
			return created, fmt.Errorf("seed room %q: %w", room.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			created++
			logging.Ctx(ctx).Info().Str("room", room.Name).Msg("created room")
		}
	}
	return created, nil
}

// Now is the timestamp stored for new rows: UTC with microsecond precision,
// which both backends round-trip exactly.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
