// Package sqlite provides the SQLite-backed entity state store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/Arshia001/FLServer-sub001/internal/game/storage"
	"github.com/Arshia001/FLServer-sub001/internal/platform/storage/sqlitemigrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store provides a SQLite-backed storage.EntityStateStore.
type Store struct {
	sqlDB  *sql.DB
	tracer trace.Tracer
}

// Open opens a SQLite entity-state store at the provided path and applies
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrationsFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		sqlDB:  sqlDB,
		tracer: otel.Tracer("flserver/storage/sqlite"),
	}, nil
}

// Close closes the underlying SQLite database.
//
// Close is intentionally nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Write replaces the entity's durable state.
func (s *Store) Write(ctx context.Context, kind, id string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(kind, id); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "entity_state.write",
		trace.WithAttributes(
			attribute.String("entity.kind", kind),
			attribute.String("entity.id", id),
		))
	defer span.End()

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO entity_states (kind, id, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(kind, id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
`, kind, id, payload, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write entity state %s/%s: %w", kind, id, err)
	}
	return nil
}

// Read returns the entity's durable state, or storage.ErrNotFound.
func (s *Store) Read(ctx context.Context, kind, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(kind, id); err != nil {
		return nil, err
	}

	var payload []byte
	row := s.sqlDB.QueryRowContext(ctx, "SELECT payload FROM entity_states WHERE kind = ? AND id = ?", kind, id)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read entity state %s/%s: %w", kind, id, err)
	}
	return payload, nil
}

// Clear removes the entity's durable state.
func (s *Store) Clear(ctx context.Context, kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(kind, id); err != nil {
		return err
	}

	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM entity_states WHERE kind = ? AND id = ?", kind, id); err != nil {
		return fmt.Errorf("clear entity state %s/%s: %w", kind, id, err)
	}
	return nil
}

func validateKey(kind, id string) error {
	if strings.TrimSpace(kind) == "" {
		return fmt.Errorf("entity kind is required")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("entity id is required")
	}
	return nil
}
