// Package migrations применяет встроенные SQL миграции в лексикографическом порядке.
// Примененные файлы запоминаются в таблице schema_migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

var (
	// ErrMigration возвращается при ошибке применения миграции
	ErrMigration = errors.New("migrations: failed to apply migration")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Files возвращает имена встроенных миграций в порядке применения
func Files() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("%w: read embedded dir: %v", ErrMigration, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	return files, nil
}

// Run применяет все еще не примененные миграции, каждую в своей транзакции
func Run(ctx context.Context, db *sql.DB, log Logger) (int, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return 0, fmt.Errorf("%w: create schema_migrations: %v", ErrMigration, err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return 0, err
	}

	files, err := Files()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range files {
		if applied[name] {
			continue
		}

		body, err := migrationsFS.ReadFile("sql/" + name)
		if err != nil {
			return count, fmt.Errorf("%w: read %s: %v", ErrMigration, name, err)
		}

		if err := apply(ctx, db, name, string(body)); err != nil {
			return count, err
		}

		log.Info("Migration applied: %s", name)
		count++
	}

	return count, nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("%w: query applied migrations: %v", ErrMigration, err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan applied migration: %v", ErrMigration, err)
		}
		applied[name] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrMigration, err)
	}

	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, name, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin %s: %v", ErrMigration, name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("%w: exec %s: %v", ErrMigration, name, err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("%w: record %s: %v", ErrMigration, name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", ErrMigration, name, err)
	}

	return nil
}
