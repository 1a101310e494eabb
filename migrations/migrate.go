// Package migrations aplica con goose los ficheros SQL embebidos, en orden, una sola vez cada uno.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/pressly/goose/v3/lock"
)

//go:embed *.sql
var files embed.FS

const migrationsTable = "schema_migrations"

// newProvider prepara goose sobre los ficheros embebidos. El bloqueo de sesión de postgres evita que
// la API y el comando migrate apliquen la misma migración a la vez.
func newProvider(db *sql.DB) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("falta la conexión a la base de datos")
	}

	store, err := database.NewStore(database.DialectPostgres, migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("crear registro de migraciones: %w", err)
	}
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("crear bloqueo de migraciones: %w", err)
	}

	provider, err := goose.NewProvider("", db, files,
		goose.WithStore(store),
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		return nil, fmt.Errorf("cargar migraciones: %w", err)
	}
	return provider, nil
}

// Up aplica las migraciones pendientes y devuelve los nombres de las que ha aplicado.
func Up(ctx context.Context, db *sql.DB) ([]string, error) {
	provider, err := newProvider(db)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	results, err := provider.Up(ctx)
	applied := make([]string, 0, len(results))
	for _, res := range results {
		if res.Error != nil {
			continue
		}
		name := path.Base(res.Source.Path)
		slog.Info("migración aplicada", "file", name, "duration", res.Duration)
		applied = append(applied, name)
	}
	if err != nil {
		return applied, fmt.Errorf("aplicar migraciones: %w", err)
	}

	return applied, nil
}

// Down deshace la última migración aplicada y devuelve su nombre.
func Down(ctx context.Context, db *sql.DB) (string, error) {
	provider, err := newProvider(db)
	if err != nil {
		return "", err
	}
	defer provider.Close()

	res, err := provider.Down(ctx)
	if err != nil {
		return "", fmt.Errorf("deshacer migración: %w", err)
	}
	name := path.Base(res.Source.Path)
	slog.Info("migración deshecha", "file", name, "duration", res.Duration)

	return name, nil
}
