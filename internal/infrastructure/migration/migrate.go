package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// драйвер postgres и файловый источник для migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator - то, что нужно от migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// Engine создает мигратор; в тестах подменяется моком.
type Engine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	path        string
	databaseURI string
	engine      Engine
}

func New(path, databaseURI string, engine Engine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		path:        path,
		databaseURI: databaseURI,
		engine:      engine,
	}
}

func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up применяет все новые миграции. ErrNoChange ошибкой не считается.
func (mg *Migration) Up() (err error) {
	m, err := mg.engine("file://"+mg.path, mg.databaseURI)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close migrations: %w", closeErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
