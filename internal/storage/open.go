package storage

import (
	"context"
	"fmt"
	"io"

	"studyquest/internal/config"
)

// Store is a QuestStore that owns a connection.
type Store interface {
	QuestStore
	io.Closer
}

// OpenStore builds the adapter named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path, err := ResolveDBPath(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		db, err := Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db), nil
	case "postgres":
		pg, err := OpenPostgres(ctx, PostgresConfig{
			URL:         cfg.PostgresURL,
			Table:       cfg.Table,
			OwnerColumn: cfg.OwnerColumn,
		})
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "rest":
		return NewRESTStore(RESTConfig{
			BaseURL:     cfg.RESTURL,
			AnonKey:     cfg.AnonKey,
			Table:       cfg.Table,
			OwnerColumn: cfg.OwnerColumn,
			Timeout:     cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
