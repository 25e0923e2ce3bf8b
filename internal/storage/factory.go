package storage

import (
	"context"
	"fmt"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

func NewFileRepositories(dir string, logger internal.Logger) (*Repositories, error) {
	storage, err := NewFileStorage(dir, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{Users: storage, Sessions: storage, Entries: storage, Profiles: storage, close: storage.Close}, nil
}

// NewPostgresRepositories migrates the schema before opening the pool.
func NewPostgresRepositories(ctx context.Context, dsn string, logger internal.Logger) (*Repositories, error) {
	if err := Migrate(ctx, dsn, logger); err != nil {
		return nil, err
	}
	storage, err := NewPostgresStorage(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{Users: storage, Sessions: storage, Entries: storage, Profiles: storage, close: storage.Close}, nil
}

// Open picks the backend named by kind ("file" or "postgres").
func Open(ctx context.Context, kind, dir, dsn string, logger internal.Logger) (*Repositories, error) {
	switch kind {
	case "file":
		return NewFileRepositories(dir, logger)
	case "postgres":
		return NewPostgresRepositories(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", kind)
	}
}
