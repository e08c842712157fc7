package store

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=store

var ErrNotFound = errors.New("model not found")

// Store persists model records by name.
type Store interface {
	Save(ctx context.Context, rec *ModelRecord) error
	Load(ctx context.Context, name string) (*ModelRecord, error)
}

// Options selects and configures a backend.
type Options struct {
	Kind       string `yaml:"kind" validate:"oneof=file mongo"`
	Dir        string `yaml:"dir" validate:"required_if=Kind file"`
	MongoURI   string `yaml:"mongo_uri" validate:"required_if=Kind mongo"`
	Database   string `yaml:"database" validate:"required_if=Kind mongo"`
	Collection string `yaml:"collection" validate:"required_if=Kind mongo"`
}

// Open returns the configured store and a function releasing its resources.
func Open(ctx context.Context, opts Options) (Store, func(context.Context) error, error) {
	switch opts.Kind {
	case "", "file":
		s, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return nil }, nil
	case "mongo":
		s, err := NewMongoStore(ctx, opts.MongoURI, opts.Database, opts.Collection)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", opts.Kind)
	}
}
