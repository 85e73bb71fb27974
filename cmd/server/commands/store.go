package commands

import (
	"fmt"
	"log"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/config"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/storage/gormstore"
	"github.com/UkralStul/blog-service/internal/storage/inmemory"
	"github.com/UkralStul/blog-service/internal/users"
)

// openStore открывает хранилище по конфигурации. close всегда не nil.
func openStore(c *config.Config) (storage.Storage, func(), error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	log.Printf("Starting with %s storage", c.Storage)
	switch c.Storage {
	case config.StoragePostgres:
		store, err := gormstore.OpenPostgres(c.DatabaseURL, c.LogSQL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, closeLogged(store), nil
	case config.StorageSQLite:
		store, err := gormstore.OpenSQLite(c.SQLitePath, c.LogSQL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite %s: %w", c.SQLitePath, err)
		}
		return store, closeLogged(store), nil
	default:
		return inmemory.New(), func() {}, nil
	}
}

func closeLogged(store *gormstore.Store) func() {
	return func() {
		if err := store.Close(); err != nil {
			log.Printf("failed to close storage: %v", err)
		}
	}
}

func newDirectory(store storage.Storage) *users.Directory {
	return users.NewDirectory(store, auth.NewHasher(cfg.PasswordIterations))
}
