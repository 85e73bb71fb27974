package commands

import (
	"fmt"
	"log"

	"github.com/UkralStul/blog-service/internal/config"
	"github.com/UkralStul/blog-service/internal/storage/gormstore"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the relational schema (users, blog_posts, comments).

Examples:
  blog-server migrate --storage sqlite --sqlite-path posts.db
  blog-server migrate --storage postgres --db postgres://...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd)
	},
}

func runMigrate(cmd *cobra.Command) error {
	if cfg.Storage == config.StorageInMemory {
		return fmt.Errorf("nothing to migrate for %s storage", cfg.Storage)
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Open уже выполнил миграцию, повторный вызов идемпотентен
	if err := store.(*gormstore.Store).Migrate(cmd.Context()); err != nil {
		return err
	}
	log.Printf("schema is up to date")
	return nil
}
