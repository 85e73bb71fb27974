// Package commands содержит CLI сервера блога.
package commands

import (
	"fmt"
	"os"

	"github.com/UkralStul/blog-service/internal/config"

	"github.com/spf13/cobra"
)

// cfg заполняется из окружения, флаги переопределяют значения.
var cfg = config.Load()

var rootCmd = &cobra.Command{
	Use:   "blog-server",
	Short: "Blog service with posts, comments and sessions",
	// Без подкоманды запускаем сервер
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

// Execute запускает корневую команду.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage type (in-memory, sqlite or postgres)")
	flags.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "Postgres connection URL")
	flags.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	flags.BoolVar(&cfg.LogSQL, "log-sql", cfg.LogSQL, "Log every SQL statement")
	flags.IntVar(&cfg.PasswordIterations, "password-iterations", cfg.PasswordIterations, "PBKDF2 iterations for new passwords")

	addServeFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}
