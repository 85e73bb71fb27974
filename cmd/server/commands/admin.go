package commands

import (
	"fmt"
	"log"

	"github.com/UkralStul/blog-service/internal/config"
	"github.com/UkralStul/blog-service/internal/domain"

	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

// createAdminCmd регистрирует первого пользователя. Он получает ID 1 и права
// администратора, поэтому в непустом хранилище команда ничего не делает.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register the blog administrator in an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateAdmin(cmd)
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Administrator email")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "Administrator name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Administrator password")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command) error {
	if cfg.Storage == config.StorageInMemory {
		return fmt.Errorf("create-admin needs persistent storage, use --storage sqlite or postgres")
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	count, err := store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("store already has %d users, the administrator is user %d", count, domain.AdminUserID)
	}

	user, err := newDirectory(store).Register(ctx, adminEmail, adminName, adminPassword)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		// ID 1 уже был выдан раньше (например, пользователь удален вручную)
		return fmt.Errorf("registered %s as user %d, which is not the administrator", user.Email, user.ID)
	}
	log.Printf("administrator %s created with ID %d", user.Email, user.ID)
	return nil
}
