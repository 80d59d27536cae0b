// Package cli содержит команды административной утилиты mentorctl.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/mentor-gateway/internal/config"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/storage/repository"
)

// Store: операции хранилища, нужные командам.
type Store interface {
	GetAccountByIdentity(ctx context.Context, identityID string) (*models.Account, error)
	GetSubscriptionStatus(ctx context.Context, identityID string) (models.SubscriptionStatus, bool, error)
	ListSubscriptionsByAccount(ctx context.Context, accountID string) ([]*models.Subscription, error)
	Close() error
}

type app struct {
	configPath string
	openStore  func(cfg *config.Config) (Store, error)
	openDB     func(cfg *config.Config) (*sql.DB, error)
}

func defaultApp() *app {
	return &app{
		openStore: func(cfg *config.Config) (Store, error) {
			return repository.New(cfg.StorageConnectionString)
		},
		openDB: func(cfg *config.Config) (*sql.DB, error) {
			s, err := repository.New(cfg.StorageConnectionString)
			if err != nil {
				return nil, err
			}
			return s.DB, nil
		},
	}
}

func (a *app) config() (*config.Config, error) {
	path := a.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (a *app) withDB(fn func(db *sql.DB, migrationsPath string) error) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	db, err := a.openDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	return fn(db, cfg.MigrationsPath)
}

// Execute запускает корневую команду.
func Execute() error {
	return newRootCmd(defaultApp()).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mentorctl",
		Short:         "Admin tool for the finance career mentor gateway",
		Long:          "mentorctl previews mentor personas, runs database migrations and explains entitlement decisions for a signed-in user.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (defaults to $CONFIG_PATH)")

	rootCmd.AddCommand(
		newPersonaCmd(),
		newMigrateCmd(a),
		newEntitlementCmd(a),
	)
	return rootCmd
}
