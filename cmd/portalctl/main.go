package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"siteportal/internal/config"
	"siteportal/internal/database"
	"siteportal/internal/domain/auth"
	jwtsvc "siteportal/internal/pkg/jwt"
	"siteportal/internal/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "portalctl",
	Short:         "Site portal maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env loads configuration and opens the database.
type env struct {
	cfg *config.Config
	db  *gorm.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return &env{cfg: cfg, db: db}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (e *env) authService() *auth.Service {
	return auth.NewService(
		auth.NewUserRepository(e.db),
		auth.NewSessionRepository(e.db),
		jwtsvc.New(e.cfg.JWTSecret, e.cfg.JWTTTL),
	)
}

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()
			if err := database.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var adminName, adminEmail, adminPassword string
	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if adminEmail == "" || adminPassword == "" {
				return fmt.Errorf("--email and --password are required")
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			u, err := e.authService().CreateAdmin(cmd.Context(), auth.CreateAdminRequest{
				Name: adminName, Email: adminEmail, Password: adminPassword,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin ready: id=%d email=%s\n", u.ID, u.Email)
			return nil
		},
	}
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "login password")

	purgeCmd := &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete revoked sessions whose tokens have expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			n, err := e.authService().PurgeExpired(cmd.Context())
			if err != nil {
				return fmt.Errorf("purge sessions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d revoked sessions\n", n)
			return nil
		},
	}

	var reset bool
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo accounts and projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := database.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return seed(cmd.Context(), e, reset, cmd.OutOrStdout())
		},
	}
	seedCmd.Flags().BoolVar(&reset, "reset", false, "delete existing projects, accounts and unlocks first")

	rootCmd.AddCommand(migrateCmd, createAdminCmd, purgeCmd, seedCmd)
}
