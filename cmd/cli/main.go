package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kisanpay/kisanpay/internal/config"
	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/kisanpay/kisanpay/migrations"
	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/kisanpay/kisanpay/pkg/pg"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var envPath string

var rootCmd = &cobra.Command{
	Use:           "kisanpay",
	Short:         "Maintenance commands for the kisanpay database.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envPath != "" {
			if _, err := os.Stat(envPath); err != nil {
				return fmt.Errorf("env file %s: %w", envPath, err)
			}
		}
		if err := config.Load(envPath); err != nil {
			return err
		}
		return logger.Configure(config.Get().Logger())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pg.Migrate(config.Get().PostgresWrite(), migrations.FS, ".")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations are applied.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pg.MigrationStatus(config.Get().PostgresWrite(), migrations.FS, ".")
	},
}

// catalog is the starter product list; existing names are left untouched.
var catalog = []model.Product{
	{Name: "Wheat", Description: "Per quintal", BasePrice: decimal.NewFromInt(2275)},
	{Name: "Rice", Description: "Paddy, per quintal", BasePrice: decimal.NewFromInt(2183)},
	{Name: "Maize", Description: "Per quintal", BasePrice: decimal.NewFromInt(2090)},
	{Name: "Urea", Description: "45 kg bag", BasePrice: decimal.NewFromInt(267)},
	{Name: "DAP", Description: "50 kg bag", BasePrice: decimal.NewFromInt(1350)},
	{Name: "Seed Drill", Description: "Daily rental", BasePrice: decimal.NewFromInt(1500)},
}

var seedCmd = &cobra.Command{
	Use:   "seed-products",
	Short: "Insert the starter product catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.IsDev())
		if err != nil {
			return err
		}
		products := repository.NewProductRepository(db)
		ctx := context.Background()
		for i := range catalog {
			if err := products.EnsureByName(ctx, &catalog[i]); err != nil {
				return err
			}
		}
		logger.Info("product catalog seeded", "products", len(catalog))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "", "path to a .env file")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
