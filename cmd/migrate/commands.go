package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	mongoMigration "tablebook/internal/migrations/mongo"
	tablesrepo "tablebook/internal/tables/repository"
	"tablebook/pkg/config"
)

func newUpCmd(timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create collections, schema validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), *timeout, func(ctx context.Context, cfg *config.Config) error {
				return migrate(ctx, cfg)
			})
		},
	}
}

func newSeedCmd(timeout *time.Duration) *cobra.Command {
	var skipMigrate bool

	c := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default floor plan, skipping table numbers already present",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), *timeout, func(ctx context.Context, cfg *config.Config) error {
				if !skipMigrate {
					if err := migrate(ctx, cfg); err != nil {
						return err
					}
				}

				created, err := mongoMigration.Seed(ctx, tablesrepo.NewMongoTableRepository(cfg), mongoMigration.DefaultTables(), cfg.Log)
				if err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				cfg.Log.Info("Seed completed", "created", created)
				return nil
			})
		},
	}
	c.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "seed without running migrations first")
	return c
}

func migrate(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func withDatabase(parent context.Context, timeout time.Duration, fn func(ctx context.Context, cfg *config.Config) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	return fn(ctx, cfg)
}
