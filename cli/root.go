// Package cli holds the grocery-backend commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gunalchandran/grocery-backend/config"
	"github.com/gunalchandran/grocery-backend/store"
)

// StoreOpener connects to the document store.
type StoreOpener func(ctx context.Context, cfg *config.Config) (store.Store, error)

// RootOptions holds global flags and the state every command shares once
// the root has run.
type RootOptions struct {
	ConfigPath string
	EnvFile    string

	Config *config.Config
	Logger *slog.Logger

	// OpenStore allows overriding the store (for testing). If nil the
	// MongoDB store is used.
	OpenStore StoreOpener
}

// NewRootCommand creates the root command.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grocery-backend",
		Short:         "Grocery storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config.yaml (optional)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBackfillPricesCommand(opts))
	cmd.AddCommand(NewExportProductsCommand(opts))
	cmd.AddCommand(NewBackupUploadsCommand(opts))

	return cmd
}

// Execute runs the command line and reports errors on stderr.
func Execute() error {
	cmd := NewRootCommand(&RootOptions{})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	// A missing .env is normal outside development.
	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", o.EnvFile, err)
		}
	}

	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return err
	}
	o.Config = cfg

	level, _ := cfg.Log.SlogLevel()
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	o.Logger = slog.New(handler)
	slog.SetDefault(o.Logger)

	if o.OpenStore == nil {
		o.OpenStore = openMongo
	}
	return nil
}

func openMongo(ctx context.Context, cfg *config.Config) (store.Store, error) {
	db, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.ConnectTimeout())
	if err != nil {
		return nil, err
	}
	return db, nil
}
