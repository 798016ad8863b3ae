package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/chat"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/config"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/remote"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lexpublica",
		Short:         "Lex Publica student client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to TOML config file (environment variables take precedence)")

	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newScoreCmd())

	return rootCmd
}

// app is one opened client: local database, sync client and chat store.
type app struct {
	cfg   *config.ClientConfig
	db    *store.SQLiteStore
	store *chat.Store
}

func openApp(cmd *cobra.Command) (*app, error) {
	_ = godotenv.Load()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	var profileSync chat.ProfileSync
	if !cfg.Offline() {
		profileSync = remote.NewClient(cfg.SyncURL, cfg.SyncTimeout())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s := chat.NewStore(ctx, db, profileSync,
		chat.WithLogger(logger),
		chat.WithSyncTimeout(cfg.SyncTimeout()),
	)

	// Let the startup pull land so commands see merged profiles.
	flushCtx, cancel := context.WithTimeout(ctx, cfg.SyncTimeout())
	defer cancel()
	if err := s.Flush(flushCtx); err != nil {
		logger.Debug("Profile pull still running", "error", err)
	}

	return &app{cfg: cfg, db: db, store: s}, nil
}

// close waits for pending pushes and releases the database.
func (a *app) close() {
	a.store.Close()
	if err := a.db.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close local store:", err)
	}
}

// withApp runs fn against an opened app and always closes it.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, a, args)
	}
}
