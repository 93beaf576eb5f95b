package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"campusintern/internal/config"
	"campusintern/internal/database"
	"campusintern/internal/domain/application"
	"campusintern/internal/domain/principal"
	"campusintern/internal/observability"
	"campusintern/internal/repository/memory"
	"campusintern/internal/repository/postgres"
)

// backend is what the operator commands act on. db is nil for the
// in-memory store.
type backend struct {
	db           *sql.DB
	principals   principal.Repository
	applications application.Repository
	logger       *observability.Logger
}

func (b *backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

type openFunc func(ctx context.Context) (*backend, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(openFromConfig).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "portalctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(open openFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portalctl",
		Short: "Operator commands for the internship portal",
		Long: `portalctl runs maintenance tasks against the portal database: applying
schema migrations, bootstrapping the first admin and rewriting legacy rows.
It reads the same environment and CONFIG_PATH file as the API.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(open),
		newCreateAdminCmd(open),
		newNormalizeStatusesCmd(open),
	)
	return cmd
}

func openFromConfig(ctx context.Context) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.InMemory() {
		store := memory.NewStore()
		return &backend{principals: store.Principals(), applications: store.Applications(), logger: logger}, nil
	}
	db, err := database.NewPostgres(ctx, database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &backend{
		db:           db,
		principals:   postgres.NewPrincipalRepository(db),
		applications: postgres.NewApplicationRepository(db),
		logger:       logger,
	}, nil
}

var errNoDatabase = errors.New("this command needs a postgres DATABASE_URL")
