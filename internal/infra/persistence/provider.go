// Package persistence selects the account storage backend configured in storage.driver.
package persistence

import (
	"context"
	"log/slog"

	"accounts/config"
	"accounts/internal/domain/lifecycle"
	"accounts/internal/domain/repository"
	"accounts/internal/infra/persistence/memory"
	"accounts/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params defines the dependencies of the storage provider.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Result exposes the repositories to the fx graph.
type Result struct {
	fx.Out

	AccountRepo repository.AccountRepository
	TxManager   repository.TransactionManager
}

// New builds the repositories for the configured driver.
func New(params Params) (Result, error) {
	switch params.Config.Storage.Driver {
	case config.StorageDriverPostgres:
		return newPostgres(params)
	case config.StorageDriverMemory, "":
		params.Logger.Info("Using in-memory account storage")
		store := memory.NewStore()

		return Result{
			AccountRepo: memory.NewAccountRepository(store),
			TxManager:   memory.NewTransactionManager(store),
		}, nil
	default:
		return Result{}, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}

func newPostgres(params Params) (Result, error) {
	db, err := postgres.New(postgres.Params{
		Lifecycle: params.Lifecycle,
		Config:    params.Config,
		Logger:    params.Logger,
	})
	if err != nil {
		return Result{}, err
	}

	if params.Config.Storage.AutoMigrate {
		// Registered after postgres.New so the ping hook runs first.
		params.Append(fx.Hook{
			OnStart: func(startCtx context.Context) error {
				ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
				defer cancel()

				params.Logger.Info("Running account schema migration")

				return postgres.Migrate(ctx, db)
			},
		})
	}

	return Result{
		AccountRepo: postgres.NewAccountRepository(db),
		TxManager:   postgres.NewTransactionManager(db),
	}, nil
}
