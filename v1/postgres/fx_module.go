package postgres

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
)

// FXModule provides *Postgres and starts the connection monitor with the application.
var FXModule = fx.Module("postgres",
	fx.Provide(NewPostgresClientWithDI),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams groups the dependencies needed to create a Postgres client via dependency injection.
type PostgresParams struct {
	fx.In

	Config Config
	Logger logger.Logger
}

// NewPostgresClientWithDI connects at construction time so that an unreachable
// database aborts startup.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	return NewPostgres(params.Config, params.Logger)
}

// PostgresLifeCycleParams groups the dependencies needed for Postgres lifecycle management.
type PostgresLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Postgres  *Postgres
}

// RegisterPostgresLifecycle registers lifecycle hooks for the Postgres database component.
// It sets up:
// 1. Connection monitoring on application start
// 2. Automatic reconnection on application start
// 3. Graceful shutdown of database connections on application stop
//
// The monitor goroutines run on a context owned by the hook, not on the start context,
// which fx cancels once OnStart returns.
func RegisterPostgresLifecycle(params PostgresLifeCycleParams) {
	wg := &sync.WaitGroup{}
	runCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				params.Postgres.MonitorConnection(runCtx)
			}()
			go func() {
				defer wg.Done()
				params.Postgres.RetryConnection(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			params.Postgres.closeShutdownOnce.Do(func() {
				close(params.Postgres.shutdownSignal)
			})
			wg.Wait()
			return params.Postgres.GracefulShutdown()
		},
	})
}
