package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
)

// Postgres is a wrapper around gorm.DB that provides connection monitoring,
// automatic reconnection, and standardized database operations.
//
// Concurrency: the active `*gorm.DB` pointer is stored in an atomic pointer and can be
// swapped during reconnection without blocking readers.
type Postgres struct {
	cfg             Config
	client          atomic.Pointer[gorm.DB]
	logger          logger.Logger
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeRetryChanOnce *sync.Once
	closeShutdownOnce  *sync.Once
}

// NewPostgres opens the database described by cfg and verifies the pool settings.
func NewPostgres(cfg Config, log logger.Logger) (*Postgres, error) {
	conn, err := connectToPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to postgres: %w", err)
	}
	log.Info("Successfully connected to PostgreSQL database", nil, map[string]interface{}{
		"host":     cfg.Connection.Host,
		"database": cfg.Connection.DbName,
	})
	return newPostgres(cfg, conn, log), nil
}

// NewFromDB wraps an already opened gorm connection. Monitoring and reconnection are
// still driven by the configuration in cfg.
func NewFromDB(cfg Config, db *gorm.DB, log logger.Logger) *Postgres {
	return newPostgres(cfg, db, log)
}

func newPostgres(cfg Config, conn *gorm.DB, log logger.Logger) *Postgres {
	pg := &Postgres{
		cfg:                cfg,
		logger:             log,
		shutdownSignal:     make(chan struct{}),
		retryChanSignal:    make(chan error, 1),
		closeRetryChanOnce: &sync.Once{},
		closeShutdownOnce:  &sync.Once{},
	}
	pg.client.Store(conn)
	return pg
}

// DB returns the current gorm handle. Inside Transaction it is the transaction.
func (p *Postgres) DB() *gorm.DB {
	return p.client.Load()
}

// connectToPostgres opens a gorm connection and applies the pool limits.
func connectToPostgres(cfg Config) (*gorm.DB, error) {
	database, err := gorm.Open(
		postgres.Open(cfg.Connection.DSN()),
		&gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	databaseInstance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL database instance: %w", err)
	}

	maxOpen := cfg.ConnectionDetails.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 50
	}
	maxIdle := cfg.ConnectionDetails.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 25
	}
	maxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = 1 * time.Minute
	}

	databaseInstance.SetMaxOpenConns(maxOpen)
	databaseInstance.SetMaxIdleConns(maxIdle)
	databaseInstance.SetConnMaxLifetime(maxLifetime)

	return database, nil
}

// RetryConnection waits for failure signals from MonitorConnection and reconnects
// until it succeeds. It returns on shutdown or when ctx is done.
func (p *Postgres) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-p.shutdownSignal:
			p.logger.Info("Stopping RetryConnection loop due to shutdown signal", nil, nil)
			return
		case <-ctx.Done():
			return
		case _, ok := <-p.retryChanSignal:
			if !ok {
				return
			}
		innerLoop:
			for {
				select {
				case <-p.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newConn, err := connectToPostgres(p.cfg)
					if err != nil {
						p.logger.Error("PostgreSQL reconnection failed", err, nil)
						time.Sleep(time.Second)
						continue innerLoop
					}
					p.client.Store(newConn)
					p.logger.Info("Successfully reconnected to PostgreSQL database", nil, nil)
					continue outerLoop
				}
			}
		}
	}
}

// MonitorConnection pings the database every 10 seconds and signals RetryConnection
// when a ping fails.
func (p *Postgres) MonitorConnection(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownSignal:
			p.logger.Info("Stopping MonitorConnection loop due to shutdown signal", nil, nil)
			return
		case <-ticker.C:
			if err := p.HealthCheck(ctx); err != nil {
				p.logger.Warn("PostgreSQL health check failed", err, nil)
				select {
				case p.retryChanSignal <- err:
				default:
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// HealthCheck pings the database with a 5 second timeout.
func (p *Postgres) HealthCheck(ctx context.Context) error {
	dbConn := p.DB()
	if dbConn == nil {
		return fmt.Errorf("database client is not initialized")
	}

	db, err := dbConn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during health check: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", err)
	}
	return nil
}

// Migrate creates or updates the tables of the given models.
func (p *Postgres) Migrate(ctx context.Context, models ...interface{}) error {
	if err := p.DB().WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}
	return nil
}

// GracefulShutdown stops the background loops and closes the pool.
func (p *Postgres) GracefulShutdown() error {
	p.closeShutdownOnce.Do(func() {
		close(p.shutdownSignal)
	})

	sqlDB, err := p.DB().DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}
