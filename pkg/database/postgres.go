package database

import (
	"context"
	"fmt"
	"time"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxPoolSize       = 10
	defaultConnTimeout       = 5 * time.Second
	defaultHealthCheckPeriod = time.Minute
)

// Postgres bundles the connection pool with the transactor used by repositories.
type Postgres struct {
	maxPoolSize       int32
	connTimeout       time.Duration
	healthCheckPeriod time.Duration

	Pool       *pgxpool.Pool
	Transactor *tx.Transactor
	DBGetter   tx.DBGetter
}

// Option configures the pool.
type Option func(*Postgres)

func MaxPoolSize(size int32) Option {
	return func(p *Postgres) {
		if size > 0 {
			p.maxPoolSize = size
		}
	}
}

// ConnTimeout sets the connect timeout in seconds.
func ConnTimeout(seconds int) Option {
	return func(p *Postgres) {
		if seconds > 0 {
			p.connTimeout = time.Duration(seconds) * time.Second
		}
	}
}

// HealthCheckPeriod sets the pool health check period in minutes.
func HealthCheckPeriod(minutes int) Option {
	return func(p *Postgres) {
		if minutes > 0 {
			p.healthCheckPeriod = time.Duration(minutes) * time.Minute
		}
	}
}

// New connects to databaseURL and pings the server.
func New(ctx context.Context, databaseURL string, opts ...Option) (*Postgres, error) {
	pg := &Postgres{
		maxPoolSize:       defaultMaxPoolSize,
		connTimeout:       defaultConnTimeout,
		healthCheckPeriod: defaultHealthCheckPeriod,
	}
	for _, opt := range opts {
		opt(pg)
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	poolConfig.MaxConns = pg.maxPoolSize
	poolConfig.HealthCheckPeriod = pg.healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = pg.connTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pg.connTimeout)
	defer cancel()
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pg.Pool = pool
	pg.Transactor, pg.DBGetter = tx.NewTransactorFromPool(pool)

	return pg, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
