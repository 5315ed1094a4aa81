package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

// Pinger is the readiness probe's view of a datastore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client owns the process-wide connection pool. Repositories take DB();
// services that need atomic writes take the Client itself for WithTx.
type Client struct {
	orm  *gorm.DB
	pool *sql.DB
}

// New opens the postgres pool, applies the pool limits and pings once.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	// Simple protocol keeps pgbouncer in transaction mode happy.
	orm, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}), gormConfig(logg, cfg.SlowQueryThreshold))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	c, err := adopt(orm)
	if err != nil {
		return nil, err
	}
	c.limit(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.pool.PingContext(pingCtx); err != nil {
		_ = c.pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"db_max_open": cfg.MaxOpenConns,
			"db_max_idle": cfg.MaxIdleConns,
		}), "db.connected")
	}
	return c, nil
}

// Wrap adopts an already opened connection such as the sqlite database used
// in tests. It panics if gorm cannot expose the pool.
func Wrap(orm *gorm.DB) *Client {
	c, err := adopt(orm)
	if err != nil {
		panic(err)
	}
	return c
}

func adopt(orm *gorm.DB) (*Client, error) {
	pool, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("sql pool handle: %w", err)
	}
	return &Client{orm: orm, pool: pool}, nil
}

func gormConfig(logg *logger.Logger, slow time.Duration) *gorm.Config {
	return &gorm.Config{
		Logger:                 newQueryLogger(logg, slow),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

// limit applies only the positive settings; zero keeps database/sql's default.
func (c *Client) limit(cfg config.DBConfig) {
	if n := cfg.MaxOpenConns; n > 0 {
		c.pool.SetMaxOpenConns(n)
	}
	if n := cfg.MaxIdleConns; n > 0 {
		c.pool.SetMaxIdleConns(n)
	}
	if d := cfg.ConnMaxLifetime; d > 0 {
		c.pool.SetConnMaxLifetime(d)
	}
	if d := cfg.ConnMaxIdleTime; d > 0 {
		c.pool.SetConnMaxIdleTime(d)
	}
}

func (c *Client) DB() *gorm.DB { return c.orm }

// SQL exposes the raw pool for goose and the stats collector.
func (c *Client) SQL() *sql.DB { return c.pool }

func (c *Client) Ping(ctx context.Context) error { return c.pool.PingContext(ctx) }

func (c *Client) Close() error { return c.pool.Close() }

// StatsCollector exports pool usage (open, in-use, idle, waits) to prometheus.
func (c *Client) StatsCollector(name string) prometheus.Collector {
	return collectors.NewDBStatsCollector(c.pool, name)
}

// WithTx runs fn in one transaction. An error or panic from fn rolls back.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.orm.WithContext(ctx).Transaction(fn)
}
