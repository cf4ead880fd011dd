// Package storage provides read-only access to a Laravel Telescope entries
// table in MySQL. It owns the single lazily-established database handle and
// every SQL statement the server issues; all caller-supplied values are bound
// parameters, never interpolated.
package storage

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/palisade-labs/telescope-mcp-server/internal/config"
	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
)

// Client is the storage client for the Telescope database. The handle is
// established on first use and reused for the lifetime of the process; a
// failed query leaves it in place to be retried or re-established lazily.
type Client struct {
	cfg     *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter

	mu sync.Mutex
	db *sql.DB
}

// New creates a storage client. No connection is attempted until first use.
func New(cfg *config.Config, logger *zap.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.EnableRateLimit {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	}
	return &Client{
		cfg:     cfg,
		logger:  logger,
		limiter: limiter,
	}
}

// NewWithDB creates a storage client around an existing handle. Used by tests
// to substitute a mock database.
func NewWithDB(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Client {
	c := New(cfg, logger)
	c.db = db
	return c
}

// acquire returns the database handle, opening and pinging it on first use,
// and waits on the rate limiter when one is configured.
func (c *Client) acquire(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	if c.db == nil {
		db, err := sql.Open("mysql", c.cfg.DSN())
		if err != nil {
			c.mu.Unlock()
			return nil, mcperrors.NewConnectionFailure(err)
		}
		db.SetMaxOpenConns(c.cfg.MaxOpenConns)
		db.SetMaxIdleConns(c.cfg.MaxIdleConns)
		db.SetConnMaxLifetime(c.cfg.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			c.mu.Unlock()
			return nil, mcperrors.NewConnectionFailure(err)
		}
		c.db = db
		c.logger.Info("Connected to Telescope database",
			zap.String("descriptor", c.cfg.Descriptor()),
		)
	}
	db := c.db
	c.mu.Unlock()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, mcperrors.NewQueryFailure("rate limit wait", err)
		}
	}
	return db, nil
}

// Ping verifies the database is reachable, establishing the handle if needed.
func (c *Client) Ping(ctx context.Context) error {
	db, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return mcperrors.NewConnectionFailure(err)
	}
	return nil
}

// Close releases the database handle if one was established.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Table returns the configured entries table name. The name is validated as a
// plain identifier at config load; it is the only identifier interpolated
// into SQL text.
func (c *Client) Table() string {
	return c.cfg.Table
}

// Descriptor returns a credential-free description of the connection target.
func (c *Client) Descriptor() string {
	return c.cfg.Descriptor()
}
