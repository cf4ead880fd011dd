package health

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result
type Check struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Checker performs health checks against the Telescope database.
type Checker struct {
	store  *storage.Client
	logger *zap.Logger
}

// New creates a new health checker
func New(store *storage.Client, logger *zap.Logger) *Checker {
	return &Checker{
		store:  store,
		logger: logger,
	}
}

// CheckAll performs all health checks
func (c *Checker) CheckAll(ctx context.Context) (Status, []Check) {
	checks := []Check{
		c.checkDatabase(ctx),
		c.checkTable(ctx),
	}

	overallStatus := StatusHealthy
	for _, check := range checks {
		if check.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		} else if check.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	return overallStatus, checks
}

// checkDatabase verifies the database is reachable
func (c *Checker) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:      "database",
		Timestamp: start,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.store.Ping(checkCtx)
	check.Duration = time.Since(start)

	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Database unreachable: %v", err)
		c.logger.Warn("Health check failed: database",
			zap.Error(err),
			zap.Duration("duration", check.Duration),
		)
	} else if check.Duration > 3*time.Second {
		check.Status = StatusDegraded
		check.Message = "Database responding slowly"
	} else {
		check.Status = StatusHealthy
		check.Message = "Database reachable"
		c.logger.Debug("Health check passed: database",
			zap.Duration("duration", check.Duration),
		)
	}

	return check
}

// checkTable verifies the entries table is queryable
func (c *Checker) checkTable(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:      "entries_table",
		Timestamp: start,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := c.store.CountAll(checkCtx)
	check.Duration = time.Since(start)

	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("Table %s not accessible: %v", c.store.Table(), err)
		c.logger.Warn("Health check failed: entries table",
			zap.Error(err),
			zap.Duration("duration", check.Duration),
		)
	} else {
		check.Status = StatusHealthy
		check.Message = fmt.Sprintf("Table %s accessible (%d entries)", c.store.Table(), count)
		c.logger.Debug("Health check passed: entries table",
			zap.Int64("entries", count),
			zap.Duration("duration", check.Duration),
		)
	}

	return check
}
