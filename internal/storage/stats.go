package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
)

// Aggregate statistics computed by the storage engine. Counting, averaging
// and grouping are pushed to SQL; rate and trend math happens in the
// analysis package over these results.

// RequestStats summarizes request entries within a time window.
type RequestStats struct {
	Total         int
	ServerErrors  int // status >= 500
	ClientErrors  int // status in [400, 500)
	AvgDurationMS float64
}

// QueryStats summarizes database query entries within a time window.
type QueryStats struct {
	Total     int
	Slow      int // elapsed time above the configured threshold
	AvgTimeMS float64
	MaxTimeMS float64
}

// ExceptionStats summarizes exception entries within a time window.
type ExceptionStats struct {
	Total           int
	DistinctClasses int
}

func (c *Client) windowCond(hours int) (string, []interface{}) {
	if hours <= 0 {
		return "", nil
	}
	return " AND created_at >= ?", []interface{}{time.Now().Add(-time.Duration(hours) * time.Hour)}
}

// RequestStats computes request totals, error counts and average duration.
func (c *Client) RequestStats(ctx context.Context, hours int) (RequestStats, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return RequestStats{}, err
	}
	timeCond, args := c.windowCond(hours)

	query := fmt.Sprintf(
		"SELECT COUNT(*), "+
			"COALESCE(SUM(CASE WHEN %[1]s >= 500 THEN 1 ELSE 0 END), 0), "+
			"COALESCE(SUM(CASE WHEN %[1]s BETWEEN 400 AND 499 THEN 1 ELSE 0 END), 0), "+
			"COALESCE(AVG(%[2]s), 0) "+
			"FROM %[3]s WHERE type = 'request'%[4]s",
		responseExpr, reqDurationExpr, c.cfg.Table, timeCond)

	var s RequestStats
	if err := db.QueryRowContext(ctx, query, args...).Scan(&s.Total, &s.ServerErrors, &s.ClientErrors, &s.AvgDurationMS); err != nil {
		return RequestStats{}, mcperrors.NewQueryFailure("request stats", err)
	}
	return s, nil
}

// QueryStats computes query totals, slow counts against a threshold, and
// average/max elapsed time.
func (c *Client) QueryStats(ctx context.Context, hours int, slowThresholdMS float64) (QueryStats, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return QueryStats{}, err
	}
	timeCond, winArgs := c.windowCond(hours)

	query := fmt.Sprintf(
		"SELECT COUNT(*), "+
			"COALESCE(SUM(CASE WHEN %[1]s > ? THEN 1 ELSE 0 END), 0), "+
			"COALESCE(AVG(%[1]s), 0), "+
			"COALESCE(MAX(%[1]s), 0) "+
			"FROM %[2]s WHERE type = 'query'%[3]s",
		queryTimeExpr, c.cfg.Table, timeCond)

	args := append([]interface{}{slowThresholdMS}, winArgs...)

	var s QueryStats
	if err := db.QueryRowContext(ctx, query, args...).Scan(&s.Total, &s.Slow, &s.AvgTimeMS, &s.MaxTimeMS); err != nil {
		return QueryStats{}, mcperrors.NewQueryFailure("query stats", err)
	}
	return s, nil
}

// JobStatusCounts groups job entries by their stored status string.
func (c *Client) JobStatusCounts(ctx context.Context, hours int) (map[string]int, error) {
	return c.payloadFieldCounts(ctx, "job", statusExpr, hours)
}

// CacheOpCounts groups cache entries by their stored operation type string.
// Classification into hit/miss/write/forget buckets happens in analysis.
func (c *Client) CacheOpCounts(ctx context.Context, hours int) (map[string]int, error) {
	return c.payloadFieldCounts(ctx, "cache", cacheOpExpr, hours)
}

// payloadFieldCounts is the shared GROUP BY over one fixed payload expression.
func (c *Client) payloadFieldCounts(ctx context.Context, kind, expr string, hours int) (map[string]int, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	timeCond, args := c.windowCond(hours)
	args = append([]interface{}{kind}, args...)

	query := fmt.Sprintf("SELECT %s AS field, COUNT(*) AS c FROM %s WHERE type = ?%s GROUP BY field",
		expr, c.cfg.Table, timeCond)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mcperrors.NewQueryFailure(kind+" field counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var field sql.NullString
		var count int
		if err := rows.Scan(&field, &count); err != nil {
			return nil, mcperrors.NewQueryFailure(kind+" field counts scan", err)
		}
		counts[field.String] = count
	}
	if err := rows.Err(); err != nil {
		return nil, mcperrors.NewQueryFailure(kind+" field counts", err)
	}
	return counts, nil
}

// ExceptionStats computes exception totals and the number of distinct classes.
func (c *Client) ExceptionStats(ctx context.Context, hours int) (ExceptionStats, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return ExceptionStats{}, err
	}
	timeCond, args := c.windowCond(hours)

	query := fmt.Sprintf(
		"SELECT COUNT(*), COUNT(DISTINCT JSON_UNQUOTE(JSON_EXTRACT(content, '$.class'))) "+
			"FROM %s WHERE type = 'exception'%s",
		c.cfg.Table, timeCond)

	var s ExceptionStats
	if err := db.QueryRowContext(ctx, query, args...).Scan(&s.Total, &s.DistinctClasses); err != nil {
		return ExceptionStats{}, mcperrors.NewQueryFailure("exception stats", err)
	}
	return s, nil
}
