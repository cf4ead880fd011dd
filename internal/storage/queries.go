package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

const entryColumns = "sequence, uuid, batch_id, type, content, created_at"

// Entries runs one parameterized listing query described by the filter,
// ordered by recorded time descending.
func (c *Client) Entries(ctx context.Context, f Filter) ([]telescope.Entry, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	where, args := f.clauses(time.Now())
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_at DESC, sequence DESC LIMIT ?",
		entryColumns, c.cfg.Table, where)
	args = append(args, ClampLimit(f.Limit, MaxLimit))

	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mcperrors.NewQueryFailure("entry listing", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Listed entries",
		zap.String("filter", f.Describe()),
		zap.Int("rows", len(entries)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return entries, nil
}

// EntryByUUID fetches a single entry by its opaque identifier. A missing row
// returns (nil, nil); the caller decides whether that is a NotFound.
func (c *Client) EntryByUUID(ctx context.Context, uuid string) (*telescope.Entry, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE uuid = ? LIMIT 1", entryColumns, c.cfg.Table)
	row := db.QueryRowContext(ctx, query, uuid)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mcperrors.NewQueryFailure("entry lookup", err)
	}
	return entry, nil
}

// EntriesByBatch lists the entries recorded in the same request cycle as a
// given entry, excluding the entry itself. Ordered by sequence so the rows
// read in the order Telescope recorded them.
func (c *Client) EntriesByBatch(ctx context.Context, batchID, excludeUUID string, limit int) ([]telescope.Entry, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE batch_id = ? AND uuid <> ? ORDER BY sequence ASC LIMIT ?",
		entryColumns, c.cfg.Table)
	rows, err := db.QueryContext(ctx, query, batchID, excludeUUID, ClampLimit(limit, MaxLimit))
	if err != nil {
		return nil, mcperrors.NewQueryFailure("batch listing", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SlowQueries lists query entries whose elapsed time exceeds the threshold,
// ordered by elapsed time descending.
func (c *Client) SlowQueries(ctx context.Context, thresholdMS float64, limit int) ([]telescope.Entry, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE type = ? AND %s > ? ORDER BY %s DESC LIMIT ?",
		entryColumns, c.cfg.Table, queryTimeExpr, queryTimeExpr)
	rows, err := db.QueryContext(ctx, query, string(telescope.KindQuery), thresholdMS, ClampLimit(limit, MaxLimit))
	if err != nil {
		return nil, mcperrors.NewQueryFailure("slow query listing", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ExceptionGroup is one bucket of grouped exception rows.
type ExceptionGroup struct {
	Value  string    // the grouped field value as stored
	Count  int       // occurrences in the window
	Latest time.Time // most recent occurrence
	// Representative is the group member with the lowest sequence, so
	// repeated invocations over the same data pick the same row.
	Representative telescope.Entry
}

// GroupedExceptions buckets exception rows by an allow-listed payload field,
// ordered by occurrence count descending then recency descending. Grouping
// and counting are pushed to the storage engine.
func (c *Client) GroupedExceptions(ctx context.Context, key GroupKey, hours, minOccurrences, limit int) ([]ExceptionGroup, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	path, ok := groupPaths[key]
	if !ok {
		return nil, mcperrors.NewInvalidArgument(fmt.Sprintf("unsupported group key %q", key))
	}
	if minOccurrences < 1 {
		minOccurrences = 1
	}

	var args []interface{}
	timeCond := ""
	if hours > 0 {
		timeCond = " AND created_at >= ?"
		args = append(args, time.Now().Add(-time.Duration(hours)*time.Hour))
	}

	// path is from the fixed allow-list above, never caller input
	query := fmt.Sprintf(
		"SELECT JSON_UNQUOTE(JSON_EXTRACT(content, '%s')) AS grp, COUNT(*) AS occurrences, "+
			"MAX(created_at) AS latest, MIN(sequence) AS representative "+
			"FROM %s WHERE type = 'exception'%s "+
			"GROUP BY grp HAVING occurrences >= ? "+
			"ORDER BY occurrences DESC, latest DESC LIMIT ?",
		path, c.cfg.Table, timeCond)
	args = append(args, minOccurrences, ClampLimit(limit, MaxLimit))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mcperrors.NewQueryFailure("exception grouping", err)
	}
	defer rows.Close()

	type partial struct {
		group ExceptionGroup
		seq   int64
	}
	var partials []partial
	var sequences []int64
	for rows.Next() {
		var value sql.NullString
		var count int
		var latest time.Time
		var seq int64
		if err := rows.Scan(&value, &count, &latest, &seq); err != nil {
			return nil, mcperrors.NewQueryFailure("exception grouping scan", err)
		}
		partials = append(partials, partial{
			group: ExceptionGroup{Value: value.String, Count: count, Latest: latest},
			seq:   seq,
		})
		sequences = append(sequences, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, mcperrors.NewQueryFailure("exception grouping", err)
	}
	if len(partials) == 0 {
		return nil, nil
	}

	reps, err := c.entriesBySequence(ctx, db, sequences)
	if err != nil {
		return nil, err
	}

	groups := make([]ExceptionGroup, 0, len(partials))
	for _, p := range partials {
		g := p.group
		if rep, ok := reps[p.seq]; ok {
			g.Representative = rep
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// entriesBySequence fetches full rows for the representative sequences of a
// grouping query.
func (c *Client) entriesBySequence(ctx context.Context, db *sql.DB, sequences []int64) (map[int64]telescope.Entry, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sequences)), ",")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE sequence IN (%s)",
		entryColumns, c.cfg.Table, placeholders)

	args := make([]interface{}, len(sequences))
	for i, seq := range sequences {
		args[i] = seq
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mcperrors.NewQueryFailure("representative lookup", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	bySeq := make(map[int64]telescope.Entry, len(entries))
	for _, e := range entries {
		bySeq[e.Sequence] = e
	}
	return bySeq, nil
}

// HourlyRequestCounts buckets request counts by hour of day within the time
// window. Hour-of-day is collapsed across day boundaries.
func (c *Client) HourlyRequestCounts(ctx context.Context, hours int) (map[int]int, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	var args []interface{}
	timeCond := ""
	if hours > 0 {
		timeCond = " AND created_at >= ?"
		args = append(args, time.Now().Add(-time.Duration(hours)*time.Hour))
	}

	query := fmt.Sprintf(
		"SELECT HOUR(created_at) AS h, COUNT(*) AS c FROM %s WHERE type = 'request'%s GROUP BY h",
		c.cfg.Table, timeCond)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mcperrors.NewQueryFailure("hourly request counts", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, mcperrors.NewQueryFailure("hourly request counts scan", err)
		}
		counts[hour] = count
	}
	if err := rows.Err(); err != nil {
		return nil, mcperrors.NewQueryFailure("hourly request counts", err)
	}
	return counts, nil
}

// CountAll returns the total number of stored entries.
func (c *Client) CountAll(ctx context.Context) (int64, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.cfg.Table)
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, mcperrors.NewQueryFailure("entry count", err)
	}
	return count, nil
}

// LatestRecordedAt returns the most recent recorded timestamp, or nil when
// the table is empty.
func (c *Client) LatestRecordedAt(ctx context.Context) (*time.Time, error) {
	db, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	var latest sql.NullTime
	query := fmt.Sprintf("SELECT MAX(created_at) FROM %s", c.cfg.Table)
	if err := db.QueryRowContext(ctx, query).Scan(&latest); err != nil {
		return nil, mcperrors.NewQueryFailure("latest timestamp", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for entry scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*telescope.Entry, error) {
	var (
		seq     int64
		uuid    string
		batchID sql.NullString
		kind    string
		content []byte
		created time.Time
	)
	if err := row.Scan(&seq, &uuid, &batchID, &kind, &content, &created); err != nil {
		return nil, err
	}
	return &telescope.Entry{
		Sequence:   seq,
		UUID:       uuid,
		BatchID:    batchID.String,
		Kind:       telescope.ParseKind(kind),
		RawKind:    kind,
		Payload:    content,
		RecordedAt: created,
	}, nil
}

func scanEntries(rows *sql.Rows) ([]telescope.Entry, error) {
	var entries []telescope.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, mcperrors.NewQueryFailure("entry scan", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mcperrors.NewQueryFailure("entry iteration", err)
	}
	return entries, nil
}
