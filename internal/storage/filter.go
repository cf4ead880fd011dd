package storage

import (
	"fmt"
	"strings"
	"time"

	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// Result cap applied to every listing query.
const (
	MinLimit = 1
	MaxLimit = 100
)

// JSON paths used in predicates. Fixed per filter name so caller input never
// reaches a path expression.
const (
	statusExpr   = "JSON_UNQUOTE(JSON_EXTRACT(content, '$.status'))"
	levelExpr    = "JSON_UNQUOTE(JSON_EXTRACT(content, '$.level'))"
	queueExpr    = "JSON_UNQUOTE(JSON_EXTRACT(content, '$.queue'))"
	cacheOpExpr  = "JSON_UNQUOTE(JSON_EXTRACT(content, '$.type'))"
	userIDExpr   = "JSON_UNQUOTE(JSON_EXTRACT(content, '$.user_id'))"
	responseExpr = "CAST(COALESCE(JSON_EXTRACT(content, '$.response_status'), JSON_EXTRACT(content, '$.status')) AS UNSIGNED)"
	// query entries store elapsed milliseconds under "time", historically "duration"
	queryTimeExpr   = "CAST(COALESCE(JSON_EXTRACT(content, '$.time'), JSON_EXTRACT(content, '$.duration')) AS DECIMAL(12,2))"
	reqDurationExpr = "CAST(JSON_EXTRACT(content, '$.duration') AS DECIMAL(12,2))"
)

// GroupKey selects the payload field exception rows are grouped by. The set
// is closed; caller input is parsed into it and never interpolated.
type GroupKey string

const (
	GroupByClass   GroupKey = "class"
	GroupByFile    GroupKey = "file"
	GroupByMessage GroupKey = "message"
)

// groupPaths maps each allow-listed group key to its fixed JSON path.
var groupPaths = map[GroupKey]string{
	GroupByClass:   "$.class",
	GroupByFile:    "$.file",
	GroupByMessage: "$.message",
}

// ParseGroupKey validates a caller-supplied group-by selector against the
// allow-list. "type" is accepted as an alias for "class".
func ParseGroupKey(s string) (GroupKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class", "type":
		return GroupByClass, nil
	case "file":
		return GroupByFile, nil
	case "message":
		return GroupByMessage, nil
	default:
		return "", mcperrors.NewInvalidArgument(
			fmt.Sprintf("group_by must be one of class, file, message; got %q", s))
	}
}

// Filter describes one parameterized listing query: a kind restriction, an
// optional time-window lower bound, optional payload equality filters, and a
// result cap. Zero values mean "no filter".
type Filter struct {
	Kind   telescope.Kind
	Hours  int    // recorded_at >= now - Hours; 0 disables the bound
	Status string // job status
	Level  string // exception level
	Queue  string // job queue
	Op     string // cache operation type
	UserID string // request user id

	// RequireUser restricts request rows to those with a user_id present
	// (used when anonymous activity is excluded).
	RequireUser bool

	Limit int
}

// ClampLimit bounds a caller-supplied limit to [MinLimit, max]. Non-positive
// limits are the caller's error and are rejected at the tool layer; this is
// the storage-side backstop.
func ClampLimit(limit, max int) int {
	if max <= 0 || max > MaxLimit {
		max = MaxLimit
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > max {
		return max
	}
	return limit
}

// clauses renders the filter into a WHERE clause and bound parameters.
func (f Filter) clauses(now time.Time) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Kind != "" && f.Kind != telescope.KindOther {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Kind))
	}
	if f.Hours > 0 {
		conds = append(conds, "created_at >= ?")
		args = append(args, now.Add(-time.Duration(f.Hours)*time.Hour))
	}
	if f.Status != "" {
		conds = append(conds, statusExpr+" = ?")
		args = append(args, f.Status)
	}
	if f.Level != "" {
		conds = append(conds, "LOWER("+levelExpr+") = ?")
		args = append(args, strings.ToLower(f.Level))
	}
	if f.Queue != "" {
		conds = append(conds, queueExpr+" = ?")
		args = append(args, f.Queue)
	}
	if f.Op != "" {
		conds = append(conds, "LOWER("+cacheOpExpr+") = ?")
		args = append(args, strings.ToLower(f.Op))
	}
	if f.UserID != "" {
		conds = append(conds, userIDExpr+" = ?")
		args = append(args, f.UserID)
	}
	if f.RequireUser {
		conds = append(conds, "JSON_EXTRACT(content, '$.user_id') IS NOT NULL")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Describe renders the active filters for report headers, so empty result
// messages state what was searched for.
func (f Filter) Describe() string {
	var parts []string
	if f.Kind != "" {
		parts = append(parts, "kind="+string(f.Kind))
	}
	if f.Hours > 0 {
		parts = append(parts, fmt.Sprintf("last %dh", f.Hours))
	}
	if f.Status != "" {
		parts = append(parts, "status="+f.Status)
	}
	if f.Level != "" {
		parts = append(parts, "level="+f.Level)
	}
	if f.Queue != "" {
		parts = append(parts, "queue="+f.Queue)
	}
	if f.Op != "" {
		parts = append(parts, "operation="+f.Op)
	}
	if f.UserID != "" {
		parts = append(parts, "user="+f.UserID)
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}
