// Package telescope models the rows of a Laravel Telescope entries table
// and decodes their kind-specific JSON payloads.
package telescope

import "strings"

// Kind discriminates which payload schema a stored entry follows.
type Kind string

const (
	KindRequest   Kind = "request"
	KindQuery     Kind = "query"
	KindJob       Kind = "job"
	KindCache     Kind = "cache"
	KindException Kind = "exception"
	KindOther     Kind = "other"
)

// ParseKind maps a stored type string to a Kind. Unrecognized values map to
// KindOther so unknown rows pass through as opaque entries instead of failing.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "request":
		return KindRequest
	case "query":
		return KindQuery
	case "job":
		return KindJob
	case "cache":
		return KindCache
	case "exception":
		return KindException
	default:
		return KindOther
	}
}

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	JobPending       JobStatus = "pending"
	JobProcessed     JobStatus = "processed"
	JobFailed        JobStatus = "failed"
	JobStatusUnknown JobStatus = "unknown"
)

// ParseJobStatus maps a stored status string to a JobStatus, defaulting to
// JobStatusUnknown rather than failing on unrecognized values.
func ParseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return JobPending
	case "processed", "completed", "success":
		return JobProcessed
	case "failed":
		return JobFailed
	default:
		return JobStatusUnknown
	}
}

// CacheOp is the classified operation of a cache entry.
type CacheOp string

const (
	CacheOpHit     CacheOp = "hit"
	CacheOpMiss    CacheOp = "miss"
	CacheOpWrite   CacheOp = "write"
	CacheOpForget  CacheOp = "forget"
	CacheOpUnknown CacheOp = "unknown"
)

// ParseCacheOp classifies a cache operation string into exactly one bucket.
// put/set are write synonyms; delete/flush are forget synonyms. Unmapped
// operations classify as CacheOpUnknown and count only toward totals.
func ParseCacheOp(s string) CacheOp {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit":
		return CacheOpHit
	case "miss":
		return CacheOpMiss
	case "write", "put", "set":
		return CacheOpWrite
	case "forget", "delete", "flush":
		return CacheOpForget
	default:
		return CacheOpUnknown
	}
}
