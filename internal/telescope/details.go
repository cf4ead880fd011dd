package telescope

import (
	"fmt"
	"strconv"
)

// Field fallback chains. The source data model has historically stored the
// same concept under multiple names; each chain is tried in order and absent
// fields resolve to defaults (UNKNOWN for strings, nil for numerics).
//
//	request status:   response_status, status
//	request duration: duration
//	query duration:   time, duration
//	job name:         name, displayName

// RequestDetails is the typed view of a request entry payload.
type RequestDetails struct {
	Method     string
	URI        string
	Status     *int
	DurationMS *float64
	IPAddress  string
	UserID     string
}

// QueryDetails is the typed view of a query entry payload.
type QueryDetails struct {
	SQL        string
	TimeMS     *float64
	Connection string
	Bindings   []interface{}
}

// JobDetails is the typed view of a job entry payload.
type JobDetails struct {
	Name       string
	Queue      string
	Status     JobStatus
	RawStatus  string
	Connection string
	Tries      *int
	MaxTries   *int
	Timeout    *int
	FailedAt   string
	Exception  string
}

// CacheDetails is the typed view of a cache entry payload.
type CacheDetails struct {
	Op         CacheOp
	RawOp      string
	Key        string
	Value      interface{}
	Result     interface{}
	Expiration *int
	Tags       []string
}

// ExceptionDetails is the typed view of an exception entry payload.
type ExceptionDetails struct {
	Class   string
	Message string
	File    string
	Line    *int
	Level   string
	Trace   []interface{}
	Context map[string]interface{}
}

// Request decodes the entry as a request row. The second return is false when
// the payload cannot be parsed as a JSON object (skip semantics).
func (e *Entry) Request() (RequestDetails, bool) {
	obj, ok := e.Object()
	if !ok {
		return RequestDetails{}, false
	}
	return RequestDetails{
		Method:     stringField(obj, "method"),
		URI:        stringField(obj, "uri"),
		Status:     intField(obj, "response_status", "status"),
		DurationMS: floatField(obj, "duration"),
		IPAddress:  optionalString(obj, "ip_address"),
		UserID:     scalarString(obj, "user_id"),
	}, true
}

// Query decodes the entry as a database query row.
func (e *Entry) Query() (QueryDetails, bool) {
	obj, ok := e.Object()
	if !ok {
		return QueryDetails{}, false
	}
	d := QueryDetails{
		SQL:        stringField(obj, "sql"),
		TimeMS:     floatField(obj, "time", "duration"),
		Connection: optionalString(obj, "connection_name"),
	}
	if bindings, ok := obj["bindings"].([]interface{}); ok {
		d.Bindings = bindings
	}
	return d, true
}

// Job decodes the entry as a queued job row.
func (e *Entry) Job() (JobDetails, bool) {
	obj, ok := e.Object()
	if !ok {
		return JobDetails{}, false
	}
	raw := optionalString(obj, "status")
	return JobDetails{
		Name:       stringField(obj, "name", "displayName"),
		Queue:      optionalString(obj, "queue"),
		Status:     ParseJobStatus(raw),
		RawStatus:  raw,
		Connection: optionalString(obj, "connection"),
		Tries:      intField(obj, "tries"),
		MaxTries:   intField(obj, "maxTries"),
		Timeout:    intField(obj, "timeout"),
		FailedAt:   optionalString(obj, "failed_at"),
		Exception:  optionalString(obj, "exception"),
	}, true
}

// Cache decodes the entry as a cache operation row.
func (e *Entry) Cache() (CacheDetails, bool) {
	obj, ok := e.Object()
	if !ok {
		return CacheDetails{}, false
	}
	raw := optionalString(obj, "type")
	d := CacheDetails{
		Op:         ParseCacheOp(raw),
		RawOp:      raw,
		Key:        stringField(obj, "key"),
		Value:      obj["value"],
		Result:     obj["result"],
		Expiration: intField(obj, "expiration"),
	}
	if tags, ok := obj["tags"].([]interface{}); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				d.Tags = append(d.Tags, s)
			}
		}
	}
	return d, true
}

// Exception decodes the entry as an exception row.
func (e *Entry) Exception() (ExceptionDetails, bool) {
	obj, ok := e.Object()
	if !ok {
		return ExceptionDetails{}, false
	}
	d := ExceptionDetails{
		Class:   stringField(obj, "class"),
		Message: stringField(obj, "message"),
		File:    optionalString(obj, "file"),
		Line:    intField(obj, "line"),
		Level:   optionalString(obj, "level"),
	}
	if trace, ok := obj["trace"].([]interface{}); ok {
		d.Trace = trace
	}
	if context, ok := obj["context"].(map[string]interface{}); ok {
		d.Context = context
	}
	return d, true
}

// stringField walks a fallback chain of keys and returns the first string
// value found, defaulting to UNKNOWN.
func stringField(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return UnknownString
}

// optionalString is like stringField but defaults to the empty string.
func optionalString(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok {
			return s
		}
	}
	return ""
}

// scalarString renders a field that may be stored as a string or a number
// (user IDs appear both ways) as a string, defaulting to empty.
func scalarString(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

// floatField walks a fallback chain and returns the first numeric value.
func floatField(obj map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case float64:
			f := v
			return &f
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// intField walks a fallback chain and returns the first integer value.
func intField(obj map[string]interface{}, keys ...string) *int {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case float64:
			n := int(v)
			return &n
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return &n
			}
		}
	}
	return nil
}
