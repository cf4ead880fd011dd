package telescope

import (
	"encoding/json"
	"strings"
	"time"
)

// UnknownString is the default for absent string payload fields.
const UnknownString = "UNKNOWN"

// Entry is one stored Telescope record. Entries are append-only; this system
// never creates, mutates, or deletes them.
type Entry struct {
	Sequence   int64     // numeric primary key, used as a deterministic tie-break
	UUID       string    // opaque unique identifier assigned by the source application
	BatchID    string    // groups entries recorded during the same request cycle
	Kind       Kind      // parsed discriminator
	RawKind    string    // discriminator as stored, preserved for opaque rows
	Payload    []byte    // kind-dependent JSON object, possibly malformed
	RecordedAt time.Time // created_at; ordering is not guaranteed monotonic
}

// Object parses the payload as a JSON object. The second return is false when
// the payload is not valid JSON or not an object; such rows are skipped from
// decoded result sets rather than surfaced as errors.
func (e *Entry) Object() (map[string]interface{}, bool) {
	if len(e.Payload) == 0 {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(e.Payload, &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// ShortClassName collapses a fully-qualified PHP class name to its last
// namespace segment, e.g. "App\\Jobs\\SendWelcomeEmail" -> "SendWelcomeEmail".
func ShortClassName(name string) string {
	if name == "" {
		return UnknownString
	}
	if idx := strings.LastIndex(name, `\`); idx >= 0 && idx < len(name)-1 {
		return name[idx+1:]
	}
	return name
}
