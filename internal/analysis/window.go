package analysis

import "strings"

// DefaultWindowHours is the window applied when a time-window token is not
// recognized. A permissive default rather than an error: unknown tokens fall
// back instead of failing the invocation.
const DefaultWindowHours = 24

// windowVocabulary is the fixed token set for time-window strings.
var windowVocabulary = map[string]int{
	"1h":  1,
	"12h": 12,
	"24h": 24,
	"1d":  24,
	"3d":  72,
	"7d":  168,
}

// ParseTimeWindow maps a window token to a number of hours. The second
// return reports whether the token was recognized; unrecognized tokens
// resolve to DefaultWindowHours so callers can surface the resolved window.
func ParseTimeWindow(token string) (int, bool) {
	if hours, ok := windowVocabulary[strings.ToLower(strings.TrimSpace(token))]; ok {
		return hours, true
	}
	return DefaultWindowHours, false
}
