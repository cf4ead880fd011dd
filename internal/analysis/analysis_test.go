package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name        string
		numerator   int
		denominator int
		want        float64
	}{
		{"zero denominator yields zero", 5, 0, 0},
		{"zero numerator", 0, 10, 0},
		{"whole percentage", 50, 100, 50.0},
		{"rounds to one decimal", 1, 3, 33.3},
		{"rounds up", 2, 3, 66.7},
		{"full rate", 10, 10, 100.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.numerator, tt.denominator); got != tt.want {
				t.Errorf("Rate(%d, %d) = %v, want %v", tt.numerator, tt.denominator, got, tt.want)
			}
		})
	}
}

func TestPeakHour(t *testing.T) {
	t.Run("picks the maximum bucket", func(t *testing.T) {
		// requests at hours [9,9,9,14]
		label, count := PeakHour(map[int]int{9: 3, 14: 1})
		assert.Equal(t, "09:00-10:00", label)
		assert.Equal(t, 3, count)
	})

	t.Run("tie breaks toward the lowest hour", func(t *testing.T) {
		label, count := PeakHour(map[int]int{14: 2, 8: 2})
		assert.Equal(t, "08:00-09:00", label)
		assert.Equal(t, 2, count)
	})

	t.Run("empty counts report the sentinel", func(t *testing.T) {
		label, count := PeakHour(map[int]int{})
		assert.Equal(t, PeakHourNone, label)
		assert.Equal(t, 0, count)
	})

	t.Run("last hour wraps to midnight", func(t *testing.T) {
		label, _ := PeakHour(map[int]int{23: 4})
		assert.Equal(t, "23:00-00:00", label)
	})
}

func TestSuspiciousReasons(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		uri      string
		duration float64
		want     int
	}{
		{"ordinary 404 on login is not suspicious alone", 404, "/user/login", 50, 1},
		{"clean request", 200, "/orders", 100, 0},
		{"sensitive endpoint with OK status", 200, "/admin/users", 100, 1},
		{"500 is not a client error", 500, "/orders", 100, 0},
		{"all three conditions", 403, "/api/admin/keys", 6000, 3},
		{"slow boundary is exclusive", 200, "/orders", 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuspiciousReasons(tt.status, tt.uri, tt.duration)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSuspiciousSpecExamples(t *testing.T) {
	// status 404, uri /user/login, duration 50: flagged only for the client error
	reasons := SuspiciousReasons(404, "/user/login", 50)
	assert.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "404")

	// status 200, uri /admin/users, duration 100: sensitive endpoint
	reasons = SuspiciousReasons(200, "/admin/users", 100)
	assert.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "sensitive endpoint")
}

func TestParseTimeWindow(t *testing.T) {
	tests := []struct {
		token      string
		wantHours  int
		recognized bool
	}{
		{"1h", 1, true},
		{"12h", 12, true},
		{"24h", 24, true},
		{"1d", 24, true},
		{"3d", 72, true},
		{"7d", 168, true},
		{"7D", 168, true},
		{"bogus", 24, false},
		{"", 24, false},
		{"2h", 24, false},
	}
	for _, tt := range tests {
		hours, ok := ParseTimeWindow(tt.token)
		if hours != tt.wantHours || ok != tt.recognized {
			t.Errorf("ParseTimeWindow(%q) = (%d, %v), want (%d, %v)",
				tt.token, hours, ok, tt.wantHours, tt.recognized)
		}
	}
}

func TestTallyCacheOps(t *testing.T) {
	tally := TallyCacheOps(map[string]int{
		"hit":    40,
		"miss":   10,
		"put":    5,
		"set":    3,
		"write":  2,
		"delete": 1,
		"flush":  1,
		"weird":  4,
	})

	assert.Equal(t, 66, tally.Total)
	assert.Equal(t, 40, tally.Hits)
	assert.Equal(t, 10, tally.Misses)
	assert.Equal(t, 10, tally.Writes)
	assert.Equal(t, 2, tally.Deletes)
	assert.Equal(t, 80.0, tally.HitRate())
	assert.Equal(t, 20.0, tally.MissRate())
}

func TestCacheTallyNoLookups(t *testing.T) {
	tally := TallyCacheOps(map[string]int{"write": 12})
	assert.Equal(t, 0.0, tally.HitRate())
	assert.Equal(t, 0.0, tally.MissRate())
}

func TestFormatSpan(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{2*time.Hour + 5*time.Minute + 10*time.Second, "2h 5m 10s"},
		{26 * time.Hour, "26h 0m 0s"}, // hours absorb the day component
		{5 * time.Minute, "5m 0s"},
		{42 * time.Second, "42s"},
		{0, "0s"},
	}
	for _, tt := range tests {
		if got := FormatSpan(tt.d); got != tt.want {
			t.Errorf("FormatSpan(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSessionSpan(t *testing.T) {
	first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	last := first.Add(90 * time.Minute)
	assert.Equal(t, 90*time.Minute, SessionSpan(first, last))
	// argument order does not matter
	assert.Equal(t, 90*time.Minute, SessionSpan(last, first))
}

func TestPatternPriority(t *testing.T) {
	tests := []struct {
		count int
		hours int
		want  Priority
	}{
		{240, 24, PriorityCritical}, // 10/h
		{24, 24, PriorityHigh},      // 1/h
		{5, 24, PriorityMedium},
		{2, 24, PriorityLow},
	}
	for _, tt := range tests {
		if got := PatternPriority(tt.count, tt.hours); got != tt.want {
			t.Errorf("PatternPriority(%d, %d) = %v, want %v", tt.count, tt.hours, got, tt.want)
		}
	}
}

func TestRecency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "active", Recency(now.Add(-30*time.Minute), now))
	assert.Equal(t, "recent", Recency(now.Add(-3*time.Hour), now))
	assert.Equal(t, "quiet", Recency(now.Add(-48*time.Hour), now))
}

func TestAggregationDeterminism(t *testing.T) {
	// decoding then re-summarizing the same rows yields identical numbers
	counts := map[string]int{"hit": 3, "miss": 1, "put": 2}
	first := TallyCacheOps(counts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, TallyCacheOps(counts))
	}

	hourly := map[int]int{9: 3, 14: 1}
	label, count := PeakHour(hourly)
	for i := 0; i < 5; i++ {
		l, c := PeakHour(hourly)
		assert.Equal(t, label, l)
		assert.Equal(t, count, c)
	}
}
