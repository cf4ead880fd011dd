package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/palisade-labs/telescope-mcp-server/internal/analysis"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

func entry(seq int64, kind telescope.Kind, payload string, at time.Time) telescope.Entry {
	return telescope.Entry{
		Sequence:   seq,
		UUID:       "uuid-" + string(kind),
		BatchID:    "batch-1",
		Kind:       kind,
		RawKind:    string(kind),
		Payload:    []byte(payload),
		RecordedAt: at,
	}
}

var testTime = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestNoDataNamesFilters(t *testing.T) {
	out := NoData("requests", "kind=request, last 24h")
	assert.Contains(t, out, "No requests found")
	assert.Contains(t, out, "kind=request, last 24h")

	out = NoData("entries", "")
	assert.Equal(t, "ℹ️ No entries found.", out)
}

func TestRecentRequestsEmpty(t *testing.T) {
	out := RecentRequests(nil, "last 24h")
	assert.Contains(t, out, "No requests found")
	assert.NotEmpty(t, out)
}

func TestRecentRequestsRendersRows(t *testing.T) {
	entries := []telescope.Entry{
		entry(1, telescope.KindRequest,
			`{"method":"GET","uri":"/orders","response_status":200,"duration":42.5,"ip_address":"10.0.0.1","user_id":"7"}`,
			testTime),
		entry(2, telescope.KindRequest,
			`{"method":"POST","uri":"/orders","status":500}`,
			testTime),
	}
	out := RecentRequests(entries, "")
	assert.Contains(t, out, "GET /orders → 200")
	assert.Contains(t, out, "42.50ms")
	assert.Contains(t, out, "user: 7")
	assert.Contains(t, out, "✅")
	// fallback status field and error icon
	assert.Contains(t, out, "POST /orders → 500")
	assert.Contains(t, out, "❌")
}

func TestRecentEntriesSummarizesByKind(t *testing.T) {
	entries := []telescope.Entry{
		entry(1, telescope.KindQuery, `{"sql":"select * from users","time":12.3}`, testTime),
		entry(2, telescope.KindException, `{"class":"App\\Exceptions\\PaymentError","message":"card declined"}`, testTime),
		entry(3, telescope.KindOther, `not json`, testTime),
	}
	out := RecentEntries(entries)
	assert.Contains(t, out, "select * from users")
	assert.Contains(t, out, "PaymentError: card declined")
	assert.Contains(t, out, "(undecoded payload)")
}

func TestSlowQueriesReport(t *testing.T) {
	entries := []telescope.Entry{
		entry(1, telescope.KindQuery, `{"sql":"select sleep(1)","time":1042.7,"connection_name":"mysql"}`, testTime),
	}
	out := SlowQueries(entries, 100)
	assert.Contains(t, out, "1042.70ms")
	assert.Contains(t, out, "select sleep(1)")

	assert.Contains(t, SlowQueries(nil, 100), "No slow queries found")
}

func TestStatusReport(t *testing.T) {
	latest := testTime
	out := Status("root@127.0.0.1:3306/laravel", "telescope_entries", 1234, &latest)
	assert.Contains(t, out, "telescope_entries")
	assert.Contains(t, out, "1234")
	assert.Contains(t, out, "2026-03-10 09:30:00")

	out = Status("root@127.0.0.1:3306/laravel", "telescope_entries", 0, nil)
	assert.Contains(t, out, "no entries recorded yet")
}

func TestPerformanceSummaryTrendFlags(t *testing.T) {
	d := PerformanceData{
		WindowHours:           24,
		Requests:              storage.RequestStats{Total: 100, ServerErrors: 8, ClientErrors: 2, AvgDurationMS: 120},
		Queries:               storage.QueryStats{Total: 50, Slow: 10, AvgTimeMS: 80, MaxTimeMS: 2400},
		JobCounts:             map[string]int{"processed": 20, "failed": 3},
		Cache:                 analysis.CacheTally{Total: 40, Hits: 10, Misses: 30},
		Exceptions:            storage.ExceptionStats{Total: 5, DistinctClasses: 2},
		PeakLabel:             "09:00-10:00",
		PeakCount:             40,
		SlowThresholdMS:       1000,
		ErrorRateThresholdPct: 5.0,
	}
	out := PerformanceSummary(d)
	assert.Contains(t, out, "Error rate:   10.0%")
	assert.Contains(t, out, "exceeds the 5.0% threshold")
	assert.Contains(t, out, "20.0% of queries ran slower than 1000ms")
	assert.Contains(t, out, "3 failed jobs")
	assert.Contains(t, out, "Cache hit rate is low at 25.0%")
	assert.Contains(t, out, "Peak hour:    09:00-10:00 (40 requests)")
}

func TestPerformanceSummaryHealthy(t *testing.T) {
	out := PerformanceSummary(PerformanceData{WindowHours: 24, ErrorRateThresholdPct: 5})
	assert.Contains(t, out, "No anomalies")
	assert.Contains(t, out, "No jobs recorded")
	assert.Contains(t, out, "No cache operations recorded")
}

func TestGroupedExceptionsReport(t *testing.T) {
	rep := entry(10, telescope.KindException,
		`{"class":"App\\Exceptions\\PaymentError","message":"card declined","file":"app/Payment.php","line":42,"level":"error"}`,
		testTime)
	groups := []storage.ExceptionGroup{
		{Value: `App\Exceptions\PaymentError`, Count: 7, Latest: testTime, Representative: rep},
	}
	out := GroupedExceptions(groups, storage.GroupByClass, "")
	assert.Contains(t, out, "Grouped By Class")
	assert.Contains(t, out, "PaymentError ×7")
	assert.Contains(t, out, "app/Payment.php:42")
}

func TestExceptionDetailReport(t *testing.T) {
	e := entry(10, telescope.KindException,
		`{"class":"App\\Exceptions\\PaymentError","message":"card declined","file":"app/Payment.php","line":42,"level":"error",`+
			`"trace":[{"file":"app/Payment.php","line":42},"vendor/laravel/framework/src/Pipeline.php:167"],`+
			`"context":{"order_id":991}}`,
		testTime)
	related := []telescope.Entry{
		entry(9, telescope.KindRequest, `{"method":"POST","uri":"/checkout","response_status":500}`, testTime),
	}
	out := ExceptionDetail(&e, related, true)
	assert.Contains(t, out, "App\\Exceptions\\PaymentError")
	assert.Contains(t, out, "app/Payment.php:42")
	assert.Contains(t, out, "Pipeline.php:167")
	assert.Contains(t, out, "order_id")
	assert.Contains(t, out, "Same-Request Entries")
	assert.Contains(t, out, "POST /checkout → 500")

	// context can be suppressed
	out = ExceptionDetail(&e, nil, false)
	assert.NotContains(t, out, "order_id")
	assert.NotContains(t, out, "Same-Request Entries")
}

func TestExceptionPatternsReport(t *testing.T) {
	rep := entry(10, telescope.KindException,
		`{"class":"App\\Exceptions\\PaymentError","message":"card declined","file":"app/Payment.php","line":42,"level":"error"}`,
		testTime)
	patterns := []Pattern{
		{
			Group:    storage.ExceptionGroup{Value: `App\Exceptions\PaymentError`, Count: 240, Latest: testTime, Representative: rep},
			Priority: analysis.PriorityCritical,
			PerHour:  10.0,
			Recency:  "active",
		},
	}
	out := ExceptionPatterns(patterns, storage.GroupByClass, 24, 2)
	assert.Contains(t, out, "🔴")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "×240")
	assert.Contains(t, out, "10.0/hour")

	empty := ExceptionPatterns(nil, storage.GroupByClass, 24, 2)
	assert.Contains(t, empty, "No recurring exception patterns found")
	assert.Contains(t, empty, "last 24h")
}

func TestJobsReport(t *testing.T) {
	entries := []telescope.Entry{
		entry(1, telescope.KindJob,
			`{"name":"App\\Jobs\\SendInvoice","queue":"emails","status":"failed","tries":3,"maxTries":3,"exception":"timeout talking to smtp"}`,
			testTime),
	}
	out := Jobs(entries, "")
	assert.Contains(t, out, "SendInvoice")
	assert.Contains(t, out, "queue emails")
	assert.Contains(t, out, "tries: 3/3")
	assert.Contains(t, out, "timeout talking to smtp")

	assert.Contains(t, Jobs(nil, "queue=emails"), "No jobs found (queue=emails)")
}

func TestCacheStatsReport(t *testing.T) {
	entries := []telescope.Entry{
		entry(1, telescope.KindCache, `{"type":"hit","key":"users:7"}`, testTime),
		entry(2, telescope.KindCache, `{"type":"put","key":"users:8"}`, testTime),
	}
	tally := analysis.TallyCacheOps(map[string]int{"hit": 3, "miss": 1, "put": 2})
	out := CacheStats(entries, tally, true, "")
	assert.Contains(t, out, "Hit rate: 75.0%")
	assert.Contains(t, out, "users:7")
	assert.Contains(t, out, "💾")

	noSummary := CacheStats(entries, tally, false, "")
	assert.NotContains(t, noSummary, "Hit rate")
}

func TestUserActivityReport(t *testing.T) {
	e := entry(1, telescope.KindRequest,
		`{"method":"GET","uri":"/admin/users","response_status":200,"duration":100,"ip_address":"10.0.0.1","user_id":"7"}`,
		testTime)
	details, ok := e.Request()
	if !ok {
		t.Fatal("payload should decode")
	}
	d := ActivityData{
		UserID:      "7",
		WindowHours: 24,
		Rows: []ActivityRow{
			{Entry: e, Details: details, Reasons: analysis.SuspiciousReasons(200, "/admin/users", 100)},
		},
		FirstSeen: testTime.Add(-90 * time.Minute),
		LastSeen:  testTime,
	}
	out := UserActivity(d)
	assert.Contains(t, out, "user 7")
	assert.Contains(t, out, "1 flagged suspicious")
	assert.Contains(t, out, "🚩")
	assert.Contains(t, out, "sensitive endpoint")
	assert.Contains(t, out, "1h 30m 0s")

	empty := UserActivity(ActivityData{UserID: "7", WindowHours: 24, SuspiciousOnly: true})
	assert.Contains(t, empty, "No user activity found")
	assert.Contains(t, empty, "suspicious only")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("select ", 40)
	out := truncate(long, 50)
	assert.LessOrEqual(t, len(out), 50)
	assert.True(t, strings.HasSuffix(out, "..."))

	assert.Equal(t, "select 1", truncate("select   1", 50))
}
