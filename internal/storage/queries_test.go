package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/config"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		Table:           "telescope_entries",
		EnableRateLimit: false,
	}
	return NewWithDB(db, cfg, zap.NewNop()), mock
}

func entryRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{"sequence", "uuid", "batch_id", "type", "content", "created_at"})
}

func TestEntriesBuildsParameterizedQuery(t *testing.T) {
	client, mock := newMockClient(t)

	recorded := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT sequence, uuid, batch_id, type, content, created_at FROM telescope_entries WHERE type = \? AND created_at >= \? ORDER BY created_at DESC, sequence DESC LIMIT \?`).
		WithArgs("request", sqlmock.AnyArg(), 10).
		WillReturnRows(entryRows(t).
			AddRow(int64(2), "uuid-2", "batch-1", "request", []byte(`{"method":"GET","uri":"/"}`), recorded).
			AddRow(int64(1), "uuid-1", "batch-1", "request", []byte(`not json`), recorded.Add(-time.Minute)))

	entries, err := client.Entries(context.Background(), Filter{
		Kind:  telescope.KindRequest,
		Hours: 24,
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "uuid-2", entries[0].UUID)
	assert.Equal(t, telescope.KindRequest, entries[0].Kind)
	assert.Equal(t, recorded, entries[0].RecordedAt)

	// malformed payload rows still scan; they are skipped at decode time
	_, ok := entries[1].Object()
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntriesClampsLimit(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT .+ FROM telescope_entries ORDER BY created_at DESC, sequence DESC LIMIT \?`).
		WithArgs(100).
		WillReturnRows(entryRows(t))

	_, err := client.Entries(context.Background(), Filter{Limit: 5000})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryByUUIDNotFound(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT .+ FROM telescope_entries WHERE uuid = \? LIMIT 1`).
		WithArgs("missing").
		WillReturnRows(entryRows(t))

	entry, err := client.EntryByUUID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, entry)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlowQueriesOrdersByDuration(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT .+ FROM telescope_entries WHERE type = \? AND CAST\(COALESCE\(JSON_EXTRACT\(content, '\$\.time'\), JSON_EXTRACT\(content, '\$\.duration'\)\) AS DECIMAL\(12,2\)\) > \? ORDER BY .+ DESC LIMIT \?`).
		WithArgs("query", 100.0, 10).
		WillReturnRows(entryRows(t).
			AddRow(int64(5), "uuid-5", "", "query", []byte(`{"sql":"select sleep(1)","time":950}`), time.Now()))

	entries, err := client.SlowQueries(context.Background(), 100.0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupedExceptions(t *testing.T) {
	client, mock := newMockClient(t)

	latest := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT JSON_UNQUOTE\(JSON_EXTRACT\(content, '\$\.class'\)\) AS grp, COUNT\(\*\) AS occurrences, MAX\(created_at\) AS latest, MIN\(sequence\) AS representative FROM telescope_entries WHERE type = 'exception' AND created_at >= \? GROUP BY grp HAVING occurrences >= \? ORDER BY occurrences DESC, latest DESC LIMIT \?`).
		WithArgs(sqlmock.AnyArg(), 2, 20).
		WillReturnRows(sqlmock.NewRows([]string{"grp", "occurrences", "latest", "representative"}).
			AddRow(`App\Exceptions\PaymentError`, 7, latest, int64(11)))

	mock.ExpectQuery(`SELECT .+ FROM telescope_entries WHERE sequence IN \(\?\)`).
		WithArgs(int64(11)).
		WillReturnRows(entryRows(t).
			AddRow(int64(11), "uuid-11", "batch-9", "exception",
				[]byte(`{"class":"App\\Exceptions\\PaymentError","message":"card declined","line":88}`), latest))

	groups, err := client.GroupedExceptions(context.Background(), GroupByClass, 24, 2, 20)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, `App\Exceptions\PaymentError`, groups[0].Value)
	assert.Equal(t, 7, groups[0].Count)
	assert.Equal(t, latest, groups[0].Latest)
	assert.Equal(t, "uuid-11", groups[0].Representative.UUID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHourlyRequestCounts(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT HOUR\(created_at\) AS h, COUNT\(\*\) AS c FROM telescope_entries WHERE type = 'request' AND created_at >= \? GROUP BY h`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"h", "c"}).
			AddRow(9, 3).
			AddRow(14, 1))

	counts, err := client.HourlyRequestCounts(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{9: 3, 14: 1}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestRecordedAtEmptyTable(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT MAX\(created_at\) FROM telescope_entries`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	latest, err := client.LatestRecordedAt(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestStats(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), .+ FROM telescope_entries WHERE type = 'request' AND created_at >= \?`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "server", "client", "avg"}).
			AddRow(120, 6, 10, 88.5))

	stats, err := client.RequestStats(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, RequestStats{Total: 120, ServerErrors: 6, ClientErrors: 10, AvgDurationMS: 88.5}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheOpCounts(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT JSON_UNQUOTE\(JSON_EXTRACT\(content, '\$\.type'\)\) AS field, COUNT\(\*\) AS c FROM telescope_entries WHERE type = \? AND created_at >= \? GROUP BY field`).
		WithArgs("cache", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"field", "c"}).
			AddRow("hit", 40).
			AddRow("miss", 10).
			AddRow(nil, 2))

	counts, err := client.CacheOpCounts(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"hit": 40, "miss": 10, "": 2}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}
