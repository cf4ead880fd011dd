package telescope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"request", KindRequest},
		{"Request", KindRequest},
		{"query", KindQuery},
		{"job", KindJob},
		{"cache", KindCache},
		{"exception", KindException},
		{"redis", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.input); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseCacheOp(t *testing.T) {
	tests := []struct {
		input string
		want  CacheOp
	}{
		{"hit", CacheOpHit},
		{"HIT", CacheOpHit},
		{"miss", CacheOpMiss},
		{"write", CacheOpWrite},
		{"put", CacheOpWrite},
		{"set", CacheOpWrite},
		{"forget", CacheOpForget},
		{"delete", CacheOpForget},
		{"flush", CacheOpForget},
		{"read", CacheOpUnknown},
		{"", CacheOpUnknown},
	}
	for _, tt := range tests {
		if got := ParseCacheOp(tt.input); got != tt.want {
			t.Errorf("ParseCacheOp(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestObjectSkipsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantOK  bool
	}{
		{"valid object", `{"method":"GET"}`, true},
		{"truncated json", `{"method":"GET"`, false},
		{"json array not object", `[1,2,3]`, false},
		{"json scalar", `"hello"`, false},
		{"json null", `null`, false},
		{"empty payload", ``, false},
		{"binary garbage", "\x00\x01\x02", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Payload: []byte(tt.payload)}
			_, ok := e.Object()
			if ok != tt.wantOK {
				t.Errorf("Object() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestRequestDetailsFallbacks(t *testing.T) {
	e := &Entry{Payload: []byte(`{
		"method": "POST",
		"uri": "/api/orders",
		"response_status": 201,
		"duration": 42.5,
		"ip_address": "10.1.2.3",
		"user_id": 7
	}`)}
	d, ok := e.Request()
	require.True(t, ok)
	assert.Equal(t, "POST", d.Method)
	assert.Equal(t, "/api/orders", d.URI)
	require.NotNil(t, d.Status)
	assert.Equal(t, 201, *d.Status)
	require.NotNil(t, d.DurationMS)
	assert.Equal(t, 42.5, *d.DurationMS)
	assert.Equal(t, "7", d.UserID)

	// status falls back to the legacy field name
	e2 := &Entry{Payload: []byte(`{"status": 500}`)}
	d2, ok := e2.Request()
	require.True(t, ok)
	require.NotNil(t, d2.Status)
	assert.Equal(t, 500, *d2.Status)
	assert.Equal(t, UnknownString, d2.Method)
	assert.Nil(t, d2.DurationMS)
}

func TestQueryDetailsTimeFallback(t *testing.T) {
	e := &Entry{Payload: []byte(`{"sql":"select 1","duration": 12.3}`)}
	d, ok := e.Query()
	require.True(t, ok)
	require.NotNil(t, d.TimeMS)
	assert.Equal(t, 12.3, *d.TimeMS)

	// "time" wins over "duration" when both are present
	e2 := &Entry{Payload: []byte(`{"sql":"select 1","time": 5, "duration": 99}`)}
	d2, _ := e2.Query()
	require.NotNil(t, d2.TimeMS)
	assert.Equal(t, 5.0, *d2.TimeMS)
}

func TestJobDetailsNameFallback(t *testing.T) {
	e := &Entry{Payload: []byte(`{"displayName":"App\\Jobs\\SendEmail","status":"failed","tries":3}`)}
	d, ok := e.Job()
	require.True(t, ok)
	assert.Equal(t, `App\Jobs\SendEmail`, d.Name)
	assert.Equal(t, JobFailed, d.Status)
	require.NotNil(t, d.Tries)
	assert.Equal(t, 3, *d.Tries)
	assert.Nil(t, d.MaxTries)
}

func TestExceptionDetails(t *testing.T) {
	e := &Entry{Payload: []byte(`{
		"class": "App\\Exceptions\\PaymentError",
		"message": "card declined",
		"file": "/app/Services/Billing.php",
		"line": 88,
		"level": "error",
		"trace": [{"file": "a.php"}],
		"context": {"order": 12}
	}`)}
	d, ok := e.Exception()
	require.True(t, ok)
	assert.Equal(t, `App\Exceptions\PaymentError`, d.Class)
	assert.Equal(t, "card declined", d.Message)
	require.NotNil(t, d.Line)
	assert.Equal(t, 88, *d.Line)
	assert.Len(t, d.Trace, 1)
	assert.Equal(t, float64(12), d.Context["order"])
}

func TestShortClassName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`App\Jobs\SendWelcomeEmail`, "SendWelcomeEmail"},
		{`Illuminate\Queue\CallQueuedHandler`, "CallQueuedHandler"},
		{"PlainClass", "PlainClass"},
		{"", UnknownString},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := ShortClassName(tt.input); got != tt.want {
			t.Errorf("ShortClassName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
