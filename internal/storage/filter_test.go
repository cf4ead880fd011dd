package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		max   int
		want  int
	}{
		{"zero clamps to minimum", 0, 100, 1},
		{"negative clamps to minimum", -5, 100, 1},
		{"in range unchanged", 25, 100, 25},
		{"above max clamps to max", 500, 100, 100},
		{"tool-specific max respected", 75, 50, 50},
		{"bogus max falls back to cap", 150, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampLimit(tt.limit, tt.max); got != tt.want {
				t.Errorf("ClampLimit(%d, %d) = %d, want %d", tt.limit, tt.max, got, tt.want)
			}
		})
	}
}

func TestParseGroupKey(t *testing.T) {
	tests := []struct {
		input   string
		want    GroupKey
		wantErr bool
	}{
		{"class", GroupByClass, false},
		{"type", GroupByClass, false},
		{"Class", GroupByClass, false},
		{"file", GroupByFile, false},
		{"message", GroupByMessage, false},
		{"line", "", true},
		{"$.class", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseGroupKey(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGroupKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGroupKey(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFilterClauses(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("empty filter produces no clause", func(t *testing.T) {
		where, args := Filter{}.clauses(now)
		if where != "" || len(args) != 0 {
			t.Errorf("clauses() = %q with %d args, want empty", where, len(args))
		}
	})

	t.Run("kind and window", func(t *testing.T) {
		where, args := Filter{Kind: telescope.KindRequest, Hours: 24}.clauses(now)
		if !strings.Contains(where, "type = ?") {
			t.Errorf("clauses() = %q, want kind predicate", where)
		}
		if !strings.Contains(where, "created_at >= ?") {
			t.Errorf("clauses() = %q, want window predicate", where)
		}
		if len(args) != 2 {
			t.Fatalf("got %d args, want 2", len(args))
		}
		if args[0] != "request" {
			t.Errorf("arg[0] = %v, want request", args[0])
		}
		if got := args[1].(time.Time); !got.Equal(now.Add(-24 * time.Hour)) {
			t.Errorf("arg[1] = %v, want %v", got, now.Add(-24*time.Hour))
		}
	})

	t.Run("payload filters are bound not interpolated", func(t *testing.T) {
		f := Filter{
			Kind:  telescope.KindJob,
			Queue: "emails'; DROP TABLE users; --",
		}
		where, args := f.clauses(now)
		if strings.Contains(where, "DROP TABLE") {
			t.Fatalf("caller value interpolated into SQL: %q", where)
		}
		if len(args) != 2 || args[1] != "emails'; DROP TABLE users; --" {
			t.Errorf("queue value should pass as a bound parameter, got %v", args)
		}
	})

	t.Run("level filter is case-insensitive", func(t *testing.T) {
		where, args := Filter{Level: "ERROR"}.clauses(now)
		if !strings.Contains(where, "LOWER(") {
			t.Errorf("clauses() = %q, want case-folded comparison", where)
		}
		if args[0] != "error" {
			t.Errorf("arg = %v, want lowercased value", args[0])
		}
	})
}

func TestFilterDescribe(t *testing.T) {
	if got := (Filter{}).Describe(); got != "no filters" {
		t.Errorf("Describe() = %q, want %q", got, "no filters")
	}

	f := Filter{Kind: telescope.KindJob, Hours: 24, Queue: "emails"}
	got := f.Describe()
	for _, want := range []string{"kind=job", "last 24h", "queue=emails"} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe() = %q, want it to contain %q", got, want)
		}
	}
}
