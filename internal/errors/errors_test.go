package mcperrors

import (
	"strings"
	"testing"
)

func TestStructuredError(t *testing.T) {
	tests := []struct {
		name     string
		error    *StructuredError
		wantCode ErrorCode
		wantCat  ErrorCategory
	}{
		{
			name:     "invalid argument error",
			error:    NewInvalidArgument("limit must be positive"),
			wantCode: CodeInvalidArgument,
			wantCat:  ClientError,
		},
		{
			name:     "missing parameter error",
			error:    NewMissingParameter("exception_id"),
			wantCode: CodeMissingParameter,
			wantCat:  ClientError,
		},
		{
			name:     "not found error",
			error:    NewNotFound("Exception", "abc-123"),
			wantCode: CodeNotFound,
			wantCat:  ClientError,
		},
		{
			name:     "connection failure error",
			error:    NewConnectionFailure(errFake("dial tcp: refused")),
			wantCode: CodeConnectionFailure,
			wantCat:  StorageError,
		},
		{
			name:     "query failure error",
			error:    NewQueryFailure("recent entries", errFake("table missing")),
			wantCode: CodeQueryFailure,
			wantCat:  StorageError,
		},
		{
			name:     "internal error",
			error:    NewInternalError("something went wrong"),
			wantCode: CodeInternalError,
			wantCat:  ServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.error.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.error.Code, tt.wantCode)
			}
			if tt.error.Category != tt.wantCat {
				t.Errorf("Category = %v, want %v", tt.error.Category, tt.wantCat)
			}
			if tt.error.Suggestion == "" {
				t.Error("expected a recovery suggestion")
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := NewNotFound("Exception", "uuid-1")
	got := err.Error()
	if !strings.Contains(got, string(CodeNotFound)) {
		t.Errorf("Error() = %q, want it to contain the code", got)
	}
	if !strings.Contains(got, "uuid-1") {
		t.Errorf("Error() = %q, want it to contain the ID", got)
	}
}

func TestToJSON(t *testing.T) {
	err := NewQueryFailure("status check", errFake("boom"))
	got := err.ToJSON()
	if !strings.Contains(got, `"QUERY_FAILURE"`) {
		t.Errorf("ToJSON() = %q, want code present", got)
	}
	if !strings.Contains(got, `"suggestion"`) {
		t.Errorf("ToJSON() = %q, want suggestion present", got)
	}
}

// errFake is a trivial error for constructor tests
type errFake string

func (e errFake) Error() string { return string(e) }
