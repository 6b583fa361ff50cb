package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New("ERROR: duplicate key value violates unique constraint \"cards_pkey\""),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "DB003",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "sqlite busy maps correctly",
			err:         errors.New("database is locked (5) (SQLITE_BUSY)"),
			wantCode:    "DB004",
			wantMessage: "Database was busy with conflicting operations",
		},
		{
			name:        "wrapped input too large",
			err:         fmt.Errorf("read body: %w", ErrInputTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
		{
			name:        "unknown encoding",
			err:         fmt.Errorf("%w %q", ErrUnknownEncoding, "ebcdic"),
			wantCode:    "FILE002",
			wantMessage: "File encoding is not supported",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyImports,
			wantCode:    "IMP001",
			wantMessage: "System busy: too many imports in progress",
		},
		{
			name:        "unknown kind",
			err:         fmt.Errorf("%w: decks", ErrUnknownKind),
			wantCode:    "IMP004",
			wantMessage: "This record type is not configured",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "defect maps by code",
			err:         Defect{Line: 3, Column: "setCode", Code: CodeSchema, Message: "bad"},
			wantCode:    "VAL002",
			wantMessage: "A value is not allowed for this column",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapDefect(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeEmpty, "CSV001"},
		{CodeHeaderMissing, "CSV002"},
		{CodeParse, "CSV003"},
		{CodeHeaderMissingCol, "CSV004"},
		{CodeHeaderUnknownCol, "CSV005"},
		{CodeBadColumnCount, "CSV006"},
		{CodeCoerce, "VAL001"},
		{CodeSchema, "VAL002"},
		{Code("SOMETHING_ELSE"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := MapDefect(Defect{Code: tt.code}).Code; got != tt.want {
				t.Errorf("MapDefect(%s) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("duplicate key value violates")
	result := FormatUserError(err)

	expected := "A record with this ID already exists (Code: DB001). Remove duplicate IDs from your CSV"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("duplicate key"),
			want: true,
		},
		{
			name: "defect is user facing",
			err:  Defect{Code: CodeEmpty},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("duplicate key value")
		userErr := NewUserError(techErr)

		if userErr.Error() != "A record with this ID already exists" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
