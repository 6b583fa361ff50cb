package core

// error_messages.go maps technical errors and import defects to user-facing
// messages with a support code.
//
// # Defect Codes (CSV001-CSV099, VAL001-VAL099)
//
//	CSV001 - CSV_EMPTY: The file has no content
//	CSV002 - CSV_HEADER_MISSING: The first line does not name columns
//	CSV003 - CSV_PARSE: A quoted field is malformed or unterminated
//	CSV004 - CSV_HEADER_MISSING_COLUMN: A required column is missing
//	CSV005 - CSV_HEADER_UNKNOWN_COLUMN: A column is not part of the template
//	CSV006 - CSV_BAD_COLUMN_COUNT: A row has the wrong number of fields
//	VAL001 - COERCE: A value has the wrong type
//	VAL002 - ZOD: A value breaks a field rule
//
// # Error Codes
//
//	DB001-DB005   Database errors (duplicates, connections, timeouts)
//	FILE001-FILE003 File errors (size, encoding, missing file)
//	IMP001-IMP004 Import errors (busy, cancelled, duplicate file, unknown kind)
//	RATE001       Request throttling
//	ERR000        Fallback
//
// Error patterns are matched case-insensitively with strings.Contains. The
// first matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var defectMessages = map[Code]UserMessage{
	CodeEmpty: {
		Message: "The file has no content",
		Action:  "Upload a CSV file with a header line and data rows",
		Code:    "CSV001",
	},
	CodeHeaderMissing: {
		Message: "The first line does not contain column names",
		Action:  "Remove blank lines before the header",
		Code:    "CSV002",
	},
	CodeParse: {
		Message: "A quoted field is malformed",
		Action:  "Close every quoted field on the same line and double any quote inside it",
		Code:    "CSV003",
	},
	CodeHeaderMissingCol: {
		Message: "A required column is missing",
		Action:  "Add the column to the header line",
		Code:    "CSV004",
	},
	CodeHeaderUnknownCol: {
		Message: "A column is not part of the template",
		Action:  "Remove the column or disable strict header checking",
		Code:    "CSV005",
	},
	CodeBadColumnCount: {
		Message: "A row has the wrong number of fields",
		Action:  "Check for unquoted commas or missing fields on that line",
		Code:    "CSV006",
	},
	CodeCoerce: {
		Message: "A value has the wrong type",
		Action:  "Use whole numbers for numeric columns and true/false for yes/no columns",
		Code:    "VAL001",
	},
	CodeSchema: {
		Message: "A value is not allowed for this column",
		Action:  "Check the allowed values for this column",
		Code:    "VAL002",
	},
}

// MapDefect returns the user message for a defect code.
func MapDefect(d Defect) UserMessage {
	if msg, ok := defectMessages[d.Code]; ok {
		return msg
	}
	return defaultMessage
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// Database (DB001-DB005)
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Remove duplicate IDs from your CSV",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your CSV",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB005",
		},
	},

	// Files (FILE001-FILE003)
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File encoding is not supported",
			Action:  "Save the file as UTF-8 or choose a supported charset",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE003",
		},
	},

	// Imports (IMP001-IMP004)
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System busy: too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Import was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "already imported",
		msg: UserMessage{
			Message: "This file was already imported",
			Action:  "Change the file or import with force enabled",
			Code:    "IMP003",
		},
	},
	{
		pattern: "unknown record kind",
		msg: UserMessage{
			Message: "This record type is not configured",
			Action:  "Choose one of the listed record types",
			Code:    "IMP004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A Defect maps by its code; other errors by the first matching pattern.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if d, ok := err.(Defect); ok {
		return MapDefect(d)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
