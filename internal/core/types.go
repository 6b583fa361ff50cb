package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/cardimport/internal/schema"
)

// Code identifies the kind of defect found in an import.
type Code string

const (
	CodeEmpty            Code = "CSV_EMPTY"
	CodeHeaderMissing    Code = "CSV_HEADER_MISSING"
	CodeParse            Code = "CSV_PARSE"
	CodeHeaderMissingCol Code = "CSV_HEADER_MISSING_COLUMN"
	CodeHeaderUnknownCol Code = "CSV_HEADER_UNKNOWN_COLUMN"
	CodeBadColumnCount   Code = "CSV_BAD_COLUMN_COUNT"
	CodeCoerce           Code = "COERCE"
	CodeSchema           Code = "ZOD"
)

// RowColumn is the column reported for defects that concern a whole row.
const RowColumn = "__row__"

// Defect is a single problem found in the input, attributed to a 1-based
// source line and a column name (or RowColumn).
type Defect struct {
	Line    int            `json:"line"`
	Column  string         `json:"column"`
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (d Defect) Error() string {
	return fmt.Sprintf("line %d, column %s: %s (%s)", d.Line, d.Column, d.Message, d.Code)
}

// Fatal reports whether the defect aborts the whole import.
func (d Defect) Fatal() bool {
	switch d.Code {
	case CodeEmpty, CodeHeaderMissing, CodeParse:
		return true
	}
	return false
}

// Options controls tokenizing and import behaviour.
type Options struct {
	// StrictHeader reports header columns that are not in the schema.
	StrictHeader bool `json:"strictHeader"`

	// Trim trims surrounding whitespace from unquoted fields.
	Trim bool `json:"trim"`

	// Workers enables parallel row processing when > 1.
	Workers int `json:"-"`

	// minParallelRows overrides parallelThreshold when > 0.
	minParallelRows int
}

// RawRow is one tokenized data line.
type RawRow struct {
	Line   int
	Fields []string
}

// Parsed is the tokenizer output: a header and its data rows.
type Parsed struct {
	Header []string
	Rows   []RawRow
}

// Value is a coerced scalar. Kind selects which of Str, Int, Bool is set.
type Value struct {
	Kind schema.FieldType
	Str  string
	Int  int64
	Bool bool
}

// Interface returns the value as a plain Go scalar.
func (v Value) Interface() any {
	switch v.Kind {
	case schema.FieldInt:
		return v.Int
	case schema.FieldBool:
		return v.Bool
	default:
		return v.Str
	}
}

// Record is a fully coerced row. Values holds only columns that were read.
type Record struct {
	Line   int
	Values map[string]Value
}

// Text returns a text column, or "" when absent.
func (r Record) Text(col string) string {
	return r.Values[col].Str
}

// Int returns an integer column, or 0 when absent.
func (r Record) Int(col string) int64 {
	return r.Values[col].Int
}

// Bool returns a boolean column, or false when absent.
func (r Record) Bool(col string) bool {
	return r.Values[col].Bool
}

// Map returns the record as column -> plain Go scalar.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		m[k] = v.Interface()
	}
	return m
}

// MarshalJSON encodes the record as its line plus plain column values.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line   int            `json:"line"`
		Values map[string]any `json:"values"`
	}{r.Line, r.Map()})
}

// Result is the outcome of an import: either every record, or every defect.
type Result[T any] struct {
	OK      bool     `json:"ok"`
	Records []T      `json:"records,omitempty"`
	Defects []Defect `json:"defects,omitempty"`
}

// ImportReport describes one run of the import service.
type ImportReport struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	FileName    string         `json:"fileName"`
	Fingerprint string         `json:"fingerprint"`
	Result      Result[Record] `json:"-"`
	Saved       int            `json:"saved"`
	Duration    time.Duration  `json:"duration"`
}
