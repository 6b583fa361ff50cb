package core

// convert.go coerces raw CSV strings into typed values.
//
// The ToPg* functions return pgtype values with Valid=false for input that
// does not parse, the same values the store layer writes. Coercion is strict:
//   - Integers are signed base-10 with no thousands separators, currency
//     symbols or trailing garbage.
//   - Booleans are exactly "true" or "false" (case-sensitive, no padding).
//   - Text never fails.
//
// Surrounding whitespace is ignored for integers only; Options.Trim strips
// it from unquoted fields before coercion.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/cardimport/internal/schema"
	"github.com/jackc/pgx/v5/pgtype"
)

// ToPgText converts a string to pgtype.Text. Empty strings are valid text.
func ToPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// ToPgInt8 converts a base-10 integer string to pgtype.Int8.
func ToPgInt8(s string) pgtype.Int8 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}

// ToPgBool converts the literal tokens "true" and "false" to pgtype.Bool.
func ToPgBool(s string) pgtype.Bool {
	switch s {
	case "true":
		return pgtype.Bool{Bool: true, Valid: true}
	case "false":
		return pgtype.Bool{Bool: false, Valid: true}
	default:
		return pgtype.Bool{Valid: false}
	}
}

// CoerceCell converts a single raw cell according to its field spec.
func CoerceCell(raw string, spec schema.FieldSpec) (Value, error) {
	switch spec.Type {
	case schema.FieldInt:
		n := ToPgInt8(raw)
		if !n.Valid {
			return Value{}, fmt.Errorf("expected integer, received %q", raw)
		}
		return Value{Kind: schema.FieldInt, Int: n.Int64}, nil
	case schema.FieldBool:
		b := ToPgBool(raw)
		if !b.Valid {
			return Value{}, fmt.Errorf("expected true or false, received %q", raw)
		}
		return Value{Kind: schema.FieldBool, Bool: b.Bool}, nil
	default:
		return Value{Kind: schema.FieldText, Str: ToPgText(raw).String}, nil
	}
}

// CoerceRow converts a raw row into a Record.
//
// A field count that differs from the header yields one CSV_BAD_COLUMN_COUNT
// defect and nothing else, since column alignment is unknown. Otherwise every
// schema column present in the header is coerced and each failure yields its
// own COERCE defect. Columns in skip are not read. A Record is returned only
// when there are no defects.
func CoerceRow(header []string, row RawRow, s schema.Schema, skip map[string]bool) (Record, []Defect) {
	if len(row.Fields) != len(header) {
		return Record{}, []Defect{{
			Line:    row.Line,
			Column:  RowColumn,
			Code:    CodeBadColumnCount,
			Message: fmt.Sprintf("row has %d columns, expected %d", len(row.Fields), len(header)),
			Meta:    map[string]any{"expected": len(header), "actual": len(row.Fields)},
		}}
	}

	raw := make(map[string]string, len(header))
	for i, name := range header {
		if _, dup := raw[name]; !dup {
			raw[name] = row.Fields[i]
		}
	}

	rec := Record{Line: row.Line, Values: make(map[string]Value, len(s.Fields))}
	var defects []Defect
	for _, spec := range s.Fields {
		if skip[spec.Name] {
			continue
		}
		cell, ok := raw[spec.Name]
		if !ok {
			continue
		}
		v, err := CoerceCell(cell, spec)
		if err != nil {
			defects = append(defects, Defect{
				Line:    row.Line,
				Column:  spec.Name,
				Code:    CodeCoerce,
				Message: err.Error(),
				Meta:    map[string]any{"value": cell, "expected": spec.Type.String()},
			})
			continue
		}
		rec.Values[spec.Name] = v
	}

	if len(defects) > 0 {
		return Record{}, defects
	}
	return rec, nil
}
