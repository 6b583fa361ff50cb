package core

import (
	"testing"

	"github.com/JonMunkholm/cardimport/internal/schema"
	"github.com/google/go-cmp/cmp"
)

// ----------------------------------------------------------------------------
// ToPgInt8 Tests
// ----------------------------------------------------------------------------

func TestToPgInt8(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue int64
	}{
		// Valid
		{name: "zero", input: "0", wantValid: true, wantValue: 0},
		{name: "positive", input: "20", wantValid: true, wantValue: 20},
		{name: "negative", input: "-3", wantValid: true, wantValue: -3},
		{name: "explicit plus", input: "+7", wantValid: true, wantValue: 7},
		{name: "surrounding whitespace", input: "  12\t", wantValid: true, wantValue: 12},
		{name: "leading zeros", input: "007", wantValid: true, wantValue: 7},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "trailing garbage", input: "12abc", wantValid: false},
		{name: "decimal", input: "1.5", wantValid: false},
		{name: "thousands separator", input: "1,000", wantValid: false},
		{name: "currency", input: "$5", wantValid: false},
		{name: "inner space", input: "1 2", wantValid: false},
		{name: "hex", input: "0x10", wantValid: false},
		{name: "overflow", input: "99999999999999999999", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgInt8(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgInt8(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Int64 != tt.wantValue {
				t.Errorf("ToPgInt8(%q) = %d, want %d", tt.input, got.Int64, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgBool Tests
// ----------------------------------------------------------------------------

func TestToPgBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantValue bool
	}{
		{"true", true, true},
		{"false", true, false},
		{" true ", false, false},
		{"false\t", false, false},
		{"TRUE", false, false},
		{"True", false, false},
		{"1", false, false},
		{"0", false, false},
		{"yes", false, false},
		{"no", false, false},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgBool(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgBool(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Bool != tt.wantValue {
				t.Errorf("ToPgBool(%q) = %v, want %v", tt.input, got.Bool, tt.wantValue)
			}
		})
	}
}

func TestToPgText(t *testing.T) {
	for _, s := range []string{"", " padded ", "Name, With Comma"} {
		got := ToPgText(s)
		if !got.Valid || got.String != s {
			t.Errorf("ToPgText(%q) = %+v, want valid verbatim text", s, got)
		}
	}
}

// ----------------------------------------------------------------------------
// CoerceRow Tests
// ----------------------------------------------------------------------------

var cardHeader = []string{"id", "name", "setCode", "type", "cost", "unique"}

func TestCoerceRow_Valid(t *testing.T) {
	row := RawRow{Line: 2, Fields: []string{"L-001", "Alpha Leader", "OGN", "LEADER", "0", "true"}}

	rec, defects := CoerceRow(cardHeader, row, schema.CardSchema, nil)
	if len(defects) > 0 {
		t.Fatalf("CoerceRow() defects = %v", defects)
	}

	want := Record{Line: 2, Values: map[string]Value{
		"id":      {Kind: schema.FieldText, Str: "L-001"},
		"name":    {Kind: schema.FieldText, Str: "Alpha Leader"},
		"setCode": {Kind: schema.FieldText, Str: "OGN"},
		"type":    {Kind: schema.FieldText, Str: "LEADER"},
		"cost":    {Kind: schema.FieldInt, Int: 0},
		"unique":  {Kind: schema.FieldBool, Bool: true},
	}}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerceRow_BadColumnCount(t *testing.T) {
	row := RawRow{Line: 4, Fields: []string{"U-001", "Scout", "OGN", "UNIT", "abc"}}

	rec, defects := CoerceRow(cardHeader, row, schema.CardSchema, nil)

	want := []Defect{{
		Line:    4,
		Column:  RowColumn,
		Code:    CodeBadColumnCount,
		Message: "row has 5 columns, expected 6",
		Meta:    map[string]any{"expected": 6, "actual": 5},
	}}
	if diff := cmp.Diff(want, defects); diff != "" {
		t.Errorf("defects mismatch (-want +got):\n%s", diff)
	}
	if rec.Values != nil {
		t.Errorf("record returned for a bad row: %+v", rec)
	}
}

func TestCoerceRow_CollectsEveryFailure(t *testing.T) {
	row := RawRow{Line: 3, Fields: []string{"U-001", "Scout", "OGN", "UNIT", "abc", "maybe"}}

	rec, defects := CoerceRow(cardHeader, row, schema.CardSchema, nil)

	want := []Defect{
		{
			Line:    3,
			Column:  "cost",
			Code:    CodeCoerce,
			Message: `expected integer, received "abc"`,
			Meta:    map[string]any{"value": "abc", "expected": "int"},
		},
		{
			Line:    3,
			Column:  "unique",
			Code:    CodeCoerce,
			Message: `expected true or false, received "maybe"`,
			Meta:    map[string]any{"value": "maybe", "expected": "bool"},
		},
	}
	if diff := cmp.Diff(want, defects); diff != "" {
		t.Errorf("defects mismatch (-want +got):\n%s", diff)
	}
	if rec.Values != nil {
		t.Errorf("partial record returned: %+v", rec)
	}
}

func TestCoerceRow_SkipsMissingColumns(t *testing.T) {
	header := []string{"id", "name", "setCode", "type", "cost"}
	row := RawRow{Line: 2, Fields: []string{"L-001", "Alpha", "OGN", "LEADER", "1"}}

	rec, defects := CoerceRow(header, row, schema.CardSchema, map[string]bool{"unique": true})
	if len(defects) > 0 {
		t.Fatalf("CoerceRow() defects = %v", defects)
	}
	if _, ok := rec.Values["unique"]; ok {
		t.Error("skipped column was coerced")
	}
	if rec.Int("cost") != 1 {
		t.Errorf("cost = %d, want 1", rec.Int("cost"))
	}
}

func TestCoerceRow_IgnoresExtraColumns(t *testing.T) {
	header := append(append([]string{}, cardHeader...), "rarity")
	row := RawRow{Line: 2, Fields: []string{"L-001", "Alpha", "OGN", "LEADER", "1", "false", "rare"}}

	rec, defects := CoerceRow(header, row, schema.CardSchema, nil)
	if len(defects) > 0 {
		t.Fatalf("CoerceRow() defects = %v", defects)
	}
	if _, ok := rec.Values["rarity"]; ok {
		t.Error("column outside the schema was kept")
	}
	if rec.Bool("unique") {
		t.Error("unique = true, want false")
	}
}

func TestCoerceCell_TextNeverFails(t *testing.T) {
	spec := schema.FieldSpec{Name: "name", Type: schema.FieldText}
	for _, raw := range []string{"", "  ", "123", "true", `"quoted"`} {
		v, err := CoerceCell(raw, spec)
		if err != nil {
			t.Errorf("CoerceCell(%q) error = %v", raw, err)
		}
		if v.Str != raw {
			t.Errorf("CoerceCell(%q) = %q", raw, v.Str)
		}
	}
}
