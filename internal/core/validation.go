package core

// validation.go checks CSV data against a schema.
//
// Validation happens at two levels:
//  1. Header validation: required columns are present and, in strict mode,
//     no unknown columns appear.
//  2. Record validation: each coerced value satisfies its field constraints.
//
// Both return every defect found; nothing stops at the first problem.

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/cardimport/internal/schema"
)

// ValidateHeader compares a tokenized header with the schema's columns.
// Missing-column defects come first in schema order, then unknown-column
// defects (strict only) in header order. All are reported on line 1.
func ValidateHeader(header []string, s schema.Schema, strict bool) []Defect {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var defects []Defect
	for _, spec := range s.Fields {
		if !present[spec.Name] {
			defects = append(defects, Defect{
				Line:    1,
				Column:  spec.Name,
				Code:    CodeHeaderMissingCol,
				Message: fmt.Sprintf("missing required column %q", spec.Name),
			})
		}
	}

	if strict {
		for i, h := range header {
			if _, ok := s.Field(h); !ok {
				defects = append(defects, Defect{
					Line:    1,
					Column:  h,
					Code:    CodeHeaderUnknownCol,
					Message: fmt.Sprintf("unknown column %q", h),
					Meta:    map[string]any{"position": i + 1},
				})
			}
		}
	}

	return defects
}

// missingColumns returns the schema columns reported missing by header defects.
func missingColumns(defects []Defect) map[string]bool {
	skip := make(map[string]bool)
	for _, d := range defects {
		if d.Code == CodeHeaderMissingCol {
			skip[d.Column] = true
		}
	}
	return skip
}

// ValidateRecord applies every field constraint to a coerced record and
// returns one ZOD defect per failing constraint. Columns in skip or absent
// from the record are not checked.
func ValidateRecord(rec Record, s schema.Schema, skip map[string]bool) []Defect {
	var defects []Defect
	for _, spec := range s.Fields {
		if skip[spec.Name] {
			continue
		}
		v, ok := rec.Values[spec.Name]
		if !ok {
			continue
		}
		for _, err := range ValidateCell(v, spec) {
			defects = append(defects, Defect{
				Line:    rec.Line,
				Column:  spec.Name,
				Code:    CodeSchema,
				Message: err.Message,
				Meta:    err.meta(v),
			})
		}
	}
	return defects
}

// ValidationError is a single failed constraint.
type ValidationError struct {
	Constraint string // nonEmpty, literal, enum, min, max
	Expected   any
	Message    string
}

func (e ValidationError) Error() string {
	return e.Message
}

func (e ValidationError) meta(v Value) map[string]any {
	m := map[string]any{"constraint": e.Constraint, "received": v.Interface()}
	if e.Expected != nil {
		m["expected"] = e.Expected
	}
	return m
}

// ValidateCell checks a typed value against a field's constraints and
// returns every violation.
func ValidateCell(v Value, spec schema.FieldSpec) []ValidationError {
	var errs []ValidationError

	switch v.Kind {
	case schema.FieldText:
		if spec.NonEmpty && v.Str == "" {
			errs = append(errs, ValidationError{
				Constraint: "nonEmpty",
				Message:    "must not be empty",
			})
		}
		if spec.Literal != nil && v.Str != *spec.Literal {
			errs = append(errs, ValidationError{
				Constraint: "literal",
				Expected:   *spec.Literal,
				Message:    fmt.Sprintf("invalid literal value, expected %q, received %q", *spec.Literal, v.Str),
			})
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, v.Str) {
			errs = append(errs, ValidationError{
				Constraint: "enum",
				Expected:   spec.Enum,
				Message:    fmt.Sprintf("invalid enum value, expected one of: %s, received %q", strings.Join(spec.Enum, ", "), v.Str),
			})
		}
	case schema.FieldInt:
		if spec.Min != nil && v.Int < *spec.Min {
			errs = append(errs, ValidationError{
				Constraint: "min",
				Expected:   *spec.Min,
				Message:    fmt.Sprintf("must be greater than or equal to %d", *spec.Min),
			})
		}
		if spec.Max != nil && v.Int > *spec.Max {
			errs = append(errs, ValidationError{
				Constraint: "max",
				Expected:   *spec.Max,
				Message:    fmt.Sprintf("must be less than or equal to %d", *spec.Max),
			})
		}
	}

	return errs
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
