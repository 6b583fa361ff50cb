// Package core implements CSV import for typed record kinds.
//
// The pipeline is pure: text in, [Result] out. It never stops at the first
// problem; every [Defect] found is reported with its 1-based line and column.
//
// # Pipeline
//
//  1. [Tokenize] splits text into a header and raw rows. Empty input, a
//     missing header or a malformed quoted field is fatal and is returned
//     alone.
//  2. [ValidateHeader] reports missing columns and, in strict mode, unknown
//     ones. Missing columns are skipped for every row.
//  3. [CoerceRow] turns each raw row into a typed [Record].
//  4. [ValidateRecord] applies the field constraints of the schema.
//
// [Import] composes the stages. [ImportAs] maps records to a fixed type.
//
// # Record Kinds
//
// Kinds are registered at init time with [Register]:
//
//	core.Register(core.Definition{
//	    Info:   core.KindInfo{Key: "cards", Label: "Cards"},
//	    Schema: schema.CardSchema,
//	})
//
// # Service
//
// [Service] wraps the pipeline with input decoding, duplicate-file detection
// by content fingerprint, a concurrency limit and persistence through a
// [Repository].
//
// # Error Handling
//
// Defects and technical errors map to user-facing messages with [MapDefect]
// and [MapError]:
//
//   - CSV001-CSV006: tokenizer and header defects
//   - VAL001-VAL002: type and constraint defects
//   - DB001-DB005: database errors
//   - FILE001-FILE003: size, encoding, missing file
//   - IMP001-IMP004: busy, cancelled, duplicate file, unknown kind
package core
