package core

// importer.go composes tokenizing, header validation, row coercion and record
// validation into one non-fail-fast pipeline.
//
// Flow:
//  1. Tokenize. A fatal defect (empty input, no header, parse error) is
//     returned alone.
//  2. Validate the header. Defects are kept; missing columns are skipped for
//     every row so they are reported once, on line 1.
//  3. Per row: coerce, then validate only if coercion was clean. A row with
//     any defect contributes no record.
//  4. OK only when no defect was found anywhere.

import (
	"github.com/JonMunkholm/cardimport/internal/schema"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the minimum row count before Options.Workers is used.
// Smaller inputs finish faster on one goroutine.
const parallelThreshold = 512

type rowOutcome struct {
	record  Record
	defects []Defect
}

// Import runs the full pipeline over text using schema s.
// Defects are ordered by line, header defects first, coercion defects before
// schema defects for the same line.
func Import(text string, s schema.Schema, opts Options) Result[Record] {
	a := analyze(text, s, opts)
	if a.fatal != nil {
		return Result[Record]{Defects: []Defect{*a.fatal}}
	}

	defects := a.header
	records := make([]Record, 0, len(a.outcomes))
	for _, o := range a.outcomes {
		if len(o.defects) > 0 {
			defects = append(defects, o.defects...)
			continue
		}
		records = append(records, o.record)
	}

	if len(defects) > 0 {
		return Result[Record]{Defects: defects}
	}
	return Result[Record]{OK: true, Records: records}
}

// analysis holds per-row outcomes before they are folded into a Result.
type analysis struct {
	fatal    *Defect
	header   []Defect
	outcomes []rowOutcome
}

func analyze(text string, s schema.Schema, opts Options) analysis {
	parsed, fatal := Tokenize(text, opts)
	if fatal != nil {
		return analysis{fatal: fatal}
	}

	header := ValidateHeader(parsed.Header, s, opts.StrictHeader)
	skip := missingColumns(header)

	return analysis{
		header:   header,
		outcomes: processRows(parsed, s, skip, opts),
	}
}

// ImportAs runs Import and converts each record with build.
func ImportAs[T any](text string, s schema.Schema, opts Options, build func(Record) T) Result[T] {
	res := Import(text, s, opts)
	if !res.OK {
		return Result[T]{Defects: res.Defects}
	}

	out := make([]T, len(res.Records))
	for i, rec := range res.Records {
		out[i] = build(rec)
	}
	return Result[T]{OK: true, Records: out}
}

// processRows coerces and validates every row. Results are indexed by row
// position, so output order never depends on scheduling.
func processRows(p *Parsed, s schema.Schema, skip map[string]bool, opts Options) []rowOutcome {
	out := make([]rowOutcome, len(p.Rows))

	workers := opts.Workers
	threshold := parallelThreshold
	if opts.minParallelRows > 0 {
		threshold = opts.minParallelRows
	}
	if workers <= 1 || len(p.Rows) < threshold {
		for i, row := range p.Rows {
			out[i] = processRow(p.Header, row, s, skip)
		}
		return out
	}

	chunk := (len(p.Rows) + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(p.Rows); start += chunk {
		end := min(start+chunk, len(p.Rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = processRow(p.Header, p.Rows[i], s, skip)
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func processRow(header []string, row RawRow, s schema.Schema, skip map[string]bool) rowOutcome {
	rec, defects := CoerceRow(header, row, s, skip)
	if len(defects) > 0 {
		return rowOutcome{defects: defects}
	}
	if defects := ValidateRecord(rec, s, skip); len(defects) > 0 {
		return rowOutcome{defects: defects}
	}
	return rowOutcome{record: rec}
}
