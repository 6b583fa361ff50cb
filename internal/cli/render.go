package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/deck"
	"github.com/jedib0t/go-pretty/v6/table"
)

// importSummary is the JSON form of an import report.
type importSummary struct {
	ID          string        `json:"id,omitempty"`
	Kind        string        `json:"kind"`
	FileName    string        `json:"fileName"`
	Fingerprint string        `json:"fingerprint"`
	OK          bool          `json:"ok"`
	Records     int           `json:"records"`
	Saved       int           `json:"saved"`
	Defects     []core.Defect `json:"defects"`
}

func renderReport(w io.Writer, report *core.ImportReport, format string) error {
	res := report.Result

	if format == "json" {
		out := importSummary{
			ID:          report.ID,
			Kind:        report.Kind,
			FileName:    report.FileName,
			Fingerprint: report.Fingerprint,
			OK:          res.OK,
			Records:     len(res.Records),
			Saved:       report.Saved,
			Defects:     res.Defects,
		}
		if out.Defects == nil {
			out.Defects = []core.Defect{}
		}
		return writeJSON(w, out)
	}

	fmt.Fprintf(w, "%s (%s): %d records, %d defects", report.FileName, report.Kind, len(res.Records), len(res.Defects))
	if report.Saved > 0 {
		fmt.Fprintf(w, ", %d saved", report.Saved)
	}
	fmt.Fprintln(w)

	if len(res.Defects) == 0 {
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Line", "Column", "Code", "Message"})
	for _, d := range res.Defects {
		t.AppendRow(table.Row{d.Line, d.Column, d.Code, d.Message})
	}
	t.Render()

	seen := make(map[core.Code]bool)
	for _, d := range res.Defects {
		if seen[d.Code] {
			continue
		}
		seen[d.Code] = true
		msg := core.MapDefect(d)
		fmt.Fprintf(w, "%s: %s\n", msg.Code, msg.Action)
	}
	return nil
}

func renderDeckResult(w io.Writer, d deck.Deck, res deck.Result, format string) error {
	if format == "json" {
		if res.Errors == nil {
			res.Errors = []deck.Error{}
		}
		return writeJSON(w, res)
	}

	if res.OK {
		fmt.Fprintf(w, "deck is valid (%d cards)\n", d.Total())
		return nil
	}

	fmt.Fprintf(w, "deck is invalid (%d cards, %d errors)\n", d.Total(), len(res.Errors))
	t := newTable(w)
	t.AppendHeader(table.Row{"Code", "Message"})
	for _, e := range res.Errors {
		t.AppendRow(table.Row{e.Code, e.Message})
	}
	t.Render()
	return nil
}

func renderKinds(w io.Writer, kinds []core.KindInfo) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Kind", "Label", "Columns"})
	for _, k := range kinds {
		t.AppendRow(table.Row{k.Key, k.Label, strings.Join(k.Columns, ", ")})
	}
	t.Render()
}

func renderRuns(w io.Writer, runs []core.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "(no imports)")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"When", "File", "OK", "Records", "Defects", "Forced", "ID"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.FileName, r.OK, r.Records, r.Defects, r.Forced, r.ID,
		})
	}
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
