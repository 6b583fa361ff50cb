package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		opts   Options
		header []string
		rows   []RawRow
	}{
		{
			name:   "header only",
			text:   "id,name\n",
			header: []string{"id", "name"},
			rows:   []RawRow{},
		},
		{
			name:   "lf terminators",
			text:   "a,b\n1,2\n3,4\n",
			header: []string{"a", "b"},
			rows: []RawRow{
				{Line: 2, Fields: []string{"1", "2"}},
				{Line: 3, Fields: []string{"3", "4"}},
			},
		},
		{
			name:   "crlf and no trailing terminator",
			text:   "a,b\r\n1,2\r\n3,4",
			header: []string{"a", "b"},
			rows: []RawRow{
				{Line: 2, Fields: []string{"1", "2"}},
				{Line: 3, Fields: []string{"3", "4"}},
			},
		},
		{
			name:   "lone cr terminator",
			text:   "a,b\r1,2\r",
			header: []string{"a", "b"},
			rows:   []RawRow{{Line: 2, Fields: []string{"1", "2"}}},
		},
		{
			name:   "blank lines are skipped but counted",
			text:   "a,b\n\n1,2\n   \n3,4\n",
			header: []string{"a", "b"},
			rows: []RawRow{
				{Line: 3, Fields: []string{"1", "2"}},
				{Line: 5, Fields: []string{"3", "4"}},
			},
		},
		{
			name:   "quoted comma is preserved",
			text:   "id,name\n1,\"Name, With Comma\"\n",
			header: []string{"id", "name"},
			rows:   []RawRow{{Line: 2, Fields: []string{"1", "Name, With Comma"}}},
		},
		{
			name:   "doubled quote decodes to one quote",
			text:   "id,name\n1,\"say \"\"hi\"\"\"\n",
			header: []string{"id", "name"},
			rows:   []RawRow{{Line: 2, Fields: []string{"1", `say "hi"`}}},
		},
		{
			name:   "quote inside unquoted field is literal",
			text:   "id,name\n1,5\" disk\n",
			header: []string{"id", "name"},
			rows:   []RawRow{{Line: 2, Fields: []string{"1", `5" disk`}}},
		},
		{
			name:   "empty fields",
			text:   "a,b,c\n,,\n",
			header: []string{"a", "b", "c"},
			rows:   []RawRow{{Line: 2, Fields: []string{"", "", ""}}},
		},
		{
			name:   "empty quoted field",
			text:   "a,b\n\"\",x\n",
			header: []string{"a", "b"},
			rows:   []RawRow{{Line: 2, Fields: []string{"", "x"}}},
		},
		{
			name:   "no trim keeps whitespace",
			text:   "a,b\n 1 , 2 \n",
			header: []string{"a", "b"},
			rows:   []RawRow{{Line: 2, Fields: []string{" 1 ", " 2 "}}},
		},
		{
			name:   "trim unquoted only",
			text:   "a,b\n 1 ,  \" keep \"  \n",
			opts:   Options{Trim: true},
			header: []string{"a", "b"},
			rows:   []RawRow{{Line: 2, Fields: []string{"1", " keep "}}},
		},
		{
			name:   "header is trimmed and bom stripped",
			text:   "\uFEFF id , name \n1,x\n",
			header: []string{"id", "name"},
			rows:   []RawRow{{Line: 2, Fields: []string{"1", "x"}}},
		},
		{
			name:   "short row is kept for the coercer",
			text:   "a,b,c\n1,2\n",
			header: []string{"a", "b", "c"},
			rows:   []RawRow{{Line: 2, Fields: []string{"1", "2"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, d := Tokenize(tt.text, tt.opts)
			if d != nil {
				t.Fatalf("Tokenize() defect = %v", d)
			}
			if diff := cmp.Diff(tt.header, got.Header); diff != "" {
				t.Errorf("header mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.rows, got.Rows); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenize_Fatal(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode Code
		wantLine int
		wantCol  string
	}{
		{"empty input", "", CodeEmpty, 1, RowColumn},
		{"only bom", "\uFEFF", CodeEmpty, 1, RowColumn},
		{"only whitespace", "   \n\t\n", CodeEmpty, 1, RowColumn},
		{"blank line before header", "\nid,name\n1,x\n", CodeHeaderMissing, 1, RowColumn},
		{"header of empty names", ",,\n1,2,3\n", CodeHeaderMissing, 1, RowColumn},
		{"unterminated quote in row", "id,name\n1,\"open\n2,x\n", CodeParse, 2, "name"},
		{"unterminated quote on last line", "id,name\n1,x\n2,\"open", CodeParse, 3, "name"},
		{"garbage after closing quote", "id,name\n1,\"a\"b\n", CodeParse, 2, "name"},
		{"unterminated quote in header", "\"id,name\n1,2\n", CodeParse, 1, RowColumn},
		{"extra field beyond header", "a\n1,\"x\n", CodeParse, 2, RowColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, d := Tokenize(tt.text, Options{})
			if d == nil {
				t.Fatalf("Tokenize() = %+v, want defect %s", got, tt.wantCode)
			}
			if got != nil {
				t.Errorf("Tokenize() returned rows alongside a fatal defect")
			}
			if d.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", d.Code, tt.wantCode)
			}
			if d.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", d.Line, tt.wantLine)
			}
			if d.Column != tt.wantCol {
				t.Errorf("column = %q, want %q", d.Column, tt.wantCol)
			}
			if !d.Fatal() {
				t.Errorf("Fatal() = false for %s", d.Code)
			}
		})
	}
}

func TestTokenize_LineBreakInQuotedField(t *testing.T) {
	_, d := Tokenize("id,name\n1,\"first\nsecond\"\n", Options{})
	if d == nil {
		t.Fatal("expected CSV_PARSE defect")
	}
	if d.Message != "quoted field contains a line break" {
		t.Errorf("message = %q", d.Message)
	}
	if _, ok := d.Meta["unterminated"]; ok {
		t.Errorf("internal meta leaked: %v", d.Meta)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\n", []string{"a", ""}},
		{"a\r\nb", []string{"a", "b"}},
		{"a\rb\n", []string{"a", "b"}},
		{"\n", []string{""}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitLines(tt.text)); diff != "" {
			t.Errorf("splitLines(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}
