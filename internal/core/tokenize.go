package core

// tokenize.go splits CSV text into a header and data rows.
//
// Rules:
//   - Lines end at \n, \r\n or a lone \r. A trailing terminator does not
//     start another row. Line numbers are 1-based and count every physical
//     line, blank ones included.
//   - Fields are separated by commas. A field that begins with a double quote
//     is quoted: commas inside it are literal and "" decodes to one quote.
//     After the closing quote only a comma or end of line may follow.
//   - Quoted fields never span lines; a quote still open at end of line is a
//     CSV_PARSE defect at that line.
//   - Blank data lines are skipped.
//   - With Options.Trim, unquoted fields are trimmed and whitespace around a
//     quoted field is ignored. Quoted content is kept verbatim.

import (
	"fmt"
	"strings"
)

const utf8BOM = "\uFEFF"

// Tokenize parses text into a header and data rows. It returns a single
// fatal defect (CSV_EMPTY, CSV_HEADER_MISSING or CSV_PARSE) when the input
// cannot be tokenized; no rows are returned in that case.
func Tokenize(text string, opts Options) (*Parsed, *Defect) {
	text = strings.TrimPrefix(text, utf8BOM)
	lines := splitLines(text)

	if len(lines) == 0 {
		return nil, &Defect{Line: 1, Column: RowColumn, Code: CodeEmpty, Message: "input is empty"}
	}

	if isBlank(lines[0]) {
		for i, l := range lines[1:] {
			if !isBlank(l) {
				return nil, &Defect{
					Line:    1,
					Column:  RowColumn,
					Code:    CodeHeaderMissing,
					Message: "first line is blank; expected column names",
					Meta:    map[string]any{"firstContentLine": i + 2},
				}
			}
		}
		return nil, &Defect{Line: 1, Column: RowColumn, Code: CodeEmpty, Message: "input has no content"}
	}

	header, d := splitLine(lines[0], 1, len(lines) == 1, nil, Options{Trim: true})
	if d != nil {
		return nil, d
	}
	if allEmpty(header) {
		return nil, &Defect{Line: 1, Column: RowColumn, Code: CodeHeaderMissing, Message: "header has no column names"}
	}

	parsed := &Parsed{Header: header, Rows: make([]RawRow, 0, len(lines)-1)}
	for i := 1; i < len(lines); i++ {
		if isBlank(lines[i]) {
			continue
		}
		lineNo := i + 1
		fields, d := splitLine(lines[i], lineNo, i == len(lines)-1, header, opts)
		if d != nil {
			return nil, d
		}
		parsed.Rows = append(parsed.Rows, RawRow{Line: lineNo, Fields: fields})
	}

	return parsed, nil
}

// splitLines splits text into physical lines without their terminators.
func splitLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}

// splitLine tokenizes one physical line. header, when non-nil, is used to
// name the column of a parse defect.
func splitLine(line string, lineNo int, last bool, header []string, opts Options) ([]string, *Defect) {
	fields := make([]string, 0, len(header))
	pos := 0
	for {
		field, next, d := readField(line, pos, opts.Trim)
		if d != nil {
			d.Line = lineNo
			d.Column = columnName(header, len(fields))
			if d.Meta["unterminated"] == true {
				delete(d.Meta, "unterminated")
				if !last {
					d.Message = "quoted field contains a line break"
				}
			}
			return nil, d
		}
		fields = append(fields, field)
		if next >= len(line) {
			return fields, nil
		}
		pos = next + 1
	}
}

// readField reads the field starting at pos. It returns the decoded field and
// the index of the delimiter that ended it (len(line) at end of line).
func readField(line string, pos int, trim bool) (string, int, *Defect) {
	q := pos
	if trim {
		for q < len(line) && isSpace(line[q]) {
			q++
		}
	}
	if q < len(line) && line[q] == '"' {
		return readQuoted(line, q, trim)
	}

	end := strings.IndexByte(line[pos:], ',')
	if end < 0 {
		end = len(line)
	} else {
		end += pos
	}
	field := line[pos:end]
	if trim {
		field = strings.TrimSpace(field)
	}
	return field, end, nil
}

// readQuoted reads a quoted field whose opening quote is at line[open].
func readQuoted(line string, open int, trim bool) (string, int, *Defect) {
	var b strings.Builder
	i := open + 1
	for {
		j := strings.IndexByte(line[i:], '"')
		if j < 0 {
			return "", 0, &Defect{
				Code:    CodeParse,
				Message: "unterminated quoted field",
				Meta:    map[string]any{"offset": open + 1, "unterminated": true},
			}
		}
		b.WriteString(line[i : i+j])
		i += j

		if i+1 < len(line) && line[i+1] == '"' {
			b.WriteByte('"')
			i += 2
			continue
		}

		i++ // closing quote
		if trim {
			for i < len(line) && isSpace(line[i]) {
				i++
			}
		}
		if i < len(line) && line[i] != ',' {
			return "", 0, &Defect{
				Code:    CodeParse,
				Message: fmt.Sprintf("unexpected %q after closing quote", line[i]),
				Meta:    map[string]any{"offset": i + 1},
			}
		}
		return b.String(), i, nil
	}
}

func columnName(header []string, idx int) string {
	if idx < len(header) && header[idx] != "" {
		return header[idx]
	}
	return RowColumn
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
