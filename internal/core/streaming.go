package core

// streaming.go prepares uploaded bytes for the tokenizer.
//
// Files arrive from spreadsheets in whatever encoding the exporting tool
// chose. Before tokenizing, input is:
//   - decoded from the declared charset (UTF-8 by default), with a UTF-8 or
//     UTF-16 byte order mark taking precedence and being removed
//   - sanitized so invalid UTF-8 becomes U+FFFD
//   - capped at a maximum size
//
// Fingerprint hashes the decoded text so repeated uploads of the same file
// can be detected.

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrInputTooLarge is returned when input exceeds the configured limit.
var ErrInputTooLarge = errors.New("file too large")

// ErrUnknownEncoding is returned for an unsupported charset name.
var ErrUnknownEncoding = errors.New("encoding error: unknown charset")

// lookupEncoding maps a charset name to its decoder.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-16", "utf16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEncoding, name)
	}
}

// NewDecodingReader wraps r so that it yields UTF-8 text.
func NewDecodingReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	t := transform.Chain(unicode.BOMOverride(enc.NewDecoder()), runes.ReplaceIllFormed())
	return transform.NewReader(r, t), nil
}

// countingReader tracks raw bytes read, before decoding.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// DecodeInput reads all of r as text in the given charset. A limit <= 0
// disables the size check, which applies to raw bytes.
func DecodeInput(r io.Reader, charset string, limit int64) (string, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	cr := &countingReader{r: r}

	dr, err := NewDecodingReader(cr, charset)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if _, err := io.Copy(&b, dr); err != nil {
		return "", fmt.Errorf("decode input: %w", err)
	}
	if limit > 0 && cr.n > limit {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrInputTooLarge, limit)
	}
	return b.String(), nil
}

// Fingerprint returns a stable hash of decoded input text.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(text))
}
