package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		charset  string
		expected string
	}{
		{
			name:     "plain utf-8",
			input:    []byte("id,name\n1,Caf\xc3\xa9\n"),
			expected: "id,name\n1,Café\n",
		},
		{
			name:     "utf-8 bom removed",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, "id,name"...),
			expected: "id,name",
		},
		{
			name:     "only bom",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "empty",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "invalid utf-8 replaced",
			input:    []byte("a,\xff\n"),
			expected: "a,\uFFFD\n",
		},
		{
			name:     "utf-16le with bom",
			input:    []byte{0xFF, 0xFE, 'i', 0, 'd', 0, ',', 0, 'x', 0},
			expected: "id,x",
		},
		{
			name:     "utf-16be bom overrides declared utf-8",
			input:    []byte{0xFE, 0xFF, 0, 'i', 0, 'd'},
			expected: "id",
		},
		{
			name:     "windows-1252",
			input:    []byte("name\nCaf\xe9 \x80\n"),
			charset:  "windows-1252",
			expected: "name\nCafé €\n",
		},
		{
			name:     "latin1 alias",
			input:    []byte("Caf\xe9"),
			charset:  "latin1",
			expected: "Café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInput(bytes.NewReader(tt.input), tt.charset, 0)
			if err != nil {
				t.Fatalf("DecodeInput() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("DecodeInput() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDecodeInput_Limit(t *testing.T) {
	data := strings.Repeat("a", 100)

	if _, err := DecodeInput(strings.NewReader(data), "", 100); err != nil {
		t.Errorf("input at the limit: error = %v", err)
	}

	_, err := DecodeInput(strings.NewReader(data), "", 99)
	if !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("input over the limit: error = %v, want ErrInputTooLarge", err)
	}
}

func TestDecodeInput_UnknownCharset(t *testing.T) {
	_, err := DecodeInput(strings.NewReader("x"), "ebcdic", 0)
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("error = %v, want ErrUnknownEncoding", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(csvValid)
	if len(a) != 16 {
		t.Errorf("Fingerprint length = %d, want 16", len(a))
	}
	if a != Fingerprint(csvValid) {
		t.Error("Fingerprint is not stable")
	}
	if a == Fingerprint(csvBadSet) {
		t.Error("different inputs share a fingerprint")
	}
}
