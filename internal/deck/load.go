package deck

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a deck list in its JSON form:
//
//	{"entries": [{"cardId": "L-001", "qty": 1}, ...]}
func Decode(r io.Reader) (Deck, error) {
	var d Deck
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Deck{}, fmt.Errorf("decode deck: %w", err)
	}
	return d, nil
}

// LoadFile reads a JSON deck list from path.
func LoadFile(path string) (Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return Deck{}, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
