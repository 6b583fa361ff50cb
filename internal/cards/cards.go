// Package cards is the typed view of imported card records.
package cards

import (
	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/schema"
)

// Card is one trading card as described by the card schema.
type Card struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SetCode string `json:"setCode"`
	Type    string `json:"type"`
	Cost    int    `json:"cost"`
	Unique  bool   `json:"unique"`
}

// IsLeader reports whether the card is a leader.
func (c Card) IsLeader() bool {
	return c.Type == schema.TypeLeader
}

// FromRecord builds a Card from a record validated against schema.CardSchema.
func FromRecord(r core.Record) Card {
	return Card{
		ID:      r.Text("id"),
		Name:    r.Text("name"),
		SetCode: r.Text("setCode"),
		Type:    r.Text("type"),
		Cost:    int(r.Int("cost")),
		Unique:  r.Bool("unique"),
	}
}

// FromRecords converts a slice of card records.
func FromRecords(records []core.Record) []Card {
	out := make([]Card, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}

// Import parses and validates card CSV text.
func Import(text string, opts core.Options) core.Result[Card] {
	return core.ImportAs(text, schema.CardSchema, opts, FromRecord)
}
