// Package deck checks deck lists against a card catalog.
//
// Validate is pure and deterministic and reports every rule a deck breaks,
// in a fixed rule order:
//
//  1. DUPLICATE_ENTRY   a card id listed more than once (once per id)
//  2. INVALID_QTY       quantity below 1
//  3. UNKNOWN_CARD      card id not in the catalog
//  4. SET_FORBIDDEN     card from a set other than OGN
//  5. MAX_COPIES        more than 3 copies of a card
//  6. UNIQUE_VIOLATION  more than 1 copy of a unique card
//  7. LEADER_COUNT      leader copies other than exactly 1
//  8. DECK_SIZE         total copies other than 40
//
// Within a rule, errors follow entry order.
package deck

import (
	"fmt"

	"github.com/JonMunkholm/cardimport/internal/cards"
	"github.com/JonMunkholm/cardimport/internal/schema"
)

// Deck construction limits.
const (
	Size      = 40
	MaxCopies = 3
	Leaders   = 1
)

// Code identifies a broken deck rule.
type Code string

const (
	CodeDuplicateEntry  Code = "DUPLICATE_ENTRY"
	CodeInvalidQty      Code = "INVALID_QTY"
	CodeUnknownCard     Code = "UNKNOWN_CARD"
	CodeSetForbidden    Code = "SET_FORBIDDEN"
	CodeMaxCopies       Code = "MAX_COPIES"
	CodeUniqueViolation Code = "UNIQUE_VIOLATION"
	CodeLeaderCount     Code = "LEADER_COUNT"
	CodeDeckSize        Code = "DECK_SIZE"
)

// Entry is one line of a deck list.
type Entry struct {
	CardID string `json:"cardId"`
	Qty    int    `json:"qty"`
}

type Deck struct {
	Entries []Entry `json:"entries"`
}

// Total returns the sum of all quantities.
func (d Deck) Total() int {
	n := 0
	for _, e := range d.Entries {
		n += e.Qty
	}
	return n
}

// Catalog maps card ids to cards.
type Catalog map[string]cards.Card

// CatalogFrom indexes cards by id. A later card replaces an earlier one with
// the same id.
func CatalogFrom(cs []cards.Card) Catalog {
	c := make(Catalog, len(cs))
	for _, card := range cs {
		c[card.ID] = card
	}
	return c
}

// Error is one broken rule.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type Result struct {
	OK     bool    `json:"ok"`
	Errors []Error `json:"errors"`
}

// Options changes how a deck list is read before the rules run.
type Options struct {
	// MergeDuplicates sums repeated card ids instead of reporting them.
	MergeDuplicates bool `json:"mergeDuplicates"`
}

// Validate checks d against every deck rule.
func Validate(d Deck, catalog Catalog, opts Options) Result {
	var errs []Error

	entries := d.Entries
	if opts.MergeDuplicates {
		entries = merge(entries)
	} else {
		errs = append(errs, duplicates(entries)...)
	}

	for _, e := range entries {
		if e.Qty <= 0 {
			errs = append(errs, Error{
				Code:    CodeInvalidQty,
				Message: fmt.Sprintf("card %s has quantity %d, must be at least 1", e.CardID, e.Qty),
				Meta:    map[string]any{"cardId": e.CardID, "qty": e.Qty},
			})
		}
	}

	for _, e := range entries {
		if _, ok := catalog[e.CardID]; !ok {
			errs = append(errs, Error{
				Code:    CodeUnknownCard,
				Message: fmt.Sprintf("card %s is not in the catalog", e.CardID),
				Meta:    map[string]any{"cardId": e.CardID},
			})
		}
	}

	for _, e := range entries {
		if c, ok := catalog[e.CardID]; ok && c.SetCode != schema.OriginSet {
			errs = append(errs, Error{
				Code:    CodeSetForbidden,
				Message: fmt.Sprintf("card %s is from set %s, only %s is allowed", e.CardID, c.SetCode, schema.OriginSet),
				Meta:    map[string]any{"cardId": e.CardID, "setCode": c.SetCode},
			})
		}
	}

	for _, e := range entries {
		if e.Qty > MaxCopies {
			errs = append(errs, Error{
				Code:    CodeMaxCopies,
				Message: fmt.Sprintf("card %s has %d copies, at most %d allowed", e.CardID, e.Qty, MaxCopies),
				Meta:    map[string]any{"cardId": e.CardID, "qty": e.Qty, "max": MaxCopies},
			})
		}
	}

	for _, e := range entries {
		if c, ok := catalog[e.CardID]; ok && c.Unique && e.Qty > 1 {
			errs = append(errs, Error{
				Code:    CodeUniqueViolation,
				Message: fmt.Sprintf("unique card %s has %d copies, at most 1 allowed", e.CardID, e.Qty),
				Meta:    map[string]any{"cardId": e.CardID, "qty": e.Qty},
			})
		}
	}

	leaders := 0
	for _, e := range entries {
		if c, ok := catalog[e.CardID]; ok && c.IsLeader() {
			leaders += e.Qty
		}
	}
	if leaders != Leaders {
		errs = append(errs, Error{
			Code:    CodeLeaderCount,
			Message: fmt.Sprintf("deck has %d leaders, expected %d", leaders, Leaders),
			Meta:    map[string]any{"expected": Leaders, "actual": leaders},
		})
	}

	if total := (Deck{Entries: entries}).Total(); total != Size {
		errs = append(errs, Error{
			Code:    CodeDeckSize,
			Message: fmt.Sprintf("deck has %d cards, expected %d", total, Size),
			Meta:    map[string]any{"expected": Size, "actual": total},
		})
	}

	if errs == nil {
		errs = []Error{}
	}
	return Result{OK: len(errs) == 0, Errors: errs}
}

func duplicates(entries []Entry) []Error {
	var errs []Error
	seen := make(map[string]bool, len(entries))
	reported := make(map[string]bool)
	for _, e := range entries {
		if seen[e.CardID] && !reported[e.CardID] {
			reported[e.CardID] = true
			errs = append(errs, Error{
				Code:    CodeDuplicateEntry,
				Message: fmt.Sprintf("card %s is listed more than once", e.CardID),
				Meta:    map[string]any{"cardId": e.CardID},
			})
		}
		seen[e.CardID] = true
	}
	return errs
}

// merge sums quantities per card id, keeping first-seen order.
func merge(entries []Entry) []Entry {
	idx := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := idx[e.CardID]; ok {
			out[i].Qty += e.Qty
			continue
		}
		idx[e.CardID] = len(out)
		out = append(out, e)
	}
	return out
}
