package tables

import (
	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/schema"
)

// CardsKey is the registry key of the built-in card kind.
const CardsKey = "cards"

func init() {
	registerCards()
}

func registerCards() {
	core.Register(core.Definition{
		Info: core.KindInfo{
			Key:   CardsKey,
			Label: "Cards",
		},
		Schema: schema.CardSchema,
	})
}
