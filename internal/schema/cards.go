package schema

// Card types accepted by the card schema.
const (
	TypeLeader = "LEADER"
	TypeUnit   = "UNIT"
	TypeSpell  = "SPELL"
	TypeItem   = "ITEM"
)

// OriginSet is the only set code the card schema accepts.
const OriginSet = "OGN"

// CardSchema defines the expected CSV columns for trading-card records.
var CardSchema = Schema{
	Name: "cards",
	Fields: []FieldSpec{
		{Name: "id", Type: FieldText, Constraints: Constraints{NonEmpty: true}},
		{Name: "name", Type: FieldText, Constraints: Constraints{NonEmpty: true}},
		{Name: "setCode", Type: FieldText, Constraints: Constraints{Literal: Str(OriginSet)}},
		{Name: "type", Type: FieldText, Constraints: Constraints{Enum: []string{TypeLeader, TypeUnit, TypeSpell, TypeItem}}},
		{Name: "cost", Type: FieldInt, Constraints: Constraints{Min: Int(0), Max: Int(20)}},
		{Name: "unique", Type: FieldBool},
	},
}
