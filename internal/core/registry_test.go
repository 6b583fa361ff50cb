package core

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/cardimport/internal/schema"
	"github.com/google/go-cmp/cmp"
)

// withRegistry swaps in an empty registry for the duration of a test.
func withRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := registry
	registry = make(map[string]Definition)
	registryMu.Unlock()

	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})
}

func TestRegister(t *testing.T) {
	withRegistry(t)

	Register(Definition{Info: KindInfo{Key: "cards", Label: "Cards"}, Schema: schema.CardSchema})
	Register(Definition{Info: KindInfo{Key: "alpha"}, Schema: schema.Schema{
		Fields: []schema.FieldSpec{{Name: "x"}},
	}})

	def, ok := Get("cards")
	if !ok {
		t.Fatal("Get(cards) not found")
	}
	if diff := cmp.Diff(schema.CardSchema.Columns(), def.Info.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	var keys []string
	for _, d := range All() {
		keys = append(keys, d.Info.Key)
	}
	if diff := cmp.Diff([]string{"alpha", "cards"}, keys); diff != "" {
		t.Errorf("All() order mismatch (-want +got):\n%s", diff)
	}
	if KindCount() != 2 {
		t.Errorf("KindCount() = %d, want 2", KindCount())
	}
}

func TestRegister_Panics(t *testing.T) {
	withRegistry(t)
	Register(Definition{Info: KindInfo{Key: "cards"}, Schema: schema.CardSchema})

	tests := []struct {
		name string
		def  Definition
	}{
		{"duplicate key", Definition{Info: KindInfo{Key: "cards"}, Schema: schema.CardSchema}},
		{"invalid schema", Definition{Info: KindInfo{Key: "empty"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			Register(tt.def)
		})
	}
}

func TestLookup(t *testing.T) {
	withRegistry(t)

	_, err := Lookup("missing")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Lookup(missing) error = %v, want ErrUnknownKind", err)
	}

	Register(Definition{Info: KindInfo{Key: "cards"}, Schema: schema.CardSchema})
	if _, err := Lookup("cards"); err != nil {
		t.Errorf("Lookup(cards) error = %v", err)
	}

	Clear()
	if KindCount() != 0 {
		t.Errorf("KindCount() after Clear = %d", KindCount())
	}
}
