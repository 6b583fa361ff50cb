package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/cardimport/internal/schema"
)

// ErrUnknownKind is returned when no record kind is registered under a key.
var ErrUnknownKind = errors.New("unknown record kind")

// KindInfo contains display information about an importable record kind.
type KindInfo struct {
	Key     string   `json:"key"`     // Unique identifier: "cards"
	Label   string   `json:"label"`   // Display name: "Cards"
	Columns []string `json:"columns"` // Required header column names
}

// Definition contains everything needed to import one record kind.
type Definition struct {
	Info   KindInfo
	Schema schema.Schema
}

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds a definition to the registry.
// Panics if the key is taken or the schema is invalid.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("record kind already registered: %s", def.Info.Key))
	}
	if err := def.Schema.Validate(); err != nil {
		panic(fmt.Sprintf("record kind %s: %v", def.Info.Key, err))
	}

	if len(def.Info.Columns) == 0 {
		def.Info.Columns = def.Schema.Columns()
	}

	registry[def.Info.Key] = def
}

// Get returns a definition by key.
func Get(key string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Lookup returns a definition by key, or an error wrapping ErrUnknownKind.
func Lookup(key string) (Definition, error) {
	def, ok := Get(key)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownKind, key)
	}
	return def, nil
}

// All returns all registered definitions sorted by key.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// KindCount returns the number of registered kinds.
func KindCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered kinds.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Definition)
}
