package tables

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LoadDir registers one record kind per *.yaml or *.yml file in dir. The
// kind key is the schema name, or the file name without extension when the
// schema has none. Returns the registered keys in file name order.
func LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	keys := make([]string, 0, len(files))
	for _, name := range files {
		s, err := schema.LoadFile(filepath.Join(dir, name))
		if err != nil {
			return keys, fmt.Errorf("schema %s: %w", name, err)
		}
		key := s.Name
		if key == "" {
			key = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if _, exists := core.Get(key); exists {
			return keys, fmt.Errorf("schema %s: record kind %q already registered", name, key)
		}

		core.Register(core.Definition{
			Info:   core.KindInfo{Key: key, Label: label(key)},
			Schema: s,
		})
		keys = append(keys, key)
	}
	return keys, nil
}

// label turns a key like "deck_lists" into "Deck Lists".
func label(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
