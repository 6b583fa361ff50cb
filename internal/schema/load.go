package schema

// load.go reads and writes schema definitions as YAML so record kinds can be
// described outside the binary:
//
//	name: cards
//	fields:
//	  - name: id
//	    type: text
//	    nonEmpty: true
//	  - name: cost
//	    type: int
//	    min: 0
//	    max: 20

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Name   string      `yaml:"name"`
	Fields []fileField `yaml:"fields"`
}

type fileField struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type,omitempty"`
	NonEmpty bool     `yaml:"nonEmpty,omitempty"`
	Literal  *string  `yaml:"literal,omitempty"`
	Enum     []string `yaml:"enum,omitempty,flow"`
	Min      *int64   `yaml:"min,omitempty"`
	Max      *int64   `yaml:"max,omitempty"`
}

// Load decodes a YAML schema definition and validates it.
func Load(r io.Reader) (Schema, error) {
	var fs fileSchema
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fs); err != nil {
		return Schema{}, fmt.Errorf("decode schema: %w", err)
	}

	s := Schema{Name: fs.Name, Fields: make([]FieldSpec, 0, len(fs.Fields))}
	for _, f := range fs.Fields {
		ft, err := ParseFieldType(f.Type)
		if err != nil {
			return Schema{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		s.Fields = append(s.Fields, FieldSpec{
			Name: f.Name,
			Type: ft,
			Constraints: Constraints{
				NonEmpty: f.NonEmpty,
				Literal:  f.Literal,
				Enum:     f.Enum,
				Min:      f.Min,
				Max:      f.Max,
			},
		})
	}

	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// LoadFile reads a YAML schema definition from path.
func LoadFile(path string) (Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return Schema{}, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Dump writes s as YAML in the format accepted by Load.
func Dump(w io.Writer, s Schema) error {
	fs := fileSchema{Name: s.Name, Fields: make([]fileField, len(s.Fields))}
	for i, f := range s.Fields {
		fs.Fields[i] = fileField{
			Name:     f.Name,
			Type:     f.Type.String(),
			NonEmpty: f.NonEmpty,
			Literal:  f.Literal,
			Enum:     f.Enum,
			Min:      f.Min,
			Max:      f.Max,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fs); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return enc.Close()
}
