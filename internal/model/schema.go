package model

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// keyPattern is the lexical shape every schema key must have: a dotted path of
// lowercase identifiers, e.g. "source.ip" or "feed.name".
var keyPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z0-9_]+)*$`)

// FieldSpec is the raw schema descriptor for a single field as it appears in a
// schema file: the type name plus optional length and regex constraints.
type FieldSpec struct {
	Type   string `json:"type" yaml:"type"`
	Length int    `json:"length,omitempty" yaml:"length,omitempty"`
	Regex  string `json:"regex,omitempty" yaml:"regex,omitempty"`
	IRegex string `json:"iregex,omitempty" yaml:"iregex,omitempty"`
}

// Field is a compiled descriptor: the spec plus its statically-resolved field
// type and precompiled regex constraints. Immutable after schema load.
type Field struct {
	Spec      FieldSpec
	fieldType FieldType
	regex     *regexp.Regexp
	iregex    *regexp.Regexp
}

// Sanitize runs the field's type sanitizer
func (f *Field) Sanitize(value any) (any, bool) {
	return f.fieldType.Sanitize(value)
}

// Validate checks a value against the field type and the descriptor's length
// and regex constraints. Returns false with a reason on the first failure.
func (f *Field) Validate(value any) (bool, string) {
	if !f.fieldType.IsValid(value) {
		return false, "is_valid returned false"
	}

	text := ValueText(value)

	if f.Spec.Length > 0 && len(text) > f.Spec.Length {
		return false, fmt.Sprintf("too long: %d > %d", len(text), f.Spec.Length)
	}

	if f.regex != nil && !f.regex.MatchString(text) {
		return false, "regex did not match"
	}

	if f.iregex != nil && !f.iregex.MatchString(text) {
		return false, "regex (case insensitive) did not match"
	}

	return true, ""
}

// Section maps dotted field names to compiled descriptors for one record kind
type Section map[string]*Field

// Schema holds the compiled field sections for every record kind.
// Immutable after load.
type Schema struct {
	sections map[string]Section
}

// NewSchema compiles raw field specs into a schema, resolving every type name
// against the registry and compiling regex constraints. Section names are the
// lowercase kind names ("message", "report", "event").
func NewSchema(defs map[string]map[string]FieldSpec, registry *TypeRegistry) (*Schema, error) {
	schema := &Schema{
		sections: make(map[string]Section, len(defs)),
	}

	for sectionName, fields := range defs {
		section := make(Section, len(fields))

		for key, spec := range fields {
			if !keyPattern.MatchString(key) {
				return nil, fmt.Errorf("schema section %q: key %q is not a dotted lowercase identifier path", sectionName, key)
			}

			fieldType, exists := registry.Lookup(spec.Type)
			if !exists {
				return nil, &UnknownTypeError{Name: spec.Type}
			}

			field := &Field{
				Spec:      spec,
				fieldType: fieldType,
			}

			if spec.Regex != "" {
				regex, err := regexp.Compile(spec.Regex)
				if err != nil {
					return nil, fmt.Errorf("schema section %q: key %q: invalid regex: %w", sectionName, key, err)
				}
				field.regex = regex
			}

			if spec.IRegex != "" {
				iregex, err := regexp.Compile("(?i)" + spec.IRegex)
				if err != nil {
					return nil, fmt.Errorf("schema section %q: key %q: invalid iregex: %w", sectionName, key, err)
				}
				field.iregex = iregex
			}

			section[key] = field
		}

		schema.sections[sectionName] = section
	}

	return schema, nil
}

// LoadSchema reads a schema definition file and compiles it. YAML and JSON
// files are both supported; JSON is parsed by the YAML decoder.
func LoadSchema(path string, registry *TypeRegistry) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}

	var defs map[string]map[string]FieldSpec
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json", ".conf":
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("error parsing schema file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema file extension: %s", filepath.Ext(path))
	}

	return NewSchema(defs, registry)
}

// Section retrieves the compiled section for a record kind
func (s *Schema) Section(kind Kind) (Section, bool) {
	section, exists := s.sections[kind.sectionName()]
	return section, exists
}
