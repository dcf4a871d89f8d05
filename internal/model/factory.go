package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies one of the three record variants
type Kind string

const (
	// KindMessage is the common base record
	KindMessage Kind = "Message"
	// KindReport is raw ingested input
	KindReport Kind = "Report"
	// KindEvent is one normalized finding
	KindEvent Kind = "Event"
)

// Valid reports whether the kind is one of the recognized variants
func (k Kind) Valid() bool {
	switch k {
	case KindMessage, KindReport, KindEvent:
		return true
	}
	return false
}

func (k Kind) sectionName() string {
	return strings.ToLower(string(k))
}

// ParseKind resolves a wire type tag to a record kind
func ParseKind(tag string) (Kind, error) {
	kind := Kind(tag)
	if !kind.Valid() {
		return "", &UnknownVariantError{Tag: tag}
	}
	return kind, nil
}

// Serialize encodes the record as a flat JSON object with the reserved type
// tag attached. The record itself is left untouched.
func (m *Message) Serialize() (string, error) {
	wire := make(map[string]any, len(m.values)+1)
	for key, value := range m.values {
		wire[key] = value
	}
	wire[TypeTagKey] = string(m.kind)

	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("error encoding record: %w", err)
	}

	return string(data), nil
}

// Unserialize parses a wire payload into a plain field mapping. No schema
// validation happens here; pass the result to FromMap.
func Unserialize(raw string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("error parsing wire payload: %w", err)
	}
	return fields, nil
}

// FromMap reconstructs the correct record variant from a field mapping. The
// reserved type tag selects the kind, falling back to defaultKind when the tag
// is absent. Every remaining field is re-run through the full add pipeline
// with the two-phase policy, so an already-canonical payload reconstructs
// without mutating previously-sanitized values.
func FromMap(fields map[string]any, schema *Schema, defaultKind Kind) (*Message, error) {
	var kind Kind

	if tag, present := fields[TypeTagKey]; present {
		text, ok := tag.(string)
		if !ok {
			return nil, &InvalidArgumentError{
				Name:     TypeTagKey,
				Got:      tag,
				Expected: "a string type tag",
			}
		}
		parsed, err := ParseKind(text)
		if err != nil {
			return nil, err
		}
		kind = parsed
	} else if defaultKind != "" {
		if !defaultKind.Valid() {
			return nil, &UnknownVariantError{Tag: string(defaultKind)}
		}
		kind = defaultKind
	} else {
		return nil, &UnknownVariantError{}
	}

	rest := make(map[string]any, len(fields))
	for key, value := range fields {
		if key != TypeTagKey {
			rest[key] = value
		}
	}

	switch kind {
	case KindReport:
		return NewReportFromMap(rest, schema, true)
	case KindEvent:
		return NewEventFromMap(rest, schema)
	default:
		return NewMessageFromMap(rest, schema)
	}
}

// FromWire parses a wire payload and reconstructs the record in one step
func FromWire(raw string, schema *Schema, defaultKind Kind) (*Message, error) {
	fields, err := Unserialize(raw)
	if err != nil {
		return nil, err
	}
	return FromMap(fields, schema, defaultKind)
}

// ToDict renders the record as a plain mapping for presentation or export.
// With hierarchical set, dotted keys expand into nested objects; the flat
// in-memory representation is unaffected.
func (m *Message) ToDict(hierarchical, withType bool) map[string]any {
	out := make(map[string]any, len(m.keys)+1)

	if withType {
		out[TypeTagKey] = string(m.kind)
	}

	for _, key := range m.keys {
		value := m.values[key]
		if !hierarchical {
			out[key] = value
			continue
		}

		parts := strings.Split(key, ".")
		node := out
		for i, part := range parts {
			if i == len(parts)-1 {
				node[part] = value
				break
			}
			child, exists := node[part].(map[string]any)
			if !exists {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
	}

	return out
}

// ToJSON renders the record as JSON, optionally with nested objects
func (m *Message) ToJSON(hierarchical, withType bool) (string, error) {
	data, err := json.Marshal(m.ToDict(hierarchical, withType))
	if err != nil {
		return "", fmt.Errorf("error encoding record: %w", err)
	}
	return string(data), nil
}

// String renders the record in its wire form
func (m *Message) String() string {
	raw, err := m.Serialize()
	if err != nil {
		return fmt.Sprintf("<unserializable %s>", m.kind)
	}
	return raw
}
