package model

import (
	"strconv"
	"strings"
	"testing"
)

// textType accepts any non-empty trimmed string
type textType struct{}

func (textType) Sanitize(value any) (any, bool) {
	text, ok := value.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return nil, false
	}
	return strings.TrimSpace(text), true
}

func (textType) IsValid(value any) bool {
	text, ok := value.(string)
	return ok && text != "" && text == strings.TrimSpace(text)
}

// lowerType canonicalizes to lowercase and only accepts lowercase
type lowerType struct{}

func (lowerType) Sanitize(value any) (any, bool) {
	text, ok := value.(string)
	if !ok || text == "" {
		return nil, false
	}
	return strings.ToLower(text), true
}

func (lowerType) IsValid(value any) bool {
	text, ok := value.(string)
	return ok && text != "" && text == strings.ToLower(text)
}

// intType canonicalizes whole numbers to int64
type intType struct{}

func (intType) Sanitize(value any) (any, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return nil, false
		}
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

func (intType) IsValid(value any) bool {
	_, ok := value.(int64)
	return ok
}

// dictType accepts non-empty objects
type dictType struct{}

func (dictType) Sanitize(value any) (any, bool) {
	object, ok := value.(map[string]any)
	if !ok || len(object) == 0 {
		return nil, false
	}
	return object, true
}

func (dictType) IsValid(value any) bool {
	object, ok := value.(map[string]any)
	return ok && len(object) > 0
}

func newTestRegistry() *TypeRegistry {
	registry := NewTypeRegistry()
	registry.Register("Text", textType{})
	registry.Register("Lower", lowerType{})
	registry.Register("Int", intType{})
	registry.Register("Dict", dictType{})
	return registry
}

// newTestSchema compiles a small three-section schema covering the provenance
// fields, a few normalized fields and the reserved payload fields
func newTestSchema(t *testing.T) *Schema {
	t.Helper()

	reportSection := map[string]FieldSpec{
		"feed.accuracy":      {Type: "Int"},
		"feed.code":          {Type: "Text"},
		"feed.documentation": {Type: "Text"},
		"feed.name":          {Type: "Text"},
		"feed.provider":      {Type: "Text"},
		"feed.url":           {Type: "Text"},
		"rtir_id":            {Type: "Int"},
		"time.observation":   {Type: "Text"},
		"raw":                {Type: "Text"},
		"extra":              {Type: "Dict"},
	}

	eventSection := map[string]FieldSpec{
		"classification.type": {Type: "Lower"},
		"source.ip":           {Type: "Lower"},
		"source.fqdn":         {Type: "Lower"},
		"source.port":         {Type: "Int"},
		"malware.hash.md5":    {Type: "Text", Regex: `^[A-Fa-f0-9]{32}$`},
		"comment":             {Type: "Text", Length: 16},
	}
	for key, spec := range reportSection {
		eventSection[key] = spec
	}

	defs := map[string]map[string]FieldSpec{
		"message": eventSection,
		"report":  reportSection,
		"event":   eventSection,
	}

	schema, err := NewSchema(defs, newTestRegistry())
	if err != nil {
		t.Fatalf("failed to compile test schema: %v", err)
	}
	return schema
}
