package model

import (
	"iter"
	"reflect"
	"strings"
	"time"
)

const (
	// TypeTagKey is the reserved wire key that carries the record kind. It is
	// only ever present in the serialized form, never in the container itself.
	TypeTagKey = "__type"

	// ObservationTimeKey is stamped on new reports and is always excluded
	// from the canonical hash.
	ObservationTimeKey = "time.observation"
)

// provenanceKeys is the fixed allow-list of fields copied from a Report into
// an Event derived from it. Nothing else carries over.
var provenanceKeys = []string{
	"feed.accuracy",
	"feed.code",
	"feed.documentation",
	"feed.name",
	"feed.provider",
	"feed.url",
	"rtir_id",
	ObservationTimeKey,
}

// Message is a schema-validated, insertion-ordered key/value record. It is the
// common container behind the Report and Event kinds: every stored value has
// passed the sanitize/validate pipeline of its field descriptor at write time.
type Message struct {
	kind    Kind
	schema  *Schema
	section Section
	keys    []string
	values  map[string]any
}

// AddOptions controls a single add operation
type AddOptions struct {
	// Sanitize runs the field type sanitizer before validation
	Sanitize bool
	// Overwrite allows replacing an existing value; without it a second add
	// for the same key fails with KeyConflictError
	Overwrite bool
	// Ignore lists values that are silently skipped without being stored
	Ignore []any
	// SkipInvalid returns false instead of an InvalidValueError when the
	// value fails sanitization or validation
	SkipInvalid bool
}

// DefaultAddOptions returns the default add behavior: sanitize on, no
// overwrite, errors reported for invalid values
func DefaultAddOptions() AddOptions {
	return AddOptions{Sanitize: true}
}

func newMessage(kind Kind, schema *Schema) (*Message, error) {
	section, exists := schema.Section(kind)
	if !exists {
		return nil, &InvalidArgumentError{
			Name:     "schema",
			Got:      string(kind),
			Expected: "a schema containing a section for this kind",
		}
	}

	return &Message{
		kind:    kind,
		schema:  schema,
		section: section,
		values:  make(map[string]any),
	}, nil
}

// NewMessage creates an empty base record bound to the schema's message section
func NewMessage(schema *Schema) (*Message, error) {
	return newMessage(KindMessage, schema)
}

// NewMessageFromMap creates a base record populated from a plain field mapping
func NewMessageFromMap(fields map[string]any, schema *Schema) (*Message, error) {
	m, err := newMessage(KindMessage, schema)
	if err != nil {
		return nil, err
	}

	if err := m.populate(fields); err != nil {
		return nil, err
	}

	return m, nil
}

// NewReport creates an empty report and stamps the observation time
func NewReport(schema *Schema) (*Message, error) {
	return NewReportFromMap(nil, schema, false)
}

// NewReportFromMap creates a report populated from a plain field mapping.
// Unless fromWire is set, an observation timestamp is stamped if absent; the
// generated value is already canonical, so sanitization is skipped for it.
func NewReportFromMap(fields map[string]any, schema *Schema, fromWire bool) (*Message, error) {
	m, err := newMessage(KindReport, schema)
	if err != nil {
		return nil, err
	}

	if err := m.populate(fields); err != nil {
		return nil, err
	}

	if !fromWire && !m.Contains(ObservationTimeKey) {
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := m.AddOpts(ObservationTimeKey, now, AddOptions{}); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewEvent creates an empty event
func NewEvent(schema *Schema) (*Message, error) {
	return newMessage(KindEvent, schema)
}

// NewEventFromMap creates an event populated from a plain field mapping
func NewEventFromMap(fields map[string]any, schema *Schema) (*Message, error) {
	m, err := newMessage(KindEvent, schema)
	if err != nil {
		return nil, err
	}

	if err := m.populate(fields); err != nil {
		return nil, err
	}

	return m, nil
}

// NewEventFromReport derives an event from a report. Only the fixed provenance
// allow-list (feed metadata, ticket id, observation time) is copied over,
// verbatim and without resanitization; every other report field is discarded.
func NewEventFromReport(report *Message) (*Message, error) {
	m, err := newMessage(KindEvent, report.schema)
	if err != nil {
		return nil, err
	}

	for _, key := range provenanceKeys {
		value, exists := report.Get(key)
		if !exists {
			continue
		}
		if _, err := m.AddOpts(key, value, AddOptions{}); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// populate fills the record from a mapping using the two-phase policy: an
// unsanitized strict add first, so already-canonical values pass untouched,
// then a sanitized add for raw values.
func (m *Message) populate(fields map[string]any) error {
	for key, value := range fields {
		added, err := m.AddOpts(key, value, AddOptions{SkipInvalid: true})
		if err != nil {
			return err
		}
		if !added {
			if _, err := m.AddOpts(key, value, AddOptions{Sanitize: true}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Kind returns the record's variant
func (m *Message) Kind() Kind {
	return m.kind
}

// Schema returns the schema the record validates against
func (m *Message) Schema() *Schema {
	return m.schema
}

// Add stores a value for the key with default options: sanitize first, no
// overwrite, invalid values reported as errors. Returns true when a value was
// actually stored; empty-sentinel values ("", "-", "N/A", nil) are never
// stored and report false.
func (m *Message) Add(key string, value any) (bool, error) {
	return m.AddOpts(key, value, DefaultAddOptions())
}

// AddOpts stores a value for the key after running it through the sanitize and
// validate pipeline of the key's field descriptor
func (m *Message) AddOpts(key string, value any, opts AddOptions) (bool, error) {
	exists := m.Contains(key)

	if !opts.Overwrite && exists {
		return false, &KeyConflictError{Key: key}
	}

	if isEmptySentinel(value) {
		// An empty value with overwrite removes the key instead
		if opts.Overwrite && exists {
			m.Remove(key)
		}
		return false, nil
	}

	field, known := m.section[key]
	if !known {
		return false, &UnknownKeyError{Key: key}
	}

	for _, ignored := range opts.Ignore {
		if reflect.DeepEqual(value, ignored) {
			return false, nil
		}
	}

	if opts.Sanitize {
		sanitized, ok := field.Sanitize(value)
		if !ok {
			if opts.SkipInvalid {
				return false, nil
			}
			return false, &InvalidValueError{Key: key, Value: value, Reason: "could not be sanitized"}
		}
		value = sanitized
	}

	valid, reason := field.Validate(value)
	if !valid {
		if opts.SkipInvalid {
			return false, nil
		}
		return false, &InvalidValueError{Key: key, Value: value, Reason: reason}
	}

	m.set(key, value)
	return true, nil
}

// IsValid dry-runs the add pipeline for a key/value pair without mutating the
// record. Invalid values report false; only an unknown key is an error.
func (m *Message) IsValid(key string, value any) (bool, error) {
	return m.IsValidOpts(key, value, true)
}

// IsValidOpts is IsValid with explicit control over sanitization
func (m *Message) IsValidOpts(key string, value any, sanitize bool) (bool, error) {
	field, known := m.section[key]
	if !known {
		return false, &UnknownKeyError{Key: key}
	}

	if isEmptySentinel(value) {
		return false, nil
	}

	if sanitize {
		sanitized, ok := field.Sanitize(value)
		if !ok {
			return false, nil
		}
		value = sanitized
	}

	valid, _ := field.Validate(value)
	return valid, nil
}

// Update merges a mapping into the record with overwrite allowed, using the
// two-phase unsanitized-then-sanitized policy so already-canonical values are
// not re-sanitized
func (m *Message) Update(other map[string]any) error {
	for key, value := range other {
		added, err := m.AddOpts(key, value, AddOptions{Overwrite: true, SkipInvalid: true})
		if err != nil {
			return err
		}
		if !added {
			if _, err := m.AddOpts(key, value, AddOptions{Sanitize: true, Overwrite: true}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Change replaces the value of a key that must already exist
func (m *Message) Change(key string, value any) (bool, error) {
	return m.ChangeOpts(key, value, true)
}

// ChangeOpts is Change with explicit control over sanitization
func (m *Message) ChangeOpts(key string, value any, sanitize bool) (bool, error) {
	if !m.Contains(key) {
		return false, &KeyNotFoundError{Key: key}
	}
	return m.AddOpts(key, value, AddOptions{Sanitize: sanitize, Overwrite: true})
}

// Get retrieves a stored value
func (m *Message) Get(key string) (any, bool) {
	value, exists := m.values[key]
	return value, exists
}

// GetString retrieves a stored value as a string. Non-string values report
// false.
func (m *Message) GetString(key string) (string, bool) {
	value, exists := m.values[key]
	if !exists {
		return "", false
	}
	text, ok := value.(string)
	return text, ok
}

// Contains reports whether the key is present
func (m *Message) Contains(key string) bool {
	_, exists := m.values[key]
	return exists
}

// Remove deletes a key from the record
func (m *Message) Remove(key string) bool {
	if !m.Contains(key) {
		return false
	}

	delete(m.values, key)
	for i, existing := range m.keys {
		if existing == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored fields
func (m *Message) Len() int {
	return len(m.keys)
}

// Keys returns the field names in insertion order
func (m *Message) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Items iterates over all key/value pairs in insertion order. The sequence is
// restartable.
func (m *Message) Items() iter.Seq2[string, any] {
	return m.FindItems("")
}

// FindItems iterates over the key/value pairs whose key starts with the given
// prefix, in insertion order
func (m *Message) FindItems(prefix string) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, key := range m.keys {
			if strings.HasPrefix(key, prefix) {
				if !yield(key, m.values[key]) {
					return
				}
			}
		}
	}
}

// Copy produces a new record of the same kind with an identical field set.
// A report copy does not invent an observation time the original never had:
// one stamped as a side effect of reconstruction is stripped again.
func (m *Message) Copy() (*Message, error) {
	dup, err := newMessage(m.kind, m.schema)
	if err != nil {
		return nil, err
	}

	for _, key := range m.keys {
		added, err := dup.AddOpts(key, m.values[key], AddOptions{SkipInvalid: true})
		if err != nil {
			return nil, err
		}
		if !added {
			if _, err := dup.AddOpts(key, m.values[key], AddOptions{Sanitize: true}); err != nil {
				return nil, err
			}
		}
	}

	if m.kind == KindReport && !m.Contains(ObservationTimeKey) {
		dup.Remove(ObservationTimeKey)
	}

	return dup, nil
}

// DeepCopy produces a fully independent record by round-tripping through the
// wire codec, guaranteeing no shared mutable state with the original
func (m *Message) DeepCopy() (*Message, error) {
	raw, err := m.Serialize()
	if err != nil {
		return nil, err
	}

	fields, err := Unserialize(raw)
	if err != nil {
		return nil, err
	}

	return FromMap(fields, m.schema, "")
}

// Equal reports whether two records have the same kind, key set and values
func (m *Message) Equal(other *Message) bool {
	if other == nil || m.kind != other.kind || len(m.values) != len(other.values) {
		return false
	}
	for key, value := range m.values {
		otherValue, exists := other.values[key]
		if !exists || !reflect.DeepEqual(value, otherValue) {
			return false
		}
	}
	return true
}

func (m *Message) set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// isEmptySentinel reports whether a value must never be stored
func isEmptySentinel(value any) bool {
	if value == nil {
		return true
	}
	if text, ok := value.(string); ok {
		return text == "" || text == "-" || text == "N/A"
	}
	return false
}
