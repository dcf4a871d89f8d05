package model

import "sync"

// FieldType is the capability contract behind every schema type name.
// Sanitize normalizes a raw value into the canonical form for the type and
// reports false when the input cannot be normalized. IsValid checks whether an
// already-canonical value conforms to the type.
type FieldType interface {
	Sanitize(value any) (any, bool)
	IsValid(value any) bool
}

// TypeRegistry resolves schema type names to field type implementations.
// Schemas resolve every descriptor against the registry once at load time, so
// no name lookup happens on the validation path.
type TypeRegistry struct {
	types map[string]FieldType
	mutex sync.RWMutex
}

// NewTypeRegistry creates an empty type registry
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types: make(map[string]FieldType),
	}
}

// Register adds a field type under the given name, replacing any previous
// registration
func (r *TypeRegistry) Register(name string, fieldType FieldType) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.types[name] = fieldType
}

// Lookup retrieves a field type by name
func (r *TypeRegistry) Lookup(name string) (FieldType, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	fieldType, exists := r.types[name]
	return fieldType, exists
}

// Names returns all registered type names
func (r *TypeRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}

	return names
}
