package harmonization

import (
	"github.com/sliink/intelpipe/internal/model"
)

// DefaultRegistry returns a type registry populated with every stock field
// type. Schema descriptors reference these by name.
func DefaultRegistry() *model.TypeRegistry {
	registry := model.NewTypeRegistry()

	registry.Register("String", String{})
	registry.Register("LowercaseString", LowercaseString{})
	registry.Register("ClassificationType", ClassificationType{})
	registry.Register("IPAddress", IPAddress{})
	registry.Register("FQDN", FQDN{})
	registry.Register("URL", URL{})
	registry.Register("DateTime", DateTime{})
	registry.Register("Integer", Integer{})
	registry.Register("Float", Float{})
	registry.Register("Accuracy", Accuracy{})
	registry.Register("Base64", Base64{})
	registry.Register("Boolean", Boolean{})
	registry.Register("JSONDict", JSONDict{})

	return registry
}
