package harmonization

import (
	"github.com/sliink/intelpipe/internal/model"
)

// reportFields are the descriptors shared by reports and the provenance
// fields an event inherits from its report
var reportFields = map[string]model.FieldSpec{
	"feed.accuracy":      {Type: "Accuracy"},
	"feed.code":          {Type: "String", Length: 100},
	"feed.documentation": {Type: "URL"},
	"feed.name":          {Type: "String"},
	"feed.provider":      {Type: "String"},
	"feed.url":           {Type: "URL"},
	"rtir_id":            {Type: "Integer"},
	"time.observation":   {Type: "DateTime"},
	"raw":                {Type: "Base64"},
	"extra":              {Type: "JSONDict"},
}

// eventFields extend the report descriptors with the normalized finding fields
var eventFields = map[string]model.FieldSpec{
	"classification.identifier": {Type: "String"},
	"classification.taxonomy":   {Type: "LowercaseString", Length: 100},
	"classification.type":       {Type: "ClassificationType"},
	"destination.account":       {Type: "String"},
	"destination.fqdn":          {Type: "FQDN"},
	"destination.ip":            {Type: "IPAddress"},
	"destination.port":          {Type: "Integer"},
	"destination.url":           {Type: "URL"},
	"event_description.text":    {Type: "String"},
	"event_description.url":     {Type: "URL"},
	"malware.name":              {Type: "LowercaseString"},
	"malware.hash.md5":          {Type: "String", Regex: `^[A-Fa-f0-9]{32}$`},
	"malware.hash.sha1":         {Type: "String", Regex: `^[A-Fa-f0-9]{40}$`},
	"malware.hash.sha256":       {Type: "String", Regex: `^[A-Fa-f0-9]{64}$`},
	"protocol.application":      {Type: "LowercaseString", Length: 100},
	"protocol.transport":        {Type: "LowercaseString", Length: 11},
	"source.account":            {Type: "String"},
	"source.asn":                {Type: "Integer"},
	"source.fqdn":               {Type: "FQDN"},
	"source.ip":                 {Type: "IPAddress"},
	"source.port":               {Type: "Integer"},
	"source.url":                {Type: "URL"},
	"status":                    {Type: "String"},
	"time.source":               {Type: "DateTime"},
}

// DefaultSchema compiles the stock schema the bundled feeds and plugins use.
// The message section mirrors the event section so base records remain usable.
func DefaultSchema() (*model.Schema, error) {
	event := make(map[string]model.FieldSpec, len(reportFields)+len(eventFields))
	for key, spec := range reportFields {
		event[key] = spec
	}
	for key, spec := range eventFields {
		event[key] = spec
	}

	report := make(map[string]model.FieldSpec, len(reportFields))
	for key, spec := range reportFields {
		report[key] = spec
	}

	defs := map[string]map[string]model.FieldSpec{
		"message": event,
		"report":  report,
		"event":   event,
	}

	return model.NewSchema(defs, DefaultRegistry())
}
