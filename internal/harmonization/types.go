// Package harmonization provides the stock field type implementations used by
// the record schema: sanitizers and validators for IP addresses, domain names,
// URLs, timestamps and the other value shapes the bundled feeds produce.
package harmonization

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var fqdnPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)

// classificationTypes is the closed taxonomy of event classifications
var classificationTypes = map[string]struct{}{
	"backdoor":              {},
	"blacklist":             {},
	"botnet drone":          {},
	"brute-force":           {},
	"c2server":              {},
	"compromised":           {},
	"ddos":                  {},
	"defacement":            {},
	"dga domain":            {},
	"dropzone":              {},
	"exploit":               {},
	"ids alert":             {},
	"malware":               {},
	"malware configuration": {},
	"other":                 {},
	"phishing":              {},
	"proxy":                 {},
	"ransomware":            {},
	"scanner":               {},
	"spam":                  {},
	"test":                  {},
	"tor":                   {},
	"unknown":               {},
	"vulnerable service":    {},
}

// asString converts any raw input to a trimmed string. Reports false for
// values with no sensible textual form.
func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case []byte:
		return strings.TrimSpace(string(v)), true
	case fmt.Stringer:
		return strings.TrimSpace(v.String()), true
	default:
		return "", false
	}
}

// String accepts any non-empty text
type String struct{}

// Sanitize converts the raw value to a trimmed string
func (String) Sanitize(value any) (any, bool) {
	text, ok := asString(value)
	if !ok || text == "" {
		return nil, false
	}
	return text, true
}

// IsValid reports whether the value is a non-empty string
func (String) IsValid(value any) bool {
	text, ok := value.(string)
	return ok && text != ""
}

// LowercaseString accepts non-empty lowercase text
type LowercaseString struct{}

// Sanitize lowercases the raw value
func (LowercaseString) Sanitize(value any) (any, bool) {
	text, ok := asString(value)
	if !ok || text == "" {
		return nil, false
	}
	return strings.ToLower(text), true
}

// IsValid reports whether the value is non-empty lowercase text
func (LowercaseString) IsValid(value any) bool {
	text, ok := value.(string)
	return ok && text != "" && text == strings.ToLower(text)
}

// ClassificationType accepts values from the event classification taxonomy
type ClassificationType struct{}

// Sanitize lowercases the raw value
func (ClassificationType) Sanitize(value any) (any, bool) {
	text, ok := asString(value)
	if !ok || text == "" {
		return nil, false
	}
	return strings.ToLower(text), true
}

// IsValid reports whether the value names a known classification
func (ClassificationType) IsValid(value any) bool {
	text, ok := value.(string)
	if !ok {
		return false
	}
	_, known := classificationTypes[text]
	return known
}

// IPAddress accepts IPv4 and IPv6 addresses in canonical form
type IPAddress struct{}

// Sanitize parses the raw value and returns the canonical address text
func (IPAddress) Sanitize(value any) (any, bool) {
	text, ok := asString(value)
	if !ok {
		return nil, false
	}
	ip := net.ParseIP(text)
	if ip == nil {
		return nil, false
	}
	return ip.String(), true
}

// IsValid reports whether the value parses as an IP address
func (IPAddress) IsValid(value any) bool {
	text, ok := value.(string)
	return ok && net.ParseIP(text) != nil
}

// FQDN accepts fully qualified lowercase domain names
type FQDN struct{}

// Sanitize lowercases the raw value and strips a trailing dot
func (FQDN) Sanitize(value any) (any, bool) {
	text, ok := asString(value)
	if !ok {
		return nil, false
	}
	text = strings.ToLower(strings.TrimSuffix(text, "."))
	if !fqdnPattern.MatchString(text) {
		return nil, false
	}
	return text, true
}

// IsValid reports whether the value is a lowercase FQDN. Plain IP addresses
// are rejected.
func (FQDN) IsValid(value any) bool {
	text, ok := value.(string)
	if !ok || net.ParseIP(text) != nil {
		return false
	}
	return fqdnPattern.MatchString(text)
}

// URL accepts absolute URLs
type URL struct{}

// Sanitize parses the raw value, assuming http for scheme-less input
func (URL) Sanitize(value any) (any, bool) {
	text, ok := asString(value)
	if !ok || text == "" {
		return nil, false
	}
	if !strings.Contains(text, "://") {
		text = "http://" + text
	}
	parsed, err := url.Parse(text)
	if err != nil || parsed.Host == "" {
		return nil, false
	}
	return parsed.String(), true
}

// IsValid reports whether the value is an absolute URL with a host
func (URL) IsValid(value any) bool {
	text, ok := value.(string)
	if !ok {
		return false
	}
	parsed, err := url.Parse(text)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

// dateTimeLayouts are the accepted raw timestamp formats, tried in order
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// DateTime accepts RFC 3339 timestamps in UTC
type DateTime struct{}

// Sanitize parses common timestamp formats and renders UTC RFC 3339
func (DateTime) Sanitize(value any) (any, bool) {
	text, ok := asString(value)
	if !ok || text == "" {
		return nil, false
	}
	for _, layout := range dateTimeLayouts {
		parsed, err := time.Parse(layout, text)
		if err == nil {
			return parsed.UTC().Format(time.RFC3339), true
		}
	}
	return nil, false
}

// IsValid reports whether the value is an RFC 3339 timestamp
func (DateTime) IsValid(value any) bool {
	text, ok := value.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(time.RFC3339, text)
	return err == nil
}

// Integer accepts whole numbers, canonically int64
type Integer struct{}

// Sanitize converts numeric and textual input to int64
func (Integer) Sanitize(value any) (any, bool) {
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
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

// IsValid reports whether the value is an int64
func (Integer) IsValid(value any) bool {
	_, ok := value.(int64)
	return ok
}

// Float accepts floating point numbers, canonically float64
type Float struct{}

// Sanitize converts numeric and textual input to float64
func (Float) Sanitize(value any) (any, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

// IsValid reports whether the value is a float64
func (Float) IsValid(value any) bool {
	_, ok := value.(float64)
	return ok
}

// Accuracy accepts feed accuracy percentages between 0 and 100
type Accuracy struct{}

// Sanitize converts numeric and textual input to a float64 percentage
func (Accuracy) Sanitize(value any) (any, bool) {
	sanitized, ok := Float{}.Sanitize(value)
	if !ok {
		return nil, false
	}
	percent := sanitized.(float64)
	if percent < 0 || percent > 100 {
		return nil, false
	}
	return percent, true
}

// IsValid reports whether the value is a float64 between 0 and 100
func (Accuracy) IsValid(value any) bool {
	percent, ok := value.(float64)
	return ok && percent >= 0 && percent <= 100
}

// Base64 carries opaque payloads as standard base64 text
type Base64 struct{}

// Sanitize encodes the raw bytes of the value
func (Base64) Sanitize(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, false
		}
		return base64.StdEncoding.EncodeToString([]byte(v)), true
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		return base64.StdEncoding.EncodeToString(v), true
	default:
		return nil, false
	}
}

// IsValid reports whether the value decodes as standard base64
func (Base64) IsValid(value any) bool {
	text, ok := value.(string)
	if !ok || text == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(text)
	return err == nil
}

// Decode returns the raw payload behind a canonical Base64 value
func (Base64) Decode(value string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(value)
}

// Boolean accepts true/false values
type Boolean struct{}

// Sanitize converts textual and numeric truth values to bool
func (Boolean) Sanitize(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
		return nil, false
	case float64:
		if v == 0 {
			return false, true
		}
		if v == 1 {
			return true, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// IsValid reports whether the value is a bool
func (Boolean) IsValid(value any) bool {
	_, ok := value.(bool)
	return ok
}

// JSONDict carries free-form structured extensions as a non-empty object
type JSONDict struct{}

// Sanitize accepts an object directly or parses one from JSON text
func (JSONDict) Sanitize(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil || len(parsed) == 0 {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

// IsValid reports whether the value is a non-empty object
func (JSONDict) IsValid(value any) bool {
	object, ok := value.(map[string]any)
	return ok && len(object) > 0
}
