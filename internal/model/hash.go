package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// hashSeparator delimits keys and values in the hash stream
const hashSeparator = byte(0xC0)

// FilterMode selects how HashOptions.FilterKeys is interpreted
type FilterMode string

const (
	// FilterBlacklist excludes the listed keys from the hash
	FilterBlacklist FilterMode = "blacklist"
	// FilterWhitelist excludes every key not listed
	FilterWhitelist FilterMode = "whitelist"
)

// HashOptions controls which fields contribute to the canonical hash
type HashOptions struct {
	FilterKeys []string
	FilterMode FilterMode // defaults to FilterBlacklist
}

// Hash returns the canonical content hash over all fields except the
// observation time
func (m *Message) Hash() (string, error) {
	return m.HashOpts(HashOptions{})
}

// HashOpts returns a SHA-256 digest of the record as lowercase hex. The digest
// is deterministic regardless of field insertion order: key/value pairs are
// fed in lexicographic key order, each key and value followed by a fixed
// separator byte. The observation time is always excluded; FilterKeys narrows
// the set further per FilterMode.
func (m *Message) HashOpts(opts HashOptions) (string, error) {
	mode := opts.FilterMode
	if mode == "" {
		mode = FilterBlacklist
	}
	if mode != FilterBlacklist && mode != FilterWhitelist {
		return "", &InvalidArgumentError{
			Name:     "filter_mode",
			Got:      string(opts.FilterMode),
			Expected: `"whitelist" or "blacklist"`,
		}
	}

	filter := make(map[string]struct{}, len(opts.FilterKeys))
	for _, key := range opts.FilterKeys {
		filter[key] = struct{}{}
	}

	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	sort.Strings(keys)

	digest := sha256.New()
	separator := []byte{hashSeparator}

	for _, key := range keys {
		if key == ObservationTimeKey {
			continue
		}

		_, listed := filter[key]
		if mode == FilterBlacklist && listed {
			continue
		}
		if mode == FilterWhitelist && !listed {
			continue
		}

		digest.Write([]byte(key))
		digest.Write(separator)
		digest.Write([]byte(ValueText(m.values[key])))
		digest.Write(separator)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// ValueText returns the canonical textual representation of a value: strings
// verbatim, everything else its compact JSON encoding. JSON object keys are
// emitted sorted, so the representation is stable, unambiguous and
// round-trips to the same value.
func ValueText(value any) string {
	if text, ok := value.(string); ok {
		return text
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}
