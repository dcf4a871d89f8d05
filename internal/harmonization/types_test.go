package harmonization

import (
	"testing"

	"github.com/sliink/intelpipe/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Run("Sanitize trims whitespace", func(t *testing.T) {
		value, ok := String{}.Sanitize("  text  ")
		assert.True(t, ok)
		assert.Equal(t, "text", value)
	})

	t.Run("Sanitize rejects empty input", func(t *testing.T) {
		_, ok := String{}.Sanitize("   ")
		assert.False(t, ok)

		_, ok = String{}.Sanitize(struct{}{})
		assert.False(t, ok)
	})

	t.Run("IsValid accepts non-empty strings", func(t *testing.T) {
		assert.True(t, String{}.IsValid("text"))
		assert.False(t, String{}.IsValid(""))
		assert.False(t, String{}.IsValid(42))
	})
}

func TestLowercaseString(t *testing.T) {
	value, ok := LowercaseString{}.Sanitize("MiXeD")
	assert.True(t, ok)
	assert.Equal(t, "mixed", value)

	assert.True(t, LowercaseString{}.IsValid("mixed"))
	assert.False(t, LowercaseString{}.IsValid("MiXeD"))
}

func TestClassificationType(t *testing.T) {
	t.Run("Sanitize lowercases", func(t *testing.T) {
		value, ok := ClassificationType{}.Sanitize("Phishing")
		assert.True(t, ok)
		assert.Equal(t, "phishing", value)
	})

	t.Run("IsValid accepts only taxonomy entries", func(t *testing.T) {
		for _, name := range []string{"spam", "malware", "phishing", "c2server", "unknown"} {
			assert.True(t, ClassificationType{}.IsValid(name), name)
		}
		assert.False(t, ClassificationType{}.IsValid("gossip"))
	})
}

func TestIPAddress(t *testing.T) {
	t.Run("Sanitize canonicalizes addresses", func(t *testing.T) {
		value, ok := IPAddress{}.Sanitize("192.0.2.1")
		assert.True(t, ok)
		assert.Equal(t, "192.0.2.1", value)

		value, ok = IPAddress{}.Sanitize("2001:DB8:0:0:0:0:0:1")
		assert.True(t, ok)
		assert.Equal(t, "2001:db8::1", value)
	})

	t.Run("Sanitize rejects non-addresses", func(t *testing.T) {
		_, ok := IPAddress{}.Sanitize("example.com")
		assert.False(t, ok)
	})

	t.Run("IsValid checks canonical addresses", func(t *testing.T) {
		assert.True(t, IPAddress{}.IsValid("192.0.2.1"))
		assert.False(t, IPAddress{}.IsValid("300.0.0.1"))
	})
}

func TestFQDN(t *testing.T) {
	t.Run("Sanitize lowercases and strips trailing dot", func(t *testing.T) {
		value, ok := FQDN{}.Sanitize("Example.COM.")
		assert.True(t, ok)
		assert.Equal(t, "example.com", value)
	})

	t.Run("Sanitize rejects bare labels", func(t *testing.T) {
		_, ok := FQDN{}.Sanitize("localhost")
		assert.False(t, ok)
	})

	t.Run("IsValid rejects IP addresses", func(t *testing.T) {
		assert.True(t, FQDN{}.IsValid("sub.example.com"))
		assert.False(t, FQDN{}.IsValid("192.0.2.1"))
	})
}

func TestURL(t *testing.T) {
	t.Run("Sanitize assumes http for scheme-less input", func(t *testing.T) {
		value, ok := URL{}.Sanitize("example.com/path")
		assert.True(t, ok)
		assert.Equal(t, "http://example.com/path", value)
	})

	t.Run("Sanitize keeps explicit schemes", func(t *testing.T) {
		value, ok := URL{}.Sanitize("https://example.com/feed.csv")
		assert.True(t, ok)
		assert.Equal(t, "https://example.com/feed.csv", value)
	})

	t.Run("IsValid requires scheme and host", func(t *testing.T) {
		assert.True(t, URL{}.IsValid("https://example.com"))
		assert.False(t, URL{}.IsValid("/relative/path"))
	})
}

func TestDateTime(t *testing.T) {
	t.Run("Sanitize renders UTC RFC 3339", func(t *testing.T) {
		value, ok := DateTime{}.Sanitize("2026-01-02 03:04:05")
		assert.True(t, ok)
		assert.Equal(t, "2026-01-02T03:04:05Z", value)

		value, ok = DateTime{}.Sanitize("2026-01-02T03:04:05+02:00")
		assert.True(t, ok)
		assert.Equal(t, "2026-01-02T01:04:05Z", value)
	})

	t.Run("Sanitize accepts bare dates", func(t *testing.T) {
		value, ok := DateTime{}.Sanitize("2026-01-02")
		assert.True(t, ok)
		assert.Equal(t, "2026-01-02T00:00:00Z", value)
	})

	t.Run("Sanitize rejects unparseable input", func(t *testing.T) {
		_, ok := DateTime{}.Sanitize("yesterday")
		assert.False(t, ok)
	})

	t.Run("IsValid checks RFC 3339", func(t *testing.T) {
		assert.True(t, DateTime{}.IsValid("2026-01-02T03:04:05Z"))
		assert.False(t, DateTime{}.IsValid("2026-01-02 03:04:05"))
	})
}

func TestInteger(t *testing.T) {
	t.Run("Sanitize canonicalizes to int64", func(t *testing.T) {
		value, ok := Integer{}.Sanitize(42)
		assert.True(t, ok)
		assert.Equal(t, int64(42), value)

		value, ok = Integer{}.Sanitize(float64(42))
		assert.True(t, ok)
		assert.Equal(t, int64(42), value)

		value, ok = Integer{}.Sanitize(" 42 ")
		assert.True(t, ok)
		assert.Equal(t, int64(42), value)
	})

	t.Run("Sanitize rejects fractional input", func(t *testing.T) {
		_, ok := Integer{}.Sanitize(42.5)
		assert.False(t, ok)
	})

	t.Run("IsValid accepts only int64", func(t *testing.T) {
		assert.True(t, Integer{}.IsValid(int64(42)))
		assert.False(t, Integer{}.IsValid(42))
		assert.False(t, Integer{}.IsValid(float64(42)))
	})
}

func TestFloatAndAccuracy(t *testing.T) {
	t.Run("Float sanitizes numeric and textual input", func(t *testing.T) {
		value, ok := Float{}.Sanitize("0.5")
		assert.True(t, ok)
		assert.Equal(t, 0.5, value)

		value, ok = Float{}.Sanitize(3)
		assert.True(t, ok)
		assert.Equal(t, 3.0, value)
	})

	t.Run("Accuracy bounds the percentage", func(t *testing.T) {
		value, ok := Accuracy{}.Sanitize("90")
		assert.True(t, ok)
		assert.Equal(t, 90.0, value)

		_, ok = Accuracy{}.Sanitize(101)
		assert.False(t, ok)
		_, ok = Accuracy{}.Sanitize(-1)
		assert.False(t, ok)
	})

	t.Run("Accuracy validates the range", func(t *testing.T) {
		assert.True(t, Accuracy{}.IsValid(100.0))
		assert.False(t, Accuracy{}.IsValid(100.5))
	})
}

func TestBase64(t *testing.T) {
	t.Run("Sanitize encodes raw payloads", func(t *testing.T) {
		value, ok := Base64{}.Sanitize("payload")
		assert.True(t, ok)
		assert.Equal(t, "cGF5bG9hZA==", value)

		value, ok = Base64{}.Sanitize([]byte("payload"))
		assert.True(t, ok)
		assert.Equal(t, "cGF5bG9hZA==", value)
	})

	t.Run("IsValid checks decodability", func(t *testing.T) {
		assert.True(t, Base64{}.IsValid("cGF5bG9hZA=="))
		assert.False(t, Base64{}.IsValid("not base64!"))
	})

	t.Run("Decode returns the payload", func(t *testing.T) {
		payload, err := Base64{}.Decode("cGF5bG9hZA==")
		assert.NoError(t, err)
		assert.Equal(t, []byte("payload"), payload)
	})
}

func TestBoolean(t *testing.T) {
	truthy := []any{true, "true", "Yes", "1", float64(1)}
	for _, value := range truthy {
		sanitized, ok := Boolean{}.Sanitize(value)
		assert.True(t, ok)
		assert.Equal(t, true, sanitized)
	}

	falsy := []any{false, "false", "no", "0", float64(0)}
	for _, value := range falsy {
		sanitized, ok := Boolean{}.Sanitize(value)
		assert.True(t, ok)
		assert.Equal(t, false, sanitized)
	}

	_, ok := Boolean{}.Sanitize("maybe")
	assert.False(t, ok)
}

func TestJSONDict(t *testing.T) {
	t.Run("Sanitize accepts objects and JSON text", func(t *testing.T) {
		value, ok := JSONDict{}.Sanitize(map[string]any{"key": "value"})
		assert.True(t, ok)
		assert.Equal(t, map[string]any{"key": "value"}, value)

		value, ok = JSONDict{}.Sanitize(`{"key": "value"}`)
		assert.True(t, ok)
		assert.Equal(t, map[string]any{"key": "value"}, value)
	})

	t.Run("Sanitize rejects empty objects", func(t *testing.T) {
		_, ok := JSONDict{}.Sanitize(map[string]any{})
		assert.False(t, ok)

		_, ok = JSONDict{}.Sanitize("[]")
		assert.False(t, ok)
	})
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	expected := []string{
		"String", "LowercaseString", "ClassificationType", "IPAddress", "FQDN",
		"URL", "DateTime", "Integer", "Float", "Accuracy", "Base64", "Boolean",
		"JSONDict",
	}
	for _, name := range expected {
		_, exists := registry.Lookup(name)
		assert.True(t, exists, name)
	}
}

func TestDefaultSchema(t *testing.T) {
	schema, err := DefaultSchema()
	assert.NoError(t, err)

	t.Run("Report section holds intake fields only", func(t *testing.T) {
		section, exists := schema.Section(model.KindReport)
		assert.True(t, exists)
		assert.Contains(t, section, "raw")
		assert.Contains(t, section, "feed.name")
		assert.NotContains(t, section, "source.ip")
	})

	t.Run("Event section extends the report fields", func(t *testing.T) {
		section, exists := schema.Section(model.KindEvent)
		assert.True(t, exists)
		assert.Contains(t, section, "source.ip")
		assert.Contains(t, section, "classification.type")
		assert.Contains(t, section, "feed.name")
	})

	t.Run("End to end field pipeline", func(t *testing.T) {
		event, err := model.NewEvent(schema)
		assert.NoError(t, err)

		added, err := event.Add("source.ip", "192.0.2.1")
		assert.NoError(t, err)
		assert.True(t, added)

		added, err = event.Add("classification.type", "Phishing")
		assert.NoError(t, err)
		assert.True(t, added)

		value, _ := event.Get("classification.type")
		assert.Equal(t, "phishing", value)

		_, err = event.Add("malware.hash.md5", "tooshort")
		assert.Error(t, err)
	})
}
