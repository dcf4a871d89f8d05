package outputs

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sliink/intelpipe/internal/harmonization"
	"github.com/sliink/intelpipe/internal/model"
	"github.com/stretchr/testify/assert"
)

func testSchema(t *testing.T) *model.Schema {
	t.Helper()
	schema, err := harmonization.DefaultSchema()
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}
	return schema
}

func spamBatch(t *testing.T, schema *model.Schema, addresses ...string) *model.Batch {
	t.Helper()

	batch := model.NewBatch(model.EventStream)
	for _, address := range addresses {
		event, err := model.NewEvent(schema)
		assert.NoError(t, err)
		_, err = event.Add("source.ip", address)
		assert.NoError(t, err)
		_, err = event.Add("classification.type", "spam")
		assert.NoError(t, err)
		batch.AddMessage(event)
	}
	return batch
}

func TestStdoutOutput(t *testing.T) {
	schema := testSchema(t)

	newOutput := func(config map[string]interface{}) (*StdoutOutput, *bytes.Buffer) {
		output := NewStdoutOutput("stdout")
		if config != nil {
			output.Configure(config)
		}
		buffer := &bytes.Buffer{}
		output.writer = buffer
		assert.True(t, output.Initialize())
		assert.True(t, output.Start())
		return output, buffer
	}

	t.Run("Text format prints kind and classification", func(t *testing.T) {
		output, buffer := newOutput(nil)

		assert.True(t, output.Send(spamBatch(t, schema, "192.0.2.1")))

		line := buffer.String()
		assert.Contains(t, line, "[Event]")
		assert.Contains(t, line, "spam")
		assert.Contains(t, line, "192.0.2.1")
	})

	t.Run("Colorize wraps the kind in ANSI codes", func(t *testing.T) {
		output, buffer := newOutput(map[string]interface{}{"colorize": true})

		output.Send(spamBatch(t, schema, "192.0.2.1"))
		assert.Contains(t, buffer.String(), "\033[32mEvent\033[0m")
	})

	t.Run("JSON format emits one wire record per line", func(t *testing.T) {
		output, buffer := newOutput(map[string]interface{}{"format": "json"})

		output.Send(spamBatch(t, schema, "192.0.2.1", "192.0.2.2"))

		lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
		assert.Len(t, lines, 2)

		restored, err := model.FromWire(lines[0], schema, "")
		assert.NoError(t, err)
		assert.Equal(t, model.KindEvent, restored.Kind())
		ip, _ := restored.GetString("source.ip")
		assert.Equal(t, "192.0.2.1", ip)
	})

	t.Run("Validate rejects unknown formats", func(t *testing.T) {
		output := NewStdoutOutput("stdout")
		output.Configure(map[string]interface{}{"format": "xml"})
		assert.True(t, output.Initialize())
		assert.False(t, output.Validate())
	})

	t.Run("Send fails when not running", func(t *testing.T) {
		output := NewStdoutOutput("stdout")
		assert.False(t, output.Send(spamBatch(t, schema, "192.0.2.1")))
		assert.True(t, output.Send(model.NewBatch(model.EventStream)))
	})
}

func TestFileOutput(t *testing.T) {
	schema := testSchema(t)

	t.Run("Records are appended one per line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "events.jsonl")

		output := NewFileOutput("file")
		output.Configure(map[string]interface{}{"path": path})
		assert.True(t, output.Validate())
		assert.True(t, output.Initialize())
		assert.True(t, output.Start())

		assert.True(t, output.Send(spamBatch(t, schema, "192.0.2.1")))
		assert.True(t, output.Send(spamBatch(t, schema, "192.0.2.2")))
		assert.True(t, output.Stop())

		file, err := os.Open(path)
		assert.NoError(t, err)
		defer file.Close()

		var records []*model.Message
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			record, err := model.FromWire(scanner.Text(), schema, "")
			assert.NoError(t, err)
			records = append(records, record)
		}
		assert.NoError(t, scanner.Err())
		assert.Len(t, records, 2)

		ip, _ := records[1].GetString("source.ip")
		assert.Equal(t, "192.0.2.2", ip)
	})

	t.Run("Initialize fails without a path", func(t *testing.T) {
		output := NewFileOutput("file")
		output.Configure(map[string]interface{}{})
		assert.False(t, output.Validate())
		assert.False(t, output.Initialize())
	})

	t.Run("Send fails after Stop", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "events.jsonl")

		output := NewFileOutput("file")
		output.Configure(map[string]interface{}{"path": path})
		assert.True(t, output.Initialize())
		assert.True(t, output.Start())
		assert.True(t, output.Stop())

		assert.False(t, output.Send(spamBatch(t, schema, "192.0.2.1")))
	})
}
