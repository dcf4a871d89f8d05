package outputs

import (
	"fmt"
	"io"
	"os"

	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
)

// StdoutOutput writes records to standard output
type StdoutOutput struct {
	plugin.BasePlugin
	colorize bool
	format   string
	writer   io.Writer
}

// NewStdoutOutput creates a new stdout output plugin
func NewStdoutOutput(id string) *StdoutOutput {
	return &StdoutOutput{
		BasePlugin: plugin.NewBasePlugin(id, "Stdout Output", model.OutputPluginType),
		colorize:   false,
		format:     "text",
		writer:     os.Stdout,
	}
}

// Initialize prepares the stdout output for operation
func (s *StdoutOutput) Initialize() bool {
	// Get configuration
	if colorize, ok := s.Config["colorize"].(bool); ok {
		s.colorize = colorize
	}

	if format, ok := s.Config["format"].(string); ok {
		s.format = format
	}

	s.SetStatus(model.StatusInitialized)
	return true
}

// Start begins stdout output operation
func (s *StdoutOutput) Start() bool {
	s.SetStatus(model.StatusRunning)
	return true
}

// Stop halts stdout output operation
func (s *StdoutOutput) Stop() bool {
	s.SetStatus(model.StatusStopped)
	return true
}

// Validate checks if the stdout output is properly configured
func (s *StdoutOutput) Validate() bool {
	return s.format == "" || s.format == "text" || s.format == "json"
}

// Send exports a record batch to stdout
func (s *StdoutOutput) Send(batch *model.Batch) bool {
	if batch == nil || batch.Size() == 0 {
		return true
	}

	if s.GetStatus() != model.StatusRunning {
		return false
	}

	// Output each record
	for _, record := range batch.Messages {
		if s.format == "json" {
			s.outputJSON(record)
		} else {
			s.outputText(record)
		}
	}

	return true
}

// outputJSON prints a record in its wire form, one record per line
func (s *StdoutOutput) outputJSON(record *model.Message) {
	raw, err := record.Serialize()
	if err != nil {
		return
	}

	fmt.Fprintln(s.writer, raw)
}

// outputText prints a record as a readable kind/classification/fields line
func (s *StdoutOutput) outputText(record *model.Message) {
	kind := string(record.Kind())
	if s.colorize {
		switch record.Kind() {
		case model.KindEvent:
			kind = "\033[32m" + kind + "\033[0m" // Green
		case model.KindReport:
			kind = "\033[36m" + kind + "\033[0m" // Cyan
		}
	}

	classification, ok := record.GetString("classification.type")
	if !ok {
		classification = "unclassified"
	}

	fmt.Fprintf(s.writer, "[%s] %s: %s\n", kind, classification, record)
}
