package processors

import (
	"strings"

	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
)

// CediaParser normalizes CEDIA malicious domain feeds: one domain name per
// line, comment lines starting with '#'.
type CediaParser struct {
	plugin.BasePlugin
}

// NewCediaParser creates a new CEDIA domain parser plugin
func NewCediaParser(id string) *CediaParser {
	return &CediaParser{
		BasePlugin: plugin.NewBasePlugin(id, "CEDIA Domain Parser", model.ProcessorPluginType),
	}
}

// Initialize prepares the parser for operation
func (p *CediaParser) Initialize() bool {
	p.SetStatus(model.StatusInitialized)
	return true
}

// Start begins parser operation
func (p *CediaParser) Start() bool {
	p.SetStatus(model.StatusRunning)
	return true
}

// Stop halts parser operation
func (p *CediaParser) Stop() bool {
	p.SetStatus(model.StatusStopped)
	return true
}

// Process turns a report batch into a batch of malicious domain events
func (p *CediaParser) Process(batch *model.Batch) *model.Batch {
	if batch == nil || batch.Size() == 0 || batch.Stream != model.ReportStream {
		return batch
	}

	if p.GetStatus() != model.StatusRunning {
		return batch
	}

	result := model.NewBatch(model.EventStream)
	result.SourceID = batch.SourceID
	result.Attributes = batch.Attributes

	for _, report := range batch.Messages {
		payload, ok := decodeRaw(report)
		if !ok {
			continue
		}

		for _, line := range strings.Split(string(payload), "\n") {
			domain := strings.TrimSpace(line)
			if domain == "" || strings.HasPrefix(domain, "#") {
				continue
			}

			event, err := model.NewEventFromReport(report)
			if err != nil {
				continue
			}

			if added, _ := event.Add("source.fqdn", domain); !added {
				continue
			}
			event.Add("classification.type", "malware")
			event.Add("raw", line)

			result.AddMessage(event)
		}
	}

	return result
}
