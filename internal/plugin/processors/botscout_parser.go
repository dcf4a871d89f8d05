package processors

import (
	"strings"

	"github.com/sliink/intelpipe/internal/harmonization"
	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
)

// BotscoutParser normalizes BotScout bot-account feeds. Each feed line is
// comma separated: the second column is the reported account, the third the
// reporting IP.
type BotscoutParser struct {
	plugin.BasePlugin
}

// NewBotscoutParser creates a new BotScout parser plugin
func NewBotscoutParser(id string) *BotscoutParser {
	return &BotscoutParser{
		BasePlugin: plugin.NewBasePlugin(id, "BotScout Parser", model.ProcessorPluginType),
	}
}

// Initialize prepares the parser for operation
func (p *BotscoutParser) Initialize() bool {
	p.SetStatus(model.StatusInitialized)
	return true
}

// Start begins parser operation
func (p *BotscoutParser) Start() bool {
	p.SetStatus(model.StatusRunning)
	return true
}

// Stop halts parser operation
func (p *BotscoutParser) Stop() bool {
	p.SetStatus(model.StatusStopped)
	return true
}

// Process turns a report batch into a batch of spam account events
func (p *BotscoutParser) Process(batch *model.Batch) *model.Batch {
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
			if !strings.Contains(line, ",") {
				continue
			}

			columns := strings.Split(line, ",")
			if len(columns) < 3 {
				continue
			}

			event, err := model.NewEventFromReport(report)
			if err != nil {
				continue
			}

			event.AddOpts("source.ip", columns[2], model.AddOptions{Sanitize: true, SkipInvalid: true})
			event.Add("source.account", columns[1])
			event.Add("classification.type", "spam")
			event.Add("raw", line)

			result.AddMessage(event)
		}
	}

	return result
}

// decodeRaw returns the decoded payload behind a report's raw field
func decodeRaw(report *model.Message) ([]byte, bool) {
	encoded, ok := report.GetString("raw")
	if !ok {
		return nil, false
	}

	payload, err := harmonization.Base64{}.Decode(encoded)
	if err != nil {
		return nil, false
	}

	return payload, true
}
