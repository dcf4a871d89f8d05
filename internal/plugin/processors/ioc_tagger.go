package processors

import (
	"sort"
	"strings"

	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
)

// IOCTagger annotates events with the kinds of observables they carry. The tag
// list lands in the extra field so downstream consumers can route on it
// without re-scanning every key.
type IOCTagger struct {
	plugin.BasePlugin
}

// NewIOCTagger creates a new IOC tagger plugin
func NewIOCTagger(id string) *IOCTagger {
	return &IOCTagger{
		BasePlugin: plugin.NewBasePlugin(id, "IOC Tagger", model.ProcessorPluginType),
	}
}

// Initialize prepares the tagger for operation
func (p *IOCTagger) Initialize() bool {
	p.SetStatus(model.StatusInitialized)
	return true
}

// Start begins tagger operation
func (p *IOCTagger) Start() bool {
	p.SetStatus(model.StatusRunning)
	return true
}

// Stop halts tagger operation
func (p *IOCTagger) Stop() bool {
	p.SetStatus(model.StatusStopped)
	return true
}

// Process tags every event in the batch with its observable kinds
func (p *IOCTagger) Process(batch *model.Batch) *model.Batch {
	if batch == nil || batch.Size() == 0 || batch.Stream != model.EventStream {
		return batch
	}

	if p.GetStatus() != model.StatusRunning {
		return batch
	}

	for _, event := range batch.Messages {
		kinds := observableKinds(event)
		if len(kinds) == 0 {
			continue
		}

		event.AddOpts("extra", map[string]any{"ioc_types": kinds}, model.AddOptions{Overwrite: true})
	}

	return batch
}

// observableKinds returns the sorted, deduplicated observable kinds present in
// an event, judged by field name
func observableKinds(event *model.Message) []any {
	seen := make(map[string]bool)

	for key := range event.Items() {
		switch {
		case strings.HasSuffix(key, ".ip"):
			seen["ip"] = true
		case strings.HasSuffix(key, ".fqdn"):
			seen["fqdn"] = true
		case strings.HasSuffix(key, ".url"):
			seen["url"] = true
		case strings.HasPrefix(key, "malware.hash"):
			seen["hash"] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	// []any so the tag list survives a wire round trip unchanged
	kinds := make([]any, len(names))
	for i, name := range names {
		kinds[i] = name
	}
	return kinds
}
