package model

// CoreAPI is an interface for core functions needed by plugins
type CoreAPI interface {
	// ProcessBatch processes a record batch through the pipeline
	ProcessBatch(batch *Batch) *Batch

	// PublishEvent publishes an event to the event bus
	PublishEvent(eventType EventType, sourceID string, data any)
}

// Plugin is the base interface for all plugins
type Plugin interface {
	// Initialize prepares the plugin for operation
	Initialize() bool

	// Start begins plugin operation
	Start() bool

	// Stop halts plugin operation
	Stop() bool

	// GetStatus returns the current plugin status
	GetStatus() ComponentStatus

	// SetStatus updates the plugin status
	SetStatus(status ComponentStatus)

	// Configure applies configuration to the plugin
	Configure(config map[string]any) bool

	// ID returns the plugin's unique identifier
	ID() string

	// Name returns the plugin's human-readable name
	Name() string

	// GetType returns the plugin type
	GetType() PluginType

	// Validate checks if the plugin is properly configured
	Validate() bool

	// RegisterWithCore registers the plugin with the core system
	RegisterWithCore(core CoreAPI) bool
}

// InputPlugin collects raw data and turns it into report batches
type InputPlugin interface {
	Plugin

	// Collect gathers reports from the source
	Collect() []*Batch
}

// ProcessorPlugin transforms record batches
type ProcessorPlugin interface {
	Plugin

	// Process transforms a record batch
	Process(batch *Batch) *Batch
}

// OutputPlugin exports record batches to destinations
type OutputPlugin interface {
	Plugin

	// Send exports a record batch
	Send(batch *Batch) bool
}
