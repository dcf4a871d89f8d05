package model

import "time"

// ComponentStatus represents the current status of a component
type ComponentStatus string

const (
	// StatusUninitialized indicates the component has not been initialized
	StatusUninitialized ComponentStatus = "UNINITIALIZED"
	// StatusInitialized indicates the component has been initialized but not started
	StatusInitialized ComponentStatus = "INITIALIZED"
	// StatusRunning indicates the component is currently running
	StatusRunning ComponentStatus = "RUNNING"
	// StatusStopped indicates the component has been stopped
	StatusStopped ComponentStatus = "STOPPED"
	// StatusError indicates the component is in an error state
	StatusError ComponentStatus = "ERROR"
)

// PluginType represents the type of plugin
type PluginType string

const (
	// InputPluginType represents plugins that collect raw data into reports
	InputPluginType PluginType = "INPUT"
	// ProcessorPluginType represents plugins that transform records
	ProcessorPluginType PluginType = "PROCESSOR"
	// OutputPluginType represents plugins that export records
	OutputPluginType PluginType = "OUTPUT"
)

// StreamType represents the kind of records a batch carries
type StreamType string

const (
	// ReportStream carries raw intake reports
	ReportStream StreamType = "REPORT"
	// EventStream carries normalized findings
	EventStream StreamType = "EVENT"
)

// EventType represents the type of system event
type EventType string

const (
	// EventComponentStatusChange indicates a component status has changed
	EventComponentStatusChange EventType = "COMPONENT_STATUS_CHANGE"
	// EventConfigChange indicates a configuration has changed
	EventConfigChange EventType = "CONFIG_CHANGE"
	// EventDataReceived indicates a batch has been received
	EventDataReceived EventType = "DATA_RECEIVED"
	// EventDataProcessed indicates a batch has been processed
	EventDataProcessed EventType = "DATA_PROCESSED"
	// EventDataSent indicates a batch has been sent
	EventDataSent EventType = "DATA_SENT"
	// EventError indicates an error has occurred
	EventError EventType = "ERROR"
)

// HealthStatus represents the health status of the system or a component
type HealthStatus struct {
	Status     ComponentStatus         `json:"status"`
	Timestamp  time.Time               `json:"timestamp"`
	Message    string                  `json:"message,omitempty"`
	Details    map[string]any          `json:"details,omitempty"`
	Components map[string]HealthStatus `json:"components,omitempty"`
}

// BufferStatus represents the status of a buffer
type BufferStatus struct {
	BufferID   string    `json:"buffer_id"`
	QueueSize  int       `json:"queue_size"`
	TotalItems int       `json:"total_items"`
	IsFull     bool      `json:"is_full"`
	LastUpdate time.Time `json:"last_update"`
}
