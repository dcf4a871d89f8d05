package model

import (
	"time"

	"github.com/google/uuid"
)

// Batch is a collection of records of the same stream type moving through the
// pipeline together. Each stage owns the batch exclusively until it hands it
// on.
type Batch struct {
	ID         string
	SourceID   string
	Stream     StreamType
	Messages   []*Message
	Timestamp  time.Time
	Attributes map[string]any
}

// NewBatch creates a new empty batch of the specified stream type
func NewBatch(stream StreamType) *Batch {
	return &Batch{
		ID:         uuid.NewString(),
		Stream:     stream,
		Messages:   make([]*Message, 0),
		Timestamp:  time.Now(),
		Attributes: make(map[string]any),
	}
}

// AddMessage adds a record to the batch
func (b *Batch) AddMessage(m *Message) {
	b.Messages = append(b.Messages, m)
}

// Size returns the number of records in the batch
func (b *Batch) Size() int {
	return len(b.Messages)
}

// ToMap converts the batch to a map representation for display
func (b *Batch) ToMap() map[string]any {
	records := make([]map[string]any, len(b.Messages))
	for i, m := range b.Messages {
		records[i] = m.ToDict(false, true)
	}

	return map[string]any{
		"id":         b.ID,
		"source_id":  b.SourceID,
		"stream":     b.Stream,
		"timestamp":  b.Timestamp,
		"records":    records,
		"attributes": b.Attributes,
	}
}
