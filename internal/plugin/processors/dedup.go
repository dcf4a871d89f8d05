package processors

import (
	"container/list"
	"sync"
	"time"

	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
)

// DedupProcessor drops events whose canonical content hash was already seen
// within a TTL window. Hashes are held in a size-bounded LRU cache, so memory
// stays flat on long-running feeds.
type DedupProcessor struct {
	plugin.BasePlugin
	ttl        time.Duration
	maxEntries int
	hashOpts   model.HashOptions
	entries    map[string]*list.Element
	order      *list.List
	mutex      sync.Mutex
}

type dedupEntry struct {
	hash string
	seen time.Time
}

// NewDedupProcessor creates a new deduplication plugin
func NewDedupProcessor(id string) *DedupProcessor {
	return &DedupProcessor{
		BasePlugin: plugin.NewBasePlugin(id, "Deduplicator", model.ProcessorPluginType),
		ttl:        time.Hour,
		maxEntries: 100000,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Initialize prepares the deduplicator for operation
func (p *DedupProcessor) Initialize() bool {
	if seconds, ok := p.Config["ttl_seconds"].(float64); ok && seconds > 0 {
		p.ttl = time.Duration(seconds * float64(time.Second))
	}

	if maxEntries, ok := p.Config["max_entries"].(float64); ok && maxEntries > 0 {
		p.maxEntries = int(maxEntries)
	}

	// The raw field differs per source line even for identical observables, so
	// it is left out of the identity hash by default
	p.hashOpts = model.HashOptions{FilterKeys: []string{"raw"}}

	if keys, ok := p.Config["filter_keys"].([]interface{}); ok {
		p.hashOpts.FilterKeys = nil
		for _, k := range keys {
			if key, ok := k.(string); ok {
				p.hashOpts.FilterKeys = append(p.hashOpts.FilterKeys, key)
			}
		}
	}

	if mode, ok := p.Config["filter_mode"].(string); ok && mode != "" {
		p.hashOpts.FilterMode = model.FilterMode(mode)
	}

	p.SetStatus(model.StatusInitialized)
	return true
}

// Start begins deduplicator operation
func (p *DedupProcessor) Start() bool {
	p.SetStatus(model.StatusRunning)
	return true
}

// Stop halts deduplicator operation and clears the cache
func (p *DedupProcessor) Stop() bool {
	p.mutex.Lock()
	p.entries = make(map[string]*list.Element)
	p.order = list.New()
	p.mutex.Unlock()

	p.SetStatus(model.StatusStopped)
	return true
}

// Process filters out events already seen within the TTL window
func (p *DedupProcessor) Process(batch *model.Batch) *model.Batch {
	if batch == nil || batch.Size() == 0 || batch.Stream != model.EventStream {
		return batch
	}

	if p.GetStatus() != model.StatusRunning {
		return batch
	}

	kept := make([]*model.Message, 0, len(batch.Messages))
	for _, event := range batch.Messages {
		hash, err := event.HashOpts(p.hashOpts)
		if err != nil {
			kept = append(kept, event)
			continue
		}

		if p.firstSighting(hash) {
			kept = append(kept, event)
		}
	}

	batch.Messages = kept
	return batch
}

// firstSighting records a hash and reports whether it was unseen within the
// TTL window
func (p *DedupProcessor) firstSighting(hash string) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	now := time.Now()

	if element, exists := p.entries[hash]; exists {
		entry := element.Value.(*dedupEntry)
		if now.Sub(entry.seen) < p.ttl {
			entry.seen = now
			p.order.MoveToFront(element)
			return false
		}
		// Expired entry, treat as new
		entry.seen = now
		p.order.MoveToFront(element)
		return true
	}

	p.entries[hash] = p.order.PushFront(&dedupEntry{hash: hash, seen: now})

	for len(p.entries) > p.maxEntries {
		oldest := p.order.Back()
		if oldest == nil {
			break
		}
		p.order.Remove(oldest)
		delete(p.entries, oldest.Value.(*dedupEntry).hash)
	}

	return true
}

// CacheSize returns the number of hashes currently tracked
func (p *DedupProcessor) CacheSize() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.entries)
}
