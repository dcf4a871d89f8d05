package inputs

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
)

// FeedFileInput reads threat feed files from disk and turns each one into a
// report. Zip archives are unpacked transparently, mirroring how mailed feed
// attachments arrive zipped.
type FeedFileInput struct {
	plugin.BasePlugin
	paths       []string
	nameRegex   *regexp.Regexp
	unzip       bool
	feedFields  map[string]any
	schema      *model.Schema
	seenFiles   map[string]bool
	mutex       sync.RWMutex
}

// NewFeedFileInput creates a new feed file input plugin
func NewFeedFileInput(id string, schema *model.Schema) *FeedFileInput {
	return &FeedFileInput{
		BasePlugin: plugin.NewBasePlugin(id, "Feed File Input", model.InputPluginType),
		schema:     schema,
		feedFields: make(map[string]any),
		seenFiles:  make(map[string]bool),
	}
}

// Initialize prepares the feed file input for operation
func (f *FeedFileInput) Initialize() bool {
	if paths, ok := f.Config["paths"].([]interface{}); ok {
		for _, p := range paths {
			if path, ok := p.(string); ok {
				f.paths = append(f.paths, path)
			}
		}
	}

	if pattern, ok := f.Config["name_regex"].(string); ok && pattern != "" {
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		f.nameRegex = regex
	}

	if unzip, ok := f.Config["unzip"].(bool); ok {
		f.unzip = unzip
	}

	// Feed provenance stamped onto every report this input produces
	for _, key := range []string{"feed.name", "feed.provider", "feed.url", "feed.code", "feed.accuracy", "feed.documentation"} {
		if value, ok := f.Config[key]; ok {
			f.feedFields[key] = value
		}
	}

	f.SetStatus(model.StatusInitialized)
	return len(f.paths) > 0
}

// Start begins feed file input operation
func (f *FeedFileInput) Start() bool {
	f.SetStatus(model.StatusRunning)
	return true
}

// Stop halts feed file input operation
func (f *FeedFileInput) Stop() bool {
	f.SetStatus(model.StatusStopped)
	return true
}

// Validate checks if the feed file input is properly configured
func (f *FeedFileInput) Validate() bool {
	if paths, ok := f.Config["paths"].([]interface{}); !ok || len(paths) == 0 {
		return false
	}
	if f.schema == nil {
		return false
	}
	return true
}

// Collect gathers new feed files and produces one report per file
func (f *FeedFileInput) Collect() []*model.Batch {
	if f.GetStatus() != model.StatusRunning {
		return nil
	}

	batch := model.NewBatch(model.ReportStream)
	batch.SourceID = f.ID()

	for _, pathPattern := range f.paths {
		matches, err := filepath.Glob(pathPattern)
		if err != nil {
			continue
		}

		for _, path := range matches {
			if f.alreadySeen(path) {
				continue
			}

			if f.nameRegex != nil && !f.nameRegex.MatchString(filepath.Base(path)) {
				continue
			}

			payload, err := f.readFeed(path)
			if err != nil || len(payload) == 0 {
				continue
			}

			report, err := f.buildReport(payload)
			if err != nil {
				continue
			}

			batch.AddMessage(report)
			f.markSeen(path)
		}
	}

	if batch.Size() == 0 {
		return nil
	}

	return []*model.Batch{batch}
}

// readFeed reads a feed file, extracting the first archive member when the
// file is a zip and unzipping is enabled
func (f *FeedFileInput) readFeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if f.unzip && filepath.Ext(path) == ".zip" {
		reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(reader.File) == 0 {
			return nil, nil
		}
		member, err := reader.File[0].Open()
		if err != nil {
			return nil, err
		}
		defer member.Close()
		return io.ReadAll(member)
	}

	return data, nil
}

// buildReport wraps a raw feed payload in a report stamped with the feed's
// provenance fields
func (f *FeedFileInput) buildReport(payload []byte) (*model.Message, error) {
	report, err := model.NewReport(f.schema)
	if err != nil {
		return nil, err
	}

	if _, err := report.Add("raw", payload); err != nil {
		return nil, err
	}

	for key, value := range f.feedFields {
		if _, err := report.Add(key, value); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (f *FeedFileInput) alreadySeen(path string) bool {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.seenFiles[path]
}

func (f *FeedFileInput) markSeen(path string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.seenFiles[path] = true
}
