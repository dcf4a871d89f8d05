package outputs

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"

	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
)

// FileOutput appends records to a file, one wire-encoded record per line
type FileOutput struct {
	plugin.BasePlugin
	path   string
	file   *os.File
	writer *bufio.Writer
	mutex  sync.Mutex
}

// NewFileOutput creates a new file output plugin
func NewFileOutput(id string) *FileOutput {
	return &FileOutput{
		BasePlugin: plugin.NewBasePlugin(id, "File Output", model.OutputPluginType),
	}
}

// Initialize prepares the file output for operation
func (f *FileOutput) Initialize() bool {
	path, ok := f.Config["path"].(string)
	if !ok || path == "" {
		return false
	}
	f.path = path

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return false
	}

	f.file = file
	f.writer = bufio.NewWriter(file)

	f.SetStatus(model.StatusInitialized)
	return true
}

// Start begins file output operation
func (f *FileOutput) Start() bool {
	f.SetStatus(model.StatusRunning)
	return true
}

// Stop flushes pending writes and closes the file
func (f *FileOutput) Stop() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.writer != nil {
		f.writer.Flush()
	}
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}

	f.SetStatus(model.StatusStopped)
	return true
}

// Validate checks if the file output is properly configured
func (f *FileOutput) Validate() bool {
	path, ok := f.Config["path"].(string)
	return ok && path != ""
}

// Send appends a record batch to the output file
func (f *FileOutput) Send(batch *model.Batch) bool {
	if batch == nil || batch.Size() == 0 {
		return true
	}

	if f.GetStatus() != model.StatusRunning {
		return false
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.writer == nil {
		return false
	}

	for _, record := range batch.Messages {
		raw, err := record.Serialize()
		if err != nil {
			return false
		}

		if _, err := f.writer.WriteString(raw + "\n"); err != nil {
			return false
		}
	}

	return f.writer.Flush() == nil
}
