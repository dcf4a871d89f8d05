package core

import (
	"fmt"
	"sync"

	"github.com/sliink/intelpipe/internal/harmonization"
	"github.com/sliink/intelpipe/internal/model"
)

var (
	testSchemaOnce sync.Once
	testSchemaInst *model.Schema
)

// testSchema returns the built-in field schema, compiled once per test run
func testSchema() *model.Schema {
	testSchemaOnce.Do(func() {
		schema, err := harmonization.DefaultSchema()
		if err != nil {
			panic(err)
		}
		testSchemaInst = schema
	})
	return testSchemaInst
}

// createTestBatch builds an event batch with the requested number of records
func createTestBatch(size int) *model.Batch {
	batch := model.NewBatch(model.EventStream)
	for i := 0; i < size; i++ {
		event, err := model.NewEvent(testSchema())
		if err != nil {
			panic(err)
		}
		if _, err := event.Add("source.ip", fmt.Sprintf("192.0.2.%d", i+1)); err != nil {
			panic(err)
		}
		if _, err := event.Add("classification.type", "malware"); err != nil {
			panic(err)
		}
		batch.AddMessage(event)
	}
	return batch
}
