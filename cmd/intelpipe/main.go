package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sliink/intelpipe/internal/api"
	"github.com/sliink/intelpipe/internal/core"
	"github.com/sliink/intelpipe/internal/harmonization"
	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin/catalog"
	"github.com/sliink/intelpipe/internal/plugin/inputs"
	"github.com/sliink/intelpipe/internal/plugin/outputs"
	"github.com/sliink/intelpipe/internal/plugin/processors"
	"github.com/spf13/cobra"
)

var (
	configFile string
	schemaFile string
	feedPaths  []string
	feedName   string
	parserName string
	outputDir  string
	stdout     bool
	colorize   bool
	jsonFormat bool
	oneShot    bool
	apiEnabled bool
	apiPort    int
	apiHost    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intelpipe",
		Short: "IntelPipe - Collect, normalize, and export threat intelligence feeds",
		Run:   runPipeline,
	}

	// Common flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&schemaFile, "schema", "", "Path to a field schema file (built-in schema when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&feedPaths, "feed", nil, "Feed file or glob to ingest (repeatable)")
	rootCmd.PersistentFlags().StringVar(&feedName, "feed-name", "", "Feed name stamped onto ingested reports")
	rootCmd.PersistentFlags().StringVar(&parserName, "parser", "cedia_parser", "Parser for ingested feeds (botscout_parser, cedia_parser)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory for file output")
	rootCmd.PersistentFlags().BoolVar(&stdout, "stdout", false, "Output to stdout instead of files")
	rootCmd.PersistentFlags().BoolVar(&colorize, "color", false, "Colorize stdout output")
	rootCmd.PersistentFlags().BoolVar(&jsonFormat, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&oneShot, "one-shot", false, "Process feeds once and exit")

	// API server flags
	rootCmd.PersistentFlags().BoolVar(&apiEnabled, "api", true, "Enable the API server")
	rootCmd.PersistentFlags().IntVar(&apiPort, "api-port", 8080, "API server port")
	rootCmd.PersistentFlags().StringVar(&apiHost, "api-host", "localhost", "API server host")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, args []string) {
	fmt.Println("Starting IntelPipe...")

	schema, err := loadSchema()
	if err != nil {
		fmt.Println("Failed to load schema:", err)
		os.Exit(1)
	}

	// Create the core system
	c := core.NewCore()

	// Initialize the core system
	if !c.Initialize() {
		fmt.Println("Failed to initialize core system")
		os.Exit(1)
	}

	// Load configuration if provided
	if configFile != "" {
		configManager := c.GetConfigManager()
		if err := configManager.LoadConfig(configFile); err != nil {
			fmt.Println("Failed to load configuration:", err)
			os.Exit(1)
		}
		fmt.Println("Loaded configuration from", configFile)
	}

	// Create and register plugins
	if err := registerPlugins(c, schema); err != nil {
		fmt.Println("Failed to register plugins:", err)
		os.Exit(1)
	}

	if oneShot {
		runOneShot(c)
		return
	}

	// Start the core system
	if !c.Start() {
		fmt.Println("Failed to start core system")
		os.Exit(1)
	}

	fmt.Println("IntelPipe is running. Press Ctrl+C to stop.")

	// Start API server if enabled
	var apiServer *api.API
	if apiEnabled {
		apiServer = api.NewAPI(c, schema, apiPort, apiHost)

		go func() {
			fmt.Printf("Starting API server at %s:%d\n", apiHost, apiPort)
			if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
				fmt.Printf("API server error: %s\n", err)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigs

	// Shutdown API server if it was started
	if apiServer != nil {
		fmt.Println("Shutting down API server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(ctx); err != nil {
			fmt.Printf("API server shutdown error: %s\n", err)
		}
	}

	fmt.Println("\nShutting down...")

	// Stop the core system
	if !c.Stop() {
		fmt.Println("Failed to stop core system cleanly")
		os.Exit(1)
	}

	fmt.Println("Shutdown complete")
}

// runOneShot drains every input once, pushes the results through the pipeline
// and the outputs, and exits
func runOneShot(c *core.Core) {
	registry := c.GetRegistry()

	for _, p := range registry.GetAllPlugins() {
		if !p.Initialize() || !p.Start() {
			fmt.Println("Failed to start plugin:", p.ID())
			os.Exit(1)
		}
	}
	c.GetDataPipeline().Start()

	outputPlugins := registry.GetOutputPlugins()

	for _, input := range registry.GetInputPlugins() {
		for _, batch := range input.Collect() {
			processed := c.GetDataPipeline().Process(batch)
			if processed == nil || processed.Size() == 0 {
				continue
			}
			for _, output := range outputPlugins {
				output.Send(processed)
			}
		}
	}

	for _, p := range registry.GetAllPlugins() {
		p.Stop()
	}

	fmt.Println("One-shot run complete")
}

// loadSchema resolves the field schema: an explicit schema file when given,
// the built-in harmonization schema otherwise
func loadSchema() (*model.Schema, error) {
	if schemaFile != "" {
		return model.LoadSchema(schemaFile, harmonization.DefaultRegistry())
	}
	return harmonization.DefaultSchema()
}

func configurePipeline(c *core.Core) error {
	pipeline := c.GetDataPipeline()
	if pipeline == nil {
		return fmt.Errorf("failed to get data pipeline component")
	}

	// Check if we have a config file with pipeline definitions
	configManager := c.GetConfigManager()

	pipelines, ok := configManager.GetConfig("pipelines", nil).(map[string]interface{})
	if ok {
		// Configure each pipeline
		for streamName, pipelineConfig := range pipelines {
			config, ok := pipelineConfig.(map[string]interface{})
			if !ok {
				continue
			}

			// Get processors for this pipeline
			var processorIDs []string
			if declared, ok := config["processors"].([]interface{}); ok {
				for _, processorID := range declared {
					if id, ok := processorID.(string); ok {
						processorIDs = append(processorIDs, id)
					}
				}
			}

			var stream model.StreamType
			switch streamName {
			case "reports":
				stream = model.ReportStream
			case "events":
				stream = model.EventStream
			default:
				continue
			}

			if len(processorIDs) > 0 {
				if err := pipeline.CreatePipeline(stream, processorIDs); err != nil {
					return fmt.Errorf("failed to create %s pipeline: %w", streamName, err)
				}
			}
		}

		return nil
	}

	// Without pipeline configuration, wire the default chain: parse reports
	// into events, then tag and deduplicate the events
	if err := pipeline.CreatePipeline(model.ReportStream, []string{"parser", "ioc_tagger", "dedup"}); err != nil {
		return fmt.Errorf("failed to create report pipeline: %w", err)
	}

	return nil
}

func registerPlugins(c *core.Core, schema *model.Schema) error {
	// Plugins declared in the configuration file take precedence
	if configFile != "" {
		config, ok := c.GetConfigManager().GetConfig("", nil).(map[string]interface{})
		if ok {
			declared, err := catalog.CreateStandardPlugins(config, schema)
			if err != nil {
				return err
			}
			if len(declared) > 0 {
				for _, p := range declared {
					if err := c.RegisterPlugin(p); err != nil {
						return err
					}
				}
				return configurePipeline(c)
			}
		}
	}

	// Create the feed input
	feedInput := inputs.NewFeedFileInput("feed_input", schema)

	if len(feedPaths) == 0 {
		feedPaths = []string{"feeds/*"}
	}

	feedConfig := map[string]interface{}{
		"paths": toAnySlice(feedPaths),
		"unzip": true,
	}
	if feedName != "" {
		feedConfig["feed.name"] = feedName
	}
	feedInput.Configure(feedConfig)

	// Create the parser for the selected feed format
	var parser model.ProcessorPlugin
	switch parserName {
	case "botscout_parser":
		parser = processors.NewBotscoutParser("parser")
	case "cedia_parser":
		parser = processors.NewCediaParser("parser")
	default:
		return fmt.Errorf("unknown parser: %s", parserName)
	}

	tagger := processors.NewIOCTagger("ioc_tagger")
	dedup := processors.NewDedupProcessor("dedup")

	// Create output plugins
	var output model.OutputPlugin
	if stdout || outputDir == "" {
		stdoutOutput := outputs.NewStdoutOutput("stdout_output")

		stdoutConfig := map[string]interface{}{
			"colorize": colorize,
			"format":   "text",
		}
		if jsonFormat {
			stdoutConfig["format"] = "json"
		}

		stdoutOutput.Configure(stdoutConfig)
		output = stdoutOutput
	} else {
		fileOutput := outputs.NewFileOutput("file_output")
		fileOutput.Configure(map[string]interface{}{
			"path": filepath.Join(outputDir, "events.jsonl"),
		})
		output = fileOutput
	}

	// Register plugins with core
	for _, p := range []model.Plugin{feedInput, parser, tagger, dedup, output} {
		if err := c.RegisterPlugin(p); err != nil {
			return err
		}
	}

	// Configure pipeline
	return configurePipeline(c)
}

func toAnySlice(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
