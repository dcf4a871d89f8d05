package catalog

import (
	"github.com/sliink/intelpipe/internal/model"
	"github.com/sliink/intelpipe/internal/plugin"
	"github.com/sliink/intelpipe/internal/plugin/inputs"
	"github.com/sliink/intelpipe/internal/plugin/outputs"
	"github.com/sliink/intelpipe/internal/plugin/processors"
)

// RegisterStandardPlugins registers all bundled plugins with the factory. The
// schema is bound into the input creators, every report they produce validates
// against it.
func RegisterStandardPlugins(factory *plugin.PluginFactory, schema *model.Schema) {
	factory.RegisterInputPlugin("feed_file", func(id string) model.InputPlugin {
		return inputs.NewFeedFileInput(id, schema)
	})

	factory.RegisterProcessorPlugin("botscout_parser", func(id string) model.ProcessorPlugin {
		return processors.NewBotscoutParser(id)
	})
	factory.RegisterProcessorPlugin("cedia_parser", func(id string) model.ProcessorPlugin {
		return processors.NewCediaParser(id)
	})
	factory.RegisterProcessorPlugin("ioc_tagger", func(id string) model.ProcessorPlugin {
		return processors.NewIOCTagger(id)
	})
	factory.RegisterProcessorPlugin("dedup", func(id string) model.ProcessorPlugin {
		return processors.NewDedupProcessor(id)
	})

	factory.RegisterOutputPlugin("stdout", func(id string) model.OutputPlugin {
		return outputs.NewStdoutOutput(id)
	})
	factory.RegisterOutputPlugin("file", func(id string) model.OutputPlugin {
		return outputs.NewFileOutput(id)
	})
}

// CreateStandardPlugins creates a set of bundled plugins from configuration
func CreateStandardPlugins(config map[string]interface{}, schema *model.Schema) ([]model.Plugin, error) {
	factory := plugin.NewPluginFactory()
	RegisterStandardPlugins(factory, schema)

	var plugins []model.Plugin

	sections := []struct {
		key        string
		pluginType model.PluginType
	}{
		{"inputs", model.InputPluginType},
		{"processors", model.ProcessorPluginType},
		{"outputs", model.OutputPluginType},
	}

	for _, section := range sections {
		declared, ok := config[section.key].([]interface{})
		if !ok {
			continue
		}

		for _, entry := range declared {
			entryMap, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}

			id, _ := entryMap["id"].(string)
			typeName, _ := entryMap["type"].(string)
			pluginConf, _ := entryMap["config"].(map[string]interface{})

			p, err := factory.CreatePlugin(section.pluginType, typeName, id)
			if err != nil {
				return nil, err
			}

			if pluginConf != nil {
				p.Configure(pluginConf)
			}
			plugins = append(plugins, p)
		}
	}

	return plugins, nil
}
