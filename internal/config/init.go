package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init writes an example build.config.yaml.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := struct {
		Entries     []Entry       `yaml:"entries"`
		OutDir      string        `yaml:"outDir"`
		Declaration bool          `yaml:"declaration"`
		Externals   []string      `yaml:"externals"`
		Bundle      exampleBundle `yaml:"bundle"`
	}{
		Entries:     []Entry{{Name: "index", Input: "src/index"}},
		OutDir:      "dist",
		Declaration: true,
		Externals:   []string{},
		Bundle:      exampleBundle{EmitCJS: true, EmitESM: true},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

type exampleBundle struct {
	EmitCJS bool `yaml:"emitCJS"`
	EmitESM bool `yaml:"emitESM"`
}
