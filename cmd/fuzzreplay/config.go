package main

import (
	"os"

	"gopkg.in/yaml.v3"

	tafuzz "github.com/L0czek/ta-fuzz"
)

// replayConfig is the YAML shape of --config: the Target options this CLI
// loads before building the target and replaying a test case.
type replayConfig struct {
	Trace bool `yaml:"trace"`
	TCGen bool `yaml:"tcgen"`
}

func loadConfig(path string) (tafuzz.Options, error) {
	var cfg replayConfig
	if path == "" {
		return tafuzz.Options{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return tafuzz.Options{}, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return tafuzz.Options{}, err
	}
	return tafuzz.Options{Trace: cfg.Trace, TCGen: cfg.TCGen}, nil
}
