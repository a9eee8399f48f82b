package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Command struct {
		Prefix string `yaml:"prefix"`
	} `yaml:"command"`
	Gateway struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		ExportBase     string `yaml:"export_base"`
	} `yaml:"gateway"`
	Session struct {
		Workers   int `yaml:"workers"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"session"`
	World struct {
		MaxEntities int `yaml:"max_entities"`
	} `yaml:"world"`
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		// Set default values
		config.Command.Prefix = "!twin"
		config.Gateway.TimeoutSeconds = 30
		config.Gateway.ExportBase = "https://twinhost.app"
		config.Session.Workers = 8
		config.Session.QueueSize = 64
		config.World.MaxEntities = 16
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
