package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/chatstream"
	"gopkg.in/yaml.v3"
)

const (
	appName   = "chatstream"
	apiKeyEnv = "CHATSTREAM_API_KEY"

	driverBolt = "bolt"
	driverJSON = "json"
)

// Config is the on-disk CLI configuration.
type Config struct {
	Endpoint     string             `yaml:"endpoint"`
	User         string             `yaml:"user"`
	Prompt       string             `yaml:"prompt"`
	Temperature  float64            `yaml:"temperature"`
	DefaultModel string             `yaml:"defaultModel"`
	Models       []chatstream.Model `yaml:"models"`
	Store        StoreConfig        `yaml:"store"`
}

// StoreConfig selects where conversations are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// defaultConfigDir returns $XDG_CONFIG_HOME/chatstream or its platform
// equivalent.
func defaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// loadConfig reads the YAML config at path. A missing file yields the
// defaults. Empty model keys are filled from CHATSTREAM_API_KEY.
func loadConfig(path string, getenv func(string) string) (Config, error) {
	cfg := Config{Temperature: 1}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = driverBolt
	}
	if cfg.Store.Path == "" {
		name := "conversations.db"
		if cfg.Store.Driver == driverJSON {
			name = "conversations.json"
		}
		cfg.Store.Path = filepath.Join(filepath.Dir(path), name)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return Config{}, fmt.Errorf("config: temperature %v outside [0, 2]", cfg.Temperature)
	}

	if key := getenv(apiKeyEnv); key != "" {
		for i := range cfg.Models {
			if cfg.Models[i].Key == "" {
				cfg.Models[i].Key = key
			}
		}
	}
	return cfg, nil
}

// model resolves a model by ID, falling back to the default model. An ID
// missing from the table is used as-is with the environment key.
func (c Config) model(id string, getenv func(string) string) chatstream.Model {
	if id == "" {
		id = c.DefaultModel
	}
	for _, m := range c.Models {
		if id == "" || m.ID == id {
			return m
		}
	}
	return chatstream.Model{ID: id, Name: id, Key: getenv(apiKeyEnv)}
}
