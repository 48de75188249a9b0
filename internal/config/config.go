package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`
	Player struct {
		Name string `yaml:"name"`
	} `yaml:"player"`
	Quiz struct {
		DefaultTimePerQuestion int `yaml:"defaultTimePerQuestion"`
	} `yaml:"quiz"`
	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default is what a missing config file means.
func Default() Config {
	cfg := Config{}
	cfg.Quiz.DefaultTimePerQuestion = 30
	cfg.Log.File = "logs/quizdesk.log"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SecondsOrDefault parses a positive seconds value or returns the fallback.
func SecondsOrDefault(raw, fallback int) int {
	if raw <= 0 {
		return fallback
	}
	return raw
}
