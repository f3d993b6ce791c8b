package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Server    ServerConfig              `json:"server"`
	Providers map[string]ProviderConfig `json:"providers"`
	Data      DataConfig                `json:"data"`
	Storage   StorageConfig             `json:"storage"`
	Executor  ExecutorConfig            `json:"executor"`
	Prompts   PromptsConfig             `json:"prompts"`
}

type AppConfig struct {
	Name        string `json:"name"`
	Environment string `json:"environment"`
}

type ServerConfig struct {
	Addr    string `json:"addr"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type DataConfig struct {
	Path      string `json:"path"`
	File      string `json:"file"`
	Delimiter string `json:"delimiter"`
	IDColumn  string `json:"id_column"`
}

type StorageConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type ExecutorConfig struct {
	PoolSize           int `json:"pool_size"`
	StepTimeoutSeconds int `json:"step_timeout_seconds"`
}

type PromptsConfig struct {
	Path string `json:"path"`
}

func LoadConfig(path string) *Config {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Data.Path == "" {
		c.Data.Path = "./data"
	}
	if c.Data.File == "" {
		c.Data.File = "Agent_persona.csv"
	}
	if c.Data.Delimiter == "" {
		c.Data.Delimiter = ","
	}
	if c.Data.IDColumn == "" {
		c.Data.IDColumn = "AGENT_ID"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "campaigner.db"
	}
	if c.Executor.PoolSize <= 0 {
		c.Executor.PoolSize = 5
	}
	if c.Prompts.Path == "" {
		c.Prompts.Path = "./prompts"
	}
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// StepTimeout returns the per-step collaborator timeout. Zero disables it.
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Executor.StepTimeoutSeconds) * time.Second
}
