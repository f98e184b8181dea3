package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mtbench/internal/common/fsutil"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr                string   `json:"addr" yaml:"addr" toml:"addr"`
	CatalogPath         string   `json:"catalog" yaml:"catalog" toml:"catalog"`
	BackendURL          string   `json:"backend_url" yaml:"backend_url" toml:"backend_url"`
	BackendAPIKey       string   `json:"backend_api_key" yaml:"backend_api_key" toml:"backend_api_key"`
	BackendTimeout      int      `json:"backend_timeout_sec" yaml:"backend_timeout_sec" toml:"backend_timeout_sec"`
	DefaultModel        string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	DefaultTask         string   `json:"default_task" yaml:"default_task" toml:"default_task"`
	DefaultQuantize     string   `json:"default_quantize" yaml:"default_quantize" toml:"default_quantize"`
	MaxQueueDepth       int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSec          int      `json:"max_wait_sec" yaml:"max_wait_sec" toml:"max_wait_sec"`
	MaxInstances        int      `json:"max_instances" yaml:"max_instances" toml:"max_instances"`
	TranslateTimeoutSec int      `json:"translate_timeout_sec" yaml:"translate_timeout_sec" toml:"translate_timeout_sec"`
	DrainTimeoutSec     int      `json:"drain_timeout_sec" yaml:"drain_timeout_sec" toml:"drain_timeout_sec"`
	MaxBodyBytes        int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LogLevel            string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled         bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins         []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if err := unmarshal(ext, b, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func unmarshal(ext string, b []byte, v any) error {
	switch ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, v)
	case ".json":
		return json.Unmarshal(b, v)
	case ".toml":
		return toml.Unmarshal(b, v)
	}
	return fmt.Errorf("unsupported config extension: %s", ext)
}
