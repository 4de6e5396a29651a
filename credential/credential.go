// Package credential resolves API keys per spec.md §6's precedence:
// per-request option → process configuration entry → environment variable.
// Config loading mirrors config_load.go's extension-sniffing YAML/JSON
// loader exactly (gopkg.in/yaml.v3 for .yaml/.yml, encoding/json for .json).
package credential

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ferro-labs/reqllm-go/llmerr"
)

// Config holds process-wide credential configuration: one API key per
// provider, keyed by provider name (e.g. "openai", "anthropic").
type Config struct {
	APIKeys map[string]string `json:"api_keys" yaml:"api_keys"`
}

// Load reads and parses a credential config file from path. Supported
// formats: JSON (.json), YAML (.yaml, .yml).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("credential: reading config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("credential: parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("credential: parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("credential: unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}
	return &cfg, nil
}

// Resolve returns the API key for provider, trying in order: requestKey (the
// per-request api_key option, may be empty), cfg.APIKeys[providerName]
// (cfg may be nil), and the env var envKey, or <PROVIDER>_API_KEY
// (uppercased) when envKey is empty. Absence
// of a key anywhere is a fatal configuration error (spec.md §6).
func Resolve(providerName, envKey, requestKey string, cfg *Config) (string, error) {
	if requestKey != "" {
		return requestKey, nil
	}
	if cfg != nil {
		if key, ok := cfg.APIKeys[providerName]; ok && key != "" {
			return key, nil
		}
	}
	if envKey == "" {
		envKey = strings.ToUpper(providerName) + "_API_KEY"
	}
	if key := os.Getenv(envKey); key != "" {
		return key, nil
	}
	return "", llmerr.Newf(llmerr.InvalidParameter, "credential: no API key found for provider %q (checked request option, config, env %s)", providerName, envKey)
}
