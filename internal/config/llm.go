package config

import (
	"fmt"
	"os"
	"time"
)

// LLMConfig configures the OpenAI-compatible endpoint that writes captions.
type LLMConfig struct {
	Model      string        `mapstructure:"model"`        // Chat model name
	APIKey     string        `mapstructure:"api_key"`      // API key (can be set directly or via env var)
	APIKeyEnv  string        `mapstructure:"api_key_env"`  // Environment variable name for API key
	BaseURL    string        `mapstructure:"base_url"`     // Base URL for OpenAI-compatible APIs
	BaseURLEnv string        `mapstructure:"base_url_env"` // Environment variable name for base URL
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ResolveEnvVars resolves environment variable references in the configuration.
// Direct values (APIKey, BaseURL) take precedence if already set.
func (c *LLMConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}

	if c.BaseURLEnv != "" && c.BaseURL == "" {
		if val := os.Getenv(c.BaseURLEnv); val != "" {
			c.BaseURL = val
		}
	}
}

// Validate checks that the LLM configuration has all required fields.
// Returns an error describing the first validation failure, or nil if valid.
func (c *LLMConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm: model is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("llm: api_key is required (set directly or via %s)", c.APIKeyEnv)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("llm: timeout must be positive")
	}
	return nil
}
