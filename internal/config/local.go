package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"youcomagents/pkg/logger"
)

const (
	// EnvConfigPath points at the config file; .toml files are parsed as TOML.
	EnvConfigPath = "YOUCOM_AGENTS_CONFIG"
	// EnvBaseURL overrides youcom.base_url.
	EnvBaseURL = "YOUCOM_BASE_URL"
	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "YOUCOM_AGENTS_LOG_LEVEL"

	DefaultBaseURL = "https://api.you.com"
)

// Config represents the root configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	YouCom  YouComConfig  `yaml:"youcom" toml:"youcom"`
	Agents  []AgentConfig `yaml:"agents" toml:"agents"`
}

// ServerConfig configures the HTTP host bridge
type ServerConfig struct {
	Port int    `yaml:"port" toml:"port"`
	Host string `yaml:"host" toml:"host"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Output string `yaml:"output" toml:"output"`
}

// YouComConfig holds settings shared by every You.com agent. Credentials are
// named here, never stored.
type YouComConfig struct {
	BaseURL    string `yaml:"base_url" toml:"base_url"`
	AgentIDEnv string `yaml:"agent_id_env" toml:"agent_id_env"`
	APIKeyEnv  string `yaml:"api_key_env" toml:"api_key_env"`
}

// AgentConfig declares one model identity. Empty env names inherit the
// youcom section's.
type AgentConfig struct {
	ID              string `yaml:"id" toml:"id"`
	Name            string `yaml:"name" toml:"name"`
	Family          string `yaml:"family" toml:"family"`
	Version         string `yaml:"version" toml:"version"`
	MaxInputTokens  int    `yaml:"max_input_tokens" toml:"max_input_tokens"`
	MaxOutputTokens int    `yaml:"max_output_tokens" toml:"max_output_tokens"`
	AgentIDEnv      string `yaml:"agent_id_env" toml:"agent_id_env"`
	APIKeyEnv       string `yaml:"api_key_env" toml:"api_key_env"`
	// EnabledWhen is an expr-lang condition checked once at startup; the agent
	// is registered only when it holds.
	EnabledWhen string `yaml:"enabled_when" toml:"enabled_when"`
}

// DefaultAgent is the built-in You.com agent identity.
func DefaultAgent() AgentConfig {
	return AgentConfig{
		ID:              "youcom-agent",
		Name:            "You.com Agent",
		Family:          "youcom",
		Version:         "1.0.0",
		MaxInputTokens:  4096,
		MaxOutputTokens: 1024,
	}
}

const DefaultConfigTemplate = `server:
  port: 8787
  host: "127.0.0.1"
logging:
  level: info
  format: text
  output: stderr
youcom:
  base_url: "https://api.you.com"
  agent_id_env: YOUCOM_AGENT_ID
  api_key_env: YOUCOM_API_KEY
agents:
  - id: youcom-agent
    name: "You.com Agent"
    family: youcom
    version: "1.0.0"
    max_input_tokens: 4096
    max_output_tokens: 1024
  # - id: youcom-research
  #   name: "You.com Research"
  #   family: youcom
  #   version: "1.0.0"
  #   agent_id_env: YOUCOM_RESEARCH_AGENT_ID
  #   enabled_when: "Configured"
`

// Default returns a finalized configuration with no file behind it.
func Default() *Config {
	c := &Config{}
	_ = c.Finalize()
	return c
}

// DefaultPath returns YOUCOM_AGENTS_CONFIG or ~/.config/youcom-agents/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "youcom-agents", "config.yaml"), nil
}

// LoadLocalConfig loads the file at DefaultPath.
func LoadLocalConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load is LoadFile, except that a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("Config file missing, using defaults", "path", path)
		return Default(), nil
	}
	return cfg, err
}

// LoadFile parses and finalizes the config at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var conf Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &conf); err != nil {
			return nil, fmt.Errorf("failed to parse toml config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &conf); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	}

	if err := conf.Finalize(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &conf, nil
}

// WriteTemplate writes DefaultConfigTemplate to path, refusing to overwrite.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write default config template: %w", err)
	}
	return nil
}

// Finalize applies defaults and environment overrides, then validates.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *Config) loadDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8787
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.YouCom.BaseURL == "" {
		c.YouCom.BaseURL = DefaultBaseURL
	}
	if c.YouCom.AgentIDEnv == "" {
		c.YouCom.AgentIDEnv = EnvAgentID
	}
	if c.YouCom.APIKeyEnv == "" {
		c.YouCom.APIKeyEnv = EnvAPIKey
	}
	if len(c.Agents) == 0 {
		c.Agents = []AgentConfig{DefaultAgent()}
	}
	for i := range c.Agents {
		a := &c.Agents[i]
		if a.Name == "" {
			a.Name = a.ID
		}
		if a.Family == "" {
			a.Family = "youcom"
		}
		if a.AgentIDEnv == "" {
			a.AgentIDEnv = c.YouCom.AgentIDEnv
		}
		if a.APIKeyEnv == "" {
			a.APIKeyEnv = c.YouCom.APIKeyEnv
		}
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.YouCom.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.YouCom.BaseURL, "http://") && !strings.HasPrefix(c.YouCom.BaseURL, "https://") {
		return fmt.Errorf("invalid youcom base_url %q", c.YouCom.BaseURL)
	}
	seen := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		if a.ID == "" {
			return fmt.Errorf("agents[%d]: id is required", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("agents[%d]: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}
