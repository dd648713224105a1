// Package config loads the voxbridge configuration file.
//
// The file lives at os.UserConfigDir()/voxbridge/config.yaml unless a path
// is given explicitly. The API key may also come from the OPENAI_API_KEY
// environment variable, which takes precedence over the file so secrets
// can stay out of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/voxbridge/voxbridge/pkg/bridge"
)

const (
	appDir     = "voxbridge"
	configFile = "config.yaml"

	// EnvAPIKey overrides api_key from the file.
	EnvAPIKey = "OPENAI_API_KEY"
)

// Config is the full voxbridge configuration.
type Config struct {
	// APIKey authenticates against the realtime and chat APIs.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the realtime HTTP endpoint (tests, proxies).
	BaseURL string `yaml:"base_url"`

	// Model is the realtime model to dial.
	Model string `yaml:"model"`

	// Voice selects the assistant's audio output voice.
	Voice string `yaml:"voice"`

	// Mode is the initial turn-taking mode: auto or manual.
	Mode string `yaml:"mode"`

	// Language is the initial transcription/instruction language code.
	Language string `yaml:"language"`

	// Persona is the initial persona ID.
	Persona string `yaml:"persona"`

	// Personas is the persona registry: ID to per-language instructions.
	Personas map[string]bridge.Persona `yaml:"personas"`

	// SettleDelayMs tunes the pause in the manual release sequence.
	SettleDelayMs int `yaml:"settle_delay_ms"`

	// AudioFile is an Ogg Opus file replayed as the microphone source by
	// the talk command.
	AudioFile string `yaml:"audio_file"`

	// Listen is the serve command's bind address.
	Listen string `yaml:"listen"`

	// DatabaseURL enables Postgres persistence; empty means in-memory.
	DatabaseURL string `yaml:"database_url"`

	// ExpertModel answers forwarded transcripts; empty disables the
	// expert collaborator.
	ExpertModel string `yaml:"expert_model"`

	// MetricsNamespace prefixes Prometheus metric names.
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, configFile), nil
}

// Load reads the config from path, or from the default location when path
// is empty. A missing file yields defaults, not an error: the env API key
// alone is enough to run.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = string(bridge.ModeAuto)
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = "voxbridge"
	}
	for id, p := range c.Personas {
		if p.ID == "" {
			p.ID = id
			c.Personas[id] = p
		}
	}
}

// SettleDelay returns the configured settle delay, or zero to use the
// bridge default.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// PersonaSet converts the registry to the bridge's persona set.
func (c *Config) PersonaSet() bridge.PersonaSet {
	if len(c.Personas) == 0 {
		return nil
	}
	ps := make(bridge.PersonaSet, len(c.Personas))
	for id, p := range c.Personas {
		ps[id] = p
	}
	return ps
}
