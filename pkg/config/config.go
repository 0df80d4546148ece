// Package config loads posbed settings from YAML. Command-line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/liftover"
	"github.com/jgbaldwinbrown/posbed/pkg/logging"
)

var ErrInvalidConfig = errors.New("invalid config")

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// Config is the root YAML structure.
type Config struct {
	From assembly.ID `yaml:"from"`
	To   assembly.ID `yaml:"to"`
	// Liftover defaults to From != To when unset.
	Liftover *bool `yaml:"liftover,omitempty"`

	Service ServiceConfig `yaml:"service"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// ServiceConfig describes the remote coordinate mapping service.
type ServiceConfig struct {
	URL          string        `yaml:"url"`
	Species      string        `yaml:"species"`
	Timeout      time.Duration `yaml:"timeout"`
	RateLimit    float64       `yaml:"rate_limit"`
	StrictSingle bool          `yaml:"strict_single"`
	Cache        bool          `yaml:"cache"`
}

type OutputConfig struct {
	Path     string `yaml:"path,omitempty"`
	Unmapped string `yaml:"unmapped,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default converts hg19 to hg38 through Ensembl REST with
// a 15 second timeout.
func Default() Config {
	return Config{
		From: assembly.HG19,
		To:   assembly.HG38,
		Service: ServiceConfig{
			URL:       liftover.DefaultBaseURL,
			Species:   liftover.DefaultSpecies,
			Timeout:   liftover.DefaultTimeout,
			RateLimit: liftover.DefaultRateLimit,
			Cache:     true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Parse overlays YAML data onto the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path; an empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("Load: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("Load %s: %w", path, err)
	}
	return cfg, nil
}

// LiftoverEnabled resolves the optional toggle.
func (c Config) LiftoverEnabled() bool {
	if c.Liftover != nil {
		return *c.Liftover
	}
	return c.From != c.To
}

func (c Config) Validate() error {
	if !c.From.Valid() {
		return &ValidationError{Field: "from", Message: fmt.Sprintf("unknown assembly %q", c.From)}
	}
	if !c.To.Valid() {
		return &ValidationError{Field: "to", Message: fmt.Sprintf("unknown assembly %q", c.To)}
	}
	if c.Service.URL == "" {
		return &ValidationError{Field: "service.url", Message: "must not be empty"}
	}
	if c.Service.Timeout <= 0 {
		return &ValidationError{Field: "service.timeout", Message: "must be positive"}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Field: "log.level", Message: err.Error()}
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return &ValidationError{Field: "log.format", Message: err.Error()}
	}
	return nil
}

// ClientConfig converts the service section for liftover.NewClient.
func (c Config) ClientConfig() liftover.Config {
	return liftover.Config{
		BaseURL:      c.Service.URL,
		Species:      c.Service.Species,
		Timeout:      c.Service.Timeout,
		RateLimit:    c.Service.RateLimit,
		StrictSingle: c.Service.StrictSingle,
	}
}

// Lifter builds the liftover client, wrapped in a cache when enabled.
func (c Config) Lifter() liftover.Lifter {
	client := liftover.NewClient(c.ClientConfig())
	if c.Service.Cache {
		return liftover.NewCache(client)
	}
	return client
}
