package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the execution engine process.
// Secrets are expected through environment variables, never the file.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Engine struct {
		TickIntervalMS  int `yaml:"tick_interval_ms"`
		EventBufferSize int `yaml:"event_buffer_size"`
	} `yaml:"engine"`

	Venue struct {
		Mode    string   `yaml:"mode"` // PAPER or REAL
		Symbols []string `yaml:"symbols"`
		// Virtual quote balance for PAPER mode, in quote units.
		InitialBalance float64 `yaml:"initial_balance"`
	} `yaml:"venue"`

	PriceFeed struct {
		Enabled bool   `yaml:"enabled"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"price_feed"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Journal struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, then applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.TickIntervalMS == 0 {
		c.Engine.TickIntervalMS = 1000
	}
	if c.Engine.EventBufferSize == 0 {
		c.Engine.EventBufferSize = 256
	}
	if c.Venue.Mode == "" {
		c.Venue.Mode = "PAPER"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Engine.TickIntervalMS < 0 {
		return fmt.Errorf("tick interval must be positive, got %d", c.Engine.TickIntervalMS)
	}

	mode := strings.ToUpper(c.Venue.Mode)
	if mode != "PAPER" && mode != "REAL" {
		return fmt.Errorf("unknown venue mode: %s", c.Venue.Mode)
	}

	if len(c.Venue.Symbols) == 0 {
		return fmt.Errorf("at least one venue symbol is required")
	}

	if c.PriceFeed.Enabled {
		if !strings.HasPrefix(c.PriceFeed.WSURL, "ws://") && !strings.HasPrefix(c.PriceFeed.WSURL, "wss://") {
			return fmt.Errorf("invalid price feed WS URL: %s", c.PriceFeed.WSURL)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics enabled but no listen address configured")
	}

	return nil
}

// overrideWithEnv lets the environment take precedence over the file.
func overrideWithEnv(cfg *Config) {
	if mode := os.Getenv("HYPEREXEC_MODE"); mode != "" {
		cfg.Venue.Mode = mode
	}
	if url := os.Getenv("HYPEREXEC_FEED_URL"); url != "" {
		cfg.PriceFeed.WSURL = url
	}
	if level := os.Getenv("HYPEREXEC_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
