package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/pushgrid/internal/core/observability/log"
	"github.com/zeusync/pushgrid/internal/core/push"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log    log.Config   `yaml:"log"`
	Push   PushConfig   `yaml:"push"`
	Server ServerConfig `yaml:"server"`
	// Workers bounds how many scenarios run at once; 0 removes the bound.
	Workers int `yaml:"workers"`
}

type PushConfig struct {
	// MaxChain is used by scenario pushes that do not set their own budget.
	MaxChain   int             `yaml:"max_chain"`
	LatePolicy push.LatePolicy `yaml:"late_policy"`
}

type ServerConfig struct {
	ListenAddr string        `yaml:"listen_addr"`
	Tick       time.Duration `yaml:"tick"`
	// Loop replays the scenarios forever instead of once.
	Loop bool `yaml:"loop"`
}

func Default() *Config {
	return &Config{
		Log: log.Config{
			Level:    log.LevelInfo,
			Encoding: "console",
		},
		Push: PushConfig{
			MaxChain:   32,
			LatePolicy: push.LateRollback,
		},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8080",
			Tick:       500 * time.Millisecond,
		},
		Workers: 4,
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Push.MaxChain < 1 {
		return fmt.Errorf("%w: push.max_chain must be positive, got %d", ErrInvalidConfig, c.Push.MaxChain)
	}
	if _, err := push.ParseLatePolicy(string(c.Push.LatePolicy)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: log.encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}
	if c.Server.Tick <= 0 {
		return fmt.Errorf("%w: server.tick must be positive", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ChainBudget picks the per-push budget, falling back to MaxChain.
func (p PushConfig) ChainBudget(requested int) int {
	if requested > 0 {
		return requested
	}
	return p.MaxChain
}
