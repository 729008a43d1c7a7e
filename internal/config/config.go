package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rkode/internal/dynamo"
)

const (
	DefaultDt        = 0.1
	DefaultT0        = 0.0
	DefaultTF        = 1.0
	DefaultY0        = 1.0
	DefaultTolerance = 1e-6
	DefaultMinDt     = 1e-12
	DefaultMaxSteps  = 10_000_000

	// EnvPrefix is prepended to every environment override, e.g. RKODE_DT.
	EnvPrefix = "RKODE_"
)

type Config struct {
	Model      string             `yaml:"model" env:"MODEL"`
	Integrator string             `yaml:"integrator" env:"INTEGRATOR"`
	T0         float64            `yaml:"t0" env:"T0"`
	Y0         float64            `yaml:"y0" env:"Y0"`
	Dt         float64            `yaml:"dt" env:"DT"`
	TF         float64            `yaml:"tf" env:"TF"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	Solver     SolverConfig       `yaml:"solver"`
	LogLevel   string             `yaml:"log_level" env:"LOG_LEVEL"`
}

type SolverConfig struct {
	Endpoint      string  `yaml:"endpoint" env:"ENDPOINT"`
	Tolerance     float64 `yaml:"tolerance" env:"TOLERANCE"`
	MinDt         float64 `yaml:"min_dt" env:"MIN_DT"`
	MaxDt         float64 `yaml:"max_dt" env:"MAX_DT"`
	MaxSteps      int     `yaml:"max_steps" env:"MAX_STEPS"`
	ValidateState bool    `yaml:"validate_state" env:"VALIDATE_STATE"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "growth",
		Integrator: "rk4",
		T0:         DefaultT0,
		Y0:         DefaultY0,
		Dt:         DefaultDt,
		TF:         DefaultTF,
		Solver: SolverConfig{
			Endpoint:      dynamo.EndpointClamp.String(),
			Tolerance:     DefaultTolerance,
			MinDt:         DefaultMinDt,
			MaxSteps:      DefaultMaxSteps,
			ValidateState: true,
		},
		LogLevel: "info",
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the keys present in a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from RKODE_* environment variables. Unset
// variables leave the current value untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the fields that do not depend on the registry.
func (c *Config) Validate() error {
	if _, err := dynamo.ParseEndpoint(c.Solver.Endpoint); err != nil {
		return err
	}
	if err := dynamo.ValidateInterval(c.T0, c.Y0, c.Dt, c.TF); err != nil {
		return err
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", dynamo.ErrInvalidArgument, c.Solver.Tolerance)
	}
	if c.Solver.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must not be negative", dynamo.ErrInvalidArgument)
	}
	return nil
}

// SimConfig converts the solver section into a dynamo.Config. adaptive is
// decided by the caller from the chosen integrator.
func (c *Config) SimConfig(adaptive bool) (dynamo.Config, error) {
	endpoint, err := dynamo.ParseEndpoint(c.Solver.Endpoint)
	if err != nil {
		return dynamo.Config{}, err
	}
	return dynamo.Config{
		Endpoint:      endpoint,
		Adaptive:      adaptive,
		Tolerance:     c.Solver.Tolerance,
		MinDt:         c.Solver.MinDt,
		MaxDt:         c.Solver.MaxDt,
		MaxSteps:      c.Solver.MaxSteps,
		ValidateState: c.Solver.ValidateState,
	}, nil
}
