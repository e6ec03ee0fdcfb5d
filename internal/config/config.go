// File: internal/config/config.go
package config

import (
	"fmt"
	"math"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Agent() AgentConfig
	Field() FieldConfig
	Weights() WeightsConfig
	Sim() SimConfig
	Output() OutputConfig

	PlannerConfig() planner.Config
	GenerateConfig() field.GenerateConfig
	RunConfig() sim.Config

	SetSimTickRate(float64)
	SetSimSeed(int64)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger" json:"logger"`
	AgentCfg   AgentConfig   `mapstructure:"agent" yaml:"agent" json:"agent"`
	FieldCfg   FieldConfig   `mapstructure:"field" yaml:"field" json:"field"`
	WeightsCfg WeightsConfig `mapstructure:"weights" yaml:"weights" json:"weights"`
	SimCfg     SimConfig     `mapstructure:"sim" yaml:"sim" json:"sim"`
	OutputCfg  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Agent() AgentConfig     { return c.AgentCfg }
func (c *Config) Field() FieldConfig     { return c.FieldCfg }
func (c *Config) Weights() WeightsConfig { return c.WeightsCfg }
func (c *Config) Sim() SimConfig         { return c.SimCfg }
func (c *Config) Output() OutputConfig   { return c.OutputCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetSimTickRate(r float64) { c.SimCfg.TickRate = r }
func (c *Config) SetSimSeed(s int64)       { c.SimCfg.Seed = s }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level" json:"level"`
	Format      string      `mapstructure:"format" yaml:"format" json:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source" json:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file" json:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age" json:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress" json:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors" json:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug" json:"debug"`
	Info   string `mapstructure:"info" yaml:"info" json:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn" json:"warn"`
	Error  string `mapstructure:"error" yaml:"error" json:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic" json:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic" json:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal" json:"fatal"`
}

// StartConfig is the agent's initial pose.
type StartConfig struct {
	X       float64 `mapstructure:"x" yaml:"x" json:"x"`
	Y       float64 `mapstructure:"y" yaml:"y" json:"y"`
	Heading float64 `mapstructure:"heading" yaml:"heading" json:"heading"`
}

// AgentConfig describes the differential-drive agent.
type AgentConfig struct {
	Radius          float64     `mapstructure:"radius" yaml:"radius" json:"radius"`
	MaxVelocity     float64     `mapstructure:"max_velocity" yaml:"max_velocity" json:"max_velocity"`
	MaxAcceleration float64     `mapstructure:"max_acceleration" yaml:"max_acceleration" json:"max_acceleration"`
	Start           StartConfig `mapstructure:"start" yaml:"start" json:"start"`
	HistorySize     int         `mapstructure:"history_size" yaml:"history_size" json:"history_size"`
}

// FieldConfig describes the randomly generated obstacle field.
type FieldConfig struct {
	Count  int     `mapstructure:"count" yaml:"count" json:"count"`
	Radius float64 `mapstructure:"radius" yaml:"radius" json:"radius"`
	Width  int     `mapstructure:"width" yaml:"width" json:"width"`
	Height int     `mapstructure:"height" yaml:"height" json:"height"`
}

// WeightsConfig holds the cost function tuning.
type WeightsConfig struct {
	ObstacleWeight float64 `mapstructure:"obstacle_weight" yaml:"obstacle_weight" json:"obstacle_weight"`
	SafeDistance   float64 `mapstructure:"safe_distance" yaml:"safe_distance" json:"safe_distance"`
	FwdWeight      float64 `mapstructure:"fwd_weight" yaml:"fwd_weight" json:"fwd_weight"`
}

// SimConfig holds the driving loop settings.
type SimConfig struct {
	DT          float64 `mapstructure:"dt" yaml:"dt" json:"dt"`
	Lookahead   int     `mapstructure:"lookahead" yaml:"lookahead" json:"lookahead"`
	Ticks       int     `mapstructure:"ticks" yaml:"ticks" json:"ticks"`
	TickRate    float64 `mapstructure:"tick_rate" yaml:"tick_rate" json:"tick_rate"`
	Seed        int64   `mapstructure:"seed" yaml:"seed" json:"seed"`
	Concurrency int     `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency"`
}

// OutputConfig names the optional run artifacts.
type OutputConfig struct {
	// Path receives the JSON run log when set.
	Path string `mapstructure:"path" yaml:"path" json:"path"`
	// Plot receives a PNG of the final tick when set.
	Plot string `mapstructure:"plot" yaml:"plot" json:"plot"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "dwasim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Agent --
	v.SetDefault("agent.radius", 20.0)
	v.SetDefault("agent.max_velocity", 100.0)
	v.SetDefault("agent.max_acceleration", 5.0)
	v.SetDefault("agent.start.x", 600.0)
	v.SetDefault("agent.start.y", 375.0)
	v.SetDefault("agent.start.heading", math.Pi/2)
	v.SetDefault("agent.history_size", planner.DefaultHistorySize)

	// -- Field --
	v.SetDefault("field.count", 20)
	v.SetDefault("field.radius", 20.0)
	v.SetDefault("field.width", 1200)
	v.SetDefault("field.height", 750)

	// -- Weights --
	v.SetDefault("weights.obstacle_weight", 1000.0)
	v.SetDefault("weights.safe_distance", 50.0)
	v.SetDefault("weights.fwd_weight", 100.0)

	// -- Sim --
	v.SetDefault("sim.dt", 0.01)
	v.SetDefault("sim.lookahead", 10)
	v.SetDefault("sim.ticks", 2000)
	v.SetDefault("sim.tick_rate", 60.0)
	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.concurrency", 1)

	// -- Output --
	v.SetDefault("output.path", "")
	v.SetDefault("output.plot", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	var err error
	if cfg.OutputCfg.Path, err = ExpandPath(cfg.OutputCfg.Path); err != nil {
		return nil, fmt.Errorf("output.path: %w", err)
	}
	if cfg.OutputCfg.Plot, err = ExpandPath(cfg.OutputCfg.Plot); err != nil {
		return nil, fmt.Errorf("output.plot: %w", err)
	}
	if cfg.LoggerCfg.LogFile, err = ExpandPath(cfg.LoggerCfg.LogFile); err != nil {
		return nil, fmt.Errorf("logger.log_file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ExpandPath resolves a leading ~ to the user's home directory. Empty paths
// pass through unchanged.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return homedir.Expand(path)
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.PlannerConfig().Validate(); err != nil {
		return fmt.Errorf("agent configuration invalid: %w", err)
	}
	if err := c.GenerateConfig().Validate(); err != nil {
		return fmt.Errorf("field configuration invalid: %w", err)
	}
	if c.WeightsCfg.ObstacleWeight < 0 || c.WeightsCfg.SafeDistance < 0 || c.WeightsCfg.FwdWeight < 0 {
		return fmt.Errorf("weights must not be negative")
	}
	if err := c.RunConfig().Validate(); err != nil {
		return fmt.Errorf("sim configuration invalid: %w", err)
	}
	if c.SimCfg.Ticks < 0 {
		return fmt.Errorf("sim.ticks must not be negative")
	}
	if c.SimCfg.Concurrency <= 0 {
		return fmt.Errorf("sim.concurrency must be a positive integer")
	}
	return nil
}

// PlannerConfig converts the agent section into a planner.Config.
func (c *Config) PlannerConfig() planner.Config {
	a := c.AgentCfg
	return planner.Config{
		Radius:          a.Radius,
		MaxVelocity:     a.MaxVelocity,
		MaxAcceleration: a.MaxAcceleration,
		Start:           geometry.NewPose(a.Start.X, a.Start.Y, a.Start.Heading),
		HistorySize:     a.HistorySize,
	}
}

// GenerateConfig converts the field section into a field.GenerateConfig.
func (c *Config) GenerateConfig() field.GenerateConfig {
	return field.GenerateConfig{
		Count:  c.FieldCfg.Count,
		Radius: c.FieldCfg.Radius,
		Width:  c.FieldCfg.Width,
		Height: c.FieldCfg.Height,
	}
}

// RunConfig converts the sim and weights sections into a sim.Config.
func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		DT:        c.SimCfg.DT,
		Lookahead: c.SimCfg.Lookahead,
		Weights: planner.Weights{
			ObstacleWeight: c.WeightsCfg.ObstacleWeight,
			SafeDistance:   c.WeightsCfg.SafeDistance,
			FwdWeight:      c.WeightsCfg.FwdWeight,
		},
		TickRate: c.SimCfg.TickRate,
	}
}
