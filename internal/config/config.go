// Package config loads the poolsim run configuration from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"poolsim/internal/fault"
	"poolsim/internal/fixedtext"
	"poolsim/internal/fuel"
	"poolsim/internal/record"
)

// Config holds all poolsim configuration.
type Config struct {
	Name string `yaml:"name"`

	// Inventory database input
	Inventory InventoryConfig `yaml:"inventory"`

	// Simulated range and relocation plans
	Simulation SimulationConfig `yaml:"simulation"`

	// Transport container packing
	Container ContainerConfig `yaml:"container"`

	// Result persistence
	Output OutputConfig `yaml:"output"`

	Logging LoggingConfig `yaml:"logging"`
}

// InventoryConfig configures the inventory file reader.
type InventoryConfig struct {
	Path       string `yaml:"path"`
	RecordSize int    `yaml:"record_size"`
	CodePage   string `yaml:"codepage"`
	Workers    int    `yaml:"workers"` // parallel decoders; 0 or 1 decodes sequentially
}

// SimulationConfig configures the day-stepped run.
type SimulationConfig struct {
	Begin string `yaml:"begin"` // dd.mm.yyyy, first simulated day
	End   string `yaml:"end"`   // dd.mm.yyyy, last simulated day

	// Instruction ids containing this marker are excluded from every plan.
	SimulatorMarker string `yaml:"simulator_marker"`

	// Escalate shipment of assemblies outside every section to a fatal error.
	StrictShipment bool `yaml:"strict_shipment"`

	Stages StagesConfig `yaml:"stages"`
}

// StagesConfig holds the three relocation stages in execution order.
type StagesConfig struct {
	Unload   StageConfig `yaml:"unload"`
	Reload   StageConfig `yaml:"reload"`
	Shipment StageConfig `yaml:"shipment"`
}

// StageConfig is one stage's window and instruction files. A stage without instructions is skipped.
type StageConfig struct {
	Begin        string `yaml:"begin"` // dd.mm.yyyy HH:MM
	End          string `yaml:"end"`
	Instructions string `yaml:"instructions"`
	Backup       string `yaml:"backup"`
	Override     string `yaml:"override"`
}

// Enabled reports whether the stage has a primary instruction file.
func (s StageConfig) Enabled() bool { return s.Instructions != "" }

// Window parses the stage's boundaries.
func (s StageConfig) Window() (begin, end time.Time, err error) {
	if begin, err = fuel.ParseTimestamp(s.Begin); err != nil {
		return begin, end, fmt.Errorf("stage begin %q: %w", s.Begin, err)
	}
	if end, err = fuel.ParseTimestamp(s.End); err != nil {
		return begin, end, fmt.Errorf("stage end %q: %w", s.End, err)
	}
	return begin, end, nil
}

// ContainerConfig configures the container packer.
type ContainerConfig struct {
	CellOrder string `yaml:"cell_order"` // standard, edge_reserved
}

// OutputConfig configures where results go.
type OutputConfig struct {
	Database     string `yaml:"database"`
	StateFile    string `yaml:"state_file"`   // optional inventory snapshot after the last day
	Instructions string `yaml:"instructions"` // optional relocation file appended by pack
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "poolsim",

		Inventory: InventoryConfig{
			Path:       "input/initial_state",
			RecordSize: record.Size,
			CodePage:   fixedtext.DefaultCodePage,
			Workers:    4,
		},

		Simulation: SimulationConfig{
			SimulatorMarker: "ИМИТ",
		},

		Container: ContainerConfig{
			CellOrder: "standard",
		},

		Output: OutputConfig{
			Database: "output/poolsim.db",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("POOLSIM_INVENTORY"); path != "" {
		c.Inventory.Path = path
	}
	if cp := os.Getenv("POOLSIM_CODEPAGE"); cp != "" {
		c.Inventory.CodePage = cp
	}
	if n := os.Getenv("POOLSIM_WORKERS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			c.Inventory.Workers = v
		}
	}
	if path := os.Getenv("POOLSIM_DB"); path != "" {
		c.Output.Database = path
	}
	if level := os.Getenv("POOLSIM_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// DateRange parses the simulated day range.
func (c *Config) DateRange() (begin, end time.Time, err error) {
	if begin, err = fuel.ParseDate(c.Simulation.Begin); err != nil {
		return begin, end, fault.Wrap(fault.KindConfig, "simulation.begin", err)
	}
	if end, err = fuel.ParseDate(c.Simulation.End); err != nil {
		return begin, end, fault.Wrap(fault.KindConfig, "simulation.end", err)
	}
	return begin, end, nil
}

// Validate checks the configuration. Every failure is a ConfigError.
func (c *Config) Validate() error {
	if c.Inventory.Path == "" {
		return fault.New(fault.KindConfig, "inventory.path", "not set")
	}
	if c.Inventory.RecordSize <= 0 {
		return fault.New(fault.KindConfig, "inventory.record_size", "must be positive, got %d", c.Inventory.RecordSize)
	}
	if c.Inventory.Workers < 0 {
		return fault.New(fault.KindConfig, "inventory.workers", "must not be negative, got %d", c.Inventory.Workers)
	}
	if _, err := fixedtext.LookupCodePage(c.Inventory.CodePage); err != nil {
		return err
	}
	if c.Simulation.Begin != "" || c.Simulation.End != "" {
		begin, end, err := c.DateRange()
		if err != nil {
			return err
		}
		if end.Before(begin) {
			return fault.New(fault.KindConfig, "simulation", "end %s precedes begin %s", c.Simulation.End, c.Simulation.Begin)
		}
	}
	stages := map[string]StageConfig{
		"unload":   c.Simulation.Stages.Unload,
		"reload":   c.Simulation.Stages.Reload,
		"shipment": c.Simulation.Stages.Shipment,
	}
	for name, s := range stages {
		if !s.Enabled() {
			continue
		}
		begin, end, err := s.Window()
		if err != nil {
			return fault.Wrap(fault.KindConfig, "simulation.stages."+name, err)
		}
		if !begin.Before(end) {
			return fault.New(fault.KindConfig, "simulation.stages."+name, "window %s - %s is empty", s.Begin, s.End)
		}
	}
	switch c.Container.CellOrder {
	case "", "standard", "edge_reserved":
	default:
		return fault.New(fault.KindConfig, "container.cell_order", "unknown order %q", c.Container.CellOrder)
	}
	return nil
}
