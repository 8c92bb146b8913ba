package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/molgraph/pkg/mol"
	"github.com/sanonone/molgraph/pkg/mol/spatial"
)

// Config is the YAML configuration of an engine and the entities it builds
// at startup.
type Config struct {
	LogLevel            string         `yaml:"log_level"`
	CellSize            float64        `yaml:"cell_size"`
	EnableICS           bool           `yaml:"enable_ics"`
	MaintenanceInterval time.Duration  `yaml:"maintenance_interval"`
	Entities            []EntityConfig `yaml:"entities"`
}

// EntityConfig describes one entity built from backbone sequences.
type EntityConfig struct {
	Name   string        `yaml:"name"`
	Chains []ChainConfig `yaml:"chains"`
}

// ChainConfig is one polypeptide chain. Geometry fields left at zero take
// their value from DefaultGeometry.
type ChainConfig struct {
	Name     string    `yaml:"name"`
	Sequence string    `yaml:"sequence"`
	Geometry *Geometry `yaml:"geometry"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		CellSize:  spatial.DefaultCellSize,
		EnableICS: true,
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Environment variables in
// the file are expanded and unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration '%s': %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.CellSize < 0 {
		return fmt.Errorf("cell_size must not be negative, got %g", c.CellSize)
	}
	if c.MaintenanceInterval < 0 {
		return fmt.Errorf("maintenance_interval must not be negative, got %s", c.MaintenanceInterval)
	}
	seen := make(map[string]bool)
	for _, ec := range c.Entities {
		if ec.Name == "" {
			return fmt.Errorf("entity without a name")
		}
		if seen[ec.Name] {
			return fmt.Errorf("duplicate entity %q", ec.Name)
		}
		seen[ec.Name] = true
		for _, cc := range ec.Chains {
			if cc.Sequence == "" {
				return fmt.Errorf("entity %q chain %q: empty sequence", ec.Name, cc.Name)
			}
		}
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels. An empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// Options converts the configuration into engine options.
func (c *Config) Options(log *slog.Logger) Options {
	return Options{
		CellSize:            c.CellSize,
		EnableICS:           c.EnableICS,
		MaintenanceInterval: c.MaintenanceInterval,
		Logger:              log,
	}
}

// geometry overlays the non-zero fields of cc.Geometry on DefaultGeometry.
func (cc ChainConfig) geometry() Geometry {
	g := DefaultGeometry()
	o := cc.Geometry
	if o == nil {
		return g
	}
	for _, f := range []struct {
		dst *float64
		src float64
	}{
		{&g.NCA, o.NCA}, {&g.CAC, o.CAC}, {&g.CO, o.CO}, {&g.CN, o.CN},
		{&g.NCAC, o.NCAC}, {&g.CACN, o.CACN}, {&g.CNCA, o.CNCA}, {&g.CACO, o.CACO},
		{&g.Phi, o.Phi}, {&g.Psi, o.Psi}, {&g.Omega, o.Omega},
	} {
		if f.src != 0 {
			*f.dst = f.src
		}
	}
	return g
}

// Populate creates and builds every entity in cfg. An entity whose build
// fails is removed again.
func (e *Engine) Populate(cfg *Config) error {
	for _, ec := range cfg.Entities {
		if err := e.CreateEntity(ec.Name); err != nil {
			return err
		}
		err := e.WithEntity(ec.Name, func(ent *mol.Entity) error {
			for i, cc := range ec.Chains {
				seq, err := ParseSequence(cc.Sequence)
				if err != nil {
					return fmt.Errorf("chain %q: %w", cc.Name, err)
				}
				name := cc.Name
				if name == "" {
					name = string(rune('A' + i))
				}
				if _, err := BuildBackbone(ent, name, seq, cc.geometry()); err != nil {
					return fmt.Errorf("chain %q: %w", name, err)
				}
			}
			return nil
		})
		if err != nil {
			_ = e.DeleteEntity(ec.Name)
			return fmt.Errorf("entity %q: %w", ec.Name, err)
		}
		e.log.Info("[Engine] entity built", "name", ec.Name, "chains", len(ec.Chains))
	}
	return nil
}
