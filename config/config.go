// Package config provides configuration loading for the plant simulation:
// YAML parameter files are merged over embedded defaults and turned into a
// registered prototype set plus a planted seed organ.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sprout/growth"
	"github.com/pthm-cable/sprout/plant"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Sim    SimConfig    `yaml:"sim"`
	Seed   SeedConfig   `yaml:"seed"`
	Roots  []AxisConfig `yaml:"roots"`
	Stems  []AxisConfig `yaml:"stems"`
	Leaves []AxisConfig `yaml:"leaves"`
}

// SimConfig holds run parameters.
type SimConfig struct {
	Days float64 `yaml:"days"` // simulated span [days]
	DT   float64 `yaml:"dt"`   // step size [days]
}

// SeedConfig holds the seed prototype parameters.
type SeedConfig struct {
	SubType      int         `yaml:"subtype"`
	Name         string      `yaml:"name"`
	Position     []float64   `yaml:"position"` // x, y, z [cm]
	FirstBasal   growth.Norm `yaml:"first_basal"`
	BasalDelay   growth.Norm `yaml:"basal_delay"`
	MaxBasals    int         `yaml:"max_basals"`
	BasalSubType int         `yaml:"basal_subtype"`
	StemSubType  int         `yaml:"stem_subtype"` // 0 or negative = no shoot
	FirstStem    growth.Norm `yaml:"first_stem"`
}

// AxisConfig holds one axial (root, stem or leaf) subtype prototype.
// Angles are degrees in the file, radians once realized. A successor of 0
// or below means the subtype bears no laterals.
type AxisConfig struct {
	SubType      int         `yaml:"subtype"`
	Name         string      `yaml:"name"`
	LB           growth.Norm `yaml:"lb"`
	LA           growth.Norm `yaml:"la"`
	LN           growth.Norm `yaml:"ln"`
	MaxLength    growth.Norm `yaml:"max_length"`
	R            growth.Norm `yaml:"r"`
	ThetaDeg     growth.Norm `yaml:"theta_deg"`
	Delay        growth.Norm `yaml:"delay"`
	Dx           float64     `yaml:"dx"`
	Sigma        float64     `yaml:"sigma"`
	Gravitropism float64     `yaml:"gravitropism"`
	Successor    int         `yaml:"successor"`
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Apply registers every configured prototype on the organism.
func (c *Config) Apply(o *plant.Organism) error {
	seedTP := growth.NewSeedTypeParameter(o, c.Seed.SubType, c.Seed.Name)
	switch len(c.Seed.Position) {
	case 0:
	case 3:
		seedTP.Position = plant.Vec3{X: c.Seed.Position[0], Y: c.Seed.Position[1], Z: c.Seed.Position[2]}
	default:
		return fmt.Errorf("config: seed position needs 3 components, got %d", len(c.Seed.Position))
	}
	seedTP.FirstBasal = c.Seed.FirstBasal
	seedTP.BasalDelay = c.Seed.BasalDelay
	seedTP.MaxBasals = c.Seed.MaxBasals
	seedTP.BasalSubType = c.Seed.BasalSubType
	seedTP.StemSubType = c.Seed.StemSubType
	if seedTP.StemSubType <= 0 {
		seedTP.StemSubType = -1
	}
	seedTP.FirstStem = c.Seed.FirstStem
	o.SetTypeParameter(seedTP)

	for _, rc := range c.Roots {
		tp := growth.NewRootTypeParameter(o, rc.SubType, rc.Name)
		applyAxis(tp, rc)
		o.SetTypeParameter(tp)
	}
	for _, sc := range c.Stems {
		tp := growth.NewStemTypeParameter(o, sc.SubType, sc.Name)
		applyAxis(tp, sc)
		o.SetTypeParameter(tp)
	}
	for _, lc := range c.Leaves {
		tp := growth.NewLeafTypeParameter(o, lc.SubType, lc.Name)
		applyAxis(tp, lc)
		o.SetTypeParameter(tp)
	}
	return nil
}

// axisTarget is the writable view shared by the three axial prototype kinds.
type axisTarget interface {
	SetAxis(lb, la, ln, maxLength, r, theta, delay growth.Norm, dx, sigma, gravi float64, successor int)
}

func applyAxis(tp axisTarget, ac AxisConfig) {
	successor := ac.Successor
	if successor <= 0 {
		successor = -1
	}
	theta := growth.Norm{
		Mean: ac.ThetaDeg.Mean * math.Pi / 180,
		SD:   ac.ThetaDeg.SD * math.Pi / 180,
	}
	tp.SetAxis(ac.LB, ac.LA, ac.LN, ac.MaxLength, ac.R, theta, ac.Delay, ac.Dx, ac.Sigma, ac.Gravitropism, successor)
}

// BuildOrganism creates a seeded organism from the configuration: the
// prototypes are registered and the seed organ is planted. The random seed
// is applied before any prototype realization so runs are reproducible.
func (c *Config) BuildOrganism(seed uint64) (*plant.Organism, error) {
	o := plant.NewOrganism()
	o.SetSeed(seed)
	if err := c.Apply(o); err != nil {
		return nil, err
	}
	if _, err := growth.PlantSeed(o, c.Seed.SubType); err != nil {
		return nil, err
	}
	return o, nil
}
