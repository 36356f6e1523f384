// Package growth provides the reference growth policies and type parameters
// for the seed, root, stem and leaf organ kinds: negative exponential
// elongation, heading perturbation and lateral branching, all driven by
// parameter sets realized from per-subtype prototypes.
package growth

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/sprout/plant"
)

// Norm is a mean/standard-deviation pair. Realization draws a normal deviate
// from the organism's shared source, clamped to be non-negative.
type Norm struct {
	Mean float64 `yaml:"mean"`
	SD   float64 `yaml:"sd"`
}

func (n Norm) realize(rnd *rand.Rand) float64 {
	if n.SD <= 0 {
		return n.Mean
	}
	d := distuv.Normal{Mu: n.Mean, Sigma: n.SD, Src: rnd}
	v := d.Rand()
	if v < 0 {
		v = 0
	}
	return v
}

// axialTraits are the elongation traits shared by every axial organ kind
// (root, stem, leaf).
type axialTraits struct {
	LB        Norm    // basal zone length [cm]
	LA        Norm    // apical zone length [cm]
	LN        Norm    // inter-lateral spacing [cm]
	MaxLength Norm    // asymptotic length k [cm]
	R         Norm    // initial elongation rate [cm/day]
	Theta     Norm    // insertion angle against the parent axis [rad]
	Delay     Norm    // lateral emergence delay [days]
	Dx        float64 // axial resolution: minimum recorded segment length [cm]
	Sigma     float64 // heading perturbation per advance [rad]
	Gravi     float64 // tropism pull toward the kind's gravity axis, 0..1
	Successor int     // lateral subtype, -1 for none
}

// SetAxis overwrites every axial trait at once, for file-based loaders.
func (t *axialTraits) SetAxis(lb, la, ln, maxLength, r, theta, delay Norm, dx, sigma, gravi float64, successor int) {
	t.LB, t.LA, t.LN = lb, la, ln
	t.MaxLength, t.R = maxLength, r
	t.Theta, t.Delay = theta, delay
	t.Dx, t.Sigma, t.Gravi = dx, sigma, gravi
	t.Successor = successor
}

func (t *axialTraits) realizeAxis(sub int, rnd *rand.Rand) *AxisParameter {
	return &AxisParameter{
		BaseParameter: plant.BaseParameter{Sub: sub},
		LB:            t.LB.realize(rnd),
		LA:            t.LA.realize(rnd),
		LN:            t.LN.realize(rnd),
		K:             t.MaxLength.realize(rnd),
		R:             t.R.realize(rnd),
		Theta:         t.Theta.realize(rnd),
		Delay:         t.Delay.realize(rnd),
		Dx:            t.Dx,
		Sigma:         t.Sigma,
		Gravi:         t.Gravi,
		Successor:     t.Successor,
		Azimuth:       rnd.Float64() * 2 * math.Pi,
	}
}

// AxisParameter is the realized parameter set of one axial organ.
type AxisParameter struct {
	plant.BaseParameter
	LB, LA, LN float64
	K, R       float64
	Theta      float64
	Delay      float64
	Dx         float64
	Sigma      float64
	Gravi      float64
	Successor  int
	Azimuth    float64 // radial placement angle around the parent axis [rad]
}

// Value looks up a named scalar of the realized axis.
func (p *AxisParameter) Value(name string) (float64, bool) {
	switch name {
	case "lb":
		return p.LB, true
	case "la":
		return p.LA, true
	case "ln":
		return p.LN, true
	case "k", "maxLength":
		return p.K, true
	case "r":
		return p.R, true
	case "theta":
		return p.Theta, true
	case "ldelay":
		return p.Delay, true
	case "dx":
		return p.Dx, true
	case "sigma":
		return p.Sigma, true
	case "azimuth":
		return p.Azimuth, true
	}
	return p.BaseParameter.Value(name)
}

// Copy returns an independent clone of p.
func (p *AxisParameter) Copy() plant.Parameter {
	c := *p
	return &c
}

// RootTypeParameter prescribes one root subtype.
type RootTypeParameter struct {
	*plant.BaseTypeParameter
	axialTraits
}

// NewRootTypeParameter creates a root prototype with taproot-like defaults.
func NewRootTypeParameter(o *plant.Organism, subType int, name string) *RootTypeParameter {
	tp := &RootTypeParameter{
		BaseTypeParameter: plant.NewBaseTypeParameter(o, plant.KindRoot, subType, name),
		axialTraits: axialTraits{
			LB:        Norm{Mean: 1},
			LA:        Norm{Mean: 10},
			LN:        Norm{Mean: 1.5},
			MaxLength: Norm{Mean: 50},
			R:         Norm{Mean: 1},
			Theta:     Norm{Mean: 70 * math.Pi / 180},
			Delay:     Norm{Mean: 3},
			Dx:        0.25,
			Sigma:     0.2,
			Gravi:     0.3,
			Successor: -1,
		},
	}
	tp.RegisterField("successor", &tp.Successor)
	return tp
}

// Realize draws a fresh root parameter set from the organism's source.
func (tp *RootTypeParameter) Realize() plant.Parameter {
	return tp.realizeAxis(tp.SubType(), tp.Organism().Rand())
}

// Copy deep-clones the prototype bound to o.
func (tp *RootTypeParameter) Copy(o *plant.Organism) plant.TypeParameter {
	c := &RootTypeParameter{
		BaseTypeParameter: tp.CopyBase(o),
		axialTraits:       tp.axialTraits,
	}
	c.RegisterField("successor", &c.Successor)
	return c
}

// StemTypeParameter prescribes one stem subtype. Stems share the axial
// traits of roots but grow against gravity and bear leaves as laterals.
type StemTypeParameter struct {
	*plant.BaseTypeParameter
	axialTraits
}

// NewStemTypeParameter creates a stem prototype.
func NewStemTypeParameter(o *plant.Organism, subType int, name string) *StemTypeParameter {
	tp := &StemTypeParameter{
		BaseTypeParameter: plant.NewBaseTypeParameter(o, plant.KindStem, subType, name),
		axialTraits: axialTraits{
			LB:        Norm{Mean: 2},
			LA:        Norm{Mean: 5},
			LN:        Norm{Mean: 2},
			MaxLength: Norm{Mean: 30},
			R:         Norm{Mean: 1.5},
			Theta:     Norm{Mean: 20 * math.Pi / 180},
			Delay:     Norm{Mean: 2},
			Dx:        0.25,
			Sigma:     0.1,
			Gravi:     0.5,
			Successor: -1,
		},
	}
	tp.RegisterField("successor", &tp.Successor)
	return tp
}

// Realize draws a fresh stem parameter set from the organism's source.
func (tp *StemTypeParameter) Realize() plant.Parameter {
	return tp.realizeAxis(tp.SubType(), tp.Organism().Rand())
}

// Copy deep-clones the prototype bound to o.
func (tp *StemTypeParameter) Copy(o *plant.Organism) plant.TypeParameter {
	c := &StemTypeParameter{
		BaseTypeParameter: tp.CopyBase(o),
		axialTraits:       tp.axialTraits,
	}
	c.RegisterField("successor", &c.Successor)
	return c
}

// LeafTypeParameter prescribes one leaf subtype. A leaf's laterals, when a
// successor is configured, are leaflets of that leaf subtype.
type LeafTypeParameter struct {
	*plant.BaseTypeParameter
	axialTraits
}

// NewLeafTypeParameter creates a leaf prototype.
func NewLeafTypeParameter(o *plant.Organism, subType int, name string) *LeafTypeParameter {
	tp := &LeafTypeParameter{
		BaseTypeParameter: plant.NewBaseTypeParameter(o, plant.KindLeaf, subType, name),
		axialTraits: axialTraits{
			MaxLength: Norm{Mean: 6},
			R:         Norm{Mean: 0.8},
			Theta:     Norm{Mean: 50 * math.Pi / 180},
			Dx:        0.25,
			Sigma:     0.05,
			Gravi:     0.1,
			Successor: -1,
		},
	}
	tp.RegisterField("successor", &tp.Successor)
	return tp
}

// Realize draws a fresh leaf parameter set from the organism's source.
func (tp *LeafTypeParameter) Realize() plant.Parameter {
	return tp.realizeAxis(tp.SubType(), tp.Organism().Rand())
}

// Copy deep-clones the prototype bound to o.
func (tp *LeafTypeParameter) Copy(o *plant.Organism) plant.TypeParameter {
	c := &LeafTypeParameter{
		BaseTypeParameter: tp.CopyBase(o),
		axialTraits:       tp.axialTraits,
	}
	c.RegisterField("successor", &c.Successor)
	return c
}

// SeedTypeParameter prescribes the seed: planting position, basal root
// emission schedule and the optional shoot.
type SeedTypeParameter struct {
	*plant.BaseTypeParameter

	Position     plant.Vec3
	FirstBasal   Norm // days until the first basal root emerges
	BasalDelay   Norm // spacing between successive basal roots [days]
	MaxBasals    int  // number of basal roots the seed emits
	BasalSubType int  // root subtype of the basal roots
	StemSubType  int  // stem subtype of the shoot, -1 for none
	FirstStem    Norm // days until the shoot emerges
}

// NewSeedTypeParameter creates a seed prototype.
func NewSeedTypeParameter(o *plant.Organism, subType int, name string) *SeedTypeParameter {
	tp := &SeedTypeParameter{
		BaseTypeParameter: plant.NewBaseTypeParameter(o, plant.KindSeed, subType, name),
		Position:          plant.Vec3{Z: 0},
		FirstBasal:        Norm{Mean: 1},
		BasalDelay:        Norm{Mean: 3},
		MaxBasals:         4,
		BasalSubType:      1,
		StemSubType:       -1,
		FirstStem:         Norm{Mean: 2},
	}
	tp.RegisterField("maxBasals", &tp.MaxBasals)
	tp.RegisterField("basalSubType", &tp.BasalSubType)
	tp.RegisterField("stemSubType", &tp.StemSubType)
	return tp
}

// Realize draws a fresh seed parameter set from the organism's source.
func (tp *SeedTypeParameter) Realize() plant.Parameter {
	rnd := tp.Organism().Rand()
	return &SeedParameter{
		BaseParameter: plant.BaseParameter{Sub: tp.SubType()},
		Position:      tp.Position,
		FirstBasal:    tp.FirstBasal.realize(rnd),
		BasalDelay:    tp.BasalDelay.realize(rnd),
		MaxBasals:     tp.MaxBasals,
		BasalSubType:  tp.BasalSubType,
		StemSubType:   tp.StemSubType,
		FirstStem:     tp.FirstStem.realize(rnd),
	}
}

// Copy deep-clones the prototype bound to o.
func (tp *SeedTypeParameter) Copy(o *plant.Organism) plant.TypeParameter {
	c := &SeedTypeParameter{
		BaseTypeParameter: tp.CopyBase(o),
		Position:          tp.Position,
		FirstBasal:        tp.FirstBasal,
		BasalDelay:        tp.BasalDelay,
		MaxBasals:         tp.MaxBasals,
		BasalSubType:      tp.BasalSubType,
		StemSubType:       tp.StemSubType,
		FirstStem:         tp.FirstStem,
	}
	c.RegisterField("maxBasals", &c.MaxBasals)
	c.RegisterField("basalSubType", &c.BasalSubType)
	c.RegisterField("stemSubType", &c.StemSubType)
	return c
}

// SeedParameter is the realized parameter set of one seed organ.
type SeedParameter struct {
	plant.BaseParameter
	Position     plant.Vec3
	FirstBasal   float64
	BasalDelay   float64
	MaxBasals    int
	BasalSubType int
	StemSubType  int
	FirstStem    float64
}

// Value looks up a named scalar of the realized seed.
func (p *SeedParameter) Value(name string) (float64, bool) {
	switch name {
	case "firstBasal":
		return p.FirstBasal, true
	case "basalDelay":
		return p.BasalDelay, true
	case "maxBasals":
		return float64(p.MaxBasals), true
	}
	return p.BaseParameter.Value(name)
}

// Copy returns an independent clone of p.
func (p *SeedParameter) Copy() plant.Parameter {
	c := *p
	return &c
}
