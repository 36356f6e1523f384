package growth

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/pthm-cable/sprout/plant"
)

// TargetLength is the negative exponential elongation law: the length an
// axial organ of initial rate r and asymptotic length k reaches after t
// active days.
func TargetLength(r, k, t float64) float64 {
	if t <= 0 || k <= 0 {
		return 0
	}
	return k * (1 - math.Exp(-(r/k)*t))
}

// RootPolicy grows roots: downward tropism, laterals of the successor
// subtype in the branching zone.
type RootPolicy struct{}

// Advance implements plant.GrowthPolicy.
func (RootPolicy) Advance(o *plant.Organ, dt float64) error {
	return advanceAxis(o, dt, plant.Vec3{Z: -1}, plant.KindRoot, RootPolicy{})
}

// StemPolicy grows stems: upward tropism, leaves as laterals.
type StemPolicy struct{}

// Advance implements plant.GrowthPolicy.
func (StemPolicy) Advance(o *plant.Organ, dt float64) error {
	return advanceAxis(o, dt, plant.Vec3{Z: 1}, plant.KindLeaf, LeafPolicy{})
}

// LeafPolicy elongates leaves; a configured successor yields leaflets.
type LeafPolicy struct{}

// Advance implements plant.GrowthPolicy.
func (LeafPolicy) Advance(o *plant.Organ, dt float64) error {
	return advanceAxis(o, dt, plant.Vec3{Z: 1}, plant.KindLeaf, LeafPolicy{})
}

// advanceAxis is the shared axial step: elongate along the current heading,
// reposition the tip while the unrecorded growth stays below the realized
// resolution, append nodes once it reaches it, then spawn laterals whose
// branch points the apical front has passed.
func advanceAxis(o *plant.Organ, dt float64, gravity plant.Vec3, childKind plant.Kind, childPolicy plant.GrowthPolicy) error {
	p, ok := o.Param().(*AxisParameter)
	if !ok {
		return fmt.Errorf("growth: organ %d carries %T, want *AxisParameter", o.ID(), o.Param())
	}
	t := o.Age() - o.Delay()
	if t <= 0 {
		return nil
	}

	target := TargetLength(p.R, p.K, t)
	delta := target - o.Length()
	if delta > 0 {
		o.SetLength(target)
		elongate(o, p, delta, gravity, dt)
	}
	if p.K-o.Length() < p.Dx {
		o.Deactivate()
	}

	if p.Successor >= 0 {
		if err := branch(o, p, childKind, childPolicy); err != nil {
			return err
		}
	}
	return nil
}

// elongate moves geometry forward by delta centimeters along the organ's
// heading. The last node acts as the growing tip: while it stays within the
// resolution dx of the last fixed node it is repositioned in place;
// beyond dx the tip freezes and new nodes are appended up to the target.
// A freshly branched organ appends its first own node immediately so the
// attachment node it shares with the parent never drifts.
func elongate(o *plant.Organ, p *AxisParameter, delta float64, gravity plant.Vec3, dt float64) {
	rnd := o.Plant().Rand()
	dir := heading(o, p, gravity, rnd)
	ct := o.Plant().Time() + dt

	n := o.NumberOfNodes()
	tip := o.Node(n - 1)
	targetPos := tip.Add(dir.Scale(delta))

	if n == 1 && o.Parent() != nil {
		o.AddNode(targetPos, ct)
		return
	}

	anchor := o.Origin()
	if n >= 2 {
		anchor = o.Node(n - 2)
	}
	if targetPos.Dist(anchor) < p.Dx {
		o.MoveTip(targetPos)
		return
	}

	m := int(targetPos.Dist(anchor) / p.Dx)
	if m < 1 {
		m = 1
	}
	step := dir.Scale(delta / float64(m))
	pos := tip
	for i := 0; i < m; i++ {
		pos = pos.Add(step)
		o.AddNode(pos, ct)
	}
}

// branch creates laterals whose branch point the apical front has passed:
// lateral i sits at lb + i*ln along the axis and emerges once the length
// minus the apical zone reaches it.
func branch(o *plant.Organ, p *AxisParameter, childKind plant.Kind, childPolicy plant.GrowthPolicy) error {
	if p.LN <= 0 {
		return nil
	}
	for {
		i := o.NumberOfChildren()
		at := p.LB + float64(i)*p.LN
		if at+p.LA > p.K || o.Length()-p.LA < at {
			return nil
		}
		if _, err := plant.NewOrgan(o.Plant(), o, childKind, childPolicy, p.Successor, p.Delay); err != nil {
			return err
		}
	}
}

// heading returns the unit growth direction for this advance: the last
// recorded segment direction (or the insertion direction for organs without
// own geometry), randomly perturbed and pulled toward the tropism axis.
func heading(o *plant.Organ, p *AxisParameter, gravity plant.Vec3, rnd *rand.Rand) plant.Vec3 {
	var dir plant.Vec3
	n := o.NumberOfNodes()
	switch {
	case n >= 2:
		dir = o.Node(n - 1).Sub(o.Node(n - 2)).Normalize()
		if dir == (plant.Vec3{}) {
			dir = gravity
		}
	case o.Parent() != nil:
		dir = rotateAway(parentHeading(o.Parent(), gravity), p.Theta, p.Azimuth)
	default:
		dir = rotateAway(gravity, p.Theta, p.Azimuth)
	}
	if p.Sigma > 0 {
		dir = rotateAway(dir, rnd.NormFloat64()*p.Sigma, rnd.Float64()*2*math.Pi)
	}
	if p.Gravi > 0 {
		dir = dir.Add(gravity.Scale(p.Gravi)).Normalize()
	}
	return dir
}

// parentHeading is the direction of the parent's most recent segment, or the
// tropism axis if the parent has no segments yet.
func parentHeading(parent *plant.Organ, fallback plant.Vec3) plant.Vec3 {
	n := parent.NumberOfNodes()
	if n < 2 {
		return fallback
	}
	dir := parent.Node(n - 1).Sub(parent.Node(n - 2)).Normalize()
	if dir == (plant.Vec3{}) {
		return fallback
	}
	return dir
}

// rotateAway tilts axis by theta, at the given azimuth around it.
func rotateAway(axis plant.Vec3, theta, azimuth float64) plant.Vec3 {
	axis = axis.Normalize()
	if axis == (plant.Vec3{}) {
		axis = plant.Vec3{Z: -1}
	}
	u := orthogonal(axis)
	v := axis.Cross(u)
	radial := u.Scale(math.Cos(azimuth)).Add(v.Scale(math.Sin(azimuth)))
	return axis.Scale(math.Cos(theta)).Add(radial.Scale(math.Sin(theta))).Normalize()
}

// orthogonal returns a unit vector perpendicular to v.
func orthogonal(v plant.Vec3) plant.Vec3 {
	ref := plant.Vec3{X: 1}
	if math.Abs(v.X) > 0.9 {
		ref = plant.Vec3{Y: 1}
	}
	return v.Cross(ref).Normalize()
}

// SeedPolicy drives the seed organ: it emits basal roots on the realized
// schedule and, when configured, a single shoot, then stops.
type SeedPolicy struct{}

// Advance implements plant.GrowthPolicy.
func (SeedPolicy) Advance(o *plant.Organ, dt float64) error {
	p, ok := o.Param().(*SeedParameter)
	if !ok {
		return fmt.Errorf("growth: organ %d carries %T, want *SeedParameter", o.ID(), o.Param())
	}
	t := o.Age() - o.Delay()

	basals := 0
	hasStem := false
	for i := 0; i < o.NumberOfChildren(); i++ {
		if o.Child(i).OrganKind() == plant.KindStem {
			hasStem = true
		} else {
			basals++
		}
	}

	for basals < p.MaxBasals && t >= p.FirstBasal+float64(basals)*p.BasalDelay {
		if _, err := plant.NewOrgan(o.Plant(), o, plant.KindRoot, RootPolicy{}, p.BasalSubType, 0); err != nil {
			return err
		}
		basals++
	}
	if p.StemSubType >= 0 && !hasStem && t >= p.FirstStem {
		if _, err := plant.NewOrgan(o.Plant(), o, plant.KindStem, StemPolicy{}, p.StemSubType, 0); err != nil {
			return err
		}
		hasStem = true
	}
	if basals >= p.MaxBasals && (p.StemSubType < 0 || hasStem) {
		o.Deactivate()
	}
	return nil
}

// PlantSeed registers nothing; it creates the seed base organ at the
// position prescribed by the registered seed prototype and adopts it.
func PlantSeed(o *plant.Organism, subType int) (*plant.Organ, error) {
	seed, err := plant.NewOrgan(o, nil, plant.KindSeed, SeedPolicy{}, subType, 0)
	if err != nil {
		return nil, err
	}
	sp, ok := seed.Param().(*SeedParameter)
	if !ok {
		return nil, fmt.Errorf("growth: seed organ carries %T, want *SeedParameter", seed.Param())
	}
	seed.SetBaseNode(sp.Position, o.Time())
	o.AddOrgan(seed)
	return seed, nil
}
