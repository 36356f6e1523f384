package growth

import (
	"math"
	"testing"

	"github.com/pthm-cable/sprout/plant"
)

func TestNorm_Realize(t *testing.T) {
	o := plant.NewOrganism()
	o.SetSeed(3)
	rnd := o.Rand()

	if got := (Norm{Mean: 2.5}).realize(rnd); got != 2.5 {
		t.Errorf("zero spread: realize = %v, want the mean 2.5", got)
	}
	for i := 0; i < 200; i++ {
		if got := (Norm{Mean: 0.1, SD: 2}).realize(rnd); got < 0 {
			t.Fatalf("draw %d: realize = %v, want non-negative", i, got)
		}
	}
}

func TestRealizeAxis(t *testing.T) {
	o := plant.NewOrganism()
	o.SetSeed(3)
	tp := NewRootTypeParameter(o, 4, "r")
	tp.SetAxis(
		Norm{Mean: 1}, Norm{Mean: 2}, Norm{Mean: 3},
		Norm{Mean: 40}, Norm{Mean: 1.5}, Norm{Mean: 0.7}, Norm{Mean: 2},
		0.25, 0.1, 0.3, 5)

	p, ok := tp.Realize().(*AxisParameter)
	if !ok {
		t.Fatalf("Realize returned %T, want *AxisParameter", tp.Realize())
	}
	if p.SubType() != 4 {
		t.Errorf("subtype = %d, want 4", p.SubType())
	}
	if p.LB != 1 || p.LA != 2 || p.LN != 3 || p.K != 40 || p.R != 1.5 {
		t.Errorf("realized traits lost: %+v", p)
	}
	if p.Dx != 0.25 || p.Sigma != 0.1 || p.Gravi != 0.3 || p.Successor != 5 {
		t.Errorf("scalar traits lost: %+v", p)
	}
	if p.Azimuth < 0 || p.Azimuth >= 2*math.Pi {
		t.Errorf("azimuth = %v, want in [0, 2pi)", p.Azimuth)
	}
}

func TestAxisParameter_Value(t *testing.T) {
	p := &AxisParameter{
		BaseParameter: plant.BaseParameter{Sub: 2},
		LB:            1, LA: 2, LN: 3,
		K: 40, R: 1.5, Theta: 0.7, Delay: 2,
		Dx: 0.25, Sigma: 0.1, Azimuth: 1.1,
	}
	tests := []struct {
		name string
		want float64
	}{
		{"lb", 1}, {"la", 2}, {"ln", 3},
		{"k", 40}, {"maxLength", 40},
		{"r", 1.5}, {"theta", 0.7}, {"ldelay", 2},
		{"dx", 0.25}, {"sigma", 0.1}, {"azimuth", 1.1},
		{"subType", 2},
	}
	for _, tt := range tests {
		got, ok := p.Value(tt.name)
		if !ok || got != tt.want {
			t.Errorf("Value(%q) = %v, %v, want %v, true", tt.name, got, ok, tt.want)
		}
	}
	if _, ok := p.Value("noSuchTrait"); ok {
		t.Error("Value(noSuchTrait): expected ok=false")
	}
}

func TestRootTypeParameter_CopyRebindsFields(t *testing.T) {
	o := plant.NewOrganism()
	tp := NewRootTypeParameter(o, 1, "taproot")
	tp.Successor = 2

	o2 := plant.NewOrganism()
	c, ok := tp.Copy(o2).(*RootTypeParameter)
	if !ok {
		t.Fatalf("Copy returned %T, want *RootTypeParameter", tp.Copy(o2))
	}
	if c.Organism() != o2 {
		t.Error("copy not bound to the target organism")
	}
	if c.Successor != 2 {
		t.Errorf("copy successor = %d, want 2", c.Successor)
	}

	// The registry of the copy must point at the copy's own fields.
	*c.Fields()["successor"] = 9
	if c.Successor != 9 {
		t.Errorf("registry write did not reach the copy: successor = %d", c.Successor)
	}
	if tp.Successor != 2 {
		t.Errorf("registry write leaked into the original: successor = %d", tp.Successor)
	}
}

func TestLeafTypeParameter_Successor(t *testing.T) {
	o := plant.NewOrganism()
	o.SetSeed(3)
	tp := NewLeafTypeParameter(o, 1, "leaf")
	if _, ok := tp.Fields()["successor"]; !ok {
		t.Fatal("leaf prototype does not register the successor field")
	}

	tp.Successor = 2
	p, ok := tp.Realize().(*AxisParameter)
	if !ok {
		t.Fatalf("Realize returned %T, want *AxisParameter", tp.Realize())
	}
	if p.Successor != 2 {
		t.Errorf("realized successor = %d, want 2", p.Successor)
	}

	c, ok := tp.Copy(plant.NewOrganism()).(*LeafTypeParameter)
	if !ok {
		t.Fatalf("Copy returned %T, want *LeafTypeParameter", tp.Copy(o))
	}
	*c.Fields()["successor"] = 3
	if c.Successor != 3 {
		t.Errorf("registry write did not reach the copy: successor = %d", c.Successor)
	}
	if tp.Successor != 2 {
		t.Errorf("registry write leaked into the original: successor = %d", tp.Successor)
	}
}

func TestSeedTypeParameter_Realize(t *testing.T) {
	o := plant.NewOrganism()
	o.SetSeed(3)
	tp := NewSeedTypeParameter(o, 1, "seed")
	tp.Position = plant.Vec3{X: 1, Z: -2}
	tp.FirstBasal = Norm{Mean: 1.5}
	tp.BasalDelay = Norm{Mean: 2.5}
	tp.MaxBasals = 5
	tp.BasalSubType = 3
	tp.StemSubType = 2
	tp.FirstStem = Norm{Mean: 4}

	p, ok := tp.Realize().(*SeedParameter)
	if !ok {
		t.Fatalf("Realize returned %T, want *SeedParameter", tp.Realize())
	}
	if p.Position != tp.Position {
		t.Errorf("position = %v, want %v", p.Position, tp.Position)
	}
	if p.FirstBasal != 1.5 || p.BasalDelay != 2.5 || p.FirstStem != 4 {
		t.Errorf("schedule lost: %+v", p)
	}
	if p.MaxBasals != 5 || p.BasalSubType != 3 || p.StemSubType != 2 {
		t.Errorf("subtype wiring lost: %+v", p)
	}
	if v, ok := p.Value("maxBasals"); !ok || v != 5 {
		t.Errorf("Value(maxBasals) = %v, %v, want 5, true", v, ok)
	}
}

func TestSeedTypeParameter_Fields(t *testing.T) {
	o := plant.NewOrganism()
	tp := NewSeedTypeParameter(o, 1, "seed")
	for _, name := range []string{"organType", "subType", "maxBasals", "basalSubType", "stemSubType"} {
		if _, ok := tp.Fields()[name]; !ok {
			t.Errorf("field %q not registered", name)
		}
	}
}
