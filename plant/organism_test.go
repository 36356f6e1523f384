package plant

import (
	"errors"
	"testing"
)

func TestOrganism_TypeParameterMissing(t *testing.T) {
	o := newTestOrganism()
	_, err := o.TypeParameter(KindStem, 1)
	if !errors.Is(err, ErrNoTypeParameter) {
		t.Errorf("TypeParameter(stem, 1) error = %v, want ErrNoTypeParameter", err)
	}

	if _, err := NewOrgan(o, nil, KindStem, straightPolicy{}, 1, 0); !errors.Is(err, ErrNoTypeParameter) {
		t.Errorf("NewOrgan without prototype: error = %v, want ErrNoTypeParameter", err)
	}
	if o.NumberOfOrgans() != 0 {
		t.Errorf("failed construction consumed an organ id: NumberOfOrgans = %d", o.NumberOfOrgans())
	}
}

func TestOrganism_SetTypeParameterReplaces(t *testing.T) {
	o := NewOrganism()
	o.SetTypeParameter(NewBaseTypeParameter(o, KindRoot, 1, "first"))
	o.SetTypeParameter(NewBaseTypeParameter(o, KindRoot, 1, "second"))

	tp, err := o.TypeParameter(KindRoot, 1)
	if err != nil {
		t.Fatalf("TypeParameter: %v", err)
	}
	if tp.Name() != "second" {
		t.Errorf("prototype name = %q, want %q", tp.Name(), "second")
	}
}

func TestOrganism_TypeParametersSorted(t *testing.T) {
	o := NewOrganism()
	for _, sub := range []int{3, 1, 2} {
		o.SetTypeParameter(NewBaseTypeParameter(o, KindRoot, sub, "r"))
	}
	tps := o.TypeParameters(KindRoot)
	if len(tps) != 3 {
		t.Fatalf("got %d prototypes, want 3", len(tps))
	}
	for i, want := range []int{1, 2, 3} {
		if tps[i].SubType() != want {
			t.Errorf("prototype %d subtype = %d, want %d", i, tps[i].SubType(), want)
		}
	}
}

// A tip advancing below the resolution must surface as a repositioned node,
// not a new one; once the advance crosses the resolution the tip freezes and
// the appended node is the only new one.
func TestSimulate_TipMoveThenAppend(t *testing.T) {
	o := newTestOrganism()
	org := newBaseRoot(t, o, straightPolicy{rate: 0.6, dx: 1})

	if err := o.Simulate(1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if n := o.NumberOfNewNodes(); n != 0 {
		t.Errorf("step 1: NumberOfNewNodes = %d, want 0", n)
	}
	ids := o.UpdatedNodeIndices()
	if len(ids) != 1 || ids[0] != org.NodeID(0) {
		t.Fatalf("step 1: UpdatedNodeIndices = %v, want [%d]", ids, org.NodeID(0))
	}
	moved := o.UpdatedNodes()
	if want := (Vec3{Z: -0.6}); moved[0] != want {
		t.Errorf("step 1: UpdatedNodes[0] = %v, want %v", moved[0], want)
	}

	if err := o.Simulate(1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if n := o.NumberOfNewNodes(); n != 1 {
		t.Errorf("step 2: NumberOfNewNodes = %d, want 1", n)
	}
	if ids := o.UpdatedNodeIndices(); len(ids) != 0 {
		t.Errorf("step 2: UpdatedNodeIndices = %v, want none", ids)
	}
	nv := o.NewNodes()
	if want := (Vec3{Z: -1.2}); len(nv) != 1 || nv[0] != want {
		t.Errorf("step 2: NewNodes = %v, want [%v]", nv, want)
	}
	cts := o.NewNodeCTs()
	if len(cts) != 1 || cts[0] != 2 {
		t.Errorf("step 2: NewNodeCTs = %v, want [2]", cts)
	}
}

func TestSimulate_NewNodesDense(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4})
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4, branchAt: 2})
	for i := 0; i < 5; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate step %d: %v", i, err)
		}

		nv := o.NewNodes()
		if len(nv) != o.NumberOfNewNodes() {
			t.Fatalf("step %d: len(NewNodes) = %d, want %d", i, len(nv), o.NumberOfNewNodes())
		}
		old := o.NumberOfNodes() - o.NumberOfNewNodes()
		o.eachOrgan(func(org *Organ) {
			for j := org.StepStartNodes(); j < org.NumberOfNodes(); j++ {
				slot := org.NodeID(j) - old
				if nv[slot] != org.Node(j) {
					t.Errorf("step %d: NewNodes[%d] = %v, want organ %d node %d = %v",
						i, slot, nv[slot], org.ID(), j, org.Node(j))
				}
			}
		})
	}
}

func TestSimulate_NewSegmentsMatchNewNodes(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4, branchAt: 2})
	for i := 0; i < 6; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate step %d: %v", i, err)
		}
		segs := o.NewSegments(KindAny)
		if len(segs) != o.NumberOfNewNodes() {
			t.Errorf("step %d: %d new segments, want %d (one per appended node)",
				i, len(segs), o.NumberOfNewNodes())
		}
		origins := o.NewSegmentOrigins(KindAny)
		cts := o.NewSegmentCTs(KindAny)
		if len(origins) != len(segs) || len(cts) != len(segs) {
			t.Fatalf("step %d: misaligned new-segment queries: %d segs, %d origins, %d cts",
				i, len(segs), len(origins), len(cts))
		}
		old := o.NumberOfNodes() - o.NumberOfNewNodes()
		for j, s := range segs {
			if s.B < old {
				t.Errorf("step %d: new segment %d ends at pre-step node %d", i, j, s.B)
			}
		}
	}
}

func TestOrganism_NodesDense(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4, branchAt: 2})

	// A dormant base organ contributes only its attachment node.
	dormant, err := NewOrgan(o, nil, KindRoot, straightPolicy{rate: 1, dx: 0.4}, 1, 100)
	if err != nil {
		t.Fatalf("NewOrgan: %v", err)
	}
	dormant.SetBaseNode(Vec3{X: 5}, 0)
	o.AddOrgan(dormant)

	for i := 0; i < 6; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate step %d: %v", i, err)
		}
	}

	nodes := o.Nodes()
	cts := o.NodeCTs()
	if len(nodes) != o.NumberOfNodes() || len(cts) != o.NumberOfNodes() {
		t.Fatalf("dense arrays sized %d/%d, want %d", len(nodes), len(cts), o.NumberOfNodes())
	}
	if nodes[dormant.NodeID(0)] != (Vec3{X: 5}) {
		t.Errorf("dormant attachment missing from Nodes: got %v", nodes[dormant.NodeID(0)])
	}
	o.eachOrgan(func(org *Organ) {
		for i := 0; i < org.NumberOfNodes(); i++ {
			if nodes[org.NodeID(i)] != org.Node(i) {
				t.Errorf("Nodes[%d] = %v, want organ %d node %d = %v",
					org.NodeID(i), nodes[org.NodeID(i)], org.ID(), i, org.Node(i))
			}
			if cts[org.NodeID(i)] != org.NodeCT(i) {
				t.Errorf("NodeCTs[%d] = %v, want %v", org.NodeID(i), cts[org.NodeID(i)], org.NodeCT(i))
			}
		}
	})
}

func TestOrganism_OrgansExcludesBareOrgans(t *testing.T) {
	o := newTestOrganism()
	org := newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4})
	if got := o.Organs(KindAny); len(got) != 0 {
		t.Errorf("one-node organ listed: %v", got)
	}
	if err := o.Simulate(1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	got := o.Organs(KindAny)
	if len(got) != 1 || got[0] != org {
		t.Errorf("Organs = %v, want the grown base organ only", got)
	}
	if got := o.Organs(KindStem); len(got) != 0 {
		t.Errorf("Organs(stem) = %v, want none", got)
	}
}

func TestOrganism_NewOrgansCounted(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4, branchAt: 2})

	if err := o.Simulate(1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if n := o.NumberOfNewOrgans(); n != 0 {
		t.Errorf("step 1: NumberOfNewOrgans = %d, want 0", n)
	}
	if err := o.Simulate(1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if n := o.NumberOfNewOrgans(); n != 1 {
		t.Errorf("step 2: NumberOfNewOrgans = %d, want 1", n)
	}
	if o.NumberOfOrgans() != 2 {
		t.Errorf("NumberOfOrgans = %d, want 2", o.NumberOfOrgans())
	}
}

func TestOrganism_SummedLength(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4})
	newBaseRoot(t, o, straightPolicy{rate: 0.5, dx: 0.4})
	for i := 0; i < 4; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
	}
	var want float64
	for _, v := range o.Parameter("length", KindAny) {
		want += v
	}
	if got := o.Summed("length", KindAny); got != want {
		t.Errorf("Summed(length) = %v, want %v", got, want)
	}
	if got, want := o.Summed("length", KindAny), 4.0+2.0; got != want {
		t.Errorf("Summed(length) = %v, want %v", got, want)
	}
}

func TestOrganism_SegmentQueriesAligned(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4, branchAt: 2})
	for i := 0; i < 6; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
	}
	segs := o.Segments(KindAny)
	cts := o.SegmentCTs(KindAny)
	origins := o.SegmentOrigins(KindAny)
	if len(segs) != o.NumberOfSegments(KindAny) {
		t.Fatalf("len(Segments) = %d, want %d", len(segs), o.NumberOfSegments(KindAny))
	}
	if len(cts) != len(segs) || len(origins) != len(segs) {
		t.Fatalf("misaligned segment queries: %d segs, %d cts, %d origins", len(segs), len(cts), len(origins))
	}
	nodeCTs := o.NodeCTs()
	for i, s := range segs {
		if cts[i] != nodeCTs[s.B] {
			t.Errorf("segment %d ct = %v, want second node's ct %v", i, cts[i], nodeCTs[s.B])
		}
	}
}

func TestOrganism_CopyIndependent(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4, jitter: 0.05, branchAt: 2})
	for i := 0; i < 3; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
	}

	c := o.Copy()
	nodesBefore := c.NumberOfNodes()
	if err := o.Simulate(1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if c.NumberOfNodes() != nodesBefore {
		t.Errorf("stepping the original grew the copy: %d -> %d nodes", nodesBefore, c.NumberOfNodes())
	}
	if c.BaseOrgans()[0].Plant() != c {
		t.Error("copied base organ is not rebound to the copy")
	}
}

func TestOrganism_CopyDeterministic(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, straightPolicy{rate: 1, dx: 0.4, jitter: 0.05, branchAt: 2})
	for i := 0; i < 3; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
	}

	c := o.Copy()
	for i := 0; i < 5; i++ {
		if err := o.Simulate(1); err != nil {
			t.Fatalf("Simulate original: %v", err)
		}
		if err := c.Simulate(1); err != nil {
			t.Fatalf("Simulate copy: %v", err)
		}
	}

	if o.NumberOfNodes() != c.NumberOfNodes() || o.NumberOfOrgans() != c.NumberOfOrgans() {
		t.Fatalf("diverged: %d/%d nodes, %d/%d organs",
			o.NumberOfNodes(), c.NumberOfNodes(), o.NumberOfOrgans(), c.NumberOfOrgans())
	}
	on, cn := o.Nodes(), c.Nodes()
	for i := range on {
		if on[i] != cn[i] {
			t.Fatalf("node %d diverged: %v vs %v", i, on[i], cn[i])
		}
	}
	if o.Time() != c.Time() {
		t.Errorf("time diverged: %v vs %v", o.Time(), c.Time())
	}
}

type failPolicy struct{}

func (failPolicy) Advance(*Organ, float64) error {
	return errors.New("boom")
}

func TestSimulate_PolicyErrorPropagates(t *testing.T) {
	o := newTestOrganism()
	newBaseRoot(t, o, failPolicy{})
	if err := o.Simulate(1); err == nil {
		t.Error("Simulate with failing policy: expected error, got nil")
	}
}
