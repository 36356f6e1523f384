package plant

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// ErrNoTypeParameter is returned when a prototype lookup hits an
// unregistered (kind, subtype) key. It is a configuration error: organ
// construction must abort rather than fall back to defaults.
var ErrNoTypeParameter = errors.New("no type parameter registered")

// Organism owns a forest of base organs and the type-parameter registry,
// allocates globally unique organ and node ids, drives the simulation step
// and answers whole-tree and per-step delta queries.
//
// The whole organism is single-threaded by contract: one Simulate call walks
// the base organs strictly sequentially, and the shared random source is
// consumed in one totally ordered sequence. Reproducibility depends on that
// ordering.
type Organism struct {
	baseOrgans []*Organ
	params     map[Kind]map[int]TypeParameter

	organID int // next unassigned organ id == organs created so far
	nodeID  int // next unassigned node id == nodes created so far

	simtime float64

	src *rand.PCGSource
	rnd *rand.Rand

	// Pre-step snapshots for delta extraction.
	oldNumberOfNodes  int
	oldNumberOfOrgans int
}

// NewOrganism creates an empty organism with a default-seeded random source.
// Call SetSeed before building the base organs for reproducible runs.
func NewOrganism() *Organism {
	o := &Organism{
		params: make(map[Kind]map[int]TypeParameter),
		src:    &rand.PCGSource{},
	}
	o.src.Seed(0)
	o.rnd = rand.New(o.src)
	return o
}

// SetSeed reseeds the organism's random source. Two organisms seeded
// identically before their base organs are built produce bit-identical
// geometry under identical Simulate sequences.
func (o *Organism) SetSeed(seed uint64) {
	o.src.Seed(seed)
}

// Rand returns the organism's shared random stream. Prototype realization
// and growth policies must draw exclusively from it.
func (o *Organism) Rand() *rand.Rand { return o.rnd }

// SetTypeParameter registers p under its (kind, subtype) key, replacing and
// releasing any prototype previously held there.
func (o *Organism) SetTypeParameter(p TypeParameter) {
	kind := p.OrganKind()
	subs, ok := o.params[kind]
	if !ok {
		subs = make(map[int]TypeParameter)
		o.params[kind] = subs
	}
	subs[p.SubType()] = p
}

// TypeParameter returns the prototype registered for (kind, subType).
// An unregistered key is a configuration error, never a default.
func (o *Organism) TypeParameter(kind Kind, subType int) (TypeParameter, error) {
	if tp, ok := o.params[kind][subType]; ok {
		return tp, nil
	}
	return nil, fmt.Errorf("plant: %w for organ kind %s subtype %d", ErrNoTypeParameter, kind, subType)
}

// TypeParameters returns all prototypes of one kind, ordered by subtype.
func (o *Organism) TypeParameters(kind Kind) []TypeParameter {
	subs := o.params[kind]
	tps := make([]TypeParameter, 0, len(subs))
	for _, tp := range subs {
		tps = append(tps, tp)
	}
	sort.Slice(tps, func(i, j int) bool { return tps[i].SubType() < tps[j].SubType() })
	return tps
}

// AddOrgan adopts a base organ. Insertion order fixes traversal order for
// every query and for the step driver.
func (o *Organism) AddOrgan(organ *Organ) {
	o.baseOrgans = append(o.baseOrgans, organ)
}

// BaseOrgans returns the top-level organs in stored order.
func (o *Organism) BaseOrgans() []*Organ { return o.baseOrgans }

// Simulate advances the organism by dt days. Counters are snapshotted before
// the pass so the delta queries report exactly what this step changed; base
// organs are processed strictly sequentially in stored order.
func (o *Organism) Simulate(dt float64) error {
	o.oldNumberOfNodes = o.nodeID
	o.oldNumberOfOrgans = o.organID
	for _, b := range o.baseOrgans {
		if err := b.Simulate(dt); err != nil {
			return err
		}
	}
	o.simtime += dt
	return nil
}

// Time returns the simulated time [days].
func (o *Organism) Time() float64 { return o.simtime }

// NumberOfOrgans returns the total number of organs ever created.
func (o *Organism) NumberOfOrgans() int { return o.organID }

// NumberOfNodes returns the total number of global node ids assigned.
func (o *Organism) NumberOfNodes() int { return o.nodeID }

// NumberOfNewOrgans returns the organs created during the last step.
func (o *Organism) NumberOfNewOrgans() int { return o.organID - o.oldNumberOfOrgans }

// NumberOfNewNodes returns the nodes appended during the last step.
func (o *Organism) NumberOfNewNodes() int { return o.nodeID - o.oldNumberOfNodes }

// Organs flattens the tree into a sequential list: depth-first, parent
// before children, children in creation order, restricted to organs that
// have produced geometry and match the filter.
func (o *Organism) Organs(filter Kind) []*Organ {
	organs := make([]*Organ, 0, o.organID)
	for _, b := range o.baseOrgans {
		b.Organs(filter, &organs)
	}
	return organs
}

// Parameter returns one scalar per organ of the filtered sequential list,
// NaN for names an organ does not know. Flexible but slow; meant for
// post processing.
func (o *Organism) Parameter(name string, filter Kind) []float64 {
	organs := o.Organs(filter)
	p := make([]float64, len(organs))
	for i, org := range organs {
		p[i] = org.Parameter(name)
	}
	return p
}

// Summed returns the sum of a named scalar over all organs of the filter.
func (o *Organism) Summed(name string, filter Kind) float64 {
	return floats.Sum(o.Parameter(name, filter))
}

// NumberOfSegments returns the total segment count of the filtered organs.
func (o *Organism) NumberOfSegments(filter Kind) int {
	n := 0
	for _, org := range o.Organs(filter) {
		n += org.NumberOfSegments()
	}
	return n
}

// Polylines returns each filtered organ's nodes as its own polyline.
func (o *Organism) Polylines(filter Kind) [][]Vec3 {
	organs := o.Organs(filter)
	lines := make([][]Vec3, len(organs))
	for i, org := range organs {
		lines[i] = append([]Vec3(nil), org.nodes...)
	}
	return lines
}

// PolylineCTs returns the node creation times matching Polylines.
func (o *Organism) PolylineCTs(filter Kind) [][]float64 {
	organs := o.Organs(filter)
	cts := make([][]float64, len(organs))
	for i, org := range organs {
		cts[i] = append([]float64(nil), org.nodeCTs...)
	}
	return cts
}

// Nodes returns all node positions as a dense array indexed by global node
// id. Attachment nodes of base organs are present even before the organ has
// produced further geometry.
func (o *Organism) Nodes() []Vec3 {
	nv := make([]Vec3, o.nodeID)
	for _, b := range o.baseOrgans {
		if len(b.nodes) > 0 {
			nv[b.nodeIDs[0]] = b.nodes[0]
		}
	}
	for _, org := range o.Organs(KindAny) {
		for i, id := range org.nodeIDs {
			nv[id] = org.nodes[i]
		}
	}
	return nv
}

// NodeCTs returns all node creation times, index-aligned with Nodes.
func (o *Organism) NodeCTs() []float64 {
	cts := make([]float64, o.nodeID)
	for _, b := range o.baseOrgans {
		if len(b.nodes) > 0 {
			cts[b.nodeIDs[0]] = b.nodeCTs[0]
		}
	}
	for _, org := range o.Organs(KindAny) {
		for i, id := range org.nodeIDs {
			cts[id] = org.nodeCTs[i]
		}
	}
	return cts
}

// Segments returns the segments of all filtered organs, concatenated in
// traversal order.
func (o *Organism) Segments(filter Kind) []Segment {
	organs := o.Organs(filter)
	n := 0
	for _, org := range organs {
		n += org.NumberOfSegments()
	}
	segs := make([]Segment, 0, n)
	for _, org := range organs {
		segs = append(segs, org.Segments()...)
	}
	return segs
}

// SegmentCTs returns the creation time of each segment, aligned with
// Segments. A segment's creation time is that of its second, later node.
func (o *Organism) SegmentCTs(filter Kind) []float64 {
	nodeCTs := o.NodeCTs()
	segs := o.Segments(filter)
	cts := make([]float64, len(segs))
	for i, s := range segs {
		cts[i] = nodeCTs[s.B]
	}
	return cts
}

// SegmentOrigins returns the organ containing each segment, aligned with
// Segments.
func (o *Organism) SegmentOrigins(filter Kind) []*Organ {
	organs := o.Organs(filter)
	var origins []*Organ
	for _, org := range organs {
		for i := 0; i < org.NumberOfSegments(); i++ {
			origins = append(origins, org)
		}
	}
	return origins
}

// eachOrgan visits every organ (geometry or not) depth-first, parent before
// children. Delta queries use it rather than Organs so that one-node organs
// whose single node was repositioned are not dropped.
func (o *Organism) eachOrgan(f func(*Organ)) {
	var walk func(*Organ)
	walk = func(org *Organ) {
		f(org)
		for _, c := range org.children {
			walk(c)
		}
	}
	for _, b := range o.baseOrgans {
		walk(b)
	}
}

// UpdatedNodeIndices returns the global ids of nodes repositioned in place
// during the last step, one per tip-moved organ, in traversal order.
func (o *Organism) UpdatedNodeIndices() []int {
	var ids []int
	o.eachOrgan(func(org *Organ) {
		if org.tipMoved && org.stepStartNodes >= 1 {
			ids = append(ids, org.nodeIDs[org.stepStartNodes-1])
		}
	})
	return ids
}

// UpdatedNodes returns the new positions of the repositioned nodes, aligned
// with UpdatedNodeIndices.
func (o *Organism) UpdatedNodes() []Vec3 {
	var nv []Vec3
	o.eachOrgan(func(org *Organ) {
		if org.tipMoved && org.stepStartNodes >= 1 {
			nv = append(nv, org.nodes[org.stepStartNodes-1])
		}
	})
	return nv
}

// NewNodes returns the positions of all nodes appended during the last step
// as a dense array: index = global id - pre-step node count. New ids are
// assigned in traversal order within the same sequential pass that this
// query walks, so the array is written exactly once per index; any mismatch
// is a logic fault and panics.
func (o *Organism) NewNodes() []Vec3 {
	nv := make([]Vec3, o.NumberOfNewNodes())
	o.eachOrgan(func(org *Organ) {
		for i := org.stepStartNodes; i < len(org.nodes); i++ {
			nv[o.newNodeSlot(org.nodeIDs[i], len(nv))] = org.nodes[i]
		}
	})
	return nv
}

// NewNodeCTs returns the creation times of the nodes appended during the
// last step, aligned with NewNodes.
func (o *Organism) NewNodeCTs() []float64 {
	cts := make([]float64, o.NumberOfNewNodes())
	o.eachOrgan(func(org *Organ) {
		for i := org.stepStartNodes; i < len(org.nodes); i++ {
			cts[o.newNodeSlot(org.nodeIDs[i], len(cts))] = org.nodeCTs[i]
		}
	})
	return cts
}

func (o *Organism) newNodeSlot(id, n int) int {
	idx := id - o.oldNumberOfNodes
	if idx < 0 || idx >= n {
		panic(fmt.Sprintf("plant: node id %d outside the last step's range [%d,%d)", id, o.oldNumberOfNodes, o.nodeID))
	}
	return idx
}

// newSegmentRange returns the index range [lo, hi) of an organ's node pairs
// that form segments created during the last step.
func newSegmentRange(org *Organ) (lo, hi int) {
	lo = org.stepStartNodes
	if lo < 1 {
		lo = 1
	}
	return lo - 1, len(org.nodes) - 1
}

// NewSegments returns the segments created during the last step for the
// filtered organs, in traversal order. For KindAny the result holds exactly
// NumberOfNewNodes entries: each appended node closes exactly one segment,
// including the attachment segment of a freshly branched organ.
func (o *Organism) NewSegments(filter Kind) []Segment {
	var segs []Segment
	o.eachOrgan(func(org *Organ) {
		if !org.kind.Matches(filter) {
			return
		}
		lo, hi := newSegmentRange(org)
		for i := lo; i < hi; i++ {
			segs = append(segs, Segment{org.nodeIDs[i], org.nodeIDs[i+1]})
		}
	})
	return segs
}

// NewSegmentOrigins returns the organ containing each new segment, aligned
// with NewSegments.
func (o *Organism) NewSegmentOrigins(filter Kind) []*Organ {
	var origins []*Organ
	o.eachOrgan(func(org *Organ) {
		if !org.kind.Matches(filter) {
			return
		}
		lo, hi := newSegmentRange(org)
		for i := lo; i < hi; i++ {
			origins = append(origins, org)
		}
	})
	return origins
}

// NewSegmentCTs returns the creation time of each new segment (that of its
// second node), aligned with NewSegments.
func (o *Organism) NewSegmentCTs(filter Kind) []float64 {
	var cts []float64
	o.eachOrgan(func(org *Organ) {
		if !org.kind.Matches(filter) {
			return
		}
		lo, hi := newSegmentRange(org)
		for i := lo; i < hi; i++ {
			cts = append(cts, org.nodeCTs[i+1])
		}
	})
	return cts
}

// Copy deep-clones the organism: every prototype and every organ is rebound
// to the clone, counters and the random source state are carried over, so
// original and clone evolve bit-identically under identical steps.
func (o *Organism) Copy() *Organism {
	c := &Organism{
		params:            make(map[Kind]map[int]TypeParameter),
		organID:           o.organID,
		nodeID:            o.nodeID,
		simtime:           o.simtime,
		oldNumberOfNodes:  o.oldNumberOfNodes,
		oldNumberOfOrgans: o.oldNumberOfOrgans,
		src:               &rand.PCGSource{},
	}
	state, err := o.src.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("plant: cannot snapshot random source: %v", err))
	}
	if err := c.src.UnmarshalBinary(state); err != nil {
		panic(fmt.Sprintf("plant: cannot restore random source: %v", err))
	}
	c.rnd = rand.New(c.src)

	for _, kind := range []Kind{KindOrgan, KindSeed, KindRoot, KindStem, KindLeaf} {
		for _, tp := range o.TypeParameters(kind) {
			c.SetTypeParameter(tp.Copy(c))
		}
	}
	c.baseOrgans = make([]*Organ, len(o.baseOrgans))
	for i, b := range o.baseOrgans {
		c.baseOrgans[i] = b.Copy(c, nil)
	}
	return c
}

// String returns a short debug summary.
func (o *Organism) String() string {
	return fmt.Sprintf("organism with %d base organs, %d nodes and a total of %d organs, after %.2f days",
		len(o.baseOrgans), o.nodeID, o.organID, o.simtime)
}

// newOrganID hands out the next globally unique organ id. Ids are never
// reused, even after an organ dies.
func (o *Organism) newOrganID() int {
	id := o.organID
	o.organID++
	return id
}

// newNodeID hands out the next globally unique node id. Contiguity of the
// ids assigned during one step is what the delta queries index by.
func (o *Organism) newNodeID() int {
	id := o.nodeID
	o.nodeID++
	return id
}
