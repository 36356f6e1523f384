package plant

import (
	"fmt"
	"math"
)

// GrowthPolicy supplies the kind-specific growth law for an organ: per-step
// elongation, the resolution threshold deciding tip reposition versus node
// append, and branching. Policies are the only source of kind-specific
// behavior; the organ invokes them polymorphically during Simulate.
//
// Policies must be stateless with respect to individual organs: everything
// per-organ lives in the organ itself or its realized Parameter, so organs
// can share one policy value and survive deep copies.
type GrowthPolicy interface {
	Advance(o *Organ, dt float64) error
}

// Organ is one node in the organ tree. It owns its realized parameter set,
// its geometry history and its child organs; parent and organism references
// are non-owning.
type Organ struct {
	plant  *Organism
	parent *Organ

	id     int
	kind   Kind
	param  Parameter
	policy GrowthPolicy
	delay  float64 // dormancy span after construction [days]

	children []*Organ

	alive  bool
	active bool
	age    float64 // elapsed simulated time [days]
	length float64 // accumulated physical length [cm]

	// Geometry history, index-aligned. Index 0 is the attachment point.
	nodes   []Vec3
	nodeIDs []int
	nodeCTs []float64

	// origin is the attachment position at emergence. The tip of a one-node
	// base organ may drift away from it before the first node append.
	origin Vec3

	// Delta bookkeeping for the most recent step.
	stepStartNodes int
	tipMoved       bool
}

// NewOrgan creates an organ owned by plant with a fresh globally-unique id.
// Its parameter set is realized from the prototype registered for
// (kind, subType); a missing prototype is a configuration error and aborts
// construction. A non-nil parent adopts the organ as its last child and the
// organ's first node is the parent's current tip (shared position and global
// node id). Base organs start without geometry; call SetBaseNode before the
// first step.
func NewOrgan(plant *Organism, parent *Organ, kind Kind, policy GrowthPolicy, subType int, delay float64) (*Organ, error) {
	tp, err := plant.TypeParameter(kind, subType)
	if err != nil {
		return nil, err
	}
	o := &Organ{
		plant:  plant,
		parent: parent,
		id:     plant.newOrganID(),
		kind:   kind,
		param:  tp.Realize(),
		policy: policy,
		delay:  delay,
		alive:  true,
		active: true,
	}
	if parent != nil {
		n := parent.NumberOfNodes()
		if n == 0 {
			return nil, fmt.Errorf("plant: organ %d cannot attach to parent %d without geometry", o.id, parent.id)
		}
		o.appendNode(parent.Node(n-1), parent.NodeID(n-1), parent.NodeCT(n-1))
		o.origin = o.nodes[0]
		parent.children = append(parent.children, o)
	}
	o.stepStartNodes = len(o.nodes)
	return o, nil
}

// SetBaseNode sets the attachment node of a base organ, allocating a fresh
// global node id. It must be called exactly once, before the first step.
func (o *Organ) SetBaseNode(pos Vec3, ct float64) {
	if len(o.nodes) != 0 {
		panic(fmt.Sprintf("plant: organ %d already has a base node", o.id))
	}
	o.appendNode(pos, o.plant.newNodeID(), ct)
	o.origin = pos
	o.stepStartNodes = len(o.nodes)
}

// Simulate advances the organ and its children by dt days. Dead organs are a
// no-op; dormant organs only age. The step-start node count is snapshotted
// before the growth policy runs so delta extraction can tell moved from
// appended afterwards.
func (o *Organ) Simulate(dt float64) error {
	o.stepStartNodes = len(o.nodes)
	o.tipMoved = false
	if !o.alive {
		return nil
	}
	o.age += dt
	if o.age > o.delay && o.active && o.policy != nil {
		if err := o.policy.Advance(o, dt); err != nil {
			return fmt.Errorf("plant: organ %d (%s): %w", o.id, o.kind, err)
		}
	}
	for _, c := range o.children {
		if err := c.Simulate(dt); err != nil {
			return err
		}
	}
	return nil
}

// AddNode appends a brand-new node with a freshly allocated global id.
func (o *Organ) AddNode(pos Vec3, ct float64) {
	o.appendNode(pos, o.plant.newNodeID(), ct)
}

func (o *Organ) appendNode(pos Vec3, id int, ct float64) {
	o.nodes = append(o.nodes, pos)
	o.nodeIDs = append(o.nodeIDs, id)
	o.nodeCTs = append(o.nodeCTs, ct)
}

// MoveTip repositions the last existing node in place, keeping its global id
// and its original creation stamp. Used when the growth added this step stays
// below the organ's node-creation resolution, so near-zero-length segments
// never accumulate. Children attached at the moved node follow it: every
// organ holding the shared global id reads the same position afterwards.
func (o *Organ) MoveTip(pos Vec3) {
	n := len(o.nodes)
	if n == 0 {
		panic(fmt.Sprintf("plant: organ %d has no tip to move", o.id))
	}
	o.nodes[n-1] = pos
	o.moveAttachment(o.nodeIDs[n-1], pos)
	o.tipMoved = true
}

// moveAttachment rewrites every child copy of a shared node id after a tip
// reposition. Only a child's attachment node can alias a parent node, and a
// one-node child can pass the alias on to its own children.
func (o *Organ) moveAttachment(id int, pos Vec3) {
	for _, c := range o.children {
		if len(c.nodes) > 0 && c.nodeIDs[0] == id {
			c.nodes[0] = pos
			c.origin = pos
			c.moveAttachment(id, pos)
		}
	}
}

// Organs appends the organ and its subtree to acc in depth-first order,
// parent before children, children in creation order. Only organs that have
// produced geometry (more than one node) and match the filter are included.
func (o *Organ) Organs(filter Kind, acc *[]*Organ) {
	if len(o.nodes) > 1 && o.kind.Matches(filter) {
		*acc = append(*acc, o)
	}
	for _, c := range o.children {
		c.Organs(filter, acc)
	}
}

// Segments returns the organ's own segments as global node-id pairs.
// The segment connecting an organ to its parent belongs to the child.
func (o *Organ) Segments() []Segment {
	if len(o.nodes) < 2 {
		return nil
	}
	segs := make([]Segment, len(o.nodes)-1)
	for i := range segs {
		segs[i] = Segment{o.nodeIDs[i], o.nodeIDs[i+1]}
	}
	return segs
}

// Parameter returns a named scalar of the organ, consulting the organ state
// first and the realized parameter set second. Unknown names yield NaN so
// heterogeneous post-processing queries stay best-effort.
func (o *Organ) Parameter(name string) float64 {
	switch name {
	case "id":
		return float64(o.id)
	case "organType":
		return float64(o.kind)
	case "subType":
		return float64(o.param.SubType())
	case "alive":
		return boolToFloat(o.alive)
	case "active":
		return boolToFloat(o.active)
	case "age":
		return o.age
	case "length":
		return o.length
	case "delay":
		return o.delay
	case "order":
		return float64(o.Order())
	case "creationTime":
		if len(o.nodeCTs) > 0 {
			return o.nodeCTs[0]
		}
		return math.NaN()
	case "numberOfNodes":
		return float64(len(o.nodes))
	case "numberOfSegments":
		return float64(o.NumberOfSegments())
	}
	if v, ok := o.param.Value(name); ok {
		return v
	}
	return math.NaN()
}

// Copy deep-clones the organ and its subtree, rebinding ownership to plant
// and parent. Ids and geometry are preserved exactly.
func (o *Organ) Copy(plant *Organism, parent *Organ) *Organ {
	c := &Organ{
		plant:          plant,
		parent:         parent,
		id:             o.id,
		kind:           o.kind,
		param:          o.param.Copy(),
		policy:         o.policy,
		delay:          o.delay,
		alive:          o.alive,
		active:         o.active,
		age:            o.age,
		length:         o.length,
		nodes:          append([]Vec3(nil), o.nodes...),
		nodeIDs:        append([]int(nil), o.nodeIDs...),
		nodeCTs:        append([]float64(nil), o.nodeCTs...),
		origin:         o.origin,
		stepStartNodes: o.stepStartNodes,
		tipMoved:       o.tipMoved,
	}
	c.children = make([]*Organ, len(o.children))
	for i, child := range o.children {
		c.children[i] = child.Copy(plant, c)
	}
	return c
}

// ID returns the globally unique organ id.
func (o *Organ) ID() int { return o.id }

// OrganKind returns the organ's kind tag.
func (o *Organ) OrganKind() Kind { return o.kind }

// Param returns the realized parameter set.
func (o *Organ) Param() Parameter { return o.param }

// Parent returns the parent organ, nil for base organs.
func (o *Organ) Parent() *Organ { return o.parent }

// Plant returns the owning organism.
func (o *Organ) Plant() *Organism { return o.plant }

// IsAlive reports whether the organ is alive.
func (o *Organ) IsAlive() bool { return o.alive }

// IsActive reports whether the organ still grows.
func (o *Organ) IsActive() bool { return o.active }

// Age returns the elapsed simulated time since construction [days].
func (o *Organ) Age() float64 { return o.age }

// Delay returns the dormancy span the organ waits out before growing.
func (o *Organ) Delay() float64 { return o.delay }

// Length returns the accumulated physical length [cm].
func (o *Organ) Length() float64 { return o.length }

// SetLength records the new accumulated length, for growth policies.
func (o *Organ) SetLength(l float64) { o.length = l }

// Deactivate stops further growth. Deactivation is monotonic.
func (o *Organ) Deactivate() { o.active = false }

// Kill marks the organ dead. Death is monotonic and implies no further
// geometry anywhere in its subtree.
func (o *Organ) Kill() {
	o.alive = false
	o.active = false
}

// Origin returns the attachment position recorded at emergence.
func (o *Organ) Origin() Vec3 { return o.origin }

// Order returns the topological order of the organ: 0 for base organs,
// parent order + 1 otherwise.
func (o *Organ) Order() int {
	n := 0
	for p := o.parent; p != nil; p = p.parent {
		n++
	}
	return n
}

// NumberOfNodes returns the node count of the organ.
func (o *Organ) NumberOfNodes() int { return len(o.nodes) }

// NumberOfSegments returns the organ's own segment count.
func (o *Organ) NumberOfSegments() int {
	if len(o.nodes) < 2 {
		return 0
	}
	return len(o.nodes) - 1
}

// Node returns the i-th node position.
func (o *Organ) Node(i int) Vec3 {
	o.checkNode(i)
	return o.nodes[i]
}

// NodeID returns the global id of the i-th node.
func (o *Organ) NodeID(i int) int {
	o.checkNode(i)
	return o.nodeIDs[i]
}

// NodeCT returns the creation time of the i-th node [days].
func (o *Organ) NodeCT(i int) float64 {
	o.checkNode(i)
	return o.nodeCTs[i]
}

// NumberOfChildren returns the child organ count.
func (o *Organ) NumberOfChildren() int { return len(o.children) }

// Child returns the i-th child organ, in creation order.
func (o *Organ) Child(i int) *Organ {
	if i < 0 || i >= len(o.children) {
		panic(fmt.Sprintf("plant: child index %d out of range [0,%d) for organ %d", i, len(o.children), o.id))
	}
	return o.children[i]
}

// StepStartNodes returns the node count snapshotted at the start of the most
// recently processed step. Nodes at indices >= StepStartNodes are new.
func (o *Organ) StepStartNodes() int { return o.stepStartNodes }

// TipMoved reports whether the last step repositioned the tip in place.
func (o *Organ) TipMoved() bool { return o.tipMoved }

// String returns a short debug summary.
func (o *Organ) String() string {
	state := "alive"
	if !o.alive {
		state = "dead"
	} else if !o.active {
		state = "stopped"
	}
	return fmt.Sprintf("organ %d (%s, subtype %d): %d nodes, length %.2f cm, age %.2f days, %s",
		o.id, o.kind, o.param.SubType(), len(o.nodes), o.length, o.age, state)
}

func (o *Organ) checkNode(i int) {
	if i < 0 || i >= len(o.nodes) {
		panic(fmt.Sprintf("plant: node index %d out of range [0,%d) for organ %d", i, len(o.nodes), o.id))
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
