package plant

import "fmt"

// TypeParameter is the prototype for one organ-kind/subtype pair. It
// prescribes how concrete per-organ parameter sets are realized, and exposes
// its integer-valued attributes through a generic name registry so external
// serializers can enumerate prototypes without knowing their kind.
//
// Realize must be deterministic given the state of the owning organism's
// random source and must not mutate the prototype.
type TypeParameter interface {
	OrganKind() Kind
	SubType() int
	Name() string

	// Fields is the name registry of integer attributes. The base
	// implementation registers organType and subType; kind-specific
	// prototypes add their own.
	Fields() map[string]*int

	// Realize produces a fresh parameter set for one concrete organ,
	// drawing any stochastic values from the owning organism's source.
	Realize() Parameter

	// Copy deep-clones the prototype bound to a different organism.
	Copy(o *Organism) TypeParameter

	fmt.Stringer
}

// Parameter is the realized, immutable-after-construction parameter set of a
// single organ. Every organ owns exactly one.
type Parameter interface {
	SubType() int

	// Value looks up a named scalar. The second result is false for names
	// the parameter set does not know.
	Value(name string) (float64, bool)

	// Copy returns an independent clone, used when cloning a whole organism.
	Copy() Parameter
}

// BaseParameter is the kind-agnostic realized parameter set. Kind-specific
// parameter sets embed it.
type BaseParameter struct {
	Sub int
}

// SubType returns the subtype number the parameter set was realized for.
func (p *BaseParameter) SubType() int { return p.Sub }

// Value reports the subtype as the only known scalar.
func (p *BaseParameter) Value(name string) (float64, bool) {
	if name == "subType" {
		return float64(p.Sub), true
	}
	return 0, false
}

// Copy returns an independent clone of p.
func (p *BaseParameter) Copy() Parameter {
	c := *p
	return &c
}

// BaseTypeParameter implements the kind-agnostic prototype behavior.
// Kind-specific prototypes embed it and register additional fields.
type BaseTypeParameter struct {
	plant *Organism

	TypeName string
	KindNum  int
	Sub      int

	fields map[string]*int
}

// NewBaseTypeParameter creates a prototype bound to o.
func NewBaseTypeParameter(o *Organism, kind Kind, subType int, name string) *BaseTypeParameter {
	tp := &BaseTypeParameter{
		plant:    o,
		TypeName: name,
		KindNum:  int(kind),
		Sub:      subType,
	}
	tp.fields = map[string]*int{
		"organType": &tp.KindNum,
		"subType":   &tp.Sub,
	}
	return tp
}

// OrganKind returns the organ kind the prototype is registered for.
func (tp *BaseTypeParameter) OrganKind() Kind { return Kind(tp.KindNum) }

// SubType returns the subtype number.
func (tp *BaseTypeParameter) SubType() int { return tp.Sub }

// Name returns the human-readable prototype name.
func (tp *BaseTypeParameter) Name() string { return tp.TypeName }

// Fields returns the integer attribute registry.
func (tp *BaseTypeParameter) Fields() map[string]*int { return tp.fields }

// RegisterField adds an integer attribute to the generic registry.
// Registering an existing name replaces it.
func (tp *BaseTypeParameter) RegisterField(name string, v *int) {
	tp.fields[name] = v
}

// Organism returns the owning organism. Realize implementations draw their
// stochastic values from its random source.
func (tp *BaseTypeParameter) Organism() *Organism { return tp.plant }

// Realize produces the kind-agnostic parameter set: a copy of the subtype.
func (tp *BaseTypeParameter) Realize() Parameter {
	return &BaseParameter{Sub: tp.Sub}
}

// Copy deep-clones the base prototype bound to o. Embedding prototypes must
// provide their own Copy so the concrete type survives cloning.
func (tp *BaseTypeParameter) Copy(o *Organism) TypeParameter {
	return NewBaseTypeParameter(o, Kind(tp.KindNum), tp.Sub, tp.TypeName)
}

// CopyBase clones the embedded base bound to o, for use by embedding
// prototypes inside their own Copy.
func (tp *BaseTypeParameter) CopyBase(o *Organism) *BaseTypeParameter {
	return NewBaseTypeParameter(o, Kind(tp.KindNum), tp.Sub, tp.TypeName)
}

// String returns a short debug summary.
func (tp *BaseTypeParameter) String() string {
	return fmt.Sprintf("type parameter %q, organ kind %s, subtype %d",
		tp.TypeName, Kind(tp.KindNum), tp.Sub)
}
