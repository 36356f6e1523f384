package plant

import "fmt"

// Kind is the closed category of an organ.
type Kind int

const (
	// KindOrgan is the kind-agnostic base category.
	KindOrgan Kind = iota
	KindSeed
	KindRoot
	KindStem
	KindLeaf

	// KindAny matches every kind in filtered queries.
	KindAny Kind = -1
)

var kindNames = [...]string{"organ", "seed", "root", "stem", "leaf"}

// KindByName translates an organ-kind name to its number.
func KindByName(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("plant: unknown organ kind name %q", name)
}

// Name returns the canonical name of k, or an error for unknown numbers.
func (k Kind) Name() (string, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return "", fmt.Errorf("plant: unknown organ kind number %d", int(k))
	}
	return kindNames[k], nil
}

// String implements fmt.Stringer. Unknown numbers render as kind(n) so
// diagnostics never hide the offending value.
func (k Kind) String() string {
	if k == KindAny {
		return "any"
	}
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Matches reports whether k passes the given filter.
func (k Kind) Matches(filter Kind) bool {
	return filter == KindAny || filter == k
}
