// Package layout resolves the effective byte offsets of record layout components.
//
// A record layout declares every variable-length axis array (axisPts, axisRescale)
// with its maximum element count. When a dynamic counter (noAxisPts, noRescale)
// holds a smaller actual count, every component stored after the array moves by
//
//	(actual - declared_max) * element_bytes
//
// and the corrections of several preceding arrays add up.
package layout

import (
	"fmt"
	"sort"

	"github.com/tosih/a2l-calreader/pkg/models"
)

// Counts holds the actual element counts read from dynamic counters, per axis
type Counts struct {
	AxisPts map[string]int
	Rescale map[string]int
}

func NewCounts() Counts {
	return Counts{AxisPts: map[string]int{}, Rescale: map[string]int{}}
}

// Component is a record layout component with its effective offset
type Component struct {
	models.RecordLayoutComponent
	EffectiveOffset int
}

// Resolved is a record layout after offset correction for one decode
type Resolved struct {
	Name       string
	Components []Component
	Counts     Counts
}

// Find returns the resolved component of kind for axis
func (r *Resolved) Find(kind models.ComponentKind, axis string) (Component, bool) {
	for _, c := range r.Components {
		if c.Kind == kind && c.Axis == axis {
			return c, true
		}
	}
	return Component{}, false
}

// Has reports whether the layout contains kind for axis
func (r *Resolved) Has(kind models.ComponentKind, axis string) bool {
	_, ok := r.Find(kind, axis)
	return ok
}

// Offset returns the effective offset of kind for axis
func (r *Resolved) Offset(kind models.ComponentKind, axis string) (int, bool) {
	c, ok := r.Find(kind, axis)
	return c.EffectiveOffset, ok
}

// sorted returns the components ordered by structural position
func sorted(rl models.RecordLayout) []models.RecordLayoutComponent {
	out := make([]models.RecordLayoutComponent, len(rl.Components))
	copy(out, rl.Components)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Validate checks that every component matches a declared kind and axis
func Validate(object string, rl models.RecordLayout) error {
	seen := map[string]bool{}
	for _, c := range rl.Components {
		if !c.Kind.Known() {
			return models.ErrMalformedRecordLayout{Object: object,
				What: fmt.Sprintf("unknown component kind '%s' at position %d", c.Kind, c.Position)}
		}
		if c.Kind.AxisBound() && !models.ValidAxis(c.Axis) {
			return models.ErrMalformedRecordLayout{Object: object,
				What: fmt.Sprintf("component '%s' at position %d has no valid axis (got '%s')", c.Kind, c.Position, c.Axis)}
		}
		if !c.Kind.AxisBound() && c.Axis != "" {
			return models.ErrMalformedRecordLayout{Object: object,
				What: fmt.Sprintf("component '%s' at position %d takes no axis (got '%s')", c.Kind, c.Position, c.Axis)}
		}
		if !c.DataType.Valid() {
			return models.ErrMalformedRecordLayout{Object: object,
				What: fmt.Sprintf("component '%s' at position %d has unknown datatype '%s'", c.Kind, c.Position, c.DataType)}
		}
		key := string(c.Kind) + "/" + c.Axis
		if seen[key] && c.Kind != models.Reserved {
			return models.ErrMalformedRecordLayout{Object: object,
				What: fmt.Sprintf("duplicate component '%s' for axis '%s'", c.Kind, c.Axis)}
		}
		seen[key] = true
	}
	return nil
}

// Resolve computes the effective offset of every component of rl. Axes without a
// dynamic count keep their declared maximum and contribute no bias. rl is not modified.
func Resolve(object string, rl models.RecordLayout, counts Counts) (*Resolved, error) {
	if err := Validate(object, rl); err != nil {
		return nil, err
	}
	components := sorted(rl)
	// bias in bytes introduced by the array at a given position
	biases := map[int]int{}
	for _, c := range components {
		bias, err := arrayBias(c, counts)
		if err != nil {
			return nil, models.ErrMalformedRecordLayout{Object: object, What: err.Error()}
		}
		if bias != 0 {
			biases[c.Position] += bias
		}
	}

	resolved := &Resolved{Name: rl.Name, Counts: counts, Components: make([]Component, 0, len(components))}
	total := 0
	pending := sortedPositions(biases)
	for _, c := range components {
		for len(pending) > 0 && pending[0] < c.Position {
			total += biases[pending[0]]
			pending = pending[1:]
		}
		resolved.Components = append(resolved.Components, Component{
			RecordLayoutComponent: c,
			EffectiveOffset:       c.Offset + total,
		})
	}
	return resolved, nil
}

// arrayBias is the byte bias of an array component, 0 for everything else
func arrayBias(c models.RecordLayoutComponent, counts Counts) (int, error) {
	var actual int
	var ok bool
	switch c.Kind {
	case models.AxisPtsKind:
		actual, ok = counts.AxisPts[c.Axis]
	case models.AxisRescale:
		actual, ok = counts.Rescale[c.Axis]
	default:
		return 0, nil
	}
	if !ok {
		return 0, nil
	}
	if actual < 0 || actual > c.MaxElements {
		return 0, fmt.Errorf("axis '%s': actual count %d outside 0..%d", c.Axis, actual, c.MaxElements)
	}
	size, err := c.ElementBytes()
	if err != nil {
		return 0, err
	}
	return (actual - c.MaxElements) * size, nil
}

func sortedPositions(biases map[int]int) []int {
	out := make([]int, 0, len(biases))
	for pos := range biases {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// Sizeof is the number of bytes statically allocated by rl
func Sizeof(rl models.RecordLayout) (int, error) {
	size := 0
	for _, c := range rl.Components {
		n, err := DeclaredBytes(c)
		if err != nil {
			return 0, err
		}
		if end := c.Offset + n; end > size {
			size = end
		}
	}
	return size, nil
}

// DeclaredBytes is the statically declared byte size of one component
func DeclaredBytes(c models.RecordLayoutComponent) (int, error) {
	size, err := c.ElementBytes()
	if err != nil {
		return 0, err
	}
	if c.Kind.Array() || c.Kind == models.FncValues {
		count := c.MaxElements
		if count == 0 && c.Kind == models.FncValues {
			count = 1
		}
		return count * size, nil
	}
	return size, nil
}
