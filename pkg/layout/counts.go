package layout

import (
	"fmt"

	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
)

// ReadCounts reads every noAxisPts and noRescale counter of rl for the object at
// address. Counters are visited in position order and read at their declared
// offset moved by the bias of the arrays already passed.
func ReadCounts(mem image.Memory, address uint32, order models.ByteOrder, object string, rl models.RecordLayout) (Counts, error) {
	counts := NewCounts()
	if err := Validate(object, rl); err != nil {
		return counts, err
	}
	passed := map[string]bool{}
	bias := 0
	for _, c := range sorted(rl) {
		switch c.Kind {
		case models.AxisPtsKind, models.AxisRescale:
			passed[string(c.Kind)+"/"+c.Axis] = true
			b, err := arrayBias(c, counts)
			if err != nil {
				return counts, models.ErrMalformedRecordLayout{Object: object, What: err.Error()}
			}
			bias += b
		case models.NoAxisPts, models.NoRescale:
			array := models.AxisPtsKind
			if c.Kind == models.NoRescale {
				array = models.AxisRescale
			}
			if passed[string(array)+"/"+c.Axis] {
				return counts, models.ErrMalformedRecordLayout{Object: object,
					What: fmt.Sprintf("counter '%s' of axis '%s' follows its array", c.Kind, c.Axis)}
			}
			v, err := mem.ReadNumeric(address+uint32(c.Offset+bias), c.DataType, order, nil)
			if err != nil {
				return counts, fmt.Errorf("%s: reading %s of axis '%s': %w", object, c.Kind, c.Axis, err)
			}
			if c.Kind == models.NoAxisPts {
				counts.AxisPts[c.Axis] = int(v)
			} else {
				counts.Rescale[c.Axis] = int(v)
			}
		}
	}
	return counts, nil
}

// Params holds the scalar data points of one axis, keyed by component kind
type Params map[models.ComponentKind]float64

// Get returns the value of kind, if the layout declares it
func (p Params) Get(kind models.ComponentKind) (float64, bool) {
	v, ok := p[kind]
	return v, ok
}

var scalarKinds = []models.ComponentKind{
	models.NoAxisPts, models.NoRescale, models.Offset, models.DistOp, models.ShiftOp,
	models.RipAddr, models.SrcAddr,
}

// AxisParams reads the scalar data points of axis at their effective offsets
func AxisParams(mem image.Memory, address uint32, order models.ByteOrder, r *Resolved, axis string) (Params, error) {
	params := Params{}
	for _, kind := range scalarKinds {
		c, ok := r.Find(kind, axis)
		if !ok {
			continue
		}
		v, err := mem.ReadNumeric(address+uint32(c.EffectiveOffset), c.DataType, order, nil)
		if err != nil {
			return nil, fmt.Errorf("reading %s of axis '%s': %w", kind, axis, err)
		}
		params[kind] = v
	}
	return params, nil
}
