// Package convert pairs raw values with their compute method and owns the
// array flip and reshape policy of the decoders.
package convert

import (
	"fmt"
	"math"
	"sort"

	"github.com/tosih/a2l-calreader/pkg/models"
)

// Converter turns raw values into physical values using a compute method reference
type Converter interface {
	Convert(ref string, raw []float64) ([]models.Phys, error)
	Unit(ref string) string
}

// Methods looks up compute methods by name
type Methods interface {
	CompuMethod(name string) (models.CompuMethod, bool)
}

// Evaluator is the Converter backed by the compute methods of a symbol database
type Evaluator struct {
	methods Methods
}

var _ Converter = &Evaluator{}

func NewEvaluator(methods Methods) *Evaluator {
	return &Evaluator{methods: methods}
}

// Unit returns the unit of the referenced compute method, empty for no conversion
func (e *Evaluator) Unit(ref string) string {
	if ref == "" || ref == models.NoCompuMethod || e.methods == nil {
		return ""
	}
	cm, ok := e.methods.CompuMethod(ref)
	if !ok {
		return ""
	}
	return cm.Unit
}

// Convert evaluates ref for every raw value. NO_COMPU_METHOD is the identity.
func (e *Evaluator) Convert(ref string, raw []float64) ([]models.Phys, error) {
	if ref == "" || ref == models.NoCompuMethod {
		return Identity(raw), nil
	}
	if e.methods == nil {
		return nil, models.ErrUnknownCompuMethod{Name: ref}
	}
	cm, ok := e.methods.CompuMethod(ref)
	if !ok {
		return nil, models.ErrUnknownCompuMethod{Name: ref}
	}
	out := make([]models.Phys, len(raw))
	for i, x := range raw {
		p, err := evaluate(cm, x)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Identity wraps raw values unchanged
func Identity(raw []float64) []models.Phys {
	out := make([]models.Phys, len(raw))
	for i, x := range raw {
		out[i] = models.Phys{Value: x}
	}
	return out
}

func evaluate(cm models.CompuMethod, x float64) (models.Phys, error) {
	switch cm.ConversionType {
	case models.Identical, "":
		return models.Phys{Value: x}, nil
	case models.Linear:
		return models.Phys{Value: cm.A*x + cm.B}, nil
	case models.RatFunc:
		return ratFunc(cm, x)
	case models.TabIntp:
		return models.Phys{Value: interpolate(cm.Pairs, x)}, nil
	case models.TabNoIntp:
		return tabNoIntp(cm, x), nil
	case models.TabVerb:
		return tabVerb(cm, x), nil
	}
	return models.Phys{}, fmt.Errorf("compu method '%s': unsupported conversion type %s", cm.Name, cm.ConversionType)
}

// ratFunc inverts raw = (b*p + c) / (e*p + f); quadratic terms are not invertible here
func ratFunc(cm models.CompuMethod, x float64) (models.Phys, error) {
	if len(cm.Coeffs) != 6 {
		return models.Phys{}, fmt.Errorf("compu method '%s': RAT_FUNC needs 6 coefficients, got %d", cm.Name, len(cm.Coeffs))
	}
	a, b, c, d, e, f := cm.Coeffs[0], cm.Coeffs[1], cm.Coeffs[2], cm.Coeffs[3], cm.Coeffs[4], cm.Coeffs[5]
	if a != 0 || d != 0 {
		return models.Phys{}, fmt.Errorf("compu method '%s': quadratic RAT_FUNC is not supported", cm.Name)
	}
	den := b - e*x
	if den == 0 {
		return models.Phys{Value: math.NaN()}, nil
	}
	return models.Phys{Value: (f*x - c) / den}, nil
}

func sortedPairs(pairs []models.TabPair) []models.TabPair {
	out := make([]models.TabPair, len(pairs))
	copy(out, pairs)
	sort.Slice(out, func(i, j int) bool { return out[i].In < out[j].In })
	return out
}

// interpolate is linear between neighbours and saturates outside the table
func interpolate(pairs []models.TabPair, x float64) float64 {
	if len(pairs) == 0 {
		return x
	}
	p := sortedPairs(pairs)
	if x <= p[0].In {
		return p[0].Out
	}
	last := p[len(p)-1]
	if x >= last.In {
		return last.Out
	}
	for i := 1; i < len(p); i++ {
		if x <= p[i].In {
			lo, hi := p[i-1], p[i]
			return lo.Out + (x-lo.In)*(hi.Out-lo.Out)/(hi.In-lo.In)
		}
	}
	return last.Out
}

func tabNoIntp(cm models.CompuMethod, x float64) models.Phys {
	for _, pair := range cm.Pairs {
		if pair.In == x {
			return models.Phys{Value: pair.Out}
		}
	}
	if cm.DefaultValue != nil {
		return models.Phys{Value: *cm.DefaultValue}
	}
	return models.Phys{Value: x}
}

func tabVerb(cm models.CompuMethod, x float64) models.Phys {
	for _, pair := range cm.Verbal {
		if pair.In == x {
			return models.Phys{Value: x, Text: pair.Out}
		}
	}
	return models.Phys{Value: x, Text: cm.DefaultText}
}
