// Package axis decodes AXIS_PTS objects.
package axis

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/convert"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/layout"
	"github.com/tosih/a2l-calreader/pkg/models"
)

// Decoder turns an AXIS_PTS descriptor into exactly one decoded axis
type Decoder struct {
	Memory    image.Memory
	Converter convert.Converter
	// ByteOrder is the module default, used when a descriptor has no override
	ByteOrder models.ByteOrder
	Logger    *zap.Logger
}

func NewDecoder(mem image.Memory, conv convert.Converter, order models.ByteOrder) *Decoder {
	return &Decoder{Memory: mem, Converter: conv, ByteOrder: order, Logger: zap.NewNop()}
}

// Decode reads ap. Rescale pairs win over axis points, axis points over a
// computed (offset based) axis.
func (d *Decoder) Decode(ap models.AxisPointsDescriptor) (*models.AxisPts, error) {
	order := ap.ByteOrder.Or(d.ByteOrder)
	counts, err := layout.ReadCounts(d.Memory, ap.Address, order, ap.Name, ap.Layout)
	if err != nil {
		return nil, err
	}
	resolved, err := layout.Resolve(ap.Name, ap.Layout, counts)
	if err != nil {
		return nil, err
	}

	out := &models.AxisPts{Base: models.Base{
		Name:              ap.Name,
		Comment:           ap.LongIdentifier,
		Category:          models.CategoryAxisPts,
		DisplayIdentifier: ap.DisplayIdentifier,
	}}

	switch {
	case resolved.Has(models.AxisRescale, "x"):
		c, _ := resolved.Find(models.AxisRescale, "x")
		pairs, ok := counts.Rescale["x"]
		if !ok {
			pairs = c.MaxElements
		}
		out.AxisCategory = models.CategoryResAxis
		out.Paired = true
		out.RawValues, err = d.readArray(ap, c, 2*pairs, order)
	case resolved.Has(models.AxisPtsKind, "x"):
		c, _ := resolved.Find(models.AxisPtsKind, "x")
		n, ok := counts.AxisPts["x"]
		if !ok {
			n = c.MaxElements
		}
		out.AxisCategory = models.CategoryComAxis
		out.RawValues, err = d.readArray(ap, c, n, order)
	case resolved.Has(models.Offset, "x"):
		out.AxisCategory = models.CategoryFixAxis
		out.Virtual = true
		out.RawValues, err = d.fixAxis(ap, resolved, order)
	default:
		return nil, models.ErrMalformedRecordLayout{Object: ap.Name,
			What: "neither axisRescale, axisPts nor offset for axis 'x'"}
	}
	if err != nil {
		return nil, err
	}

	out.ConvertedValues, err = d.Converter.Convert(ap.Conversion, out.RawValues)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ap.Name, err)
	}
	out.Unit = ap.PhysUnit
	if out.Unit == "" {
		out.Unit = d.Converter.Unit(ap.Conversion)
	}
	d.Logger.Debug("decoded axis",
		zap.String("object", ap.Name),
		zap.String("category", string(out.AxisCategory)),
		zap.Int("points", len(out.RawValues)))
	return out, nil
}

func (d *Decoder) readArray(ap models.AxisPointsDescriptor, c layout.Component, n int, order models.ByteOrder) ([]float64, error) {
	values, err := d.Memory.ReadArray(ap.Address+uint32(c.EffectiveOffset), n, c.DataType, order)
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s: %w", ap.Name, c.Kind, err)
	}
	return convert.Flip(values, c.IndexOrder), nil
}

func (d *Decoder) fixAxis(ap models.AxisPointsDescriptor, r *layout.Resolved, order models.ByteOrder) ([]float64, error) {
	params, err := layout.AxisParams(d.Memory, ap.Address, order, r, "x")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ap.Name, err)
	}
	offset, _ := params.Get(models.Offset)
	n := ap.MaxAxisPoints
	if v, ok := params.Get(models.NoAxisPts); ok {
		n = int(v)
	}
	if dist, ok := params.Get(models.DistOp); ok {
		return FixAxisParDist(offset, dist, n), nil
	}
	if shift, ok := params.Get(models.ShiftOp); ok {
		return FixAxisPar(offset, int(shift), n), nil
	}
	return nil, models.ErrMalformedAxis{Object: ap.Name, What: "neither distOp nor shiftOp specified"}
}

// FixAxisParDist generates offset, offset+distance, ... for count points
func FixAxisParDist(offset, distance float64, count int) []float64 {
	out := make([]float64, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, offset+float64(i)*distance)
	}
	return out
}

// FixAxisPar generates offset + i*2^shift for count points
func FixAxisPar(offset float64, shift, count int) []float64 {
	return FixAxisParDist(offset, math.Ldexp(1, shift), count)
}
