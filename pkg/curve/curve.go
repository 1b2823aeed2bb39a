// Package curve decodes CURVE, MAP, CUBOID, CUBE_4 and CUBE_5 characteristics.
//
// Every axis description is resolved to local values (STD_AXIS, FIX_AXIS) or to
// the name of an already decoded object (COM_AXIS, RES_AXIS, CURVE_AXIS). Axis
// values of referenced objects are never copied into the characteristic.
package curve

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/axis"
	"github.com/tosih/a2l-calreader/pkg/convert"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/layout"
	"github.com/tosih/a2l-calreader/pkg/models"
)

// References resolves back references against the parameters decoded so far
type References interface {
	AxisPts(name string) (*models.AxisPts, bool)
	Curve(name string) (*models.Curve, bool)
}

type Dispatcher struct {
	Memory     image.Memory
	Converter  convert.Converter
	References References
	ByteOrder  models.ByteOrder
	Logger     *zap.Logger
}

func NewDispatcher(mem image.Memory, conv convert.Converter, refs References, order models.ByteOrder) *Dispatcher {
	return &Dispatcher{Memory: mem, Converter: conv, References: refs, ByteOrder: order, Logger: zap.NewNop()}
}

// object bundles what the axis resolution of one characteristic needs
type object struct {
	chx      models.CharacteristicDescriptor
	order    models.ByteOrder
	resolved *layout.Resolved
}

// Decode resolves the axes of chx and reads its function values
func (d *Dispatcher) Decode(chx models.CharacteristicDescriptor) (models.Tabular, error) {
	tab, ok := models.NewTabular(chx.Type)
	if !ok {
		return nil, fmt.Errorf("%s: %s is not a curve-like type", chx.Name, chx.Type)
	}
	dims := chx.Type.Dimensions()
	if len(chx.AxisDescriptions) != dims {
		return nil, models.ErrMalformedAxis{Object: chx.Name,
			What: fmt.Sprintf("%s needs %d axis descriptions, got %d", chx.Type, dims, len(chx.AxisDescriptions))}
	}

	order := chx.ByteOrder.Or(d.ByteOrder)
	counts, err := layout.ReadCounts(d.Memory, chx.Address, order, chx.Name, chx.Layout)
	if err != nil {
		return nil, err
	}
	resolved, err := layout.Resolve(chx.Name, chx.Layout, counts)
	if err != nil {
		return nil, err
	}
	obj := object{chx: chx, order: order, resolved: resolved}

	table := tab.Table()
	table.Axes = make([]models.AxisValues, dims)
	table.Shape = make([]int, dims)
	for i, desc := range chx.AxisDescriptions {
		name := models.AxisNames[i]
		av, err := d.resolveAxis(obj, name, desc)
		if err != nil {
			return nil, err
		}
		table.Axes[i] = av
		table.Shape[i] = av.Count
	}

	if err := d.readFunctionValues(obj, table); err != nil {
		return nil, err
	}

	category := string(chx.Type)
	if chx.Type == models.TypeCurve {
		category = string(chx.AxisDescriptions[0].Attribute)
	}
	table.Base = models.Base{
		Name:              chx.Name,
		Comment:           chx.LongIdentifier,
		Category:          category,
		DisplayIdentifier: chx.DisplayIdentifier,
	}
	d.Logger.Debug("decoded characteristic",
		zap.String("object", chx.Name),
		zap.String("type", string(chx.Type)),
		zap.Ints("shape", table.Shape))
	return tab, nil
}

// dynamicCount is the counter value of an axis, else its declared maximum
func dynamicCount(r *layout.Resolved, name string, declared int) int {
	if n, ok := r.Counts.AxisPts[name]; ok {
		return n
	}
	if n, ok := r.Counts.Rescale[name]; ok {
		return n
	}
	return declared
}

func (d *Dispatcher) resolveAxis(obj object, name string, desc models.AxisDescription) (models.AxisValues, error) {
	av := models.AxisValues{Attribute: desc.Attribute, Unit: desc.PhysUnit}
	if av.Unit == "" {
		av.Unit = d.Converter.Unit(desc.Conversion)
	}
	count := dynamicCount(obj.resolved, name, desc.MaxAxisPoints)
	owner := obj.chx.Name

	switch desc.Attribute {
	case models.FixAxis:
		raw, err := fixAxisValues(owner, name, desc)
		if err != nil {
			return av, err
		}
		if err := d.convertAxis(owner, desc, raw, &av); err != nil {
			return av, err
		}
	case models.StdAxis:
		c, ok := obj.resolved.Find(models.AxisPtsKind, name)
		if !ok {
			return av, models.ErrMalformedRecordLayout{Object: owner,
				What: fmt.Sprintf("STD_AXIS '%s' without axisPts component", name)}
		}
		raw, err := d.Memory.ReadArray(obj.chx.Address+uint32(c.EffectiveOffset), count, c.DataType, obj.order)
		if err != nil {
			return av, fmt.Errorf("%s: reading axis '%s': %w", owner, name, err)
		}
		if err := d.convertAxis(owner, desc, convert.Flip(raw, c.IndexOrder), &av); err != nil {
			return av, err
		}
	case models.ComAxis:
		ref, ok := d.References.AxisPts(desc.AxisPtsRef)
		if !ok {
			return av, models.ErrUnresolvedAxisReference{Object: owner, Attribute: desc.Attribute, Ref: desc.AxisPtsRef}
		}
		av.AxisPtsRef = desc.AxisPtsRef
		av.Count = min(count, len(ref.RawValues))
	case models.ResAxis:
		if _, ok := d.References.AxisPts(desc.AxisPtsRef); !ok {
			return av, models.ErrUnresolvedAxisReference{Object: owner, Attribute: desc.Attribute, Ref: desc.AxisPtsRef}
		}
		av.AxisPtsRef = desc.AxisPtsRef
		av.Count = count
	case models.CurveAxis:
		ref, ok := d.References.Curve(desc.CurveAxisRef)
		if !ok {
			return av, models.ErrUnresolvedAxisReference{Object: owner, Attribute: desc.Attribute, Ref: desc.CurveAxisRef}
		}
		av.CurveAxisRef = desc.CurveAxisRef
		av.Count = min(count, len(ref.RawFncValues))
	default:
		return av, models.ErrMalformedAxis{Object: owner, What: fmt.Sprintf("unknown axis attribute '%s'", desc.Attribute)}
	}
	return av, nil
}

func (d *Dispatcher) convertAxis(owner string, desc models.AxisDescription, raw []float64, av *models.AxisValues) error {
	converted, err := d.Converter.Convert(desc.Conversion, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}
	av.RawValues = raw
	av.ConvertedValues = converted
	av.Count = len(raw)
	return nil
}

// fixAxisValues generates a FIX_AXIS from exactly one of its parameter sets
func fixAxisValues(owner, name string, desc models.AxisDescription) ([]float64, error) {
	set := 0
	if desc.FixAxisParDist != nil {
		set++
	}
	if desc.FixAxisPar != nil {
		set++
	}
	if desc.FixAxisParList != nil {
		set++
	}
	if set != 1 {
		return nil, models.ErrMalformedAxis{Object: owner,
			What: fmt.Sprintf("FIX_AXIS '%s' needs exactly one of FIX_AXIS_PAR_DIST, FIX_AXIS_PAR, FIX_AXIS_PAR_LIST", name)}
	}
	switch {
	case desc.FixAxisParDist != nil:
		p := desc.FixAxisParDist
		return axis.FixAxisParDist(p.Offset, p.Distance, p.Count), nil
	case desc.FixAxisPar != nil:
		p := desc.FixAxisPar
		return axis.FixAxisPar(p.Offset, p.Shift, p.Count), nil
	default:
		out := make([]float64, len(desc.FixAxisParList))
		copy(out, desc.FixAxisParList)
		return out, nil
	}
}

func (d *Dispatcher) readFunctionValues(obj object, table *models.FunctionTable) error {
	chx := obj.chx
	c, ok := obj.resolved.Find(models.FncValues, "")
	if !ok {
		return models.ErrMalformedRecordLayout{Object: chx.Name, What: "no fncValues component"}
	}
	n := convert.Elements(table.Shape)
	raw, err := d.Memory.ReadArray(chx.Address+uint32(c.EffectiveOffset), n, c.DataType, obj.order)
	if err != nil {
		return fmt.Errorf("%s: reading function values: %w", chx.Name, err)
	}
	raw, err = convert.Reshape(raw, table.Shape, c.IndexMode)
	if err != nil {
		return fmt.Errorf("%s: %w", chx.Name, err)
	}
	converted, err := d.Converter.Convert(chx.Conversion, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", chx.Name, err)
	}
	table.RawFncValues = raw
	table.ConvertedFncValues = converted
	table.FncUnit = chx.PhysUnit
	if table.FncUnit == "" {
		table.FncUnit = d.Converter.Unit(chx.Conversion)
	}
	return nil
}
