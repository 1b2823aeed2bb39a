// Package scalar decodes VALUE, ASCII and VAL_BLK characteristics.
package scalar

import (
	"fmt"
	"math/bits"

	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/convert"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/layout"
	"github.com/tosih/a2l-calreader/pkg/models"
)

type Decoder struct {
	Memory    image.Memory
	Converter convert.Converter
	ByteOrder models.ByteOrder
	Logger    *zap.Logger
}

func NewDecoder(mem image.Memory, conv convert.Converter, order models.ByteOrder) *Decoder {
	return &Decoder{Memory: mem, Converter: conv, ByteOrder: order, Logger: zap.NewNop()}
}

// Decode dispatches on the characteristic type
func (d *Decoder) Decode(chx models.CharacteristicDescriptor) (models.Parameter, error) {
	switch chx.Type {
	case models.TypeValue:
		return d.Value(chx)
	case models.TypeASCII:
		return d.Ascii(chx)
	case models.TypeValBlk:
		return d.ValueBlock(chx)
	default:
		return nil, fmt.Errorf("%s: %s is not a scalar type", chx.Name, chx.Type)
	}
}

// ExtractBits right-aligns the bits of raw selected by mask
func ExtractBits(raw, mask uint64) uint64 {
	return (raw & mask) >> bits.TrailingZeros64(mask)
}

// SingleBit reports whether mask selects exactly one bit
func SingleBit(mask uint64) bool {
	return bits.OnesCount64(mask) == 1
}

func checkMask(chx models.CharacteristicDescriptor, dt models.DataType) error {
	if chx.BitMask == nil {
		return nil
	}
	if *chx.BitMask == 0 {
		return models.ErrBitMaskInconsistency{Object: chx.Name, What: "mask has no bits set"}
	}
	if dt.Float() {
		return models.ErrBitMaskInconsistency{Object: chx.Name, Mask: *chx.BitMask,
			What: fmt.Sprintf("mask on %s", dt)}
	}
	return nil
}

// fncValues returns the value component of the layout and its address. A layout
// without one stores the value at the base address.
func fncValues(chx models.CharacteristicDescriptor) (models.RecordLayoutComponent, uint32, error) {
	if err := layout.Validate(chx.Name, chx.Layout); err != nil {
		return models.RecordLayoutComponent{}, 0, err
	}
	c, ok := chx.Layout.Find(models.FncValues, "")
	if !ok {
		return c, 0, models.ErrMalformedRecordLayout{Object: chx.Name, What: "no fncValues component"}
	}
	return c, chx.Address + uint32(c.Offset), nil
}

func (d *Decoder) unit(chx models.CharacteristicDescriptor) string {
	if chx.PhysUnit != "" {
		return chx.PhysUnit
	}
	return d.Converter.Unit(chx.Conversion)
}

// readMasked reads one element and right-aligns its masked bits. The bits stay
// integer until extracted.
func (d *Decoder) readMasked(addr uint32, dt models.DataType, order models.ByteOrder, mask uint64) (float64, error) {
	raw, err := d.Memory.ReadUint(addr, dt, order)
	if err != nil {
		return 0, err
	}
	return float64(ExtractBits(raw, mask)), nil
}

// Value decodes a VALUE. A single bit mask makes it a BOOLEAN unless the conversion
// is verbal; a dependent characteristic is always a DEPENDENT_VALUE.
func (d *Decoder) Value(chx models.CharacteristicDescriptor) (*models.Value, error) {
	c, addr, err := fncValues(chx)
	if err != nil {
		return nil, err
	}
	if err := checkMask(chx, c.DataType); err != nil {
		return nil, err
	}
	order := chx.ByteOrder.Or(d.ByteOrder)

	var raw float64
	boolean := false
	if chx.BitMask != nil {
		raw, err = d.readMasked(addr, c.DataType, order, *chx.BitMask)
		boolean = SingleBit(*chx.BitMask)
	} else {
		raw, err = d.Memory.ReadNumeric(addr, c.DataType, order, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", chx.Name, err)
	}

	converted, err := d.Converter.Convert(chx.Conversion, []float64{raw})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", chx.Name, err)
	}
	phys := converted[0]

	category := models.CategoryValue
	if boolean && !phys.IsText() {
		category = models.CategoryBoolean
		phys.Text = "false"
		if phys.Value != 0 {
			phys.Text = "true"
		}
	}
	if chx.Dependent {
		category = models.CategoryDependentValue
	}
	return &models.Value{
		Base: models.Base{
			Name:              chx.Name,
			Comment:           chx.LongIdentifier,
			Category:          category,
			DisplayIdentifier: chx.DisplayIdentifier,
		},
		RawValue:       raw,
		ConvertedValue: phys,
		Unit:           d.unit(chx),
	}, nil
}

// Length is the byte length of an ASCII characteristic
func Length(chx models.CharacteristicDescriptor) int {
	if len(chx.MatrixDim) > 0 && chx.MatrixDim[0] > 0 {
		return chx.MatrixDim[0]
	}
	return chx.Number
}

// Ascii decodes a fixed length string
func (d *Decoder) Ascii(chx models.CharacteristicDescriptor) (*models.Ascii, error) {
	n := Length(chx)
	if n <= 0 {
		return nil, models.ErrMalformedRecordLayout{Object: chx.Name, What: "ASCII without length"}
	}
	text, err := d.Memory.ReadText(chx.Address, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", chx.Name, err)
	}
	return &models.Ascii{
		Base: models.Base{
			Name:              chx.Name,
			Comment:           chx.LongIdentifier,
			Category:          models.CategoryASCII,
			DisplayIdentifier: chx.DisplayIdentifier,
		},
		Length: n,
		Value:  text,
	}, nil
}

// Shape is the matrix shape of a VAL_BLK, its element count when no matrix is declared
func Shape(chx models.CharacteristicDescriptor) []int {
	var shape []int
	for _, dim := range chx.MatrixDim {
		if dim > 0 {
			shape = append(shape, dim)
		}
	}
	if len(shape) == 0 {
		return []int{chx.Number}
	}
	return shape
}

// ValueBlock decodes a VAL_BLK, element-wise bit extraction included
func (d *Decoder) ValueBlock(chx models.CharacteristicDescriptor) (*models.ValueBlock, error) {
	c, addr, err := fncValues(chx)
	if err != nil {
		return nil, err
	}
	if err := checkMask(chx, c.DataType); err != nil {
		return nil, err
	}
	order := chx.ByteOrder.Or(d.ByteOrder)
	shape := Shape(chx)
	n := convert.Elements(shape)

	var raw []float64
	if chx.BitMask != nil {
		size, _ := c.DataType.Size()
		raw = make([]float64, n)
		for i := range raw {
			raw[i], err = d.readMasked(addr+uint32(i*size), c.DataType, order, *chx.BitMask)
			if err != nil {
				break
			}
		}
	} else {
		raw, err = d.Memory.ReadArray(addr, n, c.DataType, order)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", chx.Name, err)
	}
	raw, err = convert.Reshape(raw, shape, c.IndexMode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", chx.Name, err)
	}
	converted, err := d.Converter.Convert(chx.Conversion, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", chx.Name, err)
	}
	return &models.ValueBlock{
		Base: models.Base{
			Name:              chx.Name,
			Comment:           chx.LongIdentifier,
			Category:          models.CategoryValBlk,
			DisplayIdentifier: chx.DisplayIdentifier,
		},
		RawValues:       raw,
		ConvertedValues: converted,
		Shape:           shape,
		Unit:            d.unit(chx),
	}, nil
}
