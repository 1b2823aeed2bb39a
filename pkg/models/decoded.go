package models

// Category names of the parameter store and of decoded values
const (
	CategoryAxisPts        = "AXIS_PTS"
	CategoryValue          = "VALUE"
	CategoryBoolean        = "BOOLEAN"
	CategoryDependentValue = "DEPENDENT_VALUE"
	CategoryASCII          = "ASCII"
	CategoryValBlk         = "VAL_BLK"
	CategoryCurve          = "CURVE"
	CategoryMap            = "MAP"
	CategoryCuboid         = "CUBOID"
	CategoryCube4          = "CUBE_4"
	CategoryCube5          = "CUBE_5"
)

// StoreCategories lists the store sections in decode order
var StoreCategories = []string{
	CategoryAxisPts, CategoryValue, CategoryASCII, CategoryValBlk,
	CategoryCurve, CategoryMap, CategoryCuboid, CategoryCube4, CategoryCube5,
}

// Parameter is the closed set of decoded objects. Only types of this package implement it.
type Parameter interface {
	Common() *Base
	parameter()
}

// Base holds the fields shared by all decoded parameters
type Base struct {
	Name              string `json:"name"`
	Comment           string `json:"comment,omitempty"`
	Category          string `json:"category"`
	DisplayIdentifier string `json:"displayIdentifier,omitempty"`
}

func (b *Base) Common() *Base { return b }

func (*Base) parameter() {}

// AxisCategory is the decoded category of an AXIS_PTS object
type AxisCategory string

const (
	CategoryComAxis AxisCategory = "COM_AXIS"
	CategoryResAxis AxisCategory = "RES_AXIS"
	CategoryFixAxis AxisCategory = "FIX_AXIS"
)

// AxisPts is a decoded AXIS_PTS object
type AxisPts struct {
	Base
	AxisCategory    AxisCategory `json:"axisCategory"`
	RawValues       []float64    `json:"rawValues"`
	ConvertedValues []Phys       `json:"convertedValues"`
	// Paired means RawValues interleaves axis points and rescale values
	Paired  bool   `json:"paired"`
	Virtual bool   `json:"virtual"`
	Unit    string `json:"unit,omitempty"`
}

// AxisPointsRaw returns the even-indexed elements of a paired axis
func (a *AxisPts) AxisPointsRaw() []float64 {
	if !a.Paired {
		return nil
	}
	return strideFloat(a.RawValues, 0)
}

// VirtualAxisPointsRaw returns the odd-indexed elements of a paired axis
func (a *AxisPts) VirtualAxisPointsRaw() []float64 {
	if !a.Paired {
		return nil
	}
	return strideFloat(a.RawValues, 1)
}

func (a *AxisPts) AxisPointsConverted() []Phys {
	if !a.Paired {
		return nil
	}
	return stridePhys(a.ConvertedValues, 0)
}

func (a *AxisPts) VirtualAxisPointsConverted() []Phys {
	if !a.Paired {
		return nil
	}
	return stridePhys(a.ConvertedValues, 1)
}

func strideFloat(values []float64, start int) []float64 {
	out := make([]float64, 0, (len(values)+1)/2)
	for i := start; i < len(values); i += 2 {
		out = append(out, values[i])
	}
	return out
}

func stridePhys(values []Phys, start int) []Phys {
	out := make([]Phys, 0, (len(values)+1)/2)
	for i := start; i < len(values); i += 2 {
		out = append(out, values[i])
	}
	return out
}

// Ascii is a decoded ASCII characteristic
type Ascii struct {
	Base
	Length int    `json:"length"`
	Value  string `json:"value"`
}

// Value is a decoded VALUE characteristic
type Value struct {
	Base
	RawValue       float64 `json:"rawValue"`
	ConvertedValue Phys    `json:"convertedValue"`
	Unit           string  `json:"unit,omitempty"`
}

// ValueBlock is a decoded VAL_BLK characteristic. Values are row-major over Shape.
type ValueBlock struct {
	Base
	RawValues       []float64 `json:"rawValues"`
	ConvertedValues []Phys    `json:"convertedValues"`
	Shape           []int     `json:"shape"`
	Unit            string    `json:"unit,omitempty"`
}

// AxisValues is one resolved axis of a curve-like characteristic. Axes backed by
// another object carry only the reference name; their values live in the store.
type AxisValues struct {
	Attribute       AxisAttribute `json:"attribute"`
	Count           int           `json:"count"`
	RawValues       []float64     `json:"rawValues,omitempty"`
	ConvertedValues []Phys        `json:"convertedValues,omitempty"`
	Unit            string        `json:"unit,omitempty"`
	AxisPtsRef      string        `json:"axisPtsRef,omitempty"`
	CurveAxisRef    string        `json:"curveAxisRef,omitempty"`
}

// FunctionTable holds the function values shared by CURVE, MAP, CUBOID, CUBE_4 and CUBE_5.
// Values are row-major over Shape, Shape[i] being the point count of Axes[i].
type FunctionTable struct {
	Base
	RawFncValues       []float64    `json:"rawFncValues"`
	ConvertedFncValues []Phys       `json:"convertedFncValues"`
	Shape              []int        `json:"shape"`
	FncUnit            string       `json:"fncUnit,omitempty"`
	Axes               []AxisValues `json:"axes"`
}

// Table returns the embedded function table
func (f *FunctionTable) Table() *FunctionTable { return f }

// Curve is a decoded CURVE characteristic
type Curve struct {
	FunctionTable
}

// XAxis returns the single axis of the curve
func (c *Curve) XAxis() AxisValues {
	if len(c.Axes) == 0 {
		return AxisValues{}
	}
	return c.Axes[0]
}

type Map struct {
	FunctionTable
}

type Cuboid struct {
	FunctionTable
}

type Cube4 struct {
	FunctionTable
}

type Cube5 struct {
	FunctionTable
}

// Tabular is implemented by every curve-like parameter
type Tabular interface {
	Parameter
	Table() *FunctionTable
}

// NewTabular allocates the decoded variant for a curve-like type
func NewTabular(t CharacteristicType) (Tabular, bool) {
	switch t {
	case TypeCurve:
		return &Curve{}, true
	case TypeMap:
		return &Map{}, true
	case TypeCuboid:
		return &Cuboid{}, true
	case TypeCube4:
		return &Cube4{}, true
	case TypeCube5:
		return &Cube5{}, true
	}
	return nil, false
}
