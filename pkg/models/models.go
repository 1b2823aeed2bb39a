package models

// ComponentKind identifies a record layout component
type ComponentKind string

const (
	FncValues      ComponentKind = "fncValues"
	AxisPtsKind    ComponentKind = "axisPts"
	AxisRescale    ComponentKind = "axisRescale"
	NoAxisPts      ComponentKind = "noAxisPts"
	NoRescale      ComponentKind = "noRescale"
	Offset         ComponentKind = "offset"
	DistOp         ComponentKind = "distOp"
	ShiftOp        ComponentKind = "shiftOp"
	Identification ComponentKind = "identification"
	Reserved       ComponentKind = "reserved"
	RipAddr        ComponentKind = "ripAddr"
	SrcAddr        ComponentKind = "srcAddr"
)

// AxisBound reports whether the kind belongs to a named axis (x, y, z, 4, 5)
func (k ComponentKind) AxisBound() bool {
	switch k {
	case AxisPtsKind, AxisRescale, NoAxisPts, NoRescale, Offset, DistOp, ShiftOp, RipAddr, SrcAddr:
		return true
	}
	return false
}

// Known reports whether the kind is part of the closed component set
func (k ComponentKind) Known() bool {
	switch k {
	case FncValues, Identification, Reserved:
		return true
	}
	return k.AxisBound()
}

// Array reports whether the component is a variable-length axis array
func (k ComponentKind) Array() bool {
	return k == AxisPtsKind || k == AxisRescale
}

// AxisNames lists the dimension names in order
var AxisNames = []string{"x", "y", "z", "4", "5"}

// ValidAxis reports whether name is one of AxisNames
func ValidAxis(name string) bool {
	for _, n := range AxisNames {
		if n == name {
			return true
		}
	}
	return false
}

// RecordLayoutComponent is one static entry of a record layout
type RecordLayoutComponent struct {
	Kind        ComponentKind `json:"kind"`
	Axis        string        `json:"axis,omitempty"`
	Offset      int           `json:"offset"`
	DataType    DataType      `json:"datatype"`
	MaxElements int           `json:"maxElements,omitempty"`
	Position    int           `json:"position"`
	IndexOrder  IndexOrder    `json:"indexOrder,omitempty"`
	IndexMode   IndexMode     `json:"indexMode,omitempty"`
}

// ElementBytes is the size of one element; rescale arrays store pairs
func (c RecordLayoutComponent) ElementBytes() (int, error) {
	size, err := c.DataType.Size()
	if err != nil {
		return 0, err
	}
	if c.Kind == AxisRescale {
		return 2 * size, nil
	}
	return size, nil
}

// RecordLayout is the byte-layout template of an object
type RecordLayout struct {
	Name       string                  `json:"name"`
	Components []RecordLayoutComponent `json:"components"`
}

// Find returns the component of the given kind and axis
func (rl RecordLayout) Find(kind ComponentKind, axis string) (RecordLayoutComponent, bool) {
	for _, c := range rl.Components {
		if c.Kind == kind && c.Axis == axis {
			return c, true
		}
	}
	return RecordLayoutComponent{}, false
}

// Has reports whether the layout contains kind for axis
func (rl RecordLayout) Has(kind ComponentKind, axis string) bool {
	_, ok := rl.Find(kind, axis)
	return ok
}

// Clone returns a deep copy so callers cannot alter the symbol database
func (rl RecordLayout) Clone() RecordLayout {
	out := RecordLayout{Name: rl.Name, Components: make([]RecordLayoutComponent, len(rl.Components))}
	copy(out.Components, rl.Components)
	return out
}

// AxisPointsDescriptor describes an AXIS_PTS object
type AxisPointsDescriptor struct {
	Name              string       `json:"name"`
	LongIdentifier    string       `json:"longIdentifier,omitempty"`
	DisplayIdentifier string       `json:"displayIdentifier,omitempty"`
	Address           uint32       `json:"address"`
	Layout            RecordLayout `json:"layout"`
	Conversion        string       `json:"conversion"`
	ByteOrder         ByteOrder    `json:"byteOrder,omitempty"`
	MaxAxisPoints     int          `json:"maxAxisPoints"`
	PhysUnit          string       `json:"physUnit,omitempty"`
}

// CharacteristicType is the CHARACTERISTIC type tag
type CharacteristicType string

const (
	TypeValue  CharacteristicType = "VALUE"
	TypeASCII  CharacteristicType = "ASCII"
	TypeValBlk CharacteristicType = "VAL_BLK"
	TypeCurve  CharacteristicType = "CURVE"
	TypeMap    CharacteristicType = "MAP"
	TypeCuboid CharacteristicType = "CUBOID"
	TypeCube4  CharacteristicType = "CUBE_4"
	TypeCube5  CharacteristicType = "CUBE_5"
)

// CharacteristicTypes lists the decodable types, in decode order
var CharacteristicTypes = []CharacteristicType{
	TypeValue, TypeASCII, TypeValBlk, TypeCurve, TypeMap, TypeCuboid, TypeCube4, TypeCube5,
}

// Dimensions is the number of axes of a curve-like type, 0 for scalars
func (t CharacteristicType) Dimensions() int {
	switch t {
	case TypeCurve:
		return 1
	case TypeMap:
		return 2
	case TypeCuboid:
		return 3
	case TypeCube4:
		return 4
	case TypeCube5:
		return 5
	}
	return 0
}

// CharacteristicDescriptor describes a CHARACTERISTIC object
type CharacteristicDescriptor struct {
	Name              string             `json:"name"`
	LongIdentifier    string             `json:"longIdentifier,omitempty"`
	DisplayIdentifier string             `json:"displayIdentifier,omitempty"`
	Type              CharacteristicType `json:"type"`
	Address           uint32             `json:"address"`
	Layout            RecordLayout       `json:"layout"`
	Conversion        string             `json:"conversion"`
	ByteOrder         ByteOrder          `json:"byteOrder,omitempty"`
	BitMask           *uint64            `json:"bitMask,omitempty"`
	Number            int                `json:"number,omitempty"`
	MatrixDim         []int              `json:"matrixDim,omitempty"`
	Dependent         bool               `json:"dependent,omitempty"`
	PhysUnit          string             `json:"physUnit,omitempty"`
	AxisDescriptions  []AxisDescription  `json:"axisDescriptions,omitempty"`
}

// AxisAttribute is the AXIS_DESCR attribute
type AxisAttribute string

const (
	StdAxis   AxisAttribute = "STD_AXIS"
	FixAxis   AxisAttribute = "FIX_AXIS"
	ComAxis   AxisAttribute = "COM_AXIS"
	ResAxis   AxisAttribute = "RES_AXIS"
	CurveAxis AxisAttribute = "CURVE_AXIS"
)

// FixAxisParDist is FIX_AXIS_PAR_DIST
type FixAxisParDist struct {
	Offset   float64 `json:"offset"`
	Distance float64 `json:"distance"`
	Count    int     `json:"count"`
}

// FixAxisPar is FIX_AXIS_PAR
type FixAxisPar struct {
	Offset float64 `json:"offset"`
	Shift  int     `json:"shift"`
	Count  int     `json:"count"`
}

// AxisDescription is one AXIS_DESCR of a curve-like characteristic
type AxisDescription struct {
	Attribute      AxisAttribute   `json:"attribute"`
	MaxAxisPoints  int             `json:"maxAxisPoints"`
	Conversion     string          `json:"conversion"`
	AxisPtsRef     string          `json:"axisPtsRef,omitempty"`
	CurveAxisRef   string          `json:"curveAxisRef,omitempty"`
	FixAxisParDist *FixAxisParDist `json:"fixAxisParDist,omitempty"`
	FixAxisPar     *FixAxisPar     `json:"fixAxisPar,omitempty"`
	FixAxisParList []float64       `json:"fixAxisParList,omitempty"`
	PhysUnit       string          `json:"physUnit,omitempty"`
}

// EPK is the EPROM identifier declared in MOD_PAR
type EPK struct {
	Value   string `json:"value"`
	Address uint32 `json:"address"`
}
