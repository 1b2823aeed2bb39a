package symbols

import (
	"encoding/json"
	"fmt"

	"github.com/tosih/a2l-calreader/pkg/models"
)

// Document is the pre-parsed symbol database as found on disk (YAML or JSON)
type Document struct {
	ModPar          ModPar              `json:"mod_par"`
	ModCommon       ModCommon           `json:"mod_common"`
	CompuMethods    []CompuMethodDoc    `json:"compu_methods"`
	CompuTabs       []CompuTabDoc       `json:"compu_tabs"`
	RecordLayouts   []RecordLayoutDoc   `json:"record_layouts"`
	AxisPts         []AxisPtsDoc        `json:"axis_pts"`
	Characteristics []CharacteristicDoc `json:"characteristics"`
}

type ModPar struct {
	EPK     string  `json:"epk"`
	AddrEPK *uint32 `json:"addr_epk"`
}

type ModCommon struct {
	ByteOrder models.ByteOrder `json:"byte_order"`
}

type LinearCoeffs struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

type CompuMethodDoc struct {
	Name           string                `json:"name"`
	ConversionType models.ConversionType `json:"conversion_type"`
	Unit           string                `json:"unit"`
	CoeffsLinear   *LinearCoeffs         `json:"coeffs_linear"`
	Coeffs         []float64             `json:"coeffs"`
	CompuTabRef    string                `json:"compu_tab_ref"`
}

type TabPairDoc struct {
	In  float64 `json:"in"`
	Out float64 `json:"out"`
}

type VerbPairDoc struct {
	In  float64 `json:"in"`
	Out string  `json:"out"`
}

type CompuTabDoc struct {
	Name         string        `json:"name"`
	Pairs        []TabPairDoc  `json:"pairs"`
	Verbal       []VerbPairDoc `json:"verbal"`
	DefaultValue *float64      `json:"default_value"`
	DefaultText  string        `json:"default_text"`
}

type ComponentDoc struct {
	Position   int                  `json:"position"`
	Kind       models.ComponentKind `json:"kind"`
	Axis       AxisName             `json:"axis"`
	DataType   models.DataType      `json:"datatype"`
	IndexOrder models.IndexOrder    `json:"index_order"`
	IndexMode  models.IndexMode     `json:"index_mode"`
	// MaxRescalePairs bounds an axisRescale array, max_axis_points of the
	// owning object when absent
	MaxRescalePairs *int `json:"max_number_of_rescale_pairs"`
	// Offset is derived from the preceding components when absent
	Offset *int `json:"offset"`
}

type RecordLayoutDoc struct {
	Name       string         `json:"name"`
	Components []ComponentDoc `json:"components"`
}

type AxisPtsDoc struct {
	Name              string           `json:"name"`
	LongIdentifier    string           `json:"long_identifier"`
	DisplayIdentifier string           `json:"display_identifier"`
	Address           uint32           `json:"address"`
	RecordLayout      string           `json:"record_layout"`
	Conversion        string           `json:"conversion"`
	MaxAxisPoints     int              `json:"max_axis_points"`
	ByteOrder         models.ByteOrder `json:"byte_order"`
	PhysUnit          string           `json:"phys_unit"`
}

type FixAxisParDistDoc struct {
	Offset    float64 `json:"offset"`
	Distance  float64 `json:"distance"`
	NumberAPo int     `json:"number_apo"`
}

type FixAxisParDoc struct {
	Offset    float64 `json:"offset"`
	Shift     int     `json:"shift"`
	NumberAPo int     `json:"number_apo"`
}

type AxisDescrDoc struct {
	Attribute      models.AxisAttribute `json:"attribute"`
	MaxAxisPoints  int                  `json:"max_axis_points"`
	Conversion     string               `json:"conversion"`
	AxisPtsRef     string               `json:"axis_pts_ref"`
	CurveAxisRef   string               `json:"curve_axis_ref"`
	FixAxisParDist *FixAxisParDistDoc   `json:"fix_axis_par_dist"`
	FixAxisPar     *FixAxisParDoc       `json:"fix_axis_par"`
	FixAxisParList []float64            `json:"fix_axis_par_list"`
	PhysUnit       string               `json:"phys_unit"`
}

type CharacteristicDoc struct {
	Name              string                    `json:"name"`
	LongIdentifier    string                    `json:"long_identifier"`
	DisplayIdentifier string                    `json:"display_identifier"`
	Type              models.CharacteristicType `json:"type"`
	Address           uint32                    `json:"address"`
	RecordLayout      string                    `json:"record_layout"`
	Conversion        string                    `json:"conversion"`
	ByteOrder         models.ByteOrder          `json:"byte_order"`
	BitMask           *uint64                   `json:"bit_mask"`
	Number            int                       `json:"number"`
	MatrixDim         []int                     `json:"matrix_dim"`
	Dependent         bool                      `json:"dependent_characteristic"`
	PhysUnit          string                    `json:"phys_unit"`
	AxisDescrs        []AxisDescrDoc            `json:"axis_descrs"`
}

// AxisName also accepts the unquoted YAML forms of y (a boolean) and 4, 5 (numbers)
type AxisName string

func (a *AxisName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AxisName(s)
		return nil
	}
	switch string(data) {
	case "true":
		*a = "y"
	case "4", "5":
		*a = AxisName(data)
	case "null":
		*a = ""
	default:
		return fmt.Errorf("invalid axis name %s", data)
	}
	return nil
}
