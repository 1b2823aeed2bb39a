// Package symbols loads the pre-parsed A2L symbol database and binds record
// layouts to the objects using them.
package symbols

import (
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/tosih/a2l-calreader/pkg/convert"
	"github.com/tosih/a2l-calreader/pkg/layout"
	"github.com/tosih/a2l-calreader/pkg/models"
)

// Model is the read-only query surface over a symbol database. Every query
// returns copies; callers can not alter the model.
type Model struct {
	epk             *models.EPK
	byteOrder       models.ByteOrder
	compuMethods    map[string]models.CompuMethod
	axisPts         []models.AxisPointsDescriptor
	characteristics map[models.CharacteristicType][]models.CharacteristicDescriptor
}

var _ convert.Methods = &Model{}

// Load reads a YAML or JSON symbol database
func Load(filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

func Parse(data []byte) (*Model, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return New(doc)
}

// New binds a document into a model
func New(doc Document) (*Model, error) {
	m := &Model{
		byteOrder:       doc.ModCommon.ByteOrder.Or(models.MsbLast),
		compuMethods:    map[string]models.CompuMethod{},
		characteristics: map[models.CharacteristicType][]models.CharacteristicDescriptor{},
	}
	if doc.ModPar.EPK != "" && doc.ModPar.AddrEPK != nil {
		m.epk = &models.EPK{Value: doc.ModPar.EPK, Address: *doc.ModPar.AddrEPK}
	}
	if err := m.bindCompuMethods(doc); err != nil {
		return nil, err
	}

	layouts := map[string]RecordLayoutDoc{}
	for _, rl := range doc.RecordLayouts {
		if _, ok := layouts[rl.Name]; ok {
			return nil, fmt.Errorf("duplicate record layout '%s'", rl.Name)
		}
		layouts[rl.Name] = rl
	}

	for _, ap := range doc.AxisPts {
		desc, err := bindAxisPts(ap, layouts)
		if err != nil {
			return nil, err
		}
		m.axisPts = append(m.axisPts, desc)
	}
	sort.SliceStable(m.axisPts, func(i, j int) bool { return m.axisPts[i].Address < m.axisPts[j].Address })

	for _, c := range doc.Characteristics {
		desc, err := bindCharacteristic(c, layouts)
		if err != nil {
			return nil, err
		}
		m.characteristics[desc.Type] = append(m.characteristics[desc.Type], desc)
	}
	for _, list := range m.characteristics {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Address < list[j].Address })
	}
	return m, nil
}

func (m *Model) bindCompuMethods(doc Document) error {
	tabs := map[string]CompuTabDoc{}
	for _, tab := range doc.CompuTabs {
		tabs[tab.Name] = tab
	}
	for _, cm := range doc.CompuMethods {
		if _, ok := m.compuMethods[cm.Name]; ok {
			return fmt.Errorf("duplicate compu method '%s'", cm.Name)
		}
		out := models.CompuMethod{Name: cm.Name, ConversionType: cm.ConversionType, Unit: cm.Unit}
		switch cm.ConversionType {
		case models.Identical, "":
		case models.Linear:
			if cm.CoeffsLinear == nil {
				return fmt.Errorf("compu method '%s': LINEAR without coeffs_linear", cm.Name)
			}
			out.A, out.B = cm.CoeffsLinear.A, cm.CoeffsLinear.B
		case models.RatFunc:
			if len(cm.Coeffs) != 6 {
				return fmt.Errorf("compu method '%s': RAT_FUNC needs 6 coeffs, got %d", cm.Name, len(cm.Coeffs))
			}
			out.Coeffs = append([]float64(nil), cm.Coeffs...)
		case models.TabIntp, models.TabNoIntp, models.TabVerb:
			tab, ok := tabs[cm.CompuTabRef]
			if !ok {
				return fmt.Errorf("compu method '%s': unknown compu tab '%s'", cm.Name, cm.CompuTabRef)
			}
			for _, p := range tab.Pairs {
				out.Pairs = append(out.Pairs, models.TabPair{In: p.In, Out: p.Out})
			}
			for _, p := range tab.Verbal {
				out.Verbal = append(out.Verbal, models.VerbPair{In: p.In, Out: p.Out})
			}
			out.DefaultValue = tab.DefaultValue
			out.DefaultText = tab.DefaultText
		default:
			return fmt.Errorf("compu method '%s': unknown conversion type '%s'", cm.Name, cm.ConversionType)
		}
		m.compuMethods[cm.Name] = out
	}
	return nil
}

// bindLayout instantiates a record layout for one object. Array maxima come from
// the object; offsets missing in the document follow the previous component.
func bindLayout(object string, rl RecordLayoutDoc, maxima map[string]int, fncElements int) (models.RecordLayout, error) {
	docs := make([]ComponentDoc, len(rl.Components))
	copy(docs, rl.Components)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Position < docs[j].Position })

	out := models.RecordLayout{Name: rl.Name, Components: make([]models.RecordLayoutComponent, 0, len(docs))}
	next := 0
	for _, d := range docs {
		c := models.RecordLayoutComponent{
			Kind:       d.Kind,
			Axis:       string(d.Axis),
			DataType:   d.DataType,
			Position:   d.Position,
			IndexOrder: d.IndexOrder,
			IndexMode:  d.IndexMode,
		}
		switch {
		case c.Kind == models.AxisRescale && d.MaxRescalePairs != nil:
			c.MaxElements = *d.MaxRescalePairs
		case c.Kind.Array():
			c.MaxElements = maxima[c.Axis]
		case c.Kind == models.FncValues:
			c.MaxElements = fncElements
		}
		c.Offset = next
		if d.Offset != nil {
			c.Offset = *d.Offset
		}
		size, err := layout.DeclaredBytes(c)
		if err != nil {
			return out, models.ErrMalformedRecordLayout{Object: object,
				What: fmt.Sprintf("%s at position %d: %v", c.Kind, c.Position, err)}
		}
		next = c.Offset + size
		out.Components = append(out.Components, c)
	}
	return out, layout.Validate(object, out)
}

func bindAxisPts(ap AxisPtsDoc, layouts map[string]RecordLayoutDoc) (models.AxisPointsDescriptor, error) {
	rl, ok := layouts[ap.RecordLayout]
	if !ok {
		return models.AxisPointsDescriptor{}, fmt.Errorf("axis pts '%s': unknown record layout '%s'", ap.Name, ap.RecordLayout)
	}
	bound, err := bindLayout(ap.Name, rl, map[string]int{"x": ap.MaxAxisPoints}, 0)
	if err != nil {
		return models.AxisPointsDescriptor{}, err
	}
	return models.AxisPointsDescriptor{
		Name:              ap.Name,
		LongIdentifier:    ap.LongIdentifier,
		DisplayIdentifier: ap.DisplayIdentifier,
		Address:           ap.Address,
		Layout:            bound,
		Conversion:        conversionRef(ap.Conversion),
		ByteOrder:         ap.ByteOrder,
		MaxAxisPoints:     ap.MaxAxisPoints,
		PhysUnit:          ap.PhysUnit,
	}, nil
}

func conversionRef(ref string) string {
	if ref == "" {
		return models.NoCompuMethod
	}
	return ref
}

func validType(t models.CharacteristicType) bool {
	for _, known := range models.CharacteristicTypes {
		if t == known {
			return true
		}
	}
	return false
}

// fncElements is the declared number of function values of a characteristic
func fncElements(c CharacteristicDoc) int {
	switch c.Type {
	case models.TypeValue:
		return 1
	case models.TypeASCII, models.TypeValBlk:
		n := 1
		found := false
		for _, dim := range c.MatrixDim {
			if dim > 0 {
				n *= dim
				found = true
			}
		}
		if !found {
			return c.Number
		}
		return n
	}
	n := 1
	for _, ad := range c.AxisDescrs {
		n *= ad.MaxAxisPoints
	}
	return n
}

func bindCharacteristic(c CharacteristicDoc, layouts map[string]RecordLayoutDoc) (models.CharacteristicDescriptor, error) {
	if !validType(c.Type) {
		return models.CharacteristicDescriptor{}, fmt.Errorf("characteristic '%s': unknown type '%s'", c.Name, c.Type)
	}
	if len(c.AxisDescrs) > len(models.AxisNames) {
		return models.CharacteristicDescriptor{}, fmt.Errorf("characteristic '%s': %d axis descriptions", c.Name, len(c.AxisDescrs))
	}
	rl, ok := layouts[c.RecordLayout]
	if !ok {
		return models.CharacteristicDescriptor{}, fmt.Errorf("characteristic '%s': unknown record layout '%s'", c.Name, c.RecordLayout)
	}

	maxima := map[string]int{}
	axes := make([]models.AxisDescription, 0, len(c.AxisDescrs))
	for i, ad := range c.AxisDescrs {
		maxima[models.AxisNames[i]] = ad.MaxAxisPoints
		desc := models.AxisDescription{
			Attribute:      ad.Attribute,
			MaxAxisPoints:  ad.MaxAxisPoints,
			Conversion:     conversionRef(ad.Conversion),
			AxisPtsRef:     ad.AxisPtsRef,
			CurveAxisRef:   ad.CurveAxisRef,
			FixAxisParList: ad.FixAxisParList,
			PhysUnit:       ad.PhysUnit,
		}
		if p := ad.FixAxisParDist; p != nil {
			desc.FixAxisParDist = &models.FixAxisParDist{Offset: p.Offset, Distance: p.Distance, Count: p.NumberAPo}
		}
		if p := ad.FixAxisPar; p != nil {
			desc.FixAxisPar = &models.FixAxisPar{Offset: p.Offset, Shift: p.Shift, Count: p.NumberAPo}
		}
		axes = append(axes, desc)
	}

	bound, err := bindLayout(c.Name, rl, maxima, fncElements(c))
	if err != nil {
		return models.CharacteristicDescriptor{}, err
	}
	return models.CharacteristicDescriptor{
		Name:              c.Name,
		LongIdentifier:    c.LongIdentifier,
		DisplayIdentifier: c.DisplayIdentifier,
		Type:              c.Type,
		Address:           c.Address,
		Layout:            bound,
		Conversion:        conversionRef(c.Conversion),
		ByteOrder:         c.ByteOrder,
		BitMask:           c.BitMask,
		Number:            c.Number,
		MatrixDim:         c.MatrixDim,
		Dependent:         c.Dependent,
		PhysUnit:          c.PhysUnit,
		AxisDescriptions:  axes,
	}, nil
}
