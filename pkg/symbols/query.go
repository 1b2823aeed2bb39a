package symbols

import (
	"github.com/tosih/a2l-calreader/pkg/models"
)

// ByteOrder is the module wide default from MOD_COMMON
func (m *Model) ByteOrder() models.ByteOrder {
	return m.byteOrder
}

// EPK returns the EPROM identifier, if MOD_PAR declares both value and address
func (m *Model) EPK() (models.EPK, bool) {
	if m.epk == nil {
		return models.EPK{}, false
	}
	return *m.epk, true
}

func (m *Model) CompuMethod(name string) (models.CompuMethod, bool) {
	cm, ok := m.compuMethods[name]
	if !ok {
		return models.CompuMethod{}, false
	}
	cm.Coeffs = append([]float64(nil), cm.Coeffs...)
	cm.Pairs = append([]models.TabPair(nil), cm.Pairs...)
	cm.Verbal = append([]models.VerbPair(nil), cm.Verbal...)
	return cm, true
}

// AxisPoints returns the AXIS_PTS objects ordered by address
func (m *Model) AxisPoints() []models.AxisPointsDescriptor {
	out := make([]models.AxisPointsDescriptor, len(m.axisPts))
	for i, ap := range m.axisPts {
		ap.Layout = ap.Layout.Clone()
		out[i] = ap
	}
	return out
}

// Characteristics returns the characteristics of one type ordered by address
func (m *Model) Characteristics(t models.CharacteristicType) []models.CharacteristicDescriptor {
	list := m.characteristics[t]
	out := make([]models.CharacteristicDescriptor, len(list))
	for i, c := range list {
		out[i] = cloneCharacteristic(c)
	}
	return out
}

// AllCharacteristics returns every characteristic ordered by type, then address
func (m *Model) AllCharacteristics() []models.CharacteristicDescriptor {
	var out []models.CharacteristicDescriptor
	for _, t := range models.CharacteristicTypes {
		out = append(out, m.Characteristics(t)...)
	}
	return out
}

// Len returns the number of AXIS_PTS and characteristics
func (m *Model) Len() int {
	n := len(m.axisPts)
	for _, list := range m.characteristics {
		n += len(list)
	}
	return n
}

func cloneCharacteristic(c models.CharacteristicDescriptor) models.CharacteristicDescriptor {
	c.Layout = c.Layout.Clone()
	if c.BitMask != nil {
		mask := *c.BitMask
		c.BitMask = &mask
	}
	c.MatrixDim = append([]int(nil), c.MatrixDim...)
	axes := make([]models.AxisDescription, len(c.AxisDescriptions))
	for i, ad := range c.AxisDescriptions {
		if ad.FixAxisParDist != nil {
			p := *ad.FixAxisParDist
			ad.FixAxisParDist = &p
		}
		if ad.FixAxisPar != nil {
			p := *ad.FixAxisPar
			ad.FixAxisPar = &p
		}
		if ad.FixAxisParList != nil {
			ad.FixAxisParList = append([]float64(nil), ad.FixAxisParList...)
		}
		axes[i] = ad
	}
	c.AxisDescriptions = axes
	return c
}
