package models

// NoCompuMethod is the conversion reference meaning raw == physical
const NoCompuMethod = "NO_COMPU_METHOD"

// ConversionType is the COMPU_METHOD conversion keyword
type ConversionType string

const (
	Identical ConversionType = "IDENTICAL"
	Linear    ConversionType = "LINEAR"
	RatFunc   ConversionType = "RAT_FUNC"
	TabIntp   ConversionType = "TAB_INTP"
	TabNoIntp ConversionType = "TAB_NOINTP"
	TabVerb   ConversionType = "TAB_VERB"
)

// CompuMethod is a raw-to-physical conversion rule
type CompuMethod struct {
	Name           string         `json:"name"`
	ConversionType ConversionType `json:"conversionType"`
	Unit           string         `json:"unit,omitempty"`

	// LINEAR: phys = A*raw + B
	A float64 `json:"a,omitempty"`
	B float64 `json:"b,omitempty"`

	// RAT_FUNC coefficients a..f of raw = (a*p^2 + b*p + c) / (d*p^2 + e*p + f)
	Coeffs []float64 `json:"coeffs,omitempty"`

	// TAB_* tables
	Pairs        []TabPair  `json:"pairs,omitempty"`
	Verbal       []VerbPair `json:"verbal,omitempty"`
	DefaultValue *float64   `json:"defaultValue,omitempty"`
	DefaultText  string     `json:"defaultText,omitempty"`
}

// TabPair maps one raw value onto a physical value
type TabPair struct {
	In  float64 `json:"in"`
	Out float64 `json:"out"`
}

// VerbPair maps one raw value onto a text
type VerbPair struct {
	In  float64 `json:"in"`
	Out string  `json:"out"`
}

// Phys is one converted value. Text is set for verbal conversions and boolean literals.
type Phys struct {
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// IsText reports whether the value renders as text
func (p Phys) IsText() bool {
	return p.Text != ""
}
