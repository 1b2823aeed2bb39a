package scalar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tosih/a2l-calreader/pkg/convert"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
)

type methodTable map[string]models.CompuMethod

func (m methodTable) CompuMethod(name string) (models.CompuMethod, bool) {
	cm, ok := m[name]
	return cm, ok
}

var methods = methodTable{
	"CM.TEMP":  {Name: "CM.TEMP", ConversionType: models.Linear, A: 1, B: -40, Unit: "degC"},
	"CM.ONOFF": {Name: "CM.ONOFF", ConversionType: models.TabVerb, Verbal: []models.VerbPair{{In: 0, Out: "OFF"}, {In: 1, Out: "ON"}}},
}

func mask(v uint64) *uint64 { return &v }

func valueLayout(dt models.DataType) models.RecordLayout {
	return models.RecordLayout{Name: "RL.VALUE", Components: []models.RecordLayoutComponent{
		{Kind: models.FncValues, DataType: dt, Position: 1},
	}}
}

func newDecoder(t *testing.T, data []byte) *Decoder {
	t.Helper()
	img, err := image.New([]image.Section{{Address: 0x4000, Data: data}})
	if err != nil {
		t.Fatal(err)
	}
	return NewDecoder(img, convert.NewEvaluator(methods), models.MsbLast)
}

func TestExtractBits(t *testing.T) {
	tests := []struct {
		raw, mask, want uint64
	}{
		{raw: 0b00111000, mask: 0b00111000, want: 0b0111},
		{raw: 0b00111000, mask: 0b00001000, want: 1},
		{raw: 0b00110000, mask: 0b00001000, want: 0},
		{raw: 0xABCD, mask: 0xFF00, want: 0xAB},
		{raw: 1<<53 | 1, mask: 1<<53 | 1, want: 1<<53 | 1},
		{raw: 1<<63 | 1<<10 | 1, mask: 1<<63 | 1<<10, want: 1<<53 | 1},
	}
	for _, tt := range tests {
		if got := ExtractBits(tt.raw, tt.mask); got != tt.want {
			t.Errorf("ExtractBits(%b, %b) = %b, want %b", tt.raw, tt.mask, got, tt.want)
		}
	}
	if !SingleBit(0b00000100) || SingleBit(0b00001100) || SingleBit(0) {
		t.Error("SingleBit")
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		chx      models.CharacteristicDescriptor
		wantRaw  float64
		wantPhys models.Phys
		wantCat  string
		wantUnit string
	}{
		{
			name:     "plain",
			data:     []byte{100},
			chx:      models.CharacteristicDescriptor{Conversion: "CM.TEMP", Layout: valueLayout(models.UByte)},
			wantRaw:  100,
			wantPhys: models.Phys{Value: 60},
			wantCat:  models.CategoryValue,
			wantUnit: "degC",
		},
		{
			name:     "multi bit mask",
			data:     []byte{0b00111000},
			chx:      models.CharacteristicDescriptor{Conversion: models.NoCompuMethod, Layout: valueLayout(models.UByte), BitMask: mask(0b00111000)},
			wantRaw:  7,
			wantPhys: models.Phys{Value: 7},
			wantCat:  models.CategoryValue,
		},
		{
			name:     "single bit is boolean",
			data:     []byte{0b00000100},
			chx:      models.CharacteristicDescriptor{Conversion: models.NoCompuMethod, Layout: valueLayout(models.UByte), BitMask: mask(0b00000100)},
			wantRaw:  1,
			wantPhys: models.Phys{Value: 1, Text: "true"},
			wantCat:  models.CategoryBoolean,
		},
		{
			name:     "single bit cleared",
			data:     []byte{0b11111011},
			chx:      models.CharacteristicDescriptor{Conversion: models.NoCompuMethod, Layout: valueLayout(models.UByte), BitMask: mask(0b00000100)},
			wantRaw:  0,
			wantPhys: models.Phys{Value: 0, Text: "false"},
			wantCat:  models.CategoryBoolean,
		},
		{
			name:     "single bit with verbal conversion stays value",
			data:     []byte{0x80},
			chx:      models.CharacteristicDescriptor{Conversion: "CM.ONOFF", Layout: valueLayout(models.UByte), BitMask: mask(0x80)},
			wantRaw:  1,
			wantPhys: models.Phys{Value: 1, Text: "ON"},
			wantCat:  models.CategoryValue,
		},
		{
			name:     "dependent overrides boolean",
			data:     []byte{0x01},
			chx:      models.CharacteristicDescriptor{Conversion: models.NoCompuMethod, Layout: valueLayout(models.UByte), BitMask: mask(0x01), Dependent: true},
			wantRaw:  1,
			wantPhys: models.Phys{Value: 1, Text: "true"},
			wantCat:  models.CategoryDependentValue,
		},
		{
			name:     "full 64 bit mask",
			data:     []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			chx:      models.CharacteristicDescriptor{Conversion: models.NoCompuMethod, Layout: valueLayout(models.UInt64), BitMask: mask(^uint64(0))},
			wantRaw:  1 << 64,
			wantPhys: models.Phys{Value: 1 << 64},
			wantCat:  models.CategoryValue,
		},
		{
			name:     "signed big endian with unit override",
			data:     []byte{0xFF, 0x38},
			chx:      models.CharacteristicDescriptor{Conversion: "CM.TEMP", Layout: valueLayout(models.SWord), ByteOrder: models.MsbFirst, PhysUnit: "K"},
			wantRaw:  -200,
			wantPhys: models.Phys{Value: -240},
			wantCat:  models.CategoryValue,
			wantUnit: "K",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chx := tt.chx
			chx.Name = "V"
			chx.Type = models.TypeValue
			chx.Address = 0x4000
			got, err := newDecoder(t, tt.data).Value(chx)
			if err != nil {
				t.Fatal(err)
			}
			if got.RawValue != tt.wantRaw {
				t.Errorf("RawValue = %v, want %v", got.RawValue, tt.wantRaw)
			}
			if diff := cmp.Diff(tt.wantPhys, got.ConvertedValue); diff != "" {
				t.Errorf("ConvertedValue (-want +got):\n%s", diff)
			}
			if got.Category != tt.wantCat {
				t.Errorf("Category = %s, want %s", got.Category, tt.wantCat)
			}
			if got.Unit != tt.wantUnit {
				t.Errorf("Unit = %q, want %q", got.Unit, tt.wantUnit)
			}
		})
	}
}

func TestValue_BitMaskInconsistency(t *testing.T) {
	tests := []struct {
		name string
		chx  models.CharacteristicDescriptor
	}{
		{name: "zero mask", chx: models.CharacteristicDescriptor{Layout: valueLayout(models.UByte), BitMask: mask(0)}},
		{name: "mask on float", chx: models.CharacteristicDescriptor{Layout: valueLayout(models.Float32), BitMask: mask(0x1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chx := tt.chx
			chx.Name = "V"
			chx.Address = 0x4000
			_, err := newDecoder(t, make([]byte, 4)).Value(chx)
			var inconsistent models.ErrBitMaskInconsistency
			if !errors.As(err, &inconsistent) {
				t.Fatalf("error = %v, want ErrBitMaskInconsistency", err)
			}
		})
	}
}

func TestAscii(t *testing.T) {
	d := newDecoder(t, []byte{'S', 'W', '1', '2', 0, 'x', 'x', 'x'})
	tests := []struct {
		name string
		chx  models.CharacteristicDescriptor
		want *models.Ascii
	}{
		{
			name: "matrix dimension",
			chx:  models.CharacteristicDescriptor{Name: "SW_VERSION", Type: models.TypeASCII, Address: 0x4000, MatrixDim: []int{8}},
			want: &models.Ascii{Base: models.Base{Name: "SW_VERSION", Category: models.CategoryASCII}, Length: 8, Value: "SW12"},
		},
		{
			name: "element count",
			chx:  models.CharacteristicDescriptor{Name: "SW", Type: models.TypeASCII, Address: 0x4000, Number: 2},
			want: &models.Ascii{Base: models.Base{Name: "SW", Category: models.CategoryASCII}, Length: 2, Value: "SW"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Decode(tt.chx)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}

	if _, err := d.Ascii(models.CharacteristicDescriptor{Name: "EMPTY", Address: 0x4000}); err == nil {
		t.Error("expected error for an ASCII without length")
	}
}

func TestValueBlock(t *testing.T) {
	d := newDecoder(t, []byte{1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0})
	got, err := d.ValueBlock(models.CharacteristicDescriptor{
		Name:       "VB",
		Type:       models.TypeValBlk,
		Address:    0x4000,
		Conversion: "CM.TEMP",
		MatrixDim:  []int{2, 3},
		Layout: models.RecordLayout{Components: []models.RecordLayoutComponent{
			{Kind: models.FncValues, DataType: models.UWord, Position: 1, IndexMode: models.ColumnDir},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2, 3}, got.Shape); diff != "" {
		t.Errorf("shape (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 3, 5, 2, 4, 6}, got.RawValues); diff != "" {
		t.Errorf("raw (-want +got):\n%s", diff)
	}
	if got.ConvertedValues[0].Value != -39 || len(got.ConvertedValues) != 6 {
		t.Errorf("converted = %v", got.ConvertedValues)
	}
	if got.Unit != "degC" {
		t.Errorf("Unit = %q", got.Unit)
	}
}

func TestValueBlock_Masked(t *testing.T) {
	d := newDecoder(t, []byte{0xF0, 0x30, 0x0F})
	got, err := d.ValueBlock(models.CharacteristicDescriptor{
		Name:       "VB_BITS",
		Address:    0x4000,
		Conversion: models.NoCompuMethod,
		Number:     3,
		BitMask:    mask(0x30),
		Layout:     valueLayout(models.UByte),
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{3, 3, 0}, got.RawValues); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, got.Shape); diff != "" {
		t.Errorf("shape (-want +got):\n%s", diff)
	}
}
