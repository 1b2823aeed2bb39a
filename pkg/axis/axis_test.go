package axis

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
	"CM.RPM": {Name: "CM.RPM", ConversionType: models.Linear, A: 10, Unit: "rpm"},
}

func newDecoder(t *testing.T, base uint32, data []byte) *Decoder {
	t.Helper()
	img, err := image.New([]image.Section{{Address: base, Data: data}})
	if err != nil {
		t.Fatal(err)
	}
	return NewDecoder(img, convert.NewEvaluator(methods), models.MsbLast)
}

func TestDecode_ComAxis(t *testing.T) {
	// noAxisPts=3, axisPts UBYTE[5]
	d := newDecoder(t, 0x1000, []byte{3, 10, 20, 30, 0xEE, 0xEE})
	ap := models.AxisPointsDescriptor{
		Name:          "N_ENGSPD",
		Address:       0x1000,
		Conversion:    "CM.RPM",
		MaxAxisPoints: 5,
		Layout: models.RecordLayout{Name: "RL.AXIS", Components: []models.RecordLayoutComponent{
			{Kind: models.NoAxisPts, Axis: "x", Offset: 0, DataType: models.UByte, Position: 1},
			{Kind: models.AxisPtsKind, Axis: "x", Offset: 1, DataType: models.UByte, MaxElements: 5, Position: 2},
		}},
	}
	got, err := d.Decode(ap)
	if err != nil {
		t.Fatal(err)
	}
	want := &models.AxisPts{
		Base:            models.Base{Name: "N_ENGSPD", Category: models.CategoryAxisPts},
		AxisCategory:    models.CategoryComAxis,
		RawValues:       []float64{10, 20, 30},
		ConvertedValues: []models.Phys{{Value: 100}, {Value: 200}, {Value: 300}},
		Unit:            "rpm",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_ComAxisDecreasingWithoutCounter(t *testing.T) {
	d := newDecoder(t, 0, []byte{0x00, 0x03, 0x00, 0x02, 0x00, 0x01})
	ap := models.AxisPointsDescriptor{
		Name:       "X",
		Conversion: models.NoCompuMethod,
		PhysUnit:   "km/h",
		ByteOrder:  models.MsbFirst,
		Layout: models.RecordLayout{Components: []models.RecordLayoutComponent{
			{Kind: models.AxisPtsKind, Axis: "x", DataType: models.UWord, MaxElements: 3, Position: 1,
				IndexOrder: models.IndexDecr},
		}},
	}
	got, err := d.Decode(ap)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, got.RawValues); diff != "" {
		t.Errorf("raw (-want +got):\n%s", diff)
	}
	if got.Unit != "km/h" {
		t.Errorf("Unit = %q, physical unit takes precedence", got.Unit)
	}
}

func TestDecode_ResAxis(t *testing.T) {
	// noRescale=2, axisRescale UBYTE pairs [3]
	d := newDecoder(t, 0, []byte{2, 1, 100, 2, 200, 0, 0})
	ap := models.AxisPointsDescriptor{
		Name:       "R",
		Conversion: models.NoCompuMethod,
		Layout: models.RecordLayout{Components: []models.RecordLayoutComponent{
			{Kind: models.NoRescale, Axis: "x", Offset: 0, DataType: models.UByte, Position: 1},
			{Kind: models.AxisRescale, Axis: "x", Offset: 1, DataType: models.UByte, MaxElements: 3, Position: 2},
		}},
	}
	got, err := d.Decode(ap)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Paired || got.AxisCategory != models.CategoryResAxis {
		t.Fatalf("got category %s paired %v", got.AxisCategory, got.Paired)
	}
	if len(got.RawValues)%2 != 0 {
		t.Fatalf("odd raw length %d", len(got.RawValues))
	}
	if diff := cmp.Diff([]float64{1, 2}, got.AxisPointsRaw()); diff != "" {
		t.Errorf("axis points (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{100, 200}, got.VirtualAxisPointsRaw()); diff != "" {
		t.Errorf("virtual axis points (-want +got):\n%s", diff)
	}
	if n := len(got.AxisPointsRaw()) + len(got.VirtualAxisPointsRaw()); n != len(got.RawValues) {
		t.Errorf("partition covers %d of %d values", n, len(got.RawValues))
	}
}

func fixLayout(op models.ComponentKind) models.RecordLayout {
	components := []models.RecordLayoutComponent{
		{Kind: models.NoAxisPts, Axis: "x", Offset: 0, DataType: models.UByte, Position: 1},
		{Kind: models.Offset, Axis: "x", Offset: 1, DataType: models.UByte, Position: 2},
	}
	if op != "" {
		components = append(components, models.RecordLayoutComponent{Kind: op, Axis: "x", Offset: 2, DataType: models.UByte, Position: 3})
	}
	return models.RecordLayout{Name: "RL.FIX", Components: components}
}

func TestDecode_FixAxis(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		op   models.ComponentKind
		want []float64
	}{
		{name: "distance", data: []byte{5, 0, 10}, op: models.DistOp, want: []float64{0, 10, 20, 30, 40}},
		{name: "shift", data: []byte{4, 2, 1}, op: models.ShiftOp, want: []float64{2, 4, 6, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecoder(t, 0x20, tt.data)
			got, err := d.Decode(models.AxisPointsDescriptor{Name: "F", Address: 0x20, Layout: fixLayout(tt.op),
				Conversion: models.NoCompuMethod, MaxAxisPoints: 8})
			if err != nil {
				t.Fatal(err)
			}
			if !got.Virtual || got.AxisCategory != models.CategoryFixAxis {
				t.Errorf("got category %s virtual %v", got.AxisCategory, got.Virtual)
			}
			if diff := cmp.Diff(tt.want, got.RawValues); diff != "" {
				t.Errorf("raw (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_FixAxisWithoutOperator(t *testing.T) {
	d := newDecoder(t, 0, []byte{4, 2})
	_, err := d.Decode(models.AxisPointsDescriptor{Name: "F", Layout: fixLayout(""), Conversion: models.NoCompuMethod})
	var malformed models.ErrMalformedAxis
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want ErrMalformedAxis", err)
	}
}

func TestDecode_NoAxisComponent(t *testing.T) {
	d := newDecoder(t, 0, []byte{0})
	_, err := d.Decode(models.AxisPointsDescriptor{Name: "E", Conversion: models.NoCompuMethod,
		Layout: models.RecordLayout{Components: []models.RecordLayoutComponent{
			{Kind: models.Reserved, DataType: models.UByte, Position: 1},
		}}})
	var malformed models.ErrMalformedRecordLayout
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want ErrMalformedRecordLayout", err)
	}
}

func TestDecode_ReadOutOfImage(t *testing.T) {
	d := newDecoder(t, 0, []byte{9, 1, 2})
	_, err := d.Decode(models.AxisPointsDescriptor{Name: "X", Conversion: models.NoCompuMethod,
		Layout: models.RecordLayout{Components: []models.RecordLayoutComponent{
			{Kind: models.AxisPtsKind, Axis: "x", DataType: models.UWord, MaxElements: 4, Position: 1},
		}}})
	var ioErr models.ErrIoRead
	if !errors.As(err, &ioErr) {
		t.Fatalf("error = %v, want ErrIoRead", err)
	}
}

func TestGenerators(t *testing.T) {
	if diff := cmp.Diff([]float64{0, 10, 20, 30, 40}, FixAxisParDist(0, 10, 5)); diff != "" {
		t.Errorf("FixAxisParDist (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 4, 6, 8}, FixAxisPar(2, 1, 4)); diff != "" {
		t.Errorf("FixAxisPar (-want +got):\n%s", diff)
	}
	if got := FixAxisPar(0, 3, 0); len(got) != 0 {
		t.Errorf("zero count gave %v", got)
	}
}
