package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
)

// curveLayout is noAxisPts(x) UBYTE, axisPts(x) UWORD[8], fncValues UWORD
func curveLayout() models.RecordLayout {
	return models.RecordLayout{Name: "RL.CURVE", Components: []models.RecordLayoutComponent{
		{Kind: models.NoAxisPts, Axis: "x", Offset: 0, DataType: models.UByte, Position: 1},
		{Kind: models.AxisPtsKind, Axis: "x", Offset: 1, DataType: models.UWord, MaxElements: 8, Position: 2},
		{Kind: models.FncValues, Offset: 17, DataType: models.UWord, MaxElements: 8, Position: 3},
	}}
}

// mapLayout is noAxisPts(x), noAxisPts(y), axisPts(x) UBYTE[4], axisPts(y) UWORD[3], fncValues
func mapLayout() models.RecordLayout {
	return models.RecordLayout{Name: "RL.MAP", Components: []models.RecordLayoutComponent{
		{Kind: models.NoAxisPts, Axis: "x", Offset: 0, DataType: models.UByte, Position: 1},
		{Kind: models.NoAxisPts, Axis: "y", Offset: 1, DataType: models.UByte, Position: 2},
		{Kind: models.AxisPtsKind, Axis: "x", Offset: 2, DataType: models.UByte, MaxElements: 4, Position: 3},
		{Kind: models.AxisPtsKind, Axis: "y", Offset: 6, DataType: models.UWord, MaxElements: 3, Position: 4},
		{Kind: models.FncValues, Offset: 12, DataType: models.UByte, MaxElements: 12, Position: 5},
	}}
}

func effective(r *Resolved) map[int]int {
	out := map[int]int{}
	for _, c := range r.Components {
		out[c.Position] = c.EffectiveOffset
	}
	return out
}

func declared(rl models.RecordLayout) map[int]int {
	out := map[int]int{}
	for _, c := range rl.Components {
		out[c.Position] = c.Offset
	}
	return out
}

func TestResolve_NoVariableAxes(t *testing.T) {
	rl := models.RecordLayout{Name: "RL.VALUE", Components: []models.RecordLayoutComponent{
		{Kind: models.Identification, Offset: 0, DataType: models.UWord, Position: 1},
		{Kind: models.FncValues, Offset: 2, DataType: models.ULong, Position: 2},
	}}
	r, err := Resolve("V", rl, NewCounts())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(declared(rl), effective(r)); diff != "" {
		t.Errorf("offsets moved (-declared +effective):\n%s", diff)
	}
}

func TestResolve_FullCountsKeepOffsets(t *testing.T) {
	rl := mapLayout()
	counts := Counts{AxisPts: map[string]int{"x": 4, "y": 3}, Rescale: map[string]int{}}
	r, err := Resolve("M", rl, counts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(declared(rl), effective(r)); diff != "" {
		t.Errorf("offsets moved (-declared +effective):\n%s", diff)
	}
}

func TestResolve_SingleAxisBias(t *testing.T) {
	tests := []struct {
		name   string
		actual int
		want   map[int]int
	}{
		{name: "five of eight", actual: 5, want: map[int]int{1: 0, 2: 1, 3: 17 - 3*2}},
		{name: "one of eight", actual: 1, want: map[int]int{1: 0, 2: 1, 3: 17 - 7*2}},
		{name: "empty axis", actual: 0, want: map[int]int{1: 0, 2: 1, 3: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := NewCounts()
			counts.AxisPts["x"] = tt.actual
			r, err := Resolve("C", curveLayout(), counts)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, effective(r)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_BiasesAccumulate(t *testing.T) {
	counts := Counts{AxisPts: map[string]int{"x": 2, "y": 1}, Rescale: map[string]int{}}
	r, err := Resolve("M", mapLayout(), counts)
	if err != nil {
		t.Fatal(err)
	}
	// y moves by the x bias, fncValues by both
	want := map[int]int{1: 0, 2: 1, 3: 2, 4: 6 - 2*1, 5: 12 - 2*1 - 2*2}
	if diff := cmp.Diff(want, effective(r)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestResolve_RescalePairs(t *testing.T) {
	rl := models.RecordLayout{Name: "RL.RES", Components: []models.RecordLayoutComponent{
		{Kind: models.NoRescale, Axis: "x", Offset: 0, DataType: models.UByte, Position: 1},
		{Kind: models.AxisRescale, Axis: "x", Offset: 1, DataType: models.UWord, MaxElements: 4, Position: 2},
		{Kind: models.Reserved, Offset: 17, DataType: models.UByte, Position: 3},
	}}
	counts := NewCounts()
	counts.Rescale["x"] = 3
	r, err := Resolve("R", rl, counts)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := r.Offset(models.Reserved, ""); got != 17-4 {
		t.Errorf("reserved offset = %d, want %d", got, 13)
	}
}

func TestResolve_DoesNotModifyInput(t *testing.T) {
	rl := curveLayout()
	before := rl.Clone()
	counts := NewCounts()
	counts.AxisPts["x"] = 2
	if _, err := Resolve("C", rl, counts); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, rl); diff != "" {
		t.Errorf("layout modified (-before +after):\n%s", diff)
	}
}

func TestResolve_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		component models.RecordLayoutComponent
	}{
		{name: "unknown kind", component: models.RecordLayoutComponent{Kind: "bogus", DataType: models.UByte, Position: 9}},
		{name: "missing axis", component: models.RecordLayoutComponent{Kind: models.Offset, DataType: models.UByte, Position: 9}},
		{name: "invalid axis", component: models.RecordLayoutComponent{Kind: models.Offset, Axis: "w", DataType: models.UByte, Position: 9}},
		{name: "axis on fncValues", component: models.RecordLayoutComponent{Kind: models.FncValues, Axis: "x", DataType: models.UByte, Position: 9}},
		{name: "unknown datatype", component: models.RecordLayoutComponent{Kind: models.Reserved, DataType: "BIT", Position: 9}},
		{name: "duplicate", component: models.RecordLayoutComponent{Kind: models.NoAxisPts, Axis: "x", DataType: models.UByte, Position: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := curveLayout()
			rl.Components = append(rl.Components, tt.component)
			_, err := Resolve("C", rl, NewCounts())
			var malformed models.ErrMalformedRecordLayout
			if !errors.As(err, &malformed) {
				t.Fatalf("error = %v, want ErrMalformedRecordLayout", err)
			}
		})
	}

	counts := NewCounts()
	counts.AxisPts["x"] = 9
	if _, err := Resolve("C", curveLayout(), counts); err == nil {
		t.Error("expected error for a count above the declared maximum")
	}
}

func TestReadCounts(t *testing.T) {
	// noAxisPts.x = 3, noAxisPts.y = 2
	data := make([]byte, 32)
	data[0], data[1] = 3, 2
	img, err := image.New([]image.Section{{Address: 0x100, Data: data}})
	if err != nil {
		t.Fatal(err)
	}

	counts, err := ReadCounts(img, 0x100, models.MsbLast, "M", mapLayout())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]int{"x": 3, "y": 2}, counts.AxisPts); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReadCounts_CounterAfterArrays(t *testing.T) {
	// axisPts.x UBYTE[4], noAxisPts.y, axisPts.y UBYTE[4]; x has no counter
	rl := models.RecordLayout{Name: "RL", Components: []models.RecordLayoutComponent{
		{Kind: models.AxisPtsKind, Axis: "x", Offset: 0, DataType: models.UByte, MaxElements: 4, Position: 1},
		{Kind: models.NoAxisPts, Axis: "y", Offset: 4, DataType: models.UByte, Position: 2},
		{Kind: models.AxisPtsKind, Axis: "y", Offset: 5, DataType: models.UByte, MaxElements: 4, Position: 3},
	}}
	img, err := image.New([]image.Section{{Address: 0, Data: []byte{1, 2, 3, 4, 2, 9, 9, 0, 0}}})
	if err != nil {
		t.Fatal(err)
	}
	counts, err := ReadCounts(img, 0, models.MsbLast, "M", rl)
	if err != nil {
		t.Fatal(err)
	}
	if counts.AxisPts["y"] != 2 {
		t.Errorf("y count = %d, want 2", counts.AxisPts["y"])
	}
	if _, ok := counts.AxisPts["x"]; ok {
		t.Error("x has no counter")
	}
}

func TestReadCounts_TrailingCounter(t *testing.T) {
	rl := models.RecordLayout{Name: "RL", Components: []models.RecordLayoutComponent{
		{Kind: models.AxisPtsKind, Axis: "x", Offset: 0, DataType: models.UByte, MaxElements: 4, Position: 1},
		{Kind: models.NoAxisPts, Axis: "x", Offset: 4, DataType: models.UByte, Position: 2},
	}}
	img, err := image.New([]image.Section{{Address: 0, Data: make([]byte, 5)}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = ReadCounts(img, 0, models.MsbLast, "C", rl)
	var malformed models.ErrMalformedRecordLayout
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want ErrMalformedRecordLayout", err)
	}
}

func TestAxisParams(t *testing.T) {
	rl := models.RecordLayout{Name: "RL.FIX", Components: []models.RecordLayoutComponent{
		{Kind: models.NoAxisPts, Axis: "x", Offset: 0, DataType: models.UByte, Position: 1},
		{Kind: models.Offset, Axis: "x", Offset: 1, DataType: models.SWord, Position: 2},
		{Kind: models.DistOp, Axis: "x", Offset: 3, DataType: models.UWord, Position: 3},
	}}
	img, err := image.New([]image.Section{{Address: 0x40, Data: []byte{5, 0xF6, 0xFF, 0x0A, 0x00}}})
	if err != nil {
		t.Fatal(err)
	}
	r, err := Resolve("F", rl, NewCounts())
	if err != nil {
		t.Fatal(err)
	}
	params, err := AxisParams(img, 0x40, models.MsbLast, r, "x")
	if err != nil {
		t.Fatal(err)
	}
	want := Params{models.NoAxisPts: 5, models.Offset: -10, models.DistOp: 10}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, ok := params.Get(models.ShiftOp); ok {
		t.Error("shiftOp not declared")
	}
}

func TestSizeof(t *testing.T) {
	tests := []struct {
		name string
		rl   models.RecordLayout
		want int
	}{
		{name: "curve", rl: curveLayout(), want: 33},
		{name: "map", rl: mapLayout(), want: 24},
		{name: "empty", rl: models.RecordLayout{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sizeof(tt.rl)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Sizeof() = %d, want %d", got, tt.want)
			}
		})
	}
}
