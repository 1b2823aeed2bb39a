package renderer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"

	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/store"
)

func phys(values ...float64) []models.Phys {
	out := make([]models.Phys, len(values))
	for i, v := range values {
		out[i] = models.Phys{Value: v}
	}
	return out
}

func refs(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	params := []models.Parameter{
		&models.AxisPts{Base: models.Base{Name: "A_SPD", Category: models.CategoryAxisPts},
			AxisCategory: models.CategoryComAxis, RawValues: []float64{1, 2, 3}, ConvertedValues: phys(1000, 2000, 3000)},
		&models.AxisPts{Base: models.Base{Name: "A_RES", Category: models.CategoryAxisPts},
			AxisCategory: models.CategoryResAxis, Paired: true, RawValues: []float64{1, 10, 2, 20}, ConvertedValues: phys(1, 10, 2, 20)},
		&models.Curve{FunctionTable: models.FunctionTable{
			Base:               models.Base{Name: "KL_NORM", Category: string(models.StdAxis)},
			ConvertedFncValues: phys(0.5, 0.75),
			Shape:              []int{2},
		}},
	}
	for _, p := range params {
		if err := s.Put(p); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestAxisLabels(t *testing.T) {
	s := refs(t)
	tests := []struct {
		name string
		axis models.AxisValues
		want []models.Phys
	}{
		{name: "inline", axis: models.AxisValues{Attribute: models.StdAxis, Count: 2, ConvertedValues: phys(5, 6)}, want: phys(5, 6)},
		{name: "common axis", axis: models.AxisValues{Attribute: models.ComAxis, Count: 2, AxisPtsRef: "A_SPD"}, want: phys(1000, 2000)},
		{name: "rescale pairs", axis: models.AxisValues{Attribute: models.ResAxis, Count: 2, AxisPtsRef: "A_RES"}, want: phys(1, 2)},
		{name: "curve axis", axis: models.AxisValues{Attribute: models.CurveAxis, Count: 2, CurveAxisRef: "KL_NORM"}, want: phys(0.5, 0.75)},
		{name: "missing reference", axis: models.AxisValues{Attribute: models.ComAxis, Count: 2, AxisPtsRef: "A_NONE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, AxisLabels(s, tt.axis)); diff != "" {
				t.Errorf("AxisLabels() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildGrid(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	values := []float64{1, 2, 3, 4, 5, 6}
	out := BuildGrid(values, []int{2, 3}, phys(10, 20), phys(100, 200, 300), ModeValues, 1, 6)
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("grid = %q", out)
	}
	for _, want := range []string{"100", "200", "300"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("header %q misses %s", lines[0], want)
		}
	}
	if !strings.Contains(lines[2], "10 |") || !strings.Contains(lines[2], "3.00") {
		t.Errorf("row 0 = %q", lines[2])
	}
	if !strings.Contains(lines[3], "20 |") || !strings.Contains(lines[3], "6.00") {
		t.Errorf("row 1 = %q", lines[3])
	}
}

func TestBuildGrid_Slices(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out := BuildGrid(make([]float64, 8), []int{2, 2, 2}, nil, nil, ModeValues, 0, 0)
	if !strings.Contains(out, "-- slice 1") {
		t.Errorf("grid = %q", out)
	}
	if strings.Contains(out, "-- slice 2") {
		t.Errorf("unexpected slice: %q", out)
	}
}

func TestSizeAndUnit(t *testing.T) {
	tests := []struct {
		p    models.Parameter
		size string
		unit string
	}{
		{p: &models.Value{Unit: "rpm"}, size: "1", unit: "rpm"},
		{p: &models.Ascii{Length: 8}, size: "8 chars"},
		{p: &models.ValueBlock{Shape: []int{2, 4}, Unit: "%"}, size: "2x4", unit: "%"},
		{p: &models.Map{FunctionTable: models.FunctionTable{Shape: []int{8, 16}, FncUnit: "Nm"}}, size: "8x16", unit: "Nm"},
	}
	for _, tt := range tests {
		if got := Size(tt.p); got != tt.size {
			t.Errorf("Size(%T) = %q, want %q", tt.p, got, tt.size)
		}
		if got := Unit(tt.p); got != tt.unit {
			t.Errorf("Unit(%T) = %q, want %q", tt.p, got, tt.unit)
		}
	}
}

func TestFindMinMax(t *testing.T) {
	lo, hi := FindMinMax([]float64{3, -1, 7, 2})
	if lo != -1 || hi != 7 {
		t.Errorf("FindMinMax() = %v, %v", lo, hi)
	}
	if lo, hi := FindMinMax(nil); lo != 0 || hi != 0 {
		t.Errorf("FindMinMax(nil) = %v, %v", lo, hi)
	}
}
