package renderer

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/store"
)

const (
	ModeValues  = "values"
	ModeHeatmap = "heatmap"
	ModeSymbols = "symbols"
)

// AxisLabels returns the physical axis points, following COM_AXIS and
// CURVE_AXIS references into the store
func AxisLabels(s *store.Store, axis models.AxisValues) []models.Phys {
	var labels []models.Phys
	switch {
	case len(axis.ConvertedValues) > 0:
		labels = axis.ConvertedValues
	case axis.AxisPtsRef != "" && s != nil:
		if ref, ok := s.AxisPts(axis.AxisPtsRef); ok {
			labels = ref.ConvertedValues
			if ref.Paired {
				labels = ref.AxisPointsConverted()
			}
		}
	case axis.CurveAxisRef != "" && s != nil:
		if ref, ok := s.Curve(axis.CurveAxisRef); ok {
			labels = ref.ConvertedFncValues
		}
	}
	if axis.Count > 0 && len(labels) > axis.Count {
		labels = labels[:axis.Count]
	}
	return labels
}

func label(labels []models.Phys, i int) string {
	if i >= len(labels) {
		return fmt.Sprintf("#%d", i)
	}
	if labels[i].IsText() {
		return labels[i].Text
	}
	return fmt.Sprintf("%g", labels[i].Value)
}

// RenderParameter displays one parameter
func RenderParameter(s *store.Store, p models.Parameter, displayMode string) {
	base := p.Common()
	if base.Comment != "" {
		pterm.Info.Println(base.Comment)
	}
	switch v := p.(type) {
	case *models.Value:
		pterm.DefaultBox.WithTitle(base.Name).WithTitleTopLeft().Println(scalarString(v.ConvertedValue, v.Unit))
	case *models.Ascii:
		pterm.DefaultBox.WithTitle(base.Name).WithTitleTopLeft().Println(fmt.Sprintf("%q", v.Value))
	case *models.AxisPts:
		values := physValues(v.ConvertedValues)
		lo, hi := FindMinMax(values)
		title := fmt.Sprintf("%s | %s | %d points | %s", base.Name, v.AxisCategory, len(values), v.Unit)
		pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(BuildGrid(values, []int{len(values)}, nil, nil, displayMode, lo, hi))
	case *models.ValueBlock:
		values := physValues(v.ConvertedValues)
		lo, hi := FindMinMax(values)
		title := fmt.Sprintf("%s | %v | Range: %.2f-%.2f %s", base.Name, v.Shape, lo, hi, v.Unit)
		pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(BuildGrid(values, v.Shape, nil, nil, displayMode, lo, hi))
	case models.Tabular:
		t := v.Table()
		values := physValues(t.ConvertedFncValues)
		lo, hi := FindMinMax(values)
		var rows, cols []models.Phys
		if n := len(t.Axes); n > 0 {
			cols = AxisLabels(s, t.Axes[n-1])
			if n > 1 {
				rows = AxisLabels(s, t.Axes[n-2])
			}
		}
		title := fmt.Sprintf("%s | %s | %v | Range: %.2f-%.2f %s", base.Name, base.Category, t.Shape, lo, hi, t.FncUnit)
		pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(BuildGrid(values, t.Shape, rows, cols, displayMode, lo, hi))
	}
}

func scalarString(v models.Phys, unit string) string {
	if v.IsText() {
		return v.Text
	}
	return strings.TrimSpace(fmt.Sprintf("%g %s", v.Value, unit))
}

func physValues(values []models.Phys) []float64 {
	out := make([]float64, len(values))
	for i, p := range values {
		out[i] = p.Value
	}
	return out
}

// BuildGrid lays out row-major values with the last dimension across. Higher
// dimensions are printed as consecutive slices.
func BuildGrid(values []float64, shape []int, rows, cols []models.Phys, displayMode string, lo, hi float64) string {
	var result strings.Builder

	ncols := 1
	if len(shape) > 0 {
		ncols = max(shape[len(shape)-1], 1)
	}
	nrows := 1
	if len(shape) > 1 {
		nrows = max(shape[len(shape)-2], 1)
	}
	width := 4
	if displayMode == ModeValues {
		width = 9
	}

	result.WriteString("          |")
	for j := 0; j < ncols; j++ {
		result.WriteString(fmt.Sprintf("%*s", width, truncate(label(cols, j), width-1)))
	}
	result.WriteString("\n")
	result.WriteString("  --------+" + strings.Repeat("-", ncols*width) + "\n")

	for k := 0; k*ncols < len(values); k++ {
		i := k % nrows
		if k > 0 && i == 0 {
			result.WriteString(fmt.Sprintf("  -- slice %d\n", k/nrows))
		}
		result.WriteString(fmt.Sprintf("  %7s |", truncate(label(rows, i), 7)))
		for j := 0; j < ncols && k*ncols+j < len(values); j++ {
			value := values[k*ncols+j]
			switch displayMode {
			case ModeValues:
				result.WriteString(getColorStyle(value, lo, hi).Sprintf("%*.2f", width, value))
			case ModeHeatmap:
				result.WriteString("  " + getHeatmapBlock(value, lo, hi))
			default:
				symbol := getSymbolForValue(value, lo, hi)
				result.WriteString(strings.Repeat(symbol, width))
			}
		}
		result.WriteString("\n")
	}

	switch displayMode {
	case ModeHeatmap:
		result.WriteString("\n" + getHeatmapLegend())
	case ModeSymbols:
		result.WriteString("\nLegend: ")
		result.WriteString(pterm.FgCyan.Sprint("░") + " Low  ")
		result.WriteString(pterm.FgGreen.Sprint("▒") + " Med  ")
		result.WriteString(pterm.FgYellow.Sprint("▓") + " High  ")
		result.WriteString(pterm.FgRed.Sprint("█") + " Max")
	}

	return result.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func getHeatmapBlock(value, lo, hi float64) string {
	if hi == lo {
		return pterm.BgGray.Sprint("  ")
	}

	normalized := (value - lo) / (hi - lo)

	switch {
	case normalized < 0.2:
		return pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄")
	case normalized < 0.4:
		return pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄")
	case normalized < 0.6:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄")
	case normalized < 0.8:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄")
	default:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄")
	}
}

func getHeatmapLegend() string {
	var result strings.Builder
	result.WriteString("Heatmap: ")
	result.WriteString(pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄") + " Very Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄") + " Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄") + " Medium  ")
	result.WriteString(pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄") + " High  ")
	result.WriteString(pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄") + " Very High")
	return result.String()
}

func getSymbolForValue(value, lo, hi float64) string {
	if hi == lo {
		return pterm.FgGray.Sprint("·")
	}

	normalized := (value - lo) / (hi - lo)

	switch {
	case normalized < 0.25:
		return pterm.FgCyan.Sprint("░")
	case normalized < 0.5:
		return pterm.FgGreen.Sprint("▒")
	case normalized < 0.75:
		return pterm.FgYellow.Sprint("▓")
	default:
		return pterm.FgRed.Sprint("█")
	}
}

func getColorStyle(value, lo, hi float64) *pterm.Style {
	if hi == lo {
		return pterm.NewStyle(pterm.FgGray)
	}

	normalized := (value - lo) / (hi - lo)

	switch {
	case normalized < 0.25:
		return pterm.NewStyle(pterm.FgCyan)
	case normalized < 0.5:
		return pterm.NewStyle(pterm.FgGreen)
	case normalized < 0.75:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgRed)
	}
}

// ListParameters displays the parameters of a store in a table
func ListParameters(s *store.Store, pattern string) {
	pterm.DefaultHeader.WithFullWidth().Println("Decoded Parameters")

	data := [][]string{
		{"Category", "Name", "Kind", "Size", "Unit", "Description"},
	}

	for _, category := range models.StoreCategories {
		s.Each(category, func(p models.Parameter) error {
			base := p.Common()
			if !Matches(base.Name, pattern) {
				return nil
			}
			data = append(data, []string{category, base.Name, base.Category, Size(p), Unit(p), base.Comment})
			return nil
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// Matches reports whether name contains pattern, ignoring case
func Matches(name, pattern string) bool {
	return pattern == "" || strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

// Size describes the dimensions of a parameter
func Size(p models.Parameter) string {
	switch v := p.(type) {
	case *models.Value:
		return "1"
	case *models.Ascii:
		return fmt.Sprintf("%d chars", v.Length)
	case *models.AxisPts:
		return fmt.Sprintf("%d", len(v.ConvertedValues))
	case *models.ValueBlock:
		return dims(v.Shape)
	case models.Tabular:
		return dims(v.Table().Shape)
	}
	return ""
}

func dims(shape []int) string {
	parts := make([]string, len(shape))
	for i, n := range shape {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, "x")
}

// Unit returns the physical unit of the parameter values
func Unit(p models.Parameter) string {
	switch v := p.(type) {
	case *models.Value:
		return v.Unit
	case *models.AxisPts:
		return v.Unit
	case *models.ValueBlock:
		return v.Unit
	case models.Tabular:
		return v.Table().FncUnit
	}
	return ""
}

// DisplayStore renders every parameter of the store whose name matches pattern
func DisplayStore(s *store.Store, pattern, displayMode string) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println("Calibration Reader")

	pterm.Println()

	first := true
	for _, category := range models.StoreCategories {
		s.Each(category, func(p models.Parameter) error {
			if !Matches(p.Common().Name, pattern) {
				return nil
			}
			if !first {
				pterm.Println()
			}
			first = false
			RenderParameter(s, p, displayMode)
			return nil
		})
	}
}

// FindMinMax returns the range of values, 0,0 when empty
func FindMinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo := values[0]
	hi := values[0]

	for _, val := range values {
		if val < lo {
			lo = val
		}
		if val > hi {
			hi = val
		}
	}

	return lo, hi
}
