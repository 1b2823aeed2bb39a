// Package compare diffs the parameters of two decode passes.
package compare

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/store"
)

type Status string

const (
	Unchanged Status = "unchanged"
	Changed   Status = "changed"
	Added     Status = "added"
	Removed   Status = "removed"
)

// Change is the difference of one parameter, Diff being second minus first in
// physical units, row-major over Shape
type Change struct {
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	Status       Status    `json:"status"`
	Shape        []int     `json:"shape,omitempty"`
	Diff         []float64 `json:"diff,omitempty"`
	ChangedCells int       `json:"changedCells"`
	MaxIncrease  float64   `json:"maxIncrease"`
	MaxDecrease  float64   `json:"maxDecrease"`
	Unit         string    `json:"unit,omitempty"`
	First        string    `json:"first,omitempty"`
	Second       string    `json:"second,omitempty"`
}

// Values returns the physical values of p, row-major, and their shape. Text
// parameters have no values.
func Values(p models.Parameter) ([]float64, []int, string) {
	switch v := p.(type) {
	case *models.Value:
		return []float64{v.ConvertedValue.Value}, []int{1}, v.Unit
	case *models.ValueBlock:
		return physValues(v.ConvertedValues), v.Shape, v.Unit
	case *models.AxisPts:
		return physValues(v.ConvertedValues), []int{len(v.ConvertedValues)}, v.Unit
	case models.Tabular:
		t := v.Table()
		return physValues(t.ConvertedFncValues), t.Shape, t.FncUnit
	}
	return nil, nil, ""
}

// Text returns the rendered value of text parameters
func Text(p models.Parameter) (string, bool) {
	switch v := p.(type) {
	case *models.Ascii:
		return v.Value, true
	case *models.Value:
		if v.ConvertedValue.IsText() {
			return v.ConvertedValue.Text, true
		}
	}
	return "", false
}

func physValues(values []models.Phys) []float64 {
	out := make([]float64, len(values))
	for i, p := range values {
		out[i] = p.Value
	}
	return out
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Parameter compares two versions of the same parameter
func Parameter(category string, first, second models.Parameter) Change {
	c := Change{Category: category, Name: first.Common().Name, Status: Unchanged}

	if t1, ok := Text(first); ok {
		t2, _ := Text(second)
		if t1 != t2 {
			c.Status = Changed
			c.ChangedCells = 1
			c.First, c.Second = t1, t2
		}
		return c
	}

	v1, s1, unit := Values(first)
	v2, s2, _ := Values(second)
	c.Unit = unit
	if !sameShape(s1, s2) || len(v1) != len(v2) {
		c.Status = Changed
		c.First = fmt.Sprintf("shape %v", s1)
		c.Second = fmt.Sprintf("shape %v", s2)
		return c
	}
	c.Shape = s1
	c.Diff = make([]float64, len(v1))
	for i := range v1 {
		d := v2[i] - v1[i]
		c.Diff[i] = d
		if d == 0 {
			continue
		}
		c.ChangedCells++
		c.MaxIncrease = max(c.MaxIncrease, d)
		c.MaxDecrease = min(c.MaxDecrease, d)
	}
	if c.ChangedCells > 0 {
		c.Status = Changed
	}
	return c
}

// Stores compares every category of two stores. Parameters keep the order of
// the first store; parameters only found in the second follow.
func Stores(first, second *store.Store) []Change {
	var out []Change
	for _, category := range models.StoreCategories {
		seen := map[string]bool{}
		for _, name := range first.Names(category) {
			seen[name] = true
			p1, _ := first.Get(category, name)
			p2, ok := second.Get(category, name)
			if !ok {
				out = append(out, Change{Category: category, Name: name, Status: Removed})
				continue
			}
			out = append(out, Parameter(category, p1, p2))
		}
		for _, name := range second.Names(category) {
			if !seen[name] {
				out = append(out, Change{Category: category, Name: name, Status: Added})
			}
		}
	}
	return out
}

// Filter keeps changes of the given status whose name contains pattern
func Filter(changes []Change, pattern string, statuses ...Status) []Change {
	var out []Change
	for _, c := range changes {
		if pattern != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(pattern)) {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, c.Status) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasStatus(statuses []Status, s Status) bool {
	for _, status := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// Display prints a summary table and a difference map for every changed parameter
func Display(changes []Change, firstLabel, secondLabel string) {
	pterm.DefaultHeader.WithFullWidth().Println("Calibration Comparison")
	pterm.Info.Printf("%s -> %s\n", firstLabel, secondLabel)

	data := [][]string{{"Category", "Name", "Status", "Changed", "Max increase", "Max decrease", "Unit"}}
	for _, c := range changes {
		data = append(data, []string{
			c.Category, c.Name, string(c.Status), fmt.Sprintf("%d", c.ChangedCells),
			fmt.Sprintf("%.2f", c.MaxIncrease), fmt.Sprintf("%.2f", c.MaxDecrease), c.Unit,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	for _, c := range changes {
		if c.Status != Changed {
			continue
		}
		pterm.Println()
		pterm.DefaultSection.Printf("%s %s\n", c.Category, c.Name)
		if c.Diff == nil {
			pterm.Info.Printf("%q -> %q\n", c.First, c.Second)
			continue
		}
		total := len(c.Diff)
		pterm.Info.Printf("Changed cells: %d / %d (%.1f%%)\n",
			c.ChangedCells, total, float64(c.ChangedCells)/float64(total)*100)
		pterm.DefaultBox.Println(DifferenceMap(c))
	}
}

// DifferenceMap renders the diff as a grid of symbols, the last dimension
// across, all leading dimensions down
func DifferenceMap(c Change) string {
	var result strings.Builder

	cols := 1
	if len(c.Shape) > 0 {
		cols = max(c.Shape[len(c.Shape)-1], 1)
	}
	maxAbs := 0.0
	for _, d := range c.Diff {
		if d < 0 {
			d = -d
		}
		maxAbs = max(maxAbs, d)
	}

	result.WriteString("      |")
	for j := 0; j < cols; j++ {
		result.WriteString(fmt.Sprintf("%-3d", j))
	}
	result.WriteString("\n")
	result.WriteString("  ----+" + strings.Repeat("-", cols*3) + "\n")
	for i := 0; i*cols < len(c.Diff); i++ {
		result.WriteString(fmt.Sprintf("  %3d |", i))
		for j := 0; j < cols && i*cols+j < len(c.Diff); j++ {
			result.WriteString(diffSymbol(c.Diff[i*cols+j], maxAbs))
		}
		result.WriteString("\n")
	}

	result.WriteString("\nLegend: ")
	result.WriteString(pterm.FgBlue.Sprint("▼▼") + " Large Decrease  ")
	result.WriteString(pterm.FgCyan.Sprint("▼ ") + " Small Decrease  ")
	result.WriteString(pterm.FgGray.Sprint("··") + " No Change  ")
	result.WriteString(pterm.FgYellow.Sprint("▲ ") + " Small Increase  ")
	result.WriteString(pterm.FgRed.Sprint("▲▲") + " Large Increase")
	return result.String()
}

func diffSymbol(val, maxAbs float64) string {
	if val == 0 {
		return pterm.FgGray.Sprint("·· ")
	}

	normalized := val / maxAbs

	switch {
	case normalized < -0.5:
		return pterm.FgBlue.Sprint("▼▼ ")
	case normalized < -0.1:
		return pterm.FgCyan.Sprint("▼  ")
	case normalized > 0.5:
		return pterm.FgRed.Sprint("▲▲ ")
	case normalized > 0.1:
		return pterm.FgYellow.Sprint("▲  ")
	}
	return pterm.FgGray.Sprint("·  ")
}
