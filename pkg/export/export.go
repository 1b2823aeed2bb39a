package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/renderer"
	"github.com/tosih/a2l-calreader/pkg/store"
)

const gridHeader = "Row\\Col"

// Grid is the two dimensional view of an exported parameter
type Grid struct {
	Name   string
	Rows   []string
	Cols   []string
	Values [][]float64
}

// ExportStore writes one CSV file per matching numeric parameter into exportPath
// and returns the written files
func ExportStore(s *store.Store, exportPath, pattern string) ([]string, error) {
	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Exporting parameters to CSV...")

	var files []string
	for _, category := range models.StoreCategories {
		s.Each(category, func(p models.Parameter) error {
			name := p.Common().Name
			if !renderer.Matches(name, pattern) {
				return nil
			}
			if _, ok := p.(*models.Ascii); ok {
				return nil
			}
			csvFilename := filepath.Join(exportPath, FileName(category, name))
			if err := exportParameter(s, p, csvFilename); err != nil {
				spinner.Warning(fmt.Sprintf("Failed to export %s: %v", name, err))
				return nil
			}
			files = append(files, csvFilename)
			return nil
		})
	}

	spinner.Success(fmt.Sprintf("%d parameters exported to %s", len(files), exportPath))
	return files, nil
}

// FileName is the CSV file name of a parameter
func FileName(category, name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '.', '[', ']':
			return '_'
		}
		return r
	}, name)
	return strings.ToLower(category) + "_" + clean + ".csv"
}

func exportParameter(s *store.Store, p models.Parameter, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, s, p)
}

// WriteCSV writes metadata comment rows followed by the grid of p. Axis labels
// are resolved through s; parameters with more than two dimensions are written
// as consecutive row blocks.
func WriteCSV(w io.Writer, s *store.Store, p models.Parameter) error {
	writer := csv.NewWriter(w)

	base := p.Common()
	values, shape, rows, cols := grid(s, p)
	if values == nil {
		return fmt.Errorf("%s: %T has no numeric values", base.Name, p)
	}

	writer.Write([]string{fmt.Sprintf("# %s", base.Name)})
	if base.Comment != "" {
		writer.Write([]string{fmt.Sprintf("# %s", base.Comment)})
	}
	writer.Write([]string{fmt.Sprintf("# Category: %s", base.Category)})
	writer.Write([]string{fmt.Sprintf("# Size: %s", renderer.Size(p))})
	writer.Write([]string{fmt.Sprintf("# Unit: %s", renderer.Unit(p))})
	writer.Write([]string{""})

	ncols := 1
	if len(shape) > 0 {
		ncols = max(shape[len(shape)-1], 1)
	}
	nrows := 1
	if len(shape) > 1 {
		nrows = max(shape[len(shape)-2], 1)
	}

	header := []string{gridHeader}
	for j := 0; j < ncols; j++ {
		header = append(header, axisLabel(cols, j))
	}
	writer.Write(header)

	for k := 0; k*ncols < len(values); k++ {
		row := []string{axisLabel(rows, k%nrows)}
		for j := 0; j < ncols && k*ncols+j < len(values); j++ {
			row = append(row, strconv.FormatFloat(values[k*ncols+j], 'f', -1, 64))
		}
		writer.Write(row)
	}

	writer.Flush()
	return writer.Error()
}

func grid(s *store.Store, p models.Parameter) ([]float64, []int, []models.Phys, []models.Phys) {
	switch v := p.(type) {
	case *models.Value:
		return []float64{v.ConvertedValue.Value}, []int{1}, nil, nil
	case *models.AxisPts:
		return physValues(v.ConvertedValues), []int{len(v.ConvertedValues)}, nil, nil
	case *models.ValueBlock:
		return physValues(v.ConvertedValues), v.Shape, nil, nil
	case models.Tabular:
		t := v.Table()
		var rows, cols []models.Phys
		if n := len(t.Axes); n > 0 {
			cols = renderer.AxisLabels(s, t.Axes[n-1])
			if n > 1 {
				rows = renderer.AxisLabels(s, t.Axes[n-2])
			}
		}
		return physValues(t.ConvertedFncValues), t.Shape, rows, cols
	}
	return nil, nil, nil, nil
}

func physValues(values []models.Phys) []float64 {
	out := make([]float64, len(values))
	for i, p := range values {
		out[i] = p.Value
	}
	return out
}

func axisLabel(labels []models.Phys, i int) string {
	if i >= len(labels) {
		return strconv.Itoa(i)
	}
	if labels[i].IsText() {
		return labels[i].Text
	}
	return strconv.FormatFloat(labels[i].Value, 'f', -1, 64)
}

// ReadCSV reads a grid written by WriteCSV
func ReadCSV(r io.Reader) (*Grid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	g := &Grid{}
	dataStart := 0
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		if g.Name == "" && strings.HasPrefix(record[0], "# ") {
			g.Name = strings.TrimPrefix(record[0], "# ")
		}
		if record[0] == gridHeader {
			g.Cols = record[1:]
			dataStart = i + 1
			break
		}
	}
	if dataStart == 0 {
		return nil, fmt.Errorf("invalid CSV format: couldn't find data header")
	}

	for _, record := range records[dataStart:] {
		if len(record) == 0 || record[0] == "" {
			continue
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %s: %w", record[0], err)
			}
			row = append(row, v)
		}
		g.Rows = append(g.Rows, record[0])
		g.Values = append(g.Values, row)
	}
	return g, nil
}
