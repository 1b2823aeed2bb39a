// Package scanner looks for table-like data in the parts of a memory image that
// no symbol describes.
package scanner

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/tosih/a2l-calreader/pkg/blocks"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
)

// Step is the distance between two candidate windows
const Step = 0x40

// Gap is a range of image bytes outside every planned block
type Gap struct {
	Address uint32
	Length  int
}

// ScanResult holds information about a potential undeclared table
type ScanResult struct {
	Address   uint32           `json:"address"`
	Rows      int              `json:"rows"`
	Cols      int              `json:"cols"`
	DataType  models.DataType  `json:"datatype"`
	ByteOrder models.ByteOrder `json:"byteOrder,omitempty"`
	Min       float64          `json:"min"`
	Max       float64          `json:"max"`
	Variance  float64          `json:"variance"`
	Preview   string           `json:"preview"`
}

type candidate struct {
	dt        models.DataType
	order     models.ByteOrder
	minSpread float64
}

var sizes = []struct{ rows, cols int }{
	{8, 8},
	{8, 16},
	{16, 16},
}

var candidates = []candidate{
	{dt: models.UByte, minSpread: 10},
	{dt: models.UWord, order: models.LittleEndian, minSpread: 100},
	{dt: models.UWord, order: models.BigEndian, minSpread: 100},
}

// Gaps returns the image ranges not covered by plan, in address order
func Gaps(sections []image.Section, plan []blocks.Block) []Gap {
	var out []Gap
	for _, s := range sections {
		start := uint64(s.Address)
		end := s.End()
		for _, b := range plan {
			if b.End() <= start || uint64(b.Address) >= end {
				continue
			}
			if uint64(b.Address) > start {
				out = append(out, Gap{Address: uint32(start), Length: int(uint64(b.Address) - start)})
			}
			start = max(start, b.End())
		}
		if start < end {
			out = append(out, Gap{Address: uint32(start), Length: int(end - start)})
		}
	}
	return out
}

// Scan tries every window size and element type inside the gaps of plan
func Scan(img *image.Image, plan []blocks.Block) []ScanResult {
	var results []ScanResult
	for _, gap := range Gaps(img.Sections(), plan) {
		for _, size := range sizes {
			cellCount := size.rows * size.cols
			for _, c := range candidates {
				elem, _ := c.dt.Size()
				byteCount := cellCount * elem
				for offset := 0; offset+byteCount <= gap.Length; offset += Step {
					addr := gap.Address + uint32(offset)
					if result := scanWindow(img, addr, size.rows, size.cols, c); result != nil {
						results = append(results, *result)
					}
				}
			}
		}
	}
	return results
}

func scanWindow(img *image.Image, addr uint32, rows, cols int, c candidate) *ScanResult {
	cellCount := rows * cols
	values, err := img.ReadArray(addr, cellCount, c.dt, c.order.Or(models.MsbLast))
	if err != nil {
		return nil
	}

	lo, hi, variance := calculateStats(values)

	// Check if variance is good enough
	if (hi-lo) < c.minSpread || hi == 0 {
		return nil
	}

	preview := ""
	for i := 0; i < 8 && i < cellCount; i++ {
		if c.dt == models.UByte {
			preview += fmt.Sprintf("%02X ", int(values[i]))
		} else if i < 4 {
			preview += fmt.Sprintf("%04X ", int(values[i]))
		}
	}

	return &ScanResult{
		Address:   addr,
		Rows:      rows,
		Cols:      cols,
		DataType:  c.dt,
		ByteOrder: c.order,
		Min:       lo,
		Max:       hi,
		Variance:  variance,
		Preview:   preview + "...",
	}
}

func calculateStats(values []float64) (float64, float64, float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	lo := values[0]
	hi := values[0]
	sum := 0.0

	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
	}

	avg := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - avg
		variance += diff * diff
	}
	variance /= float64(len(values))

	return lo, hi, variance
}

// Display prints the gaps and the scan results in tables
func Display(gaps []Gap, results []ScanResult) {
	pterm.DefaultSection.Println("Undeclared Memory")
	total := 0
	for _, g := range gaps {
		total += g.Length
	}
	pterm.Info.Printf("%d ranges, %d bytes not described by any symbol\n", len(gaps), total)

	if len(results) == 0 {
		pterm.Info.Println("No potential tables found")
		return
	}

	tableData := pterm.TableData{
		{"Address", "Size", "Type", "Byte order", "Min", "Max", "Variance", "Preview"},
	}

	for _, result := range results {
		order := string(result.ByteOrder)
		if order == "" {
			order = "N/A"
		}
		tableData = append(tableData, []string{
			fmt.Sprintf("0x%08X", result.Address),
			fmt.Sprintf("%dx%d", result.Rows, result.Cols),
			string(result.DataType),
			order,
			fmt.Sprintf("%.0f", result.Min),
			fmt.Sprintf("%.0f", result.Max),
			fmt.Sprintf("%.1f", result.Variance),
			result.Preview,
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	pterm.Info.Printf("\nFound %d potential table(s)\n", len(results))
}
