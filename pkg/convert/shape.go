package convert

import (
	"fmt"

	"github.com/tosih/a2l-calreader/pkg/models"
)

// Flip reverses values in place when the axis is stored in decreasing index order
func Flip(values []float64, order models.IndexOrder) []float64 {
	if order != models.IndexDecr {
		return values
	}
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

// Elements is the product of the dimensions of shape
func Elements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Reshape returns values in row-major order over shape. COLUMN_DIR input has the
// first index varying fastest; ROW_DIR input is returned as is.
func Reshape(values []float64, shape []int, mode models.IndexMode) ([]float64, error) {
	if Elements(shape) != len(values) {
		return nil, fmt.Errorf("cannot shape %d values as %v", len(values), shape)
	}
	if mode != models.ColumnDir || len(shape) < 2 {
		return values, nil
	}
	out := make([]float64, len(values))
	idx := make([]int, len(shape))
	for src := range values {
		// idx is the multi-index of src in column-major order
		dst := 0
		for k := 0; k < len(shape); k++ {
			dst = dst*shape[k] + idx[k]
		}
		out[dst] = values[src]
		for k := 0; k < len(shape); k++ {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return out, nil
}
