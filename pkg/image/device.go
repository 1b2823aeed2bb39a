package image

import (
	"context"
)

// MemoryDevice serves device reads out of a memory image
type MemoryDevice struct {
	Memory Memory
}

// Read copies the requested range so callers may keep or modify the result
func (d MemoryDevice) Read(ctx context.Context, addr uint32, length int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := d.Memory.Read(addr, length)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}
