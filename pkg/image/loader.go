package image

import (
	"fmt"
	"io"
	"os"
)

// LoadFile reads a raw binary dump and maps it at base
func LoadFile(filename string, base uint32, opts ...Option) (*Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if uint64(base)+uint64(len(data)) > 1<<32 {
		return nil, fmt.Errorf("%s: %d bytes at 0x%08X exceed the 32-bit address space", filename, len(data), base)
	}

	img, err := New([]Section{{Address: base, Data: data}}, opts...)
	if err != nil {
		return nil, err
	}
	img.FileName = filename
	return img, nil
}
