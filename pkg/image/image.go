package image

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/tosih/a2l-calreader/pkg/models"
)

// Memory is the read surface the decoders work against
type Memory interface {
	Read(addr uint32, length int) ([]byte, error)
	ReadUint(addr uint32, dt models.DataType, order models.ByteOrder) (uint64, error)
	ReadNumeric(addr uint32, dt models.DataType, order models.ByteOrder, mask *uint64) (float64, error)
	ReadArray(addr uint32, count int, dt models.DataType, order models.ByteOrder) ([]float64, error)
	ReadText(addr uint32, length int) (string, error)
}

// Device is the physical read path of a live ECU
type Device interface {
	Read(ctx context.Context, addr uint32, length int) ([]byte, error)
}

// Section is one contiguous run of bytes
type Section struct {
	Address uint32
	Data    []byte
}

// End returns the address immediately after the last byte of the section
func (s Section) End() uint64 {
	return uint64(s.Address) + uint64(len(s.Data))
}

// Image is a byte-addressable memory image made of non-overlapping sections
type Image struct {
	FileName string
	sections []Section
	encoding string
}

// Option configures an Image
type Option func(*Image)

// WithEncoding selects the single-byte codepage used by ReadText
func WithEncoding(name string) Option {
	return func(img *Image) {
		img.encoding = name
	}
}

// Decoder returns the text decoder for an encoding name, ISO-8859-1 by default
func Decoder(name string) *encoding.Decoder {
	switch name {
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder()
	case "windows-1250", "cp1250":
		return charmap.Windows1250.NewDecoder()
	}
	return charmap.ISO8859_1.NewDecoder()
}

// New creates an image from sections. Overlapping sections are rejected.
func New(sections []Section, opts ...Option) (*Image, error) {
	img := &Image{}
	for _, opt := range opts {
		opt(img)
	}
	sorted := make([]Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })
	for i := 1; i < len(sorted); i++ {
		if uint64(sorted[i].Address) < sorted[i-1].End() {
			return nil, fmt.Errorf("section at 0x%08X overlaps section at 0x%08X",
				sorted[i].Address, sorted[i-1].Address)
		}
	}
	img.sections = sorted
	return img, nil
}

// Sections returns the sections in ascending address order
func (img *Image) Sections() []Section {
	return img.sections
}

// Size returns the total number of bytes held
func (img *Image) Size() int {
	total := 0
	for _, s := range img.sections {
		total += len(s.Data)
	}
	return total
}

// Read returns length bytes at addr. The range must lie within one section.
func (img *Image) Read(addr uint32, length int) ([]byte, error) {
	if length < 0 {
		return nil, models.ErrIoRead{Address: addr, Length: length, Err: fmt.Errorf("negative length")}
	}
	idx := sort.Search(len(img.sections), func(i int) bool {
		return img.sections[i].End() > uint64(addr)
	})
	if idx == len(img.sections) || img.sections[idx].Address > addr {
		return nil, models.ErrIoRead{Address: addr, Length: length, Err: fmt.Errorf("address not mapped")}
	}
	s := img.sections[idx]
	start := uint64(addr - s.Address)
	if start+uint64(length) > uint64(len(s.Data)) {
		return nil, models.ErrIoRead{Address: addr, Length: length,
			Err: fmt.Errorf("beyond section 0x%08X - 0x%08X", s.Address, s.End())}
	}
	return s.Data[start : start+uint64(length)], nil
}

// ReadText reads a fixed-length byte run and decodes it, cutting at the first NUL
func (img *Image) ReadText(addr uint32, length int) (string, error) {
	data, err := img.Read(addr, length)
	if err != nil {
		return "", err
	}
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		data = data[:idx]
	}
	text, err := Decoder(img.encoding).Bytes(data)
	if err != nil {
		return "", models.ErrIoRead{Address: addr, Length: length, Err: err}
	}
	return string(text), nil
}
