package image

import (
	"math"

	"github.com/tosih/a2l-calreader/pkg/models"
)

// ReadUint reads the raw bits of one element, zero-extended
func (img *Image) ReadUint(addr uint32, dt models.DataType, order models.ByteOrder) (uint64, error) {
	size, err := dt.Size()
	if err != nil {
		return 0, models.ErrIoRead{Address: addr, Err: err}
	}
	data, err := img.Read(addr, size)
	if err != nil {
		return 0, err
	}
	return decodeBits(data, size, order), nil
}

// ReadNumeric reads one element. With a mask the masked bits are returned unshifted;
// the caller owns the shift because only it knows the characteristic.
func (img *Image) ReadNumeric(addr uint32, dt models.DataType, order models.ByteOrder, mask *uint64) (float64, error) {
	bits, err := img.ReadUint(addr, dt, order)
	if err != nil {
		return 0, err
	}
	if mask != nil {
		return float64(bits & *mask), nil
	}
	return Numeric(bits, dt), nil
}

// ReadArray reads count contiguous elements
func (img *Image) ReadArray(addr uint32, count int, dt models.DataType, order models.ByteOrder) ([]float64, error) {
	size, err := dt.Size()
	if err != nil {
		return nil, models.ErrIoRead{Address: addr, Err: err}
	}
	data, err := img.Read(addr, count*size)
	if err != nil {
		return nil, err
	}
	values := make([]float64, count)
	for i := 0; i < count; i++ {
		values[i] = Numeric(decodeBits(data[i*size:(i+1)*size], size, order), dt)
	}
	return values, nil
}

func decodeBits(data []byte, size int, order models.ByteOrder) uint64 {
	bo := order.Binary()
	switch size {
	case 1:
		return uint64(data[0])
	case 2:
		return uint64(bo.Uint16(data))
	case 4:
		return uint64(bo.Uint32(data))
	default:
		return bo.Uint64(data)
	}
}

// Numeric interprets raw element bits according to the datatype
func Numeric(bits uint64, dt models.DataType) float64 {
	switch dt {
	case models.SByte:
		return float64(int8(bits))
	case models.SWord:
		return float64(int16(bits))
	case models.SLong:
		return float64(int32(bits))
	case models.Int64:
		return float64(int64(bits))
	case models.Float32:
		return float64(math.Float32frombits(uint32(bits)))
	case models.Float64:
		return math.Float64frombits(bits)
	}
	return float64(bits)
}
