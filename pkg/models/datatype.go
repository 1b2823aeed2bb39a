package models

import (
	"encoding/binary"
	"fmt"
)

// DataType is an ASAM datatype keyword
type DataType string

const (
	UByte   DataType = "UBYTE"
	SByte   DataType = "SBYTE"
	UWord   DataType = "UWORD"
	SWord   DataType = "SWORD"
	ULong   DataType = "ULONG"
	SLong   DataType = "SLONG"
	UInt64  DataType = "A_UINT64"
	Int64   DataType = "A_INT64"
	Float32 DataType = "FLOAT32_IEEE"
	Float64 DataType = "FLOAT64_IEEE"
)

var typeSizes = map[DataType]int{
	UByte:   1,
	SByte:   1,
	UWord:   2,
	SWord:   2,
	ULong:   4,
	SLong:   4,
	UInt64:  8,
	Int64:   8,
	Float32: 4,
	Float64: 8,
}

// Size returns the element size in bytes
func (d DataType) Size() (int, error) {
	size, ok := typeSizes[d]
	if !ok {
		return 0, fmt.Errorf("unknown datatype %q", string(d))
	}
	return size, nil
}

// Valid reports whether d is a known datatype
func (d DataType) Valid() bool {
	_, ok := typeSizes[d]
	return ok
}

func (d DataType) Signed() bool {
	switch d {
	case SByte, SWord, SLong, Int64:
		return true
	}
	return false
}

func (d DataType) Float() bool {
	return d == Float32 || d == Float64
}

// ByteOrder is the A2L BYTE_ORDER keyword
type ByteOrder string

const (
	MsbLast      ByteOrder = "MSB_LAST"
	MsbFirst     ByteOrder = "MSB_FIRST"
	LittleEndian ByteOrder = "LITTLE_ENDIAN"
	BigEndian    ByteOrder = "BIG_ENDIAN"
)

// Binary maps the keyword onto encoding/binary. Unset means MSB_LAST.
func (o ByteOrder) Binary() binary.ByteOrder {
	switch o {
	case MsbFirst, BigEndian:
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Or returns o, or fallback when o is unset
func (o ByteOrder) Or(fallback ByteOrder) ByteOrder {
	if o == "" {
		return fallback
	}
	return o
}

// IndexOrder is the storage direction of an axis
type IndexOrder string

const (
	IndexIncr IndexOrder = "INDEX_INCR"
	IndexDecr IndexOrder = "INDEX_DECR"
)

// IndexMode is the storage direction of function values
type IndexMode string

const (
	RowDir    IndexMode = "ROW_DIR"
	ColumnDir IndexMode = "COLUMN_DIR"
)
