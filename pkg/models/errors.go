package models

import (
	"fmt"
)

// ErrMalformedRecordLayout returned when a record layout component cannot be matched
// to a declared axis or special kind
type ErrMalformedRecordLayout struct {
	Object string
	What   string
}

func (e ErrMalformedRecordLayout) Error() string {
	return fmt.Sprintf("malformed record layout of '%s': %s", e.Object, e.What)
}

// ErrMalformedAxis returned when a fixed axis has no usable generator parameters
type ErrMalformedAxis struct {
	Object string
	What   string
}

func (e ErrMalformedAxis) Error() string {
	return fmt.Sprintf("malformed axis '%s': %s", e.Object, e.What)
}

// ErrUnresolvedAxisReference returned when a COM_AXIS, RES_AXIS or CURVE_AXIS
// reference has not been decoded yet
type ErrUnresolvedAxisReference struct {
	Object    string
	Attribute AxisAttribute
	Ref       string
}

func (e ErrUnresolvedAxisReference) Error() string {
	return fmt.Sprintf("unresolved %s reference '%s' in '%s'", e.Attribute, e.Ref, e.Object)
}

type ErrBitMaskInconsistency struct {
	Object string
	Mask   uint64
	What   string
}

func (e ErrBitMaskInconsistency) Error() string {
	return fmt.Sprintf("inconsistent bit mask 0x%X of '%s': %s", e.Mask, e.Object, e.What)
}

// ErrIoRead returned when the memory image can not serve a read
type ErrIoRead struct {
	Address uint32
	Length  int
	Err     error
}

func (e ErrIoRead) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read of %d bytes at 0x%08X failed: %v", e.Length, e.Address, e.Err)
	}
	return fmt.Sprintf("read of %d bytes at 0x%08X failed", e.Length, e.Address)
}

func (e ErrIoRead) Unwrap() error {
	return e.Err
}

type ErrDuplicateParameter struct {
	Category string
	Name     string
}

func (e ErrDuplicateParameter) Error() string {
	return fmt.Sprintf("parameter '%s' already stored in %s", e.Name, e.Category)
}

type ErrUnknownCompuMethod struct {
	Name string
}

func (e ErrUnknownCompuMethod) Error() string {
	return fmt.Sprintf("unknown compu method '%s'", e.Name)
}
