package calibration

import (
	"fmt"

	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/symbols"
)

// EPKStatus is the outcome of comparing the image against the EPK of MOD_PAR
type EPKStatus int

const (
	EPKNotConfigured EPKStatus = iota
	EPKMatch
	EPKMismatch
)

func (s EPKStatus) String() string {
	switch s {
	case EPKMatch:
		return "match"
	case EPKMismatch:
		return "mismatch"
	default:
		return "not configured"
	}
}

func (s EPKStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *EPKStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "match":
		*s = EPKMatch
	case "mismatch":
		*s = EPKMismatch
	case "not configured":
		*s = EPKNotConfigured
	default:
		return fmt.Errorf("unknown EPK status '%s'", text)
	}
	return nil
}

// CheckEPK reads as many bytes as the declared EPK has at its address and
// compares them. A read failure is returned along with EPKMismatch.
func CheckEPK(mem image.Memory, model *symbols.Model) (EPKStatus, error) {
	epk, ok := model.EPK()
	if !ok {
		return EPKNotConfigured, nil
	}
	found, err := mem.ReadText(epk.Address, len(epk.Value))
	if err != nil {
		return EPKMismatch, fmt.Errorf("EPK at 0x%08X: %w", epk.Address, err)
	}
	if found != epk.Value {
		return EPKMismatch, nil
	}
	return EPKMatch, nil
}
