// Package blocks plans the minimal set of contiguous memory reads covering a
// set of parameter footprints.
package blocks

import (
	"fmt"
	"sort"
)

// Footprint is the memory range occupied by one parameter
type Footprint struct {
	Name    string `json:"name"`
	Address uint32 `json:"address"`
	Length  int    `json:"length"`
}

func (f Footprint) end() uint64 {
	return uint64(f.Address) + uint64(f.Length)
}

// Member is a parameter contributing to a block, Offset being local to the block
type Member struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Block is one contiguous read
type Block struct {
	Address uint32   `json:"address"`
	Length  int      `json:"length"`
	Members []Member `json:"members"`
}

// End returns the address immediately after the block
func (b Block) End() uint64 {
	return uint64(b.Address) + uint64(b.Length)
}

// Plan merges overlapping and adjacent footprints into blocks sorted by address.
// Zero-length footprints are ignored.
func Plan(footprints []Footprint) []Block {
	sorted := make([]Footprint, 0, len(footprints))
	for _, f := range footprints {
		if f.Length > 0 {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	var blocks []Block
	for _, f := range sorted {
		if n := len(blocks); n > 0 && uint64(f.Address) <= blocks[n-1].End() {
			cur := &blocks[n-1]
			if end := f.end(); end > cur.End() {
				cur.Length = int(end - uint64(cur.Address))
			}
			cur.Members = append(cur.Members, Member{Name: f.Name, Offset: int(f.Address - cur.Address), Length: f.Length})
			continue
		}
		blocks = append(blocks, Block{
			Address: f.Address,
			Length:  f.Length,
			Members: []Member{{Name: f.Name, Offset: 0, Length: f.Length}},
		})
	}
	return blocks
}

// Footprints turns blocks back into footprints, one per block, for replanning
func Footprints(blocks []Block) []Footprint {
	out := make([]Footprint, len(blocks))
	for i, b := range blocks {
		out[i] = Footprint{Name: fmt.Sprintf("block_%08X", b.Address), Address: b.Address, Length: b.Length}
	}
	return out
}

// Covered is the total number of bytes of a plan
func Covered(blocks []Block) int {
	total := 0
	for _, b := range blocks {
		total += b.Length
	}
	return total
}

// Slice cuts the bytes of member out of the data read for the block
func (b Block) Slice(data []byte, member string) ([]byte, error) {
	if len(data) != b.Length {
		return nil, fmt.Errorf("block at 0x%08X: got %d bytes, want %d", b.Address, len(data), b.Length)
	}
	for _, m := range b.Members {
		if m.Name == member {
			return data[m.Offset : m.Offset+m.Length], nil
		}
	}
	return nil, fmt.Errorf("block at 0x%08X has no member '%s'", b.Address, member)
}
