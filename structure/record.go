package structure

import (
	"math"

	"github.com/astei/anvilscan/nbt"
)

// Box is an inclusive block volume.
type Box struct {
	MinX, MinY, MinZ int32
	MaxX, MaxY, MaxZ int32
}

// EmptyBox returns the identity of Union: minimums at MaxInt32, maximums at MinInt32.
func EmptyBox() Box {
	return Box{
		math.MaxInt32, math.MaxInt32, math.MaxInt32,
		math.MinInt32, math.MinInt32, math.MinInt32,
	}
}

// BoxOf reads a six-integer BB tag (min x, y, z then max x, y, z).
func BoxOf(v nbt.Value) (Box, bool) {
	items, ok := nbt.Elements(v)
	if !ok || len(items) != 6 {
		return Box{}, false
	}
	var c [6]int32
	for i, item := range items {
		n, ok := nbt.ToInt64(item)
		if !ok {
			return Box{}, false
		}
		c[i] = int32(n)
	}
	return Box{c[0], c[1], c[2], c[3], c[4], c[5]}, true
}

// Empty reports whether no volume was ever folded into b.
func (b Box) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY || b.MinZ > b.MaxZ
}

// Union returns the smallest box holding both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		MinX: min(b.MinX, o.MinX), MinY: min(b.MinY, o.MinY), MinZ: min(b.MinZ, o.MinZ),
		MaxX: max(b.MaxX, o.MaxX), MaxY: max(b.MaxY, o.MaxY), MaxZ: max(b.MaxZ, o.MaxZ),
	}
}

// Cell is a 512×512 block region cell, addressed like region files.
type Cell struct {
	X, Z int32
}

// Cells lists every region cell b overlaps, z outer and x inner. An empty box
// overlaps nothing.
func (b Box) Cells() []Cell {
	if b.Empty() {
		return nil
	}
	var cells []Cell
	for z := b.MinZ >> 9; z <= b.MaxZ>>9; z++ {
		for x := b.MinX >> 9; x <= b.MaxX>>9; x++ {
			cells = append(cells, Cell{x, z})
		}
	}
	return cells
}

// Record is one structure start found in a chunk.
type Record struct {
	Type           string
	ChunkX, ChunkZ int32
	Box            Box
	// Snapshot keeps the start's id and Children; every child keeps id, Children
	// and BB.
	Snapshot *nbt.Map
}

// JSON renders the snapshot.
func (r *Record) JSON() (string, error) {
	b, err := nbt.MarshalJSON(r.Snapshot)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Biome is the biome palette of one chunk section.
type Biome struct {
	ChunkX, SectionY, ChunkZ int32
	Biomes                   *nbt.Map
}

func (b *Biome) JSON() (string, error) {
	raw, err := nbt.MarshalJSON(b.Biomes)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
