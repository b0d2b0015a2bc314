// Package border estimates a world's occupied extent from its chunks and trims region
// files to the world border configured in level.dat.
package border

import (
	"errors"
	"fmt"
	"math"

	"github.com/astei/anvilscan/anvil"
	"github.com/astei/anvilscan/nbt"
	"github.com/pterm/pterm"
)

var ErrNoOccupiedChunks = errors.New("border: no occupied chunks")

const airBlock = "minecraft:air"

// Point is a chunk coordinate.
type Point struct {
	X, Z int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// Block returns the block coordinate of the chunk's north-west corner.
func (p Point) Block() Point {
	return Point{p.X << 4, p.Z << 4}
}

// Extent accumulates the chunk bounds of occupied chunks. Each extreme remembers the
// first chunk that reached it.
type Extent struct {
	West, East, North, South                 int
	Westmost, Eastmost, Northmost, Southmost Point
	Occupied                                 int
	Vacant                                   int
}

// NewExtent returns an extent holding no chunks.
func NewExtent() Extent {
	return Extent{
		West: math.MaxInt, East: math.MinInt,
		North: math.MaxInt, South: math.MinInt,
	}
}

// Add folds an occupied chunk into e. Only a strictly further chunk replaces an
// extreme, so ties keep the chunk seen first.
func (e Extent) Add(p Point) Extent {
	e.Occupied++
	if p.X < e.West {
		e.West, e.Westmost = p.X, p
	}
	if p.X > e.East {
		e.East, e.Eastmost = p.X, p
	}
	if p.Z < e.North {
		e.North, e.Northmost = p.Z, p
	}
	if p.Z > e.South {
		e.South, e.Southmost = p.Z, p
	}
	return e
}

func (e Extent) Empty() bool {
	return e.Occupied == 0
}

// Blocks returns the extent in block coordinates; the east and south edges are the
// last block of their chunks.
func (e Extent) Blocks() (west, east, north, south int) {
	return e.West << 4, e.East<<4 + 15, e.North << 4, e.South<<4 + 15
}

// Center returns the block midpoint, truncated toward zero.
func (e Extent) Center() (x, z int) {
	west, east, north, south := e.Blocks()
	return (west + east) / 2, (north + south) / 2
}

// Size returns the number of blocks spanned on each axis.
func (e Extent) Size() (x, z int) {
	west, east, north, south := e.Blocks()
	return east - west + 1, south - north + 1
}

// Vacant reports whether no section of the chunk holds anything but air. A section
// without a block palette counts as air.
func Vacant(chunk *nbt.Map) bool {
	sections, _ := nbt.Elements(chunk.Lookup("sections"))
	for _, s := range sections {
		section, ok := s.(*nbt.Map)
		if !ok {
			continue
		}
		states, ok := section.Compound("block_states")
		if !ok {
			continue
		}
		palette, _ := nbt.Elements(states.Lookup("palette"))
		if len(palette) == 0 {
			continue
		}
		if len(palette) > 1 {
			return false
		}
		entry, ok := palette[0].(*nbt.Map)
		if !ok || entry.Lookup("Name") != nbt.String(airBlock) {
			return false
		}
	}
	return true
}

// Guess scans the region directory of dimension (the first existing one when empty)
// and returns the extent of its occupied chunks. Region files are visited by name,
// chunks row by row.
func Guess(root, dimension string) (Extent, error) {
	world, err := anvil.OpenWorld(root)
	if err != nil {
		return Extent{}, err
	}
	dir, err := world.RegionDir(dimension)
	if err != nil {
		return Extent{}, err
	}
	pterm.Info.Printfln("Using region folder: %s", dir)
	return GuessDir(dir)
}

// GuessDir is Guess on one region directory.
func GuessDir(dir string) (Extent, error) {
	files, err := anvil.RegionFiles(dir)
	if err != nil {
		return Extent{}, err
	}
	extent := NewExtent()
	for _, file := range files {
		if extent, err = guessRegion(file, extent); err != nil {
			return extent, err
		}
	}
	if extent.Empty() {
		return extent, fmt.Errorf("%w in %s", ErrNoOccupiedChunks, dir)
	}
	return extent, nil
}

func guessRegion(file anvil.RegionFile, extent Extent) (Extent, error) {
	reader, err := anvil.Open(file.Path)
	if errors.Is(err, anvil.ErrEmptyRegion) {
		pterm.Warning.Printfln("%s: file is empty", file.Path)
		return extent, nil
	}
	if err != nil {
		return extent, err
	}
	defer reader.Close()

	err = reader.Scan(func(x, z int, chunk nbt.Value) error {
		root, ok := chunk.(*nbt.Map)
		if !ok {
			pterm.Warning.Printfln("%s: chunk %d,%d is not a compound", file.Path, x, z)
			return nil
		}
		if Vacant(root) {
			extent.Vacant++
			return nil
		}
		p := Point{anvil.ChunkOf(file.X, x), anvil.ChunkOf(file.Z, z)}
		pterm.Debug.Printfln("Occupied chunk %v", p)
		extent = extent.Add(p)
		return nil
	})
	return extent, err
}
