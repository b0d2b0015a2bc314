package border

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/astei/anvilscan/anvil/anviltest"
	"github.com/astei/anvilscan/nbt"
	"github.com/google/go-cmp/cmp"
)

func section(y int8, palette ...string) *nbt.Map {
	entries := nbt.List{}
	for _, name := range palette {
		entries = append(entries, nbt.MapOf("Name", nbt.String(name)))
	}
	return nbt.MapOf(
		"Y", nbt.Byte(y),
		"block_states", nbt.MapOf("palette", entries, "data", nbt.LongArray{0}),
	)
}

func chunkOf(sections ...nbt.Value) *nbt.Map {
	return nbt.MapOf("Status", nbt.String("minecraft:full"), "sections", nbt.List(sections))
}

var (
	airChunk   = chunkOf(section(-4, "minecraft:air"), section(-3, "minecraft:air"))
	stoneChunk = chunkOf(section(-4, "minecraft:air"), section(-3, "minecraft:stone"))
)

func TestVacant(t *testing.T) {
	tests := []struct {
		name     string
		chunk    *nbt.Map
		expected bool
	}{
		{"air", airChunk, true},
		{"stone", stoneChunk, false},
		{"mixed palette", chunkOf(section(0, "minecraft:air", "minecraft:dirt")), false},
		{"no palette", chunkOf(nbt.MapOf("Y", nbt.Byte(0))), true},
		{"empty palette", chunkOf(section(0)), true},
		{"no sections", nbt.MapOf("Status", nbt.String("minecraft:empty")), true},
		{"bad entry", chunkOf(nbt.MapOf("block_states", nbt.MapOf("palette", nbt.List{nbt.String("minecraft:air")}))), false},
	}
	for _, test := range tests {
		if got := Vacant(test.chunk); got != test.expected {
			t.Errorf("%s: Vacant expected %v but got %v", test.name, test.expected, got)
		}
	}
}

func TestGuessSingleChunk(t *testing.T) {
	root := t.TempDir()
	anviltest.WriteRegion(t, filepath.Join(root, "region"), 0, 0, anviltest.NewRegion().
		Add(0, 0, airChunk).
		Add(5, 5, stoneChunk).
		Add(9, 9, airChunk))

	extent, err := Guess(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if extent.West != 5 || extent.East != 5 || extent.North != 5 || extent.South != 5 {
		t.Errorf("chunk extent was %+v", extent)
	}
	west, east, north, south := extent.Blocks()
	if west != 80 || east != 95 || north != 80 || south != 95 {
		t.Errorf("block extent was %d %d %d %d", west, east, north, south)
	}
	if x, z := extent.Center(); x != 87 || z != 87 {
		t.Errorf("center was %d %d", x, z)
	}
	if x, z := extent.Size(); x != 16 || z != 16 {
		t.Errorf("size was %d %d", x, z)
	}
	if extent.Westmost != (Point{5, 5}) || extent.Westmost.Block() != (Point{80, 80}) {
		t.Errorf("westmost was %v", extent.Westmost)
	}
	if extent.Occupied != 1 || extent.Vacant != 2 {
		t.Errorf("occupied/vacant were %d/%d", extent.Occupied, extent.Vacant)
	}
}

func TestGuessKeepsFirstExtreme(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "DIM1", "region")
	anviltest.WriteRegion(t, dir, -1, 0, anviltest.NewRegion().
		Add(31, 3, stoneChunk).
		Add(31, 1, stoneChunk).
		Add(30, 2, stoneChunk))
	anviltest.WriteRegion(t, dir, 0, 0, anviltest.NewRegion().
		Add(4, 2, stoneChunk).
		Add(4, 0, stoneChunk))
	anviltest.WriteFile(t, dir, "r.7.7.mca", nil)

	extent, err := Guess(root, "end")
	if err != nil {
		t.Fatal(err)
	}
	expected := Extent{
		West: -2, East: 4, North: 0, South: 3,
		Westmost:  Point{-2, 2},
		Eastmost:  Point{4, 0},
		Northmost: Point{4, 0},
		Southmost: Point{-1, 3},
		Occupied:  5,
	}
	if diff := cmp.Diff(expected, extent); diff != "" {
		t.Errorf("extent mismatch (-want +got):\n%s", diff)
	}
	// -2<<4 = -32, 3<<4+15 = 63; midpoints truncate toward zero.
	if x, z := extent.Center(); x != (-32+79)/2 || z != 31 {
		t.Errorf("center was %d %d", x, z)
	}
}

func TestGuessTieKeepsScanOrder(t *testing.T) {
	e := NewExtent().Add(Point{0, 3}).Add(Point{0, 1}).Add(Point{2, 1})
	if e.Westmost != (Point{0, 3}) || e.Northmost != (Point{0, 1}) {
		t.Errorf("extremes were west %v north %v", e.Westmost, e.Northmost)
	}
}

func TestGuessNothingOccupied(t *testing.T) {
	root := t.TempDir()
	anviltest.WriteRegion(t, filepath.Join(root, "region"), 0, 0, anviltest.NewRegion().Add(0, 0, airChunk))
	if _, err := Guess(root, ""); !errors.Is(err, ErrNoOccupiedChunks) {
		t.Errorf("error was %v, expected ErrNoOccupiedChunks", err)
	}
}
