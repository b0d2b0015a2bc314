package structure

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/astei/anvilscan/anvil/anviltest"
	"github.com/astei/anvilscan/nbt"
	"github.com/google/go-cmp/cmp"
)

func startOf(id string, chunkX, chunkZ int32, boxes ...[6]int32) *nbt.Map {
	children := nbt.List{}
	for _, b := range boxes {
		bb := b
		children = append(children, nbt.MapOf(
			"id", nbt.String("minecraft:piece"),
			"BB", nbt.IntArray(bb[:]),
			"GD", nbt.Int(0),
		))
	}
	return nbt.MapOf(
		"ChunkX", nbt.Int(chunkX),
		"ChunkZ", nbt.Int(chunkZ),
		"id", nbt.String(id),
		"Children", children,
	)
}

func chunkWith(xPos, zPos int32, starts *nbt.Map, biomes ...string) *nbt.Map {
	sections := nbt.List{}
	for i, name := range biomes {
		sections = append(sections, nbt.MapOf(
			"Y", nbt.Byte(i-4),
			"biomes", nbt.MapOf("palette", nbt.List{nbt.String(name)}),
		))
	}
	chunk := nbt.MapOf(
		"xPos", nbt.Int(xPos),
		"zPos", nbt.Int(zPos),
		"sections", sections,
	)
	if starts != nil {
		chunk.Set("structures", nbt.MapOf("References", nbt.NewMap(), "starts", starts))
	}
	return chunk
}

// testWorld has a village spanning four region cells in the overworld, an empty
// region file, and a fortress plus an INVALID start in the nether.
func testWorld(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	overworld := filepath.Join(root, "region")
	nether := filepath.Join(root, "DIM-1", "region")

	anviltest.WriteRegion(t, overworld, 0, 0, anviltest.NewRegion().
		Add(0, 0, chunkWith(0, 0, nbt.MapOf(
			"minecraft:village", startOf("minecraft:village", 0, 0,
				[6]int32{0, 0, 0, 10, 10, 10},
				[6]int32{500, 5, 1000, 600, 20, 1023}),
		), "minecraft:plains", "minecraft:forest")).
		Add(1, 0, chunkWith(1, 0, nil, "minecraft:plains")))
	anviltest.WriteFile(t, overworld, "r.5.5.mca", nil)

	anviltest.WriteRegion(t, nether, -1, 0, anviltest.NewRegion().
		Add(31, 0, chunkWith(-1, 0, nbt.MapOf(
			"INVALID", nbt.MapOf("id", nbt.String("INVALID")),
			"minecraft:fortress", startOf("minecraft:fortress", -1, 0,
				[6]int32{-20, 40, 0, -5, 60, 30}),
		), "minecraft:nether_wastes")))
	return root
}

func TestIndexWorld(t *testing.T) {
	store := NewMemoryStore()
	stats, err := NewIndexer(store, Options{}).Index(testWorld(t))
	if err != nil {
		t.Fatal(err)
	}
	expected := Stats{RegionFiles: 2, Chunks: 3, Structures: 2, References: 5}
	if diff := cmp.Diff(expected, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	structures, _ := store.Structures()
	if len(structures) != 2 {
		t.Fatalf("expected 2 structures but got %d", len(structures))
	}
	village, fortress := structures[0], structures[1]
	if village.Type != "minecraft:village" || village.Box != (Box{0, 0, 0, 600, 20, 1023}) {
		t.Errorf("village was %+v", village.Record)
	}
	if fortress.Type != "minecraft:fortress" || fortress.ChunkX != -1 {
		t.Errorf("fortress was %+v", fortress.Record)
	}

	for _, c := range []Cell{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		at, _ := store.StructuresAt(c)
		if len(at) != 1 || at[0].ID != village.ID {
			t.Errorf("cell %+v holds %v", c, at)
		}
	}
	if at, _ := store.StructuresAt(Cell{-1, 0}); len(at) != 1 || at[0].ID != fortress.ID {
		t.Errorf("cell -1,0 holds %v", at)
	}
	if biomes, _ := store.Biomes(); len(biomes) != 0 {
		t.Errorf("biomes written without the option: %v", biomes)
	}
}

func TestIndexBiomes(t *testing.T) {
	root := testWorld(t)
	// A second overworld region claims chunk 1,0 again; the later write wins.
	anviltest.WriteRegion(t, filepath.Join(root, "region"), 1, 0, anviltest.NewRegion().
		Add(0, 0, chunkWith(1, 0, nil, "minecraft:desert")))

	store := NewMemoryStore()
	stats, err := NewIndexer(store, Options{Biomes: true}).Index(root)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Biomes != 5 {
		t.Errorf("expected 5 biome rows written but got %d", stats.Biomes)
	}

	biomes, _ := store.Biomes()
	var got []string
	for _, b := range biomes {
		raw, _ := b.JSON()
		got = append(got, fmt.Sprintf("%d,%d,%d %s", b.ChunkX, b.SectionY, b.ChunkZ, raw))
	}
	expected := []string{
		`-1,-4,0 {"palette":["minecraft:nether_wastes"]}`,
		`0,-4,0 {"palette":["minecraft:plains"]}`,
		`0,-3,0 {"palette":["minecraft:forest"]}`,
		`1,-4,0 {"palette":["minecraft:desert"]}`,
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("biomes mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexEmptyBoxHasNoReferences(t *testing.T) {
	root := t.TempDir()
	anviltest.WriteRegion(t, filepath.Join(root, "region"), 0, 0, anviltest.NewRegion().
		Add(0, 0, chunkWith(0, 0, nbt.MapOf("minecraft:stronghold", startOf("minecraft:stronghold", 0, 0)))))

	store := NewMemoryStore()
	stats, err := NewIndexer(store, Options{}).Index(root)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Structures != 1 || stats.References != 0 || store.References() != 0 {
		t.Errorf("stats were %+v with %d references", stats, store.References())
	}
	structures, _ := store.Structures()
	if structures[0].Box != (Box{}) {
		t.Errorf("empty box stored as %+v", structures[0].Box)
	}
}

func TestIndexInconsistentStart(t *testing.T) {
	root := t.TempDir()
	anviltest.WriteRegion(t, filepath.Join(root, "region"), 0, 0, anviltest.NewRegion().
		Add(0, 0, chunkWith(0, 0, nbt.MapOf("minecraft:village", startOf("minecraft:igloo", 0, 0)))))

	_, err := NewIndexer(NewMemoryStore(), Options{}).Index(root)
	if !errors.Is(err, ErrInconsistent) {
		t.Errorf("error was %v, expected ErrInconsistent", err)
	}
}

func TestIndexNothingFound(t *testing.T) {
	empty := t.TempDir()
	anviltest.WriteFile(t, filepath.Join(empty, "region"), "r.0.0.mca", nil)
	if _, err := NewIndexer(NewMemoryStore(), Options{}).Index(empty); !errors.Is(err, ErrNoRegionFiles) {
		t.Errorf("world with only empty files returned %v, expected ErrNoRegionFiles", err)
	}

	bare := t.TempDir()
	anviltest.WriteRegion(t, filepath.Join(bare, "DIM1", "region"), 0, 0, anviltest.NewRegion().
		Add(0, 0, chunkWith(0, 0, nil)))
	stats, err := NewIndexer(NewMemoryStore(), Options{}).Index(bare)
	if !errors.Is(err, ErrNoStructures) {
		t.Errorf("world without structures returned %v, expected ErrNoStructures", err)
	}
	if stats.RegionFiles != 1 || stats.Chunks != 1 {
		t.Errorf("stats were %+v", stats)
	}
}
