package structure

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type openFunc func(path string, truncate bool) (persistent, error)

type persistent interface {
	Store
	Index
}

var stores = map[string]openFunc{
	"sqlite": func(path string, truncate bool) (persistent, error) {
		return OpenSQLite(path, truncate)
	},
	"bolt": func(path string, truncate bool) (persistent, error) {
		return OpenBolt(path, truncate)
	},
}

// rows flattens an index into comparable lines.
func rows(t *testing.T, index Index) []string {
	t.Helper()
	var out []string
	structures, err := index.Structures()
	if err != nil {
		t.Fatal(err)
	}
	for _, st := range structures {
		raw, err := st.JSON()
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, fmt.Sprintf("structure %d %s %d,%d %v %s", st.ID, st.Type, st.ChunkX, st.ChunkZ, st.Box, raw))
	}
	for _, c := range []Cell{{-1, 0}, {0, 0}, {1, 1}, {2, 2}} {
		at, err := index.StructuresAt(c)
		if err != nil {
			t.Fatal(err)
		}
		for _, st := range at {
			out = append(out, fmt.Sprintf("ref %d,%d -> %d", c.X, c.Z, st.ID))
		}
	}
	biomes, err := index.Biomes()
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range biomes {
		raw, err := b.JSON()
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, fmt.Sprintf("biome %d,%d,%d %s", b.ChunkX, b.SectionY, b.ChunkZ, raw))
	}
	return out
}

func indexInto(t *testing.T, open openFunc, path, world string, truncate bool) persistent {
	t.Helper()
	store, err := open(path, truncate)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewIndexer(store, Options{Biomes: true}).Index(world); err != nil {
		store.Close()
		t.Fatal(err)
	}
	return store
}

func TestStoresMatchMemory(t *testing.T) {
	world := testWorld(t)
	memory := NewMemoryStore()
	if _, err := NewIndexer(memory, Options{Biomes: true}).Index(world); err != nil {
		t.Fatal(err)
	}
	expected := rows(t, memory)

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := indexInto(t, open, filepath.Join(t.TempDir(), "structures.db"), world, false)
			defer store.Close()
			if diff := cmp.Diff(expected, rows(t, store)); diff != "" {
				t.Errorf("rows mismatch (-memory +%s):\n%s", name, diff)
			}
		})
	}
}

func TestStoresTruncate(t *testing.T) {
	world := testWorld(t)
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "structures.db")
			indexInto(t, open, path, world, false).Close()

			again := indexInto(t, open, path, world, false)
			structures, _ := again.Structures()
			again.Close()
			if len(structures) != 4 {
				t.Errorf("second run without truncate holds %d structures", len(structures))
			}

			fresh := indexInto(t, open, path, world, true)
			defer fresh.Close()
			structures, _ = fresh.Structures()
			if len(structures) != 2 {
				t.Errorf("truncated run holds %d structures", len(structures))
			}
		})
	}
}

func TestStoresDiscardUncommitted(t *testing.T) {
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "structures.db")
			store, err := open(path, false)
			if err != nil {
				t.Fatal(err)
			}
			id, err := store.InsertStructure(&Record{Type: "minecraft:igloo", Snapshot: startOf("minecraft:igloo", 0, 0)})
			if err != nil {
				t.Fatal(err)
			}
			if err := store.InsertReferences(id, []Cell{{0, 0}}); err != nil {
				t.Fatal(err)
			}
			if err := store.Close(); err != nil {
				t.Fatal(err)
			}

			reopened, err := open(path, false)
			if err != nil {
				t.Fatal(err)
			}
			defer reopened.Close()
			structures, err := reopened.Structures()
			if err != nil {
				t.Fatal(err)
			}
			if len(structures) != 0 {
				t.Errorf("uncommitted rows survived: %v", structures)
			}
		})
	}
}

func TestStoresReadBeforeFirstCommit(t *testing.T) {
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store, err := open(filepath.Join(t.TempDir(), "structures.db"), false)
			if err != nil {
				t.Fatal(err)
			}
			defer store.Close()
			if lines := rows(t, store); len(lines) != 0 {
				t.Errorf("fresh index holds %v", lines)
			}
		})
	}
}
