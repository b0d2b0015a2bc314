package structure

import "sort"

type biomeKeyOf struct {
	x, z, y int32
}

// MemoryStore keeps rows in memory. Commit is a no-op and Rollback drops everything.
type MemoryStore struct {
	structures []Stored
	refs       map[Cell][]int64
	biomes     map[biomeKeyOf]Biome
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		refs:   make(map[Cell][]int64),
		biomes: make(map[biomeKeyOf]Biome),
	}
}

func (s *MemoryStore) InsertStructure(rec *Record) (int64, error) {
	id := int64(len(s.structures) + 1)
	s.structures = append(s.structures, Stored{ID: id, Record: *rec})
	return id, nil
}

func (s *MemoryStore) InsertReferences(id int64, cells []Cell) error {
	for _, c := range cells {
		s.refs[c] = append(s.refs[c], id)
	}
	return nil
}

func (s *MemoryStore) InsertBiomes(biomes []Biome) error {
	for _, b := range biomes {
		s.biomes[biomeKeyOf{b.ChunkX, b.ChunkZ, b.SectionY}] = b
	}
	return nil
}

func (s *MemoryStore) Commit() error { return nil }

func (s *MemoryStore) Rollback() error {
	*s = *NewMemoryStore()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Structures() ([]Stored, error) {
	return append([]Stored(nil), s.structures...), nil
}

func (s *MemoryStore) StructuresAt(c Cell) ([]Stored, error) {
	var out []Stored
	for _, id := range s.refs[c] {
		out = append(out, s.structures[id-1])
	}
	return out, nil
}

// References returns the number of reference rows.
func (s *MemoryStore) References() int {
	n := 0
	for _, ids := range s.refs {
		n += len(ids)
	}
	return n
}

func (s *MemoryStore) Biomes() ([]Biome, error) {
	out := make([]Biome, 0, len(s.biomes))
	for _, b := range s.biomes {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ChunkX != b.ChunkX {
			return a.ChunkX < b.ChunkX
		}
		if a.ChunkZ != b.ChunkZ {
			return a.ChunkZ < b.ChunkZ
		}
		return a.SectionY < b.SectionY
	})
	return out, nil
}
