package structure

// Store receives the rows of one indexing run. A structure is written in two steps:
// InsertStructure assigns its id, then InsertReferences links that id to region
// cells. Nothing is visible to readers until Commit; Close without Commit discards
// the run.
type Store interface {
	InsertStructure(rec *Record) (int64, error)
	InsertReferences(id int64, cells []Cell) error
	// InsertBiomes writes biome rows, replacing rows with the same chunk and section.
	InsertBiomes(biomes []Biome) error
	Commit() error
	Rollback() error
	Close() error
}

// Stored is a committed structure row.
type Stored struct {
	ID int64
	Record
}

// Index reads committed rows back.
type Index interface {
	Structures() ([]Stored, error)
	// StructuresAt returns the structures referencing region cell c, by id.
	StructuresAt(c Cell) ([]Stored, error)
	Biomes() ([]Biome, error)
}
