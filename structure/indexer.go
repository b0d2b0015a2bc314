// Package structure finds structure starts in a world's chunks and writes them,
// with the region cells they overlap, into an index.
package structure

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/astei/anvilscan/anvil"
	"github.com/astei/anvilscan/nbt"
	"github.com/pterm/pterm"
)

var (
	ErrInconsistent  = errors.New("structure: start id does not match its key")
	ErrNoRegionFiles = errors.New("structure: no region files found")
	ErrNoStructures  = errors.New("structure: no structures found")
)

// invalidStart is the id the game writes for a start that failed to generate.
const invalidStart = "INVALID"

type Options struct {
	// Biomes also records every section's biome palette.
	Biomes bool
}

// Stats counts what one run read and wrote.
type Stats struct {
	RegionFiles int
	Chunks      int
	Structures  int
	References  int
	Biomes      int
}

type Indexer struct {
	Store   Store
	Options Options
}

func NewIndexer(store Store, options Options) *Indexer {
	return &Indexer{Store: store, Options: options}
}

// Index scans every region file of the world at root and commits the rows to the
// store. On error nothing is committed and the caller should Close the store. A world
// without region files returns ErrNoRegionFiles; a committed run that found no
// structures returns ErrNoStructures with its stats.
func (ix *Indexer) Index(root string) (Stats, error) {
	var stats Stats
	world, err := anvil.OpenWorld(root)
	if err != nil {
		return stats, err
	}
	for _, dir := range world.RegionDirs() {
		files, err := anvil.RegionFiles(dir)
		if err != nil {
			return stats, err
		}
		for _, file := range files {
			if err := ix.indexRegion(file.Path, &stats); err != nil {
				return stats, err
			}
		}
	}
	if stats.RegionFiles == 0 {
		return stats, fmt.Errorf("%w in %s", ErrNoRegionFiles, root)
	}
	if err := ix.Store.Commit(); err != nil {
		return stats, fmt.Errorf("commit: %w", err)
	}
	if stats.Structures == 0 {
		return stats, ErrNoStructures
	}
	return stats, nil
}

func (ix *Indexer) indexRegion(path string, stats *Stats) error {
	pterm.Info.Printfln("Region file %s", filepath.Base(path))
	reader, err := anvil.Open(path)
	if errors.Is(err, anvil.ErrEmptyRegion) {
		pterm.Warning.Printfln("%s: file is empty", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer reader.Close()
	stats.RegionFiles++

	return reader.Scan(func(x, z int, chunk nbt.Value) error {
		root, ok := chunk.(*nbt.Map)
		if !ok {
			pterm.Warning.Printfln("%s: chunk %d,%d is not a compound", path, x, z)
			return nil
		}
		stats.Chunks++
		if err := ix.indexChunk(root, stats); err != nil {
			return fmt.Errorf("%s: chunk %d,%d: %w", path, x, z, err)
		}
		return nil
	})
}

func (ix *Indexer) indexChunk(chunk *nbt.Map, stats *Stats) error {
	xPos, _ := nbt.ToInt64(chunk.Lookup("xPos"))
	zPos, _ := nbt.ToInt64(chunk.Lookup("zPos"))
	pterm.Debug.Printfln("Chunk %d %d", xPos, zPos)

	if structures, ok := chunk.Compound("structures"); ok {
		if starts, ok := structures.Compound("starts"); ok {
			var err error
			starts.Each(func(key string, v nbt.Value) bool {
				start, ok := v.(*nbt.Map)
				if !ok {
					return true
				}
				err = ix.indexStart(key, start, stats)
				return err == nil
			})
			if err != nil {
				return err
			}
		}
	}

	if ix.Options.Biomes {
		biomes := SectionBiomes(int32(xPos), int32(zPos), chunk)
		if err := ix.Store.InsertBiomes(biomes); err != nil {
			return err
		}
		stats.Biomes += len(biomes)
	}
	return nil
}

func (ix *Indexer) indexStart(key string, start *nbt.Map, stats *Stats) error {
	rec, err := StartRecord(key, start)
	if err != nil || rec == nil {
		return err
	}
	// An empty box has no cells and is stored as zeros.
	cells := rec.Box.Cells()
	if rec.Box.Empty() {
		pterm.Warning.Printfln("%s at chunk %d,%d has no bounding box", rec.Type, rec.ChunkX, rec.ChunkZ)
		rec.Box = Box{}
	}
	id, err := ix.Store.InsertStructure(rec)
	if err != nil {
		return err
	}
	if err = ix.Store.InsertReferences(id, cells); err != nil {
		return err
	}
	stats.Structures++
	stats.References += len(cells)
	return nil
}

// StartRecord builds the record of the structure start stored under key. It returns
// nil for starts without an id, with a non-string id (reported as a warning) or with
// the INVALID id, and ErrInconsistent when the id differs from key.
func StartRecord(key string, start *nbt.Map) (*Record, error) {
	raw := start.Lookup("id")
	id, ok := raw.(nbt.String)
	if raw != nil && !ok {
		pterm.Warning.Printfln("Skipping structure start %q: id is a %s", key, nbt.TagName(raw.TagType()))
		return nil, nil
	}
	if id == "" || id == invalidStart {
		return nil, nil
	}
	if string(id) != key {
		return nil, fmt.Errorf("%w: %q != %q", ErrInconsistent, id, key)
	}

	box := EmptyBox()
	children, hasChildren := nbt.Elements(start.Lookup("Children"))
	kept := make(nbt.List, 0, len(children))
	for _, child := range children {
		childMap, ok := child.(*nbt.Map)
		if !ok {
			kept = append(kept, child)
			continue
		}
		kept = append(kept, childMap.Retain("id", "Children", "BB"))
		if bb, ok := BoxOf(childMap.Lookup("BB")); ok {
			box = box.Union(bb)
		}
	}

	snapshot := start.Retain("id", "Children")
	if hasChildren {
		snapshot.Set("Children", kept)
	}
	chunkX, _ := nbt.ToInt64(start.Lookup("ChunkX"))
	chunkZ, _ := nbt.ToInt64(start.Lookup("ChunkZ"))
	return &Record{
		Type:     string(id),
		ChunkX:   int32(chunkX),
		ChunkZ:   int32(chunkZ),
		Box:      box,
		Snapshot: snapshot,
	}, nil
}

// SectionBiomes returns the biome rows of a chunk: one per section carrying a biomes
// compound.
func SectionBiomes(xPos, zPos int32, chunk *nbt.Map) []Biome {
	sections, _ := nbt.Elements(chunk.Lookup("sections"))
	var out []Biome
	for _, s := range sections {
		section, ok := s.(*nbt.Map)
		if !ok {
			continue
		}
		biomes, ok := section.Compound("biomes")
		if !ok {
			continue
		}
		y, _ := nbt.ToInt64(section.Lookup("Y"))
		out = append(out, Biome{ChunkX: xPos, SectionY: int32(y), ChunkZ: zPos, Biomes: biomes})
	}
	return out
}
