package border

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/astei/anvilscan/anvil"
	"github.com/pterm/pterm"
)

var ErrBorderUnset = errors.New("border: world border too large or not set")

// UnsetSize is the smallest border size treated as "no border"; the game's default
// border is just below 6e7.
const UnsetSize = 5.9e7

// Border is the world border configured in level.dat, in blocks.
type Border struct {
	CenterX, CenterZ float64
	Size             float64
}

// Bounds is an inclusive rectangle of chunk or region coordinates.
type Bounds struct {
	West, East, North, South int
}

// Contains reports whether x,z lies within the inclusive bounds.
func (b Bounds) Contains(x, z int) bool {
	return x >= b.West && x <= b.East && z >= b.North && z <= b.South
}

// Regions returns the region coordinates holding the chunk bounds b.
func (b Bounds) Regions() Bounds {
	return Bounds{
		West:  anvil.RegionOf(b.West),
		East:  anvil.RegionOf(b.East),
		North: anvil.RegionOf(b.North),
		South: anvil.RegionOf(b.South),
	}
}

// Chunks returns the chunks to keep: every chunk touching the border, widened by
// padding chunks on each side.
func (b Border) Chunks(padding int) (Bounds, error) {
	if b.Size >= UnsetSize {
		return Bounds{}, fmt.Errorf("%w: size %g", ErrBorderUnset, b.Size)
	}
	half := b.Size * 0.5
	west := int(math.Floor(b.CenterX - half))
	east := int(math.Ceil(b.CenterX + half))
	north := int(math.Floor(b.CenterZ - half))
	south := int(math.Ceil(b.CenterZ + half))
	return Bounds{
		West:  west>>4 - padding,
		East:  east>>4 + padding,
		North: north>>4 - padding,
		South: south>>4 + padding,
	}, nil
}

// Action is what Cut does with one region file.
type Action int

const (
	// Keep leaves a region strictly inside the kept regions untouched.
	Keep Action = iota
	// Trim erases the chunks of an edge region that lie outside the kept chunks.
	Trim
	// Delete removes a region lying entirely outside the kept regions.
	Delete
)

func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case Trim:
		return "trim"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Classify decides the action for region x,z given the kept region bounds.
func (b Bounds) Classify(x, z int) Action {
	if x > b.West && x < b.East && z > b.North && z < b.South {
		return Keep
	}
	if x < b.West || x > b.East || z < b.North || z > b.South {
		return Delete
	}
	return Trim
}

type CutOptions struct {
	Padding int
	// Simulate reports what would change without touching any file.
	Simulate bool
	// Dimension selects the region directory; empty means the first existing one.
	Dimension string
}

type CutReport struct {
	Border  Border
	Chunks  Bounds
	Regions Bounds
	Dir     string
	Kept    int
	Trimmed int
	// Deleted lists the region files removed, or that would be removed.
	Deleted []string
	// Erased counts chunk entries zeroed, or that would be zeroed.
	Erased int
}

// Cut trims the world at root to the border in its level.dat. Regions outside the
// padded border are deleted; in edge regions the location and timestamp entries of
// every chunk outside it are zeroed. Payload sectors are never reclaimed. An unset
// border aborts before any file is touched.
func Cut(root string, options CutOptions) (*CutReport, error) {
	level, err := ReadLevel(filepath.Join(root, "level.dat"))
	if err != nil {
		return nil, err
	}
	report := &CutReport{Border: level.Border()}
	pterm.Info.Printfln("Center %g %g, size %g, simulate %v",
		report.Border.CenterX, report.Border.CenterZ, report.Border.Size, options.Simulate)

	if report.Chunks, err = report.Border.Chunks(options.Padding); err != nil {
		return report, err
	}
	report.Regions = report.Chunks.Regions()

	world, err := anvil.OpenWorld(root)
	if err != nil {
		return report, err
	}
	if report.Dir, err = world.RegionDir(options.Dimension); err != nil {
		return report, err
	}
	pterm.Info.Printfln("Using region folder: %s", report.Dir)

	files, err := anvil.RegionFiles(report.Dir)
	if err != nil {
		return report, err
	}
	for _, file := range files {
		switch report.Regions.Classify(file.X, file.Z) {
		case Keep:
			report.Kept++
		case Delete:
			pterm.Info.Printfln("%s: deleting region", filepath.Base(file.Path))
			if !options.Simulate {
				if err := os.Remove(file.Path); err != nil {
					return report, err
				}
			}
			report.Deleted = append(report.Deleted, file.Path)
		case Trim:
			erased, err := trimRegion(file, report.Chunks, options.Simulate)
			if err != nil {
				return report, err
			}
			report.Trimmed++
			report.Erased += erased
		}
	}
	pterm.Info.Printfln("Done. Deleted %d region files and erased %d chunks", len(report.Deleted), report.Erased)
	return report, nil
}

func trimRegion(file anvil.RegionFile, keep Bounds, simulate bool) (erased int, err error) {
	var header *anvil.Header
	erase := func(x, z int) error { return nil }
	if simulate {
		reader, err := anvil.Open(file.Path)
		if errors.Is(err, anvil.ErrEmptyRegion) {
			pterm.Warning.Printfln("%s: file is empty", file.Path)
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		defer reader.Close()
		header = reader.Header()
	} else {
		editor, openErr := anvil.OpenEditor(file.Path)
		if errors.Is(openErr, anvil.ErrEmptyRegion) {
			pterm.Warning.Printfln("%s: file is empty", file.Path)
			return 0, nil
		}
		if openErr != nil {
			return 0, openErr
		}
		defer func() {
			if closeErr := editor.Close(); err == nil {
				err = closeErr
			}
		}()
		header = editor.Header()
		erase = editor.Erase
	}

	for z := 0; z < anvil.Edge; z++ {
		for x := 0; x < anvil.Edge; x++ {
			chunkX, chunkZ := anvil.ChunkOf(file.X, x), anvil.ChunkOf(file.Z, z)
			if keep.Contains(chunkX, chunkZ) || !header.Location(x, z).Present() {
				continue
			}
			pterm.Info.Printfln("%s: erasing chunk %d %d", filepath.Base(file.Path), chunkX, chunkZ)
			if err = erase(x, z); err != nil {
				return erased, err
			}
			erased++
		}
	}
	return erased, nil
}
