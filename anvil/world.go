package anvil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Dimension names one region directory of a world.
type Dimension struct {
	Name string
	Dir  string
}

// Dimensions lists the region directories of a world in scan order.
var Dimensions = []Dimension{
	{Name: "overworld", Dir: "region"},
	{Name: "end", Dir: filepath.Join("DIM1", "region")},
	{Name: "nether", Dir: filepath.Join("DIM-1", "region")},
}

var ErrNoRegionDir = errors.New("anvil: region folder not found")

// World is a save directory holding up to one region directory per dimension.
type World struct {
	Root string
}

func OpenWorld(root string) (*World, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}
	return &World{Root: root}, nil
}

// RegionDirs returns the region directories that exist, in Dimensions order.
func (w *World) RegionDirs() []string {
	var dirs []string
	for _, d := range Dimensions {
		path := filepath.Join(w.Root, d.Dir)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			dirs = append(dirs, path)
		}
	}
	return dirs
}

// RegionDir returns the region directory of the named dimension, or of the first
// existing dimension when name is empty.
func (w *World) RegionDir(name string) (string, error) {
	if name == "" {
		dirs := w.RegionDirs()
		if len(dirs) == 0 {
			return "", fmt.Errorf("%w: %s", ErrNoRegionDir, w.Root)
		}
		return dirs[0], nil
	}
	for _, d := range Dimensions {
		if d.Name != name {
			continue
		}
		path := filepath.Join(w.Root, d.Dir)
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNoRegionDir, path)
		}
		return path, nil
	}
	return "", fmt.Errorf("anvil: unknown dimension %q", name)
}

// RegionFile is a region file found in a region directory.
type RegionFile struct {
	Path string
	X, Z int
}

// RegionFiles lists the region files of dir sorted by file name. Entries that do not
// look like region files are ignored; an r.*.mca name with bad coordinates is an error.
func RegionFiles(dir string) ([]RegionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []RegionFile
	for _, entry := range entries {
		if entry.IsDir() || !IsRegionFilename(entry.Name()) {
			continue
		}
		x, z, err := ParseFilename(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		files = append(files, RegionFile{Path: filepath.Join(dir, entry.Name()), X: x, Z: z})
	}
	return files, nil
}
