package anvil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadFilename = errors.New("anvil: not a region file name")

// Filename returns the file name of the region at region coordinates x,z.
func Filename(x, z int) string {
	return fmt.Sprintf("r.%d.%d.mca", x, z)
}

// ParseFilename extracts region coordinates from a name of the form r.<x>.<z>.mca.
// Negative coordinates are allowed; any other shape is rejected.
func ParseFilename(name string) (x, z int, err error) {
	fields := strings.Split(name, ".")
	if len(fields) != 4 || fields[0] != "r" || fields[3] != "mca" {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	if x, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	if z, err = strconv.Atoi(fields[2]); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	return x, z, nil
}

// IsRegionFilename reports whether name looks like a region file and should be
// handed to ParseFilename.
func IsRegionFilename(name string) bool {
	return strings.HasPrefix(name, "r.") && strings.HasSuffix(name, ".mca")
}

// RegionOf returns the region coordinate holding a chunk coordinate.
func RegionOf(chunk int) int {
	return chunk >> 5
}

// ChunkOf returns the absolute chunk coordinate of a local chunk in a region.
func ChunkOf(region, local int) int {
	return region<<5 + local
}
