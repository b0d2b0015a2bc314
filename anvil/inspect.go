package anvil

import (
	"strings"
	"time"

	"github.com/willf/bitset"
)

// Report describes how a region file's sectors are used.
type Report struct {
	X, Z      int
	Length    int64
	Sectors   int
	Remainder int
	Chunks    int
	// Grid has one row per local z, "XX" for present chunks and "__" for absent ones.
	Grid []string
	// SectorMap has one character per sector: 'i' header, 'O' referenced, '_' gap.
	SectorMap string
	Gaps      int
	// Overlaps counts sectors referenced by more than one chunk.
	Overlaps int
	// OutOfRange counts present chunks pointing past the end of the file.
	OutOfRange int
	Newest     time.Time
}

// Inspect builds a sector usage report from the header of r.
func Inspect(r *Reader) *Report {
	report := &Report{
		X:         r.X,
		Z:         r.Z,
		Length:    r.size,
		Sectors:   int(r.size / SectorSize),
		Remainder: int(r.size % SectorSize),
	}
	used := bitset.New(uint(report.Sectors))
	for i := uint(0); i < 2 && i < uint(report.Sectors); i++ {
		used.Set(i)
	}

	var newest uint32
	for z := 0; z < Edge; z++ {
		var row strings.Builder
		for x := 0; x < Edge; x++ {
			location := r.header.Location(x, z)
			if !location.Present() {
				row.WriteString("__")
				continue
			}
			row.WriteString("XX")
			report.Chunks++
			if ts := r.header.Timestamps[x+z*Edge]; ts > newest {
				newest = ts
			}
			start := uint(location.Offset())
			end := start + uint(location.Count())
			if end > uint(report.Sectors) {
				report.OutOfRange++
				end = uint(report.Sectors)
			}
			for i := start; i < end; i++ {
				if used.Test(i) {
					report.Overlaps++
				}
				used.Set(i)
			}
		}
		report.Grid = append(report.Grid, row.String())
	}
	if newest != 0 {
		report.Newest = time.Unix(int64(newest), 0)
	}

	sectors := make([]byte, report.Sectors)
	for i := range sectors {
		switch {
		case i < 2:
			sectors[i] = 'i'
		case used.Test(uint(i)):
			sectors[i] = 'O'
		default:
			sectors[i] = '_'
		}
	}
	report.SectorMap = string(sectors)
	report.Gaps = report.Sectors - int(used.Count())
	return report
}
