// Package anviltest builds region files for tests.
package anviltest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	mcnbt "github.com/Tnze/go-mc/nbt"
	"github.com/astei/anvilscan/anvil"
	"github.com/astei/anvilscan/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

type entry struct {
	x, z      int
	length    uint32
	scheme    byte
	payload   []byte
	timestamp uint32
}

// Region accumulates chunks and lays them out as a region file: the 8 KiB header
// followed by one sector-aligned run per chunk, in the order they were added.
type Region struct {
	entries []entry
}

func NewRegion() *Region {
	return &Region{}
}

// Add stores root as a zlib-compressed chunk at local x,z.
func (r *Region) Add(x, z int, root nbt.Value) *Region {
	return r.AddCompressed(x, z, anvil.CompressionZlib, root)
}

// AddCompressed stores root compressed with c. Schemes other than gzip and zlib store
// the encoded tree as is.
func (r *Region) AddCompressed(x, z int, c anvil.Compression, root nbt.Value) *Region {
	payload, err := Compress(c, root)
	if err != nil {
		panic(err)
	}
	return r.AddRaw(x, z, uint32(len(payload))+1, byte(c), payload)
}

// AddRaw stores payload behind an explicit length word, which may disagree with the
// payload to simulate corrupt or truncated files.
func (r *Region) AddRaw(x, z int, length uint32, scheme byte, payload []byte) *Region {
	r.entries = append(r.entries, entry{
		x: x, z: z, length: length, scheme: scheme, payload: payload, timestamp: uint32(1600000000 + len(r.entries)),
	})
	return r
}

// Bytes renders the region file.
func (r *Region) Bytes() []byte {
	var h anvil.Header
	var body bytes.Buffer
	sector := uint32(2)
	for _, e := range r.entries {
		var run bytes.Buffer
		binary.Write(&run, binary.BigEndian, e.length)
		run.WriteByte(e.scheme)
		run.Write(e.payload)
		count := (run.Len() + anvil.SectorSize - 1) / anvil.SectorSize
		run.Write(make([]byte, count*anvil.SectorSize-run.Len()))

		h.SetLocation(e.x, e.z, anvil.NewLocation(sector, uint8(count)))
		h.SetTimestamp(e.x, e.z, e.timestamp)
		body.Write(run.Bytes())
		sector += uint32(count)
	}
	header, _ := h.MarshalBinary()
	return append(header, body.Bytes()...)
}

// Compress encodes root and compresses it with c.
func Compress(c anvil.Compression, root nbt.Value) ([]byte, error) {
	var raw bytes.Buffer
	if err := nbt.NewEncoder(&raw).Encode("", root); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	switch c {
	case anvil.CompressionGzip:
		w := gzip.NewWriter(&out)
		if _, err := raw.WriteTo(w); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case anvil.CompressionZlib:
		w := zlib.NewWriter(&out)
		if _, err := raw.WriteTo(w); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return raw.Bytes(), nil
	}
	return out.Bytes(), nil
}

// WriteRegion writes r as dir/r.<x>.<z>.mca, creating dir, and returns the path.
func WriteRegion(t testing.TB, dir string, x, z int, r *Region) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, anvil.Filename(x, z))
	if err := os.WriteFile(path, r.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteFile writes arbitrary bytes into dir/name, creating dir.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

type levelData struct {
	DataVersion   int32   `nbt:"DataVersion"`
	LevelName     string  `nbt:"LevelName"`
	BorderCenterX float64 `nbt:"BorderCenterX"`
	BorderCenterZ float64 `nbt:"BorderCenterZ"`
	BorderSize    float64 `nbt:"BorderSize"`
}

// WriteLevel writes a gzip-compressed root/level.dat carrying a world border.
func WriteLevel(t testing.TB, root string, centerX, centerZ, size float64) string {
	t.Helper()
	level := struct {
		Data levelData `nbt:"Data"`
	}{levelData{
		DataVersion:   3465,
		LevelName:     "test",
		BorderCenterX: centerX,
		BorderCenterZ: centerZ,
		BorderSize:    size,
	}}

	var out bytes.Buffer
	w := gzip.NewWriter(&out)
	if err := mcnbt.NewEncoder(w).Encode(level, ""); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return WriteFile(t, root, "level.dat", out.Bytes())
}
