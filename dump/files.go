package dump

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/astei/anvilscan/anvil"
	"github.com/astei/anvilscan/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pterm/pterm"
)

// Gzip chooses whether a tag file is gzip-compressed.
type Gzip int

const (
	// GzipAuto decompresses .dat files only.
	GzipAuto Gzip = iota
	GzipOn
	GzipOff
)

func (g Gzip) enabled(path string) bool {
	switch g {
	case GzipOn:
		return true
	case GzipOff:
		return false
	}
	return strings.HasSuffix(path, ".dat")
}

// Chunk names one chunk of a region file by local coordinates.
type Chunk struct {
	X, Z int
}

// ParseChunk parses "x,z".
func ParseChunk(s string) (*Chunk, error) {
	var c Chunk
	if _, err := fmt.Sscanf(s, "%d,%d", &c.X, &c.Z); err != nil {
		return nil, fmt.Errorf("invalid chunk %q: want x,z", s)
	}
	if c.X < 0 || c.X >= anvil.Edge || c.Z < 0 || c.Z >= anvil.Edge {
		return nil, fmt.Errorf("invalid chunk %q: coordinates must be in [0,%d]", s, anvil.Edge-1)
	}
	return &c, nil
}

// Dumper prints files through a Printer.
type Dumper struct {
	Printer
	Gzip         Gzip
	LittleEndian bool
	// Chunk restricts region files to one chunk.
	Chunk *Chunk
	// ChunkCoords prefixes every region chunk with "x,z,".
	ChunkCoords bool
	// OutputDir, when set, receives one output file per input, named like the input.
	OutputDir string
}

func (d *Dumper) order() binary.ByteOrder {
	if d.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// DumpFiles prints every file in turn to w, or to OutputDir. Missing files and empty
// region files are reported and skipped.
func (d *Dumper) DumpFiles(w io.Writer, paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			pterm.Warning.Printfln("File not found: %s", path)
			continue
		}
		if err := d.dumpTo(w, path); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dumper) dumpTo(w io.Writer, path string) (err error) {
	if d.OutputDir == "" {
		return d.DumpFile(w, path)
	}
	out, err := os.Create(filepath.Join(d.OutputDir, filepath.Base(path)))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()
	return d.DumpFile(out, path)
}

// DumpFile prints one file: every present chunk of a .mca region file, otherwise the
// single tag tree the file holds. A .zst suffix is zstd-decompressed first and the rest
// of the name decides the format.
func (d *Dumper) DumpFile(w io.Writer, path string) error {
	name, archived := strings.CutSuffix(path, ".zst")
	if strings.HasSuffix(name, ".mca") {
		if archived {
			return d.dumpArchivedRegion(w, path)
		}
		return d.dumpRegion(w, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	var r io.Reader = file
	if archived {
		zr, err := zstd.NewReader(file)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	if err = d.DumpStream(w, r, d.Gzip.enabled(name)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// DumpStream prints the single tag tree read from r.
func (d *Dumper) DumpStream(w io.Writer, r io.Reader, compressed bool) error {
	if compressed {
		stream, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer stream.Close()
		r = stream
	}
	_, root, err := nbt.NewDecoderWithOrder(r, d.order()).Decode()
	if err != nil {
		return err
	}
	_, err = d.Print(w, root, "")
	return err
}

func (d *Dumper) dumpRegion(w io.Writer, path string) error {
	reader, err := anvil.Open(path)
	if errors.Is(err, anvil.ErrEmptyRegion) {
		pterm.Warning.Printfln("%s: file is empty", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer reader.Close()
	return d.dumpChunks(w, reader)
}

// dumpArchivedRegion reads a zstd-compressed region file into memory.
func (d *Dumper) dumpArchivedRegion(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	zr, err := zstd.NewReader(file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	err = anvil.CheckLength(int64(len(data)))
	if errors.Is(err, anvil.ErrEmptyRegion) {
		pterm.Warning.Printfln("%s: file is empty", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	reader, err := anvil.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	reader.Name = path
	return d.dumpChunks(w, reader)
}

func (d *Dumper) dumpChunks(w io.Writer, reader *anvil.Reader) error {
	if d.Chunk != nil {
		chunk, err := reader.Chunk(d.Chunk.X, d.Chunk.Z)
		if err != nil {
			return fmt.Errorf("%s: chunk %d,%d: %w", reader.Name, d.Chunk.X, d.Chunk.Z, err)
		}
		_, err = d.Print(w, chunk, d.prefix(d.Chunk.X, d.Chunk.Z))
		return err
	}
	return reader.Scan(func(x, z int, chunk nbt.Value) error {
		_, err := d.Print(w, chunk, d.prefix(x, z))
		return err
	})
}

func (d *Dumper) prefix(x, z int) string {
	if !d.ChunkCoords {
		return ""
	}
	return fmt.Sprintf("%d,%d,", x, z)
}
