package anvil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/astei/anvilscan/nbt"
	"github.com/pterm/pterm"
)

var (
	ErrNoChunk            = errors.New("anvil: chunk not found")
	ErrEmptyRegion        = errors.New("anvil: region file is empty")
	ErrInvalidLength      = errors.New("anvil: invalid region file length")
	ErrInvalidChunkLength = errors.New("anvil: invalid chunk length")
)

// Reader reads chunks out of one region file. The reader is not safe for concurrent
// access.
type Reader struct {
	source io.ReadSeeker
	header *Header
	size   int64

	Name string
	// X and Z are the region coordinates, known when the reader was opened by path.
	X, Z int
}

// NewReader reads the header of a region held by source. The ownership of the source
// is transferred to this reader.
func NewReader(source io.ReadSeeker) (reader *Reader, err error) {
	reader = &Reader{source: source}
	if file, ok := source.(*os.File); ok {
		reader.Name = file.Name()
	}
	if reader.size, err = source.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}
	if err = reader.readHeader(); err != nil {
		return nil, err
	}
	return reader, nil
}

// Open opens a region file read-only. The file name must be r.<x>.<z>.mca. A
// zero-length file returns ErrEmptyRegion without being parsed; a length that is not a
// whole number of sectors covering the header returns ErrInvalidLength.
func Open(path string) (*Reader, error) {
	x, z, err := ParseFilename(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if err = checkLength(file); err != nil {
		file.Close()
		return nil, err
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reader.X, reader.Z = x, z
	return reader, nil
}

func checkLength(file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	if err = CheckLength(info.Size()); err != nil {
		return fmt.Errorf("%s: %w", file.Name(), err)
	}
	return nil
}

// CheckLength validates the byte length of a region file: ErrEmptyRegion for zero,
// ErrInvalidLength unless it is a whole number of sectors covering the header.
func CheckLength(size int64) error {
	if size == 0 {
		return ErrEmptyRegion
	}
	if size%SectorSize != 0 || size < HeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidLength, size)
	}
	return nil
}

func (r *Reader) readHeader() error {
	if _, err := r.source.Seek(0, io.SeekStart); err != nil {
		return err
	}
	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r.source, raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: header truncated", ErrInvalidLength)
		}
		return err
	}
	h, err := ParseHeader(raw)
	if err != nil {
		return err
	}
	r.header = h
	return nil
}

func (r *Reader) Header() *Header {
	return r.header
}

// Size returns the length of the region file in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// ReadChunk decodes the chunk stored at sectorOffset. A payload cut short by the end
// of the file is reported as no chunk: nil value and nil error.
func (r *Reader) ReadChunk(sectorOffset uint32) (nbt.Value, error) {
	if _, err := r.source.Seek(int64(sectorOffset)*SectorSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}

	var payloadInfo struct {
		Length      uint32
		Compression Compression
	}
	if err := binary.Read(r.source, binary.BigEndian, &payloadInfo); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read payload header: %w", err)
	}
	if payloadInfo.Length < 1 {
		return nil, ErrInvalidChunkLength
	}

	// Copying instead of allocating Length up front keeps a corrupt length from
	// allocating more than the file holds.
	want := int64(payloadInfo.Length) - 1
	var payload bytes.Buffer
	n, err := io.CopyN(&payload, r.source, want)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not read payload data: %w", err)
	}
	if n < want {
		return nil, nil
	}

	chunkStream, err := payloadInfo.Compression.NewReader(&payload)
	if err != nil {
		return nil, fmt.Errorf("could not open %v payload: %w", payloadInfo.Compression, err)
	}
	defer chunkStream.Close()

	v, err := nbt.Decode(chunkStream)
	if err != nil {
		return nil, fmt.Errorf("could not decode chunk: %w", err)
	}
	return v, nil
}

// Chunk reads the chunk at local coordinates x,z. It returns ErrNoChunk when the
// header has no entry for it.
func (r *Reader) Chunk(x, z int) (nbt.Value, error) {
	location := r.header.Location(x, z)
	if !location.Present() {
		return nil, ErrNoChunk
	}
	if !location.Valid() {
		return nil, fmt.Errorf("chunk %d,%d: location %v points into the header", x, z, location)
	}
	return r.ReadChunk(location.Offset())
}

// ChunkFunc receives every chunk a scan decodes, with its local coordinates.
type ChunkFunc func(x, z int, chunk nbt.Value) error

// Scan decodes every present chunk, local z outer and local x inner. A chunk that
// cannot be read or decoded is reported and skipped; an error from fn stops the scan
// and is returned.
func (r *Reader) Scan(fn ChunkFunc) error {
	for z := 0; z < Edge; z++ {
		for x := 0; x < Edge; x++ {
			if !r.header.Location(x, z).Present() {
				continue
			}
			chunk, err := r.Chunk(x, z)
			if err != nil {
				pterm.Warning.Printfln("%s: skipping chunk %d,%d: %v", r.Name, x, z, err)
				continue
			}
			if chunk == nil {
				pterm.Warning.Printfln("%s: skipping chunk %d,%d: payload truncated", r.Name, x, z)
				continue
			}
			if err = fn(x, z, chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Reader) Close() error {
	if closer, ok := r.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
