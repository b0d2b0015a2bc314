package anvil

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	SectorSize = 4096
	// HeaderSize covers the location table and the timestamp table.
	HeaderSize = 2 * SectorSize
	Edge       = 32
	MaxChunks  = Edge * Edge

	maxSectorOffset = 1<<24 - 1
)

// Location is one entry of the location table: a 24-bit sector offset followed by an
// 8-bit sector count. The zero Location means the chunk is absent.
type Location uint32

// NewLocation packs a sector offset and count. It panics if offset does not fit in
// 24 bits.
func NewLocation(offset uint32, count uint8) Location {
	if offset > maxSectorOffset {
		panic(fmt.Sprintf("anvil: sector offset %d exceeds 24 bits", offset))
	}
	return Location(offset<<8 | uint32(count))
}

func (l Location) Offset() uint32 {
	return uint32(l>>8) & maxSectorOffset
}

func (l Location) Count() uint8 {
	return uint8(l & 0xff)
}

// Present reports whether the entry points at a chunk. Word 0 means absent, never
// "offset 0".
func (l Location) Present() bool {
	return l != 0
}

// Valid reports whether a present entry points past the two header sectors.
func (l Location) Valid() bool {
	return l.Offset() >= 2
}

func (l Location) String() string {
	if !l.Present() {
		return "absent"
	}
	return fmt.Sprintf("sector %d+%d", l.Offset(), l.Count())
}

func checkLocal(x, z int) {
	if x < 0 || x >= Edge || z < 0 || z >= Edge {
		panic(fmt.Sprintf("anvil: local chunk coordinate %d,%d outside [0,31]", x, z))
	}
}

// LocationOffset returns the byte offset of the location entry for local chunk x,z.
// Coordinates outside [0,31] are a programming error and panic.
func LocationOffset(x, z int) int64 {
	checkLocal(x, z)
	return 4 * int64(x+z*Edge)
}

// TimestampOffset returns the byte offset of the timestamp entry for local chunk x,z.
func TimestampOffset(x, z int) int64 {
	checkLocal(x, z)
	return SectorSize + 4*int64(x+z*Edge)
}

// DecodeLocation reads the location entry for x,z from a header table holding at
// least the first sector of a region file.
func DecodeLocation(table []byte, x, z int) Location {
	off := LocationOffset(x, z)
	return Location(binary.BigEndian.Uint32(table[off : off+4]))
}

// DecodeTimestamp reads the timestamp entry for x,z from a full 8 KiB header.
func DecodeTimestamp(table []byte, x, z int) uint32 {
	off := TimestampOffset(x, z)
	return binary.BigEndian.Uint32(table[off : off+4])
}

// Header is the decoded 8 KiB region header, indexed by x+32*z.
type Header struct {
	Locations  [MaxChunks]Location
	Timestamps [MaxChunks]uint32
}

// ParseHeader decodes the first HeaderSize bytes of b.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrInvalidLength, HeaderSize, len(b))
	}
	h := new(Header)
	for i := 0; i < MaxChunks; i++ {
		h.Locations[i] = Location(binary.BigEndian.Uint32(b[4*i:]))
		h.Timestamps[i] = binary.BigEndian.Uint32(b[SectorSize+4*i:])
	}
	return h, nil
}

// MarshalBinary encodes the header in its on-disk form.
func (h *Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	for i := 0; i < MaxChunks; i++ {
		binary.BigEndian.PutUint32(b[4*i:], uint32(h.Locations[i]))
		binary.BigEndian.PutUint32(b[SectorSize+4*i:], h.Timestamps[i])
	}
	return b, nil
}

func (h *Header) Location(x, z int) Location {
	checkLocal(x, z)
	return h.Locations[x+z*Edge]
}

func (h *Header) SetLocation(x, z int, l Location) {
	checkLocal(x, z)
	h.Locations[x+z*Edge] = l
}

// Timestamp returns the last-write time of local chunk x,z.
func (h *Header) Timestamp(x, z int) time.Time {
	checkLocal(x, z)
	return time.UnixMilli(1000 * int64(h.Timestamps[x+z*Edge]))
}

func (h *Header) SetTimestamp(x, z int, seconds uint32) {
	checkLocal(x, z)
	h.Timestamps[x+z*Edge] = seconds
}

// Present counts the chunks the header points at.
func (h *Header) Present() int {
	n := 0
	for _, l := range h.Locations {
		if l.Present() {
			n++
		}
	}
	return n
}
