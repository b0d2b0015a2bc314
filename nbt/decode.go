package nbt

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	maxDepth       = 512
	maxArrayLength = 1 << 24
)

var ErrMalformed = errors.New("nbt: malformed tag data")

type byteReader interface {
	io.Reader
	io.ByteReader
}

// Decoder reads tag trees from a binary stream.
type Decoder struct {
	r     byteReader
	order binary.ByteOrder
	buf   [8]byte
}

// NewDecoder returns a big-endian decoder, the byte order used by region files and
// level.dat.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderWithOrder(r, binary.BigEndian)
}

// NewDecoderWithOrder returns a decoder using the given byte order.
func NewDecoderWithOrder(r io.Reader, order binary.ByteOrder) *Decoder {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br, order: order}
}

// Decode reads one named root tag and returns its name and value.
func (d *Decoder) Decode() (name string, v Value, err error) {
	tagType, err := d.r.ReadByte()
	if err != nil {
		return "", nil, err
	}
	if tagType == TagEnd {
		return "", nil, fmt.Errorf("%w: root tag is End", ErrMalformed)
	}
	if name, err = d.readString(); err != nil {
		return "", nil, err
	}
	v, err = d.readPayload(tagType, 0)
	return
}

// Decode reads a single big-endian tag tree from r, discarding the root name.
func Decode(r io.Reader) (Value, error) {
	_, v, err := NewDecoder(r).Decode()
	return v, err
}

func (d *Decoder) readPayload(tagType byte, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrMalformed, maxDepth)
	}
	switch tagType {
	case TagByte:
		b, err := d.r.ReadByte()
		return Byte(int8(b)), err
	case TagShort:
		n, err := d.readUint16()
		return Short(int16(n)), err
	case TagInt:
		n, err := d.readUint32()
		return Int(int32(n)), err
	case TagLong:
		n, err := d.readUint64()
		return Long(int64(n)), err
	case TagFloat:
		n, err := d.readUint32()
		return Float(math.Float32frombits(n)), err
	case TagDouble:
		n, err := d.readUint64()
		return Double(math.Float64frombits(n)), err
	case TagString:
		s, err := d.readString()
		return String(s), err

	case TagByteArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		raw := make([]byte, n)
		if _, err = io.ReadFull(d.r, raw); err != nil {
			return nil, err
		}
		arr := make(ByteArray, n)
		for i, b := range raw {
			arr[i] = int8(b)
		}
		return arr, nil

	case TagIntArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		arr := make(IntArray, n)
		for i := range arr {
			v, err := d.readUint32()
			if err != nil {
				return nil, err
			}
			arr[i] = int32(v)
		}
		return arr, nil

	case TagLongArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		arr := make(LongArray, n)
		for i := range arr {
			v, err := d.readUint64()
			if err != nil {
				return nil, err
			}
			arr[i] = int64(v)
		}
		return arr, nil

	case TagList:
		elemType, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		if n > 0 && elemType == TagEnd {
			return nil, fmt.Errorf("%w: list of %d End tags", ErrMalformed, n)
		}
		list := make(List, 0, min(n, 1024))
		for i := 0; i < n; i++ {
			v, err := d.readPayload(elemType, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil

	case TagCompound:
		m := NewMap()
		for {
			childType, err := d.r.ReadByte()
			if err != nil {
				return nil, err
			}
			if childType == TagEnd {
				return m, nil
			}
			name, err := d.readString()
			if err != nil {
				return nil, err
			}
			v, err := d.readPayload(childType, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			m.Set(name, v)
		}
	}
	return nil, fmt.Errorf("%w: unknown tag type %d", ErrMalformed, tagType)
}

func (d *Decoder) readLength() (int, error) {
	n, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	length := int32(n)
	if length < 0 {
		// An empty list may be written with a negative length.
		return 0, nil
	}
	if length > maxArrayLength {
		return 0, fmt.Errorf("%w: length %d", ErrMalformed, length)
	}
	return int(length), nil
}

func (d *Decoder) readString() (string, error) {
	n, err := d.readUint16()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err = io.ReadFull(d.r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) readUint16() (uint16, error) {
	if _, err := io.ReadFull(d.r, d.buf[:2]); err != nil {
		return 0, err
	}
	return d.order.Uint16(d.buf[:2]), nil
}

func (d *Decoder) readUint32() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.buf[:4]); err != nil {
		return 0, err
	}
	return d.order.Uint32(d.buf[:4]), nil
}

func (d *Decoder) readUint64() (uint64, error) {
	if _, err := io.ReadFull(d.r, d.buf[:8]); err != nil {
		return 0, err
	}
	return d.order.Uint64(d.buf[:8]), nil
}
