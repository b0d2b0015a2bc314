package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Encoder writes tag trees in the binary format read by Decoder.
type Encoder struct {
	w     io.Writer
	order binary.ByteOrder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, order: binary.BigEndian}
}

func NewEncoderWithOrder(w io.Writer, order binary.ByteOrder) *Encoder {
	return &Encoder{w: w, order: order}
}

// Encode writes v as a named root tag.
func (e *Encoder) Encode(name string, v Value) error {
	if v == nil {
		return errors.New("nbt: cannot encode a null root")
	}
	if err := e.writeTag(v.TagType(), name); err != nil {
		return err
	}
	return e.marshal(v)
}

func (e *Encoder) marshal(v Value) error {
	switch t := v.(type) {
	case Byte:
		_, err := e.w.Write([]byte{byte(t)})
		return err
	case Short:
		return e.writeInt16(int16(t))
	case Int:
		return e.writeInt32(int32(t))
	case Long:
		return e.writeInt64(int64(t))
	case Float:
		return e.writeInt32(int32(math.Float32bits(float32(t))))
	case Double:
		return e.writeInt64(int64(math.Float64bits(float64(t))))
	case String:
		return e.writeString(string(t))

	case ByteArray:
		if err := e.writeInt32(int32(len(t))); err != nil {
			return err
		}
		raw := make([]byte, len(t))
		for i, b := range t {
			raw[i] = byte(b)
		}
		_, err := e.w.Write(raw)
		return err

	case IntArray:
		if err := e.writeInt32(int32(len(t))); err != nil {
			return err
		}
		for _, n := range t {
			if err := e.writeInt32(n); err != nil {
				return err
			}
		}
		return nil

	case LongArray:
		if err := e.writeInt32(int32(len(t))); err != nil {
			return err
		}
		for _, n := range t {
			if err := e.writeInt64(n); err != nil {
				return err
			}
		}
		return nil

	case List:
		elemType := TagEnd
		for i, item := range t {
			if item == nil {
				return fmt.Errorf("nbt: null element %d in list", i)
			}
			if i == 0 {
				elemType = item.TagType()
			} else if item.TagType() != elemType {
				return fmt.Errorf("nbt: mixed types in list: found %s and %s",
					TagName(item.TagType()), TagName(elemType))
			}
		}
		if _, err := e.w.Write([]byte{elemType}); err != nil {
			return err
		}
		if err := e.writeInt32(int32(len(t))); err != nil {
			return err
		}
		for _, item := range t {
			if err := e.marshal(item); err != nil {
				return err
			}
		}
		return nil

	case *Map:
		for _, k := range t.keys {
			child := t.values[k]
			if child == nil {
				continue
			}
			if err := e.writeTag(child.TagType(), k); err != nil {
				return err
			}
			if err := e.marshal(child); err != nil {
				return err
			}
		}
		_, err := e.w.Write([]byte{TagEnd})
		return err
	}
	return fmt.Errorf("nbt: unknown value type %T", v)
}

func (e *Encoder) writeTag(tagType byte, tagName string) error {
	if _, err := e.w.Write([]byte{tagType}); err != nil {
		return err
	}
	return e.writeString(tagName)
}

func (e *Encoder) writeString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("nbt: string of %d bytes is too long", len(s))
	}
	if err := e.writeInt16(int16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *Encoder) writeInt16(n int16) error {
	var b [2]byte
	e.order.PutUint16(b[:], uint16(n))
	_, err := e.w.Write(b[:])
	return err
}

func (e *Encoder) writeInt32(n int32) error {
	var b [4]byte
	e.order.PutUint32(b[:], uint32(n))
	_, err := e.w.Write(b[:])
	return err
}

func (e *Encoder) writeInt64(n int64) error {
	var b [8]byte
	e.order.PutUint64(b[:], uint64(n))
	_, err := e.w.Write(b[:])
	return err
}
