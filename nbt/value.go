package nbt

// Value is one node of a decoded tag tree. The set of implementations is closed:
// Byte, Short, Int, Long, Float, Double, ByteArray, IntArray, LongArray, String,
// List and *Map. A nil Value is the null value, produced by lookups that find nothing.
//
// Values are built once by the decoder (or by hand in tests) and are not modified
// afterwards.
type Value interface {
	TagType() byte
	value()
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	IntArray  []int32
	LongArray []int64
	String    string
	List      []Value
)

func (Byte) TagType() byte      { return TagByte }
func (Short) TagType() byte     { return TagShort }
func (Int) TagType() byte       { return TagInt }
func (Long) TagType() byte      { return TagLong }
func (Float) TagType() byte     { return TagFloat }
func (Double) TagType() byte    { return TagDouble }
func (ByteArray) TagType() byte { return TagByteArray }
func (IntArray) TagType() byte  { return TagIntArray }
func (LongArray) TagType() byte { return TagLongArray }
func (String) TagType() byte    { return TagString }
func (List) TagType() byte      { return TagList }
func (*Map) TagType() byte      { return TagCompound }

func (Byte) value()      {}
func (Short) value()     {}
func (Int) value()       {}
func (Long) value()      {}
func (Float) value()     {}
func (Double) value()    {}
func (ByteArray) value() {}
func (IntArray) value()  {}
func (LongArray) value() {}
func (String) value()    {}
func (List) value()      {}
func (*Map) value()      {}

// TypeOf returns the tag type of v, TagEnd for null.
func TypeOf(v Value) byte {
	if v == nil {
		return TagEnd
	}
	return v.TagType()
}

// Map is a compound tag. Keys are unique and iterate in insertion order.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// MapOf builds a Map from alternating key/value pairs. It is meant for literals in
// tests and panics on a malformed argument list.
func MapOf(pairs ...interface{}) *Map {
	if len(pairs)%2 != 0 {
		panic("nbt: MapOf needs key/value pairs")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		var v Value
		if pairs[i+1] != nil {
			v = pairs[i+1].(Value)
		}
		m.Set(pairs[i].(string), v)
	}
	return m
}

// Set stores v under key. Re-setting a key keeps its original position.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Lookup returns the value stored under key, or nil.
func (m *Map) Lookup(key string) Value {
	return m.values[key]
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Each calls fn for every entry in insertion order until fn returns false.
func (m *Map) Each(fn func(key string, v Value) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Retain returns a new Map holding only the given keys that are present in m, in m's
// order.
func (m *Map) Retain(keys ...string) *Map {
	keep := make(map[string]bool, len(keys))
	for _, k := range keys {
		keep[k] = true
	}
	out := NewMap()
	for _, k := range m.keys {
		if keep[k] {
			out.Set(k, m.values[k])
		}
	}
	return out
}

// Compound returns the Map stored under key, if the entry exists and is a Map.
func (m *Map) Compound(key string) (*Map, bool) {
	sub, ok := m.values[key].(*Map)
	return sub, ok
}

// ToInt64 converts any integral value to int64.
func ToInt64(v Value) (int64, bool) {
	switch n := v.(type) {
	case Byte:
		return int64(n), true
	case Short:
		return int64(n), true
	case Int:
		return int64(n), true
	case Long:
		return int64(n), true
	}
	return 0, false
}

// ToFloat64 converts any numeric value to float64.
func ToFloat64(v Value) (float64, bool) {
	switch n := v.(type) {
	case Float:
		return float64(n), true
	case Double:
		return float64(n), true
	}
	i, ok := ToInt64(v)
	return float64(i), ok
}

// Elements returns the items of a sequence value (List or one of the typed arrays).
func Elements(v Value) ([]Value, bool) {
	switch s := v.(type) {
	case List:
		return s, true
	case ByteArray:
		out := make([]Value, len(s))
		for i, b := range s {
			out[i] = Byte(b)
		}
		return out, true
	case IntArray:
		out := make([]Value, len(s))
		for i, n := range s {
			out[i] = Int(n)
		}
		return out, true
	case LongArray:
		out := make([]Value, len(s))
		for i, n := range s {
			out[i] = Long(n)
		}
		return out, true
	}
	return nil, false
}

// IsEmpty reports whether v is null, an empty Map or an empty List.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *Map:
		return t.Len() == 0
	case List:
		return len(t) == 0
	}
	return false
}
