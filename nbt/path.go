package nbt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadIndex = errors.New("nbt: bad list index")

// Evaluate walks root along a dot-separated path. Map components are looked up
// verbatim and a missing key yields nil. List and array components must be base-10
// indexes in range; anything else is an error rather than nil. Stepping into a scalar
// or nil yields nil. The empty path returns root.
func Evaluate(root Value, path string) (Value, error) {
	if path == "" {
		return root, nil
	}
	current := root
	for _, component := range strings.Split(path, ".") {
		switch v := current.(type) {
		case *Map:
			next, ok := v.Get(component)
			if !ok {
				return nil, nil
			}
			current = next
		case List, ByteArray, IntArray, LongArray:
			items, _ := Elements(v)
			index, err := strconv.Atoi(component)
			if err != nil {
				return nil, fmt.Errorf("%w %q in path %q", ErrBadIndex, component, path)
			}
			if index < 0 || index >= len(items) {
				return nil, fmt.Errorf("%w %d in path %q: list has %d elements", ErrBadIndex, index, path, len(items))
			}
			current = items[index]
		default:
			return nil, nil
		}
	}
	return current, nil
}
