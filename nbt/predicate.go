package nbt

import "fmt"

type Comparison int

const (
	Equal Comparison = iota
	NotEqual
)

func (c Comparison) String() string {
	switch c {
	case Equal:
		return "EQUAL"
	case NotEqual:
		return "NOT_EQUAL"
	}
	return fmt.Sprintf("Comparison(%d)", int(c))
}

// Condition compares the value found at Path with Literal.
type Condition struct {
	Path       string
	Comparison Comparison
	Literal    Value
}

// NewCondition parses literal as JSON and returns the condition.
func NewCondition(path string, comparison Comparison, literal string) (Condition, error) {
	v, err := ParseLiteral(literal)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Path: path, Comparison: comparison, Literal: v}, nil
}

// Test evaluates the condition against root.
func (c Condition) Test(root Value) (bool, error) {
	v, err := Evaluate(root, c.Path)
	if err != nil {
		return false, err
	}
	switch c.Comparison {
	case Equal:
		return Equals(c.Literal, v), nil
	case NotEqual:
		return !Equals(c.Literal, v), nil
	}
	panic(fmt.Sprintf("nbt: unknown comparison %v", c.Comparison))
}

// Match reports whether root satisfies every condition, stopping at the first one
// that fails.
func Match(root Value, conditions []Condition) (bool, error) {
	for _, c := range conditions {
		ok, err := c.Test(root)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Equals compares two values structurally. Numbers compare by value whatever their
// width, sequences element by element (an IntArray equals a List of the same numbers)
// and maps key by key regardless of order.
func Equals(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := ToInt64(a); ok {
		if bi, ok := ToInt64(b); ok {
			return ai == bi
		}
	}
	if af, ok := ToFloat64(a); ok {
		bf, ok := ToFloat64(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			other, ok := bv.Get(k)
			if !ok || !Equals(av.values[k], other) {
				return false
			}
		}
		return true
	}
	as, ok := Elements(a)
	if !ok {
		return false
	}
	bs, ok := Elements(b)
	if !ok || len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equals(as[i], bs[i]) {
			return false
		}
	}
	return true
}
