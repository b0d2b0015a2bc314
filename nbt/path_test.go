package nbt

import (
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	root := MapOf(
		"a", MapOf("b", Int(5)),
		"list", List{Int(10), Int(20)},
		"arr", IntArray{1, 2, 3},
		"name", String("x"),
	)

	tests := []struct {
		path     string
		expected Value
	}{
		{"a.b", Int(5)},
		{"list.1", Int(20)},
		{"list.0", Int(10)},
		{"missing", nil},
		{"missing.deeper.still", nil},
		{"a.b.c", nil},
		{"name.x", nil},
		{"arr.1", Int(2)},
		{"arr.1.x", nil},
	}
	for _, test := range tests {
		v, err := Evaluate(root, test.path)
		if err != nil {
			t.Errorf("Evaluate(%q) failed: %v", test.path, err)
			continue
		}
		if !Equals(v, test.expected) || TypeOf(v) != TypeOf(test.expected) {
			t.Errorf("Evaluate(%q) expected %#v but got %#v", test.path, test.expected, v)
		}
	}
}

func TestEvaluateEmptyPathReturnsRoot(t *testing.T) {
	root := MapOf("a", Int(1))
	v, err := Evaluate(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if v != Value(root) {
		t.Errorf("empty path returned %#v, not the root", v)
	}
}

func TestEvaluateBadIndex(t *testing.T) {
	root := MapOf("a", List{Int(1)}, "b", LongArray{7})
	for _, path := range []string{"a.5", "a.-1", "a.x", "a.", "b.1"} {
		_, err := Evaluate(root, path)
		if !errors.Is(err, ErrBadIndex) {
			t.Errorf("Evaluate(%q) error was %v, expected ErrBadIndex", path, err)
		}
	}
}

func TestMatch(t *testing.T) {
	root := MapOf(
		"Status", String("minecraft:full"),
		"xPos", Int(3),
		"pos", IntArray{1, 2, 3},
		"tags", MapOf("b", Byte(1), "a", Short(2)),
	)
	cond := func(path string, c Comparison, literal string) Condition {
		t.Helper()
		cd, err := NewCondition(path, c, literal)
		if err != nil {
			t.Fatal(err)
		}
		return cd
	}

	tests := []struct {
		name       string
		conditions []Condition
		expected   bool
	}{
		{"none", nil, true},
		{"string equal", []Condition{cond("Status", Equal, `"minecraft:full"`)}, true},
		{"int equals json number", []Condition{cond("xPos", Equal, `3`)}, true},
		{"int equals float literal", []Condition{cond("xPos", Equal, `3.0`)}, true},
		{"array equals list", []Condition{cond("pos", Equal, `[1,2,3]`)}, true},
		{"map order ignored", []Condition{cond("tags", Equal, `{"a":2,"b":1}`)}, true},
		{"missing equals null", []Condition{cond("nope", Equal, `null`)}, true},
		{"not equal", []Condition{cond("xPos", NotEqual, `4`)}, true},
		{"and combined", []Condition{cond("xPos", Equal, `3`), cond("Status", Equal, `"other"`)}, false},
	}
	for _, test := range tests {
		ok, err := Match(root, test.conditions)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if ok != test.expected {
			t.Errorf("%s: expected %v but got %v", test.name, test.expected, ok)
		}
	}
}

func TestMatchPropagatesIndexError(t *testing.T) {
	root := MapOf("a", List{Int(1)})
	c, err := NewCondition("a.9", Equal, "1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Match(root, []Condition{c}); !errors.Is(err, ErrBadIndex) {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
}

func TestParseLiteralRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "{", "1 2", "tru"} {
		if _, err := ParseLiteral(s); !errors.Is(err, ErrBadLiteral) {
			t.Errorf("ParseLiteral(%q) error was %v", s, err)
		}
	}
}
