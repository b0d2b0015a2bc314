package nbt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func chunkLike() *Map {
	return MapOf(
		"xPos", Int(-3),
		"zPos", Int(7),
		"Status", String("minecraft:full"),
		"LastUpdate", Long(1234567890123),
		"light", Float(0.5),
		"scale", Double(math.Pi),
		"flag", Byte(-1),
		"y", Short(-64),
		"raw", ByteArray{-1, 0, 1},
		"BB", IntArray{0, -64, 0, 15, 320, 15},
		"data", LongArray{1 << 40, -2},
		"sections", List{
			MapOf("Y", Byte(-4)),
			MapOf("Y", Byte(-3)),
		},
		"empty", List{},
	)
}

func TestEncodeDecodeTree(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		var buf bytes.Buffer
		if err := NewEncoderWithOrder(&buf, order).Encode("root", chunkLike()); err != nil {
			t.Fatal(err)
		}
		name, v, err := NewDecoderWithOrder(&buf, order).Decode()
		if err != nil {
			t.Fatalf("%v: %v", order, err)
		}
		if name != "root" {
			t.Errorf("%v: name was %q", order, name)
		}
		got, _ := MarshalJSON(v)
		want, _ := MarshalJSON(chunkLike())
		if diff := cmp.Diff(string(want), string(got)); diff != "" {
			t.Errorf("%v: tree mismatch (-want +got):\n%s", order, diff)
		}
	}
}

func TestDecodePreservesKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	m := MapOf("z", Int(1), "a", Int(2), "m", Int(3))
	if err := NewEncoder(&buf).Encode("", m); err != nil {
		t.Fatal(err)
	}
	v, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, v.(*Map).Keys()); diff != "" {
		t.Errorf("key order (-want +got):\n%s", diff)
	}
}

func TestDecodeKnownBytes(t *testing.T) {
	// Compound "" { Int "xPos" = 13, End }
	b := []byte{10, 0, 0, 3, 0, 4, 'x', 'P', 'o', 's', 0, 0, 0, 13, 0}
	v, err := Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if got := v.(*Map).Lookup("xPos"); got != Int(13) {
		t.Errorf("xPos was %#v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"end root", []byte{0}},
		{"unknown tag", []byte{10, 0, 0, 42, 0, 1, 'a'}},
		{"truncated", []byte{10, 0, 0, 3, 0, 4, 'x', 'P'}},
		{"huge array", []byte{7, 0, 0, 0x7f, 0xff, 0xff, 0xff}},
	}
	for _, test := range tests {
		if _, err := Decode(bytes.NewReader(test.input)); err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
	if _, err := Decode(bytes.NewReader([]byte{10, 0, 0, 42, 0, 1, 'a'})); !errors.Is(err, ErrMalformed) {
		t.Errorf("unknown tag error was %v", err)
	}
}

func TestEncodeRejectsMixedList(t *testing.T) {
	var buf bytes.Buffer
	err := NewEncoder(&buf).Encode("", MapOf("l", List{Int(1), String("x")}))
	if err == nil {
		t.Error("expected mixed list error")
	}
}

func TestMarshalJSON(t *testing.T) {
	m := MapOf(
		"id", String("minecraft:village<>"),
		"BB", IntArray{1, 2},
		"none", nil,
		"nan", Double(math.NaN()),
		"nested", List{MapOf("b", Byte(1), "a", Long(2))},
	)
	got, err := MarshalJSON(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"minecraft:village<>","BB":[1,2],"none":null,"nan":null,"nested":[{"b":1,"a":2}]}`
	if string(got) != want {
		t.Errorf("got %s\nwant %s", got, want)
	}

	pretty, err := MarshalJSONIndent(MapOf("a", Int(1)))
	if err != nil {
		t.Fatal(err)
	}
	if string(pretty) != "{\n  \"a\": 1\n}" {
		t.Errorf("indented output was %q", pretty)
	}
}

func TestParseLiteralKeepsOrderAndTypes(t *testing.T) {
	v, err := ParseLiteral(`{"b":[1,2.5,true,null],"a":"s"}`)
	if err != nil {
		t.Fatal(err)
	}
	m := v.(*Map)
	if diff := cmp.Diff([]string{"b", "a"}, m.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	list := m.Lookup("b").(List)
	if list[0] != Long(1) || list[1] != Double(2.5) || list[2] != Byte(1) || list[3] != nil {
		t.Errorf("list was %#v", list)
	}
}
