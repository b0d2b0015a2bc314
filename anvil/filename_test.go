package anvil

import (
	"errors"
	"testing"
)

func TestParseFilename(t *testing.T) {
	type Test struct {
		name string
		x, z int
	}

	tests := []Test{
		{"r.0.0.mca", 0, 0},
		{"r.1.-2.mca", 1, -2},
		{"r.-1.0.mca", -1, 0},
		{"r.-33.17.mca", -33, 17},
	}

	for _, test := range tests {
		x, z, err := ParseFilename(test.name)
		if err != nil {
			t.Errorf("ParseFilename(%q) failed: %v", test.name, err)
			continue
		}
		if x != test.x || z != test.z {
			t.Errorf("ParseFilename(%q) expected (%d, %d) but got (%d, %d)", test.name, test.x, test.z, x, z)
		}
		if formatted := Filename(x, z); formatted != test.name {
			t.Errorf("Filename(%d, %d) expected %q but got %q", x, z, test.name, formatted)
		}
	}
}

func TestParseFilenameRejects(t *testing.T) {
	for _, name := range []string{
		"", "r.0.mca", "r.0.0.mcr", "r.a.0.mca", "r.0.b.mca", "x.0.0.mca", "r.0.0.0.mca", "r..0.mca",
	} {
		if _, _, err := ParseFilename(name); !errors.Is(err, ErrBadFilename) {
			t.Errorf("ParseFilename(%q) error was %v, expected ErrBadFilename", name, err)
		}
	}
}

func TestRegionOf(t *testing.T) {
	tests := []struct {
		chunk, region int
	}{
		{0, 0}, {31, 0}, {32, 1}, {-1, -1}, {-32, -1}, {-33, -2},
	}
	for _, test := range tests {
		if r := RegionOf(test.chunk); r != test.region {
			t.Errorf("RegionOf(%d) expected %d but got %d", test.chunk, test.region, r)
		}
	}
	if c := ChunkOf(-1, 5); c != -27 {
		t.Errorf("ChunkOf(-1, 5) expected -27 but got %d", c)
	}
}
