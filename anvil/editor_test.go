package anvil_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/astei/anvilscan/anvil"
	"github.com/astei/anvilscan/anvil/anviltest"
)

func TestEraseZeroesBothEntries(t *testing.T) {
	dir := t.TempDir()
	path := anviltest.WriteRegion(t, dir, 0, 0, anviltest.NewRegion().
		Add(0, 0, chunkAt(0, 0)).
		Add(1, 0, chunkAt(1, 0)).
		Add(31, 31, chunkAt(31, 31)))
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	editor, err := anvil.OpenEditor(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := editor.Erase(1, 0); err != nil {
		t.Fatal(err)
	}
	if editor.Header().Location(1, 0).Present() {
		t.Errorf("erased chunk still present in the in-memory header")
	}
	if err := editor.Close(); err != nil {
		t.Fatal(err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("file length changed from %d to %d", len(before), len(after))
	}
	loc, ts := anvil.LocationOffset(1, 0), anvil.TimestampOffset(1, 0)
	for i := range after {
		inLoc := int64(i) >= loc && int64(i) < loc+4
		inTs := int64(i) >= ts && int64(i) < ts+4
		switch {
		case inLoc || inTs:
			if after[i] != 0 {
				t.Fatalf("byte %d was not zeroed", i)
			}
		case after[i] != before[i]:
			t.Fatalf("byte %d changed outside the erased entries", i)
		}
	}
	if !bytes.Equal(after[anvil.HeaderSize:], before[anvil.HeaderSize:]) {
		t.Errorf("payload sectors changed")
	}

	reader, err := anvil.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	if reader.Header().Present() != 2 {
		t.Errorf("expected 2 chunks left but got %d", reader.Header().Present())
	}
}
