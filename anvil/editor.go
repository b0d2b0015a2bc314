package anvil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Editor opens a region file read-write to erase chunk entries in place.
type Editor struct {
	*Reader
	file *os.File
}

// OpenEditor opens a region file for in-place header edits. It applies the same name
// and length checks as Open.
func OpenEditor(path string) (*Editor, error) {
	x, z, err := ParseFilename(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if err = checkLength(file); err != nil {
		file.Close()
		return nil, err
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reader.X, reader.Z = x, z
	return &Editor{Reader: reader, file: file}, nil
}

var zeroWord [4]byte

// Erase zeroes the location and timestamp entries of local chunk x,z. The payload
// sectors are left in place and become unreferenced.
func (e *Editor) Erase(x, z int) error {
	if _, err := e.file.WriteAt(zeroWord[:], LocationOffset(x, z)); err != nil {
		return fmt.Errorf("%s: erase chunk %d,%d: %w", e.Name, x, z, err)
	}
	if _, err := e.file.WriteAt(zeroWord[:], TimestampOffset(x, z)); err != nil {
		return fmt.Errorf("%s: erase chunk %d,%d: %w", e.Name, x, z, err)
	}
	e.header.SetLocation(x, z, 0)
	e.header.SetTimestamp(x, z, 0)
	return nil
}

// Close flushes the edits to stable storage and closes the file.
func (e *Editor) Close() error {
	syncErr := e.file.Sync()
	closeErr := e.file.Close()
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
