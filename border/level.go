package border

import (
	"fmt"
	"math"
	"os"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
)

// Level holds the fields of level.dat the border tools read. Everything else in the
// file is ignored.
type Level struct {
	Data LevelData `nbt:"Data"`
}

type LevelData struct {
	LevelName     string  `nbt:"LevelName"`
	BorderCenterX float64 `nbt:"BorderCenterX"`
	BorderCenterZ float64 `nbt:"BorderCenterZ"`
	BorderSize    float64 `nbt:"BorderSize"`
}

// Border returns the configured world border.
func (l *Level) Border() Border {
	return Border{
		CenterX: l.Data.BorderCenterX,
		CenterZ: l.Data.BorderCenterZ,
		Size:    l.Data.BorderSize,
	}
}

// ReadLevel decodes a gzip-compressed level.dat.
func ReadLevel(path string) (*Level, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stream, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer stream.Close()

	level := &Level{}
	level.Data.BorderSize = math.NaN()
	if _, err = nbt.NewDecoder(stream).Decode(level); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if math.IsNaN(level.Data.BorderSize) {
		return nil, fmt.Errorf("%s: %w: Data.BorderSize missing", path, ErrBorderUnset)
	}
	return level, nil
}
