package structure

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	structuresBucket = []byte("structures")
	refsBucket       = []byte("struct_refs")
	biomesBucket     = []byte("biomes")
)

// boltRow is the value stored under a structure id. It mirrors the SQLite columns.
type boltRow struct {
	Type   string   `json:"type"`
	ChunkX int32    `json:"chunk_x"`
	ChunkZ int32    `json:"chunk_z"`
	Box    [6]int32 `json:"box"`
	JSON   string   `json:"json"`
}

// BoltStore keeps the index in a bbolt file. Structures are keyed by a sequence id;
// references are keys of region x, region z and structure id with empty values, so a
// prefix scan finds the structures of one cell; biomes are keyed by chunk x, chunk z
// and section y. A whole run is one write transaction.
type BoltStore struct {
	db *bbolt.DB
	tx *bbolt.Tx
}

// OpenBolt opens or creates the database at path and starts the run's transaction.
// With truncate set, the buckets of earlier runs are dropped inside that transaction.
func OpenBolt(path string, truncate bool) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout:      time.Second,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenBolt: %v", err)
	}
	tx, err := db.Begin(true)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenBolt: %v", err)
	}
	s := &BoltStore{db: db, tx: tx}
	for _, name := range [][]byte{structuresBucket, refsBucket, biomesBucket} {
		if truncate && tx.Bucket(name) != nil {
			if err = tx.DeleteBucket(name); err != nil {
				s.Close()
				return nil, fmt.Errorf("OpenBolt: truncate %s: %v", name, err)
			}
		}
		if _, err = tx.CreateBucketIfNotExists(name); err != nil {
			s.Close()
			return nil, fmt.Errorf("OpenBolt: %v", err)
		}
	}
	return s, nil
}

// sortable maps a signed coordinate onto a big-endian key that orders numerically.
func sortable(n int32) uint32 {
	return uint32(n) ^ 1<<31
}

func cellKey(c Cell) []byte {
	key := make([]byte, 8, 16)
	binary.BigEndian.PutUint32(key[0:], sortable(c.X))
	binary.BigEndian.PutUint32(key[4:], sortable(c.Z))
	return key
}

func idKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

func biomeKey(b *Biome) []byte {
	key := make([]byte, 12)
	binary.BigEndian.PutUint32(key[0:], sortable(b.ChunkX))
	binary.BigEndian.PutUint32(key[4:], sortable(b.ChunkZ))
	binary.BigEndian.PutUint32(key[8:], sortable(b.SectionY))
	return key
}

func (s *BoltStore) InsertStructure(rec *Record) (int64, error) {
	snapshot, err := rec.JSON()
	if err != nil {
		return 0, err
	}
	bucket := s.tx.Bucket(structuresBucket)
	id, err := bucket.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("insert structure: %w", err)
	}
	b := rec.Box
	value, err := json.Marshal(boltRow{
		Type:   rec.Type,
		ChunkX: rec.ChunkX,
		ChunkZ: rec.ChunkZ,
		Box:    [6]int32{b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ},
		JSON:   snapshot,
	})
	if err != nil {
		return 0, err
	}
	if err = bucket.Put(idKey(id), value); err != nil {
		return 0, fmt.Errorf("insert structure: %w", err)
	}
	return int64(id), nil
}

func (s *BoltStore) InsertReferences(id int64, cells []Cell) error {
	bucket := s.tx.Bucket(refsBucket)
	for _, c := range cells {
		key := append(cellKey(c), idKey(uint64(id))...)
		if err := bucket.Put(key, []byte{}); err != nil {
			return fmt.Errorf("insert references of %d: %w", id, err)
		}
	}
	return nil
}

func (s *BoltStore) InsertBiomes(biomes []Biome) error {
	bucket := s.tx.Bucket(biomesBucket)
	for i := range biomes {
		raw, err := biomes[i].JSON()
		if err != nil {
			return err
		}
		if err = bucket.Put(biomeKey(&biomes[i]), []byte(raw)); err != nil {
			return fmt.Errorf("insert biomes: %w", err)
		}
	}
	return nil
}

func (s *BoltStore) Commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

func (s *BoltStore) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *BoltStore) Close() error {
	rollbackErr := s.Rollback()
	closeErr := s.db.Close()
	if rollbackErr != nil {
		return rollbackErr
	}
	return closeErr
}

func decodeRow(id uint64, value []byte) (Stored, error) {
	var row boltRow
	if err := json.Unmarshal(value, &row); err != nil {
		return Stored{}, fmt.Errorf("structure %d: %w", id, err)
	}
	snapshot, err := parseSnapshot(row.JSON)
	if err != nil {
		return Stored{}, fmt.Errorf("structure %d: %w", id, err)
	}
	return Stored{
		ID: int64(id),
		Record: Record{
			Type:     row.Type,
			ChunkX:   row.ChunkX,
			ChunkZ:   row.ChunkZ,
			Box:      Box{row.Box[0], row.Box[1], row.Box[2], row.Box[3], row.Box[4], row.Box[5]},
			Snapshot: snapshot,
		},
	}, nil
}

func (s *BoltStore) Structures() (out []Stored, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(structuresBucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			st, err := decodeRow(binary.BigEndian.Uint64(k), v)
			if err != nil {
				return err
			}
			out = append(out, st)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) StructuresAt(c Cell) (out []Stored, err error) {
	prefix := cellKey(c)
	err = s.db.View(func(tx *bbolt.Tx) error {
		structures, refs := tx.Bucket(structuresBucket), tx.Bucket(refsBucket)
		if structures == nil || refs == nil {
			return nil
		}
		cursor := refs.Cursor()
		for k, _ := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cursor.Next() {
			id := binary.BigEndian.Uint64(k[len(prefix):])
			value := structures.Get(idKey(id))
			if value == nil {
				return fmt.Errorf("reference to missing structure %d", id)
			}
			st, err := decodeRow(id, value)
			if err != nil {
				return err
			}
			out = append(out, st)
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) Biomes() (out []Biome, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(biomesBucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			b := Biome{
				ChunkX:   int32(binary.BigEndian.Uint32(k[0:]) ^ 1<<31),
				ChunkZ:   int32(binary.BigEndian.Uint32(k[4:]) ^ 1<<31),
				SectionY: int32(binary.BigEndian.Uint32(k[8:]) ^ 1<<31),
			}
			var err error
			if b.Biomes, err = parseSnapshot(string(v)); err != nil {
				return err
			}
			out = append(out, b)
			return nil
		})
	})
	return out, err
}
