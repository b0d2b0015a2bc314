package structure

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/astei/anvilscan/nbt"
	_ "modernc.org/sqlite"
)

var schema = []string{
	"CREATE TABLE IF NOT EXISTS `structures` (" +
		" `id` INTEGER PRIMARY KEY," +
		" `type` VARCHAR(255) NOT NULL," +
		" `chunk_x` INTEGER NOT NULL," +
		" `chunk_z` INTEGER NOT NULL," +
		" `ax` INTEGER NOT NULL," +
		" `ay` INTEGER NOT NULL," +
		" `az` INTEGER NOT NULL," +
		" `bx` INTEGER NOT NULL," +
		" `by` INTEGER NOT NULL," +
		" `bz` INTEGER NOT NULL," +
		" `json` TEXT NOT NULL" +
		")",
	"CREATE TABLE IF NOT EXISTS `struct_refs` (" +
		" `id` INTEGER PRIMARY KEY," +
		" `structure_id` INTEGER NOT NULL," +
		" `region_x` INTEGER NOT NULL," +
		" `region_z` INTEGER NOT NULL," +
		" UNIQUE(`region_x`, `region_z`, `structure_id`)" +
		")",
	"CREATE TABLE IF NOT EXISTS `biomes` (" +
		" `id` INTEGER PRIMARY KEY," +
		" `chunk_x` INTEGER NOT NULL," +
		" `chunk_y` INTEGER NOT NULL," +
		" `chunk_z` INTEGER NOT NULL," +
		" `json` TEXT NOT NULL," +
		" UNIQUE(`chunk_x`, `chunk_z`, `chunk_y`) ON CONFLICT REPLACE" +
		")",
}

const (
	insertStructureSQL = "INSERT INTO `structures`" +
		" (`type`, `chunk_x`, `chunk_z`, `ax`, `ay`, `az`, `bx`, `by`, `bz`, `json`)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	selectStructureSQL = "SELECT s.`id`, s.`type`, s.`chunk_x`, s.`chunk_z`," +
		" s.`ax`, s.`ay`, s.`az`, s.`bx`, s.`by`, s.`bz`, s.`json` FROM `structures` s"

	// Rows per multi-row INSERT, well below SQLite's bound variable limit.
	batchRows = 256
)

// SQLiteStore keeps the index in an SQLite database. A whole run is one transaction.
type SQLiteStore struct {
	db              *sql.DB
	tx              *sql.Tx
	insertStructure *sql.Stmt
}

// OpenSQLite opens or creates the database at path and starts the run's transaction.
// With truncate set, rows of earlier runs are deleted inside that transaction.
func OpenSQLite(path string, truncate bool) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite: %v", err)
	}
	for _, stmt := range schema {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("OpenSQLite: %v", err)
		}
	}

	s := &SQLiteStore{db: db}
	if s.tx, err = db.Begin(); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQLite: %v", err)
	}
	if truncate {
		for _, table := range []string{"structures", "struct_refs", "biomes"} {
			if _, err = s.tx.Exec("DELETE FROM `" + table + "`"); err != nil {
				s.Close()
				return nil, fmt.Errorf("OpenSQLite: truncate %s: %v", table, err)
			}
		}
	}
	if s.insertStructure, err = s.tx.Prepare(insertStructureSQL); err != nil {
		s.Close()
		return nil, fmt.Errorf("OpenSQLite: %v", err)
	}
	return s, nil
}

func (s *SQLiteStore) InsertStructure(rec *Record) (int64, error) {
	snapshot, err := rec.JSON()
	if err != nil {
		return 0, err
	}
	b := rec.Box
	res, err := s.insertStructure.Exec(rec.Type, rec.ChunkX, rec.ChunkZ,
		b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ, snapshot)
	if err != nil {
		return 0, fmt.Errorf("insert structure: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert structure: no id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) InsertReferences(id int64, cells []Cell) error {
	for len(cells) > 0 {
		n := min(len(cells), batchRows)
		args := make([]interface{}, 0, 3*n)
		for _, c := range cells[:n] {
			args = append(args, id, c.X, c.Z)
		}
		query := "INSERT INTO `struct_refs` (`structure_id`, `region_x`, `region_z`) VALUES " + placeholders(n, 3)
		if _, err := s.tx.Exec(query, args...); err != nil {
			return fmt.Errorf("insert references of %d: %w", id, err)
		}
		cells = cells[n:]
	}
	return nil
}

func (s *SQLiteStore) InsertBiomes(biomes []Biome) error {
	for len(biomes) > 0 {
		n := min(len(biomes), batchRows)
		args := make([]interface{}, 0, 4*n)
		for i := range biomes[:n] {
			raw, err := biomes[i].JSON()
			if err != nil {
				return err
			}
			args = append(args, biomes[i].ChunkX, biomes[i].SectionY, biomes[i].ChunkZ, raw)
		}
		query := "INSERT INTO `biomes` (`chunk_x`, `chunk_y`, `chunk_z`, `json`) VALUES " + placeholders(n, 4)
		if _, err := s.tx.Exec(query, args...); err != nil {
			return fmt.Errorf("insert biomes: %w", err)
		}
		biomes = biomes[n:]
	}
	return nil
}

func placeholders(rows, columns int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", columns), ", ") + ")"
	return strings.TrimSuffix(strings.Repeat(row+", ", rows), ", ")
}

func (s *SQLiteStore) Commit() error {
	if s.tx == nil {
		return nil
	}
	s.insertStructure.Close()
	err := s.tx.Commit()
	s.tx = nil
	return err
}

func (s *SQLiteStore) Rollback() error {
	if s.tx == nil {
		return nil
	}
	if s.insertStructure != nil {
		s.insertStructure.Close()
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *SQLiteStore) Close() error {
	rollbackErr := s.Rollback()
	closeErr := s.db.Close()
	if rollbackErr != nil {
		return rollbackErr
	}
	return closeErr
}

func (s *SQLiteStore) Structures() ([]Stored, error) {
	return s.queryStructures(selectStructureSQL + " ORDER BY s.`id`")
}

func (s *SQLiteStore) StructuresAt(c Cell) ([]Stored, error) {
	return s.queryStructures(selectStructureSQL+
		" JOIN `struct_refs` r ON r.`structure_id` = s.`id`"+
		" WHERE r.`region_x` = ? AND r.`region_z` = ? ORDER BY s.`id`", c.X, c.Z)
}

func (s *SQLiteStore) queryStructures(query string, args ...interface{}) ([]Stored, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Stored
	for rows.Next() {
		var st Stored
		var raw string
		b := &st.Box
		if err := rows.Scan(&st.ID, &st.Type, &st.ChunkX, &st.ChunkZ,
			&b.MinX, &b.MinY, &b.MinZ, &b.MaxX, &b.MaxY, &b.MaxZ, &raw); err != nil {
			return nil, err
		}
		if st.Snapshot, err = parseSnapshot(raw); err != nil {
			return nil, fmt.Errorf("structure %d: %w", st.ID, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Biomes() ([]Biome, error) {
	rows, err := s.db.Query("SELECT `chunk_x`, `chunk_y`, `chunk_z`, `json` FROM `biomes`" +
		" ORDER BY `chunk_x`, `chunk_z`, `chunk_y`")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Biome
	for rows.Next() {
		var b Biome
		var raw string
		if err := rows.Scan(&b.ChunkX, &b.SectionY, &b.ChunkZ, &raw); err != nil {
			return nil, err
		}
		if b.Biomes, err = parseSnapshot(raw); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func parseSnapshot(raw string) (*nbt.Map, error) {
	v, err := nbt.ParseLiteral(raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*nbt.Map)
	if !ok {
		return nil, fmt.Errorf("stored json is not an object")
	}
	return m, nil
}
