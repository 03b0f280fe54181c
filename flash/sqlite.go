package flash

import (
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLite is a flash chip persisted in a SQLite database, one row per sector.
// A sector without a row is erased. The dbPath can be ":memory:" or a file path,
// so a flash image survives process restarts.
type SQLite struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
	size   uint32
	erases atomic.Int64
}

// NewSQLite opens or creates the flash image at dbPath with the given size.
// Reopening an image with a different size fails.
func NewSQLite(dbPath string, size uint32) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases alive between calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{
		db:   db,
		size: size,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// initSchema creates the database schema and records the chip size.
func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS flash_info (
		id INTEGER PRIMARY KEY CHECK(id = 0),
		size INTEGER NOT NULL,
		sector_size INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS flash_sectors (
		sector INTEGER PRIMARY KEY,
		content BLOB NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	var size uint32
	err := s.db.QueryRow("SELECT size FROM flash_info WHERE id = 0").Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Exec("INSERT INTO flash_info (id, size, sector_size) VALUES (0, ?, ?)", s.size, SectorSize)
		return err
	}
	if err != nil {
		return err
	}

	if size != s.size {
		return errors.New("flash: image size does not match device size")
	}
	return nil
}

func (s *SQLite) Read(addr uint32, buf []byte) error {
	if err := checkRange(s, addr, len(buf)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	for done := 0; done < len(buf); {
		cur := addr + uint32(done)
		sector, off := Sector(cur), cur%SectorSize

		content, err := loadSector(s.db, sector)
		if err != nil {
			return err
		}

		done += copy(buf[done:], content[off:])
	}
	return nil
}

func (s *SQLite) Write(addr uint32, buf []byte) error {
	if err := checkRange(s, addr, len(buf)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for done := 0; done < len(buf); {
		cur := addr + uint32(done)
		sector, off := Sector(cur), cur%SectorSize

		content, err := loadSector(tx, sector)
		if err != nil {
			return err
		}

		n := 0
		for i := int(off); i < SectorSize && done+n < len(buf); i++ {
			content[i] &= buf[done+n]
			n++
		}

		if _, err := tx.Exec("INSERT OR REPLACE INTO flash_sectors (sector, content) VALUES (?, ?)", sector, content); err != nil {
			return err
		}
		done += n
	}

	return tx.Commit()
}

func (s *SQLite) EraseSector(sector uint32) error {
	if _, err := sectorAddr(s, sector); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.Exec("DELETE FROM flash_sectors WHERE sector = ?", sector); err != nil {
		return err
	}
	s.erases.Add(1)
	return nil
}

func (*SQLite) SectorSize() uint32 {
	return SectorSize
}

func (s *SQLite) Size() uint32 {
	return s.size
}

// Erases returns the number of sector erases performed since open.
func (s *SQLite) Erases() int64 {
	return s.erases.Load()
}

// Close releases the database. Later calls fail with ErrClosed.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return s.db.Close()
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// loadSector returns a copy of the sector content. Callers hold s.mu.
func loadSector(q querier, sector uint32) ([]byte, error) {
	content := make([]byte, SectorSize)

	var stored []byte
	err := q.QueryRow("SELECT content FROM flash_sectors WHERE sector = ?", sector).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		for i := range content {
			content[i] = 0xff
		}
		return content, nil
	}
	if err != nil {
		return nil, err
	}

	copy(content, stored)
	return content, nil
}
