// Package store persists workbooks in a bbolt database. Only raw cell
// text is stored, one bucket per sheet, so a loaded workbook replays
// every cell through the same typing and formula registration as live
// input and recomputes from there.
package store

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/javajack/sheetcalc"
)

const (
	bucketSheets = "sheets" // ordinal → sheet name, keeps creation order
	sheetPrefix  = "sheet:" // sheetPrefix+name → cell bucket
)

// Store is a workbook database backed by a single bbolt file.
type Store struct {
	db *bolt.DB
}

// Open opens or creates a workbook database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open workbook db %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveWorkbook replaces the database contents with the given workbook.
// Cells are stored as entered; computed values are not persisted.
func (s *Store) SaveWorkbook(w *sheetcalc.Workbook) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			stale = append(stale, append([]byte(nil), name...))
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range stale {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}

		order, err := tx.CreateBucket([]byte(bucketSheets))
		if err != nil {
			return err
		}
		for i, name := range w.SheetNames() {
			if err := order.Put(marshalOrdinal(uint64(i)), []byte(name)); err != nil {
				return err
			}
			b, err := tx.CreateBucket([]byte(sheetPrefix + name))
			if err != nil {
				return fmt.Errorf("sheet bucket %q: %w", name, err)
			}
			var putErr error
			w.Sheet(name).EachCell(func(row, col int, raw string) {
				if putErr != nil {
					return
				}
				putErr = b.Put([]byte(sheetcalc.Key(row, col)), []byte(raw))
			})
			if putErr != nil {
				return putErr
			}
		}
		return nil
	})
}

// LoadWorkbook builds a workbook from the database contents. Options
// pass through to the new workbook.
func (s *Store) LoadWorkbook(opts ...sheetcalc.Option) (*sheetcalc.Workbook, error) {
	w := sheetcalc.NewWorkbook(opts...)
	err := s.db.View(func(tx *bolt.Tx) error {
		order := tx.Bucket([]byte(bucketSheets))
		if order == nil {
			return nil // empty database
		}
		c := order.Cursor()
		for k, name := c.First(); k != nil; k, name = c.Next() {
			sheet, err := w.AddSheet(string(name))
			if err != nil {
				return err
			}
			b := tx.Bucket([]byte(sheetPrefix + string(name)))
			if b == nil {
				continue
			}
			err = b.ForEach(func(key, raw []byte) error {
				_, row, col, err := sheetcalc.ParseKey(sheetcalc.CellKey(key))
				if err != nil {
					return fmt.Errorf("cell key %q: %w", key, err)
				}
				sheet.SetCell(row, col, string(raw))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func marshalOrdinal(i uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, i)
	return b
}
