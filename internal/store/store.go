// Package store owns the on-disk layout of the POS data directory: one CSV
// record per bill under the bills directory and one CSV rollup per generation
// under the tax directory. Directory creation happens only through
// Initialize, called once by the entrypoint.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotExist indicates the requested record is not present in the store.
var ErrNotExist = errors.New("record does not exist")

// StorageError wraps a filesystem failure with the operation that caused it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Paths configures where the stores live on disk.
type Paths struct {
	Bills string
	Tax   string
}

// Handles groups the initialized stores for injection into the services.
type Handles struct {
	Bills *BillStore
	Tax   *TaxStore
}

// Initialize creates the storage directories and returns handles to them.
// It is the only place that mutates the filesystem layout.
func Initialize(paths Paths, logger zerolog.Logger) (*Handles, error) {
	for _, dir := range []string{paths.Bills, paths.Tax} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storageErr("create directory "+dir, err)
		}
	}
	logger.Debug().
		Str("bills_dir", paths.Bills).
		Str("tax_dir", paths.Tax).
		Msg("storage initialized")
	return &Handles{
		Bills: &BillStore{dir: paths.Bills},
		Tax:   &TaxStore{dir: paths.Tax},
	}, nil
}

// BillStore is a directory of immutable bill records keyed by bill number.
type BillStore struct {
	dir string
}

// Dir returns the directory backing the store.
func (s *BillStore) Dir() string {
	return s.dir
}

// List returns the keys of every CSV record in the store, in directory
// enumeration order. Foreign files are not filtered here; callers that care
// about the bill number format skip names that do not parse.
func (s *BillStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, storageErr("list bills", err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".csv"))
	}
	return keys, nil
}

// Read returns the CSV rows of one bill record.
func (s *BillStore) Read(key string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.dir, key+".csv"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, storageErr("read bill "+key, err)
	}
	defer f.Close()
	rows, err := readRows(f)
	if err != nil {
		return nil, storageErr("read bill "+key, err)
	}
	return rows, nil
}

// Write persists a bill record atomically: the rows land in a temporary file
// that is renamed over the final name only after a successful flush, so a
// failed write never leaves a partial bill behind.
func (s *BillStore) Write(key string, rows [][]string) error {
	final := filepath.Join(s.dir, key+".csv")
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return storageErr("write bill "+key, err)
	}
	tmpName := tmp.Name()
	if err := writeRows(tmp, rows); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageErr("write bill "+key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storageErr("write bill "+key, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return storageErr("write bill "+key, err)
	}
	return nil
}

// TaxStore is a directory of rollup files keyed by generation timestamp.
type TaxStore struct {
	dir string
}

// Dir returns the directory backing the store.
func (s *TaxStore) Dir() string {
	return s.dir
}

// List returns the rollup keys present in the store, sorted ascending, which
// for the timestamped naming scheme is oldest first.
func (s *TaxStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, storageErr("list rollups", err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".csv"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Read returns the CSV rows of one rollup file.
func (s *TaxStore) Read(key string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.dir, key+".csv"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, storageErr("read rollup "+key, err)
	}
	defer f.Close()
	rows, err := readRows(f)
	if err != nil {
		return nil, storageErr("read rollup "+key, err)
	}
	return rows, nil
}

// Write persists a new rollup file. An existing rollup is never overwritten;
// attempting to reuse a key fails.
func (s *TaxStore) Write(key string, rows [][]string) error {
	final := filepath.Join(s.dir, key+".csv")
	f, err := os.OpenFile(final, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return storageErr("write rollup "+key, err)
	}
	if err := writeRows(f, rows); err != nil {
		f.Close()
		os.Remove(final)
		return storageErr("write rollup "+key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(final)
		return storageErr("write rollup "+key, err)
	}
	return nil
}

func readRows(f *os.File) ([][]string, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func writeRows(f *os.File, rows [][]string) error {
	w := csv.NewWriter(f)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
