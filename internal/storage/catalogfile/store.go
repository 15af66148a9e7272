// Package catalogfile persists the catalog as a single JSON document on disk.
//
// The document is the unit of read and write: Load parses the whole file on
// every call and Replace swaps it atomically. There is no version check on
// writes; concurrent admin saves resolve last-write-wins. The mutex only
// prevents two replaces from interleaving their temp-file dance.
package catalogfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"github.com/atelierhome/storefront/internal/domain/catalog"
)

const (
	fileName   = "catalog.json"
	backupName = "catalog.prev.json.gz"
)

// Store implements catalog.Store over a JSON file in dir.
type Store struct {
	path       string
	backupPath string

	mu sync.Mutex
}

var _ catalog.Store = (*Store)(nil)

// New creates the data directory when missing and seeds an empty catalog
// document on first boot.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}

	s := &Store{
		path:       filepath.Join(dir, fileName),
		backupPath: filepath.Join(dir, backupName),
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		seed := &catalog.Catalog{
			Brand:    catalog.Brand{Currency: "грн"},
			Products: []catalog.Product{},
		}
		if err := s.write(seed); err != nil {
			return nil, errors.Wrap(err, "seed catalog")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "stat catalog")
	}

	return s, nil
}

// Load reads and parses the document. No caching: every call sees the file's
// current contents.
func (s *Store) Load(_ context.Context) (*catalog.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}

	var c catalog.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	return &c, nil
}

// Replace swaps the whole document. The previous document is kept as a
// gzip-compressed backup next to the live file, the new one is written to a
// temp file and renamed into place so readers never observe a torn write.
func (s *Store) Replace(_ context.Context, c *catalog.Catalog) error {
	if c == nil || c.Products == nil {
		return catalog.ErrNilProducts
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backup(); err != nil {
		return errors.Wrap(err, "backup catalog")
	}
	return s.write(c)
}

// Ping reports whether the live document is readable. Used as a readiness
// check.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return errors.Wrap(err, "stat catalog")
	}
	return nil
}

// backup compresses the current document into backupPath. A missing live file
// (first replace after a wipe) is not an error.
func (s *Store) backup() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	f, err := os.Create(s.backupPath)
	if err != nil {
		return err
	}
	zw := pgzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// write marshals the document to a temp file in the same directory and
// renames it over the live path.
func (s *Store) write(c *catalog.Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal catalog")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileName+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "replace catalog")
	}
	return nil
}
