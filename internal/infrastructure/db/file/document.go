// Package file stores the account and session collections as JSON documents
// on local disk. Each write replaces the whole document atomically.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/99minutos/access-control/internal/core/domain"
)

const filePerm = 0o600

// document is a single JSON file holding one collection.
type document struct {
	path string
}

// load decodes the document into v. It reports found=false when the file does
// not exist. A decode failure is returned as errCorrupt so callers can decide
// how to recover.
func (d document) load(v any) (found bool, err error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, d.path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	return true, nil
}

// save writes v to a temp file in the same directory and renames it over the
// document, so readers see either the old or the new content.
func (d document) save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorage, d.path, err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrStorage, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: temp file: %v", domain.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, tmp.Name(), err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: chmod %s: %v", domain.ErrStorage, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrStorage, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %v", domain.ErrStorage, d.path, err)
	}
	return nil
}

// ping checks that the document's directory is reachable.
func (d document) ping() error {
	dir := filepath.Dir(d.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

var errCorrupt = errors.New("corrupt document")
