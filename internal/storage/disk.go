package storage

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// Usage summarises the on-disk footprint of a notes directory.
type Usage struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// DiskUsage sums the size of note files under root. Files with other
// extensions, temp files included, are ignored. A missing root is empty usage.
func (s *FileStore) DiskUsage() (Usage, error) {
	var u Usage
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !s.isNoteExt(filepath.Ext(path)) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		u.Files++
		u.Bytes += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return Usage{}, nil
	}
	return u, err
}
