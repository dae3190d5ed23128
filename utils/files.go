package utils

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// WriteFile atomically replaces path with data, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.WithStack(err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Wrapf(err, "creating pending file for %s", path)
	}
	defer pendingFile.Cleanup()

	if _, err := pendingFile.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

// CopyDir copies every file below src into dst. A missing src copies
// nothing.
func CopyDir(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.WithStack(err)
		}
		return copyFile(path, filepath.Join(dst, rel))
	})
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return errors.WithStack(err)
	}
	return WriteFile(dst, input)
}
