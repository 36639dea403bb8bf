package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	xe "github.com/leadscore/leadscore/pkg/errors"
)

// CopyFile copies src to dest, creating parent directories as needed.
func CopyFile(src string, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return xe.Wrap(err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xe.Wrap(err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return xe.Wrap(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(out.Sync())
}

// CopyDir copies the tree under src into dest.
func CopyDir(src string, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return CopyFile(path, target)
	})
}

// ReplaceDir removes dest (if any) and copies src in its place.
func ReplaceDir(src string, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return xe.Wrap(err)
	}
	return CopyDir(src, dest)
}
