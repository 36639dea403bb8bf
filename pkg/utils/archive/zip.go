package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	xe "github.com/leadscore/leadscore/pkg/errors"
)

// ZipDir archives the file tree under root into dest as a zip stream.
//
// Entry names are slash-separated paths relative to root, so the
// archive is position independent: extracting into any directory
// reproduces the tree under that directory.
//
// # Args
//
// - root string: directory to collect files from. Must exist.
//
// - dest io.Writer: where the zip stream is written.
func ZipDir(root string, dest io.Writer) error {
	info, err := os.Stat(root)
	if err != nil {
		return xe.Wrap(err)
	}
	if !info.IsDir() {
		return xe.New(fmt.Sprintf("archive root %s is not a directory", root))
	}

	zw := zip.NewWriter(dest)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			// keep empty directories
			_, err := zw.Create(name + "/")
			return err
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(fi)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(zw.Close())
}

// Unzip extracts the zip archive at src into the directory dest.
//
// Entries escaping dest (via ".." or absolute names) are rejected.
func Unzip(src string, dest string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return xe.Wrap(err)
	}
	defer zr.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return xe.Wrap(err)
	}

	for _, f := range zr.File {
		target, err := sanitize(dest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return xe.Wrap(err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return xe.Wrap(err)
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	r, err := f.Open()
	if err != nil {
		return xe.Wrap(err)
	}
	defer r.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	w, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return xe.Wrap(err)
	}
	defer w.Close()

	if _, err := io.Copy(w, r); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func sanitize(dest string, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil {
		return "", xe.Wrap(err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", xe.New(fmt.Sprintf("zip entry %s escapes destination", name))
	}
	return target, nil
}
