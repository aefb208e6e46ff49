package stage

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wavecast/prebuild/internal/paths"
)

// Copies a directory tree into dst, merging with existing content.
//
// Returns the destination paths of the copied files and links. Entries that
// are neither regular files, directories nor symbolic links are skipped.
func copyTree(src, dst string) ([]string, error) {
	var copied []string

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, paths.DefaultDirMode)

		case d.Type()&fs.ModeSymlink != 0:
			if err := copySymlink(path, target); err != nil {
				return err
			}

		case d.Type().IsRegular():
			if err := copyFile(path, target); err != nil {
				return err
			}

		default:
			slog.Debug("skipping special file", "path", path, "type", d.Type())
			return nil
		}

		copied = append(copied, target)
		return nil
	})

	return copied, err
}

// Copies a regular file, replacing dst and preserving the source permissions.
// Symbolic links at src are followed.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), paths.DefaultDirMode); err != nil {
		return err
	}

	// A link at dst would redirect the write into whatever it points at.
	if fi, err := os.Lstat(dst); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chmod(dst, info.Mode().Perm())
}

// Recreates the symbolic link src at dst, replacing whatever dst holds.
func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), paths.DefaultDirMode); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}

	return os.Symlink(link, dst)
}
