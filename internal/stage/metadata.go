package stage

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Key used when the first line has no "key=" part.
const defaultPrefixKey = "prefix"

// Rewrites the prefix line of every metadata file under root.
//
// Files are matched by extension. A symbolic link to a metadata file is
// replaced by a rewritten copy of its target, so the link's target is never
// modified. Returns the rewritten paths.
func rewriteMetadataTree(root, ext, prefix string) ([]string, error) {
	var rewritten []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if filepath.Ext(path) != ext {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if err := rewriteMetadataFile(path, prefix); err != nil {
			return err
		}
		rewritten = append(rewritten, path)
		return nil
	})

	return rewritten, err
}

// Rewrites the first line of the file at path in place.
//
// If path is a symbolic link, it is replaced by a regular file.
func rewriteMetadataFile(path, prefix string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if fi, err := os.Lstat(path); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(path); err != nil {
			return err
		}
	}

	return os.WriteFile(path, rewritePrefix(data, prefix), info.Mode().Perm())
}

// Replaces the value of the first line with prefix.
//
// The first line keeps its key (the text before the first "=", or "prefix" if
// there is none) and its "\r" line ending, if any. Everything after the first
// "\n" is returned unchanged. Empty data is returned as is.
func rewritePrefix(data []byte, prefix string) []byte {
	if len(data) == 0 {
		return data
	}

	first, rest := data, []byte(nil)
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first, rest = data[:i], data[i:]
	}

	eol := ""
	if bytes.HasSuffix(first, []byte("\r")) {
		first = first[:len(first)-1]
		eol = "\r"
	}

	key := defaultPrefixKey
	if k, _, ok := bytes.Cut(first, []byte("=")); ok {
		if k := strings.TrimSpace(string(k)); k != "" {
			key = k
		}
	}

	var out bytes.Buffer
	out.Grow(len(data) + len(prefix))
	out.WriteString(key)
	out.WriteByte('=')
	out.WriteString(prefix)
	out.WriteString(eol)
	out.Write(rest)
	return out.Bytes()
}
