package scaffold

import (
	"archive/zip"
	"bytes"
	"sort"
	"strings"
)

// BuildZip packs a scaffold file map into an in-memory zip archive. Absolute
// paths and traversal segments are skipped; Generate never produces them,
// but callers can feed arbitrary file maps.
func BuildZip(files map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// Stable entry order.
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		safe := strings.TrimLeft(strings.ReplaceAll(path, `\`, "/"), "/")
		if safe == "" || hasTraversal(safe) {
			continue
		}
		w, err := zw.Create(safe)
		if err != nil {
			zw.Close()
			return nil, err
		}
		if _, err := w.Write([]byte(files[path])); err != nil {
			zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hasTraversal(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
