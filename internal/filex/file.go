// Package filex holds small filesystem helpers for the download directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// SafeName strips any directory component from name and falls back to
// fallback when nothing usable remains.
func SafeName(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	switch name {
	case "", ".", "..", "/":
		return fallback
	}
	return name
}

// CreateUnique creates a new file named name inside dir. If the name is
// taken, " (1)", " (2)"… is inserted before the extension.
func CreateUnique(dir, name string) (*os.File, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = stem + " (" + strconv.Itoa(i) + ")" + ext
		}
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create %s: %w", candidate, err)
		}
	}

	return nil, fmt.Errorf("create %s: too many name collisions", name)
}
