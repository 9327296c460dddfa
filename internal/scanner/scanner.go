// Package scanner enumerates directory trees for the marking and reset
// engines. Symbolic links are reported but never followed.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

// ExcludeFunc reports whether a path should be left out of a listing.
type ExcludeFunc func(path string) bool

// VisitFunc is called for every entry of a walk. Returning descend=false
// keeps the walk out of a directory entry.
type VisitFunc func(path string, entry fs.DirEntry) (descend bool, err error)

// ListDirs returns the child directories of dir in name order.
// Symlinks are dropped, as is every entry exclude matches.
func ListDirs(dir string, exclude ExcludeFunc) ([]string, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if exclude != nil && exclude(path) {
			continue
		}
		if isRealDir(entry) {
			dirs = append(dirs, path)
		}
	}
	return dirs, nil
}

// Walk visits every entry beneath root depth first, in name order. Root itself
// is not visited. A symlink is visited but not descended into, even when it
// points at a directory and visit asks to descend.
func Walk(ctx context.Context, root string, visit VisitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := readDir(root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		descend, err := visit(path, entry)
		if err != nil {
			return errors.Annotate(err, "Can't process path %s", path)
		}

		if descend && isRealDir(entry) {
			if err := Walk(ctx, path, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

func readDir(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(errors.ErrCodeListFailed,
			fmt.Sprintf("Can't read dir %s: %v", dir, err), err).WithPath(dir)
	}
	return entries, nil
}

// isRealDir reports whether entry is a directory and not a symlink to one.
func isRealDir(entry fs.DirEntry) bool {
	return entry.Type()&fs.ModeSymlink == 0 && entry.IsDir()
}
