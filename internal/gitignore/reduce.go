package gitignore

import (
	"sort"

	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
)

// ReduceRoots sorts paths and drops every path that lies inside another
// member, so no result is a descendant of another result. Duplicates collapse.
func ReduceRoots(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	reduced := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if pathmatch.AnyInside(reduced, p) {
			continue
		}
		reduced = append(reduced, p)
	}
	return reduced
}
