package memory

import (
	"bytes"
	"sort"

	"bakehouse/internal/core/id"
)

// sortByID orders results by UUIDv7, i.e. by creation time.
func sortByID[T any](s []T, key func(T) id.ID) {
	sort.Slice(s, func(i, j int) bool {
		a, b := key(s[i]), key(s[j])
		return bytes.Compare(a[:], b[:]) < 0
	})
}

func paginate[T any](s []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(s) {
			return nil
		}
		s = s[offset:]
	}
	if limit > 0 && limit < len(s) {
		s = s[:limit]
	}
	return s
}
