package repository

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a guarded update matched no row because the
	// record moved on concurrently.
	ErrConflict = errors.New("record changed concurrently")
)

// skillSep joins skill tags inside string_agg so both drivers can scan a
// tag list into a plain string.
const skillSep = "\x1f"

func splitSkills(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, skillSep)
}
