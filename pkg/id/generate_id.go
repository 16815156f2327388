package id

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a random (v4) UUID in canonical lowercase form.
func New() string { return uuid.NewString() }

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s is a UUID or a bare 32-char lowercase hex id.
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	if s != strings.ToLower(s) {
		return false
	}
	switch len(s) {
	case 32, 36:
		_, err := uuid.Parse(s)
		return err == nil
	}
	return false
}
