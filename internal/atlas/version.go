package atlas

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a dotted numeric atlas version such as 1.2.
type Version struct {
	parts []int
}

var versionRegex = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)$`)

// ParseVersion parses a version string. A leading 'v' is accepted ("1.2" or "v1.2").
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	fields := strings.Split(matches[1], ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		parts[i] = n
	}

	return Version{parts: parts}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version without prefix, e.g. "1.2".
func (v Version) String() string {
	fields := make([]string, len(v.parts))
	for i, p := range v.parts {
		fields[i] = strconv.Itoa(p)
	}
	return strings.Join(fields, ".")
}

// IsZero reports whether v was never set.
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// Compare returns -1, 0 or 1. Missing trailing components count as zero, so 1.2 == 1.2.0.
func (v Version) Compare(other Version) int {
	n := max(len(v.parts), len(other.parts))
	for i := range n {
		a, b := v.at(i), other.at(i)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

// LessThan returns true if v < other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// Equal returns true if v == other.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

func (v Version) at(i int) int {
	if i < len(v.parts) {
		return v.parts[i]
	}
	return 0
}
