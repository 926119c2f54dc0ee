package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotReleaseBranch is returned when a branch name does not follow the release branch layout.
var ErrNotReleaseBranch = errors.New("not a release branch")

// ReleaseBranch identifies a release line x.y. Patch releases are tagged from it.
type ReleaseBranch struct {
	Major uint64
	Minor uint64
}

// ParseMajorMinor parses an "x.y" string.
func ParseMajorMinor(s string) (ReleaseBranch, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return ReleaseBranch{}, fmt.Errorf("invalid release version %q: expected x.y", s)
	}
	major, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return ReleaseBranch{}, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return ReleaseBranch{}, fmt.Errorf("invalid minor version in %q: %w", s, err)
	}
	return ReleaseBranch{Major: major, Minor: minor}, nil
}

// ParseReleaseBranch parses a branch name such as "release/1.4".
func ParseReleaseBranch(prefix, name string) (ReleaseBranch, error) {
	if prefix == "" || !strings.HasPrefix(name, prefix) {
		return ReleaseBranch{}, fmt.Errorf("%w: %s", ErrNotReleaseBranch, name)
	}
	rb, err := ParseMajorMinor(strings.TrimPrefix(name, prefix))
	if err != nil {
		return ReleaseBranch{}, fmt.Errorf("%w: %s: %v", ErrNotReleaseBranch, name, err)
	}
	return rb, nil
}

// Name returns the branch name for the given prefix.
func (b ReleaseBranch) Name(prefix string) string {
	return prefix + b.String()
}

// String returns "x.y".
func (b ReleaseBranch) String() string {
	return fmt.Sprintf("%d.%d", b.Major, b.Minor)
}

// Contains reports whether v belongs to this release line.
func (b ReleaseBranch) Contains(v *Version) bool {
	return v.Major() == b.Major && v.Minor() == b.Minor
}

// NextMinor returns the following release line.
func (b ReleaseBranch) NextMinor() ReleaseBranch {
	return ReleaseBranch{Major: b.Major, Minor: b.Minor + 1}
}

// Less orders release lines.
func (b ReleaseBranch) Less(other ReleaseBranch) bool {
	if b.Major != other.Major {
		return b.Major < other.Major
	}
	return b.Minor < other.Minor
}

// FirstVersion is the x.y.0 version of the line.
func (b ReleaseBranch) FirstVersion() *Version {
	return NewReleaseVersion(b.Major, b.Minor, 0)
}
