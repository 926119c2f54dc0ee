package domain

import (
	"github.com/Masterminds/semver/v3"
)

// Version is a release version. Tags and version files use Plain; String
// keeps the v prefix for display.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, err
	}
	return &Version{v}, nil
}

// NewReleaseVersion builds the x.y.z version of a release line.
func NewReleaseVersion(major, minor, patch uint64) *Version {
	return &Version{semver.New(major, minor, patch, "", "")}
}

// BumpPatch returns the next patch release of the same line.
func (v *Version) BumpPatch() *Version {
	newVer := v.IncPatch()
	return &Version{&newVer}
}

// Compare compares two versions.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// String returns the version string with v prefix.
func (v *Version) String() string {
	return "v" + v.Version.String()
}

// Plain returns the version string without the v prefix, as written to version files.
func (v *Version) Plain() string {
	return v.Version.String()
}

// TagName returns the tag carrying this version.
func (v *Version) TagName(prefix string) string {
	return prefix + v.Plain()
}
