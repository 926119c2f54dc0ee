package orchestrator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// versionRegex matches the x.y.z a release is cut for, optionally v-prefixed
	versionRegex = regexp.MustCompile(`^v?\d+\.\d+\.\d+$`)
	// refNameRegex is the subset of git ref names release branches and tags use
	refNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)
)

// ValidateVersion accepts plain release versions only; pre-releases are not cut from release branches.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if !versionRegex.MatchString(version) {
		return fmt.Errorf("invalid version format: %s (expected: 1.2.3)", version)
	}
	return nil
}

// ValidateBranchName validates a git branch name.
func ValidateBranchName(branch string) error {
	return validateRefName("branch", branch)
}

// ValidateTagName validates a release tag name such as v1.2.3.
func ValidateTagName(tag string) error {
	if strings.Contains(tag, "/") {
		return fmt.Errorf("tag name cannot contain a slash: %s", tag)
	}
	return validateRefName("tag", tag)
}

func validateRefName(kind, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%s name cannot be empty", kind)
	case len(name) > 255:
		return fmt.Errorf("%s name too long: %d characters (max: 255)", kind, len(name))
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return fmt.Errorf("%s name cannot start or end with slash: %s", kind, name)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("%s name cannot start with a dash: %s", kind, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%s name cannot contain consecutive dots: %s", kind, name)
	case strings.HasSuffix(name, ".lock") || strings.HasSuffix(name, "."):
		return fmt.Errorf("%s name cannot end with .lock or a dot: %s", kind, name)
	case !refNameRegex.MatchString(name):
		return fmt.Errorf("invalid %s name format: %s", kind, name)
	}
	return nil
}
