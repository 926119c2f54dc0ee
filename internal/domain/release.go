package domain

import "fmt"

// TempBranchPrefix names the short-lived branch a release commit is made on.
const TempBranchPrefix = "temp_release_"

// Release holds all metadata related to a release.

type Release struct {
	Version    *Version
	TagName    string
	BaseBranch string
	TempBranch string
}

// NewRelease describes the release of version v cut from baseBranch.
func NewRelease(v *Version, tagPrefix, baseBranch string) *Release {
	return &Release{
		Version:    v,
		TagName:    v.TagName(tagPrefix),
		BaseBranch: baseBranch,
		TempBranch: TempBranchPrefix + v.Plain(),
	}
}

// CommitMessage is used for the version bump commit and the tag annotation.
func (r *Release) CommitMessage() string {
	return fmt.Sprintf("Release %s", r.TagName)
}
