package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/repository"
)

// NextReleaseVersionUseCase proposes the next patch version of a release line
// from the tags already cut on it.
type NextReleaseVersionUseCase struct {
	GitRepo   repository.GitExtendedRepository
	TagPrefix string
}

// Execute returns x.y.(z+1) for the highest x.y.z tag, or x.y.0 when the line has no tags.
func (uc *NextReleaseVersionUseCase) Execute(ctx context.Context, rb domain.ReleaseBranch) (*domain.Version, error) {
	tags, err := uc.GitRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	var latest *domain.Version
	for _, tag := range ReleaseTags(tags, uc.TagPrefix) {
		if !rb.Contains(tag.Version) {
			continue
		}
		if latest == nil || tag.Version.Compare(latest) > 0 {
			latest = tag.Version
		}
	}
	if latest == nil {
		return rb.FirstVersion(), nil
	}
	return latest.BumpPatch(), nil
}

// ReleaseTag is a tag that carries a release version.
type ReleaseTag struct {
	Name    string
	Version *domain.Version
}

// ReleaseTags keeps the tags carrying prefix followed by a plain release
// version, skipping pre-releases and anything unparsable.
func ReleaseTags(tags []string, prefix string) []ReleaseTag {
	releases := make([]ReleaseTag, 0, len(tags))
	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		v, err := domain.NewVersion(strings.TrimPrefix(tag, prefix))
		if err != nil || v.Prerelease() != "" {
			continue
		}
		releases = append(releases, ReleaseTag{Name: tag, Version: v})
	}
	return releases
}
