package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/go-git/go-git/v5/plumbing"
)

// CreateGitTagUseCase tags the release commit with an annotated tag.
type CreateGitTagUseCase struct {
	GitRepo repository.GitExtendedRepository
}

// Execute refuses an existing tag, then tags HEAD with the release commit message.
func (uc *CreateGitTagUseCase) Execute(ctx context.Context, release *domain.Release) (*plumbing.Reference, error) {
	exists, err := uc.GitRepo.TagExists(ctx, release.TagName)
	if err != nil {
		return nil, fmt.Errorf("failed to check tag existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("tag %s already exists", release.TagName)
	}
	ref, err := uc.GitRepo.CreateTag(ctx, release.TagName, release.CommitMessage())
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return ref, nil
}

// PushTagUseCase pushes a release tag to the configured remote.
type PushTagUseCase struct {
	GitRepo repository.GitRepository
}

// Execute pushes the tag reference returned by CreateGitTagUseCase. The
// caller owns creds and wipes them.
func (uc *PushTagUseCase) Execute(ctx context.Context, creds *domain.Credentials, tagRef *plumbing.Reference) error {
	if tagRef == nil || !tagRef.Name().IsTag() {
		return fmt.Errorf("a tag reference is required to push")
	}
	if !creds.Valid() {
		return fmt.Errorf("git login and password are required to push %s", tagRef.Name().Short())
	}
	if err := uc.GitRepo.PushTag(ctx, creds, tagRef); err != nil {
		return fmt.Errorf("failed to push tag: %w", err)
	}
	return nil
}
