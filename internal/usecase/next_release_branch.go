package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/repository"
)

// InitialReleaseBranch is proposed when no release branch exists yet.
var InitialReleaseBranch = domain.ReleaseBranch{Major: 1, Minor: 0}

// NextReleaseBranchUseCase proposes the release line following the highest existing one.
type NextReleaseBranchUseCase struct {
	GitRepo      repository.GitExtendedRepository
	BranchPrefix string
}

func (uc *NextReleaseBranchUseCase) Execute(ctx context.Context) (domain.ReleaseBranch, error) {
	branches, err := uc.GitRepo.ListLocalBranches(ctx)
	if err != nil {
		return domain.ReleaseBranch{}, fmt.Errorf("failed to list branches: %w", err)
	}
	var (
		latest domain.ReleaseBranch
		found  bool
	)
	for _, name := range branches {
		rb, err := domain.ParseReleaseBranch(uc.BranchPrefix, name)
		if err != nil {
			continue
		}
		if !found || latest.Less(rb) {
			latest = rb
			found = true
		}
	}
	if !found {
		return InitialReleaseBranch, nil
	}
	return latest.NextMinor(), nil
}
