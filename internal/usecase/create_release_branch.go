package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/repository"
)

// ErrReleaseBranchExists is returned when the requested release line already has a branch.
var ErrReleaseBranchExists = errors.New("release branch already exists")

// CreateReleaseBranchUseCase contains the logic for the create-release-branch command.

type CreateReleaseBranchUseCase struct {
	GitRepo      repository.GitRepository
	BranchPrefix string
}

// Execute creates the branch for rb and checks it out, returning its name.
func (uc *CreateReleaseBranchUseCase) Execute(ctx context.Context, rb domain.ReleaseBranch) (string, error) {
	name := rb.Name(uc.BranchPrefix)
	exists, err := uc.GitRepo.BranchExists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to check release branch: %w", err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrReleaseBranchExists, name)
	}
	if _, err := uc.GitRepo.CreateBranch(ctx, name, true); err != nil {
		return "", fmt.Errorf("failed to create release branch: %w", err)
	}
	return name, nil
}
