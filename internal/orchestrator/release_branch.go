package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/interactor"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/compozy/gitrelease/internal/usecase"
	"go.uber.org/zap"
)

// ReleaseBranchPrompt asks for the x.y of the release line to open.
const ReleaseBranchPrompt = "Please specify release branch version in x.y format"

// ReleaseBranchOrchestrator opens a new release line.
type ReleaseBranchOrchestrator struct {
	gitRepo      repository.GitExtendedRepository
	ui           interactor.UserInteractor
	branchPrefix string
	log          *zap.Logger
}

func NewReleaseBranchOrchestrator(
	gitRepo repository.GitExtendedRepository,
	ui interactor.UserInteractor,
	branchPrefix string,
	log *zap.Logger,
) *ReleaseBranchOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReleaseBranchOrchestrator{
		gitRepo:      gitRepo,
		ui:           ui,
		branchPrefix: branchPrefix,
		log:          log,
	}
}

// Execute asks for the release line and creates its branch from the current
// branch, leaving it checked out. It returns the new branch name.
func (o *ReleaseBranchOrchestrator) Execute(ctx context.Context) (string, error) {
	current, err := o.gitRepo.CurrentBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	o.ui.Info(fmt.Sprintf("Current branch: %s", current))

	next := &usecase.NextReleaseBranchUseCase{GitRepo: o.gitRepo, BranchPrefix: o.branchPrefix}
	proposed, err := next.Execute(ctx)
	if err != nil {
		return "", err
	}
	answer, err := o.ui.PromptQuestion(ReleaseBranchPrompt, proposed.String())
	if err != nil {
		return "", err
	}
	rb, err := domain.ParseMajorMinor(answer)
	if err != nil {
		o.ui.Error(fmt.Sprintf("Invalid release branch version %q: expected x.y", answer))
		return "", err
	}
	if err := ValidateBranchName(rb.Name(o.branchPrefix)); err != nil {
		o.ui.Error(err.Error())
		return "", err
	}

	create := &usecase.CreateReleaseBranchUseCase{GitRepo: o.gitRepo, BranchPrefix: o.branchPrefix}
	name, err := create.Execute(ctx, rb)
	if err != nil {
		if errors.Is(err, usecase.ErrReleaseBranchExists) {
			o.ui.Error(fmt.Sprintf("Release branch %s already exists", rb.Name(o.branchPrefix)))
		}
		return "", err
	}
	o.log.Debug("Release branch created", zap.String("branch", name), zap.String("from", current))
	o.ui.Info(fmt.Sprintf("Release branch %s created", name))
	return name, nil
}
