package orchestrator

import (
	"context"
	"testing"

	"github.com/compozy/gitrelease/internal/interactor"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/compozy/gitrelease/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReleaseBranchFixture(t *testing.T, answers ...string) (
	repository.GitExtendedRepository,
	*interactor.JournaledInteractor,
	*ReleaseBranchOrchestrator,
) {
	t.Helper()
	_, repo := setupTestRepo(t)
	gitRepo := repository.NewGitRepositoryFromHandle(repo, repository.GitOptions{}, nil)
	ui := interactor.NewJournaledInteractor(nil, answers...)
	return gitRepo, ui, NewReleaseBranchOrchestrator(gitRepo, ui, "release/", nil)
}

func TestReleaseBranchOrchestrator_Execute(t *testing.T) {
	t.Run("Should create and checkout the release branch", func(t *testing.T) {
		gitRepo, ui, orch := newReleaseBranchFixture(t, "1.0")
		ctx := context.Background()

		name, err := orch.Execute(ctx)
		require.NoError(t, err)

		assert.Equal(t, "release/1.0", name)
		current, err := gitRepo.CurrentBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "release/1.0", current)
		assert.Equal(t, []string{
			"Current branch: master",
			ReleaseBranchPrompt,
			"Release branch release/1.0 created",
		}, ui.Messages())
	})
	t.Run("Should report an existing release branch", func(t *testing.T) {
		gitRepo, ui, orch := newReleaseBranchFixture(t, "1.4")
		ctx := context.Background()
		_, err := gitRepo.CreateBranch(ctx, "release/1.4", false)
		require.NoError(t, err)

		_, err = orch.Execute(ctx)

		assert.ErrorIs(t, err, usecase.ErrReleaseBranchExists)
		assert.Equal(t, "Release branch release/1.4 already exists", ui.Messages()[len(ui.Messages())-1])
		current, err := gitRepo.CurrentBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "master", current)
	})
	t.Run("Should reject malformed versions", func(t *testing.T) {
		_, ui, orch := newReleaseBranchFixture(t, "1.4.2")
		_, err := orch.Execute(context.Background())
		assert.Error(t, err)
		assert.Contains(t, ui.Messages()[len(ui.Messages())-1], "expected x.y")
	})
}
