package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReleaseBranchUseCase_Execute(t *testing.T) {
	rb := domain.ReleaseBranch{Major: 1, Minor: 3}
	t.Run("Should create and checkout branch successfully", func(t *testing.T) {
		gitRepo := new(mockGitRepository)
		uc := &CreateReleaseBranchUseCase{GitRepo: gitRepo, BranchPrefix: "release/"}
		ctx := context.Background()
		ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("release/1.3"))
		gitRepo.On("BranchExists", ctx, "release/1.3").Return(false, nil)
		gitRepo.On("CreateBranch", ctx, "release/1.3", true).Return(ref, nil)
		name, err := uc.Execute(ctx, rb)
		require.NoError(t, err)
		assert.Equal(t, "release/1.3", name)
		gitRepo.AssertExpectations(t)
	})
	t.Run("Should refuse an existing branch", func(t *testing.T) {
		gitRepo := new(mockGitRepository)
		uc := &CreateReleaseBranchUseCase{GitRepo: gitRepo, BranchPrefix: "release/"}
		ctx := context.Background()
		gitRepo.On("BranchExists", ctx, "release/1.3").Return(true, nil)
		_, err := uc.Execute(ctx, rb)
		assert.ErrorIs(t, err, ErrReleaseBranchExists)
		gitRepo.AssertNotCalled(t, "CreateBranch", ctx, "release/1.3", true)
	})
	t.Run("Should handle error when creating branch", func(t *testing.T) {
		gitRepo := new(mockGitRepository)
		uc := &CreateReleaseBranchUseCase{GitRepo: gitRepo, BranchPrefix: "release/"}
		ctx := context.Background()
		expectedErr := errors.New("reference already exists")
		gitRepo.On("BranchExists", ctx, "release/1.3").Return(false, nil)
		gitRepo.On("CreateBranch", ctx, "release/1.3", true).Return(nil, expectedErr)
		_, err := uc.Execute(ctx, rb)
		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to create release branch")
		gitRepo.AssertExpectations(t)
	})
}
