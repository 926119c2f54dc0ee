package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCompensatingActions_DeleteTempBranch(t *testing.T) {
	data := map[string]any{
		"branch_name":        "temp_release_1.2.0",
		"original_branch":    "release/1.2",
		"created_in_session": true,
	}
	t.Run("Should switch back and delete the branch", func(t *testing.T) {
		gitRepo := new(mockGitExtendedRepository)
		ca := NewCompensatingActions(gitRepo, nil, nil)
		ctx := context.Background()
		gitRepo.On("CurrentBranch", ctx).Return("temp_release_1.2.0", nil)
		gitRepo.On("CheckoutBranch", ctx, "release/1.2").Return(nil, nil)
		gitRepo.On("ListLocalBranches", ctx).Return([]string{"release/1.2", "temp_release_1.2.0"}, nil)
		gitRepo.On("DeleteBranch", ctx, "temp_release_1.2.0").Return(nil)
		assert.NoError(t, ca.DeleteTempBranch(ctx, data))
		gitRepo.AssertExpectations(t)
	})
	t.Run("Should be idempotent when the branch is gone", func(t *testing.T) {
		gitRepo := new(mockGitExtendedRepository)
		ca := NewCompensatingActions(gitRepo, nil, nil)
		ctx := context.Background()
		gitRepo.On("CurrentBranch", ctx).Return("release/1.2", nil)
		gitRepo.On("ListLocalBranches", ctx).Return([]string{"release/1.2"}, nil)
		assert.NoError(t, ca.DeleteTempBranch(ctx, data))
		gitRepo.AssertNotCalled(t, "DeleteBranch", ctx, "temp_release_1.2.0")
	})
	t.Run("Should fail without a branch name", func(t *testing.T) {
		ca := NewCompensatingActions(new(mockGitExtendedRepository), nil, nil)
		assert.Error(t, ca.DeleteTempBranch(context.Background(), map[string]any{}))
	})
}

func TestCompensatingActions_RestoreWorktree(t *testing.T) {
	data := map[string]any{"branch_name": "temp_release_1.2.0", "head_commit": "abc123"}
	t.Run("Should reset while on the temporary branch", func(t *testing.T) {
		gitRepo := new(mockGitExtendedRepository)
		ca := NewCompensatingActions(gitRepo, nil, nil)
		ctx := context.Background()
		gitRepo.On("CurrentBranch", ctx).Return("temp_release_1.2.0", nil)
		gitRepo.On("ResetHard", ctx, "abc123").Return(nil)
		assert.NoError(t, ca.RestoreWorktree(ctx, data))
		gitRepo.AssertExpectations(t)
	})
	t.Run("Should leave other branches alone", func(t *testing.T) {
		gitRepo := new(mockGitExtendedRepository)
		ca := NewCompensatingActions(gitRepo, nil, nil)
		ctx := context.Background()
		gitRepo.On("CurrentBranch", ctx).Return("release/1.2", nil)
		assert.NoError(t, ca.RestoreWorktree(ctx, data))
		gitRepo.AssertNotCalled(t, "ResetHard", ctx, "abc123")
	})
}

func TestCompensatingActions_DeleteTag(t *testing.T) {
	t.Run("Should delete an existing tag", func(t *testing.T) {
		gitRepo := new(mockGitExtendedRepository)
		ca := NewCompensatingActions(gitRepo, nil, nil)
		ctx := context.Background()
		gitRepo.On("TagExists", ctx, "1.2.0").Return(true, nil)
		gitRepo.On("DeleteTag", ctx, "1.2.0").Return(nil)
		assert.NoError(t, ca.DeleteTag(ctx, map[string]any{"tag_name": "1.2.0"}))
		gitRepo.AssertExpectations(t)
	})
	t.Run("Should skip a missing tag", func(t *testing.T) {
		gitRepo := new(mockGitExtendedRepository)
		ca := NewCompensatingActions(gitRepo, nil, nil)
		ctx := context.Background()
		gitRepo.On("TagExists", ctx, "1.2.0").Return(false, nil)
		assert.NoError(t, ca.DeleteTag(ctx, map[string]any{"tag_name": "1.2.0"}))
		gitRepo.AssertNotCalled(t, "DeleteTag", ctx, "1.2.0")
	})
}

func TestCompensatingActions_DeleteGithubRelease(t *testing.T) {
	t.Run("Should accept ids decoded from JSON", func(t *testing.T) {
		githubRepo := new(mockGithubRepository)
		ca := NewCompensatingActions(new(mockGitExtendedRepository), githubRepo, nil)
		ctx := context.Background()
		githubRepo.On("DeleteRelease", ctx, int64(42)).Return(nil)
		assert.NoError(t, ca.DeleteGithubRelease(ctx, map[string]any{"release_id": float64(42)}))
		githubRepo.AssertExpectations(t)
	})
	t.Run("Should wrap API errors", func(t *testing.T) {
		githubRepo := new(mockGithubRepository)
		ca := NewCompensatingActions(new(mockGitExtendedRepository), githubRepo, nil)
		githubRepo.On("DeleteRelease", mock.Anything, int64(7)).Return(errors.New("forbidden"))
		err := ca.DeleteGithubRelease(context.Background(), map[string]any{"release_id": int64(7)})
		assert.ErrorContains(t, err, "forbidden")
	})
	t.Run("Should do nothing without a release", func(t *testing.T) {
		ca := NewCompensatingActions(new(mockGitExtendedRepository), nil, nil)
		assert.NoError(t, ca.DeleteGithubRelease(context.Background(), map[string]any{"release_id": 42}))
	})
}
