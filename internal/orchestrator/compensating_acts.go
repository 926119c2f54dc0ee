package orchestrator

import (
	"context"
	"fmt"
	"slices"

	"github.com/compozy/gitrelease/internal/repository"
	"go.uber.org/zap"
)

// Keys of the rollback data recorded by the release steps.
const (
	rollbackKeyBranchName     = "branch_name"
	rollbackKeyOriginalBranch = "original_branch"
	rollbackKeyHeadCommit     = "head_commit"
	rollbackKeyTagName        = "tag_name"
	rollbackKeyReleaseID      = "release_id"
	rollbackKeyCreated        = "created_in_session"
)

// CompensatingActions provides idempotent rollback operations for release workflow steps
type CompensatingActions struct {
	gitRepo    repository.GitExtendedRepository
	githubRepo repository.GithubRepository
	log        *zap.Logger
}

// NewCompensatingActions creates a new compensating actions handler. githubRepo may be nil.
func NewCompensatingActions(
	gitRepo repository.GitExtendedRepository,
	githubRepo repository.GithubRepository,
	log *zap.Logger,
) *CompensatingActions {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompensatingActions{
		gitRepo:    gitRepo,
		githubRepo: githubRepo,
		log:        log,
	}
}

// DeleteTempBranch returns to the original branch and force-deletes the temporary release branch
func (ca *CompensatingActions) DeleteTempBranch(ctx context.Context, rollbackData map[string]any) error {
	branchName, ok := rollbackData[rollbackKeyBranchName].(string)
	if !ok {
		return fmt.Errorf("%s not found in rollback data", rollbackKeyBranchName)
	}
	if created, ok := rollbackData[rollbackKeyCreated].(bool); ok && !created {
		ca.log.Info("Branch existed before this session, skipping deletion", zap.String("branch", branchName))
		return nil
	}
	if err := ca.switchFromBranchIfNeeded(ctx, branchName, rollbackData); err != nil {
		return err
	}
	if !ca.branchExistsLocally(ctx, branchName) {
		return nil
	}
	if err := ca.gitRepo.DeleteBranch(ctx, branchName); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branchName, err)
	}
	return nil
}

// RestoreWorktree discards the version file change while the temporary branch is still checked out
func (ca *CompensatingActions) RestoreWorktree(ctx context.Context, rollbackData map[string]any) error {
	headCommit, _ := rollbackData[rollbackKeyHeadCommit].(string)
	branchName, _ := rollbackData[rollbackKeyBranchName].(string)
	if headCommit == "" || branchName == "" {
		return nil
	}
	currentBranch, err := ca.gitRepo.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current branch: %w", err)
	}
	// Anywhere else the change is already gone with the temp branch.
	if currentBranch != branchName {
		ca.log.Debug("Not on temporary branch, skipping worktree reset", zap.String("branch", currentBranch))
		return nil
	}
	return ca.gitRepo.ResetHard(ctx, headCommit)
}

// DeleteTag idempotently removes the local release tag
func (ca *CompensatingActions) DeleteTag(ctx context.Context, rollbackData map[string]any) error {
	tagName, ok := rollbackData[rollbackKeyTagName].(string)
	if !ok || tagName == "" {
		return nil
	}
	exists, err := ca.gitRepo.TagExists(ctx, tagName)
	if err != nil {
		return fmt.Errorf("failed to check tag %s: %w", tagName, err)
	}
	if !exists {
		return nil
	}
	return ca.gitRepo.DeleteTag(ctx, tagName)
}

// WarnPushedTag cannot undo a push; it only reports the tag left on the remote
func (ca *CompensatingActions) WarnPushedTag(_ context.Context, rollbackData map[string]any) error {
	tagName, _ := rollbackData[rollbackKeyTagName].(string)
	ca.log.Warn("Tag was already pushed and must be removed from the remote manually",
		zap.String("tag", tagName))
	return nil
}

// DeleteGithubRelease idempotently removes a published GitHub release
func (ca *CompensatingActions) DeleteGithubRelease(ctx context.Context, rollbackData map[string]any) error {
	id := extractReleaseID(rollbackData)
	if id == 0 || ca.githubRepo == nil {
		return nil
	}
	if err := ca.githubRepo.DeleteRelease(ctx, id); err != nil {
		return fmt.Errorf("failed to delete GitHub release %d: %w", id, err)
	}
	return nil
}

// NoOp is a no-operation compensating action for operations that don't need rollback
func (ca *CompensatingActions) NoOp(_ context.Context, _ map[string]any) error {
	return nil
}

// switchFromBranchIfNeeded switches away from the branch if currently on it
func (ca *CompensatingActions) switchFromBranchIfNeeded(
	ctx context.Context,
	branchName string,
	rollbackData map[string]any,
) error {
	currentBranch, err := ca.gitRepo.CurrentBranch(ctx)
	if err != nil || currentBranch != branchName {
		return nil // Not on the branch, nothing to do
	}
	originalBranch, ok := rollbackData[rollbackKeyOriginalBranch].(string)
	if !ok || originalBranch == "" {
		return fmt.Errorf("cannot switch from branch %s: original branch unknown", branchName)
	}
	if _, err := ca.gitRepo.CheckoutBranch(ctx, originalBranch); err != nil {
		return fmt.Errorf("cannot switch from branch %s to %s: %w", branchName, originalBranch, err)
	}
	return nil
}

func (ca *CompensatingActions) branchExistsLocally(ctx context.Context, branchName string) bool {
	branches, err := ca.gitRepo.ListLocalBranches(ctx)
	if err != nil {
		return false
	}
	return slices.Contains(branches, branchName)
}

func extractReleaseID(rollbackData map[string]any) int64 {
	switch id := rollbackData[rollbackKeyReleaseID].(type) {
	case int64:
		return id
	case int:
		return int64(id)
	case float64:
		// JSON unmarshaling
		return int64(id)
	}
	return 0
}
