package repository

import (
	"context"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitRepository is the release-facing command set over one open working copy.
// Every operation logs one progress line before delegating to go-git.

type GitRepository interface {
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) (bool, error)
	CreateBranch(ctx context.Context, name string, checkout bool) (*plumbing.Reference, error)
	CheckoutBranch(ctx context.Context, name string) (*plumbing.Reference, error)
	CheckoutTag(ctx context.Context, tag string) error
	CreateTag(ctx context.Context, name, comment string) (*plumbing.Reference, error)
	DeleteBranch(ctx context.Context, name string) error
	CommitFilesInIndex(ctx context.Context, message string) error
	PushTag(ctx context.Context, creds *domain.Credentials, tagRef *plumbing.Reference) error
}

// GitExtendedRepository adds the read and cleanup operations the release workflows need.
type GitExtendedRepository interface {
	GitRepository
	// Branch operations
	ListLocalBranches(ctx context.Context) ([]string, error)
	// Tag operations
	ListTags(ctx context.Context) ([]string, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	DeleteTag(ctx context.Context, tag string) error
	// Worktree operations
	HeadCommit(ctx context.Context) (string, error)
	ResetHard(ctx context.Context, ref string) error
}
