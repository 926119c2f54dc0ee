package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"
)

var (
	// ErrRepositoryNotOpen is returned when an operation runs without an open working copy.
	ErrRepositoryNotOpen = errors.New("git repository is not open")
	// ErrBranchExists is returned when creating a branch whose name is taken.
	ErrBranchExists = errors.New("branch already exists")
	// ErrDeleteCheckedOutBranch mirrors git refusing to delete the branch HEAD points at.
	ErrDeleteCheckedOutBranch = errors.New("cannot delete the checked out branch")
)

const (
	// DefaultRemoteName is the remote tags are pushed to when none is configured.
	DefaultRemoteName = "origin"
	// TagBranchPrefix names the local branch created when checking out a tag.
	TagBranchPrefix = "tags/"

	fallbackAuthorName  = "git-release"
	fallbackAuthorEmail = "git-release@localhost"
)

// GitOptions tunes the go-git backed command set.
type GitOptions struct {
	RemoteName  string
	AuthorName  string
	AuthorEmail string
}

// gitRepository is the implementation of the GitExtendedRepository interface.

type gitRepository struct {
	repo *git.Repository
	opts GitOptions
	log  *zap.Logger
}

// NewGitRepository opens the working copy containing path.
func NewGitRepository(path string, opts GitOptions, log *zap.Logger) (GitExtendedRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return NewGitRepositoryFromHandle(repo, opts, log), nil
}

// NewGitRepositoryFromHandle wraps an already opened repository.
func NewGitRepositoryFromHandle(repo *git.Repository, opts GitOptions, log *zap.Logger) GitExtendedRepository {
	return newGitRepository(repo, opts, log)
}

func newGitRepository(repo *git.Repository, opts GitOptions, log *zap.Logger) *gitRepository {
	if opts.RemoteName == "" {
		opts.RemoteName = DefaultRemoteName
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &gitRepository{repo: repo, opts: opts, log: log}
}

// CurrentBranch returns the short name of the checked out branch, or the
// commit hash when HEAD is detached.
func (r *gitRepository) CurrentBranch(_ context.Context) (string, error) {
	if r.repo == nil {
		return "", ErrRepositoryNotOpen
	}
	r.log.Info("Getting current branch")
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return head.Hash().String(), nil
	}
	return head.Name().Short(), nil
}

// BranchExists reports whether a local branch with the given short name exists.
func (r *gitRepository) BranchExists(ctx context.Context, name string) (bool, error) {
	if r.repo == nil {
		return false, ErrRepositoryNotOpen
	}
	r.log.Info(fmt.Sprintf("Checking if branch %s exists", name), zap.String("branch", name))
	branches, err := r.ListLocalBranches(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateBranch creates a branch at HEAD. When checkout is set the working
// copy is switched to it and the checkout result is returned.
func (r *gitRepository) CreateBranch(_ context.Context, name string, checkout bool) (*plumbing.Reference, error) {
	if r.repo == nil {
		return nil, ErrRepositoryNotOpen
	}
	msg := fmt.Sprintf("Creating branch %s", name)
	if checkout {
		msg += " and checkout"
	}
	r.log.Info(msg, zap.String("branch", name), zap.Bool("checkout", checkout))

	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, false); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	ref := plumbing.NewHashReference(branchRef, head.Hash())
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return nil, fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	if !checkout {
		return ref, nil
	}
	return r.checkout(&git.CheckoutOptions{Branch: branchRef})
}

// CheckoutBranch switches the working copy to an existing branch.
func (r *gitRepository) CheckoutBranch(_ context.Context, name string) (*plumbing.Reference, error) {
	if r.repo == nil {
		return nil, ErrRepositoryNotOpen
	}
	r.log.Info(fmt.Sprintf("Checkout %s branch", name), zap.String("branch", name))
	ref, err := r.checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(name)})
	if err != nil {
		return nil, fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return ref, nil
}

// CheckoutTag creates the local branch tags/<tag> at the tagged commit and
// checks it out, leaving a writable working copy.
func (r *gitRepository) CheckoutTag(_ context.Context, tag string) error {
	if r.repo == nil {
		return ErrRepositoryNotOpen
	}
	r.log.Info(fmt.Sprintf("Checkout %s tag", tag), zap.String("tag", tag))
	tagRef, err := r.repo.Tag(tag)
	if err != nil {
		return fmt.Errorf("failed to get tag %s: %w", tag, err)
	}
	commit, err := r.resolveTagCommit(tagRef)
	if err != nil {
		return fmt.Errorf("failed to resolve tag %s: %w", tag, err)
	}
	_, err = r.checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(TagBranchPrefix + tag),
		Hash:   commit,
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("failed to checkout tag %s: %w", tag, err)
	}
	return nil
}

// CreateTag creates an annotated tag at HEAD.
func (r *gitRepository) CreateTag(_ context.Context, name, comment string) (*plumbing.Reference, error) {
	if r.repo == nil {
		return nil, ErrRepositoryNotOpen
	}
	r.log.Info(fmt.Sprintf("Creating tag %s with comment %s", name, comment), zap.String("tag", name))
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	ref, err := r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Message: comment,
		Tagger:  r.signature(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return ref, nil
}

// DeleteBranch force-deletes a local branch, merged or not.
func (r *gitRepository) DeleteBranch(_ context.Context, name string) error {
	if r.repo == nil {
		return ErrRepositoryNotOpen
	}
	r.log.Info(fmt.Sprintf("Deleting branch %s", name), zap.String("branch", name))
	refName := plumbing.NewBranchReferenceName(name)
	if head, err := r.repo.Head(); err == nil && head.Name() == refName {
		return fmt.Errorf("%w: %s", ErrDeleteCheckedOutBranch, name)
	}
	if err := r.repo.Storer.RemoveReference(refName); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	// Tracking configuration only exists for some branches.
	if err := r.repo.DeleteBranch(name); err != nil && !errors.Is(err, git.ErrBranchNotFound) {
		return fmt.Errorf("failed to delete branch config %s: %w", name, err)
	}
	return nil
}

// CommitFilesInIndex stages every change in the working copy and commits it.
func (r *gitRepository) CommitFilesInIndex(_ context.Context, message string) error {
	if r.repo == nil {
		return ErrRepositoryNotOpen
	}
	r.log.Info("Committing files")
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	sig := r.signature()
	if _, err := w.Commit(message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}
	return nil
}

// PushTag pushes exactly tagRef to the configured remote using basic auth.
func (r *gitRepository) PushTag(ctx context.Context, creds *domain.Credentials, tagRef *plumbing.Reference) error {
	if r.repo == nil {
		return ErrRepositoryNotOpen
	}
	if tagRef == nil {
		return fmt.Errorf("tag reference is required")
	}
	r.log.Info(fmt.Sprintf("Pushing tag %s to remote repository", tagRef.Name()),
		zap.String("remote", r.opts.RemoteName))
	spec := config.RefSpec(fmt.Sprintf("%s:%s", tagRef.Name(), tagRef.Name()))
	opts := &git.PushOptions{
		RemoteName: r.opts.RemoteName,
		RefSpecs:   []config.RefSpec{spec},
	}
	if creds.Valid() {
		opts.Auth = &http.BasicAuth{
			Username: creds.Username,
			Password: string(creds.Password),
		}
	}
	err := r.repo.PushContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push tag %s: %w", tagRef.Name().Short(), err)
	}
	return nil
}

// ListLocalBranches returns a list of all local branch names.
func (r *gitRepository) ListLocalBranches(_ context.Context) ([]string, error) {
	if r.repo == nil {
		return nil, ErrRepositoryNotOpen
	}
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var branches []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}
	return branches, nil
}

// ListTags returns the short names of all tags.
func (r *gitRepository) ListTags(_ context.Context) ([]string, error) {
	if r.repo == nil {
		return nil, ErrRepositoryNotOpen
	}
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// TagExists checks if a tag exists.
func (r *gitRepository) TagExists(_ context.Context, tag string) (bool, error) {
	if r.repo == nil {
		return false, ErrRepositoryNotOpen
	}
	_, err := r.repo.Tag(tag)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return true, nil
}

// DeleteTag removes a local tag.
func (r *gitRepository) DeleteTag(_ context.Context, tag string) error {
	if r.repo == nil {
		return ErrRepositoryNotOpen
	}
	r.log.Info(fmt.Sprintf("Deleting tag %s", tag), zap.String("tag", tag))
	if err := r.repo.DeleteTag(tag); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tag, err)
	}
	return nil
}

// HeadCommit returns the SHA of the current HEAD commit.
func (r *gitRepository) HeadCommit(_ context.Context) (string, error) {
	if r.repo == nil {
		return "", ErrRepositoryNotOpen
	}
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ResetHard performs a hard reset to the specified revision.
func (r *gitRepository) ResetHard(_ context.Context, ref string) error {
	if r.repo == nil {
		return ErrRepositoryNotOpen
	}
	r.log.Info(fmt.Sprintf("Resetting working copy to %s", ref))
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("failed to resolve revision %s: %w", ref, err)
	}
	if err := w.Reset(&git.ResetOptions{Commit: *hash, Mode: git.HardReset}); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", ref, err)
	}
	return nil
}

// checkout runs a worktree checkout and returns the resulting HEAD.
func (r *gitRepository) checkout(opts *git.CheckoutOptions) (*plumbing.Reference, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.Checkout(opts); err != nil {
		return nil, err
	}
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head, nil
}

// resolveTagCommit resolves a tag reference to its commit hash.
func (r *gitRepository) resolveTagCommit(tagRef *plumbing.Reference) (plumbing.Hash, error) {
	// Try as lightweight tag first
	if commit, err := r.repo.CommitObject(tagRef.Hash()); err == nil {
		return commit.Hash, nil
	}
	if tagObj, err := r.repo.TagObject(tagRef.Hash()); err == nil {
		if commit, err := tagObj.Commit(); err == nil {
			return commit.Hash, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("tag %s does not point at a commit", tagRef.Name().Short())
}

// signature picks the configured author, then the repository user, then a fixed fallback.
func (r *gitRepository) signature() *object.Signature {
	name, email := r.opts.AuthorName, r.opts.AuthorEmail
	if name == "" || email == "" {
		if cfg, err := r.repo.ConfigScoped(config.GlobalScope); err == nil {
			if name == "" {
				name = cfg.User.Name
			}
			if email == "" {
				email = cfg.User.Email
			}
		}
	}
	if name == "" {
		name = fallbackAuthorName
	}
	if email == "" {
		email = fallbackAuthorEmail
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}
}
