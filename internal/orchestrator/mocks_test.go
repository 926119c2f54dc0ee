package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock for GitExtendedRepository - implements ALL methods from GitExtendedRepository interface
type mockGitExtendedRepository struct{ mock.Mock }

// GitRepository methods
func (m *mockGitExtendedRepository) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *mockGitExtendedRepository) BranchExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}
func (m *mockGitExtendedRepository) CreateBranch(
	ctx context.Context,
	name string,
	checkout bool,
) (*plumbing.Reference, error) {
	args := m.Called(ctx, name, checkout)
	ref, _ := args.Get(0).(*plumbing.Reference)
	return ref, args.Error(1)
}
func (m *mockGitExtendedRepository) CheckoutBranch(ctx context.Context, name string) (*plumbing.Reference, error) {
	args := m.Called(ctx, name)
	ref, _ := args.Get(0).(*plumbing.Reference)
	return ref, args.Error(1)
}
func (m *mockGitExtendedRepository) CheckoutTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}
func (m *mockGitExtendedRepository) CreateTag(ctx context.Context, name, comment string) (*plumbing.Reference, error) {
	args := m.Called(ctx, name, comment)
	ref, _ := args.Get(0).(*plumbing.Reference)
	return ref, args.Error(1)
}
func (m *mockGitExtendedRepository) DeleteBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
func (m *mockGitExtendedRepository) CommitFilesInIndex(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
func (m *mockGitExtendedRepository) PushTag(
	ctx context.Context,
	creds *domain.Credentials,
	tagRef *plumbing.Reference,
) error {
	args := m.Called(ctx, creds, tagRef)
	return args.Error(0)
}

// GitExtendedRepository specific methods
func (m *mockGitExtendedRepository) ListLocalBranches(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	branches, _ := args.Get(0).([]string)
	return branches, args.Error(1)
}
func (m *mockGitExtendedRepository) ListTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}
func (m *mockGitExtendedRepository) TagExists(ctx context.Context, tag string) (bool, error) {
	args := m.Called(ctx, tag)
	return args.Bool(0), args.Error(1)
}
func (m *mockGitExtendedRepository) DeleteTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}
func (m *mockGitExtendedRepository) HeadCommit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *mockGitExtendedRepository) ResetHard(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// Mock for GithubRepository
type mockGithubRepository struct{ mock.Mock }

func (m *mockGithubRepository) CreateRelease(ctx context.Context, tag, name, body string) (int64, error) {
	args := m.Called(ctx, tag, name, body)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockGithubRepository) DeleteRelease(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStateRepository is a mock implementation of StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Save(ctx context.Context, state *domain.RollbackState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) Load(ctx context.Context, sessionID string) (*domain.RollbackState, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RollbackState), args.Error(1)
}

func (m *MockStateRepository) LoadLatest(ctx context.Context) (*domain.RollbackState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RollbackState), args.Error(1)
}

func (m *MockStateRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockStateRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

// setupTestRepo creates a repository on master whose first commit holds a version file.
func setupTestRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, dir, repo, "gradle.properties", "# project\nversion=1.2.0-SNAPSHOT\n", "Initial commit")
	return dir, repo
}

func commitFile(t *testing.T, dir string, repo *git.Repository, name, content, message string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
		},
	})
	require.NoError(t, err)
	return hash
}
