package usecase

import (
	"context"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/mock"
)

// Mock for GitExtendedRepository
type mockGitRepository struct {
	mock.Mock
}

func (m *mockGitRepository) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) BranchExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockGitRepository) CreateBranch(ctx context.Context, name string, checkout bool) (*plumbing.Reference, error) {
	args := m.Called(ctx, name, checkout)
	ref, _ := args.Get(0).(*plumbing.Reference)
	return ref, args.Error(1)
}

func (m *mockGitRepository) CheckoutBranch(ctx context.Context, name string) (*plumbing.Reference, error) {
	args := m.Called(ctx, name)
	ref, _ := args.Get(0).(*plumbing.Reference)
	return ref, args.Error(1)
}

func (m *mockGitRepository) CheckoutTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *mockGitRepository) CreateTag(ctx context.Context, name, comment string) (*plumbing.Reference, error) {
	args := m.Called(ctx, name, comment)
	ref, _ := args.Get(0).(*plumbing.Reference)
	return ref, args.Error(1)
}

func (m *mockGitRepository) DeleteBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGitRepository) CommitFilesInIndex(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockGitRepository) PushTag(ctx context.Context, creds *domain.Credentials, tagRef *plumbing.Reference) error {
	args := m.Called(ctx, creds, tagRef)
	return args.Error(0)
}

func (m *mockGitRepository) ListLocalBranches(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	branches, _ := args.Get(0).([]string)
	return branches, args.Error(1)
}

func (m *mockGitRepository) ListTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

func (m *mockGitRepository) TagExists(ctx context.Context, tag string) (bool, error) {
	args := m.Called(ctx, tag)
	return args.Bool(0), args.Error(1)
}

func (m *mockGitRepository) DeleteTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *mockGitRepository) HeadCommit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) ResetHard(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
