package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/gitrelease/internal/config"
	"github.com/google/go-github/v74/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// githubRepository is the implementation of the GithubRepository interface.
type githubRepository struct {
	client *github.Client
	owner  string
	repo   string
	log    *zap.Logger
}

// NewGithubRepository creates a new GithubRepository with validation.
func NewGithubRepository(token, owner, repo string, log *zap.Logger) (GithubRepository, error) {
	if err := config.ValidateGitHubToken(token); err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", err)
	}
	if err := config.ValidateGitHubOwnerRepo(owner, repo); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token)},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return newGithubRepository(github.NewClient(tc), owner, repo, log), nil
}

func newGithubRepository(client *github.Client, owner, repo string, log *zap.Logger) *githubRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &githubRepository{client: client, owner: owner, repo: repo, log: log}
}

// CreateRelease publishes a GitHub release for an already pushed tag.
func (r *githubRepository) CreateRelease(ctx context.Context, tag, name, body string) (int64, error) {
	r.log.Info(fmt.Sprintf("Publishing GitHub release %s", tag),
		zap.String("owner", r.owner), zap.String("repo", r.repo))
	release, _, err := r.client.Repositories.CreateRelease(ctx, r.owner, r.repo, &github.RepositoryRelease{
		TagName: github.Ptr(tag),
		Name:    github.Ptr(name),
		Body:    github.Ptr(body),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create release %s: %w", tag, err)
	}
	return release.GetID(), nil
}

// DeleteRelease removes a published release, keeping the tag.
func (r *githubRepository) DeleteRelease(ctx context.Context, id int64) error {
	r.log.Info("Deleting GitHub release", zap.Int64("id", id))
	if _, err := r.client.Repositories.DeleteRelease(ctx, r.owner, r.repo, id); err != nil {
		return fmt.Errorf("failed to delete release %d: %w", id, err)
	}
	return nil
}
