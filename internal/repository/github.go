package repository

import "context"

// GithubRepository defines the GitHub API operations run after a tag is pushed.

type GithubRepository interface {
	CreateRelease(ctx context.Context, tag, name, body string) (int64, error)
	DeleteRelease(ctx context.Context, id int64) error
}
