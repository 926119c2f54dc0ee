package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/compozy/gitrelease/internal/config"
	"github.com/compozy/gitrelease/internal/interactor"
	"github.com/compozy/gitrelease/internal/logger"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.

type container struct {
	cfg *config.Config
	log *zap.Logger

	fsRepo    repository.FileSystemRepository
	gitRepo   repository.GitExtendedRepository
	ghRepo    repository.GithubRepository
	stateRepo repository.StateRepository
	ui        interactor.UserInteractor
}

// newContainer loads the configuration from the working directory and wires
// the repositories against cfg.RepoPath.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	log, err := logger.GetLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	gitRepo, err := repository.NewGitRepository(cfg.RepoPath, repository.GitOptions{
		RemoteName:  cfg.RemoteName,
		AuthorName:  cfg.AuthorName,
		AuthorEmail: cfg.AuthorEmail,
	}, log)
	if err != nil {
		return nil, err
	}

	osFs := afero.NewOsFs()
	fsRepo := repository.FileSystemRepository(afero.NewBasePathFs(osFs, cfg.RepoPath))
	stateRepo := repository.NewJSONStateRepository(osFs, filepath.Join(cfg.RepoPath, cfg.StateDir), log)

	// GitHub publishing is optional - only create the client if a token is provided
	ghRepo := repository.NewGithubNoopRepository(cfg.GithubOwner, cfg.GithubRepo)
	if cfg.HasGithub() {
		ghRepo, err = repository.NewGithubRepository(cfg.GithubToken, cfg.GithubOwner, cfg.GithubRepo, log)
		if err != nil {
			return nil, err
		}
	}

	return &container{
		cfg:       cfg,
		log:       log,
		fsRepo:    fsRepo,
		gitRepo:   gitRepo,
		ghRepo:    ghRepo,
		stateRepo: stateRepo,
		ui:        interactor.NewTerminalInteractor(log),
	}, nil
}

// close flushes the logger.
func (c *container) close() {
	_ = c.log.Sync()
}

// InitCommands registers every subcommand on the root command
func InitCommands() error {
	rootCmd.AddCommand(
		newCreateReleaseBranchCmd(),
		newCreateReleaseCmd(),
		newListReleasesCmd(),
		newVersionCmd(),
	)
	return nil
}
