package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigName is the config file looked up in the working directory (.git-release.yaml).
	ConfigName = ".git-release"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "GIT_RELEASE"

	// GitLoginKey and GitPasswordKey hold the push credentials.
	GitLoginKey    = "git.login"
	GitPasswordKey = "git.password"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "none"}

// GitConfig holds the credentials used to push release tags.
type GitConfig struct {
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
}

type Config struct {
	Git                 GitConfig `mapstructure:"git"`
	RepoPath            string    `mapstructure:"repo_path"`
	RemoteName          string    `mapstructure:"remote_name"`
	VersionFile         string    `mapstructure:"version_file"`
	ReleaseBranchPrefix string    `mapstructure:"release_branch_prefix"`
	TagPrefix           string    `mapstructure:"tag_prefix"`
	AuthorName          string    `mapstructure:"author_name"`
	AuthorEmail         string    `mapstructure:"author_email"`
	StateDir            string    `mapstructure:"state_dir"`
	LogLevel            string    `mapstructure:"log_level"`
	GithubToken         string    `mapstructure:"github_token"`
	GithubOwner         string    `mapstructure:"github_owner"`
	GithubRepo          string    `mapstructure:"github_repo"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		RepoPath:            ".",
		RemoteName:          "origin",
		VersionFile:         "gradle.properties",
		ReleaseBranchPrefix: "release/",
		StateDir:            ".git/release-state",
		LogLevel:            "info",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RepoPath == "" {
		return errors.New("repo_path cannot be empty")
	}
	if c.RemoteName == "" {
		return errors.New("remote_name cannot be empty")
	}
	if c.VersionFile == "" {
		return errors.New("version_file cannot be empty")
	}
	if strings.Contains(c.VersionFile, "..") {
		return errors.New("version_file contains invalid path traversal")
	}
	if c.ReleaseBranchPrefix == "" {
		return errors.New("release_branch_prefix cannot be empty")
	}
	if strings.ContainsAny(c.TagPrefix, " ~^:?*[\\") {
		return fmt.Errorf("tag_prefix contains characters not allowed in tag names: %q", c.TagPrefix)
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q: expected one of %s", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	// GitHub publishing is optional - only validate if a token is provided
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
		if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.GithubRepo); err != nil {
			return fmt.Errorf("invalid github configuration: %w", err)
		}
	}
	return nil
}

// HasGithub reports whether releases should be published to GitHub.
func (c *Config) HasGithub() bool {
	return c.GithubToken != ""
}

func isValidLogLevel(level string) bool {
	for _, l := range validLogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// ValidateGitHubToken validates GitHub token format (exported for reuse)
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	personalToken := regexp.MustCompile(`^ghp_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) &&
		!personalToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names (exported for reuse)
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

// LoadConfig reads .git-release.yaml from dir, then environment overrides.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// BindEnv allows multiple env vars - it will check them in order
	bindings := map[string][]string{
		GitLoginKey:    {"GIT_RELEASE_GIT_LOGIN", "GIT_LOGIN"},
		GitPasswordKey: {"GIT_RELEASE_GIT_PASSWORD", "GIT_PASSWORD"},
		"github_token": {"GIT_RELEASE_GITHUB_TOKEN", "GITHUB_TOKEN"},
		"github_owner": {"GIT_RELEASE_GITHUB_OWNER", "GITHUB_REPOSITORY_OWNER"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	defaults := DefaultConfig()
	v.SetDefault(GitLoginKey, "")
	v.SetDefault(GitPasswordKey, "")
	v.SetDefault("repo_path", defaults.RepoPath)
	v.SetDefault("remote_name", defaults.RemoteName)
	v.SetDefault("version_file", defaults.VersionFile)
	v.SetDefault("release_branch_prefix", defaults.ReleaseBranchPrefix)
	v.SetDefault("tag_prefix", defaults.TagPrefix)
	v.SetDefault("author_name", "")
	v.SetDefault("author_email", "")
	v.SetDefault("state_dir", defaults.StateDir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("github_token", "")
	v.SetDefault("github_owner", "")
	v.SetDefault("github_repo", "")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
