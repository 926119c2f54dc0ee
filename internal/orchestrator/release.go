package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/interactor"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/compozy/gitrelease/internal/usecase"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

const (
	// ReleaseVersionPrompt asks for the version to release.
	ReleaseVersionPrompt = "Please specify release version"
	confirmPromptFormat  = "Create release %s? (yes/no)"
)

// ErrReleaseAborted is returned when the user does not confirm the release.
var ErrReleaseAborted = errors.New("release aborted by user")

// ReleaseConfig contains the per-run switches of the release workflow.
type ReleaseConfig struct {
	DryRun         bool   // Tag locally without pushing or publishing
	EnableRollback bool   // Persist saga state so a failed session can be rolled back later
	Rollback       bool   // Perform rollback of failed session
	SessionID      string // Session ID for rollback operations
}

// ReleaseOptions carries the configuration the release workflow depends on.
type ReleaseOptions struct {
	BranchPrefix  string
	TagPrefix     string
	VersionFile   string
	GitLogin      string
	GitPassword   string
	PublishGithub bool
}

// ReleaseOrchestrator cuts a patch release from the current release branch.
type ReleaseOrchestrator struct {
	gitRepo    repository.GitExtendedRepository
	githubRepo repository.GithubRepository
	fsRepo     repository.FileSystemRepository
	stateRepo  repository.StateRepository
	ui         interactor.UserInteractor
	opts       ReleaseOptions
	log        *zap.Logger
}

// NewReleaseOrchestrator creates a new release orchestrator.
func NewReleaseOrchestrator(
	gitRepo repository.GitExtendedRepository,
	githubRepo repository.GithubRepository,
	fsRepo repository.FileSystemRepository,
	stateRepo repository.StateRepository,
	ui interactor.UserInteractor,
	opts ReleaseOptions,
	log *zap.Logger,
) *ReleaseOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReleaseOrchestrator{
		gitRepo:    gitRepo,
		githubRepo: githubRepo,
		fsRepo:     fsRepo,
		stateRepo:  stateRepo,
		ui:         ui,
		opts:       opts,
		log:        log,
	}
}

// workflowContext is shared by the steps of one run.
type workflowContext struct {
	releaseBranch domain.ReleaseBranch
	baseBranch    string
	release       *domain.Release
	headCommit    string
	tagRef        *plumbing.Reference
	creds         *domain.Credentials
}

func (w *workflowContext) wipeCredentials() {
	w.creds.Wipe()
}

// Execute runs the release workflow, or rolls back a failed session when cfg.Rollback is set.
func (o *ReleaseOrchestrator) Execute(ctx context.Context, cfg ReleaseConfig) error {
	if cfg.Rollback {
		return o.performRollback(ctx, cfg.SessionID)
	}
	ctx, cancel := context.WithTimeout(ctx, ReleaseWorkflowTimeout)
	defer cancel()

	saga := NewSagaExecutor(o.stateRepo, cfg.EnableRollback, o.log)
	wctx := &workflowContext{}
	defer wctx.wipeCredentials()
	o.buildWorkflow(saga, cfg, wctx)

	if err := saga.Execute(ctx); err != nil {
		if errors.Is(err, ErrReleaseAborted) {
			o.ui.Info("Release aborted")
			return nil
		}
		o.ui.Error(fmt.Sprintf("Release failed: %v", err))
		if cfg.EnableRollback {
			o.ui.Info(fmt.Sprintf("Release state saved as session %s", saga.SessionID()))
		}
		return fmt.Errorf("workflow failed: %w", err)
	}
	if cfg.DryRun {
		o.ui.Info(fmt.Sprintf("Dry run complete: tag %s created locally, nothing pushed", wctx.release.TagName))
		return nil
	}
	o.ui.Info(fmt.Sprintf("Release %s completed", wctx.release.TagName))
	return nil
}

func (o *ReleaseOrchestrator) buildWorkflow(saga *SagaExecutor, cfg ReleaseConfig, wctx *workflowContext) {
	compensator := NewCompensatingActions(o.gitRepo, o.githubRepo, o.log)
	o.addCheckReleaseBranchStep(saga, compensator, wctx)
	o.addCalculateVersionStep(saga, compensator, wctx)
	o.addCreateTempBranchStep(saga, compensator, wctx)
	o.addUpdateVersionFileStep(saga, compensator, wctx)
	o.addCommitChangesStep(saga, compensator, wctx)
	o.addCreateTagStep(saga, compensator, wctx)
	o.addRestoreBranchStep(saga, compensator, wctx)
	o.addResolveCredentialsStep(saga, cfg, compensator, wctx)
	o.addPushTagStep(saga, cfg, compensator, wctx)
	o.addPublishReleaseStep(saga, cfg, compensator, wctx)
}

func (o *ReleaseOrchestrator) addCheckReleaseBranchStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Check Release Branch",
		Type: domain.OperationTypeCheckReleaseBranch,
		Execute: func(ctx context.Context) (map[string]any, error) {
			current, err := o.gitRepo.CurrentBranch(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to get current branch: %w", err)
			}
			o.ui.Info(fmt.Sprintf("Current branch: %s", current))
			rb, err := domain.ParseReleaseBranch(o.opts.BranchPrefix, current)
			if err != nil {
				o.ui.Error(fmt.Sprintf("Releases are cut from %sx.y branches, current branch is %s",
					o.opts.BranchPrefix, current))
				return nil, err
			}
			wctx.releaseBranch = rb
			wctx.baseBranch = current
			saga.SetOriginalBranch(current)
			return map[string]any{rollbackKeyOriginalBranch: current}, nil
		},
		Compensate: compensator.NoOp,
	})
}

func (o *ReleaseOrchestrator) addCalculateVersionStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Calculate Version",
		Type: domain.OperationTypeCalculateVersion,
		Execute: func(ctx context.Context) (map[string]any, error) {
			release, err := o.askRelease(ctx, wctx)
			if err != nil {
				return nil, err
			}
			answer, err := o.ui.PromptQuestion(fmt.Sprintf(confirmPromptFormat, release.TagName), "no")
			if err != nil {
				return nil, err
			}
			if !isConfirmation(answer) {
				return nil, ErrReleaseAborted
			}
			wctx.release = release
			saga.SetVersion(release.Version.Plain())
			saga.SetTagName(release.TagName)
			return map[string]any{
				"version":          release.Version.Plain(),
				rollbackKeyTagName: release.TagName,
			}, nil
		},
		Compensate: compensator.NoOp,
	})
}

// askRelease prompts for the version and checks it belongs to the release line and is not tagged yet.
func (o *ReleaseOrchestrator) askRelease(ctx context.Context, wctx *workflowContext) (*domain.Release, error) {
	next := &usecase.NextReleaseVersionUseCase{GitRepo: o.gitRepo, TagPrefix: o.opts.TagPrefix}
	proposed, err := next.Execute(ctx, wctx.releaseBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate version: %w", err)
	}
	o.showCurrentVersion(ctx)
	answer, err := o.ui.PromptQuestion(ReleaseVersionPrompt, proposed.Plain())
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if err := ValidateVersion(answer); err != nil {
		o.ui.Error(err.Error())
		return nil, err
	}
	version, err := domain.NewVersion(answer)
	if err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	if !wctx.releaseBranch.Contains(version) {
		err := fmt.Errorf("version %s does not belong to release branch %s",
			version.Plain(), wctx.baseBranch)
		o.ui.Error(err.Error())
		return nil, err
	}
	release := domain.NewRelease(version, o.opts.TagPrefix, wctx.baseBranch)
	if err := ValidateTagName(release.TagName); err != nil {
		o.ui.Error(err.Error())
		return nil, err
	}
	exists, err := o.gitRepo.TagExists(ctx, release.TagName)
	if err != nil {
		return nil, fmt.Errorf("failed to check tag existence: %w", err)
	}
	if exists {
		err := fmt.Errorf("tag %s already exists", release.TagName)
		o.ui.Error(err.Error())
		return nil, err
	}
	return release, nil
}

// showCurrentVersion tells the user what the version file holds before the
// release version is asked. An unreadable file is left to the update step.
func (o *ReleaseOrchestrator) showCurrentVersion(ctx context.Context) {
	uc := &usecase.UpdateVersionFileUseCase{FS: o.fsRepo, Path: o.opts.VersionFile}
	current, err := uc.ReadVersion(ctx)
	if err != nil {
		o.log.Warn("Failed to read version file", zap.String("file", o.opts.VersionFile), zap.Error(err))
		return
	}
	if current != "" {
		o.ui.Info(fmt.Sprintf("Current version in %s: %s", o.opts.VersionFile, current))
	}
}

func (o *ReleaseOrchestrator) addCreateTempBranchStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Create Temporary Branch",
		Type: domain.OperationTypeCreateTempBranch,
		Execute: func(ctx context.Context) (map[string]any, error) {
			tempBranch := wctx.release.TempBranch
			if err := ValidateBranchName(tempBranch); err != nil {
				return nil, fmt.Errorf("invalid branch name: %w", err)
			}
			exists, err := o.gitRepo.BranchExists(ctx, tempBranch)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("branch %s is left over from an earlier run, delete it or roll that session back",
					tempBranch)
			}
			head, err := o.gitRepo.HeadCommit(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to get HEAD commit: %w", err)
			}
			wctx.headCommit = head
			if _, err := o.gitRepo.CreateBranch(ctx, tempBranch, true); err != nil {
				return nil, fmt.Errorf("failed to create temporary branch: %w", err)
			}
			saga.SetBranchName(tempBranch)
			return map[string]any{
				rollbackKeyBranchName:     tempBranch,
				rollbackKeyOriginalBranch: wctx.baseBranch,
				rollbackKeyHeadCommit:     head,
				rollbackKeyCreated:        true,
			}, nil
		},
		Compensate: compensator.DeleteTempBranch,
	})
}

func (o *ReleaseOrchestrator) addUpdateVersionFileStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Update Version File",
		Type: domain.OperationTypeUpdateVersionFile,
		Execute: func(ctx context.Context) (map[string]any, error) {
			uc := &usecase.UpdateVersionFileUseCase{FS: o.fsRepo, Path: o.opts.VersionFile}
			if err := uc.Execute(ctx, wctx.release.Version); err != nil {
				return nil, err
			}
			return map[string]any{
				rollbackKeyBranchName: wctx.release.TempBranch,
				rollbackKeyHeadCommit: wctx.headCommit,
				"file":                o.opts.VersionFile,
			}, nil
		},
		Compensate: compensator.RestoreWorktree,
	})
}

func (o *ReleaseOrchestrator) addCommitChangesStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Commit Changes",
		Type: domain.OperationTypeCommitChanges,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if err := o.gitRepo.CommitFilesInIndex(ctx, wctx.release.CommitMessage()); err != nil {
				return nil, fmt.Errorf("failed to commit changes: %w", err)
			}
			commit, err := o.gitRepo.HeadCommit(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to get HEAD commit: %w", err)
			}
			return map[string]any{"commit_sha": commit}, nil
		},
		// The commit only lives on the temporary branch, which its own compensation deletes.
		Compensate: compensator.NoOp,
	})
}

func (o *ReleaseOrchestrator) addCreateTagStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Create Tag",
		Type: domain.OperationTypeCreateTag,
		Execute: func(ctx context.Context) (map[string]any, error) {
			uc := &usecase.CreateGitTagUseCase{GitRepo: o.gitRepo}
			ref, err := uc.Execute(ctx, wctx.release)
			if err != nil {
				return nil, err
			}
			wctx.tagRef = ref
			return map[string]any{rollbackKeyTagName: wctx.release.TagName}, nil
		},
		Compensate: compensator.DeleteTag,
	})
}

func (o *ReleaseOrchestrator) addRestoreBranchStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Restore Release Branch",
		Type: domain.OperationTypeRestoreBranch,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if _, err := o.gitRepo.CheckoutBranch(ctx, wctx.baseBranch); err != nil {
				return nil, fmt.Errorf("failed to checkout %s: %w", wctx.baseBranch, err)
			}
			if err := o.gitRepo.DeleteBranch(ctx, wctx.release.TempBranch); err != nil {
				return nil, fmt.Errorf("failed to delete temporary branch: %w", err)
			}
			return map[string]any{rollbackKeyBranchName: wctx.baseBranch}, nil
		},
		Compensate: compensator.NoOp,
	})
}

// addResolveCredentialsStep prompts for missing credentials once, outside
// the retried push.
func (o *ReleaseOrchestrator) addResolveCredentialsStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Resolve Credentials",
		Type: domain.OperationTypeResolveCredentials,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if cfg.DryRun {
				return map[string]any{"skipped": true}, nil
			}
			resolve := &usecase.ResolveCredentialsUseCase{
				Interactor: o.ui,
				Login:      o.opts.GitLogin,
				Password:   o.opts.GitPassword,
			}
			creds, err := resolve.Execute(ctx)
			if err != nil {
				return nil, err
			}
			wctx.creds = creds
			return map[string]any{"login": creds.Username}, nil
		},
		Compensate: compensator.NoOp,
	})
}

func (o *ReleaseOrchestrator) addPushTagStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name:      "Push Tag",
		Type:      domain.OperationTypePushTag,
		Retryable: true,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if cfg.DryRun {
				o.ui.Info(fmt.Sprintf("Dry run: skipping push of tag %s", wctx.release.TagName))
				return map[string]any{"skipped": true}, nil
			}
			push := &usecase.PushTagUseCase{GitRepo: o.gitRepo}
			if err := push.Execute(ctx, wctx.creds, wctx.tagRef); err != nil {
				return nil, err
			}
			o.ui.Info(fmt.Sprintf("Tag %s pushed", wctx.release.TagName))
			return map[string]any{rollbackKeyTagName: wctx.release.TagName}, nil
		},
		Compensate: compensator.WarnPushedTag,
	})
}

func (o *ReleaseOrchestrator) addPublishReleaseStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name:      "Publish GitHub Release",
		Type:      domain.OperationTypePublishRelease,
		Retryable: true,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if cfg.DryRun || !o.opts.PublishGithub || o.githubRepo == nil {
				return map[string]any{"skipped": true}, nil
			}
			tag := wctx.release.TagName
			id, err := o.githubRepo.CreateRelease(ctx, tag, tag, wctx.release.CommitMessage())
			if err != nil {
				return nil, err
			}
			o.ui.Info(fmt.Sprintf("GitHub release %s published", tag))
			return map[string]any{rollbackKeyReleaseID: id}, nil
		},
		Compensate: compensator.DeleteGithubRelease,
	})
}

// performRollback rolls back a failed release session
func (o *ReleaseOrchestrator) performRollback(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		// Load the latest session if no ID provided
		state, err := o.stateRepo.LoadLatest(ctx)
		if err != nil {
			return fmt.Errorf("failed to load latest session: %w", err)
		}
		sessionID = state.SessionID
	}
	saga, err := LoadExistingSaga(ctx, o.stateRepo, sessionID, o.log)
	if err != nil {
		return fmt.Errorf("failed to load saga: %w", err)
	}
	if saga.GetState().Status == domain.WorkflowStatusCompleted {
		return fmt.Errorf("session %s completed successfully, nothing to roll back", sessionID)
	}
	compensator := NewCompensatingActions(o.gitRepo, o.githubRepo, o.log)
	// The loaded saga has no function pointers, so attach the compensations again.
	o.rebuildSagaSteps(saga, compensator)
	if err := saga.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	o.ui.Info(fmt.Sprintf("Rollback of session %s completed", sessionID))
	return nil
}

// rebuildSagaSteps rebuilds the saga steps with compensating actions
func (o *ReleaseOrchestrator) rebuildSagaSteps(saga *SagaExecutor, compensator *CompensatingActions) {
	compensateMap := map[domain.OperationType]func(context.Context, map[string]any) error{
		domain.OperationTypeCheckReleaseBranch: compensator.NoOp,
		domain.OperationTypeCalculateVersion:   compensator.NoOp,
		domain.OperationTypeCreateTempBranch:   compensator.DeleteTempBranch,
		domain.OperationTypeUpdateVersionFile:  compensator.RestoreWorktree,
		domain.OperationTypeCommitChanges:      compensator.NoOp,
		domain.OperationTypeCreateTag:          compensator.DeleteTag,
		domain.OperationTypeRestoreBranch:      compensator.NoOp,
		domain.OperationTypeResolveCredentials: compensator.NoOp,
		domain.OperationTypePushTag:            compensator.WarnPushedTag,
		domain.OperationTypePublishRelease:     compensator.DeleteGithubRelease,
	}
	for _, op := range saga.GetState().Operations {
		if compensate, ok := compensateMap[op.Type]; ok {
			saga.restoreStep(SagaStep{
				Name:       string(op.Type),
				Type:       op.Type,
				Compensate: compensate,
			})
		}
	}
}

func isConfirmation(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
