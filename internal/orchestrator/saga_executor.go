package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// SagaStep represents a single step in the saga workflow
type SagaStep struct {
	Name       string
	Type       domain.OperationType
	Execute    func(ctx context.Context) (rollbackData map[string]any, err error)
	Compensate func(ctx context.Context, rollbackData map[string]any) error
	// Retryable steps are retried with exponential backoff. Steps that
	// prompt the user must not be, or a retry would ask again.
	Retryable bool
}

// SagaExecutor manages the execution of saga workflows with rollback support
type SagaExecutor struct {
	sessionID      string
	stateRepo      repository.StateRepository
	state          *domain.RollbackState
	steps          []SagaStep
	enableRollback bool
	log            *zap.Logger
}

// NewSagaExecutor creates a new saga executor. Compensations always run on
// failure; enableRollback only controls whether state is persisted so a
// later run can roll the session back.
func NewSagaExecutor(stateRepo repository.StateRepository, enableRollback bool, log *zap.Logger) *SagaExecutor {
	if log == nil {
		log = zap.NewNop()
	}
	sessionID := uuid.New().String()
	return &SagaExecutor{
		sessionID:      sessionID,
		stateRepo:      stateRepo,
		state:          domain.NewRollbackState(sessionID),
		steps:          []SagaStep{},
		enableRollback: enableRollback,
		log:            log.With(zap.String("session", sessionID)),
	}
}

// LoadExistingSaga loads an existing saga from state
func LoadExistingSaga(
	ctx context.Context,
	stateRepo repository.StateRepository,
	sessionID string,
	log *zap.Logger,
) (*SagaExecutor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	state, err := stateRepo.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load saga state: %w", err)
	}
	return &SagaExecutor{
		sessionID:      sessionID,
		stateRepo:      stateRepo,
		state:          state,
		steps:          []SagaStep{},
		enableRollback: true,
		log:            log.With(zap.String("session", sessionID)),
	}, nil
}

// AddStep adds a step to the saga
func (s *SagaExecutor) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
	s.state.AddOperation(step.Type)
}

// restoreStep attaches a compensation to an operation already recorded in a loaded state.
func (s *SagaExecutor) restoreStep(step SagaStep) {
	s.steps = append(s.steps, step)
}

// Execute runs the saga workflow with automatic rollback on failure
func (s *SagaExecutor) Execute(ctx context.Context) error {
	if s.enableRollback {
		if err := s.saveState(ctx); err != nil {
			return fmt.Errorf("failed to save initial state: %w", err)
		}
	}
	s.state.Status = domain.WorkflowStatusRunning
	for _, step := range s.steps {
		if err := s.executeStep(ctx, step); err != nil {
			s.state.MarkOperationFailed(step.Type, err)
			s.log.Error("Step failed", zap.String("step", step.Name), zap.Error(err))
			s.bestEffortSave(ctx, "before rollback")
			// Create separate context for rollback to ensure it completes
			rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RollbackTimeout)
			rollbackErr := s.rollback(rollbackCtx)
			cancel()
			if rollbackErr != nil {
				return fmt.Errorf("step '%s' failed: %w, rollback also failed: %v",
					step.Name, err, rollbackErr)
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
	}
	s.state.Status = domain.WorkflowStatusCompleted
	s.bestEffortSave(ctx, "at completion")
	return nil
}

// executeStep executes a single saga step, with retry when the step allows it
func (s *SagaExecutor) executeStep(ctx context.Context, step SagaStep) error {
	s.state.MarkOperationStarted(step.Type)
	s.bestEffortSave(ctx, "after marking operation started")
	s.log.Debug("Executing step", zap.String("step", step.Name))
	var rollbackData map[string]any
	run := func(runCtx context.Context) error {
		// Check if context is canceled before executing
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}
		data, err := step.Execute(runCtx)
		if err != nil {
			return err
		}
		rollbackData = data
		return nil
	}
	var err error
	if step.Retryable {
		retryStrategy := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
		err = retry.Do(ctx, retryStrategy, func(retryCtx context.Context) error {
			if execErr := run(retryCtx); execErr != nil {
				s.log.Warn("Step attempt failed", zap.String("step", step.Name), zap.Error(execErr))
				return retry.RetryableError(execErr)
			}
			return nil
		})
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}
	s.state.MarkOperationCompleted(step.Type, rollbackData)
	s.bestEffortSave(ctx, "after marking operation completed")
	return nil
}

// Rollback executes compensating actions for completed operations
func (s *SagaExecutor) Rollback(ctx context.Context) error {
	return s.rollback(ctx)
}

// rollback internal implementation
func (s *SagaExecutor) rollback(ctx context.Context) error {
	s.log.Info("Starting rollback")
	completedOps := s.state.GetCompletedOperations()
	if len(completedOps) == 0 {
		s.log.Info("No operations to rollback")
		return nil
	}
	for _, op := range completedOps {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return fmt.Errorf("rollback canceled: %w", ctx.Err())
		default:
		}
		step := s.findStepByType(op.Type)
		if step == nil || step.Compensate == nil {
			continue
		}
		s.log.Info("Rolling back", zap.String("step", step.Name))
		if err := s.executeCompensation(ctx, step, op.RollbackData); err != nil {
			s.log.Error("Compensation failed", zap.String("step", step.Name), zap.Error(err))
			return fmt.Errorf("rollback failed for %s: %w", step.Name, err)
		}
		s.state.MarkOperationRolledBack(op.Type)
		s.bestEffortSave(ctx, "during rollback")
	}
	s.state.Status = domain.WorkflowStatusRolledBack
	s.bestEffortSave(ctx, "after rollback")
	s.log.Info("Rollback completed")
	return nil
}

// executeCompensation executes a compensating action with retry
func (s *SagaExecutor) executeCompensation(ctx context.Context, step *SagaStep, rollbackData map[string]any) error {
	retryStrategy := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
	return retry.Do(ctx, retryStrategy, func(retryCtx context.Context) error {
		// Check if context is canceled
		select {
		case <-retryCtx.Done():
			return retryCtx.Err()
		default:
		}
		if err := step.Compensate(retryCtx, rollbackData); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// findStepByType finds a saga step by operation type
func (s *SagaExecutor) findStepByType(opType domain.OperationType) *SagaStep {
	for i := range s.steps {
		if s.steps[i].Type == opType {
			return &s.steps[i]
		}
	}
	return nil
}

// saveState persists the current state
func (s *SagaExecutor) saveState(ctx context.Context) error {
	return s.stateRepo.Save(ctx, s.state)
}

// bestEffortSave persists the state when rollback is enabled, only logging failures.
func (s *SagaExecutor) bestEffortSave(ctx context.Context, when string) {
	if !s.enableRollback {
		return
	}
	if err := s.saveState(ctx); err != nil {
		s.log.Warn("Failed to save release state", zap.String("when", when), zap.Error(err))
	}
}

// SessionID returns the identifier used to persist this saga
func (s *SagaExecutor) SessionID() string {
	return s.sessionID
}

// GetState returns the current saga state
func (s *SagaExecutor) GetState() *domain.RollbackState {
	return s.state
}

// SetVersion sets the version in the state
func (s *SagaExecutor) SetVersion(version string) {
	s.state.Version = version
}

// SetTagName sets the release tag in the state
func (s *SagaExecutor) SetTagName(tag string) {
	s.state.TagName = tag
}

// SetBranchName sets the branch name in the state
func (s *SagaExecutor) SetBranchName(branchName string) {
	s.state.BranchName = branchName
}

// SetOriginalBranch sets the original branch in the state
func (s *SagaExecutor) SetOriginalBranch(branchName string) {
	s.state.OriginalBranch = branchName
}
