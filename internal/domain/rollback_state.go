package domain

import (
	"fmt"
	"time"
)

// WorkflowStatus represents the overall status of a release workflow
type WorkflowStatus string

const (
	WorkflowStatusPending    WorkflowStatus = "pending"
	WorkflowStatusRunning    WorkflowStatus = "running"
	WorkflowStatusCompleted  WorkflowStatus = "completed"
	WorkflowStatusFailed     WorkflowStatus = "failed"
	WorkflowStatusRolledBack WorkflowStatus = "rolled_back"
)

// OperationStatus represents the status of an individual operation
type OperationStatus string

const (
	OperationStatusPending    OperationStatus = "pending"
	OperationStatusRunning    OperationStatus = "running"
	OperationStatusCompleted  OperationStatus = "completed"
	OperationStatusFailed     OperationStatus = "failed"
	OperationStatusRolledBack OperationStatus = "rolled_back"
)

// OperationType identifies the type of operation
type OperationType string

const (
	OperationTypeCheckReleaseBranch OperationType = "check_release_branch"
	OperationTypeCalculateVersion   OperationType = "calculate_version"
	OperationTypeCreateTempBranch   OperationType = "create_temp_branch"
	OperationTypeUpdateVersionFile  OperationType = "update_version_file"
	OperationTypeCommitChanges      OperationType = "commit_changes"
	OperationTypeCreateTag          OperationType = "create_tag"
	OperationTypeRestoreBranch      OperationType = "restore_branch"
	OperationTypeResolveCredentials OperationType = "resolve_credentials"
	OperationTypePushTag            OperationType = "push_tag"
	OperationTypePublishRelease     OperationType = "publish_release"
)

// RollbackState is the persisted record of one release session. The
// completed operations and their rollback data are what a later rollback replays.
type RollbackState struct {
	SessionID      string            `json:"session_id"`
	StartedAt      time.Time         `json:"started_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        string            `json:"version"`
	TagName        string            `json:"tag_name"`
	BranchName     string            `json:"branch_name"`
	OriginalBranch string            `json:"original_branch"`
	Operations     []OperationRecord `json:"operations"`
	Status         WorkflowStatus    `json:"status"`
	Error          string            `json:"error,omitempty"`
}

// OperationRecord represents a single operation in the workflow
type OperationRecord struct {
	ID           string          `json:"id"`
	Type         OperationType   `json:"type"`
	Status       OperationStatus `json:"status"`
	StartedAt    time.Time       `json:"started_at,omitzero"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	RollbackData map[string]any  `json:"rollback_data,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// NewRollbackState creates a new rollback state
func NewRollbackState(sessionID string) *RollbackState {
	now := time.Now()
	return &RollbackState{
		SessionID:  sessionID,
		StartedAt:  now,
		UpdatedAt:  now,
		Operations: []OperationRecord{},
		Status:     WorkflowStatusPending,
	}
}

// AddOperation appends a pending record. IDs carry the position so a type
// added twice in one session stays distinguishable.
func (rs *RollbackState) AddOperation(opType OperationType) *OperationRecord {
	rs.Operations = append(rs.Operations, OperationRecord{
		ID:     fmt.Sprintf("%02d_%s", len(rs.Operations)+1, opType),
		Type:   opType,
		Status: OperationStatusPending,
	})
	rs.UpdatedAt = time.Now()
	return &rs.Operations[len(rs.Operations)-1]
}

// GetCompletedOperations returns the completed operations, most recent first.
func (rs *RollbackState) GetCompletedOperations() []OperationRecord {
	var completed []OperationRecord
	for i := len(rs.Operations) - 1; i >= 0; i-- {
		if rs.Operations[i].Status == OperationStatusCompleted {
			completed = append(completed, rs.Operations[i])
		}
	}
	return completed
}

func (rs *RollbackState) MarkOperationStarted(opType OperationType) {
	rs.transition(opType, OperationStatusPending, OperationStatusRunning, func(op *OperationRecord, now time.Time) {
		op.StartedAt = now
	})
}

// MarkOperationCompleted stores the data its compensation will need.
func (rs *RollbackState) MarkOperationCompleted(opType OperationType, rollbackData map[string]any) {
	rs.transition(opType, OperationStatusRunning, OperationStatusCompleted, func(op *OperationRecord, now time.Time) {
		op.CompletedAt = &now
		op.RollbackData = rollbackData
	})
}

// MarkOperationFailed fails the operation and the whole workflow.
func (rs *RollbackState) MarkOperationFailed(opType OperationType, err error) {
	rs.transition(opType, OperationStatusRunning, OperationStatusFailed, func(op *OperationRecord, now time.Time) {
		op.CompletedAt = &now
		op.Error = err.Error()
	})
	rs.Status = WorkflowStatusFailed
	rs.Error = err.Error()
}

// MarkOperationRolledBack records that a completed operation was compensated
func (rs *RollbackState) MarkOperationRolledBack(opType OperationType) {
	rs.transition(opType, OperationStatusCompleted, OperationStatusRolledBack, nil)
}

// OperationsOfStatus counts operations currently in the given status
func (rs *RollbackState) OperationsOfStatus(status OperationStatus) int {
	n := 0
	for i := range rs.Operations {
		if rs.Operations[i].Status == status {
			n++
		}
	}
	return n
}

// transition moves the first operation of opType in status from to status to.
func (rs *RollbackState) transition(
	opType OperationType,
	from, to OperationStatus,
	update func(op *OperationRecord, now time.Time),
) {
	now := time.Now()
	for i := range rs.Operations {
		op := &rs.Operations[i]
		if op.Type != opType || op.Status != from {
			continue
		}
		op.Status = to
		if update != nil {
			update(op, now)
		}
		rs.UpdatedAt = now
		return
	}
}
