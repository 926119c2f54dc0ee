package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollbackState_Lifecycle(t *testing.T) {
	t.Run("Should track operations through completion and rollback", func(t *testing.T) {
		state := NewRollbackState("session")
		state.AddOperation(OperationTypeCreateTempBranch)
		state.AddOperation(OperationTypeCreateTag)
		state.MarkOperationStarted(OperationTypeCreateTempBranch)
		state.MarkOperationCompleted(OperationTypeCreateTempBranch, map[string]any{"branch_name": "temp_release_1.0.0"})
		state.MarkOperationStarted(OperationTypeCreateTag)
		state.MarkOperationFailed(OperationTypeCreateTag, errors.New("tag exists"))

		assert.Equal(t, WorkflowStatusFailed, state.Status)
		assert.Equal(t, "tag exists", state.Error)
		completed := state.GetCompletedOperations()
		require.Len(t, completed, 1)
		assert.Equal(t, OperationTypeCreateTempBranch, completed[0].Type)

		state.MarkOperationRolledBack(OperationTypeCreateTempBranch)
		assert.Equal(t, 1, state.OperationsOfStatus(OperationStatusRolledBack))
		assert.Equal(t, 1, state.OperationsOfStatus(OperationStatusFailed))
		assert.Empty(t, state.GetCompletedOperations())
	})
	t.Run("Should return completed operations newest first", func(t *testing.T) {
		state := NewRollbackState("session")
		for _, op := range []OperationType{OperationTypeCreateTempBranch, OperationTypeCommitChanges} {
			state.AddOperation(op)
			state.MarkOperationStarted(op)
			state.MarkOperationCompleted(op, nil)
		}
		completed := state.GetCompletedOperations()
		require.Len(t, completed, 2)
		assert.Equal(t, OperationTypeCommitChanges, completed[0].Type)
		assert.False(t, completed[0].StartedAt.IsZero())
		assert.NotNil(t, completed[0].CompletedAt)
	})
	t.Run("Should number operation ids by position", func(t *testing.T) {
		state := NewRollbackState("session")
		first := state.AddOperation(OperationTypePushTag)
		assert.Equal(t, "01_push_tag", first.ID)
		second := state.AddOperation(OperationTypePushTag)
		assert.Equal(t, "02_push_tag", second.ID)
		assert.Equal(t, OperationStatusPending, second.Status)
	})
	t.Run("Should ignore transitions from the wrong status", func(t *testing.T) {
		state := NewRollbackState("session")
		state.AddOperation(OperationTypeCreateTag)
		state.MarkOperationCompleted(OperationTypeCreateTag, nil)
		state.MarkOperationRolledBack(OperationTypeCreateTag)
		assert.Equal(t, 1, state.OperationsOfStatus(OperationStatusPending))
	})
}
