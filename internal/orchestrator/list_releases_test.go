package orchestrator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReleasesOrchestrator_Execute(t *testing.T) {
	t.Run("Should list release tags newest first", func(t *testing.T) {
		gitRepo := new(mockGitExtendedRepository)
		ctx := context.Background()
		gitRepo.On("ListTags", ctx).Return([]string{"1.2.0", "1.10.0", "1.2.1", "nightly", "1.3.0-rc.1"}, nil)
		gitRepo.On("ListLocalBranches", ctx).Return([]string{"master", "release/1.2"}, nil)
		var out bytes.Buffer
		orch := NewListReleasesOrchestrator(gitRepo, "release/", "", &out)

		n, err := orch.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, n)
		table := out.String()
		assert.NotContains(t, table, "nightly")
		assert.NotContains(t, table, "rc.1")
		first := strings.Index(table, "1.10.0")
		second := strings.Index(table, "1.2.1")
		third := strings.Index(table, "1.2.0")
		assert.True(t, first < second && second < third, table)
		assert.Contains(t, table, "release/1.10")
		assert.Contains(t, table, "missing")
	})
}
