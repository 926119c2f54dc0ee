package cmd

import (
	"github.com/compozy/gitrelease/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newCreateReleaseBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-release-branch",
		Short: "Create the branch of a new release line",
		Long: `Create a release branch x.y from the current branch and check it out.

The proposed x.y is the minor after the highest existing release branch,
or 1.0 when there is none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.close()
			orch := orchestrator.NewReleaseBranchOrchestrator(c.gitRepo, c.ui, c.cfg.ReleaseBranchPrefix, c.log)
			_, err = orch.Execute(cmd.Context())
			return err
		},
	}
}
