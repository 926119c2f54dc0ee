package cmd

import (
	"fmt"

	"github.com/compozy/gitrelease/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newListReleasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-releases",
		Short: "List release tags and their release branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.close()
			out := cmd.OutOrStdout()
			orch := orchestrator.NewListReleasesOrchestrator(
				c.gitRepo,
				c.cfg.ReleaseBranchPrefix,
				c.cfg.TagPrefix,
				out,
			)
			n, err := orch.Execute(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(out, "No releases found")
			}
			return nil
		},
	}
}
