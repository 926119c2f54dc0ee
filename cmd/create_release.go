package cmd

import (
	"github.com/compozy/gitrelease/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newCreateReleaseCmd() *cobra.Command {
	var (
		dryRun         bool
		enableRollback bool
		rollback       bool
		sessionID      string
	)
	cmd := &cobra.Command{
		Use:   "create-release",
		Short: "Tag a patch release on the current release branch",
		Long: `Tag a patch release on the current release branch.

The workflow asks for the release version, writes it to the version file
on a temporary branch, commits and tags it, returns to the release branch
and pushes the tag. With a GitHub token configured the tag is also
published as a GitHub release.

Every step has a compensating action that runs when a later step fails.
With --enable-rollback the session is persisted so a failed release can
be rolled back later with --rollback.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.close()
			orch := orchestrator.NewReleaseOrchestrator(
				c.gitRepo,
				c.ghRepo,
				c.fsRepo,
				c.stateRepo,
				c.ui,
				orchestrator.ReleaseOptions{
					BranchPrefix:  c.cfg.ReleaseBranchPrefix,
					TagPrefix:     c.cfg.TagPrefix,
					VersionFile:   c.cfg.VersionFile,
					GitLogin:      c.cfg.Git.Login,
					GitPassword:   c.cfg.Git.Password,
					PublishGithub: c.cfg.HasGithub(),
				},
				c.log,
			)
			return orch.Execute(cmd.Context(), orchestrator.ReleaseConfig{
				DryRun:         dryRun,
				EnableRollback: enableRollback,
				Rollback:       rollback,
				SessionID:      sessionID,
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Create the tag locally without pushing or publishing")
	cmd.Flags().BoolVar(&enableRollback, "enable-rollback", false, "Persist the release session for a later rollback")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Rollback a failed release session")
	cmd.Flags().
		StringVar(&sessionID, "session-id", "", "Session ID to rollback (uses latest if not specified)")
	return cmd
}
