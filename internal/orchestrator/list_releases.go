package orchestrator

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/compozy/gitrelease/internal/usecase"
	"github.com/olekukonko/tablewriter"
)

// ListReleasesOrchestrator prints the release tags, newest first.
type ListReleasesOrchestrator struct {
	gitRepo      repository.GitExtendedRepository
	branchPrefix string
	tagPrefix    string
	out          io.Writer
}

func NewListReleasesOrchestrator(
	gitRepo repository.GitExtendedRepository,
	branchPrefix, tagPrefix string,
	out io.Writer,
) *ListReleasesOrchestrator {
	return &ListReleasesOrchestrator{
		gitRepo:      gitRepo,
		branchPrefix: branchPrefix,
		tagPrefix:    tagPrefix,
		out:          out,
	}
}

// Execute renders one row per release tag and returns how many were listed.
func (o *ListReleasesOrchestrator) Execute(ctx context.Context) (int, error) {
	tags, err := o.gitRepo.ListTags(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tags: %w", err)
	}
	branches, err := o.gitRepo.ListLocalBranches(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list branches: %w", err)
	}
	releases := usecase.ReleaseTags(tags, o.tagPrefix)
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].Version.Compare(releases[j].Version) > 0
	})

	table := tablewriter.NewWriter(o.out)
	table.SetHeader([]string{"Tag", "Version", "Release Branch", "Branch"})
	for _, r := range releases {
		rb := domain.ReleaseBranch{Major: r.Version.Major(), Minor: r.Version.Minor()}
		branch := rb.Name(o.branchPrefix)
		status := "missing"
		if slices.Contains(branches, branch) {
			status = "ok"
		}
		table.Append([]string{r.Name, r.Version.Plain(), branch, status})
	}
	table.Render()
	return len(releases), nil
}
