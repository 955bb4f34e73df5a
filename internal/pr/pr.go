// Package pr composes pull-request drafts from real commit metadata.
package pr

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/semcommit/semcommit/internal/git"
	"github.com/semcommit/semcommit/internal/types"
)

// Drafter builds PR drafts for a repository.
type Drafter struct {
	git  *git.Git
	repo string
}

// NewDrafter creates a Drafter bound to a repository path.
func NewDrafter(g *git.Git, repoPath string) *Drafter {
	return &Drafter{git: g, repo: repoPath}
}

// Draft reads the given commit references from the repository and
// composes a title and description. At least one reference is required;
// an unresolvable reference fails the whole draft.
func (d *Drafter) Draft(ctx context.Context, refs []string) (*types.PRDraft, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("at least one commit reference is required")
	}

	commits := make([]types.CommitDetail, 0, len(refs))
	for _, ref := range refs {
		c, err := d.git.ShowCommit(ctx, d.repo, ref)
		if err != nil {
			return nil, err
		}
		commits = append(commits, types.CommitDetail{
			SHA:     c.SHA,
			Subject: c.Subject,
			Body:    c.Body,
			Files:   c.Files,
		})
	}

	title := commits[0].Subject
	if len(commits) > 1 {
		title = fmt.Sprintf("%s (+%d more)", title, len(commits)-1)
	}

	return &types.PRDraft{
		Title:       title,
		Description: describe(commits),
		Commits:     commits,
	}, nil
}

// describe renders the draft body: the commit list with short SHAs,
// then the aggregated changed-file list.
func describe(commits []types.CommitDetail) string {
	var b strings.Builder

	b.WriteString("## Commits\n\n")
	fileSet := make(map[string]bool)
	for _, c := range commits {
		b.WriteString(fmt.Sprintf("- %s %s\n", shortSHA(c.SHA), c.Subject))
		for _, f := range c.Files {
			fileSet[f] = true
		}
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)

	b.WriteString("\n## Files changed\n\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("- %s\n", f))
	}

	return strings.TrimRight(b.String(), "\n")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
