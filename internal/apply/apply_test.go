package apply

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semcommit/semcommit/internal/changes"
	"github.com/semcommit/semcommit/internal/cluster"
	"github.com/semcommit/semcommit/internal/embed"
	"github.com/semcommit/semcommit/internal/git"
	"github.com/semcommit/semcommit/internal/grouping"
	"github.com/semcommit/semcommit/internal/planner"
)

type fixture struct {
	dir     string
	git     *git.Git
	loader  *changes.Loader
	applier *Applier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	writeFile(t, dir, "a.txt", "alpha\n")
	writeFile(t, dir, "b.txt", "bravo\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	g, err := git.NewGit(context.Background())
	require.NoError(t, err)

	loader := changes.NewLoader(g, dir)
	pipeline := grouping.NewPipeline(embed.Deterministic{}, cluster.DefaultThreshold)
	applier, err := NewApplier(&Config{
		Git:      g,
		RepoPath: dir,
		Loader:   loader,
		Pipeline: pipeline,
	})
	require.NoError(t, err)

	return &fixture{dir: dir, git: g, loader: loader, applier: applier}
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, output)
	return strings.TrimSpace(string(output))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// planIDs recomputes the commit plan IDs visible right now, the same
// way the resolve gate will.
func (f *fixture) planIDs(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	all, err := f.loader.Load(ctx)
	require.NoError(t, err)
	pipeline := grouping.NewPipeline(embed.Deterministic{}, cluster.DefaultThreshold)
	groups, err := pipeline.Group(ctx, all)
	require.NoError(t, err)
	plans, err := planner.BuildPlans(groups, all)
	require.NoError(t, err)

	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return ids
}

func (f *fixture) head(t *testing.T) string {
	t.Helper()
	head, err := f.git.Head(context.Background(), f.dir)
	require.NoError(t, err)
	return head
}

func (f *fixture) commitCount(t *testing.T) int {
	t.Helper()
	n, err := f.git.CommitCount(context.Background(), f.dir)
	require.NoError(t, err)
	return n
}

func requireGateError(t *testing.T, err error, kind GateErrorKind) *GateError {
	t.Helper()
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	assert.Equal(t, kind, gateErr.Kind)
	return gateErr
}

func TestApply_ConfirmationGate(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")
	before := f.head(t)

	_, err := f.applier.Apply(context.Background(), Request{
		CommitID: f.planIDs(t)[0],
		Confirm:  false,
		DryRun:   false,
	})

	requireGateError(t, err, KindConfirmation)
	assert.Equal(t, before, f.head(t))
}

func TestApply_DryRunDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")
	before := f.head(t)
	countBefore := f.commitCount(t)

	result, err := f.applier.Apply(context.Background(), Request{
		CommitID: f.planIDs(t)[0],
		Confirm:  true,
		DryRun:   true,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.DryRun)
	assert.Empty(t, result.CommitSHA)
	assert.Equal(t, []string{"a.txt"}, result.Files)
	assert.Equal(t, before, f.head(t))
	assert.Equal(t, countBefore, f.commitCount(t))
}

func TestApply_SingleFileCommit(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")
	countBefore := f.commitCount(t)

	result, err := f.applier.Apply(context.Background(), Request{
		CommitID: f.planIDs(t)[0],
		Confirm:  true,
		DryRun:   false,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.DryRun)
	assert.Regexp(t, `^[0-9a-f]{40}$`, result.CommitSHA)
	assert.Equal(t, result.CommitSHA, f.head(t))
	assert.Equal(t, countBefore+1, f.commitCount(t))
	assert.Equal(t, []string{"a.txt"}, result.Files)
	assert.True(t, strings.HasPrefix(result.Message, "Update a.txt"))

	// The working tree change is now committed.
	remaining, err := f.loader.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestApply_StaleExpectedHeadFailsBeforeStaging(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")
	before := f.head(t)

	_, err := f.applier.Apply(context.Background(), Request{
		CommitID:     f.planIDs(t)[0],
		Confirm:      true,
		DryRun:       false,
		ExpectedHead: strings.Repeat("0", 40),
	})

	gateErr := requireGateError(t, err, KindHeadMoved)
	assert.Contains(t, gateErr.Message, "HEAD has moved")
	assert.Equal(t, before, f.head(t))

	// Nothing was staged.
	staged, err := f.git.StagedFiles(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestApply_MatchingExpectedHeadSucceeds(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")
	head := f.head(t)

	result, err := f.applier.Apply(context.Background(), Request{
		CommitID:     f.planIDs(t)[0],
		Confirm:      true,
		DryRun:       true,
		ExpectedHead: head[:8], // abbreviated SHAs are accepted
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestApply_ScopeGate(t *testing.T) {
	f := newFixture(t)
	// Plan will target only a.txt; b.txt is staged unrelated work.
	writeFile(t, f.dir, "a.txt", "edited a\n")
	writeFile(t, f.dir, "b.txt", "edited b\n")
	runGit(t, f.dir, "add", "b.txt")

	// Find the plan covering only a.txt.
	ctx := context.Background()
	all, err := f.loader.Load(ctx)
	require.NoError(t, err)
	var aPlanID string
	pipeline := grouping.NewPipeline(embed.Deterministic{}, cluster.DefaultThreshold)
	groups, err := pipeline.Group(ctx, all)
	require.NoError(t, err)
	for _, g := range groups {
		if len(g.ChangeIDs) == 1 && g.ChangeIDs[0] == changes.ChangeID("a.txt") {
			aPlanID = planner.CommitID(g.ID)
		}
	}
	require.NotEmpty(t, aPlanID, "expected a singleton group for a.txt")

	_, err = f.applier.Apply(ctx, Request{
		CommitID: aPlanID,
		Confirm:  true,
		DryRun:   false,
	})
	gateErr := requireGateError(t, err, KindScope)
	assert.Contains(t, gateErr.Message, "b.txt")

	// With the override the commit goes through.
	result, err := f.applier.Apply(ctx, Request{
		CommitID:        aPlanID,
		Confirm:         true,
		DryRun:          false,
		AllowOutOfScope: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestApply_UnknownCommitID(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")

	_, err := f.applier.Apply(context.Background(), Request{
		CommitID: "commit-00000000",
		Confirm:  true,
		DryRun:   true,
	})

	gateErr := requireGateError(t, err, KindUnknownCommit)
	assert.Contains(t, gateErr.Message, "commit-00000000")
}

func TestApply_ConflictGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Build a merge conflict on a.txt.
	runGit(t, f.dir, "checkout", "-q", "-b", "feature")
	writeFile(t, f.dir, "a.txt", "feature version\n")
	runGit(t, f.dir, "add", "a.txt")
	runGit(t, f.dir, "commit", "-q", "-m", "feature edit")
	runGit(t, f.dir, "checkout", "-q", "-")
	writeFile(t, f.dir, "a.txt", "main version\n")
	runGit(t, f.dir, "add", "a.txt")
	runGit(t, f.dir, "commit", "-q", "-m", "main edit")

	merge := exec.Command("git", "-C", f.dir, "merge", "feature")
	_ = merge.Run() // expected to fail with a conflict

	_, err := f.applier.Apply(ctx, Request{
		CommitID: "commit-00000000",
		Confirm:  true,
		DryRun:   true,
	})

	gateErr := requireGateError(t, err, KindConflict)
	assert.Contains(t, gateErr.Message, "a.txt")
}

func TestApply_MessageOverride(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")

	result, err := f.applier.Apply(context.Background(), Request{
		CommitID:        f.planIDs(t)[0],
		Confirm:         true,
		DryRun:          false,
		MessageOverride: "Custom subject line",
	})
	require.NoError(t, err)

	assert.Equal(t, "Custom subject line", result.Message)
	subject := runGit(t, f.dir, "log", "-1", "--format=%s")
	assert.Equal(t, "Custom subject line", subject)
	body := runGit(t, f.dir, "log", "-1", "--format=%b")
	assert.Empty(t, body)
}

func TestApply_HeuristicMessageHasTwoParagraphs(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.dir, "a.txt", "edited\n")

	result, err := f.applier.Apply(context.Background(), Request{
		CommitID: f.planIDs(t)[0],
		Confirm:  true,
		DryRun:   false,
	})
	require.NoError(t, err)

	subject := runGit(t, f.dir, "log", "-1", "--format=%s")
	assert.Equal(t, "Update a.txt", subject)
	body := runGit(t, f.dir, "log", "-1", "--format=%b")
	assert.Contains(t, body, "- a.txt (")
	assert.Contains(t, result.Message, "\n\n")
}

func TestNewApplier_RequiresDependencies(t *testing.T) {
	_, err := NewApplier(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git is required")
}
