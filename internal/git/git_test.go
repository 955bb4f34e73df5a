package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGit(t *testing.T) *Git {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	g, err := NewGit(context.Background())
	require.NoError(t, err)
	return g
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, output)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestVersion(t *testing.T) {
	g := newTestGit(t)

	version, err := g.Version(context.Background())

	require.NoError(t, err)
	assert.Regexp(t, `^\d+\.\d+`, version)
}

func TestIsRepo(t *testing.T) {
	g := newTestGit(t)

	assert.True(t, g.IsRepo(context.Background(), initRepo(t)))
	assert.False(t, g.IsRepo(context.Background(), os.TempDir()))
}

func TestHead_NoCommits(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)

	head, err := g.Head(context.Background(), dir)

	require.NoError(t, err)
	assert.Empty(t, head)
}

func TestHead_AfterCommit(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "alpha\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	head, err := g.Head(context.Background(), dir)

	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{40}$`, head)
}

func TestStatus_CleanRepo(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)

	status, err := g.Status(context.Background(), dir)

	require.NoError(t, err)
	assert.False(t, status.HasChanges)
	assert.Empty(t, status.Modified)
	assert.Empty(t, status.Staged)
	assert.Empty(t, status.Untracked)
}

func TestStatus_MixedStates(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	writeFile(t, dir, "committed.txt", "one\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	writeFile(t, dir, "committed.txt", "two\n")
	writeFile(t, dir, "staged.txt", "staged\n")
	runGit(t, dir, "add", "staged.txt")
	writeFile(t, dir, "new.txt", "untracked\n")

	status, err := g.Status(context.Background(), dir)

	require.NoError(t, err)
	assert.True(t, status.HasChanges)
	assert.Contains(t, status.Modified, "committed.txt")
	assert.Contains(t, status.Staged, "staged.txt")
	assert.Contains(t, status.Untracked, "new.txt")
}

func TestStatus_Rename(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	writeFile(t, dir, "old.txt", "content\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")
	runGit(t, dir, "mv", "old.txt", "new.txt")

	status, err := g.Status(context.Background(), dir)

	require.NoError(t, err)
	assert.Contains(t, status.Staged, "new.txt")
	assert.NotContains(t, status.Staged, "old.txt")
}

func TestUnmergedFiles(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	writeFile(t, dir, "shared.txt", "base\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "base")

	runGit(t, dir, "checkout", "-q", "-b", "feature")
	writeFile(t, dir, "shared.txt", "feature\n")
	runGit(t, dir, "commit", "-q", "-am", "feature change")

	runGit(t, dir, "checkout", "-q", "-")
	writeFile(t, dir, "shared.txt", "main\n")
	runGit(t, dir, "commit", "-q", "-am", "main change")

	cmd := exec.Command("git", "-C", dir, "merge", "feature")
	_ = cmd.Run() // expected to conflict

	unmerged, err := g.UnmergedFiles(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"shared.txt"}, unmerged)
}

func TestStagedFiles_NoCommits(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "alpha\n")
	runGit(t, dir, "add", "a.txt")

	staged, err := g.StagedFiles(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, staged)
}

func TestStageFilesAndCommit(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "a.txt", "alpha\n")
	writeFile(t, dir, "b.txt", "beta\n")

	require.NoError(t, g.StageFiles(ctx, dir, []string{"a.txt"}))

	staged, err := g.StagedFiles(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, staged)

	sha, err := g.Commit(ctx, dir, "Add alpha", "First file.")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{40}$`, sha)

	head, err := g.Head(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, sha, head)

	// b.txt was never staged and survives untouched.
	status, err := g.Status(ctx, dir)
	require.NoError(t, err)
	assert.Contains(t, status.Untracked, "b.txt")
}

func TestStageFiles_EmptyList(t *testing.T) {
	g := newTestGit(t)

	err := g.StageFiles(context.Background(), initRepo(t), nil)

	require.Error(t, err)
}

func TestCommit_RequiresTitle(t *testing.T) {
	g := newTestGit(t)

	_, err := g.Commit(context.Background(), initRepo(t), "", "body")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestDiffWorking(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "a.txt", "alpha\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	diff, err := g.DiffWorking(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, diff)

	writeFile(t, dir, "a.txt", "changed\n")

	diff, err = g.DiffWorking(ctx, dir)
	require.NoError(t, err)
	assert.Contains(t, diff, "diff --git a/a.txt b/a.txt")
	assert.Contains(t, diff, "+changed")
}

func TestDiffWorking_NoCommits(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "alpha\n")
	runGit(t, dir, "add", "a.txt")

	diff, err := g.DiffWorking(context.Background(), dir)

	require.NoError(t, err)
	assert.Contains(t, diff, "+alpha")
}

func TestShowCommit(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "a.txt", "alpha\n")
	writeFile(t, dir, "b.txt", "beta\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "Add files", "-m", "Two new files.")

	head, err := g.Head(ctx, dir)
	require.NoError(t, err)

	commit, err := g.ShowCommit(ctx, dir, head)

	require.NoError(t, err)
	assert.Equal(t, head, commit.SHA)
	assert.Equal(t, "Add files", commit.Subject)
	assert.Equal(t, "Two new files.", commit.Body)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, commit.Files)
}

func TestShowCommit_AbbreviatedRef(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "a.txt", "alpha\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	head, err := g.Head(ctx, dir)
	require.NoError(t, err)

	commit, err := g.ShowCommit(ctx, dir, head[:8])

	require.NoError(t, err)
	assert.Equal(t, head, commit.SHA)
}

func TestShowCommit_UnknownRef(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "alpha\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	_, err := g.ShowCommit(context.Background(), dir, "deadbeef")

	require.Error(t, err)
}

func TestCommitCount(t *testing.T) {
	g := newTestGit(t)
	dir := initRepo(t)
	ctx := context.Background()

	n, err := g.CommitCount(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	writeFile(t, dir, "a.txt", "alpha\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "one")
	writeFile(t, dir, "a.txt", "beta\n")
	runGit(t, dir, "commit", "-q", "-am", "two")

	n, err = g.CommitCount(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
