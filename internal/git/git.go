package git

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// EmptyTreeSHA is the well-known hash of git's empty tree object. It is
// used as the diff base in repositories that have no commits yet.
const EmptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Git implements repository operations using the git CLI.
type Git struct {
	// gitPath is the path to the git executable
	gitPath string
}

// NewGit creates a new Git instance.
// It verifies that git is available on the system.
func NewGit(ctx context.Context) (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}

	// Verify git works
	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}

	return &Git{gitPath: gitPath}, nil
}

// run executes a git command with -C repoPath and returns stdout.
func (g *Git) run(ctx context.Context, repoPath string, args ...string) (string, error) {
	full := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, g.gitPath, full...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s failed in %s: %w (stderr: %s)",
				args[0], repoPath, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed in %s: %w", args[0], repoPath, err)
	}
	return string(output), nil
}

// Version returns the git version string, e.g. "2.39.2".
func (g *Git) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "version")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git version failed: %w", err)
	}
	// Output looks like "git version 2.39.2" (possibly with a
	// platform suffix such as ".windows.1").
	fields := strings.Fields(string(output))
	if len(fields) < 3 {
		return "", fmt.Errorf("unexpected git version output: %q", strings.TrimSpace(string(output)))
	}
	return fields[2], nil
}

// IsRepo reports whether repoPath is inside a git work tree.
func (g *Git) IsRepo(ctx context.Context, repoPath string) bool {
	out, err := g.run(ctx, repoPath, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Head returns the full SHA of the current HEAD commit.
// In a repository with no commits it returns an empty string.
func (g *Git) Head(ctx context.Context, repoPath string) (string, error) {
	if !g.hasHead(ctx, repoPath) {
		return "", nil
	}
	out, err := g.run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// hasHead reports whether HEAD resolves to a commit.
func (g *Git) hasHead(ctx context.Context, repoPath string) bool {
	full := []string{"-C", repoPath, "rev-parse", "--verify", "--quiet", "HEAD"}
	cmd := exec.CommandContext(ctx, g.gitPath, full...)
	return cmd.Run() == nil
}

// Status returns the parsed porcelain status of the repository.
func (g *Git) Status(ctx context.Context, repoPath string) (*Status, error) {
	output, err := g.run(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status failed in %s: %w", repoPath, err)
	}

	status := &Status{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}

		// XY <path> where X is the index state and Y the work tree.
		// Reference: https://git-scm.com/docs/git-status#_short_format
		index := line[0]
		worktree := line[1]
		filePath := line[3:]

		// Renames are reported as "old -> new"; track the new path.
		if idx := strings.Index(filePath, " -> "); idx >= 0 {
			filePath = filePath[idx+4:]
		}

		switch {
		case index == '?' && worktree == '?':
			status.Untracked = append(status.Untracked, filePath)
		case isUnmergedCode(index, worktree):
			status.Unmerged = append(status.Unmerged, filePath)
		default:
			if index != ' ' {
				status.Staged = append(status.Staged, filePath)
			}
			if worktree != ' ' {
				status.Modified = append(status.Modified, filePath)
			}
		}

		status.HasChanges = true
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse git status: %w", err)
	}

	return status, nil
}

// isUnmergedCode reports whether an XY porcelain code marks an
// unresolved merge entry (unmerged on both sides).
func isUnmergedCode(index, worktree byte) bool {
	if index == 'U' || worktree == 'U' {
		return true
	}
	return (index == 'A' && worktree == 'A') || (index == 'D' && worktree == 'D')
}

// UnmergedFiles returns paths with unresolved merge conflicts.
func (g *Git) UnmergedFiles(ctx context.Context, repoPath string) ([]string, error) {
	status, err := g.Status(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	return status.Unmerged, nil
}

// StagedFiles returns the paths currently staged in the index.
func (g *Git) StagedFiles(ctx context.Context, repoPath string) ([]string, error) {
	base := "HEAD"
	if !g.hasHead(ctx, repoPath) {
		base = EmptyTreeSHA
	}
	output, err := g.run(ctx, repoPath, "diff", "--name-only", "--cached", base)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files in %s: %w", repoPath, err)
	}

	var files []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// StageFiles stages exactly the given paths.
func (g *Git) StageFiles(ctx context.Context, repoPath string, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to stage")
	}
	args := append([]string{"add", "--"}, files...)
	if _, err := g.run(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("git add failed in %s: %w", repoPath, err)
	}
	return nil
}

// Commit creates a commit from the current index. Title and description
// are passed as separate -m paragraphs so neither goes through shell
// interpolation. Returns the new commit SHA.
func (g *Git) Commit(ctx context.Context, repoPath, title, description string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("commit title is required")
	}

	args := []string{"commit", "-m", title}
	if description != "" {
		args = append(args, "-m", description)
	}
	if _, err := g.run(ctx, repoPath, args...); err != nil {
		return "", fmt.Errorf("git commit failed in %s: %w", repoPath, err)
	}

	hash, err := g.run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash in %s: %w", repoPath, err)
	}
	return strings.TrimSpace(hash), nil
}

// DiffWorking returns the unified diff of all uncommitted tracked
// changes (staged and unstaged) against HEAD, or against the empty tree
// in a repository with no commits.
func (g *Git) DiffWorking(ctx context.Context, repoPath string) (string, error) {
	base := "HEAD"
	if !g.hasHead(ctx, repoPath) {
		base = EmptyTreeSHA
	}
	output, err := g.run(ctx, repoPath, "diff", base, "--")
	if err != nil {
		return "", fmt.Errorf("git diff failed in %s: %w", repoPath, err)
	}
	return output, nil
}

// ShowCommit reads subject, body, and touched files for a commit
// reference. The reference may be a SHA, abbreviated SHA, or symbolic
// name resolvable by git.
func (g *Git) ShowCommit(ctx context.Context, repoPath, ref string) (*Commit, error) {
	// %x00 separators keep multi-line bodies unambiguous.
	meta, err := g.run(ctx, repoPath, "show", "--no-patch", "--format=%H%x00%s%x00%b", ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s in %s: %w", ref, repoPath, err)
	}
	parts := strings.SplitN(strings.TrimRight(meta, "\n"), "\x00", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("unexpected git show output for %s", ref)
	}

	files, err := g.run(ctx, repoPath, "show", "--name-only", "--format=", parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to list files for commit %s in %s: %w", ref, repoPath, err)
	}

	commit := &Commit{
		SHA:     parts[0],
		Subject: parts[1],
		Body:    strings.TrimSpace(parts[2]),
	}
	for _, line := range strings.Split(files, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			commit.Files = append(commit.Files, line)
		}
	}
	return commit, nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (g *Git) CommitCount(ctx context.Context, repoPath string) (int, error) {
	if !g.hasHead(ctx, repoPath) {
		return 0, nil
	}
	out, err := g.run(ctx, repoPath, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, err
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%d", &n); err != nil {
		return 0, fmt.Errorf("unexpected rev-list output: %q", strings.TrimSpace(out))
	}
	return n, nil
}
