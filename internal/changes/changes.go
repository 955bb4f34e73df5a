// Package changes loads the repository's uncommitted modifications as
// structured Change records. It is a thin parser over git CLI output:
// tracked changes come from a unified diff against HEAD, untracked
// files are synthesized as pure-addition hunks.
package changes

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/semcommit/semcommit/internal/git"
	"github.com/semcommit/semcommit/internal/types"
)

// Loader produces the current uncommitted Change set for a repository.
type Loader struct {
	git  *git.Git
	repo string
}

// NewLoader creates a Loader bound to a repository path.
func NewLoader(g *git.Git, repoPath string) *Loader {
	return &Loader{git: g, repo: repoPath}
}

// Load returns all uncommitted changes, sorted by file path. The sort
// order is what makes downstream clustering deterministic, so callers
// must not reorder the result before grouping.
func (l *Loader) Load(ctx context.Context) ([]types.Change, error) {
	diff, err := l.git.DiffWorking(ctx, l.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to load working diff: %w", err)
	}

	changes, err := ParseUnifiedDiff(diff)
	if err != nil {
		return nil, fmt.Errorf("failed to parse working diff: %w", err)
	}

	status, err := l.git.Status(ctx, l.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	seen := make(map[string]bool, len(changes))
	for _, c := range changes {
		seen[c.Path] = true
	}
	for _, path := range status.Untracked {
		if seen[path] {
			continue
		}
		change, err := l.untrackedChange(path)
		if err != nil {
			return nil, err
		}
		if change != nil {
			changes = append(changes, *change)
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes, nil
}

// untrackedChange synthesizes a pure-addition change for a file git
// does not track yet. Binary files are skipped; they carry no line
// content the grouping pipeline could embed.
func (l *Loader) untrackedChange(path string) (*types.Change, error) {
	content, err := os.ReadFile(filepath.Join(l.repo, path))
	if err != nil {
		return nil, fmt.Errorf("failed to read untracked file %s: %w", path, err)
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, nil
	}

	text := strings.TrimSuffix(string(content), "\n")
	var lines []types.DiffLine
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			lines = append(lines, types.DiffLine{Kind: types.LineAdded, Text: line})
		}
	}

	return &types.Change{
		ID:        ChangeID(path),
		Path:      path,
		Untracked: true,
		Hunks: []types.Hunk{{
			OldStart: 0,
			OldLines: 0,
			NewStart: 1,
			NewLines: len(lines),
			Lines:    lines,
		}},
	}, nil
}

// ChangeID derives the content-addressed identifier for a file path:
// "change-" plus the first 8 hex characters of SHA-256 over the path.
func ChangeID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return "change-" + hex.EncodeToString(sum[:])[:8]
}

// Resolve maps change IDs back to Change records. It returns an input
// error listing every ID that does not resolve in the given set.
func Resolve(ids []string, all []types.Change) ([]types.Change, error) {
	byID := make(map[string]types.Change, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	var resolved []types.Change
	var unknown []string
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		resolved = append(resolved, c)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown change IDs: %s", strings.Join(unknown, ", "))
	}
	return resolved, nil
}
