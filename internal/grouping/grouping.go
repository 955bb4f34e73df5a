// Package grouping turns a change set into content-addressed change
// groups: one embedding input per change, one batched embed call, a
// clustering pass, and a pure membership hash for each resulting group.
package grouping

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/semcommit/semcommit/internal/cluster"
	"github.com/semcommit/semcommit/internal/embed"
	"github.com/semcommit/semcommit/internal/types"
)

// LineBudget caps the number of lines (hunk headers plus diff lines)
// included in one change's embedding input. Truncation stops at
// whichever line would cross the budget, so the cut point is
// deterministic.
const LineBudget = 200

// Pipeline computes change groups for a change set.
type Pipeline struct {
	provider  embed.Provider
	threshold float64
}

// NewPipeline creates a Pipeline. A zero threshold selects the default.
func NewPipeline(provider embed.Provider, threshold float64) *Pipeline {
	if threshold == 0 {
		threshold = cluster.DefaultThreshold
	}
	return &Pipeline{provider: provider, threshold: threshold}
}

// Group clusters the given changes by intent. The input must already be
// sorted by path (the loader guarantees this); that order is what makes
// clustering deterministic. A single change is grouped without touching
// the embedding provider.
func (p *Pipeline) Group(ctx context.Context, changes []types.Change) ([]types.ChangeGroup, error) {
	switch len(changes) {
	case 0:
		return []types.ChangeGroup{}, nil
	case 1:
		return []types.ChangeGroup{makeGroup(changes)}, nil
	}

	inputs := make([]string, len(changes))
	for i, c := range changes {
		inputs[i] = EmbeddingInput(c)
	}

	vectors, err := p.provider.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to embed changes: %w", err)
	}
	if len(vectors) != len(changes) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d changes", len(vectors), len(changes))
	}

	clusters := cluster.Assign(vectors, p.threshold)
	groups := make([]types.ChangeGroup, 0, len(clusters))
	for _, cl := range clusters {
		members := make([]types.Change, 0, len(cl.Indices))
		for _, idx := range cl.Indices {
			members = append(members, changes[idx])
		}
		groups = append(groups, makeGroup(members))
	}
	return groups, nil
}

// makeGroup builds a ChangeGroup from its member changes.
func makeGroup(members []types.Change) types.ChangeGroup {
	ids := make([]string, len(members))
	paths := make([]string, len(members))
	for i, c := range members {
		ids[i] = c.ID
		paths[i] = c.Path
	}
	return types.ChangeGroup{
		ID:        GroupID(ids),
		ChangeIDs: ids,
		Summary:   summarize(paths),
	}
}

// GroupID derives a group's identifier purely from its membership:
// "group-" plus the first 8 hex characters of SHA-256 over the member
// change IDs sorted lexicographically and comma-joined. Recomputing
// over any superset of changes reproduces the same ID for a group
// whose final membership is unchanged.
func GroupID(changeIDs []string) string {
	sorted := make([]string, len(changeIDs))
	copy(sorted, changeIDs)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return "group-" + hex.EncodeToString(sum[:])[:8]
}

// summarize produces the group's display summary from member paths.
func summarize(paths []string) string {
	shown := paths
	suffix := ""
	if len(shown) > 3 {
		suffix = fmt.Sprintf(", and %d more", len(shown)-2)
		shown = shown[:2]
	}
	noun := "file"
	if len(paths) != 1 {
		noun = "files"
	}
	return fmt.Sprintf("%d %s: %s%s", len(paths), noun, strings.Join(shown, ", "), suffix)
}

// EmbeddingInput builds the text embedded for one change: the file
// path, then each hunk's header and diff lines, truncated at LineBudget
// lines. The path line is always included.
func EmbeddingInput(c types.Change) string {
	var b strings.Builder
	b.WriteString("file: " + c.Path)

	budget := LineBudget
	for _, h := range c.Hunks {
		if h.Header != "" {
			if budget == 0 {
				return b.String()
			}
			budget--
			b.WriteString("\n" + h.Header)
		}
		for _, line := range h.Lines {
			if budget == 0 {
				return b.String()
			}
			budget--
			b.WriteString("\n" + string(prefixFor(line.Kind)) + line.Text)
		}
	}
	return b.String()
}

func prefixFor(kind types.DiffLineKind) byte {
	switch kind {
	case types.LineAdded:
		return '+'
	case types.LineRemoved:
		return '-'
	default:
		return ' '
	}
}
