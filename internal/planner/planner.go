// Package planner derives commit plans from change groups. It is pure:
// no I/O, no repository access, and the same group always yields the
// same plan.
package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/semcommit/semcommit/internal/types"
)

// CommitID derives a plan's identifier from its single covering group:
// "commit-" plus the first 8 hex characters of SHA-256 over the group
// ID. Like group IDs, it is a pure function of content.
func CommitID(groupID string) string {
	sum := sha256.Sum256([]byte(groupID))
	return "commit-" + hex.EncodeToString(sum[:])[:8]
}

// BuildPlan turns one group into a CommitPlan. Every member ID must
// resolve in the given change set.
func BuildPlan(group types.ChangeGroup, all []types.Change) (types.CommitPlan, error) {
	byID := make(map[string]types.Change, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	members := make([]types.Change, 0, len(group.ChangeIDs))
	for _, id := range group.ChangeIDs {
		c, ok := byID[id]
		if !ok {
			return types.CommitPlan{}, fmt.Errorf("group %s references unknown change ID %s", group.ID, id)
		}
		members = append(members, c)
	}

	basenames := make([]string, len(members))
	var desc strings.Builder
	desc.WriteString("Changes:\n")
	for i, c := range members {
		basenames[i] = path.Base(c.Path)
		noun := "hunks"
		if len(c.Hunks) == 1 {
			noun = "hunk"
		}
		desc.WriteString(fmt.Sprintf("- %s (%d %s)\n", c.Path, len(c.Hunks), noun))
	}

	return types.CommitPlan{
		ID:          CommitID(group.ID),
		Title:       title(basenames),
		Description: strings.TrimRight(desc.String(), "\n"),
		GroupIDs:    []string{group.ID},
	}, nil
}

// BuildPlans maps each group to its plan, preserving group order.
func BuildPlans(groups []types.ChangeGroup, all []types.Change) ([]types.CommitPlan, error) {
	plans := make([]types.CommitPlan, 0, len(groups))
	for _, g := range groups {
		plan, err := BuildPlan(g, all)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// title derives the heuristic commit title from file basenames:
// up to three names joined with ", "; four or more become the first
// two names followed by "and N more".
func title(basenames []string) string {
	switch {
	case len(basenames) == 0:
		return "Update files"
	case len(basenames) <= 3:
		return "Update " + strings.Join(basenames, ", ")
	default:
		return fmt.Sprintf("Update %s, %s, and %d more",
			basenames[0], basenames[1], len(basenames)-2)
	}
}
