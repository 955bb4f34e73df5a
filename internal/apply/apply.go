// Package apply validates and executes a chosen commit plan against the
// live repository through ordered safety gates. It is the only package
// that mutates shared repository state.
package apply

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/semcommit/semcommit/internal/changes"
	"github.com/semcommit/semcommit/internal/git"
	"github.com/semcommit/semcommit/internal/grouping"
	"github.com/semcommit/semcommit/internal/planner"
	"github.com/semcommit/semcommit/internal/types"
)

// Request describes one apply invocation.
type Request struct {
	// CommitID names the plan to apply.
	CommitID string

	// Confirm must be explicitly true; anything else fails the first
	// gate. This protects against loosely-typed automated callers.
	Confirm bool

	// DryRun previews the commit without staging or committing.
	// Callers default this to true; only an explicit false commits.
	DryRun bool

	// ExpectedHead, when non-empty, must match the current HEAD (full
	// SHA or unambiguous prefix) or the apply fails.
	ExpectedHead string

	// MessageOverride replaces the heuristic title; the generated
	// description is dropped when it is set.
	MessageOverride string

	// AllowOutOfScope skips the staged-outside-scope gate.
	AllowOutOfScope bool
}

// Applier applies commit plans through the gate sequence.
type Applier struct {
	git      *git.Git
	repo     string
	loader   *changes.Loader
	pipeline *grouping.Pipeline
}

// Config holds Applier dependencies.
type Config struct {
	Git      *git.Git
	RepoPath string
	Loader   *changes.Loader
	Pipeline *grouping.Pipeline
}

// NewApplier creates an Applier.
func NewApplier(cfg *Config) (*Applier, error) {
	if cfg.Git == nil {
		return nil, fmt.Errorf("git is required")
	}
	if cfg.Loader == nil {
		return nil, fmt.Errorf("change loader is required")
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("grouping pipeline is required")
	}
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}
	return &Applier{
		git:      cfg.Git,
		repo:     cfg.RepoPath,
		loader:   cfg.Loader,
		pipeline: cfg.Pipeline,
	}, nil
}

// Apply runs the gate sequence in order, short-circuiting on the first
// failure. The gates are best-effort optimistic concurrency, not a
// transaction: HEAD can still move between the expected-HEAD check and
// the commit, and that narrow race is accepted by design of the
// underlying repository, which offers no usable cross-process lock.
func (a *Applier) Apply(ctx context.Context, req Request) (*types.ApplyResult, error) {
	// Gate 1: explicit confirmation.
	if !req.Confirm {
		return nil, &GateError{
			Kind:    KindConfirmation,
			Message: "confirmation required: pass confirm=true to apply a commit",
		}
	}

	// Gate 2: no unresolved merge conflicts.
	unmerged, err := a.git.UnmergedFiles(ctx, a.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to check for conflicts: %w", err)
	}
	if len(unmerged) > 0 {
		return nil, &GateError{
			Kind: KindConflict,
			Message: fmt.Sprintf("repository has unresolved merge conflicts in: %s",
				strings.Join(unmerged, ", ")),
		}
	}

	// Gate 3: recompute the pipeline from current repository state and
	// resolve the requested plan. This recomputation is what keeps the
	// system stateless yet ID-addressable.
	plan, files, err := a.resolvePlan(ctx, req.CommitID)
	if err != nil {
		return nil, err
	}

	// Gate 4: optimistic concurrency against a caller-supplied HEAD.
	if req.ExpectedHead != "" {
		head, err := a.git.Head(ctx, a.repo)
		if err != nil {
			return nil, fmt.Errorf("failed to read HEAD: %w", err)
		}
		if !strings.HasPrefix(head, req.ExpectedHead) {
			return nil, &GateError{
				Kind: KindHeadMoved,
				Message: fmt.Sprintf("HEAD has moved: expected %s, currently %s",
					req.ExpectedHead, head),
			}
		}
	}

	// Gate 5: no unrelated staged work, unless overridden.
	if !req.AllowOutOfScope {
		staged, err := a.git.StagedFiles(ctx, a.repo)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect staged files: %w", err)
		}
		if outside := outsideScope(staged, files); len(outside) > 0 {
			return nil, &GateError{
				Kind: KindScope,
				Message: fmt.Sprintf("staged changes outside commit scope: %s (pass the scope override to proceed anyway)",
					strings.Join(outside, ", ")),
			}
		}
	}

	// Execution.
	title, description := resolveMessage(plan, req.MessageOverride)
	message := title
	if description != "" {
		message = title + "\n\n" + description
	}

	result := &types.ApplyResult{
		Success: true,
		DryRun:  req.DryRun,
		Files:   files,
		Message: message,
	}
	if req.DryRun {
		return result, nil
	}

	if err := a.git.StageFiles(ctx, a.repo, files); err != nil {
		return nil, err
	}
	sha, err := a.git.Commit(ctx, a.repo, title, description)
	if err != nil {
		return nil, err
	}
	result.CommitSHA = sha
	return result, nil
}

// resolvePlan recomputes changes, groups, and plans from the current
// repository state and returns the plan matching commitID along with
// its sorted file set.
func (a *Applier) resolvePlan(ctx context.Context, commitID string) (*types.CommitPlan, []string, error) {
	all, err := a.loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	groups, err := a.pipeline.Group(ctx, all)
	if err != nil {
		return nil, nil, err
	}
	plans, err := planner.BuildPlans(groups, all)
	if err != nil {
		return nil, nil, err
	}

	groupsByID := make(map[string]types.ChangeGroup, len(groups))
	for _, g := range groups {
		groupsByID[g.ID] = g
	}
	changesByID := make(map[string]types.Change, len(all))
	for _, c := range all {
		changesByID[c.ID] = c
	}

	for i := range plans {
		if plans[i].ID != commitID {
			continue
		}
		fileSet := make(map[string]bool)
		for _, gid := range plans[i].GroupIDs {
			for _, cid := range groupsByID[gid].ChangeIDs {
				fileSet[changesByID[cid].Path] = true
			}
		}
		files := make([]string, 0, len(fileSet))
		for f := range fileSet {
			files = append(files, f)
		}
		sort.Strings(files)
		return &plans[i], files, nil
	}

	return nil, nil, &GateError{
		Kind:    KindUnknownCommit,
		Message: fmt.Sprintf("unknown commit ID %s: no plan with that ID exists for the current changes", commitID),
	}
}

// resolveMessage applies the override policy: an override replaces the
// heuristic title and drops the generated description entirely.
func resolveMessage(plan *types.CommitPlan, override string) (title, description string) {
	if override != "" {
		return override, ""
	}
	return plan.Title, plan.Description
}

// outsideScope returns staged paths not covered by the plan's file set.
func outsideScope(staged, planFiles []string) []string {
	covered := make(map[string]bool, len(planFiles))
	for _, f := range planFiles {
		covered[f] = true
	}
	var outside []string
	for _, f := range staged {
		if !covered[f] {
			outside = append(outside, f)
		}
	}
	return outside
}
