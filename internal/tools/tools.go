// Package tools is the operation boundary in front of the core: typed
// requests validated before any algorithm runs, and failures converted
// into a result envelope that preserves the original message verbatim.
// The core itself never formats user-facing text.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/semcommit/semcommit/internal/apply"
	"github.com/semcommit/semcommit/internal/changes"
	"github.com/semcommit/semcommit/internal/grouping"
	"github.com/semcommit/semcommit/internal/planner"
	"github.com/semcommit/semcommit/internal/pr"
	"github.com/semcommit/semcommit/internal/types"
)

// Result is the envelope every operation returns. Exactly one payload
// field is set on success; on failure IsError is true and Error holds
// the raw failure message.
type Result struct {
	RequestID string `json:"request_id"`
	IsError   bool   `json:"is_error"`
	Error     string `json:"error,omitempty"`

	Groups []types.ChangeGroup `json:"groups,omitempty"`
	Plans  []types.CommitPlan  `json:"plans,omitempty"`
	Apply  *types.ApplyResult  `json:"apply,omitempty"`
	PR     *types.PRDraft      `json:"pr,omitempty"`
}

// GroupRequest selects changes to group. An empty ChangeIDs list means
// all current changes.
type GroupRequest struct {
	ChangeIDs []string `json:"change_ids,omitempty"`
}

// PlanRequest selects groups to plan. An empty GroupIDs list means all
// current groups.
type PlanRequest struct {
	GroupIDs []string `json:"group_ids,omitempty"`
}

// ApplyRequest mirrors apply.Request at the boundary. DryRun defaults
// to true when the caller does not set it explicitly.
type ApplyRequest struct {
	CommitID        string `json:"commit_id"`
	Confirm         bool   `json:"confirm"`
	DryRun          *bool  `json:"dry_run,omitempty"`
	ExpectedHead    string `json:"expected_head,omitempty"`
	Message         string `json:"message,omitempty"`
	AllowOutOfScope bool   `json:"allow_out_of_scope,omitempty"`
}

// DraftPRRequest names the commits a PR draft should cover.
type DraftPRRequest struct {
	CommitRefs []string `json:"commit_refs"`
}

// Dispatcher wires the four operations to the core components.
type Dispatcher struct {
	loader   *changes.Loader
	pipeline *grouping.Pipeline
	applier  *apply.Applier
	drafter  *pr.Drafter
}

// Config holds Dispatcher dependencies.
type Config struct {
	Loader   *changes.Loader
	Pipeline *grouping.Pipeline
	Applier  *apply.Applier
	Drafter  *pr.Drafter
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg *Config) (*Dispatcher, error) {
	if cfg.Loader == nil || cfg.Pipeline == nil || cfg.Applier == nil || cfg.Drafter == nil {
		return nil, fmt.Errorf("loader, pipeline, applier, and drafter are all required")
	}
	return &Dispatcher{
		loader:   cfg.Loader,
		pipeline: cfg.Pipeline,
		applier:  cfg.Applier,
		drafter:  cfg.Drafter,
	}, nil
}

// GroupChanges recomputes the current change set and groups it, or the
// selected subset of it when ChangeIDs is non-empty.
func (d *Dispatcher) GroupChanges(ctx context.Context, req GroupRequest) *Result {
	res := newResult()
	if err := validateIDs(req.ChangeIDs, "change-"); err != nil {
		return res.fail(err)
	}

	all, err := d.loader.Load(ctx)
	if err != nil {
		return res.fail(err)
	}
	selected := all
	if len(req.ChangeIDs) > 0 {
		selected, err = changes.Resolve(req.ChangeIDs, all)
		if err != nil {
			return res.fail(err)
		}
	}

	groups, err := d.pipeline.Group(ctx, selected)
	if err != nil {
		return res.fail(err)
	}
	res.Groups = groups
	return res
}

// PlanCommits recomputes groups and returns commit plans, filtered to
// GroupIDs when non-empty.
func (d *Dispatcher) PlanCommits(ctx context.Context, req PlanRequest) *Result {
	res := newResult()
	if err := validateIDs(req.GroupIDs, "group-"); err != nil {
		return res.fail(err)
	}

	all, err := d.loader.Load(ctx)
	if err != nil {
		return res.fail(err)
	}
	groups, err := d.pipeline.Group(ctx, all)
	if err != nil {
		return res.fail(err)
	}

	if len(req.GroupIDs) > 0 {
		byID := make(map[string]types.ChangeGroup, len(groups))
		for _, g := range groups {
			byID[g.ID] = g
		}
		var selected []types.ChangeGroup
		var unknown []string
		for _, id := range req.GroupIDs {
			g, ok := byID[id]
			if !ok {
				unknown = append(unknown, id)
				continue
			}
			selected = append(selected, g)
		}
		if len(unknown) > 0 {
			return res.fail(fmt.Errorf("unknown group IDs: %s", strings.Join(unknown, ", ")))
		}
		groups = selected
	}

	plans, err := planner.BuildPlans(groups, all)
	if err != nil {
		return res.fail(err)
	}
	res.Plans = plans
	return res
}

// ApplyCommit validates the request and runs the apply gate sequence.
func (d *Dispatcher) ApplyCommit(ctx context.Context, req ApplyRequest) *Result {
	res := newResult()
	if req.CommitID == "" {
		return res.fail(fmt.Errorf("commit_id is required"))
	}
	if err := validateIDs([]string{req.CommitID}, "commit-"); err != nil {
		return res.fail(err)
	}

	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}

	applied, err := d.applier.Apply(ctx, apply.Request{
		CommitID:        req.CommitID,
		Confirm:         req.Confirm,
		DryRun:          dryRun,
		ExpectedHead:    req.ExpectedHead,
		MessageOverride: req.Message,
		AllowOutOfScope: req.AllowOutOfScope,
	})
	if err != nil {
		return res.fail(err)
	}
	res.Apply = applied
	return res
}

// DraftPR composes a pull-request draft from real commits.
func (d *Dispatcher) DraftPR(ctx context.Context, req DraftPRRequest) *Result {
	res := newResult()
	if len(req.CommitRefs) == 0 {
		return res.fail(fmt.Errorf("commit_refs must not be empty"))
	}

	draft, err := d.drafter.Draft(ctx, req.CommitRefs)
	if err != nil {
		return res.fail(err)
	}
	res.PR = draft
	return res
}

func newResult() *Result {
	return &Result{RequestID: uuid.New().String()}
}

// fail marks the result as an error, carrying the message verbatim.
func (r *Result) fail(err error) *Result {
	r.IsError = true
	r.Error = err.Error()
	return r
}

// validateIDs rejects malformed identifiers before they reach the core.
func validateIDs(ids []string, prefix string) error {
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) || len(id) != len(prefix)+8 {
			return fmt.Errorf("malformed ID %q: expected %s<8 hex chars>", id, prefix)
		}
	}
	return nil
}
