package types

// DiffLineKind classifies a single line within a hunk.
type DiffLineKind string

const (
	LineContext DiffLineKind = "context"
	LineAdded   DiffLineKind = "added"
	LineRemoved DiffLineKind = "removed"
)

// DiffLine is one line of a hunk with its classification.
type DiffLine struct {
	Kind DiffLineKind `json:"kind"`
	Text string       `json:"text"`
}

// Hunk is a contiguous diff region within one file.
// OldStart/OldLines describe the range in the pre-image,
// NewStart/NewLines the range in the post-image.
type Hunk struct {
	OldStart int `json:"old_start"`
	OldLines int `json:"old_lines"`
	NewStart int `json:"new_start"`
	NewLines int `json:"new_lines"`

	// Header is the trailing context on the @@ line (usually the
	// enclosing function), may be empty.
	Header string `json:"header,omitempty"`

	Lines []DiffLine `json:"lines"`
}

// Change represents one file's uncommitted modification.
// Changes are immutable snapshots of repository state at load time;
// no change outlives the invocation that produced it.
type Change struct {
	// ID is content-addressed from the file path, so it is stable
	// across invocations as long as the path is unchanged.
	ID   string `json:"id"`
	Path string `json:"path"`

	// Untracked is true for files git does not know about yet; their
	// hunks are synthesized as pure additions.
	Untracked bool `json:"untracked,omitempty"`

	Hunks []Hunk `json:"hunks"`
}

// ChangeGroup is a set of changes believed to share intent.
// ChangeIDs is semantically a set; order is preserved only for display.
// Every member must resolve in the change set the group was computed from.
type ChangeGroup struct {
	ID        string   `json:"id"`
	ChangeIDs []string `json:"change_ids"`
	Summary   string   `json:"summary"`
}

// CommitPlan is a proposed commit derived from one ChangeGroup.
// The union of changes reachable from GroupIDs defines exactly the
// file set the plan will stage.
type CommitPlan struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	GroupIDs    []string `json:"group_ids"`
}

// ApplyResult reports the outcome of applying (or previewing) a
// CommitPlan against the repository.
type ApplyResult struct {
	Success bool `json:"success"`
	DryRun  bool `json:"dry_run"`

	// CommitSHA is set only when a commit was actually created.
	CommitSHA string `json:"commit_sha,omitempty"`

	// Files is the file set that was (or would be) committed.
	Files []string `json:"files"`

	// Message is the resolved commit message: the title, and the
	// description as a second paragraph when present.
	Message string `json:"message"`
}

// CommitDetail is metadata read back from the repository for one
// commit, used when drafting a pull request.
type CommitDetail struct {
	SHA     string   `json:"sha"`
	Subject string   `json:"subject"`
	Body    string   `json:"body,omitempty"`
	Files   []string `json:"files"`
}

// PRDraft is a composed pull-request description.
type PRDraft struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Commits     []CommitDetail `json:"commits"`
}
