package git

// Status represents the parsed porcelain status of a repository.
type Status struct {
	// Modified files with work-tree changes (staged or not)
	Modified []string

	// Staged files with index changes
	Staged []string

	// Untracked files
	Untracked []string

	// Unmerged files with unresolved merge conflicts
	Unmerged []string

	// HasChanges is true if any entry was reported at all
	HasChanges bool
}

// Commit holds metadata read back from the repository for one commit.
type Commit struct {
	SHA     string
	Subject string
	Body    string
	Files   []string
}
