package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/semcommit/semcommit/internal/apply"
	"github.com/semcommit/semcommit/internal/changes"
	"github.com/semcommit/semcommit/internal/config"
	"github.com/semcommit/semcommit/internal/embed"
	"github.com/semcommit/semcommit/internal/git"
	"github.com/semcommit/semcommit/internal/grouping"
	"github.com/semcommit/semcommit/internal/pr"
	"github.com/semcommit/semcommit/internal/tools"
)

var (
	repoPath   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "semcommit",
	Short: "Group uncommitted changes into semantic commits",
	Long: `semcommit clusters a repository's uncommitted changes by intent,
derives content-addressed commit plans from the clusters, and applies a
chosen plan through ordered safety gates.

Nothing is cached between invocations: every command recomputes from the
repository, and IDs are pure functions of content, so they stay stable
across repeated runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", ".", "path to the git repository")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit the raw result envelope as JSON")
}

// setupDispatcher builds the full component stack for one invocation.
func setupDispatcher(ctx context.Context) (*tools.Dispatcher, error) {
	g, err := git.NewGit(ctx)
	if err != nil {
		return nil, err
	}
	if !g.IsRepo(ctx, repoPath) {
		return nil, fmt.Errorf("not a git repository: %s", repoPath)
	}

	cfg, err := config.Load(repoPath)
	if err != nil {
		return nil, err
	}
	provider, err := embed.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	loader := changes.NewLoader(g, repoPath)
	pipeline := grouping.NewPipeline(provider, cfg.SimilarityThreshold)

	applier, err := apply.NewApplier(&apply.Config{
		Git:      g,
		RepoPath: repoPath,
		Loader:   loader,
		Pipeline: pipeline,
	})
	if err != nil {
		return nil, err
	}

	return tools.NewDispatcher(&tools.Config{
		Loader:   loader,
		Pipeline: pipeline,
		Applier:  applier,
		Drafter:  pr.NewDrafter(g, repoPath),
	})
}

// emitJSON prints the result envelope and reports whether it handled
// the output (commands fall back to human-readable rendering otherwise).
func emitJSON(res *tools.Result) bool {
	if !jsonOutput {
		return false
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fatal("failed to encode result: %v", err)
	}
	fmt.Println(string(data))
	if res.IsError {
		os.Exit(1)
	}
	return true
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
