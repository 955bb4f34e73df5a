package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/semcommit/semcommit/internal/config"
	"github.com/semcommit/semcommit/internal/git"
)

// minGitVersion is the oldest git release with the porcelain and
// pathspec behavior semcommit relies on.
const minGitVersion = "v2.20.0"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment for problems",
	Long:  `Run offline checks: git availability and version, repository detection, and embedding configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		var failures []string

		fmt.Printf("%s git binary\n", cyan("→"))
		g, err := git.NewGit(ctx)
		if err != nil {
			failures = append(failures, err.Error())
			fmt.Printf("  %s %v\n", red("✗"), err)
		} else {
			fmt.Printf("  %s git found\n", green("✓"))

			version, err := g.Version(ctx)
			if err != nil {
				failures = append(failures, err.Error())
				fmt.Printf("  %s %v\n", red("✗"), err)
			} else if semver.Compare(canonicalGitVersion(version), minGitVersion) < 0 {
				msg := fmt.Sprintf("git %s is too old (need %s or newer)", version, strings.TrimPrefix(minGitVersion, "v"))
				failures = append(failures, msg)
				fmt.Printf("  %s %s\n", red("✗"), msg)
			} else {
				fmt.Printf("  %s git %s\n", green("✓"), version)
			}
		}

		fmt.Printf("%s repository\n", cyan("→"))
		if g != nil && g.IsRepo(ctx, repoPath) {
			fmt.Printf("  %s git repository at %s\n", green("✓"), repoPath)
		} else {
			failures = append(failures, fmt.Sprintf("not a git repository: %s", repoPath))
			fmt.Printf("  %s not a git repository: %s\n", red("✗"), repoPath)
		}

		fmt.Printf("%s embeddings\n", cyan("→"))
		cfg, err := config.Load(repoPath)
		switch {
		case err != nil:
			failures = append(failures, err.Error())
			fmt.Printf("  %s %v\n", red("✗"), err)
		case cfg.Embeddings.Local:
			fmt.Printf("  %s deterministic local embeddings enabled\n", green("✓"))
		case cfg.Embeddings.APIKey != "":
			fmt.Printf("  %s %s is set\n", green("✓"), config.EnvAPIKey)
		default:
			failures = append(failures, fmt.Sprintf("%s not set and local embeddings disabled", config.EnvAPIKey))
			fmt.Printf("  %s %s not set (set it, or %s=1 for offline mode)\n",
				red("✗"), config.EnvAPIKey, config.EnvLocalEmbeddings)
		}

		fmt.Println()
		if len(failures) > 0 {
			fmt.Printf("%s %d problem(s) found\n", yellow("⚠"), len(failures))
			os.Exit(1)
		}
		fmt.Printf("%s all checks passed\n", green("✓"))
	},
}

// canonicalGitVersion maps git's version string to a comparable semver:
// "2.39.2.windows.1" becomes "v2.39.2".
func canonicalGitVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "v" + strings.Join(parts, ".")
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
