package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semcommit/semcommit/internal/git"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository state as semcommit sees it",
	Long:  `Display HEAD and the modified, staged, untracked, and unmerged files.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		g, err := git.NewGit(ctx)
		if err != nil {
			fatal("%v", err)
		}
		if !g.IsRepo(ctx, repoPath) {
			fatal("not a git repository: %s", repoPath)
		}

		head, err := g.Head(ctx, repoPath)
		if err != nil {
			fatal("failed to read HEAD: %v", err)
		}
		status, err := g.Status(ctx, repoPath)
		if err != nil {
			fatal("%v", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Repository Status ==="))
		if head == "" {
			fmt.Printf("HEAD: %s\n", gray("(no commits yet)"))
		} else {
			fmt.Printf("HEAD: %s\n", head)
		}

		printFileList("Modified", status.Modified, gray)
		printFileList("Staged", status.Staged, gray)
		printFileList("Untracked", status.Untracked, gray)
		if len(status.Unmerged) > 0 {
			fmt.Printf("%s (%d):\n", red("Unmerged"), len(status.Unmerged))
			for _, f := range status.Unmerged {
				fmt.Printf("  %s %s\n", red("✗"), f)
			}
		}
		if !status.HasChanges {
			fmt.Printf("%s\n", gray("Working tree clean"))
		}
		fmt.Println()
	},
}

func printFileList(label string, files []string, gray func(...interface{}) string) {
	if len(files) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", label, len(files))
	for _, f := range files {
		fmt.Printf("  %s %s\n", gray("├─"), f)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
