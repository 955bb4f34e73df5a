package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semcommit/semcommit/internal/tools"
)

var (
	applyConfirm         bool
	applyDryRun          bool
	applyExpectedHead    string
	applyMessage         string
	applyAllowOutOfScope bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <commit-id>",
	Short: "Apply a commit plan through the safety gates",
	Long: `Apply the commit plan with the given ID. The plan is recomputed from
the repository's current state, then validated through ordered gates:
explicit confirmation, no unresolved merge conflicts, plan resolution,
optional expected-HEAD check, and a staged-outside-scope check.

The default is a dry run that reports the file set and message without
touching the repository. Pass --confirm --dry-run=false to commit.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dispatcher, err := setupDispatcher(ctx)
		if err != nil {
			fatal("%v", err)
		}

		res := dispatcher.ApplyCommit(ctx, tools.ApplyRequest{
			CommitID:        args[0],
			Confirm:         applyConfirm,
			DryRun:          &applyDryRun,
			ExpectedHead:    applyExpectedHead,
			Message:         applyMessage,
			AllowOutOfScope: applyAllowOutOfScope,
		})
		if emitJSON(res) {
			return
		}
		if res.IsError {
			fatal("%s", res.Error)
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if res.Apply.DryRun {
			fmt.Printf("\n%s Dry run: no commit created\n", yellow("⚠"))
		} else {
			fmt.Printf("\n%s Committed %s\n", green("✓"), res.Apply.CommitSHA)
		}
		fmt.Printf("Message: %s\n", res.Apply.Message)
		fmt.Printf("Files (%d):\n", len(res.Apply.Files))
		for _, f := range res.Apply.Files {
			fmt.Printf("  %s %s\n", gray("├─"), f)
		}
		fmt.Println()
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyConfirm, "confirm", false, "explicitly confirm the commit")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", true, "preview without staging or committing")
	applyCmd.Flags().StringVar(&applyExpectedHead, "expected-head", "", "fail if HEAD no longer matches this SHA")
	applyCmd.Flags().StringVar(&applyMessage, "message", "", "override the heuristic commit message")
	applyCmd.Flags().BoolVar(&applyAllowOutOfScope, "allow-out-of-scope", false, "skip the staged-outside-scope gate")

	rootCmd.AddCommand(applyCmd)
}
