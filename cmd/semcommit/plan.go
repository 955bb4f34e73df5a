package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semcommit/semcommit/internal/tools"
)

var planCmd = &cobra.Command{
	Use:   "plan [group-id...]",
	Short: "Derive commit plans from change groups",
	Long: `Recompute the current change groups and derive a commit plan from each.
With no arguments every group gets a plan; passing group IDs restricts
planning to those groups. A plan's ID is derived from its group, so it
is stable across repeated runs over the same changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dispatcher, err := setupDispatcher(ctx)
		if err != nil {
			fatal("%v", err)
		}

		res := dispatcher.PlanCommits(ctx, tools.PlanRequest{GroupIDs: args})
		if emitJSON(res) {
			return
		}
		if res.IsError {
			fatal("%s", res.Error)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		if len(res.Plans) == 0 {
			fmt.Printf("\n%s No changes to plan\n\n", yellow("✨"))
			return
		}

		fmt.Printf("\n%s (%d):\n\n", cyan("Commit plans"), len(res.Plans))
		for _, p := range res.Plans {
			fmt.Printf("%s  %s\n", p.ID, p.Title)
			fmt.Printf("  %s groups: %v\n", gray("├─"), p.GroupIDs)
			fmt.Printf("  %s %s\n", gray("└─"), p.Description)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
