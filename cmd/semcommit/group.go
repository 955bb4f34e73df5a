package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semcommit/semcommit/internal/tools"
)

var groupCmd = &cobra.Command{
	Use:   "group [change-id...]",
	Short: "Cluster uncommitted changes into groups",
	Long: `Cluster the repository's uncommitted changes by intent using embedding
similarity. With no arguments all changes are grouped; passing change
IDs restricts grouping to that subset. Group IDs are derived from
membership, so the same members always produce the same ID.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dispatcher, err := setupDispatcher(ctx)
		if err != nil {
			fatal("%v", err)
		}

		res := dispatcher.GroupChanges(ctx, tools.GroupRequest{ChangeIDs: args})
		if emitJSON(res) {
			return
		}
		if res.IsError {
			fatal("%s", res.Error)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		if len(res.Groups) == 0 {
			fmt.Printf("\n%s No uncommitted changes to group\n\n", yellow("✨"))
			return
		}

		fmt.Printf("\n%s (%d):\n\n", cyan("Change groups"), len(res.Groups))
		for _, g := range res.Groups {
			fmt.Printf("%s  %s\n", g.ID, g.Summary)
			for _, id := range g.ChangeIDs {
				fmt.Printf("  %s %s\n", gray("├─"), id)
			}
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
}
