package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semcommit/semcommit/internal/tools"
)

var draftPRCmd = &cobra.Command{
	Use:   "draft-pr <commit-ref>...",
	Short: "Compose a pull-request draft from commits",
	Long: `Read the given commits from the repository and compose a pull-request
title and description from their real metadata. References may be full
SHAs, abbreviated SHAs, or anything git can resolve.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dispatcher, err := setupDispatcher(ctx)
		if err != nil {
			fatal("%v", err)
		}

		res := dispatcher.DraftPR(ctx, tools.DraftPRRequest{CommitRefs: args})
		if emitJSON(res) {
			return
		}
		if res.IsError {
			fatal("%s", res.Error)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s %s\n\n", cyan("Title:"), res.PR.Title)
		fmt.Println(res.PR.Description)
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(draftPRCmd)
}
