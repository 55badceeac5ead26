package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/model"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the category vocabulary",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Categories"))
			for _, category := range model.Categories {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", category)
			}
		},
	}
}
