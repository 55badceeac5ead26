package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/model"
)

func recategorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recategorize <transaction-id> <category>",
		Short: "Manually reassign a transaction's category",
		Long: `Overwrite the stored category of a single committed transaction.

The category must be one of the known vocabulary; run "tally categories"
to see it.`,
		Args: cobra.ExactArgs(2),
		RunE: runRecategorize,
	}
}

func runRecategorize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	transactionID, category := args[0], args[1]

	if !model.ValidCategory(category) {
		return fmt.Errorf("unknown category %q, expected one of: %s",
			category, strings.Join(model.Categories, ", "))
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.UpdateTransactionCategory(ctx, transactionID, category); err != nil {
		return err
	}

	txn, err := store.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
		"%s (%.2f) is now %s", txn.Description, txn.MajorUnits(), txn.Category,
	)))

	return nil
}
