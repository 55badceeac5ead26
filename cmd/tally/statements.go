package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
)

func statementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Manage ingested statements",
	}

	cmd.AddCommand(statementsListCmd())
	cmd.AddCommand(statementsDeleteCmd())

	return cmd
}

func statementsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's statements, newest period first",
		RunE:  runStatementsList,
	}

	cmd.Flags().String("user", "", "user id")

	return cmd
}

func runStatementsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	userFlag, _ := cmd.Flags().GetString("user")
	statements, err := store.ListStatements(ctx, currentUser(userFlag))
	if err != nil {
		return err
	}

	cli.RenderStatements(cmd.OutOrStdout(), statements)

	return nil
}

func statementsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <statement-id>",
		Short: "Delete a statement and every transaction it owns",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatementsDelete,
	}
}

func runStatementsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteStatement(ctx, args[0]); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("deleted statement %s", args[0])))

	return nil
}
