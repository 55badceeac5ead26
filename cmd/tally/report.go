package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/aggregate"
	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/model"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Spending reports over committed statements",
	}

	cmd.AddCommand(reportBreakdownCmd())
	cmd.AddCommand(reportTrendCmd())
	cmd.AddCommand(reportHabitsCmd())

	return cmd
}

func reportBreakdownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Per-category spending for one statement",
		RunE:  runReportBreakdown,
	}

	cmd.Flags().String("statement", "", "statement id")
	_ = cmd.MarkFlagRequired("statement")

	return cmd
}

func runReportBreakdown(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	statementID, _ := cmd.Flags().GetString("statement")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stmt, err := store.GetStatement(ctx, statementID)
	if err != nil {
		return err
	}

	summaries, err := aggregate.New(store).CategoryBreakdown(ctx, statementID)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %d", time.Month(stmt.Month), stmt.Year)
	cli.RenderBreakdown(cmd.OutOrStdout(), title, summaries)

	return nil
}

func reportTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Monthly spending over the last six months",
		RunE:  runReportTrend,
	}

	cmd.Flags().String("user", "", "user id")

	return cmd
}

func runReportTrend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	userFlag, _ := cmd.Flags().GetString("user")
	buckets, err := aggregate.New(store).MonthlyTrend(ctx, currentUser(userFlag), time.Now())
	if err != nil {
		return err
	}

	cli.RenderTrend(cmd.OutOrStdout(), buckets)

	return nil
}

func reportHabitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "Category habits over a trailing window or a calendar year",
		RunE:  runReportHabits,
	}

	cmd.Flags().String("user", "", "user id")
	cmd.Flags().Int("months", aggregate.DefaultHabitMonths, "trailing window in months")
	cmd.Flags().Int("year", 0, "summarize one calendar year instead")

	return cmd
}

func runReportHabits(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine := aggregate.New(store)
	userFlag, _ := cmd.Flags().GetString("user")
	user := currentUser(userFlag)

	year, _ := cmd.Flags().GetInt("year")
	months, _ := cmd.Flags().GetInt("months")

	var summaries []model.CategorySummary
	var title string
	if year > 0 {
		got, err := engine.YearlyHabits(ctx, user, year)
		if err != nil {
			return err
		}
		summaries, title = got, fmt.Sprintf("Habits %d", year)
	} else {
		got, err := engine.HabitSummary(ctx, user, months, time.Now())
		if err != nil {
			return err
		}
		summaries, title = got, fmt.Sprintf("Habits, last %d months", months)
	}

	if summaries == nil {
		fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("not enough data for a habit summary"))
		return nil
	}

	cli.RenderBreakdown(cmd.OutOrStdout(), title, summaries)

	return nil
}
