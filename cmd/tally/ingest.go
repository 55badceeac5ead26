package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/aggregate"
	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/extract"
	"github.com/tallyflow/tally/internal/ledger"
	"github.com/tallyflow/tally/internal/llm"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/parser"
	"github.com/tallyflow/tally/internal/resolver"
	"github.com/tallyflow/tally/internal/service"
	"github.com/tallyflow/tally/internal/tasks"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a bank statement and commit its transactions",
		Long: `Parse a statement from raw text, a PDF, or an OFX export, categorize
every transaction, review the result interactively, and commit the
selection as one statement.

With no source flag, raw statement text is read from stdin.`,
		RunE: runIngest,
	}

	cmd.Flags().String("file", "", "path to a raw text statement")
	cmd.Flags().String("pdf", "", "path to a PDF statement")
	cmd.Flags().String("ofx", "", "path to an OFX/QFX export")
	cmd.Flags().Int("month", 0, "statement month 1-12 (default: current month)")
	cmd.Flags().Int("year", 0, "statement year (default: current year)")
	cmd.Flags().String("user", "", "user id to file the statement under")
	cmd.Flags().Bool("yes", false, "skip interactive review and commit everything")
	cmd.Flags().Int("workers", 0, "concurrent classification workers")

	return cmd
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	now := time.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return common.NewUserError(fmt.Sprintf("month %d is out of range", month), nil)
	}

	candidates, meta, err := loadCandidates(ctx, cmd, year, logger)
	if errors.Is(err, common.ErrExtractionEmpty) {
		return common.NewUserError("no transactions found in the statement", err)
	}
	if err != nil {
		return err
	}

	if err := categorizeCandidates(ctx, cmd, candidates, logger); err != nil {
		return err
	}

	session := ledger.New(candidates)

	skipReview, _ := cmd.Flags().GetBool("yes")
	if !skipReview {
		commit, reviewErr := cli.NewVerifier(cmd.InOrStdin(), cmd.OutOrStdout()).Review(ctx, session)
		if reviewErr != nil {
			return reviewErr
		}
		if !commit {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatError("statement discarded, nothing committed"))
			return nil
		}
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	userFlag, _ := cmd.Flags().GetString("user")
	stmt := &model.Statement{
		ID:            uuid.New().String(),
		UserID:        currentUser(userFlag),
		Month:         month,
		Year:          year,
		OriginBank:    meta.Bank,
		AccountNumber: meta.Account,
	}
	if err := store.CreateStatement(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create statement: %w", err)
	}

	count, err := session.Commit(ctx, store, stmt.ID)
	if err != nil {
		return err
	}

	income, expenses := session.Totals()
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
		"committed %d transactions to statement %s (income %.2f, expenses %.2f)",
		count, stmt.ID, income, expenses,
	)))

	publishInsightTask(ctx, store, stmt, logger, cmd.OutOrStdout())

	return nil
}

// loadCandidates turns whichever source was given into normalized candidate
// transactions. Exactly one source is used; flags win over stdin.
func loadCandidates(ctx context.Context, cmd *cobra.Command, year int, logger *slog.Logger) ([]model.Transaction, service.ExtractionMetadata, error) {
	var meta service.ExtractionMetadata

	ofxPath, _ := cmd.Flags().GetString("ofx")
	if ofxPath != "" {
		f, err := os.Open(ofxPath)
		if err != nil {
			return nil, meta, fmt.Errorf("failed to open OFX file: %w", err)
		}
		defer func() { _ = f.Close() }()

		extraction, err := extract.NewOFXSource().Read(f)
		if err != nil {
			return nil, meta, err
		}

		candidates, err := extract.NewNormalizer().Normalize(extraction, year)
		return candidates, extraction.Metadata, err
	}

	pdfPath, _ := cmd.Flags().GetString("pdf")
	if pdfPath != "" {
		rawText, err := extract.PDFText(pdfPath)
		if err != nil {
			return nil, meta, err
		}
		return extractFromText(ctx, rawText, year, logger)
	}

	filePath, _ := cmd.Flags().GetString("file")
	var rawText string
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, meta, fmt.Errorf("failed to read statement file: %w", err)
		}
		rawText = string(data)
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, meta, fmt.Errorf("failed to read stdin: %w", err)
		}
		rawText = string(data)
	}

	candidates, err := extract.NewNormalizer().FromCandidates(parser.New().Parse(rawText, year))
	return candidates, meta, err
}

// extractFromText prefers the document-extraction collaborator when one is
// configured and falls back to line parsing when it is not, or when
// extraction fails.
func extractFromText(ctx context.Context, rawText string, year int, logger *slog.Logger) ([]model.Transaction, service.ExtractionMetadata, error) {
	var meta service.ExtractionMetadata

	cfg := llmConfig()
	if cfg.APIKey != "" {
		client, err := llm.NewClient(cfg)
		if err != nil {
			return nil, meta, err
		}

		extraction, err := llm.NewExtractor(client, logger).ExtractTransactions(ctx, rawText)
		if err == nil {
			candidates, normErr := extract.NewNormalizer().Normalize(extraction, year)
			if normErr == nil {
				return candidates, extraction.Metadata, nil
			}
			logger.Warn("extraction result unusable, falling back to line parser", "error", normErr)
		} else {
			logger.Warn("document extraction failed, falling back to line parser", "error", err)
		}
	}

	candidates, err := extract.NewNormalizer().FromCandidates(parser.New().Parse(rawText, year))
	return candidates, meta, err
}

// categorizeCandidates fans the candidate batch out to the classifier behind
// a progress bar. Without an API key every candidate keeps its upstream
// category, or lands as Uncategorized at commit.
func categorizeCandidates(ctx context.Context, cmd *cobra.Command, candidates []model.Transaction, logger *slog.Logger) error {
	classifier, err := newClassifier(logger)
	if err != nil {
		return err
	}
	if classifier == nil {
		logger.Warn("no LLM API key configured, transactions will not be auto-categorized")
		return nil
	}
	defer classifier.Close()

	workers, _ := cmd.Flags().GetInt("workers")
	bar := cli.NewClassificationProgress(len(candidates), cmd.OutOrStdout())

	resolver.New(classifier, logger, workers).ResolveBatch(ctx, candidates, func() {
		if barErr := bar.Add(1); barErr != nil {
			logger.Warn("Failed to update progress bar", "error", barErr)
		}
	})

	return nil
}

// publishInsightTask queues the advisory insight generation that follows a
// successful commit. Failures are logged and dropped; the commit already
// happened.
func publishInsightTask(ctx context.Context, store service.Storage, stmt *model.Statement, logger *slog.Logger, out io.Writer) {
	cfg := llmConfig()
	if cfg.APIKey == "" {
		return
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		logger.Warn("skipping insight generation", "error", err)
		return
	}

	insighter := llm.NewInsighter(client, logger)
	engine := aggregate.New(store)

	queue := tasks.NewQueue(1, 1, func(taskCtx context.Context, task service.Task) error {
		summary, habitErr := engine.HabitSummary(taskCtx, task.UserID, aggregate.DefaultHabitMonths, time.Now())
		if habitErr != nil {
			return habitErr
		}
		if summary == nil {
			return nil
		}

		insight, genErr := insighter.GenerateInsight(taskCtx, summary)
		if genErr != nil {
			return genErr
		}

		fmt.Fprintln(out, cli.FormatTitle("Spending insight"))
		fmt.Fprintln(out, insight)
		return nil
	}, logger)

	if err := queue.Publish(ctx, service.Task{
		Kind:        tasks.KindGenerateInsight,
		StatementID: stmt.ID,
		UserID:      stmt.UserID,
	}); err != nil {
		logger.Warn("failed to queue insight task", "error", err)
	}

	// The process is about to exit; wait for the advisory work to drain.
	_ = queue.Close()
}
