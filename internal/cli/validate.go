package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validate command results.
type ValidationResult struct {
	Valid    bool             `json:"valid"`
	Warnings []WarningSummary `json:"warnings,omitempty"`
}

// WarningSummary is one reconciliation warning in CLI output.
type WarningSummary struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Difference string `json:"difference,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var auditDB string

	cmd := &cobra.Command{
		Use:   "validate <books-file>",
		Short: "Load a books file and report reconciliation warnings",
		Long: `Load a books file, recompute every derived report, and run the
reconciliation checks: balance sheet balance, bank reconciliation, and
dangling record references.

Exits 0 when the books are clean, 1 when warnings were found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], auditDB, cmd)
		},
	}

	cmd.Flags().StringVar(&auditDB, "audit-db", "", "path to SQLite audit log (optional)")

	return cmd
}

func runValidate(opts *RootOptions, booksPath, auditDB string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	snap, err := loadBooks(cmd.Context(), opts, booksPath, auditDB)
	if err != nil {
		return err
	}

	formatter.VerboseLog("recomputed revision %d as of %s", snap.Revision, snap.AsOf.Format("2006-01-02"))

	result := ValidationResult{Valid: len(snap.Warnings) == 0}
	for _, w := range snap.Warnings {
		ws := WarningSummary{Code: string(w.Code), Message: w.Message}
		if !w.Difference.IsZero() {
			ws.Difference = w.Difference.String()
		}
		result.Warnings = append(result.Warnings, ws)
	}

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		return formatter.Success("books are clean: all reports reconcile")
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%d warning(s):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s\n", w.Code, w.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d reconciliation warning(s)", len(snap.Warnings)))
}
