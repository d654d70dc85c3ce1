package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flashillumination/flashbooks/internal/render"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var output string
	var auditDB string

	cmd := &cobra.Command{
		Use:   "render <books-file>",
		Short: "Recompute and export the reports as an Excel workbook",
		Long: `Load a books file, recompute every derived report, and write the full
report workbook: dashboard, revenue, debtors, cash, reconciliation,
profit & loss, balance sheet, tax summary and the account listings.

Example:
  flashbooks render books.yaml -o reports.xlsx --as-of 2025-06-30`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, args[0], output, auditDB, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "path to the workbook to write (required)")
	cmd.Flags().StringVar(&auditDB, "audit-db", "", "path to SQLite audit log (optional)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRender(opts *RootOptions, booksPath, output, auditDB string, cmd *cobra.Command) error {
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

	if err := render.Save(snap, output); err != nil {
		return WrapExitError(ExitCommandError, "write workbook", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"workbook": output,
			"revision": snap.Revision,
			"warnings": len(snap.Warnings),
		})
	}
	return formatter.Success(fmt.Sprintf("wrote %s (revision %d, %d warning(s))",
		output, snap.Revision, len(snap.Warnings)))
}
