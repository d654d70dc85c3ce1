package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/flashillumination/flashbooks/internal/views"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var auditDB string

	cmd := &cobra.Command{
		Use:   "report <books-file>",
		Short: "Recompute and print the derived reports",
		Long: `Load a books file, recompute every derived report as of the reference
date, and print the result.

Text format prints a readable summary of each report. JSON format emits
the snapshot's canonical encoding: compact, sorted keys, amounts as
decimal strings. The same books always produce the same bytes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(rootOpts, args[0], auditDB, cmd)
		},
	}

	cmd.Flags().StringVar(&auditDB, "audit-db", "", "path to SQLite audit log (optional)")

	return cmd
}

func runReport(opts *RootOptions, booksPath, auditDB string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	snap, err := loadBooks(cmd.Context(), opts, booksPath, auditDB)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		data, err := views.MarshalCanonical(snap)
		if err != nil {
			return WrapExitError(ExitCommandError, "encode snapshot", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func printSnapshot(w io.Writer, snap *views.Snapshot) {
	fmt.Fprintf(w, "%s - as of %s (revision %d)\n\n",
		snap.Settings.CompanyName, snap.AsOf.Format("2006-01-02"), snap.Revision)

	fmt.Fprintln(w, "Revenue")
	fmt.Fprintf(w, "  today %s, this month %s, YTD %s\n",
		snap.Revenue.Today, snap.Revenue.ThisMonth, snap.Revenue.YTD)
	fmt.Fprintf(w, "  invoiced %s, received %s, outstanding %s\n\n",
		snap.Revenue.TotalInvoiced, snap.Revenue.TotalReceived, snap.Revenue.TotalOutstanding)

	fmt.Fprintln(w, "Cash Position")
	fmt.Fprintf(w, "  in hand %s, at bank %s, total %s\n\n",
		snap.Cash.ClosingHand, snap.Cash.ClosingBank, snap.Cash.TotalCash)

	fmt.Fprintln(w, "Trade Debtors")
	fmt.Fprintf(w, "  outstanding %s (current %s, due soon %s, overdue %s)\n\n",
		snap.Debtors.TotalOutstanding, snap.Debtors.Current, snap.Debtors.DueSoon, snap.Debtors.Overdue)

	fmt.Fprintln(w, "Bank Reconciliation")
	status := "reconciled"
	if !snap.BankRec.Balanced {
		status = fmt.Sprintf("NOT reconciled, off by %s", snap.BankRec.Difference)
	}
	fmt.Fprintf(w, "  adjusted %s vs book %s: %s\n\n",
		snap.BankRec.AdjustedBalance, snap.BankRec.BookBalance, status)

	fmt.Fprintln(w, "Profit & Loss (YTD)")
	fmt.Fprintf(w, "  revenue %s, cost of services %s, gross profit %s\n",
		snap.ProfitAndLoss.YTD.Revenue, snap.ProfitAndLoss.YTD.CostOfServices, snap.ProfitAndLoss.YTD.GrossProfit)
	fmt.Fprintf(w, "  operating expenses %s, net income %s\n\n",
		snap.ProfitAndLoss.YTD.OperatingExpenses, snap.ProfitAndLoss.YTD.NetIncome)

	fmt.Fprintln(w, "Balance Sheet")
	fmt.Fprintf(w, "  assets %s, liabilities %s, equity %s\n",
		snap.BalanceSheet.TotalAssets, snap.BalanceSheet.TotalLiabilities, snap.BalanceSheet.TotalEquity)
	balStatus := "balanced"
	if !snap.BalanceSheet.Balanced {
		balStatus = fmt.Sprintf("OUT OF BALANCE by %s", snap.BalanceSheet.Difference)
	}
	fmt.Fprintf(w, "  %s\n\n", balStatus)

	fmt.Fprintln(w, "Tax Summary")
	fmt.Fprintf(w, "  VAT collected %s, VAT paid %s, net payable %s\n",
		snap.Tax.VATCollected, snap.Tax.VATPaid, snap.Tax.NetVATPayable)
	fmt.Fprintf(w, "  net profit before tax %s\n\n", snap.Tax.NetProfitBeforeTax)

	if len(snap.Warnings) > 0 {
		fmt.Fprintf(w, "%d warning(s):\n", len(snap.Warnings))
		for _, warn := range snap.Warnings {
			fmt.Fprintf(w, "  [%s] %s\n", warn.Code, warn.Message)
		}
	}
}
