package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanBooks = `
company:
  name: Clean Co
  fiscal_year_start: 2025-01-01
  vat_rate: "0"
  opening_cash_hand: "0"
  opening_cash_bank: "0"
`

// unbalancedBooks has one unpaid invoice and nothing else: receivables
// with no matching capital throw the balance sheet off by 1000.
const unbalancedBooks = cleanBooks + `
customers:
  - id: C-001
    name: Acme Rentals

invoices:
  - id: INV-001
    invoice_date: 2025-06-01
    customer_id: C-001
    lines:
      - description: Hire
        quantity: "1"
        unit_price: "1000"
`

func writeBooks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate_CleanBooks(t *testing.T) {
	path := writeBooks(t, cleanBooks)

	out, _, err := runCommand(t, "validate", path, "--as-of", "2025-06-15")
	require.NoError(t, err)
	assert.Contains(t, out, "books are clean")
}

func TestValidate_WarningsExitWithFailure(t *testing.T) {
	path := writeBooks(t, unbalancedBooks)

	out, _, err := runCommand(t, "validate", path, "--as-of", "2025-06-15")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[BALANCE_MISMATCH]")
	assert.Contains(t, out, "1000")
}

func TestValidate_JSONOutput(t *testing.T) {
	path := writeBooks(t, unbalancedBooks)

	out, _, err := runCommand(t, "validate", path, "--as-of", "2025-06-15", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err2 := json.Marshal(resp.Data)
	require.NoError(t, err2)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "BALANCE_MISMATCH", result.Warnings[0].Code)
	assert.Equal(t, "1000", result.Warnings[0].Difference)
}

func TestValidate_MissingBooksFile(t *testing.T) {
	_, _, err := runCommand(t, "validate", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_RejectedRecord(t *testing.T) {
	path := writeBooks(t, cleanBooks+`
expenses:
  - id: EXP-001
    date: 2025-06-01
    category: Horse Feed
    amount: "100"
    payment_method: Cash
`)

	_, _, err := runCommand(t, "validate", path, "--as-of", "2025-06-15")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "EXP-001")
}

func TestValidate_AuditTrailRecorded(t *testing.T) {
	books := writeBooks(t, unbalancedBooks)
	auditDB := filepath.Join(t.TempDir(), "audit.db")

	_, _, err := runCommand(t, "validate", books, "--as-of", "2025-06-15", "--audit-db", auditDB)
	require.Error(t, err, "warnings still exit 1 with auditing on")

	info, statErr := os.Stat(auditDB)
	require.NoError(t, statErr)
	assert.Positive(t, info.Size())
}
