package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Text(t *testing.T) {
	path := writeBooks(t, unbalancedBooks)

	out, _, err := runCommand(t, "report", path, "--as-of", "2025-06-15")
	require.NoError(t, err, "warnings are reported, not fatal")

	assert.Contains(t, out, "Clean Co - as of 2025-06-15")
	assert.Contains(t, out, "Revenue")
	assert.Contains(t, out, "Balance Sheet")
	assert.Contains(t, out, "OUT OF BALANCE by 1000")
	assert.Contains(t, out, "[BALANCE_MISMATCH]")
}

func TestReport_CanonicalJSON(t *testing.T) {
	path := writeBooks(t, cleanBooks)

	out, _, err := runCommand(t, "report", path, "--as-of", "2025-06-15", "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2025-06-15", doc["as_of"])
	assert.Contains(t, doc, "balance_sheet")
	assert.NotContains(t, doc, "revision", "canonical output excludes bookkeeping fields")
}

func TestReport_Deterministic(t *testing.T) {
	path := writeBooks(t, unbalancedBooks)

	first, _, err := runCommand(t, "report", path, "--as-of", "2025-06-15", "--format", "json")
	require.NoError(t, err)
	second, _, err := runCommand(t, "report", path, "--as-of", "2025-06-15", "--format", "json")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_WritesWorkbook(t *testing.T) {
	books := writeBooks(t, unbalancedBooks)
	out := filepath.Join(t.TempDir(), "reports.xlsx")

	stdout, _, err := runCommand(t, "render", books, "-o", out, "--as-of", "2025-06-15")
	require.NoError(t, err)
	assert.Contains(t, stdout, "reports.xlsx")
	assert.FileExists(t, out)
}

func TestRender_RequiresOutputFlag(t *testing.T) {
	books := writeBooks(t, cleanBooks)

	_, _, err := runCommand(t, "render", books)
	require.Error(t, err)
}
