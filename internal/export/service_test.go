package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/comparison"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	fee := 500.0
	loans := []entity.LoanRecord{
		{
			LoanID: "loan_a", DocumentID: "a", LoanType: constants.LoanTypeEducation,
			BankInfo: &entity.BankInfo{BankName: "State Bank of India"}, PrincipalAmount: 100000,
			Currency: "INR", InterestRate: 10, TenureMonths: 12, ProcessingFee: &fee, Fees: []entity.Fee{},
		},
		{
			LoanID: "loan_b", DocumentID: "b", LoanType: constants.LoanTypeEducation,
			PrincipalAmount: 100000, Currency: "INR", InterestRate: 12, TenureMonths: 12, Fees: []entity.Fee{},
		},
	}
	res, err := comparison.NewService(nil).CompareLoans(loans)
	require.NoError(t, err)
	return &Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Comparison:  res,
		Documents: []entity.DocumentOutcome{
			{DocumentID: "a", Status: constants.DocumentStatusNormalized, ElapsedMS: 12},
			{DocumentID: "c", Status: constants.DocumentStatusFailed, Error: "principal_amount is required but not found"},
		},
	}
}

func TestXLSX(t *testing.T) {
	svc := NewService("", nil)
	b, err := svc.XLSX(context.Background(), sampleReport(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName, metricsSheet, prosConsSheet, notesSheet, documentsSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, comparison.TableHeaders, rows[0])
	assert.Equal(t, "loan_a", rows[1][0])
	assert.Equal(t, "State Bank of India", rows[1][1])
	assert.Equal(t, "INR 100,000.00", rows[1][3])

	notes, err := f.GetRows(notesSheet)
	require.NoError(t, err)
	require.Len(t, notes, 8)
	assert.Equal(t, []string{"summary", "Compared 2 loan options"}, notes[1])
	assert.Equal(t, "recommendation", notes[7][0])

	docs, err := f.GetRows(documentsSheet)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "FAILED", docs[2][1])
}

func TestXLSX_CustomSheetAndNoComparison(t *testing.T) {
	svc := NewService("Loans", nil)
	rep := sampleReport(t)
	rep.Documents = nil

	b, err := svc.XLSX(context.Background(), rep)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Loans", metricsSheet, prosConsSheet, notesSheet}, f.GetSheetList())

	_, err = svc.XLSX(context.Background(), &Report{RunID: "empty"})
	assert.Error(t, err)
}

func TestJSON(t *testing.T) {
	b, err := NewService("", nil).JSON(sampleReport(t))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	cmp, ok := decoded["comparison"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "loan_a", cmp["best_by_cost"])
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := NewService("", nil).WriteFiles(context.Background(), dir, "comparison", sampleReport(t))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "comparison.xlsx"), filepath.Join(dir, "comparison.json")}, paths)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	paths, err = NewService("", nil).WriteFiles(context.Background(), dir, "empty", &Report{RunID: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "empty.json")}, paths)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "a", truncate("abc", 1))
}
