package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/common"
)

const offerA = `EDUCATION LOAN SANCTION LETTER
State Bank of India
Principal Amount: Rs. 5,00,000
Interest Rate: 8.5% p.a.
Tenure: 5 years
Moratorium Period: 12 months
Processing Fee: Rs. 2,000
No prepayment penalty`

const offerB = `EDUCATION LOAN OFFER
HDFC Bank
Loan Amount: Rs. 5,00,000
Rate of Interest: 10.5% per annum
Tenure: 60 months
Processing Fee: Rs. 10,000
Prepayment Penalty: 4%`

func testConfig(out string) *common.Config {
	return &common.Config{
		Extraction:    common.ExtractionConfig{LowConfidenceThreshold: 0.7},
		Normalization: common.NormalizationConfig{DefaultCurrency: "INR"},
		Batch:         common.BatchConfig{Workers: 2, QueueSize: 4, ProcessTimeout: 10 * time.Second},
		Export:        common.ExportConfig{Dir: out, SheetName: "Comparison"},
	}
}

func TestRunOnce(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, os.WriteFile(filepath.Join(in, "sbi.txt"), []byte(offerA), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "hdfc.txt"), []byte(offerB), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "junk.txt"), []byte("nothing useful here"), 0o644))

	a := newApp(testConfig(out), slog.Default())
	rep, paths, err := a.runOnce(context.Background(), options{dir: in, out: out, name: "run"})
	require.NoError(t, err)

	require.Len(t, rep.Documents, 3)
	statuses := map[string]constants.DocumentStatus{}
	for _, d := range rep.Documents {
		statuses[d.DocumentID] = d.Status
	}
	assert.Equal(t, constants.DocumentStatusNormalized, statuses["sbi"])
	assert.Equal(t, constants.DocumentStatusNormalized, statuses["hdfc"])
	assert.Equal(t, constants.DocumentStatusFailed, statuses["junk"])

	require.NotNil(t, rep.Comparison)
	require.Len(t, rep.Comparison.Loans, 2)
	var sbiLoan string
	for _, l := range rep.Comparison.Loans {
		if l.DocumentID == "sbi" {
			sbiLoan = l.LoanID
		}
	}
	assert.Equal(t, sbiLoan, rep.Comparison.BestByCost)
	assert.Equal(t, sbiLoan, rep.Comparison.BestByFlexibility)

	assert.Equal(t, []string{filepath.Join(out, "run.xlsx"), filepath.Join(out, "run.json")}, paths)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestRunOnce_EmptyDirectory(t *testing.T) {
	a := newApp(testConfig(t.TempDir()), slog.Default())
	_, _, err := a.runOnce(context.Background(), options{dir: t.TempDir(), out: t.TempDir(), name: "x"})
	assert.Error(t, err)
}
