package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/comparison"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
	"github.com/joseph-ayodele/loan-compare/internal/extraction"
	"github.com/joseph-ayodele/loan-compare/internal/normalization"
)

const letter = `EDUCATION LOAN SANCTION LETTER
State Bank of India
Branch: Koramangala, Bangalore
IFSC: SBIN0001234
Principal Amount: Rs. 5,00,000
Interest Rate: 8.5% p.a.
Tenure: 5 years
Moratorium Period: 6 months
Processing Fee: 1%
Documentation Charges: Rs. 2,000
No prepayment penalty
Repayment Mode: EMI`

func newProcessor() *Processor {
	return NewProcessor(nil,
		extraction.NewService(nil, extraction.DefaultLowConfidenceThreshold),
		normalization.NewService(nil, normalization.Options{DefaultCurrency: "INR"}),
	)
}

func TestProcessDocument(t *testing.T) {
	out, err := newProcessor().ProcessDocument(context.Background(), entity.Document{ID: "sbi-1", Text: letter})
	require.NoError(t, err)
	require.Equal(t, constants.DocumentStatusNormalized, out.Status, out.Error)
	require.NotNil(t, out.Extraction)
	require.NotNil(t, out.Validation)

	rec := out.Validation.ValidatedData
	require.NotNil(t, rec)
	assert.Equal(t, "sbi-1", rec.DocumentID)
	assert.Equal(t, constants.LoanTypeEducation, rec.LoanType)
	assert.Equal(t, 500000.0, rec.PrincipalAmount)
	assert.Equal(t, 8.5, rec.InterestRate)
	assert.Equal(t, 60, rec.TenureMonths)
	require.NotNil(t, rec.MoratoriumPeriodMonths)
	assert.Equal(t, 6, *rec.MoratoriumPeriodMonths)
	require.NotNil(t, rec.ProcessingFee)
	assert.Equal(t, 5000.0, *rec.ProcessingFee)

	require.NotNil(t, rec.BankInfo)
	assert.Equal(t, "State Bank of India", rec.BankInfo.BankName)
	require.NotNil(t, rec.BankInfo.BankCode)
	assert.Equal(t, "SBIN0001234", *rec.BankInfo.BankCode)
	assert.Regexp(t, `^loan_[0-9a-f]{12}$`, rec.LoanID)
}

func TestProcessDocument_LoanTypeHint(t *testing.T) {
	out, err := newProcessor().ProcessDocument(context.Background(), entity.Document{
		ID: "hinted", Text: letter, LoanTypeHint: "home loan",
	})
	require.NoError(t, err)
	require.Equal(t, constants.DocumentStatusNormalized, out.Status, out.Error)
	assert.Equal(t, constants.LoanTypeHome, out.Validation.ValidatedData.LoanType)
}

func TestProcessDocument_MissingPrincipal(t *testing.T) {
	out, err := newProcessor().ProcessDocument(context.Background(), entity.Document{
		ID: "partial", Text: "Interest Rate: 9% p.a.\nTenure: 24 months",
	})
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindMissingRequiredField))
	assert.Equal(t, constants.DocumentStatusFailed, out.Status)
	assert.NotNil(t, out.Extraction)
	require.NotNil(t, out.Validation)
	assert.False(t, out.Validation.IsValid)
	assert.Contains(t, out.Error, "principal_amount")
}

func TestProcessDocument_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := newProcessor().ProcessDocument(ctx, entity.Document{ID: "c", Text: letter})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, constants.DocumentStatusFailed, out.Status)
	assert.Nil(t, out.Extraction)
}

func TestValidRecords(t *testing.T) {
	rec := &entity.LoanRecord{LoanID: "loan_1"}
	outcomes := []entity.DocumentOutcome{
		{DocumentID: "a", Status: constants.DocumentStatusNormalized, Validation: &entity.ValidationResult{IsValid: true, ValidatedData: rec}},
		{DocumentID: "b", Status: constants.DocumentStatusFailed},
		{DocumentID: "c", Status: constants.DocumentStatusNormalized},
	}
	loans := ValidRecords(outcomes)
	require.Len(t, loans, 1)
	assert.Equal(t, "loan_1", loans[0].LoanID)
}

func TestProcessDocument_PenaltyFreeLoanIsMoreFlexible(t *testing.T) {
	const core = "Principal Amount: Rs. 3,00,000\nInterest Rate: 10% p.a.\nTenure: 36 months\n"
	proc := newProcessor()
	score := func(id, clause string) float64 {
		out, err := proc.ProcessDocument(context.Background(), entity.Document{ID: id, Text: core + clause})
		require.NoError(t, err)
		require.Equal(t, constants.DocumentStatusNormalized, out.Status, out.Error)
		return comparison.FlexibilityScore(out.Validation.ValidatedData)
	}

	free := score("free", "No prepayment penalty")
	for _, clause := range []string{
		"Prepayment penalty: 4% of outstanding",
		"Prepayment penalty: 6% of outstanding",
	} {
		assert.GreaterOrEqual(t, free-score("charged", clause), 2.0, clause)
	}
}
