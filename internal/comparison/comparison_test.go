package comparison

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func baseLoan(id string) entity.LoanRecord {
	return entity.LoanRecord{
		LoanID:          id,
		DocumentID:      "doc-" + id,
		LoanType:        constants.LoanTypeEducation,
		BankInfo:        &entity.BankInfo{BankName: "Bank " + id},
		PrincipalAmount: 100000,
		Currency:        "INR",
		InterestRate:    10,
		TenureMonths:    12,
		Fees:            []entity.Fee{},
	}
}

func TestMonthlyEMI(t *testing.T) {
	assert.Equal(t, 8884.88, MonthlyEMI(100000, 12, 12))
	assert.Equal(t, 8791.59, MonthlyEMI(100000, 10, 12))

	t.Run("zero rate", func(t *testing.T) {
		emi := MonthlyEMI(10000, 0, 12)
		assert.InDelta(t, 10000.0/12, emi, 0.005)
		assert.Zero(t, TotalInterest(10000, 0, 12))
	})

	t.Run("interest equals emi times tenure minus principal", func(t *testing.T) {
		emi := MonthlyEMI(100000, 12, 12)
		assert.InDelta(t, emi*12-100000, TotalInterest(100000, 12, 12), 0.005)
		assert.Equal(t, 6618.56, TotalInterest(100000, 12, 12))
	})
}

func TestCostAndRate(t *testing.T) {
	loan := baseLoan("a")
	loan.ProcessingFee = floatPtr(1000)
	loan.Fees = []entity.Fee{{FeeType: "Legal Fee", Amount: 500, Currency: "INR"}}

	assert.Equal(t, 11.5, EffectiveRate(&loan))
	assert.InDelta(t, 100000+TotalInterest(100000, 10, 12)+1500, TotalCost(&loan), 0.001)

	bare := baseLoan("b")
	assert.Equal(t, 10.0, EffectiveRate(&bare))
	assert.GreaterOrEqual(t, TotalCost(&bare), bare.PrincipalAmount)
}

func TestFlexibilityScore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *entity.LoanRecord)
		want   float64
	}{
		{"defaults", func(l *entity.LoanRecord) {}, 5},
		{"short moratorium", func(l *entity.LoanRecord) { l.MoratoriumPeriodMonths = intPtr(3) }, 6},
		{"long moratorium caps at two", func(l *entity.LoanRecord) { l.MoratoriumPeriodMonths = intPtr(24) }, 7},
		{"no penalty", func(l *entity.LoanRecord) { l.PrepaymentPenalty = strPtr("No penalty") }, 5},
		{"small percentage penalty", func(l *entity.LoanRecord) { l.PrepaymentPenalty = strPtr("1.5%") }, 4},
		{"mid percentage penalty", func(l *entity.LoanRecord) { l.PrepaymentPenalty = strPtr("upto 4% of outstanding") }, 3},
		{"large percentage penalty", func(l *entity.LoanRecord) { l.PrepaymentPenalty = strPtr("5% of prepaid amount") }, 3},
		{"fixed penalty", func(l *entity.LoanRecord) { l.PrepaymentPenalty = strPtr("INR 500") }, 3},
		{"step-up repayment", func(l *entity.LoanRecord) { l.RepaymentMode = strPtr("step-up") }, 6},
		{"emi repayment", func(l *entity.LoanRecord) { l.RepaymentMode = strPtr("emi") }, 5},
		{"partial disbursement", func(l *entity.LoanRecord) { l.DisbursementTerms = strPtr("Partial disbursement in tranches") }, 6},
		{"everything flexible", func(l *entity.LoanRecord) {
			l.MoratoriumPeriodMonths = intPtr(12)
			l.RepaymentMode = strPtr("flexible")
			l.DisbursementTerms = strPtr("flexible")
		}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := baseLoan("x")
			tt.mutate(&loan)
			got := FlexibilityScore(&loan)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, maxFlexibilityScore)
		})
	}

	t.Run("penalty free beats stated penalty by two points", func(t *testing.T) {
		free, charged := baseLoan("a"), baseLoan("b")
		free.PrepaymentPenalty = strPtr("No prepayment penalty")
		for _, penalty := range []string{"2%", "4% of outstanding", "5%", "INR 500"} {
			charged.PrepaymentPenalty = strPtr(penalty)
			assert.GreaterOrEqual(t, FlexibilityScore(&free)-FlexibilityScore(&charged), 2.0, penalty)
		}
	})
}

func TestCalculatorRejectsInvalidLoans(t *testing.T) {
	loan := baseLoan("bad")
	loan.TenureMonths = 0
	_, err := NewCalculator().Calculate(&loan)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindOutOfRange))
}

func twoLoans() []entity.LoanRecord {
	a := baseLoan("loan_a")
	a.ProcessingFee = floatPtr(500)
	a.PrepaymentPenalty = strPtr("No penalty")
	a.MoratoriumPeriodMonths = intPtr(12)

	b := baseLoan("loan_b")
	b.InterestRate = 12
	b.ProcessingFee = floatPtr(5000)
	b.PrepaymentPenalty = strPtr("4%")
	b.CoSigner = &entity.CoSigner{Name: "R Kumar", Relationship: "father"}
	b.CollateralDetails = strPtr("Gold")
	return []entity.LoanRecord{a, b}
}

func TestCompareLoans(t *testing.T) {
	svc := NewService(nil)

	t.Run("empty input", func(t *testing.T) {
		_, err := svc.CompareLoans(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrInvalidInput))
	})

	res, err := svc.CompareLoans(twoLoans())
	require.NoError(t, err)
	require.Len(t, res.Metrics, 2)
	assert.Equal(t, "loan_a", res.BestByCost)
	assert.Equal(t, "loan_a", res.BestByFlexibility)

	assert.Equal(t, 105999.08, res.Metrics[0].TotalCostEstimate)
	assert.Equal(t, 111618.56, res.Metrics[1].TotalCostEstimate)
	assert.Equal(t, 10.5, res.Metrics[0].EffectiveInterestRate)
	assert.Equal(t, 17.0, res.Metrics[1].EffectiveInterestRate)
	assert.Equal(t, 7.0, res.Metrics[0].FlexibilityScore)
	assert.Equal(t, 3.0, res.Metrics[1].FlexibilityScore)

	assert.Equal(t, map[string]string{
		"summary":           "Compared 2 loan options",
		"cost_range":        "Total cost ranges from 105,999.08 to 111,618.56",
		"rate_range":        "Effective interest rate ranges from 10.50% to 17.00%",
		"flexibility_range": "Flexibility scores range from 3.0 to 7.0",
		"best_cost":         "Loan loan_a offers the lowest total cost",
		"best_flexibility":  "Loan loan_a offers the most flexible terms",
		"recommendation":    "Loan loan_a is the best overall option (lowest cost and most flexible)",
	}, res.ComparisonNotes)

	require.Len(t, res.Details, 2)
	assert.Equal(t, []string{
		"Lowest total cost among all options",
		"Lowest effective interest rate",
		"Most flexible repayment terms",
		"Generous moratorium period of 12 months",
		"No prepayment penalty",
		"Low processing fee",
		"No co-signer required",
		"No collateral required",
	}, res.Details[0].Pros)
	assert.Equal(t, []string{"No significant drawbacks identified"}, res.Details[0].Cons)
	assert.Equal(t, []string{"Competitive total cost"}, res.Details[1].Pros)
	assert.Equal(t, []string{
		"Above-average interest rate",
		"Limited repayment flexibility",
		"No moratorium period",
		"Prepayment penalty: 4%",
		"High processing fee",
		"Requires co-signer",
		"Requires collateral: Gold",
	}, res.Details[1].Cons)

	assert.Equal(t, TableHeaders, res.Table.Headers)
	assert.Equal(t, 2, res.Table.RowCount)
	assert.Equal(t, []string{
		"loan_a", "Bank loan_a", "education", "INR 100,000.00", "10.00", "12",
		"INR 500.00", "INR 105,999.08", "INR 8,791.59", "7.0/10.0",
	}, res.Table.Rows[0])
}

func TestCompareLoans_RecommendationSplits(t *testing.T) {
	cheap := baseLoan("cheap")
	flexible := baseLoan("flexible")
	flexible.InterestRate = 11
	flexible.MoratoriumPeriodMonths = intPtr(6)

	res, err := NewService(nil).CompareLoans([]entity.LoanRecord{cheap, flexible})
	require.NoError(t, err)
	assert.Equal(t, "cheap", res.BestByCost)
	assert.Equal(t, "flexible", res.BestByFlexibility)
	assert.Equal(t, "Consider your priorities: choose based on cost savings or repayment flexibility",
		res.ComparisonNotes["recommendation"])
}

func TestCompareLoans_FailedMetrics(t *testing.T) {
	good := baseLoan("good")
	bad := baseLoan("bad")
	bad.PrincipalAmount = 0

	res, err := NewService(nil).CompareLoans([]entity.LoanRecord{bad, good})
	require.NoError(t, err)
	assert.Nil(t, res.Metrics[0].MonthlyEMI)
	assert.Zero(t, res.Metrics[0].TotalCostEstimate)
	assert.Equal(t, "bad", res.Metrics[0].LoanID)
	assert.Equal(t, "good", res.BestByCost)
	assert.Equal(t, "good", res.BestByFlexibility)
	assert.Equal(t, notAvailable, res.Table.Rows[0][8])

	assert.Equal(t, []string{"No co-signer required", "No collateral required"}, res.Details[0].Pros)
	assert.Equal(t, []string{"Comparison metrics unavailable", "No moratorium period"}, res.Details[0].Cons)
	assert.Equal(t, []string{
		"Lowest total cost among all options",
		"Lowest effective interest rate",
		"Most flexible repayment terms",
		"No co-signer required",
		"No collateral required",
	}, res.Details[1].Pros)
	assert.Equal(t, []string{"No moratorium period"}, res.Details[1].Cons)

	cost := formatAmount(res.Metrics[1].TotalCostEstimate)
	assert.Equal(t, "Total cost ranges from "+cost+" to "+cost, res.ComparisonNotes["cost_range"])
}

func TestCompareLoans_TiesGoToFirstLoan(t *testing.T) {
	res, err := NewService(nil).CompareLoans([]entity.LoanRecord{baseLoan("x"), baseLoan("y")})
	require.NoError(t, err)
	assert.Equal(t, res.Metrics[0].TotalCostEstimate, res.Metrics[1].TotalCostEstimate)
	assert.Equal(t, res.Metrics[0].FlexibilityScore, res.Metrics[1].FlexibilityScore)
	assert.Equal(t, "x", res.BestByCost)
	assert.Equal(t, "x", res.BestByFlexibility)
	assert.Equal(t, "Loan x is the best overall option (lowest cost and most flexible)",
		res.ComparisonNotes["recommendation"])
}

func TestCompareLoans_Single(t *testing.T) {
	res, err := NewService(nil).CompareLoans([]entity.LoanRecord{baseLoan("only")})
	require.NoError(t, err)
	assert.Equal(t, "only", res.BestByCost)
	assert.Equal(t, "only", res.BestByFlexibility)
	assert.Equal(t, []string{
		"Lowest total cost among all options",
		"Lowest effective interest rate",
		"Most flexible repayment terms",
		"No co-signer required",
		"No collateral required",
	}, res.Details[0].Pros)
	assert.Equal(t, []string{"No moratorium period"}, res.Details[0].Cons)
}
