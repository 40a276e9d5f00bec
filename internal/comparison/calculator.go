package comparison

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const maxFlexibilityScore = 10.0

// Calculator derives cost and flexibility metrics from a loan record.
type Calculator struct {
	now func() time.Time
}

func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// MonthlyEMI uses the reducing-balance annuity formula with rate/12/100 as
// the monthly rate. A zero rate spreads the principal evenly.
func MonthlyEMI(principal, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if annualRate == 0 {
		return common.RoundMoney(principal / float64(months))
	}
	i := annualRate / 12 / 100
	growth := math.Pow(1+i, float64(months))
	return common.RoundMoney(principal * i * growth / (growth - 1))
}

// TotalInterest is emi*n - principal, never negative. A zero rate pays no interest.
func TotalInterest(principal, annualRate float64, months int) float64 {
	if annualRate == 0 {
		return 0
	}
	emi := MonthlyEMI(principal, annualRate, months)
	return common.RoundMoney(math.Max(emi*float64(months)-principal, 0))
}

func upfrontFees(loan *entity.LoanRecord) float64 {
	fees := loan.TotalFees()
	if loan.ProcessingFee != nil {
		fees += *loan.ProcessingFee
	}
	return fees
}

// TotalCost is principal plus interest plus every fee.
func TotalCost(loan *entity.LoanRecord) float64 {
	interest := TotalInterest(loan.PrincipalAmount, loan.InterestRate, loan.TenureMonths)
	return common.RoundMoney(loan.PrincipalAmount + interest + upfrontFees(loan))
}

// EffectiveRate adds upfront fees, as a percentage of principal, to the
// nominal rate.
func EffectiveRate(loan *entity.LoanRecord) float64 {
	if loan.PrincipalAmount <= 0 {
		return common.RoundMoney(loan.InterestRate)
	}
	return common.RoundMoney(loan.InterestRate + upfrontFees(loan)/loan.PrincipalAmount*100)
}

// FlexibilityScore rates repayment flexibility on a 0-10 scale from the
// moratorium, prepayment, repayment mode and disbursement terms.
func FlexibilityScore(loan *entity.LoanRecord) float64 {
	score := 0.0

	if m := loan.MoratoriumPeriodMonths; m != nil && *m > 0 {
		score += math.Min(float64(*m)/6*2, 2)
	}

	score += prepaymentPoints(loan.PrepaymentPenalty)

	mode := ""
	if loan.RepaymentMode != nil {
		mode = strings.ToLower(*loan.RepaymentMode)
	}
	switch {
	case strings.Contains(mode, "flexible") || strings.Contains(mode, "step"):
		score += 2
	default:
		score += 1
	}

	disb := ""
	if loan.DisbursementTerms != nil {
		disb = strings.ToLower(*loan.DisbursementTerms)
	}
	if strings.Contains(disb, "flexible") || strings.Contains(disb, "partial") {
		score += 2
	} else {
		score += 1
	}

	return common.Round(math.Min(score, maxFlexibilityScore), 1)
}

func prepaymentPoints(penalty *string) float64 {
	if penalty == nil {
		return 3
	}
	p := strings.ToLower(strings.TrimSpace(*penalty))
	if p == "" || IsPenaltyFree(p) {
		return 3
	}
	if !strings.Contains(p, "%") {
		return 1
	}
	fields := strings.Fields(p[:strings.Index(p, "%")])
	if len(fields) == 0 {
		return 1
	}
	pct, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 1
	}
	if pct < 2 {
		return 2
	}
	return 1
}

// IsPenaltyFree reports whether a penalty clause says there is none.
func IsPenaltyFree(penalty string) bool {
	p := strings.ToLower(penalty)
	return strings.Contains(p, "no penalty") ||
		strings.Contains(p, "nil") ||
		strings.Contains(p, "no prepayment penalty") ||
		strings.Contains(p, "no foreclosure") ||
		strings.Contains(p, "without penalty") ||
		strings.Contains(p, "waived")
}

// Calculate returns the full metric set for one loan.
func (c *Calculator) Calculate(loan *entity.LoanRecord) (entity.ComparisonMetrics, error) {
	v := common.NewValidator().
		Field("principal_amount", loan.PrincipalAmount, common.Positive).
		Field("interest_rate", loan.InterestRate, common.InRange(0, 100)).
		Field("tenure_months", loan.TenureMonths, common.Positive)
	if v.HasErrors() {
		first := v.Errors()[0]
		return entity.ComparisonMetrics{}, common.OutOfRangeError(first.Field, first.Value, first.Message)
	}

	emi := MonthlyEMI(loan.PrincipalAmount, loan.InterestRate, loan.TenureMonths)
	return entity.ComparisonMetrics{
		LoanID:                loan.LoanID,
		TotalCostEstimate:     TotalCost(loan),
		EffectiveInterestRate: EffectiveRate(loan),
		FlexibilityScore:      FlexibilityScore(loan),
		MonthlyEMI:            &emi,
		TotalInterestPayable:  TotalInterest(loan.PrincipalAmount, loan.InterestRate, loan.TenureMonths),
		CalculatedAt:          c.now().UTC(),
	}, nil
}
