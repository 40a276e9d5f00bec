package comparison

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

var TableHeaders = []string{
	"Loan ID", "Bank", "Loan Type", "Principal Amount", "Interest Rate (%)",
	"Tenure (months)", "Processing Fee", "Total Cost", "Monthly EMI", "Flexibility Score",
}

const notAvailable = "N/A"

// formatAmount renders 1234.5 as "1,234.50".
func formatAmount(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%.2f", v)
}

func money(currency string, v float64) string {
	return currency + " " + formatAmount(v)
}

func bankName(loan *entity.LoanRecord) string {
	if loan.BankInfo == nil || loan.BankInfo.BankName == "" {
		return notAvailable
	}
	return loan.BankInfo.BankName
}

// ComparisonNotes summarizes the ranges and the winners in prose.
func ComparisonNotes(loans []entity.LoanRecord, metrics []entity.ComparisonMetrics, bestCost, bestFlex string) map[string]string {
	cost, rate, fl := peerSpreads(metrics)

	notes := map[string]string{
		"summary":           fmt.Sprintf("Compared %d loan options", len(loans)),
		"cost_range":        fmt.Sprintf("Total cost ranges from %s to %s", formatAmount(cost.min), formatAmount(cost.max)),
		"rate_range":        fmt.Sprintf("Effective interest rate ranges from %.2f%% to %.2f%%", rate.min, rate.max),
		"flexibility_range": fmt.Sprintf("Flexibility scores range from %.1f to %.1f", fl.min, fl.max),
		"best_cost":         fmt.Sprintf("Loan %s offers the lowest total cost", bestCost),
		"best_flexibility":  fmt.Sprintf("Loan %s offers the most flexible terms", bestFlex),
	}
	if bestCost == bestFlex {
		notes["recommendation"] = fmt.Sprintf("Loan %s is the best overall option (lowest cost and most flexible)", bestCost)
	} else {
		notes["recommendation"] = "Consider your priorities: choose based on cost savings or repayment flexibility"
	}
	return notes
}

// ComparisonTableFor renders one display row per loan.
func ComparisonTableFor(loans []entity.LoanRecord, metrics []entity.ComparisonMetrics) entity.ComparisonTable {
	rows := make([][]string, 0, len(loans))
	for i := range loans {
		loan, m := &loans[i], metrics[i]
		fee := notAvailable
		if loan.ProcessingFee != nil {
			fee = money(loan.Currency, *loan.ProcessingFee)
		}
		emi := notAvailable
		if m.MonthlyEMI != nil {
			emi = money(loan.Currency, *m.MonthlyEMI)
		}
		rows = append(rows, []string{
			loan.LoanID,
			bankName(loan),
			string(loan.LoanType),
			money(loan.Currency, loan.PrincipalAmount),
			fmt.Sprintf("%.2f", loan.InterestRate),
			fmt.Sprintf("%d", loan.TenureMonths),
			fee,
			money(loan.Currency, m.TotalCostEstimate),
			emi,
			fmt.Sprintf("%.1f/10.0", m.FlexibilityScore),
		})
	}
	return entity.ComparisonTable{
		Headers:  append([]string(nil), TableHeaders...),
		Rows:     rows,
		RowCount: len(rows),
	}
}

// DetailedComparison pairs each loan's key fields and metrics with its pros and cons.
func DetailedComparison(loans []entity.LoanRecord, metrics []entity.ComparisonMetrics) []entity.LoanComparison {
	out := make([]entity.LoanComparison, 0, len(loans))
	for i := range loans {
		loan := &loans[i]
		pc := ProsAndCons(loan, metrics[i], metrics)
		out = append(out, entity.LoanComparison{
			LoanID:     loan.LoanID,
			DocumentID: loan.DocumentID,
			LoanType:   loan.LoanType,
			BankName:   bankName(loan),
			KeyFields: entity.KeyFields{
				PrincipalAmount:        loan.PrincipalAmount,
				InterestRate:           loan.InterestRate,
				TenureMonths:           loan.TenureMonths,
				MoratoriumPeriodMonths: loan.MoratoriumPeriodMonths,
				ProcessingFee:          loan.ProcessingFee,
				RepaymentMode:          loan.RepaymentMode,
			},
			Metrics: metrics[i],
			Pros:    pc.Pros,
			Cons:    pc.Cons,
		})
	}
	return out
}
