package entity

import (
	"time"

	"github.com/joseph-ayodele/loan-compare/constants"
)

type ComparisonMetrics struct {
	LoanID                string    `json:"loan_id"`
	TotalCostEstimate     float64   `json:"total_cost_estimate"`
	EffectiveInterestRate float64   `json:"effective_interest_rate"`
	FlexibilityScore      float64   `json:"flexibility_score"`
	MonthlyEMI            *float64  `json:"monthly_emi,omitempty"`
	TotalInterestPayable  float64   `json:"total_interest_payable"`
	CalculatedAt          time.Time `json:"calculation_timestamp"`
}

type ProsCons struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// KeyFields is the headline subset of a loan shown next to its metrics.
type KeyFields struct {
	PrincipalAmount        float64  `json:"principal_amount"`
	InterestRate           float64  `json:"interest_rate"`
	TenureMonths           int      `json:"tenure_months"`
	MoratoriumPeriodMonths *int     `json:"moratorium_period_months,omitempty"`
	ProcessingFee          *float64 `json:"processing_fee,omitempty"`
	RepaymentMode          *string  `json:"repayment_mode,omitempty"`
}

// LoanComparison is the per-loan detail row of a comparison.
type LoanComparison struct {
	LoanID     string             `json:"loan_id"`
	DocumentID string             `json:"document_id"`
	LoanType   constants.LoanType `json:"loan_type"`
	BankName   string             `json:"bank_name"`
	KeyFields  KeyFields          `json:"key_fields"`
	Metrics    ComparisonMetrics  `json:"metrics"`
	Pros       []string           `json:"pros"`
	Cons       []string           `json:"cons"`
}

type ComparisonTable struct {
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"row_count"`
}

// ComparisonResult is built once per comparison request and never mutated.
type ComparisonResult struct {
	Loans             []LoanRecord        `json:"loans"`
	Metrics           []ComparisonMetrics `json:"metrics"`
	BestByCost        string              `json:"best_by_cost"`
	BestByFlexibility string              `json:"best_by_flexibility"`
	ComparisonNotes   map[string]string   `json:"comparison_notes"`
	Details           []LoanComparison    `json:"details"`
	Table             ComparisonTable     `json:"comparison_table"`
}
