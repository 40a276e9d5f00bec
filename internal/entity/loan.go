package entity

import (
	"time"

	"github.com/joseph-ayodele/loan-compare/constants"
)

// RawFields is a heterogeneous key/value record, either flattened extractor
// output or an already-structured source, before canonical mapping.
type RawFields map[string]any

type BankInfo struct {
	BankName   string  `json:"bank_name"`
	BranchName *string `json:"branch_name,omitempty"`
	BankCode   *string `json:"bank_code,omitempty"`
}

type CoSigner struct {
	Name         string  `json:"name"`
	Relationship string  `json:"relationship"`
	Contact      *string `json:"contact,omitempty"`
}

type Fee struct {
	FeeType    string  `json:"fee_type"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Conditions *string `json:"conditions,omitempty"`
}

type PaymentScheduleEntry struct {
	PaymentNumber      int      `json:"payment_number"`
	PaymentDate        string   `json:"payment_date"` // YYYY-MM-DD
	TotalAmount        float64  `json:"total_amount"`
	PrincipalComponent *float64 `json:"principal_component,omitempty"`
	InterestComponent  *float64 `json:"interest_component,omitempty"`
	OutstandingBalance *float64 `json:"outstanding_balance,omitempty"`
}

// LoanRecord is the canonical normalized loan. It only exists once it has
// passed structural validation.
type LoanRecord struct {
	LoanID                 string                 `json:"loan_id"`
	DocumentID             string                 `json:"document_id"`
	LoanType               constants.LoanType     `json:"loan_type"`
	BankInfo               *BankInfo              `json:"bank_info,omitempty"`
	PrincipalAmount        float64                `json:"principal_amount"`
	Currency               string                 `json:"currency"`
	InterestRate           float64                `json:"interest_rate"`
	TenureMonths           int                    `json:"tenure_months"`
	MoratoriumPeriodMonths *int                   `json:"moratorium_period_months,omitempty"`
	Fees                   []Fee                  `json:"fees"`
	ProcessingFee          *float64               `json:"processing_fee,omitempty"`
	LatePaymentPenalty     *string                `json:"late_payment_penalty,omitempty"`
	PrepaymentPenalty      *string                `json:"prepayment_penalty,omitempty"`
	RepaymentMode          *string                `json:"repayment_mode,omitempty"`
	PaymentSchedule        []PaymentScheduleEntry `json:"payment_schedule,omitempty"`
	CoSigner               *CoSigner              `json:"co_signer,omitempty"`
	CollateralDetails      *string                `json:"collateral_details,omitempty"`
	DisbursementTerms      *string                `json:"disbursement_terms,omitempty"`
	ExtractionConfidence   float64                `json:"extraction_confidence"`
	ExtractionTimestamp    time.Time              `json:"extraction_timestamp"`
}

// TotalFees sums the itemised fees, excluding the separate processing fee.
func (l *LoanRecord) TotalFees() float64 {
	total := 0.0
	for _, f := range l.Fees {
		total += f.Amount
	}
	return total
}

// FieldError is one fatal validation finding.
type FieldError struct {
	Field     string `json:"field"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

// ValidationResult is produced once per normalization attempt.
type ValidationResult struct {
	IsValid       bool         `json:"is_valid"`
	Errors        []FieldError `json:"errors"`
	Warnings      []string     `json:"warnings"`
	ValidatedData *LoanRecord  `json:"validated_data"`
}
