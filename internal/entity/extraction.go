package entity

import "github.com/joseph-ayodele/loan-compare/constants"

// ExtractedField is one numeric value found in document text.
type ExtractedField struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	Currency   string  `json:"currency,omitempty"`
	Original   string  `json:"original,omitempty"` // e.g. "5 years" before conversion to months
	Confidence float64 `json:"confidence"`
	SourceSpan string  `json:"source_span,omitempty"`
}

// ValueType says whether a fee or penalty is a fixed amount or a percentage.
type ValueType string

const (
	ValueTypeFixed      ValueType = "fixed"
	ValueTypePercentage ValueType = "percentage"
)

// ExtractedFee is a fee or penalty clause from text or a fee table.
type ExtractedFee struct {
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	ValueType  ValueType `json:"value_type"`
	Currency   string    `json:"currency,omitempty"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"` // "text" or "table"
	SourceSpan string    `json:"source_span,omitempty"`
}

// CoreFields holds principal, rate, tenure, and moratorium.
type CoreFields struct {
	PrincipalAmount  *ExtractedField `json:"principal_amount,omitempty"`
	InterestRate     *ExtractedField `json:"interest_rate,omitempty"`
	Tenure           *ExtractedField `json:"tenure,omitempty"`
	MoratoriumPeriod *ExtractedField `json:"moratorium_period,omitempty"`
}

type LenderInfo struct {
	BankName         string  `json:"bank_name,omitempty"`
	BankConfidence   float64 `json:"bank_confidence,omitempty"`
	BranchName       string  `json:"branch_name,omitempty"`
	BranchConfidence float64 `json:"branch_confidence,omitempty"`
	SourceSpan       string  `json:"source_span,omitempty"`
}

type ExtractedCoSigner struct {
	Name         string  `json:"name,omitempty"`
	Relationship string  `json:"relationship,omitempty"`
	Confidence   float64 `json:"confidence"`
	SourceSpan   string  `json:"source_span,omitempty"`
}

type ExtractedCollateral struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	SourceSpan  string  `json:"source_span,omitempty"`
}

// EntityBlock groups lender, co-signer, and collateral details.
type EntityBlock struct {
	Lender     *LenderInfo          `json:"lender,omitempty"`
	CoSigner   *ExtractedCoSigner   `json:"cosigner,omitempty"`
	Collateral *ExtractedCollateral `json:"collateral,omitempty"`
}

// ScheduleEntry is one parsed row of a repayment schedule table.
type ScheduleEntry struct {
	PaymentNumber      int      `json:"payment_number"`
	PaymentDate        string   `json:"payment_date,omitempty"`
	TotalAmount        *float64 `json:"total_amount,omitempty"`
	PrincipalComponent *float64 `json:"principal_component,omitempty"`
	InterestComponent  *float64 `json:"interest_component,omitempty"`
	OutstandingBalance *float64 `json:"outstanding_balance,omitempty"`
	Confidence         float64  `json:"confidence"`
}

// TextTerm is a classified free-text clause (disbursement or repayment mode).
type TextTerm struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	SourceSpan  string  `json:"source_span,omitempty"`
}

type PrepaymentOption struct {
	Allowed     bool    `json:"allowed"`
	Kind        string  `json:"kind,omitempty"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

type AdditionalTerms struct {
	Disbursement  *TextTerm         `json:"disbursement_terms,omitempty"`
	RepaymentMode *TextTerm         `json:"repayment_mode,omitempty"`
	EMIAmount     *ExtractedField   `json:"emi_amount,omitempty"`
	Prepayment    *PrepaymentOption `json:"prepayment_options,omitempty"`
	LockInPeriod  *ExtractedField   `json:"lock_in_period,omitempty"`
}

// FlaggedField is a low-confidence extraction queued for manual review.
type FlaggedField struct {
	FieldName  string  `json:"field_name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Value      string  `json:"value,omitempty"`
	Reason     string  `json:"reason"`
}

type ConfidenceReport struct {
	OverallConfidence     float64                   `json:"overall_confidence"`
	ConfidenceLevel       constants.ConfidenceLevel `json:"confidence_level"`
	LowConfidenceFields   []FlaggedField            `json:"low_confidence_fields"`
	RequiresReview        bool                      `json:"requires_review"`
	FieldCount            int                       `json:"field_count"`
	MissingCriticalFields []string                  `json:"missing_critical_fields"`
}

// ExtractionResult is everything pulled from one document. It is built once
// and treated as read-only afterwards.
type ExtractionResult struct {
	CoreFields      CoreFields       `json:"core_fields"`
	Fees            []ExtractedFee   `json:"fees"`
	Penalties       []ExtractedFee   `json:"penalties"`
	Entities        EntityBlock      `json:"entities"`
	PaymentSchedule []ScheduleEntry  `json:"payment_schedule,omitempty"`
	AdditionalTerms AdditionalTerms  `json:"additional_terms"`
	Confidence      ConfidenceReport `json:"confidence_report"`
}

// Table is one table handed over by the OCR collaborator.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
