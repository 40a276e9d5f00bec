package extraction

import (
	"log/slog"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

// Service runs every extractor over one document and scores the result.
// It holds no per-document state and is safe for concurrent use.
type Service struct {
	logger   *slog.Logger
	core     CoreFieldExtractor
	fees     FeeExtractor
	entities EntityExtractor
	schedule ScheduleExtractor
	terms    TermsExtractor
	scorer   *ConfidenceScorer
}

func NewService(logger *slog.Logger, lowConfidenceThreshold float64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		scorer: NewConfidenceScorer(lowConfidenceThreshold),
	}
}

// Extract pulls every supported field from text and tables. Running it
// twice on the same input yields equal results.
func (s *Service) Extract(text string, tables []entity.Table) *entity.ExtractionResult {
	res := &entity.ExtractionResult{
		CoreFields:      s.core.ExtractAll(text),
		Fees:            s.fees.ExtractFees(text, tables),
		Penalties:       s.fees.ExtractPenalties(text),
		Entities:        s.entities.ExtractAll(text),
		PaymentSchedule: s.schedule.ExtractPaymentSchedule(tables),
		AdditionalTerms: s.terms.ExtractAll(text),
	}
	res.Confidence = s.scorer.Report(res)

	s.logger.Info("extraction.ok",
		"fields", res.Confidence.FieldCount,
		"confidence", res.Confidence.OverallConfidence,
		"level", res.Confidence.ConfidenceLevel,
		"requires_review", res.Confidence.RequiresReview,
	)
	if len(res.Confidence.MissingCriticalFields) > 0 {
		s.logger.Warn("extraction.missing_critical", "fields", res.Confidence.MissingCriticalFields)
	}
	return res
}

// ExtractCoreFields skips everything but principal, rate, tenure and moratorium.
func (s *Service) ExtractCoreFields(text string) entity.CoreFields {
	return s.core.ExtractAll(text)
}

// ExtractFeesAndPenalties returns fees (text and table) and penalties.
func (s *Service) ExtractFeesAndPenalties(text string, tables []entity.Table) (fees, penalties []entity.ExtractedFee) {
	return s.fees.ExtractFees(text, tables), s.fees.ExtractPenalties(text)
}

func (s *Service) ExtractPaymentSchedule(tables []entity.Table) []entity.ScheduleEntry {
	return s.schedule.ExtractPaymentSchedule(tables)
}

// Summary is a compact view of an extraction for logs and CLI output.
type Summary struct {
	PrincipalAmount       *float64 `json:"principal_amount,omitempty"`
	InterestRate          *float64 `json:"interest_rate,omitempty"`
	TenureMonths          *int     `json:"tenure_months,omitempty"`
	BankName              string   `json:"bank_name,omitempty"`
	FeeCount              int      `json:"fee_count"`
	PenaltyCount          int      `json:"penalty_count"`
	SchedulePayments      int      `json:"schedule_payments"`
	OverallConfidence     float64  `json:"overall_confidence"`
	ConfidenceLevel       string   `json:"confidence_level"`
	RequiresReview        bool     `json:"requires_review"`
	MissingCriticalFields []string `json:"missing_critical_fields"`
}

func Summarize(res *entity.ExtractionResult) Summary {
	sum := Summary{
		FeeCount:              len(res.Fees),
		PenaltyCount:          len(res.Penalties),
		SchedulePayments:      len(res.PaymentSchedule),
		OverallConfidence:     res.Confidence.OverallConfidence,
		ConfidenceLevel:       string(res.Confidence.ConfidenceLevel),
		RequiresReview:        res.Confidence.RequiresReview,
		MissingCriticalFields: res.Confidence.MissingCriticalFields,
	}
	if f := res.CoreFields.PrincipalAmount; f != nil {
		v := f.Value
		sum.PrincipalAmount = &v
	}
	if f := res.CoreFields.InterestRate; f != nil {
		v := f.Value
		sum.InterestRate = &v
	}
	if f := res.CoreFields.Tenure; f != nil {
		v := int(f.Value)
		sum.TenureMonths = &v
	}
	if l := res.Entities.Lender; l != nil {
		sum.BankName = l.BankName
	}
	return sum
}
