package extraction

import (
	"fmt"
	"strconv"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const (
	DefaultLowConfidenceThreshold = 0.7
	lowConfidenceReason           = "Low confidence extraction - manual review recommended"
)

var fieldWeights = map[string]float64{
	"principal_amount":     0.20,
	"interest_rate":        0.20,
	"tenure":               0.15,
	"bank_name":            0.10,
	"processing_fee":       0.05,
	"late_payment_penalty": 0.05,
	"prepayment_penalty":   0.05,
	"repayment_mode":       0.05,
	"moratorium_period":    0.05,
	"disbursement_terms":   0.05,
	"cosigner":             0.03,
	"collateral":           0.02,
}

var criticalFields = []string{"principal_amount", "interest_rate", "tenure"}

// ConfidenceScorer aggregates per-field confidences into a report.
type ConfidenceScorer struct {
	threshold float64
}

func NewConfidenceScorer(threshold float64) *ConfidenceScorer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultLowConfidenceThreshold
	}
	return &ConfidenceScorer{threshold: threshold}
}

// OverallConfidence is the weight-normalized mean over the fields present.
// Fees count once at the processing fee weight and penalties once at the
// combined penalty weight.
func (s *ConfidenceScorer) OverallConfidence(r *entity.ExtractionResult) float64 {
	var sum, weights float64
	add := func(weight, confidence float64) {
		sum += weight * confidence
		weights += weight
	}
	core := r.CoreFields
	for _, f := range coreFieldList(core) {
		if f.field != nil {
			add(fieldWeights[f.name], f.field.Confidence)
		}
	}
	if len(r.Fees) > 0 {
		add(fieldWeights["processing_fee"], meanConfidence(r.Fees))
	}
	if len(r.Penalties) > 0 {
		add(fieldWeights["late_payment_penalty"]+fieldWeights["prepayment_penalty"], meanConfidence(r.Penalties))
	}
	if l := r.Entities.Lender; l != nil && l.BankName != "" {
		add(fieldWeights["bank_name"], l.BankConfidence)
	}
	if c := r.Entities.CoSigner; c != nil {
		add(fieldWeights["cosigner"], c.Confidence)
	}
	if c := r.Entities.Collateral; c != nil {
		add(fieldWeights["collateral"], c.Confidence)
	}
	if t := r.AdditionalTerms.RepaymentMode; t != nil {
		add(fieldWeights["repayment_mode"], t.Confidence)
	}
	if t := r.AdditionalTerms.Disbursement; t != nil {
		add(fieldWeights["disbursement_terms"], t.Confidence)
	}
	if weights == 0 {
		return 0
	}
	return common.Round(sum/weights, 3)
}

// FlagLowConfidence lists every extracted item under the threshold.
func (s *ConfidenceScorer) FlagLowConfidence(r *entity.ExtractionResult) []entity.FlaggedField {
	flagged := []entity.FlaggedField{}
	flag := func(name, category string, confidence float64, value string) {
		if confidence < s.threshold {
			flagged = append(flagged, entity.FlaggedField{
				FieldName:  name,
				Category:   category,
				Confidence: confidence,
				Value:      value,
				Reason:     lowConfidenceReason,
			})
		}
	}
	core := r.CoreFields
	for _, f := range coreFieldList(core) {
		if f.field != nil {
			flag(f.name, "core_fields", f.field.Confidence, formatValue(f.field.Value))
		}
	}
	for i, fee := range r.Fees {
		flag(fmt.Sprintf("fee_%d_%s", i, fee.Type), "fees", fee.Confidence, formatValue(fee.Value))
	}
	for i, p := range r.Penalties {
		flag(fmt.Sprintf("penalty_%d_%s", i, p.Type), "penalties", p.Confidence, formatValue(p.Value))
	}
	if l := r.Entities.Lender; l != nil && l.BankName != "" {
		flag("bank_name", "entities", l.BankConfidence, l.BankName)
	}
	if c := r.Entities.CoSigner; c != nil {
		flag("cosigner", "entities", c.Confidence, c.Name)
	}
	if c := r.Entities.Collateral; c != nil {
		flag("collateral", "entities", c.Confidence, c.Description)
	}
	if t := r.AdditionalTerms.RepaymentMode; t != nil {
		flag("repayment_mode", "additional_terms", t.Confidence, t.Kind)
	}
	if t := r.AdditionalTerms.Disbursement; t != nil {
		flag("disbursement_terms", "additional_terms", t.Confidence, t.Description)
	}
	return flagged
}

// Report builds the full confidence report for a result.
func (s *ConfidenceScorer) Report(r *entity.ExtractionResult) entity.ConfidenceReport {
	overall := s.OverallConfidence(r)
	flagged := s.FlagLowConfidence(r)
	return entity.ConfidenceReport{
		OverallConfidence:     overall,
		ConfidenceLevel:       constants.LevelForConfidence(overall),
		LowConfidenceFields:   flagged,
		RequiresReview:        len(flagged) > 0 || overall < s.threshold,
		FieldCount:            fieldCount(r),
		MissingCriticalFields: missingCritical(r.CoreFields),
	}
}

func fieldCount(r *entity.ExtractionResult) int {
	n := len(r.Fees) + len(r.Penalties)
	for _, present := range []bool{
		r.CoreFields.PrincipalAmount != nil,
		r.CoreFields.InterestRate != nil,
		r.CoreFields.Tenure != nil,
		r.CoreFields.MoratoriumPeriod != nil,
		r.Entities.Lender != nil,
		r.Entities.CoSigner != nil,
		r.Entities.Collateral != nil,
		r.AdditionalTerms.Disbursement != nil,
		r.AdditionalTerms.RepaymentMode != nil,
		r.AdditionalTerms.EMIAmount != nil,
		r.AdditionalTerms.Prepayment != nil,
		r.AdditionalTerms.LockInPeriod != nil,
	} {
		if present {
			n++
		}
	}
	return n
}

func missingCritical(core entity.CoreFields) []string {
	missing := []string{}
	present := map[string]bool{
		"principal_amount": core.PrincipalAmount != nil,
		"interest_rate":    core.InterestRate != nil,
		"tenure":           core.Tenure != nil,
	}
	for _, name := range criticalFields {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

type namedField struct {
	name  string
	field *entity.ExtractedField
}

func coreFieldList(core entity.CoreFields) []namedField {
	return []namedField{
		{"principal_amount", core.PrincipalAmount},
		{"interest_rate", core.InterestRate},
		{"tenure", core.Tenure},
		{"moratorium_period", core.MoratoriumPeriod},
	}
}

func meanConfidence(fees []entity.ExtractedFee) float64 {
	var total float64
	for _, f := range fees {
		total += f.Confidence
	}
	return total / float64(len(fees))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
