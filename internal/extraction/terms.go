package extraction

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const (
	DisbursementSingle   = "single"
	DisbursementMultiple = "multiple"

	RepaymentEMI    = "EMI"
	RepaymentBullet = "bullet"
	RepaymentStepUp = "step-up"
	RepaymentFlex   = "flexible"

	PrepaymentFull        = "full"
	PrepaymentPartial     = "partial"
	PrepaymentPenaltyFree = "penalty_free"
	PrepaymentNotAllowed  = "not_allowed"
)

var (
	disbursementRules = compileAll(
		`(?i)\b(?:disbursement|disbursal)\s*:?[ \t]*([A-Za-z0-9][A-Za-z0-9 ,\-]*(?:days|weeks|months|tranches|installments))`,
		`(?i)\b(?:loan|amount)\s+will\s+be\s+disbursed\s*:?[ \t]*([A-Za-z0-9][A-Za-z0-9 ,\-]+)`,
		`(?i)\b(?:disbursement\s+(?:schedule|terms)|disbursal\s+terms)\s*:[ \t]*([^\n]+)`,
	)
	reMultiStage        = regexp.MustCompile(`(?i)\b(?:tranches?|installments?|phases?|stages?|partial)\b`)
	reSingleDisbursal   = regexp.MustCompile(`(?i)\b(?:single|one-time|one\s+time)\s+disbursement\b`)
	reMultipleDisbursal = regexp.MustCompile(`(?i)\bmultiple\s+disbursements?\b|\btranches\b`)

	reEMI             = regexp.MustCompile(`(?i)\bemi\b|\bequated\s+monthly\s+installments?\b`)
	reBullet          = regexp.MustCompile(`(?i)\b(?:bullet|lump\s*sum)\s+(?:payment|repayment)\b`)
	reStepUp          = regexp.MustCompile(`(?i)\bstep[-\s]?up\b`)
	repaymentModeRule = regexp.MustCompile(`(?i)\b(?:repayment|payment)\s+(?:mode|method|type)\s*:?[ \t]*(flexible|bullet|step[-\s]?up|emi)\b`)

	emiAmountRules = compileAll(
		`(?i)\b(?:emi|monthly\s+installment)(?:\s+amount)?\s*:?\s*`+currencyPattern+`\s*`+numPattern,
		`(?i)\bmonthly\s+payment\s*:?\s*`+currencyPattern+`\s*`+numPattern,
	)

	rePrepayPenaltyFree = regexp.MustCompile(`(?i)\b(?:no|nil|zero)\s+(?:prepayment|pre-payment|foreclosure)\s+(?:penalty|charges?|fees?)\b`)
	rePrepayAllowed     = regexp.MustCompile(`(?i)\b(?:prepayment|pre-payment|foreclosure)\s+(?:is\s+)?(?:allowed|permitted)\b`)
	rePrepayDenied      = regexp.MustCompile(`(?i)\b(?:prepayment|pre-payment|foreclosure)\s+(?:is\s+)?not\s+(?:allowed|permitted)\b|\bno\s+(?:prepayment|pre-payment|foreclosure)\b`)
	rePrepayPartial     = regexp.MustCompile(`(?i)\bpart(?:ial)?\s+(?:prepayment|pre-payment)\b`)

	lockInRule = regexp.MustCompile(`(?i)\block[-\s]?in\s+period\s*:?\s*([0-9]+)\s*(months?|years?)`)
)

// TermsExtractor reads disbursement, repayment and prepayment clauses.
type TermsExtractor struct{}

func (TermsExtractor) ExtractDisbursementTerms(text string) *entity.TextTerm {
	var out *entity.TextTerm
	scan(text, disbursementRules, func(m []string) bool {
		desc := strings.Trim(m[1], " ,.")
		if desc == "" {
			return false
		}
		kind := DisbursementSingle
		if reMultiStage.MatchString(desc) {
			kind = DisbursementMultiple
		}
		out = &entity.TextTerm{Kind: kind, Description: desc, Confidence: 0.75, SourceSpan: strings.TrimSpace(m[0])}
		return true
	})
	if out != nil {
		return out
	}
	if m := reSingleDisbursal.FindString(text); m != "" {
		return &entity.TextTerm{Kind: DisbursementSingle, Description: "Single disbursement", Confidence: 0.8, SourceSpan: m}
	}
	if m := reMultipleDisbursal.FindString(text); m != "" {
		return &entity.TextTerm{Kind: DisbursementMultiple, Description: "Multiple disbursements", Confidence: 0.8, SourceSpan: m}
	}
	return nil
}

func (TermsExtractor) ExtractRepaymentMode(text string) *entity.TextTerm {
	if m := reEMI.FindString(text); m != "" {
		return &entity.TextTerm{Kind: RepaymentEMI, Description: "Equated Monthly Installments", Confidence: 0.9, SourceSpan: m}
	}
	if m := reBullet.FindString(text); m != "" {
		return &entity.TextTerm{Kind: RepaymentBullet, Description: "Bullet payment", Confidence: 0.85, SourceSpan: m}
	}
	if m := reStepUp.FindString(text); m != "" {
		return &entity.TextTerm{Kind: RepaymentStepUp, Description: "Step-up repayment", Confidence: 0.85, SourceSpan: m}
	}
	if m := repaymentModeRule.FindStringSubmatch(text); m != nil {
		kind := strings.ToLower(m[1])
		switch {
		case kind == "emi":
			kind = RepaymentEMI
		case reStepUp.MatchString(kind):
			kind = RepaymentStepUp
		}
		return &entity.TextTerm{Kind: kind, Description: strings.TrimSpace(m[1]), Confidence: 0.8, SourceSpan: m[0]}
	}
	return nil
}

func (TermsExtractor) ExtractEMIAmount(text string) *entity.ExtractedField {
	var out *entity.ExtractedField
	scan(text, emiAmountRules, func(m []string) bool {
		v, ok := parseAmount(m[1])
		if !ok || !inRange(v, 100, 1e6) {
			return false
		}
		out = &entity.ExtractedField{
			Value:      v,
			Currency:   detectCurrency(m[0]),
			Original:   m[1],
			Confidence: 0.85,
			SourceSpan: strings.TrimSpace(m[0]),
		}
		return true
	})
	return out
}

// ExtractPrepaymentOptions checks the penalty-free wording before the
// "no prepayment" denial, since the former contains the latter.
func (TermsExtractor) ExtractPrepaymentOptions(text string) *entity.PrepaymentOption {
	switch {
	case rePrepayPenaltyFree.MatchString(text):
		return &entity.PrepaymentOption{Allowed: true, Kind: PrepaymentPenaltyFree, Description: "Prepayment allowed without penalty", Confidence: 0.85}
	case rePrepayDenied.MatchString(text):
		return &entity.PrepaymentOption{Allowed: false, Kind: PrepaymentNotAllowed, Description: "Prepayment not allowed", Confidence: 0.85}
	case rePrepayPartial.MatchString(text):
		return &entity.PrepaymentOption{Allowed: true, Kind: PrepaymentPartial, Description: "Partial prepayment allowed", Confidence: 0.8}
	case rePrepayAllowed.MatchString(text):
		return &entity.PrepaymentOption{Allowed: true, Kind: PrepaymentFull, Description: "Prepayment allowed", Confidence: 0.85}
	}
	return nil
}

func (TermsExtractor) ExtractLockInPeriod(text string) *entity.ExtractedField {
	m := lockInRule.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	months, ok := toMonths(m[1], m[2])
	if !ok {
		return nil
	}
	return &entity.ExtractedField{
		Value:      float64(months),
		Unit:       UnitMonths,
		Original:   m[1] + " " + strings.ToLower(m[2]),
		Confidence: 0.8,
		SourceSpan: m[0],
	}
}

func (e TermsExtractor) ExtractAll(text string) entity.AdditionalTerms {
	return entity.AdditionalTerms{
		Disbursement:  e.ExtractDisbursementTerms(text),
		RepaymentMode: e.ExtractRepaymentMode(text),
		EMIAmount:     e.ExtractEMIAmount(text),
		Prepayment:    e.ExtractPrepaymentOptions(text),
		LockInPeriod:  e.ExtractLockInPeriod(text),
	}
}
