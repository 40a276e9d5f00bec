package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const (
	FeeProcessing     = "processing_fee"
	FeeAdministrative = "administrative_fee"
	FeeDocumentation  = "documentation_fee"

	PenaltyLatePayment = "late_payment_penalty"
	PenaltyPrepayment  = "prepayment_penalty"

	SourceText  = "text"
	SourceTable = "table"

	feeConfidence      = 0.85
	penaltyConfidence  = 0.8
	tableFeeConfidence = 0.9
)

// amountSuffix captures the amount (group 1) and an optional percent sign (group 2).
const amountSuffix = `[:\s]*(?:of\s+)?` + currencyPattern + `\s*` + numPattern + `(\s*%)?`

// chargeRule describes one fee or penalty kind. A zero percent limit means
// the kind is only ever a fixed amount.
type chargeRule struct {
	kind       string
	rules      []*regexp.Regexp
	maxPercent float64
	maxFixed   float64
	confidence float64
}

func newChargeRule(kind string, maxPercent, maxFixed, confidence float64, triggers ...string) chargeRule {
	patterns := make([]string, 0, len(triggers))
	for _, t := range triggers {
		patterns = append(patterns, `(?i)`+t+amountSuffix)
	}
	return chargeRule{kind: kind, rules: compileAll(patterns...), maxPercent: maxPercent, maxFixed: maxFixed, confidence: confidence}
}

var (
	feeRules = []chargeRule{
		newChargeRule(FeeProcessing, 10, 1e6, feeConfidence,
			`\bprocessing\s+(?:fees?|charges?)`),
		newChargeRule(FeeAdministrative, 5, 5e5, feeConfidence,
			`\b(?:administrative\s+fees?|admin\s+fees?|administration\s+charges?)`),
		newChargeRule(FeeDocumentation, 0, 1e5, feeConfidence,
			`\b(?:documentation\s+(?:fees?|charges?)|document\s+charges?)`),
	}
	penaltyRules = []chargeRule{
		newChargeRule(PenaltyLatePayment, 10, 1e5, penaltyConfidence,
			`\b(?:late\s+payment|delayed\s+payment|overdue)\s+(?:penalty|charges?|fees?)`,
			`\b(?:penalty|charges?)\s+(?:for|on)\s+(?:late|delayed|overdue)\s+payments?`),
		newChargeRule(PenaltyPrepayment, 10, 5e5, penaltyConfidence,
			`\b(?:prepayment|pre-payment|foreclosure)\s+(?:penalty|charges?|fees?)`,
			`\b(?:penalty|charges?)\s+(?:for|on)\s+(?:prepayment|pre-payment|foreclosure)`),
	}

	penaltyFreeRules = compileAll(
		`(?i)\b(?:no|nil|zero)\s+(?:prepayment|pre-payment|foreclosure)\s+(?:penalty|charges?|fees?)`,
		`(?i)\b(?:prepayment|pre-payment|foreclosure)\s+(?:penalty|charges?|fees?)[:\s]*(?:nil|none|no\s+penalty|not\s+applicable|waived)\b`,
	)
)

// FeeExtractor pulls fees and penalties out of text and fee tables.
type FeeExtractor struct{}

// ExtractFees returns at most one entry per fee kind from text, followed by
// every row of any fee table.
func (FeeExtractor) ExtractFees(text string, tables []entity.Table) []entity.ExtractedFee {
	fees := make([]entity.ExtractedFee, 0, len(feeRules))
	for _, rule := range feeRules {
		if fee := matchCharge(text, rule); fee != nil {
			fees = append(fees, *fee)
		}
	}
	for _, t := range tables {
		fees = append(fees, feesFromTable(t)...)
	}
	return fees
}

// ExtractPenalties returns late payment and prepayment penalties. A clause
// stating there is no prepayment penalty yields a zero fixed penalty.
func (FeeExtractor) ExtractPenalties(text string) []entity.ExtractedFee {
	penalties := make([]entity.ExtractedFee, 0, len(penaltyRules))
	for _, rule := range penaltyRules {
		if p := matchCharge(text, rule); p != nil {
			penalties = append(penalties, *p)
			continue
		}
		if rule.kind == PenaltyPrepayment {
			if p := matchPenaltyFree(text); p != nil {
				penalties = append(penalties, *p)
			}
		}
	}
	return penalties
}

func matchCharge(text string, rule chargeRule) *entity.ExtractedFee {
	var out *entity.ExtractedFee
	scan(text, rule.rules, func(m []string) bool {
		v, ok := parseAmount(m[1])
		if !ok {
			return false
		}
		valueType := entity.ValueTypeFixed
		limit := rule.maxFixed
		if strings.TrimSpace(m[2]) == "%" {
			valueType = entity.ValueTypePercentage
			limit = rule.maxPercent
		}
		if v <= 0 || v > limit {
			return false
		}
		fee := entity.ExtractedFee{
			Type:       rule.kind,
			Value:      v,
			ValueType:  valueType,
			Confidence: rule.confidence,
			Source:     SourceText,
			SourceSpan: strings.TrimSpace(m[0]),
		}
		if valueType == entity.ValueTypeFixed {
			fee.Currency = detectCurrency(m[0])
		}
		out = &fee
		return true
	})
	return out
}

func matchPenaltyFree(text string) *entity.ExtractedFee {
	for _, re := range penaltyFreeRules {
		if span := re.FindString(text); span != "" {
			return &entity.ExtractedFee{
				Type:       PenaltyPrepayment,
				Value:      0,
				ValueType:  entity.ValueTypeFixed,
				Confidence: penaltyConfidence,
				Source:     SourceText,
				SourceSpan: strings.TrimSpace(span),
			}
		}
	}
	return nil
}

var (
	feeHeaderTerms = []string{"fee", "charge", "cost", "expense", "particular"}
	feeTypeTerms   = []string{"type", "description", "particular", "name", "nature"}
	feeAmountTerms = []string{"amount", "value", "rs", "inr", "₹", "charge", "fee"}
)

// feesFromTable reads a fee table. The table counts only when some header
// mentions fees or charges; it then needs a type column and an amount column.
func feesFromTable(t entity.Table) []entity.ExtractedFee {
	typeCol, amountCol := -1, -1
	feeTable := false
	for i, h := range t.Headers {
		lower := strings.ToLower(h)
		if containsAny(lower, feeHeaderTerms) {
			feeTable = true
		}
		switch {
		case typeCol < 0 && containsAny(lower, feeTypeTerms):
			typeCol = i
		case amountCol < 0 && containsAny(lower, feeAmountTerms):
			amountCol = i
		}
	}
	if !feeTable || typeCol < 0 || amountCol < 0 {
		return nil
	}

	var fees []entity.ExtractedFee
	for _, row := range t.Rows {
		if len(row) <= typeCol || len(row) <= amountCol {
			continue
		}
		name := strings.TrimSpace(row[typeCol])
		v, ok := parseAmount(row[amountCol])
		if name == "" || !ok {
			continue
		}
		valueType := entity.ValueTypeFixed
		if strings.Contains(row[amountCol], "%") {
			valueType = entity.ValueTypePercentage
		}
		fees = append(fees, entity.ExtractedFee{
			Type:       name,
			Value:      v,
			ValueType:  valueType,
			Currency:   detectCurrency(row[amountCol]),
			Confidence: tableFeeConfidence,
			Source:     SourceTable,
			SourceSpan: fmt.Sprintf("%s | %s", name, strings.TrimSpace(row[amountCol])),
		})
	}
	return fees
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
