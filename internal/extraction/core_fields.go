package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const (
	coreConfidence       = 0.9
	moratoriumConfidence = 0.85

	UnitPercentPerAnnum = "percent_per_annum"
	UnitMonths          = "months"
)

var (
	principalRules = compileAll(
		`(?i)\b(?:principal(?:\s+amount)?|loan\s+amount|amount\s+sanctioned|sanctioned\s+amount|disbursement\s+amount)[:\s]*`+currencyPattern+`\s*`+numPattern,
		`(?i)`+`(?:rs\.?|inr|₹|\$)\s*`+numPattern+`\s*(?:principal|loan\s+amount)`,
		`(?i)\bamount\s+of\s+loan[:\s]*`+currencyPattern+`\s*`+numPattern,
	)
	interestRules = compileAll(
		`(?i)\b(?:interest\s+rate|rate\s+of\s+interest|roi)[:\s]*([0-9]+(?:\.[0-9]+)?)\s*%?\s*(?:p\.?a\.?|per\s+annum)?`,
		`(?i)([0-9]+(?:\.[0-9]+)?)\s*%\s*(?:p\.?a\.?|per\s+annum)?\s*(?:interest|roi)\b`,
		`(?i)\bapr[:\s]*([0-9]+(?:\.[0-9]+)?)\s*%?`,
	)
	tenureRules = compileAll(
		`(?i)\b(?:tenure|loan\s+period|repayment\s+period|term)[:\s]*([0-9]+)\s*(months?|years?)`,
		`(?i)\b(?:period|duration)\s+of\s+(?:loan|repayment)[:\s]*([0-9]+)\s*(months?|years?)`,
		`(?i)\b([0-9]+)\s*(months?|years?)\s*(?:tenure|period|term)\b`,
	)
	moratoriumRules = compileAll(
		`(?i)\b(?:moratorium(?:\s+period)?|grace\s+period)[:\s]*([0-9]+)\s*(months?|years?)`,
		`(?i)\b(?:repayment\s+starts\s+after|payment\s+holiday)[:\s]*([0-9]+)\s*(months?|years?)`,
		`(?i)\b([0-9]+)\s*(months?|years?)\s*(?:moratorium|grace\s+period)`,
	)
)

// CoreFieldExtractor finds principal, interest rate, tenure and moratorium.
// The first match inside the plausible range wins.
type CoreFieldExtractor struct{}

func (CoreFieldExtractor) ExtractPrincipalAmount(text string) *entity.ExtractedField {
	var out *entity.ExtractedField
	scan(text, principalRules, func(m []string) bool {
		v, ok := parseAmount(m[1])
		if !ok || !inRange(v, 100, 1e9) {
			return false
		}
		out = &entity.ExtractedField{
			Value:      v,
			Currency:   detectCurrency(m[0]),
			Original:   m[1],
			Confidence: coreConfidence,
			SourceSpan: strings.TrimSpace(m[0]),
		}
		return true
	})
	return out
}

func (CoreFieldExtractor) ExtractInterestRate(text string) *entity.ExtractedField {
	var out *entity.ExtractedField
	scan(text, interestRules, func(m []string) bool {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || !inRange(v, 0.1, 50) {
			return false
		}
		out = &entity.ExtractedField{
			Value:      v,
			Unit:       UnitPercentPerAnnum,
			Original:   m[1],
			Confidence: coreConfidence,
			SourceSpan: strings.TrimSpace(m[0]),
		}
		return true
	})
	return out
}

func (CoreFieldExtractor) ExtractTenure(text string) *entity.ExtractedField {
	return extractMonths(text, tenureRules, 1, 360, coreConfidence)
}

func (CoreFieldExtractor) ExtractMoratoriumPeriod(text string) *entity.ExtractedField {
	return extractMonths(text, moratoriumRules, 0, 60, moratoriumConfidence)
}

// ExtractAll runs every core extractor over text.
func (e CoreFieldExtractor) ExtractAll(text string) entity.CoreFields {
	return entity.CoreFields{
		PrincipalAmount:  e.ExtractPrincipalAmount(text),
		InterestRate:     e.ExtractInterestRate(text),
		Tenure:           e.ExtractTenure(text),
		MoratoriumPeriod: e.ExtractMoratoriumPeriod(text),
	}
}

func extractMonths(text string, rules []*regexp.Regexp, lo, hi int, confidence float64) *entity.ExtractedField {
	var out *entity.ExtractedField
	scan(text, rules, func(m []string) bool {
		months, ok := toMonths(m[1], m[2])
		if !ok || months < lo || months > hi {
			return false
		}
		out = &entity.ExtractedField{
			Value:      float64(months),
			Unit:       UnitMonths,
			Original:   m[1] + " " + strings.ToLower(m[2]),
			Confidence: confidence,
			SourceSpan: strings.TrimSpace(m[0]),
		}
		return true
	})
	return out
}
