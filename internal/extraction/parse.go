package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	numPattern      = `([0-9][0-9,]*(?:\.[0-9]+)?)`
	currencyPattern = `(?:rs\.?|inr|₹|\$|usd|€|eur|£|gbp)?`
)

var (
	reNonNumeric = regexp.MustCompile(`[^0-9.\-]`)
	reNonDigit   = regexp.MustCompile(`[^0-9]`)
)

// parseAmount reads "Rs. 1,23,456.50" style strings. Currency markers,
// separators and whitespace are dropped before parsing.
func parseAmount(s string) (float64, bool) {
	cleaned := reNonNumeric.ReplaceAllString(s, "")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// toMonths converts a count with a month or year unit into months.
func toMonths(count string, unit string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(unit), "year") {
		return n * 12, true
	}
	return n, true
}

// detectCurrency picks the currency named in a matched span, INR otherwise.
func detectCurrency(span string) string {
	lower := strings.ToLower(span)
	switch {
	case strings.Contains(lower, "$") || strings.Contains(lower, "usd"):
		return "USD"
	case strings.Contains(lower, "€") || strings.Contains(lower, "eur"):
		return "EUR"
	case strings.Contains(lower, "£") || strings.Contains(lower, "gbp"):
		return "GBP"
	default:
		return "INR"
	}
}

var scheduleDateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2-1-06",
	"2/1/06",
	"2006-1-2",
	"2006/1/2",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-January-2006",
}

// parseDate returns the date as YYYY-MM-DD when any known layout matches.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range scheduleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

// scan tries every rule in order and every match of a rule in document
// order, stopping at the first match accepted by try.
func scan(text string, rules []*regexp.Regexp, try func(m []string) bool) {
	for _, re := range rules {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if try(m) {
				return
			}
		}
	}
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

var reNegation = regexp.MustCompile(`(?i)\b(?:no|not|without|nil)\s*$`)

// negated reports whether the words just before offset negate the match,
// as in "no guarantor".
func negated(text string, offset int) bool {
	start := offset - 12
	if start < 0 {
		start = 0
	}
	return reNegation.MatchString(text[start:offset])
}
