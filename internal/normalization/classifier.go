package normalization

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/loan-compare/constants"
)

var loanTypeKeywords = []struct {
	kind     constants.LoanType
	keywords []string
}{
	{constants.LoanTypeEducation, []string{"education loan", "student loan", "tuition fee", "academic loan", "scholarship", "university", "college", "educational institution", "course fee", "student finance"}},
	{constants.LoanTypeHome, []string{"home loan", "housing loan", "mortgage", "property loan", "real estate", "residential loan", "home purchase", "house loan", "property purchase", "home construction"}},
	{constants.LoanTypePersonal, []string{"personal loan", "unsecured loan", "consumer loan", "personal finance", "quick loan", "instant loan"}},
	{constants.LoanTypeVehicle, []string{"vehicle loan", "car loan", "auto loan", "automobile loan", "two wheeler", "four wheeler", "bike loan", "motor vehicle", "vehicle finance"}},
	{constants.LoanTypeGold, []string{"gold loan", "gold pledge", "gold backed", "gold collateral", "jewel loan", "gold ornament"}},
}

type compiledLoanType struct {
	kind     constants.LoanType
	patterns []*regexp.Regexp
}

// LoanTypeClassifier guesses a loan type from keyword hit counts.
type LoanTypeClassifier struct {
	types []compiledLoanType
}

func NewLoanTypeClassifier() *LoanTypeClassifier {
	c := &LoanTypeClassifier{}
	for _, t := range loanTypeKeywords {
		ct := compiledLoanType{kind: t.kind}
		for _, kw := range t.keywords {
			ct.patterns = append(ct.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		c.types = append(c.types, ct)
	}
	return c
}

// Classification is a loan type guess with its confidence and hit counts.
type Classification struct {
	LoanType   constants.LoanType         `json:"loan_type"`
	Confidence float64                    `json:"confidence"`
	Scores     map[constants.LoanType]int `json:"scores"`
}

// Classify counts keyword occurrences per type. Confidence is the winning
// share of all hits, boosted by 20% (capped at 1) once the winner has three
// or more hits. Ties go to the type listed first.
func (c *LoanTypeClassifier) Classify(text string) Classification {
	lower := strings.ToLower(text)
	scores := make(map[constants.LoanType]int, len(c.types))
	total, best, bestKind := 0, 0, constants.LoanTypeOther
	for _, t := range c.types {
		n := 0
		for _, re := range t.patterns {
			n += len(re.FindAllStringIndex(lower, -1))
		}
		scores[t.kind] = n
		total += n
		if n > best {
			best, bestKind = n, t.kind
		}
	}
	if total == 0 {
		return Classification{LoanType: constants.LoanTypeOther, Confidence: 0, Scores: scores}
	}
	conf := float64(best) / float64(total)
	if best >= 3 {
		conf = min(conf*1.2, 1.0)
	}
	return Classification{LoanType: bestKind, Confidence: conf, Scores: scores}
}
