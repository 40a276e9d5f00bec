package normalization

import (
	"regexp"
	"sort"
	"strings"
)

type bankPattern struct {
	name     string
	patterns []*regexp.Regexp
}

var bankPatterns = func() []bankPattern {
	table := []struct {
		name     string
		patterns []string
	}{
		{"State Bank of India", []string{`\bSBI\b`, `\bState\s+Bank\s+of\s+India\b`, `\bStateBank\b`}},
		{"HDFC Bank", []string{`\bHDFC\s+Bank\b`, `\bHDFC\b`, `\bHousing\s+Development\s+Finance\s+Corporation\b`}},
		{"ICICI Bank", []string{`\bICICI\s+Bank\b`, `\bICICI\b`}},
		{"Axis Bank", []string{`\bAxis\s+Bank\b`, `\bAxis\b`}},
		{"Punjab National Bank", []string{`\bPNB\b`, `\bPunjab\s+National\s+Bank\b`}},
		{"Bank of Baroda", []string{`\bBank\s+of\s+Baroda\b`, `\bBoB\b`}},
		{"Canara Bank", []string{`\bCanara\s+Bank\b`, `\bCanara\b`}},
		{"Union Bank of India", []string{`\bUnion\s+Bank(?:\s+of\s+India)?\b`}},
		{"Bank of India", []string{`\bBank\s+of\s+India\b`, `\bBoI\b`}},
		{"Indian Bank", []string{`\bIndian\s+Bank\b`}},
		{"Kotak Mahindra Bank", []string{`\bKotak(?:\s+Mahindra)?(?:\s+Bank)?\b`}},
		{"IndusInd Bank", []string{`\bIndusInd(?:\s+Bank)?\b`}},
		{"Yes Bank", []string{`\bYes\s+Bank\b`}},
		{"IDFC First Bank", []string{`\bIDFC(?:\s+First)?(?:\s+Bank)?\b`}},
		{"Federal Bank", []string{`\bFederal\s+Bank\b`}},
		{"RBL Bank", []string{`\bRBL(?:\s+Bank)?\b`, `\bRatnakar\s+Bank\b`}},
		{"South Indian Bank", []string{`\bSouth\s+Indian\s+Bank\b`}},
		{"Karur Vysya Bank", []string{`\bKarur\s+Vysya\s+Bank\b`, `\bKVB\b`}},
		{"Tamilnad Mercantile Bank", []string{`\bTamilnad\s+Mercantile\s+Bank\b`, `\bTMB\b`}},
		{"City Union Bank", []string{`\bCity\s+Union\s+Bank\b`, `\bCUB\b`}},
	}
	out := make([]bankPattern, 0, len(table))
	for _, b := range table {
		bp := bankPattern{name: b.name}
		for _, p := range b.patterns {
			bp.patterns = append(bp.patterns, regexp.MustCompile(`(?i)`+p))
		}
		out = append(out, bp)
	}
	return out
}()

var (
	branchNearRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)branch[\s:]+([A-Za-z ]+?)(?:\n|,|\.)`),
		regexp.MustCompile(`(?i)([A-Za-z ]+?)\s+branch\b`),
		regexp.MustCompile(`(?i)branch\s+office[\s:]+([A-Za-z ]+?)(?:\n|,|\.)`),
	}
	ifscRule     = regexp.MustCompile(`\b([A-Z]{4}0[A-Z0-9]{6})\b`)
	genericBank  = regexp.MustCompile(`\b([A-Z][A-Za-z ]+?(?:Bank|Financial Services|Finance))\b`)
	reIFSCLabel  = regexp.MustCompile(`(?i)\bifsc(?:\s+code)?\s*[:\-]?\s*([A-Z]{4}0[A-Z0-9]{6})\b`)
	reSWIFTLabel = regexp.MustCompile(`(?i)\b(?:swift|bic)(?:\s+code)?\s*[:\-]?\s*([A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?)\b`)
)

// BankIdentification is the lender a document most likely came from.
type BankIdentification struct {
	BankName   string  `json:"bank_name"`
	Confidence float64 `json:"confidence"`
	BranchName string  `json:"branch_name,omitempty"`
	IFSCCode   string  `json:"ifsc_code,omitempty"`
	SWIFTCode  string  `json:"swift_code,omitempty"`
}

// BankCode prefers the IFSC code and falls back to SWIFT.
func (b BankIdentification) BankCode() string {
	if b.IFSCCode != "" {
		return b.IFSCCode
	}
	return b.SWIFTCode
}

type BankIdentifier struct{}

func NewBankIdentifier() *BankIdentifier { return &BankIdentifier{} }

// Identify scores every known bank by pattern hits. Each hit adds 0.3, a
// first hit within 500 characters adds 0.4 and an exact canonical-name hit
// adds 0.3, capped at 1. Unknown lenders fall back to a generic
// "... Bank"/"... Finance" phrase in the first 1000 characters.
func (bi *BankIdentifier) Identify(text string) BankIdentification {
	type candidate struct {
		name      string
		score     float64
		positions []int
	}
	var candidates []candidate
	for _, b := range bankPatterns {
		c := candidate{name: b.name}
		exact := false
		for _, re := range b.patterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				c.positions = append(c.positions, loc[0])
				if strings.EqualFold(text[loc[0]:loc[1]], b.name) {
					exact = true
				}
			}
		}
		if len(c.positions) == 0 {
			continue
		}
		sort.Ints(c.positions)
		c.score = 0.3 * float64(len(c.positions))
		if c.positions[0] < 500 {
			c.score += 0.4
		}
		if exact {
			c.score += 0.3
		}
		c.score = min(c.score, 1.0)
		candidates = append(candidates, c)
	}

	res := BankIdentification{
		IFSCCode:  findCode(text, reIFSCLabel, ifscRule),
		SWIFTCode: findCode(text, reSWIFTLabel, nil),
	}
	if len(candidates) > 0 {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.score > best.score {
				best = c
			}
		}
		res.BankName = best.name
		res.Confidence = best.score
		res.BranchName = branchNear(text, best.positions)
		return res
	}

	head := text
	if len(head) > 1000 {
		head = head[:1000]
	}
	for _, m := range genericBank.FindAllStringSubmatch(head, -1) {
		name := strings.TrimSpace(m[1])
		if len(name) > 5 && !strings.Contains(strings.ToLower(name), "loan") {
			res.BankName = name
			res.Confidence = 0.5
			return res
		}
	}
	res.BankName = "Unknown"
	return res
}

// branchNear searches a window of 100 characters before and 300 after each
// bank mention.
func branchNear(text string, positions []int) string {
	for _, pos := range positions {
		start := max(pos-100, 0)
		end := min(pos+300, len(text))
		window := text[start:end]
		for _, re := range branchNearRules {
			if m := re.FindStringSubmatch(window); m != nil {
				name := strings.TrimSpace(m[1])
				if len(name) > 2 && !strings.EqualFold(name, "the") {
					return name
				}
			}
		}
	}
	return ""
}

func findCode(text string, labelled, bare *regexp.Regexp) string {
	if m := labelled.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if bare != nil {
		if m := bare.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

var terminology = map[string][]string{
	"interest_rate":  {"interest rate", "rate of interest", "roi", "annual percentage rate", "apr", "interest"},
	"principal":      {"principal", "loan amount", "sanctioned amount", "principal amount", "amount sanctioned"},
	"tenure":         {"tenure", "loan period", "repayment period", "loan tenure", "term"},
	"emi":            {"emi", "equated monthly installment", "monthly installment", "monthly payment"},
	"processing_fee": {"processing fee", "processing charges", "upfront fee", "loan processing fee"},
	"prepayment":     {"prepayment", "pre payment", "foreclosure", "part payment", "early repayment"},
}

// NormalizeTerminology maps a bank-specific label to a standard term name.
// Labels that match nothing come back lowercased and trimmed.
func NormalizeTerminology(label string) string {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(norm)), " ")
	for _, std := range []string{"interest_rate", "principal", "tenure", "emi", "processing_fee", "prepayment"} {
		for _, v := range terminology[std] {
			if norm == v {
				return std
			}
		}
	}
	return strings.ToLower(strings.TrimSpace(label))
}
