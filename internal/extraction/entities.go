package extraction

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	CollateralUnsecured = "unsecured"
	CollateralProperty  = "property"
	CollateralGold      = "gold"
	CollateralVehicle   = "vehicle"
	CollateralLand      = "land"
	CollateralOther     = "other"
)

var knownBanks = []string{
	"state bank of india", "sbi", "hdfc bank", "icici bank", "axis bank",
	"punjab national bank", "pnb", "bank of baroda", "canara bank", "union bank",
	"bank of india", "indian bank", "central bank", "idbi bank", "yes bank",
	"kotak mahindra", "indusind bank", "federal bank", "rbl bank", "idfc first bank",
	"bandhan bank", "karur vysya bank", "south indian bank", "city union bank",
}

var (
	knownBankRules = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(knownBanks))
		for _, b := range knownBanks {
			out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(b)+`\b`))
		}
		return out
	}()
	bankRules = compileAll(
		`(?i)\b(?:lender|bank|financial\s+institution)\s*:?[ \t]*([A-Z][A-Za-z &]+(?:Bank|Ltd|Limited))`,
		`(?i)\b([A-Z][A-Za-z &]+(?:Bank|Ltd|Limited))\s+(?:branch|office)`,
	)
	branchRules = compileAll(
		`(?i)\b(?:branch|office)\s*:[ \t]*([A-Za-z][A-Za-z ,]+)`,
		`(?i)\bbranch\s+(?:name|address)\s*:?[ \t]*([A-Za-z][A-Za-z ,]+)`,
	)
	coSignerRules = compileAll(
		`(?i)\b(?:co-signer|co\s+signer|cosigner|guarantor)(?:\s+name)?\s*:?[ \t]*([A-Za-z][A-Za-z .]+)`,
		`(?i)\b(?:parent|guardian)\s+name\s*:?[ \t]*([A-Za-z][A-Za-z .]+)`,
	)
	relationshipRule = regexp.MustCompile(`(?i)\b(?:relationship|relation)\s*:?\s*(father|mother|parent|guardian|spouse|sibling)\b`)
	unsecuredRule    = regexp.MustCompile(`(?i)\bunsecured\b|\bno\s+collateral\b`)
	collateralRules  = compileAll(
		`(?i)\b(?:collateral|security|pledge)\s*:?[ \t]*([A-Za-z][A-Za-z ,]*(?:property|asset|gold|vehicle|land|house))`,
		`(?i)\b(?:secured\s+by|security\s+provided)\s*:?[ \t]*([A-Za-z][A-Za-z ,]+)`,
	)
	reDigit = regexp.MustCompile(`[0-9]`)
)

// EntityExtractor finds lender, co-signer and collateral details.
type EntityExtractor struct{}

// titleCase builds a fresh Caser per call; a Caser keeps state and is not
// safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// ExtractLenderInfo returns nil when neither a bank nor a branch is found.
func (e EntityExtractor) ExtractLenderInfo(text string) *entity.LenderInfo {
	info := &entity.LenderInfo{}
	for _, re := range knownBankRules {
		if m := re.FindString(text); m != "" {
			info.BankName = titleCase(m)
			info.BankConfidence = 0.95
			info.SourceSpan = m
			break
		}
	}
	if info.BankName == "" {
		scan(text, bankRules, func(m []string) bool {
			name := strings.TrimSpace(m[1])
			if len(name) <= 3 {
				return false
			}
			info.BankName = name
			info.BankConfidence = 0.8
			info.SourceSpan = strings.TrimSpace(m[0])
			return true
		})
	}
	scan(text, branchRules, func(m []string) bool {
		name := strings.Trim(m[1], " ,")
		if len(name) <= 3 {
			return false
		}
		info.BranchName = name
		info.BranchConfidence = 0.75
		return true
	})
	if info.BankName == "" && info.BranchName == "" {
		return nil
	}
	return info
}

// ExtractCoSigner finds a named co-signer or, failing that, a bare
// relationship clause at reduced confidence.
func (e EntityExtractor) ExtractCoSigner(text string) *entity.ExtractedCoSigner {
	var out *entity.ExtractedCoSigner
	for _, re := range coSignerRules {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			name := strings.Trim(text[idx[2]:idx[3]], " .")
			if negated(text, idx[0]) || len(name) <= 3 || reDigit.MatchString(name) {
				continue
			}
			out = &entity.ExtractedCoSigner{
				Name:       name,
				Confidence: 0.8,
				SourceSpan: strings.TrimSpace(text[idx[0]:idx[1]]),
			}
			break
		}
		if out != nil {
			break
		}
	}
	rel := relationshipRule.FindStringSubmatch(text)
	switch {
	case out != nil && rel != nil:
		out.Relationship = strings.ToLower(rel[1])
	case out == nil && rel != nil:
		out = &entity.ExtractedCoSigner{
			Relationship: strings.ToLower(rel[1]),
			Confidence:   0.5,
			SourceSpan:   rel[0],
		}
	}
	return out
}

func (e EntityExtractor) ExtractCollateral(text string) *entity.ExtractedCollateral {
	if m := unsecuredRule.FindString(text); m != "" {
		return &entity.ExtractedCollateral{
			Type:        CollateralUnsecured,
			Description: "No collateral required",
			Confidence:  0.9,
			SourceSpan:  m,
		}
	}
	var out *entity.ExtractedCollateral
	scan(text, collateralRules, func(m []string) bool {
		desc := strings.Trim(m[1], " ,")
		if desc == "" {
			return false
		}
		out = &entity.ExtractedCollateral{
			Type:        collateralType(desc),
			Description: desc,
			Confidence:  0.75,
			SourceSpan:  strings.TrimSpace(m[0]),
		}
		return true
	})
	return out
}

func (e EntityExtractor) ExtractAll(text string) entity.EntityBlock {
	return entity.EntityBlock{
		Lender:     e.ExtractLenderInfo(text),
		CoSigner:   e.ExtractCoSigner(text),
		Collateral: e.ExtractCollateral(text),
	}
}

func collateralType(desc string) string {
	lower := strings.ToLower(desc)
	switch {
	case strings.Contains(lower, "property") || strings.Contains(lower, "house"):
		return CollateralProperty
	case strings.Contains(lower, "gold"):
		return CollateralGold
	case strings.Contains(lower, "vehicle") || strings.Contains(lower, "car"):
		return CollateralVehicle
	case strings.Contains(lower, "land"):
		return CollateralLand
	default:
		return CollateralOther
	}
}
