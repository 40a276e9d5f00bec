package constants

import (
	"strings"
	"unicode"
)

type LoanType string

const (
	LoanTypeEducation LoanType = "education"
	LoanTypeHome      LoanType = "home"
	LoanTypePersonal  LoanType = "personal"
	LoanTypeVehicle   LoanType = "vehicle"
	LoanTypeGold      LoanType = "gold"
	LoanTypeOther     LoanType = "other"
)

var allLoanTypes = []LoanType{
	LoanTypeEducation,
	LoanTypeHome,
	LoanTypePersonal,
	LoanTypeVehicle,
	LoanTypeGold,
	LoanTypeOther,
}

// loanTypeKeywords is checked in order; the first keyword found as a whole
// word (or its plural) in the label wins.
var loanTypeKeywords = []struct {
	keyword string
	kind    LoanType
}{
	{"education", LoanTypeEducation},
	{"student", LoanTypeEducation},
	{"home", LoanTypeHome},
	{"housing", LoanTypeHome},
	{"mortgage", LoanTypeHome},
	{"personal", LoanTypePersonal},
	{"vehicle", LoanTypeVehicle},
	{"car", LoanTypeVehicle},
	{"auto", LoanTypeVehicle},
	{"automobile", LoanTypeVehicle},
	{"gold", LoanTypeGold},
}

func LoanTypesAsStrings() []string {
	result := make([]string, len(allLoanTypes))
	for i, lt := range allLoanTypes {
		result[i] = string(lt)
	}
	return result
}

// CanonicalizeLoanType maps a free-form loan label onto the fixed enum by
// keyword. The bool is false when nothing matched and Other was used.
func CanonicalizeLoanType(input string) (LoanType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return LoanTypeOther, false
	}

	for _, lt := range allLoanTypes {
		if normalized == string(lt) {
			return lt, true
		}
	}

	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		words[w] = true
	}
	for _, k := range loanTypeKeywords {
		if words[k.keyword] || words[k.keyword+"s"] {
			return k.kind, true
		}
	}

	return LoanTypeOther, false
}
