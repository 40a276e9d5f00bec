package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeLoanType(t *testing.T) {
	tests := []struct {
		in      string
		want    LoanType
		matched bool
	}{
		{"education", LoanTypeEducation, true},
		{"  Student Loan ", LoanTypeEducation, true},
		{"Housing Finance", LoanTypeHome, true},
		{"car loan", LoanTypeVehicle, true},
		{"GOLD", LoanTypeGold, true},
		{"Two-wheeler/Auto Loan", LoanTypeVehicle, true},
		{"Home-Loan", LoanTypeHome, true},
		{"Credit Card Loan", LoanTypeOther, false},
		{"Automatic debit", LoanTypeOther, false},
		{"Scarf financing", LoanTypeOther, false},
		{"business", LoanTypeOther, false},
		{"", LoanTypeOther, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalizeLoanType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.matched, ok)
		})
	}
	assert.Contains(t, LoanTypesAsStrings(), "other")
}

func TestLevelForConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, LevelForConfidence(0.9))
	assert.Equal(t, ConfidenceMedium, LevelForConfidence(0.7))
	assert.Equal(t, ConfidenceLow, LevelForConfidence(0.69))
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "TXT", MapExtToFormat(".txt"))
	assert.Equal(t, "", MapExtToFormat("png"))
}
