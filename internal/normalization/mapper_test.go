package normalization

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

func fixedMapper() *FieldMapper {
	m := NewFieldMapper("INR")
	m.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return m
}

func TestMapFields_Synonyms(t *testing.T) {
	raw := entity.RawFields{
		"loan_amount": "Rs. 5,00,000",
		"rate":        "8.5% p.a.",
		"tenure":      "5 years",
		"loan_type":   "Education Loan",
		"lender":      "HDFC Bank",
	}
	got, err := fixedMapper().MapFields(raw, "doc-1", "loan_abc")
	require.NoError(t, err)

	f := got.Fields
	assert.Equal(t, 500000.0, f["principal_amount"])
	assert.Equal(t, 8.5, f["interest_rate"])
	assert.Equal(t, 60, f["tenure_months"])
	assert.Equal(t, "education", f["loan_type"])
	assert.Equal(t, "INR", f["currency"])
	assert.Equal(t, "loan_abc", f["loan_id"])
	assert.Equal(t, "doc-1", f["document_id"])
	assert.Equal(t, map[string]any{"bank_name": "HDFC Bank"}, f["bank_info"])
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), f["extraction_timestamp"])
	assert.Empty(t, got.Warnings())
}

func TestMapFields_RupeeAmounts(t *testing.T) {
	tests := map[string]float64{
		"Rs.5,00,000":  500000,
		"Rs.50000":     50000,
		"₹5,00,000":    500000,
		"INR 2,50,000": 250000,
		"rupees 75000": 75000,
		"Rs. 1,200.50": 1200.5,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := fixedMapper().MapFields(entity.RawFields{
				"principal_amount": in, "interest_rate": 9, "tenure": 12, "bank_name": "HDFC Bank", "loan_type": "home",
			}, "doc", "")
			require.NoError(t, err)
			assert.Equal(t, want, got.Fields["principal_amount"])
			assert.Empty(t, got.Warnings())
		})
	}
}

func TestMapFields_KeyVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  entity.RawFields
	}{
		{"spaced labels", entity.RawFields{"Loan Amount": 100000, "Interest Rate": 10, "Tenure": 12}},
		{"upper case", entity.RawFields{"PRINCIPAL": 100000, "ROI": "10%", "LOAN_TERM": "12 months"}},
		{"bank terminology", entity.RawFields{"Sanctioned Amount": 100000, "Annual Percentage Rate": 10.0, "Repayment Period": 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fixedMapper().MapFields(tt.raw, "doc", "")
			require.NoError(t, err)
			assert.Equal(t, 100000.0, got.Fields["principal_amount"])
			assert.Equal(t, 10.0, got.Fields["interest_rate"])
			assert.Equal(t, 12, got.Fields["tenure_months"])
		})
	}
}

func TestMapFields_Defaults(t *testing.T) {
	got, err := fixedMapper().MapFields(entity.RawFields{
		"principal": 100000, "interest_rate": 9, "tenure": 24,
	}, "doc", "")
	require.NoError(t, err)

	assert.Equal(t, "other", got.Fields["loan_type"])
	assert.Equal(t, map[string]any{"bank_name": UnknownBank}, got.Fields["bank_info"])
	assert.Contains(t, got.Warnings(), "Loan type not found, defaulting to 'other'")
	assert.Contains(t, got.Warnings(), "Bank name not found, using 'Unknown Bank'")
	assert.Regexp(t, regexp.MustCompile(`^loan_[0-9a-f]{12}$`), got.Fields["loan_id"])
	assert.Equal(t, 0.0, got.Fields["extraction_confidence"])
}

func TestMapFields_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		raw   entity.RawFields
		field string
	}{
		{"principal", entity.RawFields{"interest_rate": 9, "tenure": 24}, "principal_amount"},
		{"blank principal", entity.RawFields{"principal": "  ", "interest_rate": 9, "tenure": 24}, "principal_amount"},
		{"rate", entity.RawFields{"principal": 1000, "tenure": 24}, "interest_rate"},
		{"tenure", entity.RawFields{"principal": 1000, "interest_rate": 9}, "tenure_months"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fixedMapper().MapFields(tt.raw, "doc", "")
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, common.IsKind(err, common.KindMissingRequiredField))
			var le *common.LoanError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestMapCurrency(t *testing.T) {
	tests := map[string]string{
		"₹":   "INR",
		"Rs.": "INR",
		"rs":  "INR",
		"INR": "INR",
		"$":   "USD",
		"eur": "EUR",
		"£":   "GBP",
		"jpy": "JPY",
		"usdc": "USDC",
	}
	for in, want := range tests {
		got, ok := MapCurrency(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"rupiah?", "ab", "u$d", ""} {
		_, ok := MapCurrency(in)
		assert.False(t, ok, in)
	}

	got, err := fixedMapper().MapFields(entity.RawFields{
		"principal": 1000, "interest_rate": 9, "tenure": 12, "currency": "rupiah?",
	}, "doc", "")
	require.NoError(t, err)
	assert.Equal(t, "INR", got.Fields["currency"])
	assert.Contains(t, got.Warnings(), `Unknown currency "rupiah?", defaulting to INR`)
}

func TestMapFields_OptionalFields(t *testing.T) {
	raw := entity.RawFields{
		"principal":     200000,
		"interest_rate": 11,
		"tenure":        "2 years",
		"grace_period":  "1 year",
		"fees": []any{
			map[string]any{"type": "Legal Fee", "amount": "Rs. 1,500", "notes": "one time"},
		},
		"stamp_duty":             500,
		"valuation_fee":          "N/A",
		"processing_fee":         "0",
		"foreclosure_charges":    "2%",
		"payment_mode":           "Equated Monthly Installments",
		"guarantor":              "Sita Devi",
		"co_signer_relationship": "mother",
		"security":               "Gold ornaments",
		"payout":                 "Single disbursement",
		"confidence":             1.7,
		"ifsc":                   "SBIN0001234",
		"branch":                 "MG Road",
	}
	got, err := fixedMapper().MapFields(raw, "doc", "")
	require.NoError(t, err)
	f := got.Fields

	assert.Equal(t, 24, f["tenure_months"])
	assert.Equal(t, 12, f["moratorium_period_months"])
	assert.NotContains(t, f, "processing_fee")
	assert.Equal(t, []map[string]any{
		{"fee_type": "Legal Fee", "amount": 1500.0, "currency": "INR", "conditions": "one time"},
		{"fee_type": "Stamp Duty", "amount": 500.0, "currency": "INR"},
	}, f["fees"])
	assert.Equal(t, "2%", f["prepayment_penalty"])
	assert.Equal(t, "emi", f["repayment_mode"])
	assert.Equal(t, map[string]any{"name": "Sita Devi", "relationship": "mother"}, f["co_signer"])
	assert.Equal(t, "Gold ornaments", f["collateral_details"])
	assert.Equal(t, "Single disbursement", f["disbursement_terms"])
	assert.Equal(t, 1.0, f["extraction_confidence"])
	assert.Equal(t, map[string]any{"bank_name": UnknownBank, "branch_name": "MG Road", "bank_code": "SBIN0001234"}, f["bank_info"])
}

func TestMapFields_Moratorium(t *testing.T) {
	for in, want := range map[any]int{"N/A": 0, "nil": 0, 0: 0, "6 months": 6, "1 year": 12} {
		got, err := fixedMapper().MapFields(entity.RawFields{
			"principal": 1000, "interest_rate": 9, "tenure": 12, "moratorium": in,
		}, "doc", "")
		require.NoError(t, err)
		assert.Equal(t, want, got.Fields["moratorium_period_months"], in)
	}
}

func TestMapFields_ScheduleAndConfidenceWarnings(t *testing.T) {
	raw := entity.RawFields{
		"principal": 1000, "interest_rate": 9, "tenure": 2,
		"confidence": "high",
		"payment_schedule": []any{
			map[string]any{"payment_number": 1, "payment_date": "05/01/2024", "total_amount": 510, "balance": 500},
			map[string]any{"payment_number": 2, "payment_date": "someday", "total_amount": 510},
		},
	}
	got, err := fixedMapper().MapFields(raw, "doc", "")
	require.NoError(t, err)

	schedule := got.Fields["payment_schedule"].([]map[string]any)
	require.Len(t, schedule, 1)
	assert.Equal(t, "2024-01-05", schedule[0]["payment_date"])
	assert.Equal(t, 500.0, schedule[0]["outstanding_balance"])
	assert.Equal(t, 0.0, got.Fields["extraction_confidence"])

	var dateWarned, confWarned bool
	for _, w := range got.Warnings() {
		if regexp.MustCompile(`^Could not parse date`).MatchString(w) {
			dateWarned = true
		}
		if regexp.MustCompile(`^Invalid confidence value`).MatchString(w) {
			confWarned = true
		}
	}
	assert.True(t, dateWarned)
	assert.True(t, confWarned)
}

func TestMapFields_UnparseableAmount(t *testing.T) {
	got, err := fixedMapper().MapFields(entity.RawFields{
		"principal": "to be confirmed", "interest_rate": 9, "tenure": 12,
	}, "doc", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Fields["principal_amount"])
	assert.NotEmpty(t, got.Warnings())
}

func TestMapperWarningsAreScopedPerCall(t *testing.T) {
	m := fixedMapper()
	first, err := m.MapFields(entity.RawFields{"principal": 1000, "interest_rate": 9, "tenure": 12}, "a", "")
	require.NoError(t, err)
	second, err := m.MapFields(entity.RawFields{
		"principal": 1000, "interest_rate": 9, "tenure": 12, "loan_type": "home", "bank": "SBI",
	}, "b", "")
	require.NoError(t, err)
	assert.Len(t, first.Warnings(), 2)
	assert.Empty(t, second.Warnings())
}
