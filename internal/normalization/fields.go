package normalization

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

// CanonicalField names a canonical loan attribute independent of how a
// source document labels it.
type CanonicalField string

const (
	FieldPrincipal         CanonicalField = "principal"
	FieldInterestRate      CanonicalField = "interest_rate"
	FieldTenure            CanonicalField = "tenure"
	FieldMoratorium        CanonicalField = "moratorium"
	FieldBankName          CanonicalField = "bank_name"
	FieldBranch            CanonicalField = "branch"
	FieldProcessingFee     CanonicalField = "processing_fee"
	FieldLatePenalty       CanonicalField = "late_penalty"
	FieldPrepaymentPenalty CanonicalField = "prepayment_penalty"
	FieldRepaymentMode     CanonicalField = "repayment_mode"
	FieldCoSignerName      CanonicalField = "co_signer_name"
	FieldCollateral        CanonicalField = "collateral"
	FieldDisbursement      CanonicalField = "disbursement"
	FieldLoanType          CanonicalField = "loan_type"
	FieldCurrency          CanonicalField = "currency"
	FieldConfidence        CanonicalField = "confidence"
)

// fieldSynonyms lists accepted source keys per field in lookup order.
var fieldSynonyms = map[CanonicalField][]string{
	FieldPrincipal:         {"principal", "loan_amount", "principal_amount", "amount", "loan_amt", "sanctioned_amount"},
	FieldInterestRate:      {"interest_rate", "rate", "interest", "roi", "rate_of_interest", "annual_rate", "apr"},
	FieldTenure:            {"tenure", "loan_tenure", "period", "loan_period", "duration", "term", "loan_term", "tenure_months"},
	FieldMoratorium:        {"moratorium", "grace_period", "moratorium_period", "grace", "holiday_period", "moratorium_period_months"},
	FieldBankName:          {"bank_name", "lender", "bank", "lender_name", "institution", "financial_institution"},
	FieldBranch:            {"branch", "branch_name", "branch_office", "office"},
	FieldProcessingFee:     {"processing_fee", "processing_charges", "processing", "upfront_fee"},
	FieldLatePenalty:       {"late_payment_penalty", "late_fee", "penalty", "late_charges", "overdue_charges"},
	FieldPrepaymentPenalty: {"prepayment_penalty", "foreclosure_charges", "prepayment_charges", "early_payment_fee"},
	FieldRepaymentMode:     {"repayment_mode", "payment_mode", "repayment_type", "payment_type"},
	FieldCoSignerName:      {"co_signer", "cosigner", "guarantor", "co_applicant", "joint_applicant", "co_signer_name"},
	FieldCollateral:        {"collateral", "security", "pledge", "mortgage", "collateral_details"},
	FieldDisbursement:      {"disbursement", "disbursement_terms", "payout", "release_terms"},
	FieldLoanType:          {"loan_type", "loan_category", "product_type"},
	FieldCurrency:          {"currency", "currency_code"},
	FieldConfidence:        {"confidence", "extraction_confidence"},
}

// Synonyms returns the accepted source keys for a field.
func Synonyms(f CanonicalField) []string {
	return append([]string(nil), fieldSynonyms[f]...)
}

// lookup finds the value of a canonical field in raw. Exact key matches win,
// then case- and spacing-insensitive matches, then keys whose terminology
// normalizes to the field name. Nil and blank values count as absent.
func lookup(raw entity.RawFields, f CanonicalField) (any, bool) {
	syns := fieldSynonyms[f]
	for _, key := range syns {
		if v, ok := raw[key]; ok && present(v) {
			return v, true
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, syn := range syns {
		for _, k := range keys {
			if foldKey(k) == syn && present(raw[k]) {
				return raw[k], true
			}
		}
	}
	for _, k := range keys {
		if NormalizeTerminology(k) == string(f) && present(raw[k]) {
			return raw[k], true
		}
	}
	return nil, false
}

func foldKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, "-", "_")
	return strings.Join(strings.Fields(k), "_")
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}
