package normalization

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const (
	UnknownBank         = "Unknown Bank"
	UnknownRelationship = "Unknown"
)

var (
	reNumberToken = regexp.MustCompile(`-?[0-9][0-9,]*(?:\.[0-9]+)?|-?\.[0-9]+`)

	currencyAliases = map[string]string{
		"₹": "INR", "rs": "INR", "rs.": "INR", "inr": "INR", "rupee": "INR", "rupees": "INR",
		"$": "USD", "usd": "USD", "us$": "USD",
		"€": "EUR", "eur": "EUR",
		"£": "GBP", "gbp": "GBP",
	}

	// individually keyed fees; processing_fee has its own canonical field
	individualFees = []string{"administrative_fee", "documentation_fee", "legal_fee", "valuation_fee", "stamp_duty"}

	noneValues = map[string]bool{"none": true, "n/a": true, "na": true, "nil": true, "0": true, "": true}

	scheduleDateLayouts = []string{
		"2006-1-2", "2/1/2006", "2-1-2006", "2006/1/2",
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", time.RFC3339,
	}
)

var scheduleComponents = []struct {
	key     string
	aliases []string
}{
	{"principal_component", []string{"principal_component", "principal"}},
	{"interest_component", []string{"interest_component", "interest"}},
	{"outstanding_balance", []string{"outstanding_balance", "balance", "outstanding"}},
}

// NewLoanID returns "loan_" followed by 12 hex characters.
func NewLoanID() string {
	return "loan_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// MapCurrency resolves a currency symbol or code to ISO 4217. Other
// alphabetic codes of three or more letters are upper-cased and accepted.
func MapCurrency(v string) (string, bool) {
	s := strings.TrimSpace(v)
	if code, ok := currencyAliases[strings.ToLower(s)]; ok {
		return code, true
	}
	if len(s) >= 3 && isLetters(s) {
		return strings.ToUpper(s), true
	}
	return "", false
}

// FieldMapper turns loosely keyed raw fields into the canonical record shape.
// A FieldMapper is stateless; warnings are scoped to each MapFields call.
type FieldMapper struct {
	defaultCurrency string
	now             func() time.Time
}

func NewFieldMapper(defaultCurrency string) *FieldMapper {
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &FieldMapper{defaultCurrency: defaultCurrency, now: time.Now}
}

// MappedRecord is the canonical field map plus the warnings raised while
// building it.
type MappedRecord struct {
	Fields   map[string]any
	warnings []string
}

func (m *MappedRecord) Warnings() []string {
	return append([]string(nil), m.warnings...)
}

// mapping carries per-call state.
type mapping struct {
	raw      entity.RawFields
	out      map[string]any
	currency string
	warnings []string
}

func (m *mapping) warn(format string, args ...any) {
	m.warnings = append(m.warnings, fmt.Sprintf(format, args...))
}

// MapFields maps raw into canonical fields. Principal, interest rate and
// tenure are required; a missing one yields a missing_required_field error.
func (fm *FieldMapper) MapFields(raw entity.RawFields, documentID, loanID string) (*MappedRecord, error) {
	if loanID == "" {
		loanID = NewLoanID()
	}
	m := &mapping{
		raw: raw,
		out: map[string]any{
			"loan_id":     loanID,
			"document_id": documentID,
		},
	}

	m.out["loan_type"] = string(m.loanType())
	m.out["bank_info"] = m.bankInfo()

	m.currency = m.mapCurrency(fm.defaultCurrency)
	m.out["currency"] = m.currency

	principal, ok := lookup(raw, FieldPrincipal)
	if !ok {
		return nil, common.MissingFieldError("principal_amount")
	}
	m.out["principal_amount"] = m.amount("principal_amount", principal)

	rate, ok := lookup(raw, FieldInterestRate)
	if !ok {
		return nil, common.MissingFieldError("interest_rate")
	}
	m.out["interest_rate"] = m.amount("interest_rate", rate)

	tenure, ok := lookup(raw, FieldTenure)
	if !ok {
		return nil, common.MissingFieldError("tenure_months")
	}
	m.out["tenure_months"] = m.months("tenure_months", tenure)

	if v, ok := lookup(raw, FieldMoratorium); ok {
		m.out["moratorium_period_months"] = m.moratorium(v)
	}

	m.out["fees"] = m.fees()
	if v, ok := lookup(raw, FieldProcessingFee); ok && !isNoneValue(v) {
		m.out["processing_fee"] = m.amount("processing_fee", v)
	}
	if v, ok := lookup(raw, FieldLatePenalty); ok {
		m.out["late_payment_penalty"] = text(v)
	}
	if v, ok := lookup(raw, FieldPrepaymentPenalty); ok {
		m.out["prepayment_penalty"] = text(v)
	}
	if v, ok := lookup(raw, FieldRepaymentMode); ok {
		m.out["repayment_mode"] = repaymentMode(text(v))
	}
	if schedule := m.schedule(); len(schedule) > 0 {
		m.out["payment_schedule"] = schedule
	}
	if cs := m.coSigner(); cs != nil {
		m.out["co_signer"] = cs
	}
	if v, ok := lookup(raw, FieldCollateral); ok {
		m.out["collateral_details"] = text(v)
	}
	if v, ok := lookup(raw, FieldDisbursement); ok {
		m.out["disbursement_terms"] = text(v)
	}
	m.out["extraction_confidence"] = m.confidence()
	m.out["extraction_timestamp"] = fm.now().UTC()

	return &MappedRecord{Fields: m.out, warnings: m.warnings}, nil
}

func (m *mapping) loanType() constants.LoanType {
	v, ok := lookup(m.raw, FieldLoanType)
	if !ok {
		m.warn("Loan type not found, defaulting to 'other'")
		return constants.LoanTypeOther
	}
	lt, matched := constants.CanonicalizeLoanType(text(v))
	if !matched {
		m.warn("Unrecognized loan type %q, defaulting to 'other'", text(v))
	}
	return lt
}

func (m *mapping) bankInfo() map[string]any {
	info := map[string]any{}
	if v, ok := lookup(m.raw, FieldBankName); ok {
		info["bank_name"] = text(v)
	} else {
		m.warn("Bank name not found, using '%s'", UnknownBank)
		info["bank_name"] = UnknownBank
	}
	if v, ok := lookup(m.raw, FieldBranch); ok {
		info["branch_name"] = text(v)
	}
	for _, key := range []string{"bank_code", "ifsc", "ifsc_code", "swift_code"} {
		if v, ok := m.raw[key]; ok && present(v) {
			info["bank_code"] = text(v)
			break
		}
	}
	return info
}

func (m *mapping) mapCurrency(fallback string) string {
	v, ok := lookup(m.raw, FieldCurrency)
	if !ok {
		return fallback
	}
	code, ok := MapCurrency(text(v))
	if !ok {
		m.warn("Unknown currency %q, defaulting to %s", text(v), fallback)
		return fallback
	}
	return code
}

// amount reads a number from a number or a string such as "Rs. 5,00,000"
// or "8.5% p.a.". Unparseable input maps to 0 with a warning.
func (m *mapping) amount(field string, v any) float64 {
	in := v
	if s, ok := v.(string); ok {
		in = stripCurrency(s)
	}
	if f, ok := number(in); ok {
		return f
	}
	m.warn("Could not parse %s value %q, defaulting to 0", field, text(v))
	return 0
}

// months reads a duration in months; strings mentioning years are scaled by 12.
func (m *mapping) months(field string, v any) int {
	if s, ok := v.(string); ok {
		f, ok := number(s)
		if !ok {
			m.warn("Could not parse %s value %q, defaulting to 0", field, s)
			return 0
		}
		if strings.Contains(strings.ToLower(s), "year") {
			f *= 12
		}
		return int(math.Round(f))
	}
	f, ok := number(v)
	if !ok {
		m.warn("Could not parse %s value %v, defaulting to 0", field, v)
		return 0
	}
	return int(math.Round(f))
}

func (m *mapping) moratorium(v any) int {
	if isNoneValue(v) {
		return 0
	}
	return m.months("moratorium_period_months", v)
}

func (m *mapping) fees() []map[string]any {
	out := []map[string]any{}
	if list, ok := m.raw["fees"]; ok {
		for i, item := range asMapSlice(list) {
			feeType := firstText(item, "type", "fee_type", "name")
			if feeType == "" {
				m.warn("Fee entry %d has no type, skipping", i)
				continue
			}
			amt, ok := firstPresent(item, "amount", "value")
			if !ok {
				m.warn("Fee %q has no amount, skipping", feeType)
				continue
			}
			fee := map[string]any{
				"fee_type": feeType,
				"amount":   m.amount("fee "+feeType, amt),
				"currency": m.itemCurrency(item),
			}
			if c := firstText(item, "conditions", "notes"); c != "" {
				fee["conditions"] = c
			}
			out = append(out, fee)
		}
	}
	for _, key := range individualFees {
		v, ok := m.raw[key]
		if !ok || isNoneValue(v) {
			continue
		}
		out = append(out, map[string]any{
			"fee_type": cases.Title(language.English).String(strings.ReplaceAll(key, "_", " ")),
			"amount":   m.amount(key, v),
			"currency": m.currency,
		})
	}
	return out
}

func (m *mapping) itemCurrency(item map[string]any) string {
	c := firstText(item, "currency")
	if c == "" {
		return m.currency
	}
	if code, ok := MapCurrency(c); ok {
		return code
	}
	m.warn("Unknown currency %q, defaulting to %s", c, m.currency)
	return m.currency
}

func (m *mapping) schedule() []map[string]any {
	list, ok := m.raw["payment_schedule"]
	if !ok {
		return nil
	}
	var out []map[string]any
	for i, item := range asMapSlice(list) {
		n := i + 1
		if v, ok := firstPresent(item, "payment_number", "installment", "emi_no"); ok {
			if f, ok := numberValue(v); ok && f >= 1 {
				n = int(f)
			}
		}
		rawDate := firstText(item, "payment_date", "date", "due_date")
		date, ok := parseScheduleDate(rawDate)
		if !ok {
			m.warn("Could not parse date %q for payment %d, dropping entry", rawDate, n)
			continue
		}
		entry := map[string]any{
			"payment_number": n,
			"payment_date":   date,
		}
		if v, ok := firstPresent(item, "total_amount", "emi", "amount"); ok {
			entry["total_amount"] = m.amount("total_amount", v)
		} else {
			entry["total_amount"] = 0.0
		}
		for _, c := range scheduleComponents {
			if v, ok := firstPresent(item, c.aliases...); ok {
				entry[c.key] = m.amount(c.key, v)
			}
		}
		out = append(out, entry)
	}
	return out
}

func (m *mapping) coSigner() map[string]any {
	v, ok := lookup(m.raw, FieldCoSignerName)
	if !ok {
		return nil
	}
	cs := map[string]any{"relationship": UnknownRelationship}
	if nested, isMap := v.(map[string]any); isMap {
		cs["name"] = firstText(nested, "name")
		if r := firstText(nested, "relationship", "relation"); r != "" {
			cs["relationship"] = r
		}
		if c := firstText(nested, "contact", "phone"); c != "" {
			cs["contact"] = c
		}
		return cs
	}
	cs["name"] = text(v)
	if r := firstText(m.raw, "co_signer_relationship", "cosigner_relationship", "relationship"); r != "" {
		cs["relationship"] = r
	}
	if c := firstText(m.raw, "co_signer_contact", "cosigner_contact"); c != "" {
		cs["contact"] = c
	}
	return cs
}

func (m *mapping) confidence() float64 {
	v, ok := lookup(m.raw, FieldConfidence)
	if !ok {
		return 0
	}
	f, ok := numberValue(v)
	if !ok {
		m.warn("Invalid confidence value %q, defaulting to 0", text(v))
		return 0
	}
	return common.Clamp01(f)
}

func repaymentMode(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(lower, "emi") || strings.Contains(lower, "equated"):
		return "emi"
	case strings.Contains(lower, "bullet") || strings.Contains(lower, "lump"):
		return "bullet"
	case strings.Contains(lower, "step"):
		return "step-up"
	default:
		return lower
	}
}

// currencyMarks lists the currency alias keys, longest first, so "rs." is
// removed before "rs".
var currencyMarks = func() []string {
	marks := make([]string, 0, len(currencyAliases))
	for k := range currencyAliases {
		marks = append(marks, k)
	}
	sort.Slice(marks, func(i, j int) bool {
		if len(marks[i]) != len(marks[j]) {
			return len(marks[i]) > len(marks[j])
		}
		return marks[i] < marks[j]
	})
	return marks
}()

// stripCurrency removes currency symbols and codes so "Rs.5,00,000" reads
// as 500000 rather than as ".5".
func stripCurrency(s string) string {
	s = strings.ToLower(s)
	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, " ")
	}
	return s
}

// number parses numeric values and the first number token inside strings.
func number(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		tok := reNumberToken.FindString(s)
		if tok == "" {
			return 0, false
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(tok, ",", ""))
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	}
	return numberValue(v)
}

// numberValue accepts only real numbers or strings that are entirely numeric.
func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func isNoneValue(v any) bool {
	if f, ok := numberValue(v); ok {
		return f == 0
	}
	return noneValues[strings.ToLower(text(v))]
}

func firstPresent(item map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := item[k]; ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

func firstText(item map[string]any, keys ...string) string {
	if v, ok := firstPresent(item, keys...); ok {
		return text(v)
	}
	return ""
}

func asMapSlice(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func parseScheduleDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range scheduleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
