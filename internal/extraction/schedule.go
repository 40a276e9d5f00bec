package extraction

import (
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const scheduleConfidence = 0.9

type scheduleColumns struct {
	paymentNumber, date, total, principal, interest, outstanding int
}

// detectScheduleColumns maps headers onto schedule roles. A table needs at
// least a date or a total column to count as a schedule.
func detectScheduleColumns(headers []string) (scheduleColumns, bool) {
	cols := scheduleColumns{-1, -1, -1, -1, -1, -1}
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case cols.paymentNumber < 0 && !strings.Contains(lower, "amount") &&
			containsAny(lower, []string{"installment", "payment no", "emi no", "no.", "sr.", "serial", "month"}):
			cols.paymentNumber = i
		case cols.date < 0 && strings.Contains(lower, "date"):
			cols.date = i
		case cols.total < 0 && !strings.Contains(lower, "principal") && !strings.Contains(lower, "interest") &&
			containsAny(lower, []string{"total", "emi amount", "payment amount", "installment amount", "emi"}):
			cols.total = i
		case cols.principal < 0 && strings.Contains(lower, "principal"):
			cols.principal = i
		case cols.interest < 0 && strings.Contains(lower, "interest"):
			cols.interest = i
		case cols.outstanding < 0 && containsAny(lower, []string{"outstanding", "balance", "remaining"}):
			cols.outstanding = i
		}
	}
	return cols, cols.date >= 0 || cols.total >= 0
}

// ScheduleExtractor parses repayment schedule tables.
type ScheduleExtractor struct{}

// ExtractPaymentSchedule merges all schedule tables and sorts by payment number.
func (ScheduleExtractor) ExtractPaymentSchedule(tables []entity.Table) []entity.ScheduleEntry {
	var entries []entity.ScheduleEntry
	for _, t := range tables {
		entries = append(entries, scheduleFromTable(t)...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PaymentNumber < entries[j].PaymentNumber
	})
	return entries
}

func scheduleFromTable(t entity.Table) []entity.ScheduleEntry {
	cols, ok := detectScheduleColumns(t.Headers)
	if !ok {
		return nil
	}
	var out []entity.ScheduleEntry
	for idx, row := range t.Rows {
		if len(row) < len(t.Headers) {
			continue
		}
		e := entity.ScheduleEntry{PaymentNumber: idx + 1, Confidence: scheduleConfidence}
		if cols.paymentNumber >= 0 {
			digits := reNonDigit.ReplaceAllString(row[cols.paymentNumber], "")
			if n, err := strconv.Atoi(digits); err == nil {
				e.PaymentNumber = n
			}
		}
		if cols.date >= 0 {
			raw := strings.TrimSpace(row[cols.date])
			if d, ok := parseDate(raw); ok {
				e.PaymentDate = d
			} else {
				e.PaymentDate = raw
			}
		}
		e.TotalAmount = cellAmount(row, cols.total)
		e.PrincipalComponent = cellAmount(row, cols.principal)
		e.InterestComponent = cellAmount(row, cols.interest)
		e.OutstandingBalance = cellAmount(row, cols.outstanding)
		if e.TotalAmount == nil && e.PrincipalComponent == nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func cellAmount(row []string, col int) *float64 {
	if col < 0 || col >= len(row) {
		return nil
	}
	v, ok := parseAmount(row[col])
	if !ok {
		return nil
	}
	return &v
}

// ScheduleSummary aggregates a parsed schedule.
type ScheduleSummary struct {
	TotalPayments      int     `json:"total_payments"`
	TotalAmountPayable float64 `json:"total_amount_payable"`
	TotalPrincipal     float64 `json:"total_principal"`
	TotalInterest      float64 `json:"total_interest"`
	AverageEMI         float64 `json:"average_emi"`
}

func SummarizeSchedule(entries []entity.ScheduleEntry) ScheduleSummary {
	s := ScheduleSummary{TotalPayments: len(entries)}
	if len(entries) == 0 {
		return s
	}
	var withTotal int
	for _, e := range entries {
		if e.TotalAmount != nil {
			s.TotalAmountPayable += *e.TotalAmount
			withTotal++
		}
		if e.PrincipalComponent != nil {
			s.TotalPrincipal += *e.PrincipalComponent
		}
		if e.InterestComponent != nil {
			s.TotalInterest += *e.InterestComponent
		}
	}
	s.TotalAmountPayable = common.RoundMoney(s.TotalAmountPayable)
	s.TotalPrincipal = common.RoundMoney(s.TotalPrincipal)
	s.TotalInterest = common.RoundMoney(s.TotalInterest)
	if withTotal > 0 {
		s.AverageEMI = common.RoundMoney(s.TotalAmountPayable / float64(withTotal))
	}
	return s
}
