package extraction

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

// ToRawFields flattens an extraction into the loosely keyed field map the
// normalizer consumes. Percentage fees are converted to amounts when the
// principal is known. The processing fee is kept out of the fee list so it
// is counted once.
func ToRawFields(res *entity.ExtractionResult) entity.RawFields {
	raw := entity.RawFields{}
	core := res.CoreFields
	var principal float64
	if f := core.PrincipalAmount; f != nil {
		principal = f.Value
		raw["principal_amount"] = f.Value
		raw["currency"] = f.Currency
	}
	if f := core.InterestRate; f != nil {
		raw["interest_rate"] = f.Value
	}
	if f := core.Tenure; f != nil {
		raw["tenure"] = fmt.Sprintf("%d months", int(f.Value))
	}
	if f := core.MoratoriumPeriod; f != nil {
		raw["moratorium_period"] = fmt.Sprintf("%d months", int(f.Value))
	}

	if l := res.Entities.Lender; l != nil {
		if l.BankName != "" {
			raw["bank_name"] = l.BankName
		}
		if l.BranchName != "" {
			raw["branch_name"] = l.BranchName
		}
	}
	if c := res.Entities.CoSigner; c != nil && c.Name != "" {
		raw["co_signer"] = c.Name
		if c.Relationship != "" {
			raw["co_signer_relationship"] = c.Relationship
		}
	}
	if c := res.Entities.Collateral; c != nil && c.Type != CollateralUnsecured {
		raw["collateral"] = c.Description
	}

	fees := []any{}
	for _, fee := range res.Fees {
		amount, conditions, ok := feeAmount(fee, principal)
		if !ok {
			continue
		}
		if isProcessingFee(fee) {
			if _, seen := raw["processing_fee"]; !seen {
				raw["processing_fee"] = amount
				continue
			}
		}
		item := map[string]any{
			"type":     titleCase(strings.ReplaceAll(fee.Type, "_", " ")),
			"amount":   amount,
			"currency": fee.Currency,
		}
		if conditions != "" {
			item["conditions"] = conditions
		}
		fees = append(fees, item)
	}
	if len(fees) > 0 {
		raw["fees"] = fees
	}

	for _, p := range res.Penalties {
		raw[p.Type] = penaltyText(p)
	}

	if t := res.AdditionalTerms.RepaymentMode; t != nil {
		raw["repayment_mode"] = t.Kind
	}
	if t := res.AdditionalTerms.Disbursement; t != nil {
		raw["disbursement_terms"] = t.Description
	}
	if len(res.PaymentSchedule) > 0 {
		raw["payment_schedule"] = scheduleRows(res.PaymentSchedule)
	}
	raw["confidence"] = res.Confidence.OverallConfidence
	return raw
}

func isProcessingFee(fee entity.ExtractedFee) bool {
	return fee.Type == FeeProcessing || strings.Contains(strings.ToLower(fee.Type), "processing")
}

func feeAmount(fee entity.ExtractedFee, principal float64) (amount float64, conditions string, ok bool) {
	if fee.ValueType != entity.ValueTypePercentage {
		return fee.Value, "", true
	}
	if principal <= 0 {
		return 0, "", false
	}
	return common.RoundMoney(principal * fee.Value / 100), fmt.Sprintf("%s%% of principal", formatValue(fee.Value)), true
}

func penaltyText(p entity.ExtractedFee) string {
	switch {
	case p.Value == 0:
		return "No penalty"
	case p.ValueType == entity.ValueTypePercentage:
		return formatValue(p.Value) + "%"
	default:
		cur := p.Currency
		if cur == "" {
			cur = "INR"
		}
		return cur + " " + formatValue(p.Value)
	}
}

func scheduleRows(entries []entity.ScheduleEntry) []any {
	rows := make([]any, 0, len(entries))
	for _, e := range entries {
		row := map[string]any{"payment_number": e.PaymentNumber}
		if e.PaymentDate != "" {
			row["payment_date"] = e.PaymentDate
		}
		total := e.TotalAmount
		if total == nil && e.PrincipalComponent != nil && e.InterestComponent != nil {
			sum := *e.PrincipalComponent + *e.InterestComponent
			total = &sum
		}
		if total != nil {
			row["total_amount"] = *total
		}
		if e.PrincipalComponent != nil {
			row["principal"] = *e.PrincipalComponent
		}
		if e.InterestComponent != nil {
			row["interest"] = *e.InterestComponent
		}
		if e.OutstandingBalance != nil {
			row["balance"] = *e.OutstandingBalance
		}
		rows = append(rows, row)
	}
	return rows
}
