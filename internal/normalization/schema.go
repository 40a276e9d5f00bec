package normalization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/loan-compare/constants"
)

// BuildLoanRecordJSONSchema returns the structural rules for a mapped loan
// record (draft 2020-12 subset) as a generic map.
func BuildLoanRecordJSONSchema() map[string]any {
	props := map[string]any{
		"loan_id":     map[string]any{"type": "string", "minLength": 1},
		"document_id": map[string]any{"type": "string", "minLength": 1},
		"loan_type": map[string]any{
			"type": "string",
			"enum": constants.LoanTypesAsStrings(),
		},
		"bank_info": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"bank_name":   map[string]any{"type": "string", "minLength": 1},
				"branch_name": map[string]any{"type": "string"},
				"bank_code":   map[string]any{"type": "string"},
			},
			"required": []string{"bank_name"},
		},
		"principal_amount":         map[string]any{"type": "number", "exclusiveMinimum": 0},
		"currency":                 map[string]any{"type": "string", "pattern": `^[A-Z]{3,}$`},
		"interest_rate":            map[string]any{"type": "number", "exclusiveMinimum": 0, "maximum": 100},
		"tenure_months":            map[string]any{"type": "integer", "minimum": 1},
		"moratorium_period_months": map[string]any{"type": "integer", "minimum": 0},
		"fees": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"fee_type":   map[string]any{"type": "string", "minLength": 1},
					"amount":     moneyProp(),
					"currency":   map[string]any{"type": "string", "pattern": `^[A-Z]{3,}$`},
					"conditions": map[string]any{"type": "string"},
				},
				"required": []string{"fee_type", "amount", "currency"},
			},
		},
		"processing_fee":       moneyProp(),
		"late_payment_penalty": map[string]any{"type": "string"},
		"prepayment_penalty":   map[string]any{"type": "string"},
		"repayment_mode":       map[string]any{"type": "string"},
		"payment_schedule": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"payment_number":      map[string]any{"type": "integer", "minimum": 1},
					"payment_date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
					"total_amount":        moneyProp(),
					"principal_component": moneyProp(),
					"interest_component":  moneyProp(),
					"outstanding_balance": moneyProp(),
				},
				"required": []string{"payment_number", "payment_date", "total_amount"},
			},
		},
		"co_signer": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":         map[string]any{"type": "string", "minLength": 1},
				"relationship": map[string]any{"type": "string"},
				"contact":      map[string]any{"type": "string"},
			},
			"required": []string{"name", "relationship"},
		},
		"collateral_details":    map[string]any{"type": "string"},
		"disbursement_terms":    map[string]any{"type": "string"},
		"extraction_confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"extraction_timestamp":  map[string]any{"type": "string", "format": "date-time"},
	}
	required := []string{
		"loan_id", "document_id", "loan_type", "principal_amount",
		"currency", "interest_rate", "tenure_months",
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func moneyProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

var loanRecordSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildLoanRecordJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("loan_record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("loan_record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})
