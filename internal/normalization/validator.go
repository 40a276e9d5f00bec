package normalization

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const (
	ErrorTypeStrictModeWarning = "strict_mode_warning"
	generalField               = "general"
)

var reQuotedName = regexp.MustCompile(`'([^']+)'`)

// SchemaValidator checks mapped records structurally, then applies
// business-rule warnings. In strict mode every warning is fatal.
type SchemaValidator struct {
	strict bool
}

func NewSchemaValidator(strict bool) *SchemaValidator {
	return &SchemaValidator{strict: strict}
}

// ValidateLoanData validates a mapped field map and, when it passes,
// returns the typed record in ValidatedData.
func (v *SchemaValidator) ValidateLoanData(mapped map[string]any) *entity.ValidationResult {
	res := &entity.ValidationResult{Errors: []entity.FieldError{}, Warnings: []string{}}

	b, err := json.Marshal(mapped)
	if err != nil {
		res.Errors = append(res.Errors, entity.FieldError{
			Field: generalField, ErrorType: string(common.KindSchemaViolation), Message: fmt.Sprintf("encode record: %v", err),
		})
		return res
	}

	schema, err := loanRecordSchema()
	if err != nil {
		res.Errors = append(res.Errors, entity.FieldError{
			Field: generalField, ErrorType: string(common.KindSchemaViolation), Message: err.Error(),
		})
		return res
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		res.Errors = append(res.Errors, entity.FieldError{
			Field: generalField, ErrorType: string(common.KindSchemaViolation), Message: fmt.Sprintf("decode record: %v", err),
		})
		return res
	}
	if err := schema.Validate(doc); err != nil {
		res.Errors = append(res.Errors, schemaErrors(err)...)
		return res
	}

	var rec entity.LoanRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		res.Errors = append(res.Errors, entity.FieldError{
			Field: generalField, ErrorType: string(common.KindSchemaViolation), Message: fmt.Sprintf("decode record: %v", err),
		})
		return res
	}
	if rec.Fees == nil {
		rec.Fees = []entity.Fee{}
	}

	res.Warnings = append(res.Warnings, BusinessWarnings(&rec)...)
	if v.strict && len(res.Warnings) > 0 {
		for _, w := range res.Warnings {
			res.Errors = append(res.Errors, entity.FieldError{Field: generalField, ErrorType: ErrorTypeStrictModeWarning, Message: w})
		}
		return res
	}

	res.IsValid = true
	res.ValidatedData = &rec
	return res
}

// schemaErrors flattens a jsonschema error tree into one FieldError per leaf.
func schemaErrors(err error) []entity.FieldError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []entity.FieldError{{Field: generalField, ErrorType: string(common.KindSchemaViolation), Message: err.Error()}}
	}
	var out []entity.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		out = append(out, leafError(e)...)
	}
	walk(ve)
	return out
}

func leafError(e *jsonschema.ValidationError) []entity.FieldError {
	keyword := e.KeywordLocation[strings.LastIndex(e.KeywordLocation, "/")+1:]
	field := strings.ReplaceAll(strings.TrimPrefix(e.InstanceLocation, "/"), "/", ".")

	if keyword == "required" {
		var out []entity.FieldError
		for _, m := range reQuotedName.FindAllStringSubmatch(e.Message, -1) {
			name := m[1]
			if field != "" {
				name = field + "." + name
			}
			out = append(out, entity.FieldError{
				Field:     name,
				ErrorType: string(common.KindMissingRequiredField),
				Message:   fmt.Sprintf("%s is required", name),
			})
		}
		if len(out) > 0 {
			return out
		}
	}

	if field == "" {
		field = generalField
	}
	errType := common.KindSchemaViolation
	switch keyword {
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum":
		errType = common.KindOutOfRange
	case "required":
		errType = common.KindMissingRequiredField
	}
	return []entity.FieldError{{Field: field, ErrorType: string(errType), Message: e.Message}}
}

// BusinessWarnings lists non-fatal plausibility findings for a record.
func BusinessWarnings(rec *entity.LoanRecord) []string {
	var w []string
	if rec.PrincipalAmount > 1e8 {
		w = append(w, fmt.Sprintf("Principal amount %s is unusually high", num(rec.PrincipalAmount)))
	} else if rec.PrincipalAmount < 1000 {
		w = append(w, fmt.Sprintf("Principal amount %s is unusually low", num(rec.PrincipalAmount)))
	}

	if rec.InterestRate > 50 {
		w = append(w, fmt.Sprintf("Interest rate %s%% is unusually high", num(rec.InterestRate)))
	} else if rec.InterestRate < 0.1 {
		w = append(w, fmt.Sprintf("Interest rate %s%% is unusually low", num(rec.InterestRate)))
	}

	if rec.TenureMonths > 360 {
		w = append(w, fmt.Sprintf("Tenure %d months is unusually long", rec.TenureMonths))
	} else if rec.TenureMonths < 1 {
		w = append(w, fmt.Sprintf("Tenure %d months is too short", rec.TenureMonths))
	}

	if m := rec.MoratoriumPeriodMonths; m != nil && *m > 0 {
		if *m > rec.TenureMonths {
			w = append(w, "Moratorium period exceeds loan tenure")
		}
		if *m > 60 {
			w = append(w, fmt.Sprintf("Moratorium period %d months is unusually long", *m))
		}
	}

	fees := rec.TotalFees()
	if rec.ProcessingFee != nil {
		fees += *rec.ProcessingFee
	}
	if rec.PrincipalAmount > 0 && fees > rec.PrincipalAmount*0.1 {
		w = append(w, fmt.Sprintf("Total fees %s exceed 10%% of principal amount", num(fees)))
	}

	if rec.ExtractionConfidence < 0.7 {
		w = append(w, fmt.Sprintf("Low extraction confidence: %.2f", rec.ExtractionConfidence))
	}

	return append(w, scheduleWarnings(rec)...)
}

func scheduleWarnings(rec *entity.LoanRecord) []string {
	s := rec.PaymentSchedule
	if len(s) == 0 {
		return nil
	}
	var w []string
	for i, e := range s {
		if e.PaymentNumber != i+1 {
			w = append(w, "Payment schedule has non-sequential payment numbers")
			break
		}
	}
	if len(s) != rec.TenureMonths {
		w = append(w, fmt.Sprintf("Payment schedule has %d entries but tenure is %d months", len(s), rec.TenureMonths))
	}
	for i := 1; i < len(s); i++ {
		if s[i].PaymentDate < s[i-1].PaymentDate {
			w = append(w, "Payment schedule dates are not in chronological order")
			break
		}
	}
	var prev *float64
	for _, e := range s {
		if e.OutstandingBalance == nil {
			continue
		}
		if prev != nil && *e.OutstandingBalance > *prev {
			w = append(w, "Outstanding balance increases in payment schedule")
			break
		}
		prev = e.OutstandingBalance
	}
	if last := s[len(s)-1].OutstandingBalance; last != nil && math.Abs(*last) > rec.PrincipalAmount*0.01 {
		w = append(w, fmt.Sprintf("Final outstanding balance %s is not close to zero", num(*last)))
	}
	return w
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
