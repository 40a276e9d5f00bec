package normalization

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

type Options struct {
	StrictMode      bool
	DefaultCurrency string
}

// Service maps raw fields to canonical records and validates them.
type Service struct {
	logger    *slog.Logger
	mapper    *FieldMapper
	validator *SchemaValidator
}

func NewService(logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		mapper:    NewFieldMapper(opts.DefaultCurrency),
		validator: NewSchemaValidator(opts.StrictMode),
	}
}

// Normalize maps then validates one raw record. Mapping warnings are
// appended after the validator's own warnings. A missing required field
// returns both an invalid result and the *common.LoanError. An empty
// loanID gets a generated one.
func (s *Service) Normalize(raw entity.RawFields, documentID, loanID string) (*entity.ValidationResult, error) {
	v := common.NewValidator().
		Field("document_id", documentID, common.Required, common.MaxLength(256), common.NoWhitespace)
	if loanID != "" {
		v.Field("loan_id", loanID, common.MaxLength(64), common.NoWhitespace)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	mapped, err := s.mapper.MapFields(raw, documentID, loanID)
	if err != nil {
		var le *common.LoanError
		if errors.As(err, &le) {
			s.logger.Warn("normalize.map.failed", "document_id", documentID, "field", le.Field, "kind", le.Kind)
			return &entity.ValidationResult{
				IsValid:  false,
				Errors:   []entity.FieldError{{Field: le.Field, ErrorType: string(le.Kind), Message: le.Message}},
				Warnings: []string{},
			}, err
		}
		return nil, fmt.Errorf("map fields: %w", err)
	}

	res := s.validator.ValidateLoanData(mapped.Fields)
	res.Warnings = append(res.Warnings, mapped.Warnings()...)

	if res.IsValid {
		s.logger.Info("normalize.ok",
			"document_id", documentID,
			"loan_id", res.ValidatedData.LoanID,
			"warnings", len(res.Warnings),
		)
	} else {
		s.logger.Warn("normalize.invalid",
			"document_id", documentID,
			"errors", len(res.Errors),
			"warnings", len(res.Warnings),
		)
	}
	return res, nil
}

// NormalizeBatch normalizes each record in order. Per-record failures are
// reported in that record's result; only mismatched inputs fail the batch.
func (s *Service) NormalizeBatch(raws []entity.RawFields, documentIDs []string) ([]*entity.ValidationResult, error) {
	if len(raws) != len(documentIDs) {
		return nil, common.NewAppError("BATCH_MISMATCH",
			fmt.Sprintf("got %d records but %d document ids", len(raws), len(documentIDs)),
			common.ErrInvalidInput)
	}
	results := make([]*entity.ValidationResult, len(raws))
	for i, raw := range raws {
		res, err := s.Normalize(raw, documentIDs[i], "")
		if res == nil {
			res = &entity.ValidationResult{
				Errors:   []entity.FieldError{{Field: "general", ErrorType: string(common.KindSchemaViolation), Message: err.Error()}},
				Warnings: []string{},
			}
		}
		results[i] = res
	}
	return results, nil
}

// ValidateOnly runs structural and business validation on an already
// mapped record.
func (s *Service) ValidateOnly(mapped map[string]any) *entity.ValidationResult {
	return s.validator.ValidateLoanData(mapped)
}

// Summary counts outcomes over a batch of results.
type Summary struct {
	Total       int     `json:"total"`
	Valid       int     `json:"valid"`
	Invalid     int     `json:"invalid"`
	Warnings    int     `json:"warnings"`
	SuccessRate float64 `json:"success_rate"`
}

func Summarize(results []*entity.ValidationResult) Summary {
	sum := Summary{Total: len(results)}
	for _, r := range results {
		if r == nil {
			sum.Invalid++
			continue
		}
		if r.IsValid {
			sum.Valid++
		} else {
			sum.Invalid++
		}
		sum.Warnings += len(r.Warnings)
	}
	if sum.Total > 0 {
		sum.SuccessRate = common.Round(float64(sum.Valid)/float64(sum.Total), 3)
	}
	return sum
}
