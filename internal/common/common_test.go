package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoanError(t *testing.T) {
	err := MissingFieldError("principal_amount")
	assert.Equal(t, "missing_required_field (field principal_amount): principal_amount is required but not found", err.Error())

	wrapped := fmt.Errorf("normalize doc-1: %w", err)
	assert.True(t, IsKind(wrapped, KindMissingRequiredField))
	assert.False(t, IsKind(wrapped, KindOutOfRange))
	assert.False(t, IsKind(errors.New("plain"), KindMissingRequiredField))

	tests := []struct {
		err  *LoanError
		code codes.Code
	}{
		{MissingFieldError("tenure_months"), codes.InvalidArgument},
		{SchemaViolationError("interest_rate", "must be a number", nil), codes.FailedPrecondition},
		{OutOfRangeError("tenure_months", 0, "must be greater than zero"), codes.OutOfRange},
	}
	for _, tt := range tests {
		st, ok := status.FromError(tt.err)
		require.True(t, ok)
		assert.Equal(t, tt.code, st.Code())
	}

	oor := OutOfRangeError("interest_rate", 120.0, "must be between 0 and 100")
	assert.Equal(t, "120 must be between 0 and 100", oor.Message)

	cause := errors.New("boom")
	sv := SchemaViolationError("x", "bad", cause)
	assert.ErrorIs(t, sv, cause)
}

func TestAppError(t *testing.T) {
	err := NewAppError("NO_LOANS", "at least one loan is required", ErrInvalidInput)
	assert.Equal(t, "NO_LOANS: at least one loan is required: invalid input", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestKindError(t *testing.T) {
	tests := []struct {
		errorType string
		kind      ErrorKind
		code      codes.Code
	}{
		{"missing_required_field", KindMissingRequiredField, codes.InvalidArgument},
		{"out_of_range", KindOutOfRange, codes.OutOfRange},
		{"schema_violation", KindSchemaViolation, codes.FailedPrecondition},
		{"strict_mode_warning", KindSchemaViolation, codes.FailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.errorType, func(t *testing.T) {
			err := KindError(tt.errorType, "interest_rate", "bad value")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, "interest_rate", err.Field)
			assert.Equal(t, tt.code, status.Code(fmt.Errorf("wrapped: %w", err)))
		})
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("document_id", "doc 1", Required, NoWhitespace, MaxLength(3)).
		Field("principal_amount", 0.0, Positive).
		Field("interest_rate", 12.5, InRange(0, 100)).
		Field("currency", "inr", CurrencyCode)
	require.True(t, v.HasErrors())

	fields := make([]string, 0, len(v.Errors()))
	for _, e := range v.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"document_id", "document_id", "principal_amount", "currency"}, fields)
	assert.ErrorIs(t, v.Error(), ErrValidation)

	st, ok := status.FromError(ValidateAndReturnError(v))
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	ok2 := NewValidator().
		Field("document_id", "doc-1", Required, NoWhitespace, MaxLength(256)).
		Field("tenure_months", 12, Positive).
		Field("currency", "USD", CurrencyCode)
	assert.False(t, ok2.HasErrors())
	assert.NoError(t, ok2.Error())
	assert.NoError(t, ValidateAndReturnError(ok2))
	assert.Empty(t, ok2.ErrorMessage())

	assert.NotNil(t, Required("x", nil))
	assert.NotNil(t, Required("x", "  "))
	var nilStr *string
	assert.NotNil(t, Required("x", nilStr))
	assert.NotNil(t, Positive("x", "ten"))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 8791.59, RoundMoney(8791.58765))
	assert.Equal(t, 2.5, Round(2.45, 1))
	assert.Equal(t, -1.24, RoundMoney(-1.235))
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.42, Clamp01(0.42))
}

func TestContextHelpers(t *testing.T) {
	ctx := WithDocumentID(WithRunID(context.Background(), "run-7"), "doc-3")
	assert.Equal(t, "run-7", RunIDFromContext(ctx))
	assert.Equal(t, "doc-3", DocumentIDFromContext(ctx))
	assert.Empty(t, RunIDFromContext(context.Background()))
}

func TestConfig(t *testing.T) {
	t.Setenv("LOAN_LOW_CONFIDENCE_THRESHOLD", "0.8")
	t.Setenv("LOAN_STRICT_VALIDATION", "true")
	t.Setenv("LOAN_DEFAULT_CURRENCY", "usd")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("BATCH_PROCESS_TIMEOUT", "5s")
	t.Setenv("BATCH_QUEUE_SIZE", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 0.8, cfg.Extraction.LowConfidenceThreshold)
	assert.True(t, cfg.Normalization.StrictMode)
	assert.Equal(t, "USD", cfg.Normalization.DefaultCurrency)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, 64, cfg.Batch.QueueSize)
	assert.Equal(t, 5*time.Second, cfg.Batch.ProcessTimeout)
	assert.Equal(t, "./out", cfg.Export.Dir)
	assert.Equal(t, "Comparison", cfg.Export.SheetName)
	require.NoError(t, cfg.Validate())

	cfg.Extraction.LowConfidenceThreshold = 1.5
	cfg.Normalization.DefaultCurrency = "RUPEES"
	cfg.Batch.Workers = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := dir + "/loan.env"
	require.NoError(t, os.WriteFile(p, []byte("LOAN_DOTENV_PROBE=from-file\nEXPORT_SHEET_NAME=Ignored\n"), 0o644))
	t.Setenv("EXPORT_SHEET_NAME", "FromEnv")
	t.Cleanup(func() { _ = os.Unsetenv("LOAN_DOTENV_PROBE") })

	loaded, err := LoadDotEnv(dir+"/missing.env", p)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
	assert.Equal(t, "from-file", os.Getenv("LOAN_DOTENV_PROBE"))
	assert.Equal(t, "FromEnv", os.Getenv("EXPORT_SHEET_NAME"))

	loaded, err = LoadDotEnv(dir + "/missing.env")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
