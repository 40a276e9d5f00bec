package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
	"github.com/joseph-ayodele/loan-compare/internal/normalization"
)

func TestFailure(t *testing.T) {
	assert.NoError(t, failure(&entity.ValidationResult{IsValid: true}, nil))

	err := failure(&entity.ValidationResult{Errors: []entity.FieldError{
		{Field: "tenure_months", ErrorType: "out_of_range", Message: "must be at least 1"},
		{Field: "currency", ErrorType: "schema_violation", Message: "bad pattern"},
	}}, nil)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindOutOfRange))
	assert.Equal(t, codes.OutOfRange, status.Code(err))

	assert.Equal(t, codes.FailedPrecondition, status.Code(failure(nil, nil)))
	assert.Equal(t, codes.FailedPrecondition, status.Code(failure(&entity.ValidationResult{}, nil)))
}

func TestFailure_FromNormalize(t *testing.T) {
	svc := normalization.NewService(nil, normalization.Options{DefaultCurrency: "INR"})

	vr, err := svc.Normalize(entity.RawFields{"interest_rate": 9, "tenure": 12}, "doc", "")
	fail := failure(vr, err)
	require.Error(t, fail)
	assert.Equal(t, codes.InvalidArgument, status.Code(fail))
	assert.True(t, common.IsKind(fail, common.KindMissingRequiredField))

	vr, err = svc.Normalize(entity.RawFields{
		"principal_amount": 100000, "interest_rate": 9, "tenure": 12, "bank_name": "HDFC Bank", "loan_type": "home",
	}, "doc", "")
	assert.NoError(t, failure(vr, err))
}
