package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
	"github.com/joseph-ayodele/loan-compare/internal/extraction"
	"github.com/joseph-ayodele/loan-compare/internal/normalization"
)

// knownBankConfidence is the identifier score above which its canonical
// bank name replaces the extracted one.
const knownBankConfidence = 0.5

// Processor coordinates extraction then normalization for one document.
type Processor struct {
	Logger        *slog.Logger
	Extraction    *extraction.Service
	Normalization *normalization.Service
	Classifier    *normalization.LoanTypeClassifier
	Banks         *normalization.BankIdentifier
}

func NewProcessor(logger *slog.Logger, ext *extraction.Service, norm *normalization.Service) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:        logger,
		Extraction:    ext,
		Normalization: norm,
		Classifier:    normalization.NewLoanTypeClassifier(),
		Banks:         normalization.NewBankIdentifier(),
	}
}

// ProcessDocument normalizes the text, extracts fields, flattens them,
// fills loan type and bank details the extractors cannot see, then maps and
// validates the record. A document that fails validation is returned as a
// FAILED outcome with a nil error; only a missing required field or a
// cancelled context produce an error.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) (*entity.DocumentOutcome, error) {
	start := time.Now()
	out := &entity.DocumentOutcome{
		DocumentID: doc.ID,
		SourcePath: doc.SourcePath,
		Status:     constants.DocumentStatusQueued,
	}
	fail := func(err error) (*entity.DocumentOutcome, error) {
		out.Status = constants.DocumentStatusFailed
		out.Error = err.Error()
		out.ElapsedMS = time.Since(start).Milliseconds()
		return out, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// 1) extraction
	text := extraction.NormalizeText(doc.Text)
	res := p.Extraction.Extract(text, doc.Tables)
	out.Extraction = res
	out.Status = constants.DocumentStatusExtracted
	p.Logger.Info("processor.extract.ok",
		"document_id", doc.ID,
		"confidence", res.Confidence.OverallConfidence,
		"level", res.Confidence.ConfidenceLevel,
		"requires_review", res.Confidence.RequiresReview,
	)

	raw := extraction.ToRawFields(res)
	p.enrich(raw, text, doc.LoanTypeHint)

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// 2) normalization
	vr, err := p.Normalization.Normalize(raw, doc.ID, "")
	out.Validation = vr
	if err != nil {
		p.Logger.Error("processor.normalize.failed", "document_id", doc.ID, "err", err)
		return fail(fmt.Errorf("normalize %s: %w", doc.ID, err))
	}
	out.ElapsedMS = time.Since(start).Milliseconds()
	if !vr.IsValid {
		out.Status = constants.DocumentStatusFailed
		out.Error = validationSummary(vr)
		p.Logger.Warn("processor.normalize.invalid", "document_id", doc.ID, "errors", len(vr.Errors))
		return out, nil
	}

	out.Status = constants.DocumentStatusNormalized
	p.Logger.Info("processor.normalize.ok",
		"document_id", doc.ID,
		"loan_id", vr.ValidatedData.LoanID,
		"warnings", len(vr.Warnings),
		"elapsed_ms", out.ElapsedMS,
	)
	return out, nil
}

// enrich sets loan_type from the hint or the classifier, and bank details
// from the bank identifier.
func (p *Processor) enrich(raw entity.RawFields, text, hint string) {
	switch {
	case strings.TrimSpace(hint) != "":
		raw["loan_type"] = hint
	case p.Classifier != nil:
		if c := p.Classifier.Classify(text); c.LoanType != constants.LoanTypeOther {
			raw["loan_type"] = string(c.LoanType)
		}
	}

	if p.Banks == nil {
		return
	}
	id := p.Banks.Identify(text)
	_, hasBank := raw["bank_name"]
	if id.Confidence > 0 && (!hasBank || id.Confidence > knownBankConfidence) {
		raw["bank_name"] = id.BankName
	}
	if _, ok := raw["branch_name"]; !ok && id.BranchName != "" {
		raw["branch_name"] = id.BranchName
	}
	if code := id.BankCode(); code != "" {
		raw["bank_code"] = code
	}
}

func validationSummary(vr *entity.ValidationResult) string {
	msgs := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// ValidRecords returns the validated loan records of normalized outcomes,
// in outcome order.
func ValidRecords(outcomes []entity.DocumentOutcome) []entity.LoanRecord {
	var loans []entity.LoanRecord
	for _, o := range outcomes {
		if o.Status == constants.DocumentStatusNormalized && o.Validation != nil && o.Validation.ValidatedData != nil {
			loans = append(loans, *o.Validation.ValidatedData)
		}
	}
	return loans
}
