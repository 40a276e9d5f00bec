package entity

import "github.com/joseph-ayodele/loan-compare/constants"

// Document is one OCR'd loan document handed to the pipeline.
type Document struct {
	ID           string  `json:"document_id"`
	SourcePath   string  `json:"source_path,omitempty"`
	Format       string  `json:"format,omitempty"`
	Text         string  `json:"text"`
	Tables       []Table `json:"tables,omitempty"`
	LoanTypeHint string  `json:"loan_type,omitempty"`
}

// DocumentOutcome records what happened to one document in a batch.
type DocumentOutcome struct {
	DocumentID string                   `json:"document_id"`
	SourcePath string                   `json:"source_path,omitempty"`
	Status     constants.DocumentStatus `json:"status"`
	Extraction *ExtractionResult        `json:"extraction,omitempty"`
	Validation *ValidationResult        `json:"validation,omitempty"`
	Error      string                   `json:"error,omitempty"`
	ElapsedMS  int64                    `json:"elapsed_ms"`
}
