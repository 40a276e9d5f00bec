package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
	"github.com/joseph-ayodele/loan-compare/internal/extraction"
	"github.com/joseph-ayodele/loan-compare/internal/ingest"
	"github.com/joseph-ayodele/loan-compare/internal/normalization"
)

// output is what the CLI prints for one document.
type output struct {
	DocumentID string                        `json:"document_id"`
	Extraction *entity.ExtractionResult      `json:"extraction,omitempty"`
	Summary    *extraction.Summary           `json:"summary,omitempty"`
	RawFields  entity.RawFields              `json:"raw_fields"`
	Validation *entity.ValidationResult      `json:"validation"`
	Classified *normalization.Classification `json:"classification,omitempty"`
	Error      string                        `json:"error,omitempty"`
	Code       string                        `json:"code,omitempty"`
}

func main() {
	envFile, envErr := common.LoadDotEnv()
	cfg := common.LoadConfig()

	var (
		file     = flag.String("file", "", "loan document (.txt or .pdf); a sibling <name>.tables.json is picked up automatically")
		tables   = flag.String("tables", "", "explicit tables JSON file (overrides the sibling)")
		fields   = flag.String("fields", "", "already-structured raw fields as JSON; skips extraction")
		docID    = flag.String("id", "", "document id (defaults to the file name)")
		loanType = flag.String("loan-type", "", "loan type hint")
		strict   = flag.Bool("strict", cfg.Normalization.StrictMode, "treat validation warnings as failures")
		currency = flag.String("currency", cfg.Normalization.DefaultCurrency, "default currency code")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Warn("dotenv.load.failed", "error", envErr)
	} else if envFile != "" {
		logger.Debug("dotenv.loaded", "path", envFile)
	}

	if (*file == "") == (*fields == "") {
		logger.Error("usage", "cmd", "loan-extract -file <doc> | -fields <raw.json>")
		os.Exit(2)
	}

	norm := normalization.NewService(logger, normalization.Options{StrictMode: *strict, DefaultCurrency: *currency})
	out := output{DocumentID: *docID}

	if *fields != "" {
		data, err := os.ReadFile(*fields)
		if err != nil {
			logger.Error("read fields", "error", err)
			os.Exit(1)
		}
		raw, err := normalization.RawFieldsFromJSON(data)
		if err != nil {
			logger.Error("decode fields", "error", err)
			os.Exit(1)
		}
		if out.DocumentID == "" {
			out.DocumentID = ingest.DocumentID(*fields)
		}
		out.RawFields = raw
	} else {
		doc, err := ingest.NewLoader(logger).LoadFile(*file)
		if err != nil {
			logger.Error("load document", "error", err)
			os.Exit(1)
		}
		if *tables != "" {
			if doc.Tables, err = readTables(*tables); err != nil {
				logger.Error("read tables", "error", err)
				os.Exit(1)
			}
		}
		if out.DocumentID == "" {
			out.DocumentID = doc.ID
		}

		text := extraction.NormalizeText(doc.Text)
		res := extraction.NewService(logger, cfg.Extraction.LowConfidenceThreshold).Extract(text, doc.Tables)
		sum := extraction.Summarize(res)
		out.Extraction, out.Summary = res, &sum
		out.RawFields = extraction.ToRawFields(res)

		if *loanType == "" {
			c := normalization.NewLoanTypeClassifier().Classify(text)
			out.Classified = &c
			out.RawFields["loan_type"] = string(c.LoanType)
		}
		if id := normalization.NewBankIdentifier().Identify(text); id.Confidence > 0 {
			if _, ok := out.RawFields["bank_name"]; !ok {
				out.RawFields["bank_name"] = id.BankName
			}
			if code := id.BankCode(); code != "" {
				out.RawFields["bank_code"] = code
			}
		}
	}
	if *loanType != "" {
		out.RawFields["loan_type"] = *loanType
	}

	vr, err := norm.Normalize(out.RawFields, out.DocumentID, "")
	out.Validation = vr
	fail := failure(vr, err)
	if fail != nil {
		out.Error = fail.Error()
		out.Code = status.Code(fail).String()
	}

	if err := writeJSON(os.Stdout, out); err != nil {
		logger.Error("write output", "error", err)
		os.Exit(1)
	}
	if fail != nil {
		logger.Warn("normalize.invalid", "document_id", out.DocumentID, "code", out.Code, "error", fail)
		os.Exit(3)
	}
}

// failure returns why a document did not normalize, or nil when it did.
// Recorded validation issues become tagged errors so the gRPC code is kept.
func failure(vr *entity.ValidationResult, err error) error {
	if err != nil {
		return err
	}
	if vr == nil {
		return common.SchemaViolationError("general", "no validation result", nil)
	}
	if vr.IsValid {
		return nil
	}
	if len(vr.Errors) == 0 {
		return common.SchemaViolationError("general", "record is invalid", nil)
	}
	e := vr.Errors[0]
	return common.KindError(e.ErrorType, e.Field, e.Message)
}

func readTables(path string) ([]entity.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tables []entity.Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return tables, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
