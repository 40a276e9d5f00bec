package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const (
	DefaultSheetName = "Comparison"
	metricsSheet     = "Metrics"
	prosConsSheet    = "Pros & Cons"
	notesSheet       = "Notes"
	documentsSheet   = "Documents"
)

// Report is everything one batch run produced.
type Report struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Documents   []entity.DocumentOutcome `json:"documents,omitempty"`
	Comparison  *entity.ComparisonResult `json:"comparison,omitempty"`
}

// Service renders comparison reports as XLSX workbooks and JSON.
type Service struct {
	sheet  string
	logger *slog.Logger
}

func NewService(sheetName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = DefaultSheetName
	}
	return &Service{sheet: sheetName, logger: logger}
}

// XLSX returns the report as workbook bytes. The comparison table is the
// active sheet; metrics, pros/cons and notes follow, and a documents sheet
// is added when the report carries batch outcomes.
func (s *Service) XLSX(ctx context.Context, rep *Report) ([]byte, error) {
	if rep == nil || rep.Comparison == nil {
		return nil, fmt.Errorf("xlsx: report has no comparison")
	}
	start := time.Now()
	res := rep.Comparison

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", s.sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet %q: %w", s.sheet, err)
	}
	for _, name := range []string{metricsSheet, prosConsSheet, notesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx sheet %q: %w", name, err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(s.sheet)
	f.SetActiveSheet(activeIndex)

	writeRow(f, s.sheet, 1, toAny(res.Table.Headers))
	for i, row := range res.Table.Rows {
		writeRow(f, s.sheet, i+2, toAny(row))
	}
	_ = f.SetColWidth(s.sheet, "A", "A", 18) // loan id
	_ = f.SetColWidth(s.sheet, "B", "B", 28) // bank
	_ = f.SetColWidth(s.sheet, "C", "J", 18)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	writeRow(f, metricsSheet, 1, []any{
		"Loan ID", "Total Cost", "Effective Rate (%)", "Flexibility Score", "Monthly EMI", "Total Interest", "Best By Cost", "Best By Flexibility",
	})
	for i, m := range res.Metrics {
		var emi any = ""
		if m.MonthlyEMI != nil {
			emi = *m.MonthlyEMI
		}
		writeRow(f, metricsSheet, i+2, []any{
			m.LoanID, m.TotalCostEstimate, m.EffectiveInterestRate, m.FlexibilityScore, emi, m.TotalInterestPayable,
			m.LoanID == res.BestByCost, m.LoanID == res.BestByFlexibility,
		})
	}
	_ = f.SetColWidth(metricsSheet, "A", "H", 18)

	writeRow(f, prosConsSheet, 1, []any{"Loan ID", "Bank", "Pros", "Cons"})
	for i, d := range res.Details {
		writeRow(f, prosConsSheet, i+2, []any{
			d.LoanID, d.BankName, strings.Join(d.Pros, "\n"), strings.Join(d.Cons, "\n"),
		})
	}
	_ = f.SetColWidth(prosConsSheet, "A", "B", 22)
	_ = f.SetColWidth(prosConsSheet, "C", "D", 60)

	writeRow(f, notesSheet, 1, []any{"Note", "Detail"})
	for i, key := range noteOrder(res.ComparisonNotes) {
		writeRow(f, notesSheet, i+2, []any{key, res.ComparisonNotes[key]})
	}
	_ = f.SetColWidth(notesSheet, "A", "A", 20)
	_ = f.SetColWidth(notesSheet, "B", "B", 80)

	if len(rep.Documents) > 0 {
		if _, err := f.NewSheet(documentsSheet); err != nil {
			return nil, fmt.Errorf("xlsx sheet %q: %w", documentsSheet, err)
		}
		writeRow(f, documentsSheet, 1, []any{"Document ID", "Status", "Source", "Confidence", "Error", "Elapsed (ms)"})
		for i, d := range rep.Documents {
			var conf any = ""
			if d.Extraction != nil {
				conf = d.Extraction.Confidence.OverallConfidence
			}
			writeRow(f, documentsSheet, i+2, []any{
				d.DocumentID, string(d.Status), d.SourcePath, conf, truncate(d.Error, 140), d.ElapsedMS,
			})
		}
		_ = f.SetColWidth(documentsSheet, "A", "B", 18)
		_ = f.SetColWidth(documentsSheet, "C", "C", 48)
		_ = f.SetColWidth(documentsSheet, "E", "E", 60)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", rep.RunID,
		"rows", len(res.Table.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// JSON returns the report as indented JSON.
func (s *Service) JSON(rep *Report) ([]byte, error) {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json report: %w", err)
	}
	s.logger.Info("export.json.ok", "run_id", rep.RunID, "bytes", len(b))
	return b, nil
}

// WriteFiles writes <base>.xlsx and <base>.json into dir and returns both
// paths. Without a comparison only the JSON report is written.
func (s *Service) WriteFiles(ctx context.Context, dir, base string, rep *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var paths []string
	if rep.Comparison != nil {
		xb, err := s.XLSX(ctx, rep)
		if err != nil {
			return nil, err
		}
		p := filepath.Join(dir, base+".xlsx")
		if err := os.WriteFile(p, xb, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	jb, err := s.JSON(rep)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(dir, base+".json")
	if err := os.WriteFile(p, jb, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", p, err)
	}
	return append(paths, p), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var knownNotes = []string{
	"summary", "cost_range", "rate_range", "flexibility_range", "best_cost", "best_flexibility", "recommendation",
}

// noteOrder lists the standard notes first, then any extras sorted by key.
func noteOrder(notes map[string]string) []string {
	keys := make([]string, 0, len(notes))
	seen := make(map[string]bool, len(notes))
	for _, k := range knownNotes {
		if _, ok := notes[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range notes {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
