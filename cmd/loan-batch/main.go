package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/async"
	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/comparison"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
	"github.com/joseph-ayodele/loan-compare/internal/export"
	"github.com/joseph-ayodele/loan-compare/internal/extraction"
	"github.com/joseph-ayodele/loan-compare/internal/ingest"
	"github.com/joseph-ayodele/loan-compare/internal/normalization"
	"github.com/joseph-ayodele/loan-compare/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type options struct {
	dir      string
	out      string
	name     string
	loanType string
	watch    bool
	debounce time.Duration
}

// app wires the pipeline once per process.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	loader   *ingest.Loader
	proc     *pipeline.Processor
	compare  *comparison.Service
	exporter *export.Service
}

func newApp(cfg *common.Config, logger *slog.Logger) *app {
	ext := extraction.NewService(logger, cfg.Extraction.LowConfidenceThreshold)
	norm := normalization.NewService(logger, normalization.Options{
		StrictMode:      cfg.Normalization.StrictMode,
		DefaultCurrency: cfg.Normalization.DefaultCurrency,
	})
	return &app{
		cfg:      cfg,
		logger:   logger,
		loader:   ingest.NewLoader(logger),
		proc:     pipeline.NewProcessor(logger, ext, norm),
		compare:  comparison.NewService(logger),
		exporter: export.NewService(cfg.Export.SheetName, logger),
	}
}

func (a *app) queueOptions() []async.Option {
	return []async.Option{
		async.WithWorkers(a.cfg.Batch.Workers),
		async.WithQueueSize(a.cfg.Batch.QueueSize),
		async.WithProcessTimeout(a.cfg.Batch.ProcessTimeout),
	}
}

// runOnce ingests the directory, processes every document in parallel,
// compares the valid loans and writes the report.
func (a *app) runOnce(ctx context.Context, opts options) (*export.Report, []string, error) {
	runID := uuid.NewString()
	docs, _, stats, err := a.loader.LoadDirectory(ctx, opts.dir, nil, true)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil, fmt.Errorf("no loan documents found in %s (scanned %d)", opts.dir, stats.Scanned)
	}
	for i := range docs {
		docs[i].LoanTypeHint = opts.loanType
	}

	a.logger.Info("batch.start", "run_id", runID, "documents", len(docs), "workers", a.cfg.Batch.Workers)
	outcomes, err := async.RunBatch(ctx, a.proc, docs, runID, a.logger, a.queueOptions()...)
	if err != nil {
		return nil, nil, err
	}
	return a.report(ctx, runID, outcomes, opts)
}

func (a *app) report(ctx context.Context, runID string, outcomes []entity.DocumentOutcome, opts options) (*export.Report, []string, error) {
	rep := &export.Report{RunID: runID, GeneratedAt: time.Now().UTC(), Documents: outcomes}

	loans := pipeline.ValidRecords(outcomes)
	if len(loans) == 0 {
		a.logger.Warn("batch.no_valid_loans", "run_id", runID, "documents", len(outcomes))
	} else {
		res, err := a.compare.CompareLoans(loans)
		if err != nil {
			return nil, nil, fmt.Errorf("compare: %w", err)
		}
		rep.Comparison = res
	}

	paths, err := a.exporter.WriteFiles(ctx, opts.out, opts.name, rep)
	if err != nil {
		return nil, nil, fmt.Errorf("export: %w", err)
	}
	return rep, paths, nil
}

// watch keeps processing documents as they land in the directory and
// rewrites the report after each one.
func (a *app) watch(ctx context.Context, opts options) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{opts.dir},
		InitialScan: true,
		Debounce:    opts.debounce,
		Logger:      a.logger,
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	runID := uuid.NewString()
	var mu sync.Mutex
	latest := map[string]entity.DocumentOutcome{}
	updates := make(chan struct{}, 1)

	q := async.NewProcessorQueue(a.proc, a.logger, append(a.queueOptions(),
		async.WithResultHandler(func(_ async.Job, outcome *entity.DocumentOutcome, _ error) {
			mu.Lock()
			latest[outcome.DocumentID] = *outcome
			mu.Unlock()
			select {
			case updates <- struct{}{}:
			default:
			}
		}))...)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Batch.ProcessTimeout)
		defer cancel()
		_ = q.Shutdown(shutdownCtx)
	}()

	a.logger.Info("watch.start", "run_id", runID, "dir", opts.dir)
	index := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Error("watch.failed", "err", err)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			doc, err := a.loader.LoadFile(path)
			if err != nil {
				a.logger.Warn("watch.load.failed", "path", path, "err", err)
				continue
			}
			doc.LoanTypeHint = opts.loanType
			if err := q.Enqueue(ctx, async.Job{Index: index, Document: doc, RunID: runID}); err != nil {
				return err
			}
			index++
		case <-updates:
			mu.Lock()
			outcomes := make([]entity.DocumentOutcome, 0, len(latest))
			for _, o := range latest {
				outcomes = append(outcomes, o)
			}
			mu.Unlock()
			sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].DocumentID < outcomes[j].DocumentID })
			if _, paths, err := a.report(ctx, runID, outcomes, opts); err != nil {
				a.logger.Error("watch.report.failed", "err", err)
			} else {
				a.logger.Info("watch.report.ok", "documents", len(outcomes), "files", paths)
			}
		}
	}
}

func main() {
	envFile, envErr := common.LoadDotEnv()
	cfg := common.LoadConfig()

	var (
		dir       = flag.String("dir", "", "directory of loan documents (.txt, .pdf, optional <name>.tables.json) (required)")
		out       = flag.String("out", cfg.Export.Dir, "output directory for the XLSX and JSON report")
		name      = flag.String("name", "loan-comparison", "base file name of the report")
		loanType  = flag.String("loan-type", "", "loan type for every document (classified from text when empty)")
		workers   = flag.Int("workers", cfg.Batch.Workers, "parallel documents")
		timeout   = flag.Duration("timeout", cfg.Batch.ProcessTimeout, "per-document processing timeout")
		strict    = flag.Bool("strict", cfg.Normalization.StrictMode, "treat validation warnings as failures")
		currency  = flag.String("currency", cfg.Normalization.DefaultCurrency, "default currency code")
		threshold = flag.Float64("threshold", cfg.Extraction.LowConfidenceThreshold, "low-confidence review threshold")
		watch     = flag.Bool("watch", false, "keep watching -dir and refresh the report as documents arrive")
		debounce  = flag.Duration("debounce", 500*time.Millisecond, "watch mode event debounce")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Warn("dotenv.load.failed", "error", envErr)
	} else if envFile != "" {
		logger.Debug("dotenv.loaded", "path", envFile)
	}

	cfg.Export.Dir = *out
	cfg.Batch.Workers = *workers
	cfg.Batch.ProcessTimeout = *timeout
	cfg.Normalization.StrictMode = *strict
	cfg.Normalization.DefaultCurrency = *currency
	cfg.Extraction.LowConfidenceThreshold = *threshold
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(cfg, logger)
	opts := options{dir: *dir, out: *out, name: *name, loanType: *loanType, debounce: *debounce}

	if *watch {
		if err := a.watch(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	rep, paths, err := a.runOnce(ctx, opts)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	counts := map[constants.DocumentStatus]int{}
	for _, d := range rep.Documents {
		counts[d.Status]++
	}
	fmt.Printf("Batch complete (run %s)\n", rep.RunID)
	fmt.Printf("- Documents: %d\n", len(rep.Documents))
	fmt.Printf("- Normalized: %d\n", counts[constants.DocumentStatusNormalized])
	fmt.Printf("- Failed: %d\n", counts[constants.DocumentStatusFailed])
	if rep.Comparison != nil {
		fmt.Printf("- Best by cost: %s\n", rep.Comparison.BestByCost)
		fmt.Printf("- Best by flexibility: %s\n", rep.Comparison.BestByFlexibility)
		fmt.Printf("- Recommendation: %s\n", rep.Comparison.ComparisonNotes["recommendation"])
	}
	for _, p := range paths {
		fmt.Printf("- Output: %s\n", p)
	}
}
