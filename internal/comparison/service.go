package comparison

import (
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

// Service compares normalized loans side by side.
type Service struct {
	logger *slog.Logger
	calc   *Calculator
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, calc: NewCalculator()}
}

// CompareLoans computes metrics for every loan concurrently, then picks the
// cheapest and the most flexible option. A loan whose metrics cannot be
// computed gets zeroed metrics and stays in the comparison.
func (s *Service) CompareLoans(loans []entity.LoanRecord) (*entity.ComparisonResult, error) {
	if len(loans) == 0 {
		return nil, common.NewAppError("NO_LOANS", "at least one loan is required for comparison", common.ErrInvalidInput)
	}
	if len(loans) == 1 {
		s.logger.Warn("compare.single_loan", "loan_id", loans[0].LoanID)
	}

	start := time.Now()
	metrics := s.metricsFor(loans)

	bestCost, bestFlex := pickBest(metrics)

	res := &entity.ComparisonResult{
		Loans:             loans,
		Metrics:           metrics,
		BestByCost:        loans[bestCost].LoanID,
		BestByFlexibility: loans[bestFlex].LoanID,
		ComparisonNotes:   ComparisonNotes(loans, metrics, loans[bestCost].LoanID, loans[bestFlex].LoanID),
		Details:           DetailedComparison(loans, metrics),
		Table:             ComparisonTableFor(loans, metrics),
	}

	s.logger.Info("compare.ok",
		"loans", len(loans),
		"best_by_cost", res.BestByCost,
		"best_by_flexibility", res.BestByFlexibility,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// metricsFor fans out one goroutine per loan. Failures become default
// metrics, so the group never reports an error.
func (s *Service) metricsFor(loans []entity.LoanRecord) []entity.ComparisonMetrics {
	metrics := make([]entity.ComparisonMetrics, len(loans))
	var g errgroup.Group
	for i := range loans {
		i := i
		g.Go(func() error {
			m, err := s.calc.Calculate(&loans[i])
			if err != nil {
				s.logger.Error("compare.metrics.failed", "loan_id", loans[i].LoanID, "err", err)
				m = defaultMetrics(loans[i].LoanID, s.calc.now())
			}
			metrics[i] = m
			return nil
		})
	}
	_ = g.Wait()
	return metrics
}

// pickBest returns the indexes of the lowest total cost and the highest
// flexibility score. Ties go to the earlier loan. Loans with default metrics
// only win when every loan failed.
func pickBest(metrics []entity.ComparisonMetrics) (bestCost, bestFlex int) {
	bestCost, bestFlex = -1, -1
	for i, m := range metrics {
		if m.MonthlyEMI == nil {
			continue
		}
		if bestCost < 0 || m.TotalCostEstimate < metrics[bestCost].TotalCostEstimate {
			bestCost = i
		}
		if bestFlex < 0 || m.FlexibilityScore > metrics[bestFlex].FlexibilityScore {
			bestFlex = i
		}
	}
	if bestCost < 0 {
		return 0, 0
	}
	return bestCost, bestFlex
}

func defaultMetrics(loanID string, at time.Time) entity.ComparisonMetrics {
	return entity.ComparisonMetrics{LoanID: loanID, CalculatedAt: at.UTC()}
}

// CalculateMetrics exposes the calculator for a single loan.
func (s *Service) CalculateMetrics(loan *entity.LoanRecord) (entity.ComparisonMetrics, error) {
	return s.calc.Calculate(loan)
}
