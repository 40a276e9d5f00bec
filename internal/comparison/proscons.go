package comparison

import (
	"fmt"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

type spread struct {
	min, avg, max float64
}

func spreadOf(values []float64) spread {
	if len(values) == 0 {
		return spread{}
	}
	s := spread{min: values[0], max: values[0]}
	var sum float64
	for _, v := range values {
		s.min = min(s.min, v)
		s.max = max(s.max, v)
		sum += v
	}
	s.avg = sum / float64(len(values))
	return s
}

// peerSpreads summarizes cost, rate and flexibility over the loans whose
// metrics were computed. Default metrics count only when every loan failed.
func peerSpreads(all []entity.ComparisonMetrics) (cost, rate, flex spread) {
	computed := make([]entity.ComparisonMetrics, 0, len(all))
	for _, m := range all {
		if m.MonthlyEMI != nil {
			computed = append(computed, m)
		}
	}
	if len(computed) == 0 {
		computed = all
	}
	costs := make([]float64, len(computed))
	rates := make([]float64, len(computed))
	flexes := make([]float64, len(computed))
	for i, m := range computed {
		costs[i], rates[i], flexes[i] = m.TotalCostEstimate, m.EffectiveInterestRate, m.FlexibilityScore
	}
	return spreadOf(costs), spreadOf(rates), spreadOf(flexes)
}

// ProsAndCons judges one loan against all compared metrics. A loan without
// computed metrics is judged on its terms only.
func ProsAndCons(loan *entity.LoanRecord, m entity.ComparisonMetrics, all []entity.ComparisonMetrics) entity.ProsCons {
	var pros, cons []string
	if m.MonthlyEMI == nil {
		cons = append(cons, "Comparison metrics unavailable")
	} else {
		pros, cons = relativeProsCons(m, all)
	}
	pros, cons = termProsCons(loan, pros, cons)

	if len(pros) == 0 {
		pros = []string{"Standard loan terms"}
	}
	if len(cons) == 0 {
		cons = []string{"No significant drawbacks identified"}
	}
	return entity.ProsCons{Pros: pros, Cons: cons}
}

func relativeProsCons(m entity.ComparisonMetrics, all []entity.ComparisonMetrics) (pros, cons []string) {
	cost, rate, fl := peerSpreads(all)

	switch {
	case m.TotalCostEstimate == cost.min:
		pros = append(pros, "Lowest total cost among all options")
	case m.TotalCostEstimate <= cost.avg*1.05:
		pros = append(pros, "Competitive total cost")
	case m.TotalCostEstimate >= cost.max*0.95:
		cons = append(cons, "Highest total cost among options")
	}

	switch {
	case m.EffectiveInterestRate == rate.min:
		pros = append(pros, "Lowest effective interest rate")
	case m.EffectiveInterestRate <= rate.avg:
		pros = append(pros, "Below-average interest rate")
	default:
		cons = append(cons, "Above-average interest rate")
	}

	switch {
	case m.FlexibilityScore == fl.max:
		pros = append(pros, "Most flexible repayment terms")
	case m.FlexibilityScore >= fl.avg:
		pros = append(pros, "Good repayment flexibility")
	default:
		cons = append(cons, "Limited repayment flexibility")
	}
	return pros, cons
}

func termProsCons(loan *entity.LoanRecord, pros, cons []string) ([]string, []string) {
	switch mor := loan.MoratoriumPeriodMonths; {
	case mor == nil || *mor == 0:
		cons = append(cons, "No moratorium period")
	case *mor >= 12:
		pros = append(pros, fmt.Sprintf("Generous moratorium period of %d months", *mor))
	case *mor >= 6:
		pros = append(pros, fmt.Sprintf("Moratorium period of %d months available", *mor))
	}

	if p := loan.PrepaymentPenalty; p != nil {
		if IsPenaltyFree(*p) {
			pros = append(pros, "No prepayment penalty")
		} else {
			cons = append(cons, fmt.Sprintf("Prepayment penalty: %s", *p))
		}
	}

	if pf := loan.ProcessingFee; pf != nil && loan.PrincipalAmount > 0 {
		ratio := *pf / loan.PrincipalAmount * 100
		switch {
		case ratio < 1:
			pros = append(pros, "Low processing fee")
		case ratio > 3:
			cons = append(cons, "High processing fee")
		}
	}

	if loan.CoSigner != nil {
		cons = append(cons, "Requires co-signer")
	} else {
		pros = append(pros, "No co-signer required")
	}

	if c := loan.CollateralDetails; c != nil && *c != "" {
		cons = append(cons, fmt.Sprintf("Requires collateral: %s", *c))
	} else {
		pros = append(pros, "No collateral required")
	}
	return pros, cons
}
