package engine

import (
	"github.com/shopspring/decimal"

	"github.com/kasicredit/lending-engine/internal/domain"
)

// Assess computes the affordability verdict for a snapshot.
//
// The final rate depends on the affordability category while the category
// depends on the installment, which depends on the rate. The cycle is
// resolved as an explicit two-pass pipeline: pass one estimates the
// installment at the tier base rate and derives the category from it, pass
// two recomputes the installment at the risk-adjusted rate and produces the
// final ratio and verdict.
func Assess(snapshot *domain.LoanApplicationSnapshot, rules *domain.LendingRules) (*domain.AffordabilityResult, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return assess(snapshot, rules), nil
}

func assess(snapshot *domain.LoanApplicationSnapshot, rules *domain.LendingRules) *domain.AffordabilityResult {
	totalExpenses := snapshot.Expenses.Total()
	disposable := snapshot.MonthlyNetIncome.Sub(totalExpenses)

	// Pass one: category from the tier base rate installment.
	trialInstallment := installmentFor(snapshot.Principal, BaseRate(snapshot.Principal, rules), snapshot.TermMonths)
	trialDTI, infinite := debtToIncome(snapshot, trialInstallment)
	category := categorize(trialDTI, infinite, disposable, rules)

	// Pass two: final figures at the risk-adjusted rate.
	finalRate := Rate(snapshot.Principal, category, rules)
	installment := installmentFor(snapshot.Principal, finalRate, snapshot.TermMonths)
	dti, infinite := debtToIncome(snapshot, installment)

	aff := rules.Affordability
	canAfford := !infinite &&
		disposable.GreaterThanOrEqual(aff.MinimumDisposableIncomeAfterLoan) &&
		dti.LessThanOrEqual(aff.MaxDebtToIncomeRatio) &&
		disposable.Sub(installment).GreaterThanOrEqual(aff.MinimumResidualAmount)

	return &domain.AffordabilityResult{
		TotalMonthlyExpenses: totalExpenses,
		DisposableIncome:     disposable,
		DebtToIncomeRatio:    dti,
		DebtToIncomeInfinite: infinite,
		Category:             category,
		CanAffordLoan:        canAfford,
	}
}

// debtToIncome returns the DTI percentage for existing debt obligations plus
// the proposed installment. A non-positive gross income yields an infinite
// ratio instead of a division error.
func debtToIncome(snapshot *domain.LoanApplicationSnapshot, installment decimal.Decimal) (decimal.Decimal, bool) {
	if snapshot.MonthlyGrossIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, true
	}
	committed := snapshot.Expenses.DebtObligations.Add(installment)
	return committed.Div(snapshot.MonthlyGrossIncome).Mul(hundred).Round(2), false
}

// categorize walks the risk bands in configured order and selects the first
// band whose constraints hold. The final band carries no constraints and
// matches everything.
func categorize(dti decimal.Decimal, infinite bool, disposable decimal.Decimal, rules *domain.LendingRules) domain.AffordabilityCategory {
	for _, band := range rules.Interest.RiskBands {
		if band.MaxDTI != nil {
			if infinite || dti.GreaterThan(*band.MaxDTI) {
				continue
			}
		}
		if band.MinDisposableIncome != nil && disposable.LessThan(*band.MinDisposableIncome) {
			continue
		}
		return band.Category
	}
	return domain.CategoryPoor
}
