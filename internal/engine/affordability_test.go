package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasicredit/lending-engine/internal/domain"
)

func TestAssess_Figures(t *testing.T) {
	rules := domain.DefaultRules()

	result, err := Assess(baseSnapshot(), rules)
	require.NoError(t, err)

	// 1500 + 800 + 500 + 100 + 100
	assert.True(t, result.TotalMonthlyExpenses.Equal(decimal.NewFromInt(3000)),
		"expenses: got %s", result.TotalMonthlyExpenses)
	assert.True(t, result.DisposableIncome.Equal(decimal.NewFromInt(3000)),
		"disposable: got %s", result.DisposableIncome)

	// Installment at the small-tier rate: 31875 / 12 = 2656.25.
	// DTI = (500 + 2656.25) / 8000 * 100 = 39.45
	assert.True(t, result.DebtToIncomeRatio.Equal(decimal.RequireFromString("39.45")),
		"dti: got %s", result.DebtToIncomeRatio)
	assert.False(t, result.DebtToIncomeInfinite)
	assert.Equal(t, domain.CategoryAverage, result.Category)
	assert.True(t, result.CanAffordLoan)
}

func TestAssess_TwoPassUsesAdjustedRate(t *testing.T) {
	rules := domain.DefaultRules()

	// Strong applicant on a medium-tier loan: pass one categorizes Excellent
	// at the 24.0 base rate, pass two reprices at 21.5 and reports the DTI of
	// the cheaper installment.
	snapshot := &domain.LoanApplicationSnapshot{
		Principal:          decimal.NewFromInt(40000),
		TermMonths:         24,
		MonthlyGrossIncome: decimal.NewFromInt(20000),
		MonthlyNetIncome:   decimal.NewFromInt(15000),
		Expenses: domain.MonthlyExpenses{
			RentOrBond:      decimal.NewFromInt(3000),
			Living:          decimal.NewFromInt(2000),
			DebtObligations: decimal.NewFromInt(1000),
			Insurance:       decimal.NewFromInt(500),
			Other:           decimal.NewFromInt(500),
		},
	}

	result, err := Assess(snapshot, rules)
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryExcellent, result.Category)
	// Final installment: 48600 / 24 = 2025; DTI = 3025 / 20000 * 100
	assert.True(t, result.DebtToIncomeRatio.Equal(decimal.RequireFromString("15.13")),
		"dti: got %s", result.DebtToIncomeRatio)
	assert.True(t, result.CanAffordLoan)
}

func TestAssess_ZeroGrossIncome(t *testing.T) {
	rules := domain.DefaultRules()

	snapshot := baseSnapshot()
	snapshot.MonthlyGrossIncome = decimal.Zero

	result, err := Assess(snapshot, rules)
	require.NoError(t, err)

	assert.True(t, result.DebtToIncomeInfinite)
	assert.Equal(t, domain.CategoryPoor, result.Category)
	assert.False(t, result.CanAffordLoan)
}

func TestAssess_CanAffordBoundaries(t *testing.T) {
	rules := domain.DefaultRules()

	tests := []struct {
		name      string
		mutate    func(*domain.LoanApplicationSnapshot)
		canAfford bool
	}{
		{
			name:      "Passes all three checks",
			mutate:    func(s *domain.LoanApplicationSnapshot) {},
			canAfford: true,
		},
		{
			name: "Disposable below minimum after loan",
			mutate: func(s *domain.LoanApplicationSnapshot) {
				s.Expenses.Living = decimal.NewFromInt(3500)
			},
			canAfford: false,
		},
		{
			name: "Residual below minimum",
			mutate: func(s *domain.LoanApplicationSnapshot) {
				// Disposable 2700 clears the 1500 floor but leaves less than
				// 300 after the 2656.25 installment.
				s.Expenses.Living = decimal.NewFromInt(1100)
			},
			canAfford: false,
		},
		{
			name: "DTI above maximum",
			mutate: func(s *domain.LoanApplicationSnapshot) {
				s.Expenses.DebtObligations = decimal.NewFromInt(1200)
				s.MonthlyNetIncome = decimal.NewFromInt(8000)
			},
			canAfford: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := baseSnapshot()
			tt.mutate(snapshot)

			result, err := Assess(snapshot, rules)
			require.NoError(t, err)
			assert.Equal(t, tt.canAfford, result.CanAffordLoan)
		})
	}
}

func TestAssess_InvalidSnapshot(t *testing.T) {
	rules := domain.DefaultRules()

	snapshot := baseSnapshot()
	snapshot.Expenses.Other = decimal.NewFromInt(-50)

	_, err := Assess(snapshot, rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expenses.other")
}
