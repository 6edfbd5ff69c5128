package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kasicredit/lending-engine/internal/domain"
)

func TestFees_FullBreakdown(t *testing.T) {
	rules := domain.DefaultRules()

	result := Fees(decimal.NewFromInt(25000), 12, decimal.RequireFromString("27.5"), true, rules)

	// 165 + (25000-1000)*10% = 2565, capped at 1050
	assert.True(t, result.InitiationFee.Equal(decimal.NewFromInt(1050)), "initiation: got %s", result.InitiationFee)
	assert.True(t, result.MonthlyServiceFee.Equal(decimal.NewFromInt(60)))
	// 25000 * 0.3% = 75, principal above the 15000 cover threshold
	assert.True(t, result.MonthlyCreditLifePremium.Equal(decimal.NewFromInt(75)), "credit life: got %s", result.MonthlyCreditLifePremium)
	assert.True(t, result.TotalInterest.Equal(decimal.NewFromInt(6875)))
	assert.True(t, result.TotalRepayable.Equal(decimal.NewFromInt(31875)))
	assert.True(t, result.PrincipalAndInterestInstallment.Equal(decimal.RequireFromString("2656.25")))
	// 2656.25 + 60 + 75
	assert.True(t, result.MonthlyInstallment.Equal(decimal.RequireFromString("2791.25")), "installment: got %s", result.MonthlyInstallment)
	// 1050 + 60*12 + 75*12
	assert.True(t, result.TotalFees.Equal(decimal.NewFromInt(2670)), "total fees: got %s", result.TotalFees)
}

func TestFees_InitiationFee(t *testing.T) {
	rules := domain.DefaultRules()
	rate := decimal.NewFromInt(20)

	tests := []struct {
		name      string
		principal int64
		disabled  bool
		expected  string
	}{
		{name: "Below threshold pays base only", principal: 800, expected: "165"},
		{name: "Above threshold adds percentage", principal: 2000, expected: "265"},
		{name: "Capped at maximum fee", principal: 100000, expected: "1050"},
		{name: "Disabled is zero", principal: 25000, disabled: true, expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := *rules
			if tt.disabled {
				r.Fees.Initiation.Enabled = false
			}

			result := Fees(decimal.NewFromInt(tt.principal), 6, rate, false, &r)

			assert.True(t, result.InitiationFee.Equal(decimal.RequireFromString(tt.expected)),
				"initiation: got %s", result.InitiationFee)
			assert.False(t, result.InitiationFee.IsNegative())
			assert.True(t, result.InitiationFee.LessThanOrEqual(rules.Fees.Initiation.MaximumFee))
		})
	}
}

func TestFees_CreditLifePremium(t *testing.T) {
	rules := domain.DefaultRules()
	rate := decimal.NewFromInt(20)

	tests := []struct {
		name      string
		principal int64
		consent   bool
		expected  string
	}{
		{name: "Above threshold with consent", principal: 20000, consent: true, expected: "60"},
		{name: "Above threshold without consent", principal: 20000, consent: false, expected: "0"},
		{name: "Below threshold with consent", principal: 10000, consent: true, expected: "0"},
		{name: "At threshold is not above it", principal: 15000, consent: true, expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Fees(decimal.NewFromInt(tt.principal), 12, rate, tt.consent, rules)

			assert.True(t, result.MonthlyCreditLifePremium.Equal(decimal.RequireFromString(tt.expected)),
				"credit life: got %s", result.MonthlyCreditLifePremium)
		})
	}
}

// Flat-rate product: total interest depends on principal and rate only, the
// term just divides the repayable amount.
func TestFees_TotalInterestIndependentOfTerm(t *testing.T) {
	rules := domain.DefaultRules()
	principal := decimal.NewFromInt(10000)
	rate := decimal.NewFromInt(20)

	short := Fees(principal, 6, rate, false, rules)
	long := Fees(principal, 12, rate, false, rules)

	assert.True(t, short.TotalInterest.Equal(decimal.NewFromInt(2000)))
	assert.True(t, short.TotalInterest.Equal(long.TotalInterest))
	assert.True(t, short.TotalRepayable.Equal(long.TotalRepayable))
	assert.True(t, short.PrincipalAndInterestInstallment.GreaterThan(long.PrincipalAndInterestInstallment))
}

func TestFees_NeverNegative(t *testing.T) {
	rules := domain.DefaultRules()

	for _, principal := range []int64{500, 1000, 5000, 30000, 80000, 150000} {
		result := Fees(decimal.NewFromInt(principal), 12, decimal.NewFromInt(10), true, rules)

		assert.False(t, result.InitiationFee.IsNegative())
		assert.False(t, result.TotalFees.IsNegative())
		assert.False(t, result.MonthlyCreditLifePremium.IsNegative())
		assert.False(t, result.MonthlyInstallment.IsNegative())
	}
}
