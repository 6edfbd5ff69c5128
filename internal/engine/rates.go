// Package engine implements the lending decision engine: a pure function set
// over an immutable rule set and an application snapshot. It performs no I/O
// and holds no state, so it is safe to call concurrently with a shared
// LendingRules instance.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/kasicredit/lending-engine/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// TierFor assigns the loan tier by principal amount using the explicit
// principal breakpoints in the rules.
func TierFor(principal decimal.Decimal, rules *domain.LendingRules) domain.LoanTier {
	switch {
	case principal.LessThanOrEqual(rules.Interest.Tiers.SmallMax):
		return domain.TierSmall
	case principal.LessThanOrEqual(rules.Interest.Tiers.MediumMax):
		return domain.TierMedium
	default:
		return domain.TierLarge
	}
}

// BaseRate returns the annual base rate (percent) for the tier the principal
// falls into.
func BaseRate(principal decimal.Decimal, rules *domain.LendingRules) decimal.Decimal {
	return rules.Interest.BaseRates.BaseRateFor(TierFor(principal, rules))
}

// Rate computes the final annual interest rate: tier base rate plus the risk
// adjustment for the affordability category, clamped to the configured
// minimum and maximum.
func Rate(principal decimal.Decimal, category domain.AffordabilityCategory, rules *domain.LendingRules) decimal.Decimal {
	rate := BaseRate(principal, rules).Add(adjustmentFor(category, rules))

	limits := rules.Interest.Limits
	if rate.LessThan(limits.MinimumRate) {
		return limits.MinimumRate
	}
	if rate.GreaterThan(limits.MaximumRate) {
		return limits.MaximumRate
	}
	return rate
}

func adjustmentFor(category domain.AffordabilityCategory, rules *domain.LendingRules) decimal.Decimal {
	for _, band := range rules.Interest.RiskBands {
		if band.Category == category {
			return band.RateAdjustment
		}
	}
	return decimal.Zero
}

// installmentFor is the principal-and-interest monthly installment under the
// flat-rate product: total interest does not compound and does not depend on
// the term, the term only divides the repayable amount.
func installmentFor(principal, rate decimal.Decimal, termMonths int) decimal.Decimal {
	totalInterest := principal.Mul(rate).Div(hundred)
	totalRepayable := principal.Add(totalInterest)
	return totalRepayable.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
}
