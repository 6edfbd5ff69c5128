package engine

import (
	"github.com/shopspring/decimal"

	"github.com/kasicredit/lending-engine/internal/domain"
)

// Fees computes the full pricing breakdown for a loan at the given rate.
//
// The credit-life premium is quoted flat on the original principal rather
// than on the declining balance, so the stored figure matches the quoted one
// for the whole term.
func Fees(principal decimal.Decimal, termMonths int, rate decimal.Decimal, lifeCoverConsent bool, rules *domain.LendingRules) *domain.RateAndFeeResult {
	term := decimal.NewFromInt(int64(termMonths))

	initiationFee := decimal.Zero
	if rules.Fees.Initiation.Enabled {
		cfg := rules.Fees.Initiation
		aboveThreshold := principal.Sub(cfg.ThresholdAmount)
		if aboveThreshold.IsNegative() {
			aboveThreshold = decimal.Zero
		}
		initiationFee = cfg.BaseAmount.Add(aboveThreshold.Mul(cfg.PercentageAboveThreshold).Div(hundred))
		if initiationFee.GreaterThan(cfg.MaximumFee) {
			initiationFee = cfg.MaximumFee
		}
		initiationFee = initiationFee.Round(2)
	}

	serviceFee := rules.Fees.MonthlyServiceFee

	creditLife := decimal.Zero
	if lifeCoverConsent && principal.GreaterThan(rules.Fees.CreditLife.RequiredAboveAmount) {
		creditLife = principal.Mul(rules.Fees.CreditLife.MonthlyRatePercentage).Div(hundred).Round(2)
	}

	totalInterest := principal.Mul(rate).Div(hundred).Round(2)
	totalRepayable := principal.Add(totalInterest)
	principalAndInterest := totalRepayable.Div(term).Round(2)
	monthlyInstallment := principalAndInterest.Add(serviceFee).Add(creditLife)

	totalFees := initiationFee.Add(serviceFee.Mul(term)).Add(creditLife.Mul(term))

	return &domain.RateAndFeeResult{
		InterestRate:                    rate,
		InitiationFee:                   initiationFee,
		MonthlyServiceFee:               serviceFee,
		MonthlyCreditLifePremium:        creditLife,
		TotalInterest:                   totalInterest,
		TotalFees:                       totalFees,
		PrincipalAndInterestInstallment: principalAndInterest,
		MonthlyInstallment:              monthlyInstallment,
		TotalRepayable:                  totalRepayable,
	}
}
