package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LoanTier categorizes a loan by principal amount. Each tier carries its own
// base interest rate and term bounds.
type LoanTier string

const (
	TierSmall  LoanTier = "small"
	TierMedium LoanTier = "medium"
	TierLarge  LoanTier = "large"
)

// AffordabilityCategory ranks an applicant's financial headroom.
type AffordabilityCategory string

const (
	CategoryExcellent    AffordabilityCategory = "excellent"
	CategoryGood         AffordabilityCategory = "good"
	CategoryAverage      AffordabilityCategory = "average"
	CategoryBelowAverage AffordabilityCategory = "below_average"
	CategoryPoor         AffordabilityCategory = "poor"
)

// LendingRules is the full lending policy tree. It is loaded once at startup
// (or swapped atomically on admin reload) and treated as read-only during
// evaluation.
type LendingRules struct {
	MaxLoanAmount decimal.Decimal       `json:"max_loan_amount"`
	AutoApproval  AutoApprovalSettings  `json:"auto_approval"`
	Fees          FeeSettings           `json:"fees"`
	Interest      InterestSettings      `json:"interest"`
	Terms         LoanTermSettings      `json:"terms"`
	Affordability AffordabilitySettings `json:"affordability"`
}

type AutoApprovalSettings struct {
	Enabled                     bool            `json:"enabled"`
	MaxAutoApprovalAmount       decimal.Decimal `json:"max_auto_approval_amount"`
	MinimumMonthlyGrossIncome   decimal.Decimal `json:"minimum_monthly_gross_income"`
	MinimumMonthlyNetIncome     decimal.Decimal `json:"minimum_monthly_net_income"`
	RequireDocumentVerification bool            `json:"require_document_verification"`
	RequireCreditCheck          bool            `json:"require_credit_check"`
}

type FeeSettings struct {
	Initiation        InitiationFeeSettings `json:"initiation"`
	MonthlyServiceFee decimal.Decimal       `json:"monthly_service_fee"`
	CreditLife        CreditLifeSettings    `json:"credit_life"`
}

// InitiationFeeSettings follows the NCA initiation fee formula: a base amount
// plus a percentage of the principal above a threshold, capped at a maximum.
type InitiationFeeSettings struct {
	Enabled                  bool            `json:"enabled"`
	BaseAmount               decimal.Decimal `json:"base_amount"`
	PercentageAboveThreshold decimal.Decimal `json:"percentage_above_threshold"`
	ThresholdAmount          decimal.Decimal `json:"threshold_amount"`
	MaximumFee               decimal.Decimal `json:"maximum_fee"`
}

// CreditLifeSettings governs the credit-life insurance premium quoted on loans
// above RequiredAboveAmount. The premium is quoted flat on the original
// principal.
type CreditLifeSettings struct {
	MonthlyRatePercentage decimal.Decimal `json:"monthly_rate_percentage"`
	RequiredAboveAmount   decimal.Decimal `json:"required_above_amount"`
}

type InterestSettings struct {
	BaseRates PrincipalTierRates `json:"base_rates"`
	Tiers     PrincipalTiers     `json:"tiers"`
	RiskBands []RiskBand         `json:"risk_bands"`
	Limits    RateLimits         `json:"limits"`
}

// PrincipalTierRates holds the annual base rate (percent) per loan tier.
type PrincipalTierRates struct {
	Small  decimal.Decimal `json:"small"`
	Medium decimal.Decimal `json:"medium"`
	Large  decimal.Decimal `json:"large"`
}

// PrincipalTiers defines the principal breakpoints between tiers. A principal
// up to and including SmallMax is small, up to MediumMax is medium, anything
// above is large.
type PrincipalTiers struct {
	SmallMax  decimal.Decimal `json:"small_max"`
	MediumMax decimal.Decimal `json:"medium_max"`
}

// RiskBand maps an affordability category to a rate adjustment. Bands are
// walked in order; the first band whose constraints hold wins. A band with
// nil constraints matches everything and must terminate the list.
type RiskBand struct {
	Category            AffordabilityCategory `json:"category"`
	MaxDTI              *decimal.Decimal      `json:"max_dti,omitempty"`
	MinDisposableIncome *decimal.Decimal      `json:"min_disposable_income,omitempty"`
	RateAdjustment      decimal.Decimal       `json:"rate_adjustment"`
}

type RateLimits struct {
	MinimumRate decimal.Decimal `json:"minimum_rate"`
	MaximumRate decimal.Decimal `json:"maximum_rate"`
}

type LoanTermSettings struct {
	Small  TermBounds `json:"small"`
	Medium TermBounds `json:"medium"`
	Large  TermBounds `json:"large"`
}

type TermBounds struct {
	MinMonths int `json:"min_months"`
	MaxMonths int `json:"max_months"`
}

type AffordabilitySettings struct {
	MaxDebtToIncomeRatio             decimal.Decimal `json:"max_debt_to_income_ratio"`
	MinimumDisposableIncomeAfterLoan decimal.Decimal `json:"minimum_disposable_income_after_loan"`
	MinimumResidualAmount            decimal.Decimal `json:"minimum_residual_amount"`
}

// TermBoundsFor returns the term bounds for a tier.
func (t LoanTermSettings) TermBoundsFor(tier LoanTier) TermBounds {
	switch tier {
	case TierSmall:
		return t.Small
	case TierMedium:
		return t.Medium
	default:
		return t.Large
	}
}

// BaseRateFor returns the annual base rate for a tier.
func (r PrincipalTierRates) BaseRateFor(tier LoanTier) decimal.Decimal {
	switch tier {
	case TierSmall:
		return r.Small
	case TierMedium:
		return r.Medium
	default:
		return r.Large
	}
}

// Validate checks the policy invariants. An invalid rule set is a fatal
// configuration error: it must be rejected at load time, never discovered
// mid-evaluation.
func (r *LendingRules) Validate() error {
	if r.MaxLoanAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("max_loan_amount must be positive")
	}

	if r.Interest.Limits.MinimumRate.IsNegative() {
		return fmt.Errorf("interest limits: minimum_rate must not be negative")
	}
	if r.Interest.Limits.MinimumRate.GreaterThan(r.Interest.Limits.MaximumRate) {
		return fmt.Errorf("interest limits: minimum_rate %s exceeds maximum_rate %s",
			r.Interest.Limits.MinimumRate, r.Interest.Limits.MaximumRate)
	}

	if r.Interest.Tiers.SmallMax.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("interest tiers: small_max must be positive")
	}
	if r.Interest.Tiers.MediumMax.LessThanOrEqual(r.Interest.Tiers.SmallMax) {
		return fmt.Errorf("interest tiers: medium_max %s must exceed small_max %s",
			r.Interest.Tiers.MediumMax, r.Interest.Tiers.SmallMax)
	}

	for _, rate := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"base_rates.small", r.Interest.BaseRates.Small},
		{"base_rates.medium", r.Interest.BaseRates.Medium},
		{"base_rates.large", r.Interest.BaseRates.Large},
		{"fees.monthly_service_fee", r.Fees.MonthlyServiceFee},
		{"fees.initiation.base_amount", r.Fees.Initiation.BaseAmount},
		{"fees.initiation.percentage_above_threshold", r.Fees.Initiation.PercentageAboveThreshold},
		{"fees.initiation.maximum_fee", r.Fees.Initiation.MaximumFee},
		{"fees.credit_life.monthly_rate_percentage", r.Fees.CreditLife.MonthlyRatePercentage},
		{"affordability.max_debt_to_income_ratio", r.Affordability.MaxDebtToIncomeRatio},
	} {
		if rate.value.IsNegative() {
			return fmt.Errorf("%s must not be negative", rate.name)
		}
	}

	if len(r.Interest.RiskBands) == 0 {
		return fmt.Errorf("interest: at least one risk band is required")
	}
	last := r.Interest.RiskBands[len(r.Interest.RiskBands)-1]
	if last.MaxDTI != nil || last.MinDisposableIncome != nil {
		return fmt.Errorf("interest: final risk band %q must be unconstrained so every applicant matches a band", last.Category)
	}

	for _, bounds := range []struct {
		tier   LoanTier
		bounds TermBounds
	}{
		{TierSmall, r.Terms.Small},
		{TierMedium, r.Terms.Medium},
		{TierLarge, r.Terms.Large},
	} {
		if bounds.bounds.MinMonths <= 0 || bounds.bounds.MaxMonths < bounds.bounds.MinMonths {
			return fmt.Errorf("terms: invalid bounds for %s tier", bounds.tier)
		}
	}

	return nil
}

// DefaultRules returns the baseline lending policy used when no persisted
// rule set exists yet. Amounts are in ZAR.
func DefaultRules() *LendingRules {
	dtiPtr := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	return &LendingRules{
		MaxLoanAmount: decimal.NewFromInt(150000),
		AutoApproval: AutoApprovalSettings{
			Enabled:                     true,
			MaxAutoApprovalAmount:       decimal.NewFromInt(30000),
			MinimumMonthlyGrossIncome:   decimal.NewFromInt(5000),
			MinimumMonthlyNetIncome:     decimal.NewFromInt(4000),
			RequireDocumentVerification: false,
			RequireCreditCheck:          false,
		},
		Fees: FeeSettings{
			Initiation: InitiationFeeSettings{
				Enabled:                  true,
				BaseAmount:               decimal.NewFromInt(165),
				PercentageAboveThreshold: decimal.NewFromInt(10),
				ThresholdAmount:          decimal.NewFromInt(1000),
				MaximumFee:               decimal.NewFromInt(1050),
			},
			MonthlyServiceFee: decimal.NewFromInt(60),
			CreditLife: CreditLifeSettings{
				MonthlyRatePercentage: decimal.RequireFromString("0.3"),
				RequiredAboveAmount:   decimal.NewFromInt(15000),
			},
		},
		Interest: InterestSettings{
			BaseRates: PrincipalTierRates{
				Small:  decimal.RequireFromString("27.5"),
				Medium: decimal.RequireFromString("24.0"),
				Large:  decimal.RequireFromString("21.0"),
			},
			Tiers: PrincipalTiers{
				SmallMax:  decimal.NewFromInt(30000),
				MediumMax: decimal.NewFromInt(80000),
			},
			RiskBands: []RiskBand{
				{Category: CategoryExcellent, MaxDTI: dtiPtr("25"), MinDisposableIncome: dtiPtr("8000"), RateAdjustment: decimal.RequireFromString("-2.5")},
				{Category: CategoryGood, MaxDTI: dtiPtr("35"), MinDisposableIncome: dtiPtr("5000"), RateAdjustment: decimal.RequireFromString("-1.0")},
				{Category: CategoryAverage, MaxDTI: dtiPtr("45"), MinDisposableIncome: dtiPtr("3000"), RateAdjustment: decimal.Zero},
				{Category: CategoryBelowAverage, MaxDTI: dtiPtr("55"), MinDisposableIncome: dtiPtr("1500"), RateAdjustment: decimal.RequireFromString("2.0")},
				{Category: CategoryPoor, RateAdjustment: decimal.RequireFromString("4.0")},
			},
			Limits: RateLimits{
				MinimumRate: decimal.RequireFromString("5.0"),
				MaximumRate: decimal.RequireFromString("27.75"),
			},
		},
		Terms: LoanTermSettings{
			Small:  TermBounds{MinMonths: 3, MaxMonths: 18},
			Medium: TermBounds{MinMonths: 6, MaxMonths: 36},
			Large:  TermBounds{MinMonths: 12, MaxMonths: 60},
		},
		Affordability: AffordabilitySettings{
			MaxDebtToIncomeRatio:             decimal.NewFromInt(45),
			MinimumDisposableIncomeAfterLoan: decimal.NewFromInt(1500),
			MinimumResidualAmount:            decimal.NewFromInt(300),
		},
	}
}
