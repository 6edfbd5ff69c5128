package domain

import "github.com/shopspring/decimal"

// DecisionOutcome is one of the three terminal evaluation states. Every valid
// snapshot reaches exactly one of them.
type DecisionOutcome string

const (
	OutcomeAutoApproved         DecisionOutcome = "auto_approved"
	OutcomeManualReviewRequired DecisionOutcome = "manual_review_required"
	OutcomeRejected             DecisionOutcome = "rejected"
)

// Decision reason codes, consumed by the audit trail. The reasons on a
// decision are ordered by the rule that triggered first.
const (
	ReasonExceedsMaxLoanAmount     = "exceeds maximum loan amount"
	ReasonTermOutOfBounds          = "term outside allowed range for loan size"
	ReasonUnderDebtReview          = "applicant is under debt review"
	ReasonBlacklisted              = "applicant has been blacklisted"
	ReasonAutoApprovalDisabled     = "auto approval is disabled"
	ReasonAboveAutoApprovalLimit   = "amount exceeds auto approval limit"
	ReasonGrossIncomeBelowMinimum  = "gross income below minimum"
	ReasonNetIncomeBelowMinimum    = "net income below minimum"
	ReasonAffordabilityCheckFailed = "affordability check failed"
	ReasonDocumentsNotVerified     = "required documents not verified"
	ReasonCreditCheckOutstanding   = "required credit check not completed"
	ReasonCreditCheckFailed        = "credit check not passed"
	ReasonAutoApprovalCriteriaMet  = "auto approval criteria met"
)

// Decision is the terminal outcome of an evaluation plus the rule reasons
// that produced it.
type Decision struct {
	Outcome DecisionOutcome `json:"outcome"`
	Reasons []string        `json:"reasons"`
}

// AffordabilityResult is the derived affordability verdict for a snapshot.
// DebtToIncomeInfinite is set instead of dividing by a non-positive gross
// income; an infinite ratio fails every constrained band.
type AffordabilityResult struct {
	TotalMonthlyExpenses decimal.Decimal       `json:"total_monthly_expenses"`
	DisposableIncome     decimal.Decimal       `json:"disposable_income"`
	DebtToIncomeRatio    decimal.Decimal       `json:"debt_to_income_ratio"`
	DebtToIncomeInfinite bool                  `json:"debt_to_income_infinite"`
	Category             AffordabilityCategory `json:"category"`
	CanAffordLoan        bool                  `json:"can_afford_loan"`
}

// RateAndFeeResult is the computed pricing for a loan: the risk-adjusted
// clamped rate plus the full fee and installment breakdown.
type RateAndFeeResult struct {
	InterestRate                    decimal.Decimal `json:"interest_rate"`
	InitiationFee                   decimal.Decimal `json:"initiation_fee"`
	MonthlyServiceFee               decimal.Decimal `json:"monthly_service_fee"`
	MonthlyCreditLifePremium        decimal.Decimal `json:"monthly_credit_life_premium"`
	TotalInterest                   decimal.Decimal `json:"total_interest"`
	TotalFees                       decimal.Decimal `json:"total_fees"`
	PrincipalAndInterestInstallment decimal.Decimal `json:"principal_and_interest_installment"`
	MonthlyInstallment              decimal.Decimal `json:"monthly_installment"`
	TotalRepayable                  decimal.Decimal `json:"total_repayable"`
}

// EvaluationResult bundles everything one evaluation produces. The caller
// owns persisting it onto the application record.
type EvaluationResult struct {
	Decision      Decision             `json:"decision"`
	Affordability *AffordabilityResult `json:"affordability"`
	Quote         *RateAndFeeResult    `json:"quote"`
}
