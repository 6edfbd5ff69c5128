package engine

import (
	"github.com/kasicredit/lending-engine/internal/domain"
)

// Evaluate runs one full evaluation: affordability, pricing, and the terminal
// decision. Every valid snapshot reaches exactly one of the three outcomes.
//
// Hard failures reject outright. Auto-approval requires every gate to hold;
// anything between rejection and auto-approval goes to manual review with the
// reasons that blocked it, in rule order, for the audit trail.
func Evaluate(snapshot *domain.LoanApplicationSnapshot, rules *domain.LendingRules) (*domain.EvaluationResult, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	affordability := assess(snapshot, rules)
	rate := Rate(snapshot.Principal, affordability.Category, rules)
	quote := Fees(snapshot.Principal, snapshot.TermMonths, rate, snapshot.ConsentLifeCover, rules)

	result := &domain.EvaluationResult{
		Affordability: affordability,
		Quote:         quote,
	}

	if reasons := rejectionReasons(snapshot, rules); len(reasons) > 0 {
		result.Decision = domain.Decision{Outcome: domain.OutcomeRejected, Reasons: reasons}
		return result, nil
	}

	if reasons := reviewReasons(snapshot, affordability, rules); len(reasons) > 0 {
		result.Decision = domain.Decision{Outcome: domain.OutcomeManualReviewRequired, Reasons: reasons}
		return result, nil
	}

	result.Decision = domain.Decision{
		Outcome: domain.OutcomeAutoApproved,
		Reasons: []string{domain.ReasonAutoApprovalCriteriaMet},
	}
	return result, nil
}

func rejectionReasons(snapshot *domain.LoanApplicationSnapshot, rules *domain.LendingRules) []string {
	var reasons []string

	if snapshot.Principal.GreaterThan(rules.MaxLoanAmount) {
		reasons = append(reasons, domain.ReasonExceedsMaxLoanAmount)
	}

	bounds := rules.Terms.TermBoundsFor(TierFor(snapshot.Principal, rules))
	if snapshot.TermMonths < bounds.MinMonths || snapshot.TermMonths > bounds.MaxMonths {
		reasons = append(reasons, domain.ReasonTermOutOfBounds)
	}

	if snapshot.CreditCheck != nil {
		if snapshot.CreditCheck.IsUnderDebtReview {
			reasons = append(reasons, domain.ReasonUnderDebtReview)
		}
		if snapshot.CreditCheck.HasBeenBlacklisted {
			reasons = append(reasons, domain.ReasonBlacklisted)
		}
	}

	return reasons
}

func reviewReasons(snapshot *domain.LoanApplicationSnapshot, affordability *domain.AffordabilityResult, rules *domain.LendingRules) []string {
	var reasons []string
	auto := rules.AutoApproval

	if !auto.Enabled {
		reasons = append(reasons, domain.ReasonAutoApprovalDisabled)
	}
	if snapshot.Principal.GreaterThan(auto.MaxAutoApprovalAmount) {
		reasons = append(reasons, domain.ReasonAboveAutoApprovalLimit)
	}
	if snapshot.MonthlyGrossIncome.LessThan(auto.MinimumMonthlyGrossIncome) {
		reasons = append(reasons, domain.ReasonGrossIncomeBelowMinimum)
	}
	if snapshot.MonthlyNetIncome.LessThan(auto.MinimumMonthlyNetIncome) {
		reasons = append(reasons, domain.ReasonNetIncomeBelowMinimum)
	}
	if !affordability.CanAffordLoan {
		reasons = append(reasons, domain.ReasonAffordabilityCheckFailed)
	}
	if auto.RequireDocumentVerification && !snapshot.DocumentsVerified {
		reasons = append(reasons, domain.ReasonDocumentsNotVerified)
	}
	if auto.RequireCreditCheck {
		switch {
		case snapshot.CreditCheck == nil:
			reasons = append(reasons, domain.ReasonCreditCheckOutstanding)
		case !snapshot.CreditCheck.Passed:
			reasons = append(reasons, domain.ReasonCreditCheckFailed)
		}
	}

	return reasons
}
