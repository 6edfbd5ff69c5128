package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/kasicredit/lending-engine/pkg/errors"
)

// Application statuses. The engine produces the first three; review moves a
// manual_review application to approved or declined.
const (
	ApplicationStatusAutoApproved = "auto_approved"
	ApplicationStatusManualReview = "manual_review"
	ApplicationStatusRejected     = "rejected"
	ApplicationStatusApproved     = "approved"
	ApplicationStatusDeclined     = "declined"
)

// MonthlyExpenses is the applicant's monthly expense breakdown.
type MonthlyExpenses struct {
	RentOrBond      decimal.Decimal `json:"rent_or_bond" db:"expense_rent_or_bond"`
	Living          decimal.Decimal `json:"living" db:"expense_living"`
	DebtObligations decimal.Decimal `json:"debt_obligations" db:"expense_debt_obligations"`
	Insurance       decimal.Decimal `json:"insurance" db:"expense_insurance"`
	Other           decimal.Decimal `json:"other" db:"expense_other"`
}

// Total sums all expense lines.
func (e MonthlyExpenses) Total() decimal.Decimal {
	return e.RentOrBond.Add(e.Living).Add(e.DebtObligations).Add(e.Insurance).Add(e.Other)
}

// CreditCheckResult carries the outcome of an external credit bureau check,
// when one has been performed.
type CreditCheckResult struct {
	IsUnderDebtReview  bool `json:"is_under_debt_review"`
	HasBeenBlacklisted bool `json:"has_been_blacklisted"`
	Passed             bool `json:"passed"`
}

// LoanApplicationSnapshot is the evaluation input: everything the decision
// engine needs about one application, detached from persistence.
type LoanApplicationSnapshot struct {
	Principal          decimal.Decimal    `json:"principal"`
	TermMonths         int                `json:"term_months"`
	Purpose            string             `json:"purpose"`
	MonthlyGrossIncome decimal.Decimal    `json:"monthly_gross_income"`
	MonthlyNetIncome   decimal.Decimal    `json:"monthly_net_income"`
	Expenses           MonthlyExpenses    `json:"expenses"`
	ConsentCreditCheck bool               `json:"consent_credit_check"`
	ConsentLifeCover   bool               `json:"consent_life_cover"`
	DocumentsVerified  bool               `json:"documents_verified"`
	CreditCheck        *CreditCheckResult `json:"credit_check,omitempty"`
}

// Validate fails fast on invalid input, identifying the offending field.
// Missing required financial figures are never silently defaulted.
func (s *LoanApplicationSnapshot) Validate() error {
	if s.Principal.LessThanOrEqual(decimal.Zero) {
		return customError.WrapInvalidSnapshot("principal", "must be positive")
	}
	if s.TermMonths <= 0 {
		return customError.WrapInvalidSnapshot("term_months", "must be positive")
	}
	if s.MonthlyGrossIncome.IsZero() && s.MonthlyNetIncome.IsZero() {
		return customError.WrapInvalidSnapshot("monthly_gross_income", "income figures are required")
	}
	if s.MonthlyNetIncome.LessThanOrEqual(decimal.Zero) {
		return customError.WrapInvalidSnapshot("monthly_net_income", "must be positive")
	}
	for _, expense := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"expenses.rent_or_bond", s.Expenses.RentOrBond},
		{"expenses.living", s.Expenses.Living},
		{"expenses.debt_obligations", s.Expenses.DebtObligations},
		{"expenses.insurance", s.Expenses.Insurance},
		{"expenses.other", s.Expenses.Other},
	} {
		if expense.value.IsNegative() {
			return customError.WrapInvalidSnapshot(expense.name, "must not be negative")
		}
	}
	return nil
}

// LoanApplication is the persisted application record: the snapshot plus the
// evaluation outcome attached by the workflow.
type LoanApplication struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	ApplicantID        string          `json:"applicant_id" db:"applicant_id"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	TermMonths         int             `json:"term_months" db:"term_months"`
	Purpose            string          `json:"purpose" db:"purpose"`
	MonthlyGrossIncome decimal.Decimal `json:"monthly_gross_income" db:"monthly_gross_income"`
	MonthlyNetIncome   decimal.Decimal `json:"monthly_net_income" db:"monthly_net_income"`
	Expenses           MonthlyExpenses `json:"expenses" db:"-"`
	ConsentCreditCheck bool            `json:"consent_credit_check" db:"consent_credit_check"`
	ConsentLifeCover   bool            `json:"consent_life_cover" db:"consent_life_cover"`
	DocumentsVerified  bool            `json:"documents_verified" db:"documents_verified"`
	IsUnderDebtReview  bool            `json:"is_under_debt_review" db:"is_under_debt_review"`
	HasBeenBlacklisted bool            `json:"has_been_blacklisted" db:"has_been_blacklisted"`
	CreditCheckDone    bool            `json:"credit_check_done" db:"credit_check_done"`
	CreditCheckPassed  bool            `json:"credit_check_passed" db:"credit_check_passed"`

	Status          string          `json:"status" db:"status"`
	DecisionReasons ReasonList      `json:"decision_reasons" db:"decision_reasons"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`

	AffordabilityCategory AffordabilityCategory `json:"affordability_category" db:"affordability_category"`
	DebtToIncomeRatio     decimal.Decimal       `json:"debt_to_income_ratio" db:"debt_to_income_ratio"`
	DisposableIncome      decimal.Decimal       `json:"disposable_income" db:"disposable_income"`
	CanAffordLoan         bool                  `json:"can_afford_loan" db:"can_afford_loan"`

	InitiationFee      decimal.Decimal `json:"initiation_fee" db:"initiation_fee"`
	MonthlyServiceFee  decimal.Decimal `json:"monthly_service_fee" db:"monthly_service_fee"`
	MonthlyCreditLife  decimal.Decimal `json:"monthly_credit_life" db:"monthly_credit_life"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment" db:"monthly_installment"`
	TotalRepayable     decimal.Decimal `json:"total_repayable" db:"total_repayable"`
	ReviewedBy         string          `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewNote         string          `json:"review_note,omitempty" db:"review_note"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// Snapshot rebuilds the evaluation input from the persisted record, used when
// an application is re-evaluated against current rules.
func (a *LoanApplication) Snapshot() *LoanApplicationSnapshot {
	snap := &LoanApplicationSnapshot{
		Principal:          a.Principal,
		TermMonths:         a.TermMonths,
		Purpose:            a.Purpose,
		MonthlyGrossIncome: a.MonthlyGrossIncome,
		MonthlyNetIncome:   a.MonthlyNetIncome,
		Expenses:           a.Expenses,
		ConsentCreditCheck: a.ConsentCreditCheck,
		ConsentLifeCover:   a.ConsentLifeCover,
		DocumentsVerified:  a.DocumentsVerified,
	}
	if a.CreditCheckDone {
		snap.CreditCheck = &CreditCheckResult{
			IsUnderDebtReview:  a.IsUnderDebtReview,
			HasBeenBlacklisted: a.HasBeenBlacklisted,
			Passed:             a.CreditCheckPassed,
		}
	}
	return snap
}

// ReasonList stores decision reasons as a JSON array column.
type ReasonList []string

func (r ReasonList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (r *ReasonList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported type %T for ReasonList", src)
	}
}

// DTOs for requests and responses

type CreateApplicationRequest struct {
	ApplicantID        string             `json:"applicant_id" validate:"required"`
	Principal          decimal.Decimal    `json:"principal" validate:"required"`
	TermMonths         int                `json:"term_months" validate:"required,gt=0"`
	Purpose            string             `json:"purpose"`
	MonthlyGrossIncome decimal.Decimal    `json:"monthly_gross_income" validate:"required"`
	MonthlyNetIncome   decimal.Decimal    `json:"monthly_net_income" validate:"required"`
	Expenses           MonthlyExpenses    `json:"expenses"`
	ConsentCreditCheck bool               `json:"consent_credit_check"`
	ConsentLifeCover   bool               `json:"consent_life_cover"`
	DocumentsVerified  bool               `json:"documents_verified"`
	CreditCheck        *CreditCheckResult `json:"credit_check,omitempty"`
}

// Snapshot converts the request into an evaluation input.
func (r *CreateApplicationRequest) Snapshot() *LoanApplicationSnapshot {
	return &LoanApplicationSnapshot{
		Principal:          r.Principal,
		TermMonths:         r.TermMonths,
		Purpose:            r.Purpose,
		MonthlyGrossIncome: r.MonthlyGrossIncome,
		MonthlyNetIncome:   r.MonthlyNetIncome,
		Expenses:           r.Expenses,
		ConsentCreditCheck: r.ConsentCreditCheck,
		ConsentLifeCover:   r.ConsentLifeCover,
		DocumentsVerified:  r.DocumentsVerified,
		CreditCheck:        r.CreditCheck,
	}
}

type CreateApplicationResponse struct {
	Application   *LoanApplication     `json:"application"`
	Decision      *Decision            `json:"decision"`
	Affordability *AffordabilityResult `json:"affordability"`
	Quote         *RateAndFeeResult    `json:"quote"`
	Loan          *Loan                `json:"loan,omitempty"`
}

type QuoteRequest struct {
	Principal          decimal.Decimal `json:"principal" validate:"required"`
	TermMonths         int             `json:"term_months" validate:"required,gt=0"`
	MonthlyGrossIncome decimal.Decimal `json:"monthly_gross_income" validate:"required"`
	MonthlyNetIncome   decimal.Decimal `json:"monthly_net_income" validate:"required"`
	Expenses           MonthlyExpenses `json:"expenses"`
	ConsentLifeCover   bool            `json:"consent_life_cover"`
}

type ReviewApplicationRequest struct {
	Approve    bool   `json:"approve"`
	ReviewedBy string `json:"reviewed_by" validate:"required"`
	Note       string `json:"note"`
}
