package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/kasicredit/lending-engine/internal/domain"
)

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `
	id, applicant_id, principal, term_months, purpose,
	monthly_gross_income, monthly_net_income,
	expense_rent_or_bond, expense_living, expense_debt_obligations, expense_insurance, expense_other,
	consent_credit_check, consent_life_cover, documents_verified,
	is_under_debt_review, has_been_blacklisted, credit_check_done, credit_check_passed,
	status, decision_reasons, interest_rate,
	affordability_category, debt_to_income_ratio, disposable_income, can_afford_loan,
	initiation_fee, monthly_service_fee, monthly_credit_life, monthly_installment, total_repayable,
	reviewed_by, review_note, created_at, updated_at
`

func (r *applicationRepository) Create(ctx context.Context, a *domain.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.ApplicantID, a.Principal, a.TermMonths, a.Purpose,
		a.MonthlyGrossIncome, a.MonthlyNetIncome,
		a.Expenses.RentOrBond, a.Expenses.Living, a.Expenses.DebtObligations, a.Expenses.Insurance, a.Expenses.Other,
		a.ConsentCreditCheck, a.ConsentLifeCover, a.DocumentsVerified,
		a.IsUnderDebtReview, a.HasBeenBlacklisted, a.CreditCheckDone, a.CreditCheckPassed,
		a.Status, a.DecisionReasons, a.InterestRate,
		a.AffordabilityCategory, a.DebtToIncomeRatio, a.DisposableIncome, a.CanAffordLoan,
		a.InitiationFee, a.MonthlyServiceFee, a.MonthlyCreditLife, a.MonthlyInstallment, a.TotalRepayable,
		a.ReviewedBy, a.ReviewNote, a.CreatedAt, a.UpdatedAt,
	)

	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`

	row := applicationRow{}
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (r *applicationRepository) Update(ctx context.Context, a *domain.LoanApplication) error {
	query := `
		UPDATE loan_applications
		SET status = $2, decision_reasons = $3, interest_rate = $4,
		    affordability_category = $5, debt_to_income_ratio = $6, disposable_income = $7, can_afford_loan = $8,
		    initiation_fee = $9, monthly_service_fee = $10, monthly_credit_life = $11,
		    monthly_installment = $12, total_repayable = $13,
		    reviewed_by = $14, review_note = $15, updated_at = $16
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Status, a.DecisionReasons, a.InterestRate,
		a.AffordabilityCategory, a.DebtToIncomeRatio, a.DisposableIncome, a.CanAffordLoan,
		a.InitiationFee, a.MonthlyServiceFee, a.MonthlyCreditLife,
		a.MonthlyInstallment, a.TotalRepayable,
		a.ReviewedBy, a.ReviewNote, time.Now(),
	)

	return err
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*domain.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`

	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query, status, limit); err != nil {
		return nil, err
	}

	applications := make([]*domain.LoanApplication, 0, len(rows))
	for i := range rows {
		applications = append(applications, rows[i].toDomain())
	}

	return applications, nil
}

// applicationRow flattens the expense breakdown for sqlx scanning.
type applicationRow struct {
	domain.LoanApplication
	ExpenseRentOrBond      decimal.Decimal `db:"expense_rent_or_bond"`
	ExpenseLiving          decimal.Decimal `db:"expense_living"`
	ExpenseDebtObligations decimal.Decimal `db:"expense_debt_obligations"`
	ExpenseInsurance       decimal.Decimal `db:"expense_insurance"`
	ExpenseOther           decimal.Decimal `db:"expense_other"`
}

func (row *applicationRow) toDomain() *domain.LoanApplication {
	a := row.LoanApplication
	a.Expenses = domain.MonthlyExpenses{
		RentOrBond:      row.ExpenseRentOrBond,
		Living:          row.ExpenseLiving,
		DebtObligations: row.ExpenseDebtObligations,
		Insurance:       row.ExpenseInsurance,
		Other:           row.ExpenseOther,
	}
	return &a
}
