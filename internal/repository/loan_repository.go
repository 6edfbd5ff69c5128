package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kasicredit/lending-engine/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, loan_id, application_id, principal, interest_rate, term_months,
		                   monthly_installment, monthly_service_fee, monthly_credit_life,
		                   total_repayable, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.LoanID,
		loan.ApplicationID,
		loan.Principal,
		loan.InterestRate,
		loan.TermMonths,
		loan.MonthlyInstallment,
		loan.MonthlyServiceFee,
		loan.MonthlyCreditLife,
		loan.TotalRepayable,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT id, loan_id, application_id, principal, interest_rate, term_months,
		       monthly_installment, monthly_service_fee, monthly_credit_life,
		       total_repayable, status, created_at, updated_at
		FROM loans
		WHERE loan_id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, loanID)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, loanID string, status string) error {
	query := `
		UPDATE loans
		SET status = $2, updated_at = $3
		WHERE loan_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, loanID, status, time.Now())
	return err
}

func (r *loanRepository) CreateSchedule(ctx context.Context, schedules []*domain.RepaymentSchedule) error {
	query := `
		INSERT INTO repayment_schedule (id, loan_id, month_number, due_amount, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, schedule := range schedules {
		_, err = tx.ExecContext(ctx, query,
			schedule.ID,
			schedule.LoanID,
			schedule.MonthNumber,
			schedule.DueAmount,
			schedule.DueDate,
			schedule.Status,
			schedule.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID string) ([]*domain.RepaymentSchedule, error) {
	query := `
		SELECT id, loan_id, month_number, due_amount, due_date, status, created_at
		FROM repayment_schedule
		WHERE loan_id = $1
		ORDER BY month_number
	`

	var schedules []*domain.RepaymentSchedule
	err := r.db.SelectContext(ctx, &schedules, query, loanID)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *loanRepository) UpdateScheduleStatus(ctx context.Context, loanID string, monthNumber int, status string) error {
	query := `
		UPDATE repayment_schedule
		SET status = $3
		WHERE loan_id = $1 AND month_number = $2
	`

	_, err := r.db.ExecContext(ctx, query, loanID, monthNumber, status)
	return err
}

func (r *loanRepository) MarkOverdueSchedules(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE repayment_schedule
		SET status = 'overdue'
		WHERE status = 'pending' AND due_date < $1
	`

	result, err := r.db.ExecContext(ctx, query, asOf)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
