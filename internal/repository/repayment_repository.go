package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kasicredit/lending-engine/internal/domain"
)

type repaymentRepository struct {
	db *sqlx.DB
}

func NewRepaymentRepository(db *sqlx.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	query := `
		INSERT INTO repayments (id, loan_id, amount, month_number, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		repayment.ID,
		repayment.LoanID,
		repayment.Amount,
		repayment.MonthNumber,
		repayment.PaidAt,
		repayment.CreatedAt,
	)

	return err
}

func (r *repaymentRepository) GetByLoanID(ctx context.Context, loanID string) ([]*domain.Repayment, error) {
	query := `
		SELECT id, loan_id, amount, month_number, paid_at, created_at
		FROM repayments
		WHERE loan_id = $1
		ORDER BY month_number
	`

	var repayments []*domain.Repayment
	err := r.db.SelectContext(ctx, &repayments, query, loanID)
	if err != nil {
		return nil, err
	}

	return repayments, nil
}
