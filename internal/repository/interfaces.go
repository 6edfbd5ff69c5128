package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kasicredit/lending-engine/internal/domain"
)

// ApplicationRepository defines the interface for loan application records
type ApplicationRepository interface {
	// Create persists a new application with its evaluation outcome
	Create(ctx context.Context, application *domain.LoanApplication) error

	// GetByID retrieves an application by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error)

	// Update persists the mutable evaluation/review fields of an application
	Update(ctx context.Context, application *domain.LoanApplication) error

	// ListByStatus retrieves applications in a given status, oldest first
	ListByStatus(ctx context.Context, status string, limit int) ([]*domain.LoanApplication, error)
}

// LoanRepository defines the interface for loan and schedule data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByLoanID retrieves a loan by its loan ID
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)

	// UpdateStatus updates a loan's status
	UpdateStatus(ctx context.Context, loanID string, status string) error

	// CreateSchedule creates repayment schedule entries
	CreateSchedule(ctx context.Context, schedules []*domain.RepaymentSchedule) error

	// GetScheduleByLoanID retrieves the repayment schedule by loan ID
	GetScheduleByLoanID(ctx context.Context, loanID string) ([]*domain.RepaymentSchedule, error)

	// UpdateScheduleStatus updates the status of a specific schedule entry
	UpdateScheduleStatus(ctx context.Context, loanID string, monthNumber int, status string) error

	// MarkOverdueSchedules flags pending entries past their due date as overdue
	MarkOverdueSchedules(ctx context.Context, asOf time.Time) (int64, error)
}

// RepaymentRepository defines the interface for repayment data operations
type RepaymentRepository interface {
	// Create creates a new repayment record
	Create(ctx context.Context, repayment *domain.Repayment) error

	// GetByLoanID retrieves all repayments for a loan
	GetByLoanID(ctx context.Context, loanID string) ([]*domain.Repayment, error)
}

// RulesRepository defines the interface for the persisted lending rules document
type RulesRepository interface {
	// GetActive retrieves the active rule set
	GetActive(ctx context.Context) (*domain.LendingRules, error)

	// Save persists a rule set and marks it active
	Save(ctx context.Context, rules *domain.LendingRules) error
}
