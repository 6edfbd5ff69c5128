package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive  = "active"
	LoanStatusClosed  = "closed"
	LoanStatusDefault = "default"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
)

// Loan represents a disbursed loan opened from an approved application.
type Loan struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	LoanID             string          `json:"loan_id" db:"loan_id"`
	ApplicationID      uuid.UUID       `json:"application_id" db:"application_id"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TermMonths         int             `json:"term_months" db:"term_months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment" db:"monthly_installment"`
	MonthlyServiceFee  decimal.Decimal `json:"monthly_service_fee" db:"monthly_service_fee"`
	MonthlyCreditLife  decimal.Decimal `json:"monthly_credit_life" db:"monthly_credit_life"`
	TotalRepayable     decimal.Decimal `json:"total_repayable" db:"total_repayable"`
	Status             string          `json:"status" db:"status"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// RepaymentSchedule is one month's installment on a loan.
type RepaymentSchedule struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      string          `json:"loan_id" db:"loan_id"`
	MonthNumber int             `json:"month_number" db:"month_number"`
	DueAmount   decimal.Decimal `json:"due_amount" db:"due_amount"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Repayment records a payment made against a loan.
type Repayment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      string          `json:"loan_id" db:"loan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	MonthNumber int             `json:"month_number" db:"month_number"`
	PaidAt      time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type MakeRepaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type OutstandingResponse struct {
	LoanID      string          `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type ScheduleResponse struct {
	LoanID   string               `json:"loan_id"`
	Schedule []*RepaymentSchedule `json:"schedule"`
}
