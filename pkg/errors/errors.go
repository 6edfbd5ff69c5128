package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrApplicationNotFound   = errors.New("application not found")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrInvalidSnapshot       = errors.New("invalid application snapshot")
	ErrInvalidRules          = errors.New("invalid lending rules")
	ErrNotReviewable         = errors.New("application is not awaiting manual review")
	ErrLoanAlreadyClosed     = errors.New("loan is already closed")
	ErrPaymentAmountMismatch = errors.New("repayment amount must match monthly installment exactly")
	ErrNoPendingInstallments = errors.New("no pending installments")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeApplicationNotFound   = "APPLICATION_NOT_FOUND"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeInvalidSnapshot       = "INVALID_SNAPSHOT"
	ErrCodeInvalidRules          = "INVALID_RULES"
	ErrCodeNotReviewable         = "NOT_REVIEWABLE"
	ErrCodeLoanAlreadyClosed     = "LOAN_ALREADY_CLOSED"
	ErrCodePaymentAmountMismatch = "PAYMENT_AMOUNT_MISMATCH"
	ErrCodeNoPendingInstallments = "NO_PENDING_INSTALLMENTS"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapApplicationNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Application with ID %s not found", id),
		ErrApplicationNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

// WrapInvalidSnapshot reports a snapshot validation failure naming the
// offending field.
func WrapInvalidSnapshot(field, reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidSnapshot,
		fmt.Sprintf("field %s: %s", field, reason),
		ErrInvalidSnapshot,
	)
}

func WrapInvalidRules(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRules,
		"lending rules failed validation",
		err,
	)
}

func WrapNotReviewable(id, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotReviewable,
		fmt.Sprintf("Application %s has status %s", id, status),
		ErrNotReviewable,
	)
}

func WrapLoanAlreadyClosed(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyClosed,
		fmt.Sprintf("Loan with ID %s is already closed", loanID),
		ErrLoanAlreadyClosed,
	)
}

func WrapPaymentAmountMismatch(expected, actual string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentAmountMismatch,
		fmt.Sprintf("Repayment amount %s does not match expected installment %s", actual, expected),
		ErrPaymentAmountMismatch,
	)
}

func WrapNoPendingInstallments(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoPendingInstallments,
		fmt.Sprintf("Loan with ID %s has no pending installments", loanID),
		ErrNoPendingInstallments,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
