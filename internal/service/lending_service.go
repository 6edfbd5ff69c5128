package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/kasicredit/lending-engine/internal/config"
	"github.com/kasicredit/lending-engine/internal/domain"
	"github.com/kasicredit/lending-engine/internal/engine"
	"github.com/kasicredit/lending-engine/internal/repository"
	"github.com/kasicredit/lending-engine/internal/rules"
	customError "github.com/kasicredit/lending-engine/pkg/errors"
)

const (
	decisionCacheKeyPrefix = "lending:decision:"
	rulesCacheKey          = "lending:rules:active"
)

// LendingService drives the loan-application workflow around the decision
// engine: evaluate, persist, open loans on approval, take repayments, and
// manage the active rule set.
type LendingService struct {
	AppRepo       repository.ApplicationRepository
	LoanRepo      repository.LoanRepository
	RepaymentRepo repository.RepaymentRepository
	RulesRepo     repository.RulesRepository
	rules         *rules.Store
	redis         *redis.Client
	config        *config.Config
}

func NewLendingService(
	appRepo repository.ApplicationRepository,
	loanRepo repository.LoanRepository,
	repaymentRepo repository.RepaymentRepository,
	rulesRepo repository.RulesRepository,
	rulesStore *rules.Store,
	redisClient *redis.Client,
	cfg *config.Config,
) *LendingService {
	return &LendingService{
		AppRepo:       appRepo,
		LoanRepo:      loanRepo,
		RepaymentRepo: repaymentRepo,
		RulesRepo:     rulesRepo,
		rules:         rulesStore,
		redis:         redisClient,
		config:        cfg,
	}
}

// ActiveRules returns the rule set currently used for evaluations.
func (s *LendingService) ActiveRules() *domain.LendingRules {
	return s.rules.Active()
}

// SubmitApplication evaluates a new application against the active rules,
// persists the record with its decision, and opens a loan immediately when
// the decision is auto-approval.
func (s *LendingService) SubmitApplication(ctx context.Context, request *domain.CreateApplicationRequest) (*domain.CreateApplicationResponse, error) {
	snapshot := request.Snapshot()
	activeRules := s.rules.Active()

	result, err := engine.Evaluate(snapshot, activeRules)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	application := &domain.LoanApplication{
		ID:                 uuid.New(),
		ApplicantID:        request.ApplicantID,
		Principal:          request.Principal,
		TermMonths:         request.TermMonths,
		Purpose:            request.Purpose,
		MonthlyGrossIncome: request.MonthlyGrossIncome,
		MonthlyNetIncome:   request.MonthlyNetIncome,
		Expenses:           request.Expenses,
		ConsentCreditCheck: request.ConsentCreditCheck,
		ConsentLifeCover:   request.ConsentLifeCover,
		DocumentsVerified:  request.DocumentsVerified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if request.CreditCheck != nil {
		application.CreditCheckDone = true
		application.IsUnderDebtReview = request.CreditCheck.IsUnderDebtReview
		application.HasBeenBlacklisted = request.CreditCheck.HasBeenBlacklisted
		application.CreditCheckPassed = request.CreditCheck.Passed
	}

	applyEvaluation(application, result)

	if err = s.AppRepo.Create(ctx, application); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	response := &domain.CreateApplicationResponse{
		Application:   application,
		Decision:      &result.Decision,
		Affordability: result.Affordability,
		Quote:         result.Quote,
	}

	if result.Decision.Outcome == domain.OutcomeAutoApproved {
		loan, err := s.openLoan(ctx, application)
		if err != nil {
			return nil, err
		}
		response.Loan = loan
	}

	s.cacheDecision(ctx, application.ID, result)

	return response, nil
}

// Quote evaluates without persisting anything: the decision and pricing a
// snapshot would receive under the active rules.
func (s *LendingService) Quote(ctx context.Context, request *domain.QuoteRequest) (*domain.EvaluationResult, error) {
	snapshot := &domain.LoanApplicationSnapshot{
		Principal:          request.Principal,
		TermMonths:         request.TermMonths,
		MonthlyGrossIncome: request.MonthlyGrossIncome,
		MonthlyNetIncome:   request.MonthlyNetIncome,
		Expenses:           request.Expenses,
		ConsentLifeCover:   request.ConsentLifeCover,
	}

	return engine.Evaluate(snapshot, s.rules.Active())
}

// GetApplication retrieves a persisted application.
func (s *LendingService) GetApplication(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	application, err := s.AppRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return application, nil
}

// ListPendingReview returns applications awaiting manual review, oldest first.
func (s *LendingService) ListPendingReview(ctx context.Context, limit int) ([]*domain.LoanApplication, error) {
	applications, err := s.AppRepo.ListByStatus(ctx, domain.ApplicationStatusManualReview, limit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return applications, nil
}

// ReviewApplication applies an admin decision to a manual-review application.
// Approval opens a loan priced by the stored quote.
func (s *LendingService) ReviewApplication(ctx context.Context, id uuid.UUID, request *domain.ReviewApplicationRequest) (*domain.LoanApplication, *domain.Loan, error) {
	application, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if application.Status != domain.ApplicationStatusManualReview {
		return nil, nil, customError.WrapNotReviewable(id.String(), application.Status)
	}

	application.ReviewedBy = request.ReviewedBy
	application.ReviewNote = request.Note
	if request.Approve {
		application.Status = domain.ApplicationStatusApproved
	} else {
		application.Status = domain.ApplicationStatusDeclined
	}

	if err = s.AppRepo.Update(ctx, application); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	var loan *domain.Loan
	if request.Approve {
		if loan, err = s.openLoan(ctx, application); err != nil {
			return nil, nil, err
		}
	}

	return application, loan, nil
}

// ReEvaluate reruns the engine for a manual-review application against the
// current rules, refreshing the stored decision and quote. Used after a rules
// reload and by the scheduler.
func (s *LendingService) ReEvaluate(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	application, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if application.Status != domain.ApplicationStatusManualReview {
		return nil, customError.WrapNotReviewable(id.String(), application.Status)
	}

	result, err := engine.Evaluate(application.Snapshot(), s.rules.Active())
	if err != nil {
		return nil, err
	}

	applyEvaluation(application, result)
	application.UpdatedAt = time.Now()

	if err = s.AppRepo.Update(ctx, application); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if result.Decision.Outcome == domain.OutcomeAutoApproved {
		if _, err = s.openLoan(ctx, application); err != nil {
			return nil, err
		}
	}

	s.cacheDecision(ctx, application.ID, result)

	return application, nil
}

// ReEvaluatePendingReviews reruns the engine over the manual-review backlog.
// Returns how many applications moved out of manual review.
func (s *LendingService) ReEvaluatePendingReviews(ctx context.Context, limit int) (int, error) {
	pending, err := s.ListPendingReview(ctx, limit)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, application := range pending {
		updated, err := s.ReEvaluate(ctx, application.ID)
		if err != nil {
			return moved, err
		}
		if updated.Status != domain.ApplicationStatusManualReview {
			moved++
		}
	}

	return moved, nil
}

// MakeRepayment records a repayment against the earliest unpaid installment.
// The amount must match the monthly installment exactly.
func (s *LendingService) MakeRepayment(ctx context.Context, loanID string, amount decimal.Decimal) (*domain.Repayment, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanAlreadyClosed(loanID)
	}

	if !amount.Equal(loan.MonthlyInstallment) {
		return nil, customError.WrapPaymentAmountMismatch(loan.MonthlyInstallment.String(), amount.String())
	}

	schedules, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	var earliestUnpaid *domain.RepaymentSchedule
	remaining := 0
	for _, schedule := range schedules {
		if schedule.Status != domain.ScheduleStatusPaid {
			remaining++
			if earliestUnpaid == nil {
				earliestUnpaid = schedule
			}
		}
	}
	if earliestUnpaid == nil {
		return nil, customError.WrapNoPendingInstallments(loanID)
	}

	now := time.Now()
	repayment := &domain.Repayment{
		ID:          uuid.New(),
		LoanID:      loanID,
		Amount:      amount,
		MonthNumber: earliestUnpaid.MonthNumber,
		PaidAt:      now,
		CreatedAt:   now,
	}

	if err = s.RepaymentRepo.Create(ctx, repayment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err = s.LoanRepo.UpdateScheduleStatus(ctx, loanID, earliestUnpaid.MonthNumber, domain.ScheduleStatusPaid); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if remaining == 1 {
		if err = s.LoanRepo.UpdateStatus(ctx, loanID, domain.LoanStatusClosed); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	return repayment, nil
}

// GetOutstanding returns the amount still owed on a loan: the full monthly
// installment over the term less everything repaid so far.
func (s *LendingService) GetOutstanding(ctx context.Context, loanID string) (decimal.Decimal, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	repayments, err := s.RepaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	var totalPaid decimal.Decimal
	for _, repayment := range repayments {
		totalPaid = totalPaid.Add(repayment.Amount)
	}

	totalDue := loan.MonthlyInstallment.Mul(decimal.NewFromInt(int64(loan.TermMonths)))

	return totalDue.Sub(totalPaid), nil
}

// GetSchedule returns the repayment schedule for a loan.
func (s *LendingService) GetSchedule(ctx context.Context, loanID string) ([]*domain.RepaymentSchedule, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}

	schedules, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return schedules, nil
}

// MarkOverdue flags pending installments past their due date as overdue.
func (s *LendingService) MarkOverdue(ctx context.Context) (int64, error) {
	marked, err := s.LoanRepo.MarkOverdueSchedules(ctx, time.Now())
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	return marked, nil
}

// UpdateRules validates and persists a new rule set, installs it atomically
// for subsequent evaluations, and mirrors it to the cache.
func (s *LendingService) UpdateRules(ctx context.Context, newRules *domain.LendingRules) error {
	if err := s.rules.Swap(newRules); err != nil {
		return err
	}

	if err := s.RulesRepo.Save(ctx, newRules); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.cacheRules(ctx, newRules)

	return nil
}

// ReloadRules re-reads the persisted rule set and swaps it in atomically.
func (s *LendingService) ReloadRules(ctx context.Context) (*domain.LendingRules, error) {
	loaded, err := s.RulesRepo.GetActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err = s.rules.Swap(loaded); err != nil {
		return nil, err
	}

	s.cacheRules(ctx, loaded)

	return loaded, nil
}

func (s *LendingService) getLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// openLoan creates the loan and its monthly repayment schedule from an
// approved application, priced by the figures stored on the application.
func (s *LendingService) openLoan(ctx context.Context, application *domain.LoanApplication) (*domain.Loan, error) {
	now := time.Now()
	loan := &domain.Loan{
		ID:                 uuid.New(),
		LoanID:             newLoanID(),
		ApplicationID:      application.ID,
		Principal:          application.Principal,
		InterestRate:       application.InterestRate,
		TermMonths:         application.TermMonths,
		MonthlyInstallment: application.MonthlyInstallment,
		MonthlyServiceFee:  application.MonthlyServiceFee,
		MonthlyCreditLife:  application.MonthlyCreditLife,
		TotalRepayable:     application.TotalRepayable,
		Status:             domain.LoanStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	startDate := now.Truncate(24 * time.Hour)
	schedules := make([]*domain.RepaymentSchedule, 0, loan.TermMonths)
	for month := 1; month <= loan.TermMonths; month++ {
		schedules = append(schedules, &domain.RepaymentSchedule{
			ID:          uuid.New(),
			LoanID:      loan.LoanID,
			MonthNumber: month,
			DueAmount:   loan.MonthlyInstallment,
			DueDate:     startDate.AddDate(0, month, 0),
			Status:      domain.ScheduleStatusPending,
			CreatedAt:   now,
		})
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.LoanRepo.CreateSchedule(ctx, schedules); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// cacheDecision stores the evaluation result for audit/notification readers.
// Cache failures are not fatal to the request.
func (s *LendingService) cacheDecision(ctx context.Context, id uuid.UUID, result *domain.EvaluationResult) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	s.redis.Set(ctx, decisionCacheKeyPrefix+id.String(), payload, s.config.Rules.DecisionCache)
}

func (s *LendingService) cacheRules(ctx context.Context, activeRules *domain.LendingRules) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(activeRules)
	if err != nil {
		return
	}

	s.redis.Set(ctx, rulesCacheKey, payload, s.config.Rules.CacheTTL)
}

// applyEvaluation writes the engine output onto the persisted record.
func applyEvaluation(application *domain.LoanApplication, result *domain.EvaluationResult) {
	switch result.Decision.Outcome {
	case domain.OutcomeAutoApproved:
		application.Status = domain.ApplicationStatusAutoApproved
	case domain.OutcomeRejected:
		application.Status = domain.ApplicationStatusRejected
	default:
		application.Status = domain.ApplicationStatusManualReview
	}
	application.DecisionReasons = result.Decision.Reasons

	application.AffordabilityCategory = result.Affordability.Category
	application.DebtToIncomeRatio = result.Affordability.DebtToIncomeRatio
	application.DisposableIncome = result.Affordability.DisposableIncome
	application.CanAffordLoan = result.Affordability.CanAffordLoan

	application.InterestRate = result.Quote.InterestRate
	application.InitiationFee = result.Quote.InitiationFee
	application.MonthlyServiceFee = result.Quote.MonthlyServiceFee
	application.MonthlyCreditLife = result.Quote.MonthlyCreditLifePremium
	application.MonthlyInstallment = result.Quote.MonthlyInstallment
	application.TotalRepayable = result.Quote.TotalRepayable
}

func newLoanID() string {
	return fmt.Sprintf("LN-%s", strings.ToUpper(uuid.NewString()[:8]))
}
