package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/kasicredit/lending-engine/internal/domain"
	"github.com/kasicredit/lending-engine/internal/service"
	"github.com/kasicredit/lending-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LendingService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LendingService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: newValidator(),
	}
}

// MakeRepayment handles POST /loans/{loanId}/repayments
func (h *LoanHandler) MakeRepayment(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.MakeRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	repayment, err := h.service.MakeRepayment(r.Context(), loanID, request.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Created(w, repayment)
}

// GetOutstanding handles GET /loans/{loanId}/outstanding
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, domain.OutstandingResponse{
		LoanID:      loanID,
		Outstanding: outstanding,
	})
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, domain.ScheduleResponse{
		LoanID:   loanID,
		Schedule: schedule,
	})
}
