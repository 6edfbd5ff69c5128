package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/kasicredit/lending-engine/internal/domain"
	"github.com/kasicredit/lending-engine/internal/service"
	customError "github.com/kasicredit/lending-engine/pkg/errors"
	"github.com/kasicredit/lending-engine/pkg/response"
)

const defaultReviewListLimit = 50

type ApplicationHandler struct {
	service   *service.LendingService
	validator *validator.Validate
}

func NewApplicationHandler(service *service.LendingService) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		validator: newValidator(),
	}
}

// newValidator registers decimal.Decimal with the validator so numeric tags
// (required, gt, gte) apply to money fields.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// CreateApplication handles POST /applications
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.SubmitApplication(r.Context(), &request)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Created(w, result)
}

// GetApplication handles GET /applications/{applicationId}
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}

	application, err := h.service.GetApplication(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, application)
}

// ListPendingReview handles GET /applications/reviews
func (h *ApplicationHandler) ListPendingReview(w http.ResponseWriter, r *http.Request) {
	limit := defaultReviewListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, "limit must be a positive integer", err)
			return
		}
		limit = parsed
	}

	applications, err := h.service.ListPendingReview(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, applications)
}

// ReviewApplication handles POST /applications/{applicationId}/review
func (h *ApplicationHandler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}

	var request domain.ReviewApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	application, loan, err := h.service.ReviewApplication(r.Context(), id, &request)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"application": application,
		"loan":        loan,
	})
}

// ReEvaluate handles POST /applications/{applicationId}/reevaluate
func (h *ApplicationHandler) ReEvaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}

	application, err := h.service.ReEvaluate(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, application)
}

// Quote handles POST /quotes: evaluation without persistence.
func (h *ApplicationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var request domain.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.Quote(r.Context(), &request)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, result)
}

func applicationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["applicationId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "Invalid application id", err)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps business error codes to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	switch businessErr.Code {
	case customError.ErrCodeApplicationNotFound, customError.ErrCodeLoanNotFound:
		response.NotFound(w, businessErr.Message)
	case customError.ErrCodeInvalidSnapshot, customError.ErrCodeInvalidRules,
		customError.ErrCodeNotReviewable, customError.ErrCodeLoanAlreadyClosed,
		customError.ErrCodePaymentAmountMismatch, customError.ErrCodeNoPendingInstallments:
		response.BadRequest(w, businessErr.Message, businessErr.Err)
	default:
		response.InternalServerError(w, businessErr.Message, businessErr.Err)
	}
}
