package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kasicredit/lending-engine/internal/domain"
	"github.com/kasicredit/lending-engine/internal/service"
	"github.com/kasicredit/lending-engine/pkg/response"
)

type RulesHandler struct {
	service *service.LendingService
}

func NewRulesHandler(service *service.LendingService) *RulesHandler {
	return &RulesHandler{service: service}
}

// GetRules handles GET /rules: the rule set currently used for evaluations.
func (h *RulesHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.ActiveRules())
}

// UpdateRules handles PUT /rules: validate, persist, and atomically install a
// new rule set.
func (h *RulesHandler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	var rules domain.LendingRules
	if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.service.UpdateRules(r.Context(), &rules); err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, &rules)
}

// ReloadRules handles POST /rules/reload: re-read the persisted rule set.
func (h *RulesHandler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.ReloadRules(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, rules)
}
