package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"greenshift/backend/services/optimiser-service/internal/engine"
	"greenshift/backend/services/optimiser-service/internal/http/middleware"
	"greenshift/backend/services/optimiser-service/internal/models"
	"greenshift/backend/services/optimiser-service/internal/repository"
	"greenshift/backend/services/optimiser-service/internal/service"
)

// NewRunScenarioHandler handles POST /run-scenario.
func NewRunScenarioHandler(optimiser *service.OptimiserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req models.ShiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.DeviceID == 0 || req.OriginalTimestamp.IsZero() || req.NewTimestamp.IsZero() {
			writeError(w, http.StatusBadRequest, "device_id, original_timestamp and new_timestamp are required")
			return
		}

		report, err := optimiser.RunScenario(r.Context(), principal, req)
		if err != nil {
			writeScenarioError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// writeScenarioError maps service and engine failures onto HTTP statuses,
// keeping caller-caused rejections distinguishable from internal bugs.
func writeScenarioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound),
		errors.Is(err, service.ErrNoProperties),
		errors.Is(err, repository.ErrPropertyNotFound),
		errors.Is(err, repository.ErrTariffNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, service.ErrRoleUnassigned):
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	var engErr *engine.Error
	if errors.As(err, &engErr) {
		switch engErr.Kind {
		case engine.KindNotFound:
			writeError(w, http.StatusNotFound, engErr.Message)
		case engine.KindInvalidOperation:
			writeError(w, http.StatusBadRequest, engErr.Message)
		case engine.KindInvalidInput:
			writeError(w, http.StatusUnprocessableEntity, engErr.Message)
		default:
			writeError(w, http.StatusInternalServerError, "internal simulation error")
		}
		return
	}

	writeError(w, http.StatusInternalServerError, "failed to run scenario")
}
