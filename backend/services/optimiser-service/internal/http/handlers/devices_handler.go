package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"greenshift/backend/services/optimiser-service/internal/http/middleware"
	"greenshift/backend/services/optimiser-service/internal/models"
	"greenshift/backend/services/optimiser-service/internal/repository"
	"greenshift/backend/services/optimiser-service/internal/service"
)

// NewAddDeviceHandler handles POST /devices: attach an appliance to one of
// the caller's properties.
func NewAddDeviceHandler(optimiser *service.OptimiserService) http.HandlerFunc {
	type request struct {
		PropertyID    int64   `json:"property_id"`
		DeviceName    string  `json:"device_name"`
		AverageDrawKW float64 `json:"average_draw_kw"`
		IsShiftable   bool    `json:"is_shiftable"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		req.DeviceName = strings.TrimSpace(req.DeviceName)
		if req.PropertyID == 0 || req.DeviceName == "" {
			writeError(w, http.StatusBadRequest, "property_id and device_name are required")
			return
		}
		if req.AverageDrawKW < 0 {
			writeError(w, http.StatusBadRequest, "average_draw_kw must not be negative")
			return
		}

		device := models.Device{
			Name:          req.DeviceName,
			AverageDrawKW: req.AverageDrawKW,
			IsShiftable:   req.IsShiftable,
		}
		if err := optimiser.AddDevice(r.Context(), principal, req.PropertyID, &device); err != nil {
			switch {
			case errors.Is(err, service.ErrNoProperties), errors.Is(err, repository.ErrPropertyNotFound):
				writeError(w, http.StatusNotFound, "property not found for this user")
			case errors.Is(err, service.ErrRoleUnassigned):
				writeError(w, http.StatusForbidden, "user role not yet assigned")
			default:
				writeError(w, http.StatusInternalServerError, "failed to add device")
			}
			return
		}

		writeJSON(w, http.StatusCreated, device)
	}
}
