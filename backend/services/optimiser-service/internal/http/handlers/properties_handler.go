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

// NewAddPropertyHandler handles POST /properties: register a metered
// property, optionally with its initial devices.
func NewAddPropertyHandler(optimiser *service.OptimiserService) http.HandlerFunc {
	type deviceRequest struct {
		DeviceName    string  `json:"device_name"`
		AverageDrawKW float64 `json:"average_draw_kw"`
		IsShiftable   bool    `json:"is_shiftable"`
	}
	type request struct {
		Address   string          `json:"address"`
		Location  string          `json:"location"`
		SqFootage int             `json:"sq_footage"`
		MpanID    string          `json:"mpan_id"`
		TariffID  int64           `json:"tariff_id"`
		Devices   []deviceRequest `json:"devices"`
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

		req.Address = strings.TrimSpace(req.Address)
		req.MpanID = strings.TrimSpace(req.MpanID)
		if req.Address == "" || req.MpanID == "" || req.TariffID == 0 {
			writeError(w, http.StatusBadRequest, "address, mpan_id and tariff_id are required")
			return
		}

		property := models.Property{
			Address:   req.Address,
			Location:  strings.TrimSpace(req.Location),
			SqFootage: req.SqFootage,
			MpanID:    req.MpanID,
			TariffID:  req.TariffID,
			Devices:   make([]models.Device, 0, len(req.Devices)),
		}
		for _, d := range req.Devices {
			name := strings.TrimSpace(d.DeviceName)
			if name == "" || d.AverageDrawKW < 0 {
				writeError(w, http.StatusBadRequest, "each device needs a name and a non-negative average_draw_kw")
				return
			}
			property.Devices = append(property.Devices, models.Device{
				Name:          name,
				AverageDrawKW: d.AverageDrawKW,
				IsShiftable:   d.IsShiftable,
			})
		}

		if err := optimiser.CreateProperty(r.Context(), principal, &property); err != nil {
			switch {
			case errors.Is(err, repository.ErrTariffNotFound):
				writeError(w, http.StatusNotFound, "tariff not found")
			case errors.Is(err, service.ErrRoleUnassigned):
				writeError(w, http.StatusForbidden, "user role not yet assigned")
			default:
				writeError(w, http.StatusInternalServerError, "failed to create property")
			}
			return
		}

		writeJSON(w, http.StatusCreated, property)
	}
}
