package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"greenshift/backend/services/optimiser-service/internal/http/middleware"
	"greenshift/backend/services/optimiser-service/internal/models"
	"greenshift/backend/services/optimiser-service/internal/service"
)

// NewContextHandler handles GET /context: the caller's properties and the
// tariffs they reference.
func NewContextHandler(optimiser *service.OptimiserService) http.HandlerFunc {
	type response struct {
		UserID     int64                    `json:"user_id"`
		Role       models.Role              `json:"role"`
		Properties []models.Property        `json:"properties"`
		Tariffs    map[string]models.Tariff `json:"tariffs"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		properties, tariffs, err := optimiser.UserContext(r.Context(), principal)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNoProperties):
				writeError(w, http.StatusNotFound, "no properties found for this user")
			case errors.Is(err, service.ErrRoleUnassigned):
				writeError(w, http.StatusForbidden, "user role not yet assigned")
			default:
				writeError(w, http.StatusInternalServerError, "failed to fetch user context")
			}
			return
		}

		keyed := make(map[string]models.Tariff, len(tariffs))
		for id, tariff := range tariffs {
			keyed[strconv.FormatInt(id, 10)] = tariff
		}

		writeJSON(w, http.StatusOK, response{
			UserID:     principal.UserID,
			Role:       principal.Role,
			Properties: properties,
			Tariffs:    keyed,
		})
	}
}
