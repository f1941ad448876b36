package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"greenshift/backend/services/optimiser-service/internal/http/middleware"
	"greenshift/backend/services/optimiser-service/internal/models"
	"greenshift/backend/services/optimiser-service/internal/service"
)

// NewUsageLogsHandler handles /usage-logs: GET lists a meter's readings in a
// window, POST stores a batch.
func NewUsageLogsHandler(optimiser *service.OptimiserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		switch r.Method {
		case http.MethodGet:
			listUsageLogs(w, r, optimiser, principal)
		case http.MethodPost:
			addUsageLogs(w, r, optimiser, principal)
		default:
			w.Header().Set("Allow", "GET, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func listUsageLogs(w http.ResponseWriter, r *http.Request, optimiser *service.OptimiserService, principal models.Principal) {
	query := r.URL.Query()
	mpanID := query.Get("mpan_id")
	if mpanID == "" {
		writeError(w, http.StatusBadRequest, "mpan_id is required")
		return
	}

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be RFC3339")
		return
	}

	readings, err := optimiser.UsageLogs(r.Context(), principal, mpanID, start, end)
	if err != nil {
		writeUsageError(w, err)
		return
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"readings": readings})
}

func addUsageLogs(w http.ResponseWriter, r *http.Request, optimiser *service.OptimiserService, principal models.Principal) {
	var req struct {
		Readings []models.Reading `json:"readings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Readings) == 0 {
		writeError(w, http.StatusBadRequest, "readings are required")
		return
	}

	if err := optimiser.AddUsageLogs(r.Context(), principal, req.Readings); err != nil {
		writeUsageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"stored": len(req.Readings)})
}

func writeUsageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoProperties):
		writeError(w, http.StatusNotFound, "meter does not belong to this user")
	case errors.Is(err, service.ErrRoleUnassigned):
		writeError(w, http.StatusForbidden, "user role not yet assigned")
	default:
		writeError(w, http.StatusInternalServerError, "failed to process usage logs")
	}
}
