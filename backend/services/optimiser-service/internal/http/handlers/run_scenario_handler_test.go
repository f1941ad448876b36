package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/http/middleware"
	"greenshift/backend/services/optimiser-service/internal/models"
	"greenshift/backend/services/optimiser-service/internal/repository"
	"greenshift/backend/services/optimiser-service/internal/service"
)

const testSecret = "test-secret"

var (
	peakTime    = time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
	offPeakTime = time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)
)

type stubPropertyStore struct {
	property *models.Property
}

func (s *stubPropertyStore) Create(context.Context, *models.Property) error { return nil }

func (s *stubPropertyStore) GetByID(_ context.Context, id int64) (*models.Property, error) {
	if s.property == nil || s.property.ID != id {
		return nil, repository.ErrPropertyNotFound
	}
	found := *s.property
	return &found, nil
}

func (s *stubPropertyStore) ListByPortfolio(context.Context, int64) ([]models.Property, error) {
	return nil, nil
}

func (s *stubPropertyStore) AddDevice(context.Context, int64, *models.Device) error {
	return nil
}

type stubTariffStore struct {
	tariff *models.Tariff
}

func (s *stubTariffStore) GetByID(_ context.Context, id int64) (*models.Tariff, error) {
	if s.tariff == nil || s.tariff.ID != id {
		return nil, repository.ErrTariffNotFound
	}
	found := *s.tariff
	return &found, nil
}

type stubUsageStore struct {
	readings []models.Reading
}

func (s *stubUsageStore) InsertBatch(context.Context, []models.Reading) error { return nil }

func (s *stubUsageStore) ListByMeter(context.Context, string, time.Time, time.Time) ([]models.Reading, error) {
	return s.readings, nil
}

func scenarioServer(withTariff bool) http.Handler {
	property := &models.Property{
		ID:       101,
		MpanID:   "12345",
		TariffID: 201,
		Devices: []models.Device{
			{ID: 1, PropertyID: 101, Name: "Washing Machine", AverageDrawKW: 1.5, IsShiftable: true},
			{ID: 2, PropertyID: 101, Name: "Oven", AverageDrawKW: 3.0, IsShiftable: false},
		},
	}
	tariffs := &stubTariffStore{}
	if withTariff {
		tariffs.tariff = &models.Tariff{
			ID:           201,
			RateSchedule: map[string]float64{"peak": 30.0, "off_peak": 10.0},
		}
	}
	usage := &stubUsageStore{readings: []models.Reading{
		{Timestamp: peakTime, MpanID: "12345", ConsumptionKWh: 2.0, ReadingType: models.ReadingTypeActual},
		{Timestamp: offPeakTime, MpanID: "12345", ConsumptionKWh: 0.5, ReadingType: models.ReadingTypeActual},
	}}

	svc := service.NewOptimiserService(&stubPropertyStore{property: property}, tariffs, usage, nil,
		service.Settings{}, zap.NewNop())
	return middleware.AuthMiddleware(testSecret)(NewRunScenarioHandler(svc))
}

func bearerToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func homeownerToken(t *testing.T) string {
	return bearerToken(t, jwt.MapClaims{
		"user_id":     float64(7),
		"role":        "homeowner",
		"property_id": float64(101),
	})
}

func scenarioBody(deviceID int64) string {
	return fmt.Sprintf(`{"device_id":%d,"original_timestamp":%q,"new_timestamp":%q}`,
		deviceID, peakTime.Format(time.RFC3339), offPeakTime.Format(time.RFC3339))
}

func postScenario(handler http.Handler, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/run-scenario", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRunScenarioHandler_ReturnsReport(t *testing.T) {
	rec := postScenario(scenarioServer(true), homeownerToken(t), scenarioBody(1))

	require.Equal(t, http.StatusOK, rec.Code)

	var report models.OptimisationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.InDelta(t, 65.0, report.BaselineCost, 1e-9)
	assert.InDelta(t, 50.0, report.ScenarioCost, 1e-9)
	assert.InDelta(t, 15.0, report.EstimatedSavings, 1e-9)
	assert.Len(t, report.PredictedUsageCurve, 2)
}

func TestRunScenarioHandler_RequiresToken(t *testing.T) {
	rec := postScenario(scenarioServer(true), "", scenarioBody(1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRunScenarioHandler_BadRequests(t *testing.T) {
	handler := scenarioServer(true)
	token := homeownerToken(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "{"},
		{name: "missing device id", body: `{"original_timestamp":"2025-01-01T18:00:00Z","new_timestamp":"2025-01-01T03:00:00Z"}`},
		{name: "missing timestamps", body: `{"device_id":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postScenario(handler, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRunScenarioHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		withTariff bool
		token      func(*testing.T) string
		deviceID   int64
		wantStatus int
	}{
		{
			name:       "unknown device",
			withTariff: true,
			token:      homeownerToken,
			deviceID:   99,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "device not shiftable",
			withTariff: true,
			token:      homeownerToken,
			deviceID:   2,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing tariff",
			withTariff: false,
			token:      homeownerToken,
			deviceID:   1,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "pending role",
			withTariff: true,
			token: func(t *testing.T) string {
				return bearerToken(t, jwt.MapClaims{"user_id": float64(7)})
			},
			deviceID:   1,
			wantStatus: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postScenario(scenarioServer(tt.withTariff), tt.token(t), scenarioBody(tt.deviceID))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
