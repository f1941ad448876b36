package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenshift/backend/services/optimiser-service/internal/models"
)

var (
	peakTime    = time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
	offPeakTime = time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)
)

func testTariff() models.Tariff {
	return models.Tariff{
		ID:                   201,
		Provider:             "Test Energy",
		PaymentType:          "Direct Debit",
		Region:               "London",
		StandingChargePerDay: 50.0,
		CarbonScore:          80,
		RateSchedule: map[string]float64{
			BandPeak:    30.0,
			BandOffPeak: 10.0,
		},
	}
}

func testProperty() models.Property {
	return models.Property{
		ID:        101,
		Address:   "123 Test Street",
		Location:  "London",
		SqFootage: 1000,
		MpanID:    "12345",
		TariffID:  201,
		Devices: []models.Device{
			{ID: 1, Name: "Washing Machine", AverageDrawKW: 1.5, IsShiftable: true},
			{ID: 2, Name: "Oven", AverageDrawKW: 3.0, IsShiftable: false},
		},
	}
}

func testReadings() []models.Reading {
	return []models.Reading{
		{Timestamp: peakTime, MpanID: "12345", ConsumptionKWh: 2.0, ReadingType: models.ReadingTypeActual},
		{Timestamp: offPeakTime, MpanID: "12345", ConsumptionKWh: 0.5, ReadingType: models.ReadingTypeActual},
	}
}

func testEngine(opts ...Option) *Engine {
	return New(testProperty(), testTariff(), testReadings(), opts...)
}

func TestRunScenario_WorkedFixture(t *testing.T) {
	report, err := testEngine().RunScenario(models.ShiftRequest{
		DeviceID:          1,
		OriginalTimestamp: peakTime,
		NewTimestamp:      offPeakTime,
	})
	require.NoError(t, err)

	// Baseline: 2.0*30 + 0.5*10 = 65. Moved energy: 1.5kW * 0.5h = 0.75kWh.
	// Scenario: 1.25*30 + 1.25*10 = 50.
	assert.InDelta(t, 65.0, report.BaselineCost, 1e-9)
	assert.InDelta(t, 50.0, report.ScenarioCost, 1e-9)
	assert.InDelta(t, 15.0, report.EstimatedSavings, 1e-9)

	require.Len(t, report.PredictedUsageCurve, 2)
	assert.Equal(t, peakTime, report.PredictedUsageCurve[0].Timestamp)
	assert.InDelta(t, 1.25, report.PredictedUsageCurve[0].ConsumptionKWh, 1e-9)
	assert.InDelta(t, 37.5, report.PredictedUsageCurve[0].Cost, 1e-9)
	assert.Equal(t, offPeakTime, report.PredictedUsageCurve[1].Timestamp)
	assert.InDelta(t, 1.25, report.PredictedUsageCurve[1].ConsumptionKWh, 1e-9)
	assert.InDelta(t, 12.5, report.PredictedUsageCurve[1].Cost, 1e-9)
}

func TestRunScenario_Deterministic(t *testing.T) {
	req := models.ShiftRequest{DeviceID: 1, OriginalTimestamp: peakTime, NewTimestamp: offPeakTime}

	first, err := testEngine().RunScenario(req)
	require.NoError(t, err)
	second, err := testEngine().RunScenario(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunScenario_SavingsIdentity(t *testing.T) {
	report, err := testEngine().RunScenario(models.ShiftRequest{
		DeviceID:          1,
		OriginalTimestamp: peakTime,
		NewTimestamp:      offPeakTime,
	})
	require.NoError(t, err)

	want := math.Round((report.BaselineCost-report.ScenarioCost)*100) / 100
	assert.InDelta(t, want, report.EstimatedSavings, 1e-9)
}

func TestRunScenario_DeviceNotFound(t *testing.T) {
	_, err := testEngine().RunScenario(models.ShiftRequest{
		DeviceID:          99,
		OriginalTimestamp: peakTime,
		NewTimestamp:      offPeakTime,
	})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsRejection(err))
}

func TestRunScenario_DeviceNotShiftable(t *testing.T) {
	_, err := testEngine().RunScenario(models.ShiftRequest{
		DeviceID:          2,
		OriginalTimestamp: peakTime,
		NewTimestamp:      offPeakTime,
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalidOperation, KindOf(err))
	assert.True(t, IsRejection(err))
}

func TestRunScenario_EmptyReadings(t *testing.T) {
	e := New(testProperty(), testTariff(), nil)

	report, err := e.RunScenario(models.ShiftRequest{
		DeviceID:          1,
		OriginalTimestamp: peakTime,
		NewTimestamp:      offPeakTime,
	})
	require.NoError(t, err)

	assert.Zero(t, report.BaselineCost)
	assert.Zero(t, report.ScenarioCost)
	assert.Zero(t, report.EstimatedSavings)
	assert.Empty(t, report.PredictedUsageCurve)
}

func TestRunScenario_ShiftToSameSlotIsNeutral(t *testing.T) {
	report, err := testEngine().RunScenario(models.ShiftRequest{
		DeviceID:          1,
		OriginalTimestamp: peakTime,
		NewTimestamp:      peakTime,
	})
	require.NoError(t, err)

	assert.InDelta(t, report.BaselineCost, report.ScenarioCost, 1e-9)
	assert.Zero(t, report.EstimatedSavings)
}

func TestRunScenario_BaselineCurveRetained(t *testing.T) {
	e := testEngine()
	_, err := e.RunScenario(models.ShiftRequest{
		DeviceID:          1,
		OriginalTimestamp: peakTime,
		NewTimestamp:      offPeakTime,
	})
	require.NoError(t, err)

	baseline := e.BaselineCurve()
	require.NotNil(t, baseline)
	row, ok := baseline.At(peakTime)
	require.True(t, ok)
	assert.InDelta(t, 2.0, row.ConsumptionKWh, 1e-9)
	assert.InDelta(t, 60.0, row.Cost, 1e-9)

	scenario := e.ScenarioCurve()
	require.NotNil(t, scenario)
	assert.Equal(t, baseline.Len(), scenario.Len())
}

func TestFinalSavings_NonFiniteInput(t *testing.T) {
	e := testEngine()

	_, err := e.finalSavings(math.NaN(), 10)
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.True(t, IsRejection(err))

	_, err = e.finalSavings(10, math.Inf(1))
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
