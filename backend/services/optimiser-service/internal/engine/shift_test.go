package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenshift/backend/services/optimiser-service/internal/models"
)

func shiftableDevice() models.Device {
	return models.Device{ID: 1, Name: "Washing Machine", AverageDrawKW: 1.5, IsShiftable: true}
}

func TestSubtractLoad_RemovesSlotEnergyAndReprices(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())

	result := e.SubtractLoad(baseline, shiftableDevice(), peakTime)

	row, ok := result.At(peakTime)
	require.True(t, ok)
	assert.InDelta(t, 1.25, row.ConsumptionKWh, 1e-9) // 2.0 - 1.5*0.5
	assert.InDelta(t, 37.5, row.Cost, 1e-9)

	// Untouched cell keeps its value.
	other, ok := result.At(offPeakTime)
	require.True(t, ok)
	assert.InDelta(t, 0.5, other.ConsumptionKWh, 1e-9)
}

func TestSubtractLoad_FloorsAtZero(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())
	heavy := models.Device{ID: 3, Name: "Heat Pump", AverageDrawKW: 10.0, IsShiftable: true}

	result := e.SubtractLoad(baseline, heavy, peakTime)

	row, ok := result.At(peakTime)
	require.True(t, ok)
	assert.Zero(t, row.ConsumptionKWh)
	assert.Zero(t, row.Cost)
}

func TestSubtractLoad_CopyOnWrite(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())

	result := e.SubtractLoad(baseline, shiftableDevice(), peakTime)

	require.NotSame(t, baseline, result)
	original, ok := baseline.At(peakTime)
	require.True(t, ok)
	assert.InDelta(t, 2.0, original.ConsumptionKWh, 1e-9)
	assert.InDelta(t, 60.0, original.Cost, 1e-9)
}

func TestSubtractLoad_MissingTimestampIsNoOp(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())
	absent := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

	result := e.SubtractLoad(baseline, shiftableDevice(), absent)

	assert.Same(t, baseline, result)
	assert.Equal(t, baseline.Rows(), result.Rows())
}

func TestAddLoad_AddsSlotEnergyAndReprices(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())

	result := e.AddLoad(baseline, shiftableDevice(), offPeakTime)

	row, ok := result.At(offPeakTime)
	require.True(t, ok)
	assert.InDelta(t, 1.25, row.ConsumptionKWh, 1e-9) // 0.5 + 0.75
	assert.InDelta(t, 12.5, row.Cost, 1e-9)
}

func TestAddLoad_MissingTimestampIsNoOp(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())
	absent := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

	result := e.AddLoad(baseline, shiftableDevice(), absent)

	assert.Same(t, baseline, result)
}

func TestShiftSteps_NeverChangeRowCount(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())
	device := shiftableDevice()

	subtracted := e.SubtractLoad(baseline, device, peakTime)
	added := e.AddLoad(subtracted, device, offPeakTime)

	assert.Equal(t, baseline.Len(), subtracted.Len())
	assert.Equal(t, baseline.Len(), added.Len())
}

func TestShiftSteps_TimezoneAwareLookup(t *testing.T) {
	e := testEngine()
	baseline := e.BuildCurve(testReadings())
	cet := time.FixedZone("CET", 3600)
	localPeak := peakTime.In(cet)

	result := e.SubtractLoad(baseline, shiftableDevice(), localPeak)

	row, ok := result.At(peakTime)
	require.True(t, ok)
	assert.InDelta(t, 1.25, row.ConsumptionKWh, 1e-9)
}

func TestSlotDurationOption(t *testing.T) {
	e := testEngine(WithSlotDuration(time.Hour))
	baseline := e.BuildCurve(testReadings())

	result := e.SubtractLoad(baseline, shiftableDevice(), peakTime)

	row, ok := result.At(peakTime)
	require.True(t, ok)
	assert.InDelta(t, 0.5, row.ConsumptionKWh, 1e-9) // 2.0 - 1.5*1.0
	assert.InDelta(t, 15.0, row.Cost, 1e-9)
}
