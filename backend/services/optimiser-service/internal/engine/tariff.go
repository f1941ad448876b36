package engine

import (
	"time"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// Band names used in a tariff rate schedule.
const (
	BandPeak    = "peak"
	BandOffPeak = "off_peak"
)

// RateModel resolves time-of-use rates from a tariff's rate schedule. The
// peak window is a fixed daily interval [peakStart, peakEnd) in clock hours.
type RateModel struct {
	schedule  map[string]float64
	peakStart int
	peakEnd   int
}

// NewRateModel builds a rate model over the tariff's schedule.
func NewRateModel(tariff models.Tariff, peakStartHour, peakEndHour int) *RateModel {
	return &RateModel{
		schedule:  tariff.RateSchedule,
		peakStart: peakStartHour,
		peakEnd:   peakEndHour,
	}
}

// BandAt returns the tariff band the instant falls into.
func (m *RateModel) BandAt(t time.Time) string {
	if h := t.Hour(); h >= m.peakStart && h < m.peakEnd {
		return BandPeak
	}
	return BandOffPeak
}

// RateAt resolves the price rate for the given instant. A band missing from
// the schedule falls back to off_peak; if that is also missing the rate is 0.
func (m *RateModel) RateAt(t time.Time) float64 {
	if rate, ok := m.schedule[m.BandAt(t)]; ok {
		return rate
	}
	if rate, ok := m.schedule[BandOffPeak]; ok {
		return rate
	}
	return 0
}

// CostOf prices a consumption quantity at the given instant.
func (m *RateModel) CostOf(consumptionKWh float64, t time.Time) float64 {
	return m.RateAt(t) * consumptionKWh
}
